package main

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	sharedEvents "github.com/davicafu/hexaprojector/internal/shared/domain/events"
	"github.com/davicafu/hexaprojector/internal/shared/infra/stream/memory"
)

// seedDemo escribe en el log en memoria un carrito y un pedido de ejemplo.
func seedDemo(l *memory.Log, now time.Time, log *zap.Logger) {
	at := func(offset time.Duration) string { return now.Add(offset).Format(time.RFC3339) }

	demo := []struct {
		stream  string
		tag     sharedEvents.Type
		payload string
	}{
		{"cart-demo-1", sharedEvents.TypeVisitorStarted,
			fmt.Sprintf(`{"cartId":"demo-1","at":%q}`, at(0))},
		{"cart-demo-1", sharedEvents.TypeItemAdded,
			fmt.Sprintf(`{"cartId":"demo-1","productId":"tv-55","productName":"TV 55","quantity":2,"pricePerUnit":"USD40.00","taxRate":0.1,"at":%q}`, at(time.Second))},
		{"cart-demo-1", sharedEvents.TypeShopperIdentified,
			fmt.Sprintf(`{"cartId":"demo-1","customerId":"cust-demo","at":%q}`, at(2*time.Second))},
		{"cart-demo-1", sharedEvents.TypeCheckedOut,
			fmt.Sprintf(`{"cartId":"demo-1","at":%q}`, at(3*time.Second))},
		{"order-demo-1", sharedEvents.TypeOrderPlaced,
			fmt.Sprintf(`{"orderId":"order-demo-1","customerId":"cust-demo","checkoutOfCart":"demo-1",
				"store":{"url":"https://shop.example","countryCode":"JP","geographicRegion":"Asia"},
				"lineItems":[{"productId":"tv-55","productName":"TV 55","category":"Electronics","quantity":2,"pricePerUnit":"USD40.00","taxRate":0.1}],
				"at":%q}`, at(4*time.Second))},
	}

	for _, e := range demo {
		pos := l.Append(e.stream, string(e.tag), []byte(e.payload))
		log.Debug("Seeded demo event", zap.String("stream", e.stream), zap.String("event_type", string(e.tag)), zap.Uint64("position", pos))
	}
	log.Info("🌱 Demo events seeded", zap.Int("events", len(demo)))
}
