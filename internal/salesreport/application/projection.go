package application

import (
	"github.com/davicafu/hexaprojector/internal/projector"
	reportDomain "github.com/davicafu/hexaprojector/internal/salesreport/domain"
	sharedDomain "github.com/davicafu/hexaprojector/internal/shared/domain"
	sharedEvents "github.com/davicafu/hexaprojector/internal/shared/domain/events"
)

// NewProjection registra el handler del informe de ventas.
func NewProjection(m *reportDomain.Materializer) *projector.Dispatcher {
	d := projector.NewDispatcher()
	projector.On(d, func(evt sharedEvents.OrderPlaced) ([]sharedDomain.Mutation, error) {
		return m.Materialize(evt), nil
	})
	return d
}

// NewFactsProjection escribe una fila analítica por línea de pedido.
// La clave (order_id, line_no) hace idempotente la reentrega.
func NewFactsProjection() *projector.Dispatcher {
	d := projector.NewDispatcher()
	projector.On(d, onOrderFacts)
	return d
}

func onOrderFacts(evt sharedEvents.OrderPlaced) ([]sharedDomain.Mutation, error) {
	mutations := make([]sharedDomain.Mutation, 0, len(evt.LineItems))
	for i, line := range evt.LineItems {
		currency := line.Price.Currency
		if currency == "" {
			currency = line.Currency
		}
		mutations = append(mutations, sharedDomain.UpsertIfAbsent(reportDomain.EntitySalesFacts,
			[]sharedDomain.Field{sharedDomain.F("order_id", evt.OrderID), sharedDomain.F("line_no", uint32(i))},
			sharedDomain.F("product_id", line.ProductID),
			sharedDomain.F("category", line.Category),
			sharedDomain.F("region", evt.Store.GeographicRegion),
			sharedDomain.F("quantity", int32(line.Quantity)),
			sharedDomain.F("amount", line.Total()),
			sharedDomain.F("currency", currency),
			sharedDomain.F("ordered_at", evt.At.UTC()),
		))
	}
	return mutations, nil
}
