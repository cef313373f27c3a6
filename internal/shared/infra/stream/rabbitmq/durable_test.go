package rabbitmq

import (
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/davicafu/hexaprojector/internal/shared/infra/stream"
)

func TestBindingKeyAndQueueName(t *testing.T) {
	cases := []struct {
		sel     stream.Selector
		binding string
		queue   string
	}{
		{stream.Selector{Stream: "$et-order-placed", Group: "fulfillment"}, "*.order-placed", "order-placed.fulfillment"},
		{stream.Selector{Stream: "$ce-cart", Group: "carts"}, "cart.*", "cart.carts"},
		{stream.Selector{Stream: "cart-1", Group: "audit"}, "cart-1", "cart-1.audit"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.binding, BindingKey(tc.sel))
		assert.Equal(t, tc.queue, QueueName(tc.sel))
	}
}

func TestEnvelopeFromDelivery(t *testing.T) {
	d := amqp.Delivery{
		RoutingKey:  "order.order-placed",
		DeliveryTag: 3,
		Body:        []byte(`{"orderId":"o-1"}`),
		Headers:     amqp.Table{PositionHeader: int64(120), StreamHeader: "order-o-1"},
	}

	env := envelopeFromDelivery(d, zap.NewNop())

	assert.Equal(t, uint64(120), env.Position)
	assert.Equal(t, "order-o-1", env.Stream)
	assert.Equal(t, "order-placed", env.Type)
}

func TestEnvelopeFromDelivery_TypePropertyWins(t *testing.T) {
	d := amqp.Delivery{RoutingKey: "order.something", Type: "order-placed", Headers: amqp.Table{PositionHeader: int32(7)}}

	env := envelopeFromDelivery(d, zap.NewNop())

	assert.Equal(t, "order-placed", env.Type)
	assert.Equal(t, uint64(7), env.Position)
}

func TestEnvelopeFromDelivery_MissingPositionIgnoresDeliveryTag(t *testing.T) {
	// Arrange
	core, logs := observer.New(zap.WarnLevel)
	d := amqp.Delivery{RoutingKey: "order.order-placed", DeliveryTag: 42, Body: []byte(`{}`)}

	// Act
	env := envelopeFromDelivery(d, zap.New(core))

	// Assert
	assert.Zero(t, env.Position)
	assert.Equal(t, 1, logs.FilterMessage("Message without position header").Len())
}
