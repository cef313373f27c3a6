package kafkastream

import (
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
)

func TestEnvelopeFromMessage_TypeFromHeader(t *testing.T) {
	msg := kafka.Message{
		Key:     []byte("cart-1"),
		Offset:  42,
		Value:   []byte(`{"cartId":"cart-1"}`),
		Headers: []kafka.Header{{Key: EventTypeHeader, Value: []byte("visitor-started-shopping")}},
	}

	env := envelopeFromMessage(msg)

	assert.Equal(t, uint64(42), env.Position)
	assert.Equal(t, "cart-1", env.Stream)
	assert.Equal(t, "visitor-started-shopping", env.Type)
	assert.JSONEq(t, `{"cartId":"cart-1"}`, string(env.Payload))
}

func TestEnvelopeFromMessage_IntegrationEventFallback(t *testing.T) {
	msg := kafka.Message{
		Offset: 7,
		Value:  []byte(`{"type":"order-placed","timestamp":"2025-01-10T00:00:00Z","data":{"orderId":"o-1"}}`),
	}

	env := envelopeFromMessage(msg)

	assert.Equal(t, "order-placed", env.Type)
	assert.JSONEq(t, `{"orderId":"o-1"}`, string(env.Payload))
}

func TestEnvelopeFromMessage_UnknownShapeKeepsPayload(t *testing.T) {
	msg := kafka.Message{Offset: 1, Value: []byte(`garbage`)}

	env := envelopeFromMessage(msg)

	assert.Empty(t, env.Type)
	assert.Equal(t, []byte(`garbage`), env.Payload)
}
