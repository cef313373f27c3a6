package rabbitmq

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	sharedEvents "github.com/davicafu/hexaprojector/internal/shared/domain/events"
	"github.com/davicafu/hexaprojector/internal/shared/infra/stream"
)

const (
	// Cabeceras que el productor añade a cada mensaje.
	PositionHeader = "position"
	StreamHeader   = "stream"
)

// DurableSource implementa suscripciones durables sobre RabbitMQ. El broker guarda
// el progreso del grupo: cada grupo es una cola "<stream>.<grupo>" enlazada al
// exchange de eventos. Los mensajes se publican con routing key "<categoría>.<tipo>".
type DurableSource struct {
	conn     *amqp.Connection
	exchange string
	prefetch int
	log      *zap.Logger
}

func NewDurableSource(conn *amqp.Connection, exchange string, prefetch int, log *zap.Logger) *DurableSource {
	return &DurableSource{conn: conn, exchange: exchange, prefetch: prefetch, log: log}
}

func (s *DurableSource) Mode() stream.Mode { return stream.Durable }

// BindingKey traduce el selector a la routing key de la cola.
func BindingKey(sel stream.Selector) string {
	switch {
	case strings.HasPrefix(sel.Stream, stream.CategoryPrefix):
		return sel.BaseName() + ".*"
	case strings.HasPrefix(sel.Stream, stream.EventTypePrefix):
		return "*." + sel.BaseName()
	default:
		return sel.Stream
	}
}

// QueueName es el nombre de la cola del grupo.
func QueueName(sel stream.Selector) string {
	return sel.BaseName() + "." + sel.Group
}

func (s *DurableSource) Subscribe(ctx context.Context, sel stream.Selector, _ stream.From) (stream.Subscription, error) {
	ch, err := s.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	parked := s.exchange + ".parked"
	if err := ch.ExchangeDeclare(s.exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	if err := ch.ExchangeDeclare(parked, "fanout", true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("declare parked exchange: %w", err)
	}

	queue := QueueName(sel)
	// Los mensajes rechazados sin requeue (skip) acaban en el exchange de aparcados.
	if _, err := ch.QueueDeclare(queue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange": parked,
	}); err != nil {
		ch.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}
	if err := ch.QueueBind(queue, BindingKey(sel), s.exchange, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("bind queue %s: %w", queue, err)
	}
	if err := ch.Qos(s.prefetch, 0, false); err != nil {
		ch.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}

	tag := sel.Group + "-" + uuid.NewString()
	deliveries, err := ch.Consume(queue, tag, false, false, false, false, nil)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("consume %s: %w", queue, err)
	}

	s.log.Info("🎧 RabbitMQ durable subscription opened",
		zap.String("queue", queue),
		zap.String("binding", BindingKey(sel)),
		zap.String("consumer", tag),
	)
	return &durableSubscription{ch: ch, deliveries: deliveries, log: s.log}, nil
}

type durableSubscription struct {
	ch         *amqp.Channel
	deliveries <-chan amqp.Delivery
	log        *zap.Logger
}

func (s *durableSubscription) Next(ctx context.Context) (stream.Delivery, error) {
	select {
	case <-ctx.Done():
		return stream.Delivery{}, ctx.Err()
	case d, ok := <-s.deliveries:
		if !ok {
			return stream.Delivery{}, stream.ErrSubscriptionClosed
		}
		msg := d
		return stream.NewDelivery(envelopeFromDelivery(msg, s.log),
			func(ctx context.Context) error { return msg.Ack(false) },
			func(ctx context.Context, action stream.NackAction, reason string) error {
				s.log.Debug("Nacking message",
					zap.Uint64("delivery_tag", msg.DeliveryTag),
					zap.String("action", action.String()),
					zap.String("reason", reason),
				)
				if action == stream.NackSkip {
					return msg.Reject(false)
				}
				return msg.Nack(false, true)
			},
		), nil
	}
}

func (s *durableSubscription) Close() error {
	return s.ch.Close()
}

// envelopeFromDelivery toma la posición de la cabecera. Sin ella la posición
// queda a 0 y el checkpoint del read model no avanza.
func envelopeFromDelivery(d amqp.Delivery, log *zap.Logger) sharedEvents.Envelope {
	env := sharedEvents.Envelope{
		Stream:  d.RoutingKey,
		Type:    d.Type,
		Payload: d.Body,
	}
	if v, ok := d.Headers[StreamHeader].(string); ok && v != "" {
		env.Stream = v
	}
	if pos, ok := headerUint(d.Headers[PositionHeader]); ok {
		env.Position = pos
	} else {
		log.Warn("Message without position header",
			zap.String("routing_key", d.RoutingKey),
			zap.Uint64("delivery_tag", d.DeliveryTag),
		)
	}
	if env.Type == "" {
		if _, typeTag, found := strings.Cut(d.RoutingKey, "."); found {
			env.Type = typeTag
		}
	}
	return env
}

func headerUint(v interface{}) (uint64, bool) {
	switch n := v.(type) {
	case int64:
		return uint64(n), n >= 0
	case int32:
		return uint64(n), n >= 0
	case int16:
		return uint64(n), n >= 0
	case int:
		return uint64(n), n >= 0
	case uint64:
		return n, true
	case uint32:
		return uint64(n), true
	default:
		return 0, false
	}
}
