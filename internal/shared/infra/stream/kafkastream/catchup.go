package kafkastream

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	sharedEvents "github.com/davicafu/hexaprojector/internal/shared/domain/events"
	"github.com/davicafu/hexaprojector/internal/shared/infra/stream"
)

// EventTypeHeader es la cabecera donde los productores ponen la etiqueta de tipo.
const EventTypeHeader = "event-type"

// CatchUpSource lee un topic por partición desde un offset explícito, sin
// consumer group: el progreso lo lleva el checkpoint del read model.
// Cada categoría de stream vive en su propio topic ("$ce-cart" -> "cart").
type CatchUpSource struct {
	brokers   []string
	partition int
	log       *zap.Logger
}

func NewCatchUpSource(brokers []string, partition int, log *zap.Logger) *CatchUpSource {
	return &CatchUpSource{brokers: brokers, partition: partition, log: log}
}

func (s *CatchUpSource) Mode() stream.Mode { return stream.CatchUp }

func (s *CatchUpSource) Subscribe(ctx context.Context, sel stream.Selector, from stream.From) (stream.Subscription, error) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:   s.brokers,
		Topic:     sel.BaseName(),
		Partition: s.partition,
		MinBytes:  1,
		MaxBytes:  10e6, // 10MB
	})

	offset := kafka.FirstOffset
	if !from.Start {
		offset = int64(from.After) + 1
	}
	if err := reader.SetOffset(offset); err != nil {
		reader.Close()
		return nil, err
	}

	s.log.Info("🎧 Kafka catch-up subscription opened",
		zap.String("topic", sel.BaseName()),
		zap.Int("partition", s.partition),
		zap.Int64("offset", offset),
	)
	return &catchUpSubscription{reader: reader, sel: sel, log: s.log}, nil
}

type catchUpSubscription struct {
	reader *kafka.Reader
	sel    stream.Selector
	log    *zap.Logger
}

func (s *catchUpSubscription) Next(ctx context.Context) (stream.Delivery, error) {
	// ReadMessage es bloqueante; sin GroupID no hace commit de offsets.
	msg, err := s.reader.ReadMessage(ctx)
	if err != nil {
		return stream.Delivery{}, err
	}
	return stream.NewDelivery(envelopeFromMessage(msg), nil, nil), nil
}

func (s *catchUpSubscription) Close() error {
	return s.reader.Close()
}

// envelopeFromMessage toma el tipo de la cabecera; si no está, intenta
// desenvolver un IntegrationEvent JSON ({type, timestamp, data}).
func envelopeFromMessage(msg kafka.Message) sharedEvents.Envelope {
	env := sharedEvents.Envelope{
		Stream:   string(msg.Key),
		Position: uint64(msg.Offset),
		Payload:  msg.Value,
	}
	for _, h := range msg.Headers {
		if h.Key == EventTypeHeader {
			env.Type = string(h.Value)
			return env
		}
	}

	var base sharedEvents.IntegrationEvent
	if err := json.Unmarshal(msg.Value, &base); err == nil && base.Type != "" {
		env.Type = base.Type
		env.Payload = base.Data
	}
	return env
}
