package events

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	sharedBus "github.com/davicafu/hexaprojector/internal/shared/infra/platform/bus"
	"github.com/davicafu/hexaprojector/internal/shared/infra/stream/kafkastream"
)

type KafkaPublisher struct {
	writer *kafka.Writer
	log    *zap.Logger
}

func NewKafkaPublisher(writer *kafka.Writer, log *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, log: log}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event interface{}) error {
	msg, err := toMessage(event)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Error("Error publishing to Kafka", zap.Error(err))
		return err
	}

	p.log.Debug("Event published successfully", zap.Any("event", event))
	return nil
}

// Close vacía el writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// toMessage serializa el evento; la clave y la cabecera de tipo salen de las
// interfaces opcionales del bus.
func toMessage(event interface{}) (kafka.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, err
	}

	msg := kafka.Message{Value: data}
	if keyer, ok := event.(sharedBus.Keyer); ok {
		msg.Key = []byte(keyer.PartitionKey())
	}
	if typer, ok := event.(sharedBus.Typer); ok {
		msg.Headers = append(msg.Headers, kafka.Header{Key: kafkastream.EventTypeHeader, Value: []byte(typer.EventType())})
	}
	return msg, nil
}

// Verificación estática
var _ sharedBus.EventPublisher = (*KafkaPublisher)(nil)
