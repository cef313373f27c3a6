package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/segmentio/kafka-go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/davicafu/hexaprojector/internal/config"
	"github.com/davicafu/hexaprojector/internal/projector"
	infraEvents "github.com/davicafu/hexaprojector/internal/shared/infra/events"
	sharedBus "github.com/davicafu/hexaprojector/internal/shared/infra/platform/bus"
	sharedDB "github.com/davicafu/hexaprojector/internal/shared/infra/platform/db"
	"github.com/davicafu/hexaprojector/internal/shared/infra/store/mongostore"
	"github.com/davicafu/hexaprojector/internal/shared/infra/stream"
	"github.com/davicafu/hexaprojector/internal/shared/infra/stream/kafkastream"
	"github.com/davicafu/hexaprojector/internal/shared/infra/stream/memory"
	"github.com/davicafu/hexaprojector/internal/shared/infra/stream/rabbitmq"
	"github.com/davicafu/hexaprojector/internal/shared/infra/stream/sqllog"
)

const (
	eventsExchange  = "events"
	durablePrefetch = 16
	memoryAckWait   = 30 * time.Second
)

// sources agrupa la fuente catch-up y la durable elegidas por configuración.
// El log en memoria existe siempre para poder sembrar eventos en local.
type sources struct {
	catchUp  stream.Source
	durable  stream.Source
	memLog   *memory.Log
	amqpConn *amqp.Connection
}

func newSources(ctx context.Context, cfg *config.Config, db *sql.DB, dialect sharedDB.Dialect, log *zap.Logger) (*sources, error) {
	s := &sources{memLog: memory.NewLog()}

	switch cfg.EventSource {
	case config.SourceKafka:
		log.Info("🚀 Usando Kafka como log de eventos", zap.Strings("brokers", cfg.KafkaBrokers))
		s.catchUp = kafkastream.NewCatchUpSource(cfg.KafkaBrokers, cfg.KafkaPartition, log)
	case config.SourceSQL:
		eventLog := sqllog.NewEventLog(db, dialect, cfg.PollInterval, cfg.PollBatch, log)
		if err := eventLog.InitSchema(ctx); err != nil {
			return nil, err
		}
		log.Info("🚀 Usando la tabla event_log como log de eventos")
		s.catchUp = eventLog
	default:
		log.Info("⚡️ Usando log de eventos en memoria")
		s.catchUp = s.memLog.CatchUp()
	}

	switch cfg.DurableSource {
	case config.SourceRabbitMQ:
		conn, err := amqp.Dial(cfg.RabbitMQURL)
		if err != nil {
			return nil, fmt.Errorf("dial rabbitmq: %w", err)
		}
		s.amqpConn = conn
		s.durable = rabbitmq.NewDurableSource(conn, eventsExchange, durablePrefetch, log)
	default:
		s.durable = s.memLog.Durable(memoryAckWait)
	}
	return s, nil
}

func (s *sources) Close() {
	if s.amqpConn != nil {
		s.amqpConn.Close()
	}
}

// newNotifier publica ReadModelUpdated en Kafka si hay topic; si no, en un bus en memoria.
func newNotifier(ctx context.Context, cfg *config.Config, log *zap.Logger) (sharedBus.EventPublisher, func()) {
	if cfg.NotifyKafkaTopic != "" {
		writer := kafka.NewWriter(kafka.WriterConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.NotifyKafkaTopic,
		})
		pub := infraEvents.NewKafkaPublisher(writer, log)
		return pub, func() { pub.Close() }
	}

	bus := infraEvents.NewInMemoryEventBus(projector.ReadModelUpdatedType)
	updates := bus.Subscribe(64)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-updates:
				log.Debug("📨 Read model updated", zap.ByteString("notification", msg))
			}
		}
	}()
	return bus, func() {}
}

// mongoConnector conecta con MongoDB solo si algún read model lo usa.
type mongoConnector struct {
	cfg    *config.Config
	log    *zap.Logger
	client *mongo.Client
	store  *mongostore.Store
}

func newMongoConnector(cfg *config.Config, log *zap.Logger) *mongoConnector {
	return &mongoConnector{cfg: cfg, log: log}
}

func (m *mongoConnector) Store(ctx context.Context) (*mongostore.Store, error) {
	if m.store != nil {
		return m.store, nil
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(m.cfg.MongoURI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, err
	}
	store, err := mongostore.New(ctx, client, m.cfg.MongoDB, m.log)
	if err != nil {
		client.Disconnect(ctx)
		return nil, err
	}
	m.client, m.store = client, store
	return store, nil
}

func (m *mongoConnector) Close() {
	if m.client != nil {
		m.client.Disconnect(context.Background())
	}
}
