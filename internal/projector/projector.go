package projector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	sharedDomain "github.com/davicafu/hexaprojector/internal/shared/domain"
	sharedEvents "github.com/davicafu/hexaprojector/internal/shared/domain/events"
	sharedBus "github.com/davicafu/hexaprojector/internal/shared/infra/platform/bus"
	"github.com/davicafu/hexaprojector/internal/shared/infra/stream"
	sharedUtils "github.com/davicafu/hexaprojector/internal/shared/infra/utils"
)

const tracerName = "hexaprojector/projector"

// DecodeFailurePolicy decide qué hace una suscripción catch-up con un payload inválido.
type DecodeFailurePolicy string

const (
	// DecodeSkip registra el error y avanza el checkpoint sin mutaciones.
	DecodeSkip DecodeFailurePolicy = "skip"
	// DecodeHalt detiene el proyector en la posición del evento.
	DecodeHalt DecodeFailurePolicy = "halt"
)

// ErrHalted lo devuelve Run cuando un error no recuperable detiene el proyector.
var ErrHalted = errors.New("projector halted")

// Config de un proyector: un read model alimentado por un selector de stream.
type Config struct {
	ReadModel     string
	Selector      stream.Selector
	RetryDelay    time.Duration
	ApplyTimeout  time.Duration
	DecodeFailure DecodeFailurePolicy
}

func (c Config) withDefaults() Config {
	if c.RetryDelay <= 0 {
		c.RetryDelay = time.Second
	}
	if c.ApplyTimeout <= 0 {
		c.ApplyTimeout = 10 * time.Second
	}
	if c.DecodeFailure == "" {
		c.DecodeFailure = DecodeSkip
	}
	return c
}

// Projector consume un stream y mantiene un read model: decodifica cada
// envelope, obtiene las mutaciones del dispatcher y las aplica junto al
// checkpoint en una sola unidad de trabajo.
type Projector struct {
	cfg        Config
	source     stream.Source
	store      sharedDomain.ProjectionStore
	dispatcher *Dispatcher
	notifier   sharedBus.EventPublisher
	tracer     trace.Tracer
	log        *zap.Logger
}

type Option func(*Projector)

// WithNotifier publica ReadModelUpdated tras cada unidad de trabajo confirmada.
func WithNotifier(pub sharedBus.EventPublisher) Option {
	return func(p *Projector) { p.notifier = pub }
}

func New(cfg Config, source stream.Source, store sharedDomain.ProjectionStore, dispatcher *Dispatcher, log *zap.Logger, opts ...Option) *Projector {
	p := &Projector{
		cfg:        cfg.withDefaults(),
		source:     source,
		store:      store,
		dispatcher: dispatcher,
		tracer:     otel.Tracer(tracerName),
		log:        log.With(zap.String("read_model", cfg.ReadModel), zap.String("stream", cfg.Selector.Stream)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ReadModel devuelve el nombre del read model que mantiene.
func (p *Projector) ReadModel() string { return p.cfg.ReadModel }

// Run bloquea hasta que ctx se cancela (devuelve nil) o el proyector se
// detiene por un error no recuperable (devuelve un error que envuelve ErrHalted).
func (p *Projector) Run(ctx context.Context) error {
	from, err := p.startPosition(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("%w: reading checkpoint: %v", ErrHalted, err)
	}

	sub, err := p.source.Subscribe(ctx, p.cfg.Selector, from)
	if err != nil {
		return fmt.Errorf("%w: subscribing: %v", ErrHalted, err)
	}
	defer sub.Close()

	p.log.Info("🚀 Projector started",
		zap.String("mode", p.source.Mode().String()),
		zap.Uint64("from", from.Next()),
	)

	for {
		d, err := sub.Next(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, stream.ErrSubscriptionClosed) {
				p.log.Info("Projector stopped")
				return nil
			}
			p.log.Warn("⚠️ Error reading from stream", zap.Error(err))
			if !sharedUtils.Sleep(ctx, p.cfg.RetryDelay) {
				return nil
			}
			continue
		}

		if err := p.handle(ctx, d); err != nil {
			p.log.Error("❌ Projector halted", zap.Error(err))
			return err
		}
	}
}

// startPosition lee el checkpoint en modo catch-up. En modo durable el
// servidor lleva el progreso y la suscripción ignora From.
func (p *Projector) startPosition(ctx context.Context) (stream.From, error) {
	if p.source.Mode() == stream.Durable {
		return stream.FromStart(), nil
	}

	var (
		pos   uint64
		found bool
	)
	err := sharedUtils.Retry(ctx, 5, p.cfg.RetryDelay, sharedDomain.IsTransient, func() error {
		var err error
		pos, found, err = p.store.GetCheckpoint(ctx, p.cfg.ReadModel)
		return err
	})
	if err != nil {
		return stream.From{}, err
	}
	if !found {
		return stream.FromStart(), nil
	}
	return stream.After(pos), nil
}

// handle procesa una entrega. Solo devuelve error cuando el proyector debe detenerse.
func (p *Projector) handle(ctx context.Context, d stream.Delivery) error {
	env := d.Envelope
	durable := p.source.Mode() == stream.Durable
	log := p.log.With(zap.Uint64("position", env.Position), zap.String("event_type", env.Type))

	ctx, span := p.tracer.Start(ctx, "projector.handle", trace.WithAttributes(
		attribute.String("projector.read_model", p.cfg.ReadModel),
		attribute.String("projector.stream", env.Stream),
		attribute.Int64("projector.position", int64(env.Position)),
		attribute.String("projector.event_type", env.Type),
	))
	defer span.End()

	var mutations []sharedDomain.Mutation
	evt, err := sharedEvents.DecodeEnvelope(env)
	if err == nil {
		mutations, err = p.dispatcher.Project(evt)
		if err != nil {
			err = sharedDomain.Permanent(fmt.Errorf("projecting %s: %w", env.Type, err))
		}
	}

	if errors.Is(err, sharedEvents.ErrDecode) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		switch {
		case durable:
			log.Warn("⚠️ Undecodable event skipped", zap.Error(err))
			p.nack(ctx, d, stream.NackSkip, err.Error(), log)
			return nil
		case p.cfg.DecodeFailure == DecodeHalt:
			return fmt.Errorf("%w at position %d: %v", ErrHalted, env.Position, err)
		}
		log.Warn("⚠️ Undecodable event skipped, advancing checkpoint", zap.Error(err))
		mutations = nil
	} else if err != nil {
		return p.onStoreError(ctx, d, err, durable, log, span)
	}

	if _, ignored := evt.(sharedEvents.Ignored); ignored {
		log.Debug("Event ignored")
	}

	cp := sharedDomain.Checkpoint{ReadModel: p.cfg.ReadModel, Position: env.Position}
	for {
		err := p.apply(ctx, mutations, cp)
		if err == nil {
			break
		}
		if !sharedDomain.IsTransient(err) || durable {
			return p.onStoreError(ctx, d, err, durable, log, span)
		}

		log.Warn("⚠️ Transient store error, retrying", zap.Error(err), zap.Duration("retry_in", p.cfg.RetryDelay))
		if !sharedUtils.Sleep(ctx, p.cfg.RetryDelay) {
			return nil
		}
	}

	if err := d.Ack(ctx); err != nil {
		log.Warn("⚠️ Ack failed, message will be redelivered", zap.Error(err))
	}
	log.Debug("Event projected", zap.Int("mutations", len(mutations)))
	p.notify(ctx, env, log)
	return nil
}

// apply ejecuta la unidad de trabajo sin heredar la cancelación: un apagado
// a mitad no deja una transacción a medias, la deja terminar o fallar entera.
func (p *Projector) apply(ctx context.Context, mutations []sharedDomain.Mutation, cp sharedDomain.Checkpoint) error {
	applyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.cfg.ApplyTimeout)
	defer cancel()
	return p.store.Apply(applyCtx, mutations, cp)
}

// onStoreError traduce un fallo de almacenamiento al protocolo del stream.
func (p *Projector) onStoreError(ctx context.Context, d stream.Delivery, err error, durable bool, log *zap.Logger, span trace.Span) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	transient := sharedDomain.IsTransient(err)
	if !durable {
		return fmt.Errorf("%w at position %d: %v", ErrHalted, d.Envelope.Position, err)
	}

	if transient {
		log.Warn("⚠️ Transient store error, requesting redelivery", zap.Error(err))
		p.nack(ctx, d, stream.NackRetry, err.Error(), log)
		sharedUtils.Sleep(ctx, p.cfg.RetryDelay)
		return nil
	}
	log.Error("❌ Permanent store error, event skipped", zap.Error(err))
	p.nack(ctx, d, stream.NackSkip, err.Error(), log)
	return nil
}

func (p *Projector) nack(ctx context.Context, d stream.Delivery, action stream.NackAction, reason string, log *zap.Logger) {
	if err := d.Nack(ctx, action, reason); err != nil {
		log.Warn("⚠️ Nack failed", zap.String("action", action.String()), zap.Error(err))
	}
}

func (p *Projector) notify(ctx context.Context, env sharedEvents.Envelope, log *zap.Logger) {
	if p.notifier == nil {
		return
	}
	evt := ReadModelUpdated{
		ReadModel:   p.cfg.ReadModel,
		Position:    env.Position,
		SourceType:  env.Type,
		Stream:      env.Stream,
		ProcessedAt: time.Now().UTC(),
	}
	if err := p.notifier.Publish(ctx, evt); err != nil {
		log.Warn("Read model notification failed", zap.Error(err))
	}
}
