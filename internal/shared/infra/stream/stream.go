package stream

import (
	"context"
	"errors"
	"strings"

	sharedEvents "github.com/davicafu/hexaprojector/internal/shared/domain/events"
)

// Mode distingue suscripciones de catch-up (progreso por checkpoint)
// de suscripciones durables (progreso por ack en el servidor).
type Mode int

const (
	CatchUp Mode = iota
	Durable
)

func (m Mode) String() string {
	if m == Durable {
		return "durable"
	}
	return "catch-up"
}

// NackAction indica qué debe hacer el servidor con un mensaje rechazado.
type NackAction int

const (
	// NackRetry pide la re-entrega del mensaje.
	NackRetry NackAction = iota
	// NackSkip resuelve el mensaje sin volver a procesarlo.
	NackSkip
)

func (a NackAction) String() string {
	if a == NackSkip {
		return "skip"
	}
	return "retry"
}

var ErrSubscriptionClosed = errors.New("subscription closed")

const (
	CategoryPrefix  = "$ce-"
	EventTypePrefix = "$et-"
)

// Selector identifica qué se lee. ResolveLinks debe ser true en streams de sistema
// para recibir el evento original en lugar del registro enlace.
type Selector struct {
	Stream       string
	Group        string
	ResolveLinks bool
}

// IsSystem indica si el stream es una proyección de sistema ($ce- / $et-).
func (s Selector) IsSystem() bool {
	return strings.HasPrefix(s.Stream, CategoryPrefix) || strings.HasPrefix(s.Stream, EventTypePrefix)
}

// Matches decide si un evento escrito en stream con etiqueta typeTag pertenece al selector.
func (s Selector) Matches(stream, typeTag string) bool {
	switch {
	case strings.HasPrefix(s.Stream, CategoryPrefix):
		return strings.HasPrefix(stream, strings.TrimPrefix(s.Stream, CategoryPrefix)+"-")
	case strings.HasPrefix(s.Stream, EventTypePrefix):
		return typeTag == strings.TrimPrefix(s.Stream, EventTypePrefix)
	default:
		return stream == s.Stream
	}
}

// BaseName quita el prefijo de sistema: "$ce-cart" -> "cart".
func (s Selector) BaseName() string {
	name := strings.TrimPrefix(s.Stream, CategoryPrefix)
	return strings.TrimPrefix(name, EventTypePrefix)
}

// From es el punto de arranque de una suscripción de catch-up.
type From struct {
	Start bool
	After uint64
}

// FromStart lee el stream desde el principio.
func FromStart() From { return From{Start: true} }

// After lee los eventos estrictamente posteriores a pos.
func After(pos uint64) From { return From{After: pos} }

// Next devuelve la primera posición a entregar.
func (f From) Next() uint64 {
	if f.Start {
		return 0
	}
	return f.After + 1
}

// Delivery es un envelope entregado junto con su protocolo de confirmación.
// En modo catch-up Ack y Nack no hacen nada.
type Delivery struct {
	Envelope sharedEvents.Envelope
	ack      func(ctx context.Context) error
	nack     func(ctx context.Context, action NackAction, reason string) error
}

// NewDelivery lo usan los adaptadores para ligar el envelope a su protocolo de ack.
func NewDelivery(env sharedEvents.Envelope, ack func(context.Context) error, nack func(context.Context, NackAction, string) error) Delivery {
	return Delivery{Envelope: env, ack: ack, nack: nack}
}

func (d Delivery) Ack(ctx context.Context) error {
	if d.ack == nil {
		return nil
	}
	return d.ack(ctx)
}

func (d Delivery) Nack(ctx context.Context, action NackAction, reason string) error {
	if d.nack == nil {
		return nil
	}
	return d.nack(ctx, action, reason)
}

// Subscription entrega envelopes en orden. Next bloquea hasta que hay uno o ctx se cancela.
type Subscription interface {
	Next(ctx context.Context) (Delivery, error)
	Close() error
}

// Source abre suscripciones sobre el log de eventos.
type Source interface {
	Mode() Mode
	Subscribe(ctx context.Context, sel Selector, from From) (Subscription, error)
}
