package projector

import (
	"fmt"

	sharedDomain "github.com/davicafu/hexaprojector/internal/shared/domain"
	sharedEvents "github.com/davicafu/hexaprojector/internal/shared/domain/events"
)

// HandlerFunc traduce un evento decodificado en mutaciones del read model.
// Debe ser pura: sin E/S y determinista para el mismo evento.
type HandlerFunc func(evt sharedEvents.Event) ([]sharedDomain.Mutation, error)

// Dispatcher elige el handler registrado para cada variante de evento.
type Dispatcher struct {
	handlers map[sharedEvents.Type]HandlerFunc
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[sharedEvents.Type]HandlerFunc)}
}

// On registra el handler de la variante T. Registrar dos veces la misma variante sustituye el anterior.
func On[T sharedEvents.Event](d *Dispatcher, handler func(evt T) ([]sharedDomain.Mutation, error)) {
	var zero T
	d.handlers[zero.EventType()] = func(evt sharedEvents.Event) ([]sharedDomain.Mutation, error) {
		typed, ok := evt.(T)
		if !ok {
			return nil, fmt.Errorf("handler for %s received %T", zero.EventType(), evt)
		}
		return handler(typed)
	}
}

// Handles indica si hay handler para la variante.
func (d *Dispatcher) Handles(t sharedEvents.Type) bool {
	_, ok := d.handlers[t]
	return ok
}

// Project es total: variantes sin handler e Ignored devuelven una lista vacía.
func (d *Dispatcher) Project(evt sharedEvents.Event) ([]sharedDomain.Mutation, error) {
	if evt == nil {
		return nil, nil
	}
	h, ok := d.handlers[evt.EventType()]
	if !ok {
		return nil, nil
	}
	return h(evt)
}
