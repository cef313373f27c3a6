package memory

import (
	"context"
	"fmt"
	"sync"

	sharedEvents "github.com/davicafu/hexaprojector/internal/shared/domain/events"
	"github.com/davicafu/hexaprojector/internal/shared/infra/stream"
)

// record es un evento escrito en el log. Su posición es su índice global.
type record struct {
	stream  string
	typeTag string
	payload []byte
}

// Log es un log de eventos en memoria, append-only, con lectores catch-up y
// grupos de suscripción durables. Sirve para ejecuciones locales y tests.
type Log struct {
	mu      sync.RWMutex
	records []record
	changed chan struct{} // se cierra y se reemplaza en cada cambio
	groups  map[string]*group
}

func NewLog() *Log {
	return &Log{
		changed: make(chan struct{}),
		groups:  make(map[string]*group),
	}
}

// Append escribe un evento y devuelve su posición.
func (l *Log) Append(streamName, typeTag string, payload []byte) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = append(l.records, record{stream: streamName, typeTag: typeTag, payload: payload})
	l.notifyLocked()
	return uint64(len(l.records) - 1)
}

// Len devuelve el número de eventos escritos.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

func (l *Log) notifyLocked() {
	close(l.changed)
	l.changed = make(chan struct{})
}

// envelopeLocked construye el envelope tal y como lo vería el selector.
func (l *Log) envelopeLocked(sel stream.Selector, pos uint64) sharedEvents.Envelope {
	rec := l.records[pos]
	if sel.IsSystem() && !sel.ResolveLinks {
		return sharedEvents.Envelope{
			Stream:   sel.Stream,
			Position: pos,
			Type:     sharedEvents.LinkType,
			Payload:  []byte(fmt.Sprintf("%d@%s", pos, rec.stream)),
		}
	}
	return sharedEvents.Envelope{Stream: rec.stream, Position: pos, Type: rec.typeTag, Payload: rec.payload}
}

// nextMatchLocked busca la primera posición >= from que pertenece al selector.
func (l *Log) nextMatchLocked(sel stream.Selector, from uint64) (uint64, bool) {
	for i := from; i < uint64(len(l.records)); i++ {
		if sel.Matches(l.records[i].stream, l.records[i].typeTag) {
			return i, true
		}
	}
	return 0, false
}

// ---------------- Catch-up ----------------

type catchUpSource struct {
	log *Log
}

// CatchUp devuelve una fuente de suscripciones de catch-up sobre el log.
func (l *Log) CatchUp() stream.Source {
	return &catchUpSource{log: l}
}

func (s *catchUpSource) Mode() stream.Mode { return stream.CatchUp }

func (s *catchUpSource) Subscribe(ctx context.Context, sel stream.Selector, from stream.From) (stream.Subscription, error) {
	return &catchUpSubscription{log: s.log, sel: sel, cursor: from.Next(), done: make(chan struct{})}, nil
}

type catchUpSubscription struct {
	log       *Log
	sel       stream.Selector
	cursor    uint64
	done      chan struct{}
	closeOnce sync.Once
}

func (s *catchUpSubscription) Next(ctx context.Context) (stream.Delivery, error) {
	for {
		s.log.mu.RLock()
		pos, ok := s.log.nextMatchLocked(s.sel, s.cursor)
		if ok {
			env := s.log.envelopeLocked(s.sel, pos)
			s.log.mu.RUnlock()
			s.cursor = pos + 1
			return stream.NewDelivery(env, nil, nil), nil
		}
		if n := uint64(len(s.log.records)); n > s.cursor {
			s.cursor = n
		}
		wait := s.log.changed
		s.log.mu.RUnlock()

		select {
		case <-ctx.Done():
			return stream.Delivery{}, ctx.Err()
		case <-s.done:
			return stream.Delivery{}, stream.ErrSubscriptionClosed
		case <-wait:
		}
	}
}

func (s *catchUpSubscription) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}
