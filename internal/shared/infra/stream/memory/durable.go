package memory

import (
	"context"
	"sync"
	"time"

	"github.com/davicafu/hexaprojector/internal/shared/infra/stream"
)

// DeliveryState es el estado de un mensaje dentro de un grupo durable.
type DeliveryState int

const (
	StatePending DeliveryState = iota
	StateDelivered
	StateAcked
	StateNackedRetry
	StateResolved
)

func (s DeliveryState) String() string {
	switch s {
	case StateDelivered:
		return "delivered"
	case StateAcked:
		return "acked"
	case StateNackedRetry:
		return "nacked-retry"
	case StateResolved:
		return "resolved"
	default:
		return "pending"
	}
}

// group guarda el progreso de un grupo de suscripción (stream, grupo).
// Varios suscriptores del mismo grupo compiten por los mensajes.
type group struct {
	sel      stream.Selector
	cursor   uint64
	retry    []uint64
	inflight map[uint64]time.Time
	states   map[uint64]DeliveryState
	parked   []uint64
}

func groupKey(sel stream.Selector) string {
	return sel.Stream + "::" + sel.Group
}

type durableSource struct {
	log        *Log
	ackTimeout time.Duration
}

// Durable devuelve una fuente de suscripciones durables. Los mensajes sin ack
// se re-entregan pasado ackTimeout (0 desactiva la re-entrega por tiempo).
func (l *Log) Durable(ackTimeout time.Duration) stream.Source {
	return &durableSource{log: l, ackTimeout: ackTimeout}
}

func (s *durableSource) Mode() stream.Mode { return stream.Durable }

// Subscribe ignora from: el servidor es quien sabe por dónde va el grupo.
func (s *durableSource) Subscribe(ctx context.Context, sel stream.Selector, _ stream.From) (stream.Subscription, error) {
	s.log.mu.Lock()
	defer s.log.mu.Unlock()

	key := groupKey(sel)
	if _, ok := s.log.groups[key]; !ok {
		s.log.groups[key] = &group{
			sel:      sel,
			inflight: make(map[uint64]time.Time),
			states:   make(map[uint64]DeliveryState),
		}
	}
	return &durableSubscription{source: s, key: key, done: make(chan struct{})}, nil
}

// State devuelve el estado de la posición pos para el grupo del selector.
func (l *Log) State(sel stream.Selector, pos uint64) DeliveryState {
	l.mu.RLock()
	defer l.mu.RUnlock()

	g, ok := l.groups[groupKey(sel)]
	if !ok {
		return StatePending
	}
	return g.states[pos]
}

// Parked devuelve las posiciones resueltas con skip para el grupo del selector.
func (l *Log) Parked(sel stream.Selector) []uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	g, ok := l.groups[groupKey(sel)]
	if !ok {
		return nil
	}
	return append([]uint64(nil), g.parked...)
}

type durableSubscription struct {
	source    *durableSource
	key       string
	done      chan struct{}
	closeOnce sync.Once
}

func (s *durableSubscription) Next(ctx context.Context) (stream.Delivery, error) {
	l := s.source.log
	for {
		l.mu.Lock()
		g := l.groups[s.key]
		pos, ok := s.nextLocked(g)
		if ok {
			g.states[pos] = StateDelivered
			g.inflight[pos] = time.Now()
			env := l.envelopeLocked(g.sel, pos)
			l.mu.Unlock()
			return stream.NewDelivery(env,
				func(ctx context.Context) error { return s.ack(pos) },
				func(ctx context.Context, action stream.NackAction, reason string) error { return s.nack(pos, action) },
			), nil
		}
		wait := l.changed
		hasInflight := len(g.inflight) > 0
		l.mu.Unlock()

		var timer *time.Timer
		var timeout <-chan time.Time
		if hasInflight && s.source.ackTimeout > 0 {
			timer = time.NewTimer(s.source.ackTimeout)
			timeout = timer.C
		}

		var err error
		select {
		case <-ctx.Done():
			err = ctx.Err()
		case <-s.done:
			err = stream.ErrSubscriptionClosed
		case <-wait:
		case <-timeout:
		}
		if timer != nil {
			timer.Stop()
		}
		if err != nil {
			return stream.Delivery{}, err
		}
	}
}

// nextLocked elige el siguiente mensaje: primero las re-entregas pedidas,
// luego los que vencieron sin ack y por último los nuevos.
func (s *durableSubscription) nextLocked(g *group) (uint64, bool) {
	if len(g.retry) > 0 {
		pos := g.retry[0]
		g.retry = g.retry[1:]
		return pos, true
	}

	if s.source.ackTimeout > 0 {
		now := time.Now()
		for pos, since := range g.inflight {
			if now.Sub(since) >= s.source.ackTimeout {
				return pos, true
			}
		}
	}

	pos, ok := s.source.log.nextMatchLocked(g.sel, g.cursor)
	if !ok {
		return 0, false
	}
	g.cursor = pos + 1
	return pos, true
}

func (s *durableSubscription) ack(pos uint64) error {
	l := s.source.log
	l.mu.Lock()
	defer l.mu.Unlock()

	g := l.groups[s.key]
	if g.states[pos] != StateDelivered {
		return nil
	}
	g.states[pos] = StateAcked
	delete(g.inflight, pos)
	return nil
}

func (s *durableSubscription) nack(pos uint64, action stream.NackAction) error {
	l := s.source.log
	l.mu.Lock()
	defer l.mu.Unlock()

	g := l.groups[s.key]
	if g.states[pos] != StateDelivered {
		return nil
	}
	delete(g.inflight, pos)

	switch action {
	case stream.NackSkip:
		g.states[pos] = StateResolved
		g.parked = append(g.parked, pos)
	default:
		g.states[pos] = StateNackedRetry
		g.retry = append(g.retry, pos)
		l.notifyLocked()
	}
	return nil
}

func (s *durableSubscription) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}
