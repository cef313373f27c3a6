package sqllog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	sharedEvents "github.com/davicafu/hexaprojector/internal/shared/domain/events"
	sharedDB "github.com/davicafu/hexaprojector/internal/shared/infra/platform/db"
	"github.com/davicafu/hexaprojector/internal/shared/infra/stream"
)

// EventLog es un log de eventos guardado en una tabla SQL (event_log) que se
// consume en modo catch-up haciendo polling por posición.
type EventLog struct {
	db       *sql.DB
	dialect  sharedDB.Dialect
	interval time.Duration
	batch    int
	log      *zap.Logger
}

func NewEventLog(db *sql.DB, dialect sharedDB.Dialect, interval time.Duration, batch int, log *zap.Logger) *EventLog {
	if batch <= 0 {
		batch = 100
	}
	return &EventLog{db: db, dialect: dialect, interval: interval, batch: batch, log: log}
}

// InitSchema crea la tabla event_log si no existe.
func (l *EventLog) InitSchema(ctx context.Context) error {
	var ddl string
	if l.dialect == sharedDB.Postgres {
		ddl = `CREATE TABLE IF NOT EXISTS event_log (
			position   BIGSERIAL PRIMARY KEY,
			stream     TEXT NOT NULL,
			event_type TEXT NOT NULL,
			payload    JSONB NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
		)`
	} else {
		ddl = `CREATE TABLE IF NOT EXISTS event_log (
			position   INTEGER PRIMARY KEY AUTOINCREMENT,
			stream     TEXT NOT NULL,
			event_type TEXT NOT NULL,
			payload    TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`
	}
	if _, err := l.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create event_log table: %w", err)
	}
	return nil
}

// Append escribe un evento y devuelve la posición asignada. Las escrituras se
// serializan: el poller avanza por posición y no puede ver un hueco que se
// rellene más tarde.
func (l *EventLog) Append(ctx context.Context, streamName, typeTag string, payload []byte) (uint64, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, sharedDB.Classify(err)
	}
	defer tx.Rollback()

	if lock := l.appendLock(); lock != "" {
		if _, err := tx.ExecContext(ctx, lock); err != nil {
			return 0, sharedDB.Classify(fmt.Errorf("failed to lock event_log: %w", err))
		}
	}

	var pos int64
	err = tx.QueryRowContext(ctx,
		l.dialect.Rebind(`INSERT INTO event_log (stream, event_type, payload) VALUES (?, ?, ?) RETURNING position`),
		streamName, typeTag, string(payload),
	).Scan(&pos)
	if err != nil {
		return 0, sharedDB.Classify(err)
	}
	if err := tx.Commit(); err != nil {
		return 0, sharedDB.Classify(err)
	}
	return uint64(pos), nil
}

// appendLock bloquea otros escritores hasta el commit. En Postgres BIGSERIAL
// reparte posiciones antes de confirmar; SQLite ya tiene un único escritor.
func (l *EventLog) appendLock() string {
	if l.dialect == sharedDB.Postgres {
		return "LOCK TABLE event_log IN EXCLUSIVE MODE"
	}
	return ""
}

func (l *EventLog) Mode() stream.Mode { return stream.CatchUp }

func (l *EventLog) Subscribe(ctx context.Context, sel stream.Selector, from stream.From) (stream.Subscription, error) {
	l.log.Info("🎧 SQL event log subscription opened",
		zap.String("stream", sel.Stream),
		zap.Uint64("from", from.Next()),
		zap.Duration("interval", l.interval),
	)
	return &subscription{log: l, sel: sel, next: from.Next(), done: make(chan struct{})}, nil
}

// filter traduce el selector a la cláusula WHERE.
func (l *EventLog) filter(sel stream.Selector) (string, interface{}) {
	switch {
	case strings.HasPrefix(sel.Stream, stream.CategoryPrefix):
		return "stream LIKE ?", sel.BaseName() + "-%"
	case strings.HasPrefix(sel.Stream, stream.EventTypePrefix):
		return "event_type = ?", sel.BaseName()
	default:
		return "stream = ?", sel.Stream
	}
}

// fetch lee el siguiente lote de eventos con posición >= next.
func (l *EventLog) fetch(ctx context.Context, sel stream.Selector, next uint64) ([]sharedEvents.Envelope, error) {
	where, arg := l.filter(sel)
	query := l.dialect.Rebind(fmt.Sprintf(
		`SELECT position, stream, event_type, payload FROM event_log WHERE %s AND position >= ? ORDER BY position LIMIT ?`, where))

	rows, err := l.db.QueryContext(ctx, query, arg, int64(next), l.batch)
	if err != nil {
		return nil, sharedDB.Classify(err)
	}
	defer rows.Close()

	var batch []sharedEvents.Envelope
	for rows.Next() {
		var (
			pos        int64
			streamName string
			typeTag    string
			payload    []byte
		)
		if err := rows.Scan(&pos, &streamName, &typeTag, &payload); err != nil {
			return nil, sharedDB.Classify(err)
		}
		env := sharedEvents.Envelope{Stream: streamName, Position: uint64(pos), Type: typeTag, Payload: payload}
		if sel.IsSystem() && !sel.ResolveLinks {
			env = sharedEvents.Envelope{
				Stream:   sel.Stream,
				Position: uint64(pos),
				Type:     sharedEvents.LinkType,
				Payload:  []byte(fmt.Sprintf("%d@%s", pos, streamName)),
			}
		}
		batch = append(batch, env)
	}
	return batch, sharedDB.Classify(rows.Err())
}

type subscription struct {
	log     *EventLog
	sel     stream.Selector
	next    uint64
	pending []sharedEvents.Envelope
	done    chan struct{}
	once    sync.Once
}

func (s *subscription) Next(ctx context.Context) (stream.Delivery, error) {
	for len(s.pending) == 0 {
		batch, err := s.log.fetch(ctx, s.sel, s.next)
		if err != nil {
			if ctx.Err() != nil {
				return stream.Delivery{}, ctx.Err()
			}
			s.log.log.Warn("⚠️ Error polling event log", zap.String("stream", s.sel.Stream), zap.Error(err))
		}
		if len(batch) > 0 {
			s.pending = batch
			break
		}

		select {
		case <-ctx.Done():
			return stream.Delivery{}, ctx.Err()
		case <-s.done:
			return stream.Delivery{}, stream.ErrSubscriptionClosed
		case <-time.After(s.log.interval):
		}
	}

	env := s.pending[0]
	s.pending = s.pending[1:]
	s.next = env.Position + 1
	return stream.NewDelivery(env, nil, nil), nil
}

func (s *subscription) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}
