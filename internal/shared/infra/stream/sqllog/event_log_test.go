package sqllog

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	sharedEvents "github.com/davicafu/hexaprojector/internal/shared/domain/events"
	sharedDB "github.com/davicafu/hexaprojector/internal/shared/infra/platform/db"
	"github.com/davicafu/hexaprojector/internal/shared/infra/stream"
)

func setupEventLog(t *testing.T) *EventLog {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	l := NewEventLog(db, sharedDB.SQLite, 10*time.Millisecond, 2, zap.NewNop())
	require.NoError(t, l.InitSchema(context.Background()))
	return l
}

func TestEventLog_CategoryCatchUpInBatches(t *testing.T) {
	// Arrange
	l := setupEventLog(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for _, e := range []struct{ stream, typ string }{
		{"cart-1", "visitor-started-shopping"},
		{"order-9", "order-placed"},
		{"cart-2", "visitor-started-shopping"},
		{"cart-1", "item-got-added-to-cart"},
		{"cart-2", "cart-got-abandoned"},
	} {
		_, err := l.Append(ctx, e.stream, e.typ, []byte(`{}`))
		require.NoError(t, err)
	}

	// Act
	sub, err := l.Subscribe(ctx, stream.Selector{Stream: "$ce-cart", ResolveLinks: true}, stream.After(1))
	require.NoError(t, err)
	defer sub.Close()

	var got []uint64
	for i := 0; i < 3; i++ {
		d, err := sub.Next(ctx)
		require.NoError(t, err)
		got = append(got, d.Envelope.Position)
	}

	// Assert: posiciones 1-based, la 2 es un pedido y no pertenece a la categoría
	assert.Equal(t, []uint64{3, 4, 5}, got)
}

func TestEventLog_PollsForNewEvents(t *testing.T) {
	l := setupEventLog(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	sub, err := l.Subscribe(ctx, stream.Selector{Stream: "$et-order-placed", ResolveLinks: true}, stream.FromStart())
	require.NoError(t, err)

	go func() {
		time.Sleep(30 * time.Millisecond)
		_, _ = l.Append(context.Background(), "order-1", "order-placed", []byte(`{"orderId":"order-1"}`))
	}()
	d, err := sub.Next(ctx)

	require.NoError(t, err)
	assert.Equal(t, "order-placed", d.Envelope.Type)
	assert.JSONEq(t, `{"orderId":"order-1"}`, string(d.Envelope.Payload))
}

func TestEventLog_UnresolvedLinks(t *testing.T) {
	l := setupEventLog(t)
	ctx := context.Background()
	pos, err := l.Append(ctx, "cart-7", "visitor-started-shopping", []byte(`{}`))
	require.NoError(t, err)

	sub, err := l.Subscribe(ctx, stream.Selector{Stream: "$ce-cart"}, stream.FromStart())
	require.NoError(t, err)
	d, err := sub.Next(ctx)

	require.NoError(t, err)
	assert.Equal(t, sharedEvents.LinkType, d.Envelope.Type)
	assert.Equal(t, pos, d.Envelope.Position)
}

func TestEventLog_AppendLockOnlyOnPostgres(t *testing.T) {
	pg := NewEventLog(nil, sharedDB.Postgres, time.Second, 10, zap.NewNop())
	lite := NewEventLog(nil, sharedDB.SQLite, time.Second, 10, zap.NewNop())

	assert.Equal(t, "LOCK TABLE event_log IN EXCLUSIVE MODE", pg.appendLock())
	assert.Empty(t, lite.appendLock())
}

func TestEventLog_ConcurrentAppendsLeaveNoGaps(t *testing.T) {
	// Arrange
	l := setupEventLog(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	const writers = 8

	// Act
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Append(ctx, "order-1", "order-placed", []byte(`{}`))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Assert
	sub, err := l.Subscribe(ctx, stream.Selector{Stream: "$et-order-placed", ResolveLinks: true}, stream.FromStart())
	require.NoError(t, err)
	defer sub.Close()
	for want := uint64(1); want <= writers; want++ {
		d, err := sub.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, d.Envelope.Position)
	}
}
