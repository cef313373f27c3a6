package memory

import (
	"context"
	"testing"
	"time"

	sharedEvents "github.com/davicafu/hexaprojector/internal/shared/domain/events"
	"github.com/davicafu/hexaprojector/internal/shared/infra/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(l *Log) {
	l.Append("cart-1", "visitor-started-shopping", []byte(`{"n":0}`))
	l.Append("order-1", "order-placed", []byte(`{"n":1}`))
	l.Append("cart-2", "visitor-started-shopping", []byte(`{"n":2}`))
	l.Append("cart-1", "cart-got-checked-out", []byte(`{"n":3}`))
}

func TestCatchUp_CategoryStreamResumesAfterCheckpoint(t *testing.T) {
	// Arrange
	l := NewLog()
	seed(l)
	sel := stream.Selector{Stream: "$ce-cart", ResolveLinks: true}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	// Act
	sub, err := l.CatchUp().Subscribe(ctx, sel, stream.After(0))
	require.NoError(t, err)
	first, err := sub.Next(ctx)
	require.NoError(t, err)
	second, err := sub.Next(ctx)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, uint64(2), first.Envelope.Position)
	assert.Equal(t, "cart-2", first.Envelope.Stream)
	assert.Equal(t, uint64(3), second.Envelope.Position)
	assert.Equal(t, "cart-got-checked-out", second.Envelope.Type)
}

func TestCatchUp_UnresolvedLinks(t *testing.T) {
	l := NewLog()
	seed(l)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	sub, err := l.CatchUp().Subscribe(ctx, stream.Selector{Stream: "$et-order-placed"}, stream.FromStart())
	require.NoError(t, err)
	d, err := sub.Next(ctx)

	require.NoError(t, err)
	assert.Equal(t, sharedEvents.LinkType, d.Envelope.Type)
	assert.Equal(t, "1@order-1", string(d.Envelope.Payload))
}

func TestCatchUp_WaitsForNewEvents(t *testing.T) {
	l := NewLog()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	sub, err := l.CatchUp().Subscribe(ctx, stream.Selector{Stream: "cart-9"}, stream.FromStart())
	require.NoError(t, err)

	go func() {
		time.Sleep(20 * time.Millisecond)
		l.Append("cart-9", "visitor-started-shopping", []byte(`{}`))
	}()
	d, err := sub.Next(ctx)

	require.NoError(t, err)
	assert.Equal(t, uint64(0), d.Envelope.Position)
}

func TestCatchUp_NextHonoursCancellation(t *testing.T) {
	l := NewLog()
	ctx, cancel := context.WithCancel(context.Background())
	sub, err := l.CatchUp().Subscribe(ctx, stream.Selector{Stream: "cart-1"}, stream.FromStart())
	require.NoError(t, err)

	cancel()
	_, err = sub.Next(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestDurable_AckRetrySkip(t *testing.T) {
	// Arrange
	l := NewLog()
	seed(l)
	sel := stream.Selector{Stream: "$ce-cart", Group: "carts", ResolveLinks: true}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	sub, err := l.Durable(0).Subscribe(ctx, sel, stream.FromStart())
	require.NoError(t, err)

	// Act: ack 0, retry 2 and skip it on redelivery, ack 3
	d0, err := sub.Next(ctx)
	require.NoError(t, err)
	require.NoError(t, d0.Ack(ctx))

	d2, err := sub.Next(ctx)
	require.NoError(t, err)
	require.NoError(t, d2.Nack(ctx, stream.NackRetry, "db down"))
	assert.Equal(t, StateNackedRetry, l.State(sel, 2))

	redelivered, err := sub.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), redelivered.Envelope.Position)
	require.NoError(t, redelivered.Nack(ctx, stream.NackSkip, "poison"))

	d3, err := sub.Next(ctx)
	require.NoError(t, err)
	require.NoError(t, d3.Ack(ctx))

	// Assert
	assert.Equal(t, StateAcked, l.State(sel, 0))
	assert.Equal(t, StateResolved, l.State(sel, 2))
	assert.Equal(t, StateAcked, l.State(sel, 3))
	assert.Equal(t, []uint64{2}, l.Parked(sel))
}

func TestDurable_RedeliversAfterAckTimeout(t *testing.T) {
	l := NewLog()
	l.Append("order-1", "order-placed", []byte(`{}`))
	sel := stream.Selector{Stream: "$et-order-placed", Group: "fulfillment", ResolveLinks: true}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	sub, err := l.Durable(30*time.Millisecond).Subscribe(ctx, sel, stream.FromStart())
	require.NoError(t, err)

	first, err := sub.Next(ctx)
	require.NoError(t, err)
	again, err := sub.Next(ctx)

	require.NoError(t, err)
	assert.Equal(t, first.Envelope.Position, again.Envelope.Position)
	assert.Equal(t, StateDelivered, l.State(sel, 0))
}
