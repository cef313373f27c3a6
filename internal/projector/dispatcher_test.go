package projector

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sharedDomain "github.com/davicafu/hexaprojector/internal/shared/domain"
	sharedEvents "github.com/davicafu/hexaprojector/internal/shared/domain/events"
)

func TestDispatcher_IsTotal(t *testing.T) {
	d := cartDispatcher()

	for _, evt := range []sharedEvents.Event{
		sharedEvents.Ignored{Tag: "something-new"},
		sharedEvents.Abandoned{CartID: "c1"},
		nil,
	} {
		mutations, err := d.Project(evt)
		require.NoError(t, err)
		assert.Empty(t, mutations)
	}
}

func TestDispatcher_RoutesByVariant(t *testing.T) {
	d := cartDispatcher()

	mutations, err := d.Project(sharedEvents.VisitorStarted{CartID: "c9"})

	require.NoError(t, err)
	require.Len(t, mutations, 1)
	assert.Equal(t, sharedDomain.MutationUpsertIfAbsent, mutations[0].Kind)
	assert.Equal(t, "c9", mutations[0].KeyString())
	assert.True(t, d.Handles(sharedEvents.TypeVisitorStarted))
	assert.False(t, d.Handles(sharedEvents.TypeOrderPlaced))
}

func TestDispatcher_PropagatesHandlerErrors(t *testing.T) {
	d := NewDispatcher()
	boom := errors.New("boom")
	On(d, func(evt sharedEvents.OrderPlaced) ([]sharedDomain.Mutation, error) { return nil, boom })

	_, err := d.Project(sharedEvents.OrderPlaced{OrderID: "o1"})

	assert.ErrorIs(t, err, boom)
}
