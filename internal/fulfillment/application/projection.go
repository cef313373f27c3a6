package application

import (
	fulfillmentDomain "github.com/davicafu/hexaprojector/internal/fulfillment/domain"
	"github.com/davicafu/hexaprojector/internal/projector"
	sharedDomain "github.com/davicafu/hexaprojector/internal/shared/domain"
	sharedEvents "github.com/davicafu/hexaprojector/internal/shared/domain/events"
)

// NewProjection arranca el fulfillment de cada pedido. Un segundo
// OrderPlaced del mismo pedido no cambia nada.
func NewProjection() *projector.Dispatcher {
	d := projector.NewDispatcher()
	projector.On(d, onOrderPlaced)
	return d
}

func onOrderPlaced(evt sharedEvents.OrderPlaced) ([]sharedDomain.Mutation, error) {
	at := evt.At.UTC()
	return []sharedDomain.Mutation{
		sharedDomain.UpsertIfAbsent(fulfillmentDomain.EntityFulfillment,
			[]sharedDomain.Field{sharedDomain.F("order_id", evt.OrderID)},
			sharedDomain.F("id", fulfillmentDomain.IDFor(evt.OrderID).String()),
			sharedDomain.F("status", string(fulfillmentDomain.StatusStarted)),
			sharedDomain.F("created_at", at),
			sharedDomain.F("updated_at", at),
		),
	}, nil
}
