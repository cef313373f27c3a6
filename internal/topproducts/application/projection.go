package application

import (
	"github.com/shopspring/decimal"

	"github.com/davicafu/hexaprojector/internal/projector"
	sharedDomain "github.com/davicafu/hexaprojector/internal/shared/domain"
	sharedEvents "github.com/davicafu/hexaprojector/internal/shared/domain/events"
	rankingDomain "github.com/davicafu/hexaprojector/internal/topproducts/domain"
)

// NewProjection mantiene un ranking por hora de la cantidad neta añadida a carritos.
func NewProjection() *projector.Dispatcher {
	d := projector.NewDispatcher()
	projector.On(d, onItemAdded)
	projector.On(d, onItemRemoved)
	return d
}

func rankingKey(evt sharedEvents.Event, productID string) []sharedDomain.Field {
	return []sharedDomain.Field{
		sharedDomain.F("hour", rankingDomain.HourKey(evt.OccurredAt())),
		sharedDomain.F("product_id", productID),
	}
}

func onItemAdded(evt sharedEvents.ItemAdded) ([]sharedDomain.Mutation, error) {
	key := rankingKey(evt, evt.ProductID)
	nameKey := []sharedDomain.Field{sharedDomain.F("product_id", evt.ProductID)}
	name := sharedDomain.F("product_name", evt.ProductName)

	return []sharedDomain.Mutation{
		sharedDomain.UpsertIfAbsent(rankingDomain.EntityRanking, key, sharedDomain.F("quantity", 0)),
		sharedDomain.Increment(rankingDomain.EntityRanking, key, "quantity", decimal.NewFromInt(int64(evt.Quantity))),
		sharedDomain.UpsertIfAbsent(rankingDomain.EntityProductNames, nameKey, name),
		sharedDomain.SetFields(rankingDomain.EntityProductNames, nameKey, name),
	}, nil
}

// onItemRemoved resta en la hora del propio evento; un producto que llega a 0 sale del ranking.
func onItemRemoved(evt sharedEvents.ItemRemoved) ([]sharedDomain.Mutation, error) {
	key := rankingKey(evt, evt.ProductID)
	return []sharedDomain.Mutation{
		sharedDomain.UpsertIfAbsent(rankingDomain.EntityRanking, key, sharedDomain.F("quantity", 0)),
		sharedDomain.Increment(rankingDomain.EntityRanking, key, "quantity", decimal.NewFromInt(int64(-evt.Quantity))),
		sharedDomain.DeleteIfZero(rankingDomain.EntityRanking, key, "quantity"),
	}, nil
}
