package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	ReadModelName     = "order-fulfillment"
	EntityFulfillment = "order_fulfillment"
)

// Selector del procesador: suscripción durable al tipo order-placed.
const (
	SourceStream = "$et-order-placed"
	SourceGroup  = "fulfillment"
)

type Status string

const StatusStarted Status = "Started"

var ErrFulfillmentNotFound = errors.New("fulfillment not found")

// Fulfillment es el proceso de preparación de un pedido. Hay como mucho uno por pedido.
type Fulfillment struct {
	ID        uuid.UUID `json:"id"`
	OrderID   string    `json:"orderId"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IDFor deriva el id del pedido, así una re-entrega genera el mismo id.
func IDFor(orderID string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(orderID))
}

type FulfillmentReadRepository interface {
	GetByOrderID(ctx context.Context, orderID string) (*Fulfillment, error)
}
