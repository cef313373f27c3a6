package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const ReadModelName = "carts"

// SourceStream es la categoría de eventos de carrito.
const SourceStream = "$ce-cart"

// Entidades (tablas / colecciones) del read model.
const (
	EntityCarts     = "carts"
	EntityCartItems = "cart_items"
)

type CartStatus string

const (
	CartStarted    CartStatus = "STARTED"
	CartCheckedOut CartStatus = "CHECKED_OUT"
	CartAbandoned  CartStatus = "ABANDONED"
)

// Valid indica si el estado es uno de los conocidos.
func (s CartStatus) Valid() bool {
	switch s {
	case CartStarted, CartCheckedOut, CartAbandoned:
		return true
	}
	return false
}

type Cart struct {
	CartID     string     `json:"cartId"`
	CustomerID *string    `json:"customerId,omitempty"`
	Status     CartStatus `json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	Items      []CartItem `json:"items,omitempty"`
}

// CartItem siempre referencia un Cart existente. Se borra cuando la cantidad llega a 0.
type CartItem struct {
	CartID       string          `json:"cartId"`
	ProductID    string          `json:"productId"`
	ProductName  string          `json:"productName"`
	Quantity     int             `json:"quantity"`
	Currency     string          `json:"currency,omitempty"`
	PricePerUnit decimal.Decimal `json:"pricePerUnit"`
	TaxRate      decimal.Decimal `json:"taxRate"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// Subtotal es precio unitario por cantidad.
func (i CartItem) Subtotal() decimal.Decimal {
	return i.PricePerUnit.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Total suma los subtotales de las líneas.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}
