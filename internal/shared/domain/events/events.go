package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Type es la etiqueta de tipo en el cable.
type Type string

const (
	TypeVisitorStarted    Type = "visitor-started-shopping"
	TypeCustomerStarted   Type = "customer-started-shopping"
	TypeShopperIdentified Type = "cart-shopper-got-identified"
	TypeItemAdded         Type = "item-got-added-to-cart"
	TypeItemRemoved       Type = "item-got-removed-from-cart"
	TypeCheckedOut        Type = "cart-got-checked-out"
	TypeAbandoned         Type = "cart-got-abandoned"
	TypeOrderPlaced       Type = "order-placed"

	// TypeIgnored identifica la variante para etiquetas sin mapear.
	TypeIgnored Type = "ignored"
)

// Event es el conjunto cerrado de eventos de dominio decodificados.
type Event interface {
	EventType() Type
	OccurredAt() time.Time
	sealed()
}

// ---------------- Carrito ----------------

type VisitorStarted struct {
	CartID string    `json:"cartId" validate:"required"`
	At     time.Time `json:"at" validate:"required"`
}

func (VisitorStarted) EventType() Type         { return TypeVisitorStarted }
func (e VisitorStarted) OccurredAt() time.Time { return e.At }
func (VisitorStarted) sealed()                 {}

type CustomerStarted struct {
	CartID     string    `json:"cartId" validate:"required"`
	CustomerID string    `json:"customerId" validate:"required"`
	At         time.Time `json:"at" validate:"required"`
}

func (CustomerStarted) EventType() Type         { return TypeCustomerStarted }
func (e CustomerStarted) OccurredAt() time.Time { return e.At }
func (CustomerStarted) sealed()                 {}

type ShopperIdentified struct {
	CartID     string    `json:"cartId" validate:"required"`
	CustomerID string    `json:"customerId" validate:"required"`
	At         time.Time `json:"at" validate:"required"`
}

func (ShopperIdentified) EventType() Type         { return TypeShopperIdentified }
func (e ShopperIdentified) OccurredAt() time.Time { return e.At }
func (ShopperIdentified) sealed()                 {}

type ItemAdded struct {
	CartID      string          `json:"cartId" validate:"required"`
	ProductID   string          `json:"productId" validate:"required"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity" validate:"gte=0"`
	Currency    string          `json:"currency,omitempty"`
	Price       Price           `json:"pricePerUnit"`
	TaxRate     decimal.Decimal `json:"taxRate"`
	At          time.Time       `json:"at" validate:"required"`
}

func (ItemAdded) EventType() Type         { return TypeItemAdded }
func (e ItemAdded) OccurredAt() time.Time { return e.At }
func (ItemAdded) sealed()                 {}

type ItemRemoved struct {
	CartID    string    `json:"cartId" validate:"required"`
	ProductID string    `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"gte=0"`
	At        time.Time `json:"at" validate:"required"`
}

func (ItemRemoved) EventType() Type         { return TypeItemRemoved }
func (e ItemRemoved) OccurredAt() time.Time { return e.At }
func (ItemRemoved) sealed()                 {}

type CheckedOut struct {
	CartID  string    `json:"cartId" validate:"required"`
	OrderID string    `json:"orderId"`
	At      time.Time `json:"at" validate:"required"`
}

func (CheckedOut) EventType() Type         { return TypeCheckedOut }
func (e CheckedOut) OccurredAt() time.Time { return e.At }
func (CheckedOut) sealed()                 {}

type Abandoned struct {
	CartID            string    `json:"cartId" validate:"required"`
	AfterBeingIdleFor string    `json:"afterBeingIdleFor"`
	At                time.Time `json:"at" validate:"required"`
}

func (Abandoned) EventType() Type         { return TypeAbandoned }
func (e Abandoned) OccurredAt() time.Time { return e.At }
func (Abandoned) sealed()                 {}

// ---------------- Pedido ----------------

type Store struct {
	URL              string `json:"url"`
	CountryCode      string `json:"countryCode"`
	GeographicRegion string `json:"geographicRegion" validate:"required"`
}

type LineItem struct {
	ProductID   string          `json:"productId" validate:"required"`
	ProductName string          `json:"productName"`
	Category    string          `json:"category"`
	Quantity    int             `json:"quantity" validate:"gte=0"`
	Currency    string          `json:"currency,omitempty"`
	Price       Price           `json:"pricePerUnit"`
	TaxRate     decimal.Decimal `json:"taxRate"`
}

// Total es precio unitario por cantidad.
func (l LineItem) Total() decimal.Decimal {
	return l.Price.Amount.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Address struct {
	Country string   `json:"country"`
	Lines   []string `json:"lines"`
}

type Shipping struct {
	Recipient    string  `json:"recipient"`
	Address      Address `json:"address"`
	Instructions string  `json:"instructions"`
	Method       string  `json:"method"`
}

type Recipient struct {
	Title        string `json:"title"`
	FullName     string `json:"fullName"`
	EmailAddress string `json:"emailAddress"`
	PhoneNumber  string `json:"phoneNumber"`
}

type Billing struct {
	Recipient     Recipient `json:"recipient"`
	Address       Address   `json:"address"`
	PaymentMethod string    `json:"paymentMethod"`
}

type OrderPlaced struct {
	OrderID        string     `json:"orderId" validate:"required"`
	CustomerID     string     `json:"customerId"`
	CheckoutOfCart string     `json:"checkoutOfCart"`
	Store          Store      `json:"store"`
	LineItems      []LineItem `json:"lineItems" validate:"dive"`
	Shipping       Shipping   `json:"shipping"`
	Billing        Billing    `json:"billing"`
	At             time.Time  `json:"at" validate:"required"`
}

func (OrderPlaced) EventType() Type         { return TypeOrderPlaced }
func (e OrderPlaced) OccurredAt() time.Time { return e.At }
func (OrderPlaced) sealed()                 {}

// ---------------- Ignorado ----------------

// Ignored representa una etiqueta de tipo que esta versión no conoce.
type Ignored struct {
	Tag string
}

func (Ignored) EventType() Type       { return TypeIgnored }
func (Ignored) OccurredAt() time.Time { return time.Time{} }
func (Ignored) sealed()               {}
