package application

import (
	"github.com/shopspring/decimal"

	cartDomain "github.com/davicafu/hexaprojector/internal/cart/domain"
	"github.com/davicafu/hexaprojector/internal/projector"
	sharedDomain "github.com/davicafu/hexaprojector/internal/shared/domain"
	sharedEvents "github.com/davicafu/hexaprojector/internal/shared/domain/events"
)

// NewProjection registra los handlers del read model de carritos.
// Los handlers son puros: solo traducen el evento a mutaciones.
func NewProjection() *projector.Dispatcher {
	d := projector.NewDispatcher()
	projector.On(d, onVisitorStarted)
	projector.On(d, onCustomerStarted)
	projector.On(d, onShopperIdentified)
	projector.On(d, onItemAdded)
	projector.On(d, onItemRemoved)
	projector.On(d, onCheckedOut)
	projector.On(d, onAbandoned)
	return d
}

func cartKey(cartID string) []sharedDomain.Field {
	return []sharedDomain.Field{sharedDomain.F("cart_id", cartID)}
}

func itemKey(cartID, productID string) []sharedDomain.Field {
	return []sharedDomain.Field{sharedDomain.F("cart_id", cartID), sharedDomain.F("product_id", productID)}
}

// startCart crea el carrito si no existe. customerID nil deja customer_id vacío.
func startCart(cartID string, customerID interface{}, evt sharedEvents.Event) sharedDomain.Mutation {
	at := evt.OccurredAt().UTC()
	return sharedDomain.UpsertIfAbsent(cartDomain.EntityCarts, cartKey(cartID),
		sharedDomain.F("customer_id", customerID),
		sharedDomain.F("status", string(cartDomain.CartStarted)),
		sharedDomain.F("created_at", at),
		sharedDomain.F("updated_at", at),
	)
}

func setCart(cartID string, evt sharedEvents.Event, fields ...sharedDomain.Field) sharedDomain.Mutation {
	fields = append(fields, sharedDomain.F("updated_at", evt.OccurredAt().UTC()))
	return sharedDomain.SetFields(cartDomain.EntityCarts, cartKey(cartID), fields...)
}

func onVisitorStarted(evt sharedEvents.VisitorStarted) ([]sharedDomain.Mutation, error) {
	return []sharedDomain.Mutation{startCart(evt.CartID, nil, evt)}, nil
}

func onCustomerStarted(evt sharedEvents.CustomerStarted) ([]sharedDomain.Mutation, error) {
	return []sharedDomain.Mutation{startCart(evt.CartID, evt.CustomerID, evt)}, nil
}

func onShopperIdentified(evt sharedEvents.ShopperIdentified) ([]sharedDomain.Mutation, error) {
	return []sharedDomain.Mutation{setCart(evt.CartID, evt, sharedDomain.F("customer_id", evt.CustomerID))}, nil
}

func onCheckedOut(evt sharedEvents.CheckedOut) ([]sharedDomain.Mutation, error) {
	return []sharedDomain.Mutation{setCart(evt.CartID, evt, sharedDomain.F("status", string(cartDomain.CartCheckedOut)))}, nil
}

func onAbandoned(evt sharedEvents.Abandoned) ([]sharedDomain.Mutation, error) {
	return []sharedDomain.Mutation{setCart(evt.CartID, evt, sharedDomain.F("status", string(cartDomain.CartAbandoned)))}, nil
}

// onItemAdded asegura el carrito (un item nunca queda huérfano), crea la
// línea a cantidad 0 si falta y después suma la cantidad.
func onItemAdded(evt sharedEvents.ItemAdded) ([]sharedDomain.Mutation, error) {
	at := evt.At.UTC()
	key := itemKey(evt.CartID, evt.ProductID)
	details := []sharedDomain.Field{
		sharedDomain.F("product_name", evt.ProductName),
		sharedDomain.F("currency", evt.Price.Currency),
		sharedDomain.F("price_per_unit", evt.Price.Amount),
		sharedDomain.F("tax_rate", evt.TaxRate),
		sharedDomain.F("updated_at", at),
	}

	return []sharedDomain.Mutation{
		startCart(evt.CartID, nil, evt),
		sharedDomain.UpsertIfAbsent(cartDomain.EntityCartItems, key, append([]sharedDomain.Field{sharedDomain.F("quantity", 0)}, details...)...),
		sharedDomain.Increment(cartDomain.EntityCartItems, key, "quantity", decimal.NewFromInt(int64(evt.Quantity))),
		sharedDomain.SetFields(cartDomain.EntityCartItems, key, details...),
		setCart(evt.CartID, evt),
	}, nil
}

func onItemRemoved(evt sharedEvents.ItemRemoved) ([]sharedDomain.Mutation, error) {
	key := itemKey(evt.CartID, evt.ProductID)
	return []sharedDomain.Mutation{
		sharedDomain.Increment(cartDomain.EntityCartItems, key, "quantity", decimal.NewFromInt(int64(-evt.Quantity))),
		sharedDomain.DeleteIfZero(cartDomain.EntityCartItems, key, "quantity"),
		setCart(evt.CartID, evt),
	}, nil
}
