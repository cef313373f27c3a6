package mongodb

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	cartDomain "github.com/davicafu/hexaprojector/internal/cart/domain"
	sharedDomain "github.com/davicafu/hexaprojector/internal/shared/domain"
	sharedQuery "github.com/davicafu/hexaprojector/internal/shared/infra/platform/query"
	"github.com/davicafu/hexaprojector/internal/shared/infra/store/mongostore"
)

// CartRepoMongoDB lee el read model de carritos que mongostore escribe.
type CartRepoMongoDB struct {
	carts *mongo.Collection
	items *mongo.Collection
}

var _ cartDomain.CartReadRepository = (*CartRepoMongoDB)(nil)

func NewCartRepoMongoDB(store *mongostore.Store) *CartRepoMongoDB {
	return &CartRepoMongoDB{
		carts: store.Collection(cartDomain.EntityCarts),
		items: store.Collection(cartDomain.EntityCartItems),
	}
}

// EnsureIndexes crea los índices de las consultas habituales.
func (r *CartRepoMongoDB) EnsureIndexes(ctx context.Context) error {
	_, err := r.carts.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "customer_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "updated_at", Value: -1}}},
	})
	if err != nil {
		return err
	}
	_, err = r.items.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "cart_id", Value: 1}}})
	return err
}

// --- Lectura ---

func (r *CartRepoMongoDB) GetByID(ctx context.Context, cartID string) (*cartDomain.Cart, error) {
	var doc bson.M
	err := r.carts.FindOne(ctx, bson.M{"cart_id": cartID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cartDomain.ErrCartNotFound
		}
		return nil, err
	}
	cart := fromMongoCart(doc)

	cursor, err := r.items.Find(ctx, bson.M{"cart_id": cartID}, options.Find().SetSort(bson.D{{Key: "product_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var item bson.M
		if err := cursor.Decode(&item); err != nil {
			return nil, err
		}
		cart.Items = append(cart.Items, fromMongoItem(item))
	}
	return cart, cursor.Err()
}

func (r *CartRepoMongoDB) ListByCriteria(ctx context.Context, criteria sharedDomain.Criteria, page sharedQuery.OffsetPagination, sort sharedQuery.Sort) ([]*cartDomain.Cart, error) {
	opts := options.Find()
	if page.Limit > 0 {
		opts.SetSkip(int64(page.Offset))
		opts.SetLimit(int64(page.Limit))
	}
	if sort.Field != "" {
		sortDir := 1 // Ascendente por defecto
		if sort.Desc {
			sortDir = -1
		}
		opts.SetSort(bson.D{{Key: sort.Field, Value: sortDir}})
	}

	cursor, err := r.carts.Find(ctx, criteriaToMongoFilter(criteria), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var carts []*cartDomain.Cart
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		carts = append(carts, fromMongoCart(doc))
	}
	return carts, cursor.Err()
}

// --- Helpers de Mapeo y Conversión ---

func fromMongoCart(doc bson.M) *cartDomain.Cart {
	c := &cartDomain.Cart{
		CartID:    str(doc["cart_id"]),
		Status:    cartDomain.CartStatus(str(doc["status"])),
		CreatedAt: timeOf(doc["created_at"]),
		UpdatedAt: timeOf(doc["updated_at"]),
	}
	if customer, ok := doc["customer_id"].(string); ok {
		c.CustomerID = &customer
	}
	return c
}

func fromMongoItem(doc bson.M) cartDomain.CartItem {
	qty, _ := sharedDomain.ToDecimal(mongostore.FromBSON(doc["quantity"]))
	price, _ := sharedDomain.ToDecimal(mongostore.FromBSON(doc["price_per_unit"]))
	tax, _ := sharedDomain.ToDecimal(mongostore.FromBSON(doc["tax_rate"]))
	return cartDomain.CartItem{
		CartID:       str(doc["cart_id"]),
		ProductID:    str(doc["product_id"]),
		ProductName:  str(doc["product_name"]),
		Quantity:     int(qty.IntPart()),
		Currency:     str(doc["currency"]),
		PricePerUnit: price,
		TaxRate:      tax,
		UpdatedAt:    timeOf(doc["updated_at"]),
	}
}

func str(v interface{}) string {
	s, _ := v.(string)
	return s
}

func timeOf(v interface{}) time.Time {
	t, _ := mongostore.FromBSON(v).(time.Time)
	return t
}

func criteriaToMongoFilter(criteria sharedDomain.Criteria) bson.D {
	if criteria == nil {
		return bson.D{}
	}
	filter := bson.D{}
	for _, c := range criteria.ToConditions() {
		// Mapeo de operadores genéricos a operadores de MongoDB
		var value interface{}
		switch c.Op {
		case sharedDomain.OpGte:
			value = bson.M{"$gte": c.Value}
		case sharedDomain.OpLte:
			value = bson.M{"$lte": c.Value}
		case sharedDomain.OpLike:
			value = bson.M{"$regex": strings.Trim(c.Value.(string), "%"), "$options": "i"}
		default:
			value = bson.M{"$eq": c.Value}
		}
		filter = append(filter, bson.E{Key: c.Field, Value: value})
	}
	return filter
}
