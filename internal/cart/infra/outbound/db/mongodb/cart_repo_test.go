package mongodb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	cartDomain "github.com/davicafu/hexaprojector/internal/cart/domain"
	sharedDomain "github.com/davicafu/hexaprojector/internal/shared/domain"
)

func TestCriteriaToMongoFilter(t *testing.T) {
	criteria := sharedDomain.And(
		cartDomain.CustomerIDCriteria{CustomerID: "cust-1"},
		cartDomain.StatusCriteria{Status: cartDomain.CartStarted},
	)

	filter := criteriaToMongoFilter(criteria)

	assert.Equal(t, bson.D{
		{Key: "customer_id", Value: bson.M{"$eq": "cust-1"}},
		{Key: "status", Value: bson.M{"$eq": "STARTED"}},
	}, filter)
	assert.Equal(t, bson.D{}, criteriaToMongoFilter(nil))
}

func TestFromMongoItem_NormalisesNumbers(t *testing.T) {
	at := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	qty, _ := primitive.ParseDecimal128("5")
	price, _ := primitive.ParseDecimal128("12.50")

	item := fromMongoItem(bson.M{
		"cart_id": "cart-1", "product_id": "p-1", "product_name": "Mouse",
		"quantity": qty, "price_per_unit": price, "tax_rate": int32(0),
		"currency": "USD", "updated_at": primitive.NewDateTimeFromTime(at),
	})

	assert.Equal(t, 5, item.Quantity)
	assert.Equal(t, "12.5", item.PricePerUnit.String())
	assert.True(t, item.TaxRate.IsZero())
	assert.True(t, item.UpdatedAt.Equal(at))
}

func TestFromMongoCart_OptionalCustomer(t *testing.T) {
	visitor := fromMongoCart(bson.M{"cart_id": "c1", "status": "STARTED", "customer_id": nil})
	customer := fromMongoCart(bson.M{"cart_id": "c2", "status": "CHECKED_OUT", "customer_id": "cust-1"})

	assert.Nil(t, visitor.CustomerID)
	if assert.NotNil(t, customer.CustomerID) {
		assert.Equal(t, "cust-1", *customer.CustomerID)
	}
	assert.Equal(t, cartDomain.CartCheckedOut, customer.Status)
}
