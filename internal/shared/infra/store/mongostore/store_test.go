package mongostore

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	sharedDomain "github.com/davicafu/hexaprojector/internal/shared/domain"
)

func TestToBSON_ConvertsDomainTypes(t *testing.T) {
	d := decimal.RequireFromString("12.50")
	id := uuid.New()

	dec, ok := toBSON(d).(primitive.Decimal128)
	assert.True(t, ok)
	assert.Equal(t, "12.5", dec.String())
	assert.Equal(t, id.String(), toBSON(id))
	assert.Equal(t, "x", toBSON("x"))

	back, ok := FromBSON(dec).(decimal.Decimal)
	assert.True(t, ok)
	assert.True(t, back.Equal(d))
}

func TestRatioPipeline_GuardsZeroDenominator(t *testing.T) {
	p := ratioPipeline(sharedDomain.Ratio{Field: "target_hit_rate", Numerator: "total_monthly_sales", Denominator: "target_sales"})

	assert.Len(t, p, 1)
	set := p[0][0]
	assert.Equal(t, "$set", set.Key)
	cond := set.Value.(bson.M)["target_hit_rate"].(bson.M)["$cond"].(bson.A)
	assert.Equal(t, bson.M{"$eq": bson.A{"$target_sales", 0}}, cond[0])
	assert.Equal(t, bson.M{"$divide": bson.A{"$total_monthly_sales", "$target_sales"}}, cond[2])
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		transient bool
	}{
		{"deadline", context.DeadlineExceeded, true},
		{"transient label", mongo.CommandError{Code: 251, Labels: []string{"TransientTransactionError"}}, true},
		{"duplicate key", mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}, true},
		{"validation", mongo.CommandError{Code: 121, Message: "Document failed validation"}, false},
		{"plain", errors.New("boom"), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := classify(tc.err)
			assert.Equal(t, tc.transient, sharedDomain.IsTransient(err))
			assert.Equal(t, !tc.transient, errors.Is(err, sharedDomain.ErrPermanentStore))
		})
	}
	assert.NoError(t, classify(nil))
}
