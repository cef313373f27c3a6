package redisstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	sharedDomain "github.com/davicafu/hexaprojector/internal/shared/domain"
)

func TestKeys(t *testing.T) {
	key := []sharedDomain.Field{sharedDomain.F("hour", "2025011009"), sharedDomain.F("product_id", "p-1")}

	set, member := RankingKey("top-10-products", key)

	assert.Equal(t, "top-10-products:2025011009", set)
	assert.Equal(t, "p-1", member)
	assert.Equal(t, "product-names:p-1", HashKey("product-names", key[1:]))
	assert.Equal(t, "checkpoint:top-products", CheckpointKey("top-products"))
}

func TestToArg(t *testing.T) {
	at := time.Date(2025, 1, 10, 9, 30, 0, 0, time.FixedZone("CET", 3600))

	assert.Equal(t, "12.5", toArg(decimal.RequireFromString("12.50")))
	assert.Equal(t, "2025-01-10T08:30:00Z", toArg(at))
	assert.Equal(t, "7", toArg(7))
	assert.Equal(t, "", toArg(nil))
}

func TestClassify(t *testing.T) {
	assert.True(t, sharedDomain.IsTransient(classify(context.DeadlineExceeded)))
	assert.True(t, sharedDomain.IsTransient(classify(redis.ErrClosed)))
	assert.True(t, sharedDomain.IsTransient(classify(errors.New("LOADING Redis is loading the dataset in memory"))))
	assert.ErrorIs(t, classify(errors.New("WRONGTYPE Operation against a key holding the wrong kind of value")), sharedDomain.ErrPermanentStore)
	assert.NoError(t, classify(nil))
}

func TestApply_RejectsFieldSetOnRanking(t *testing.T) {
	s := New(nil, zap.NewNop(), "top-10-products")
	key := []sharedDomain.Field{sharedDomain.F("hour", "2025011009"), sharedDomain.F("product_id", "p-1")}

	err := s.Apply(context.Background(), []sharedDomain.Mutation{
		sharedDomain.SetFields("top-10-products", key, sharedDomain.F("name", "x")),
	}, sharedDomain.Checkpoint{ReadModel: "top-products", Position: 1})

	assert.ErrorIs(t, err, sharedDomain.ErrPermanentStore)
}
