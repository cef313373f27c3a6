package redisdb

import (
	"context"
	"errors"
	"math"

	"github.com/go-redis/redis/v8"

	sharedDomain "github.com/davicafu/hexaprojector/internal/shared/domain"
	"github.com/davicafu/hexaprojector/internal/shared/infra/store/redisstore"
	rankingDomain "github.com/davicafu/hexaprojector/internal/topproducts/domain"
)

// RankingRepoRedis lee los sorted sets horarios que escribe redisstore.
type RankingRepoRedis struct {
	rdb *redis.Client
}

var _ rankingDomain.RankingRepository = (*RankingRepoRedis)(nil)

func NewRankingRepoRedis(rdb *redis.Client) *RankingRepoRedis {
	return &RankingRepoRedis{rdb: rdb}
}

// RankingSetKey es el sorted set de una hora: "top-10-products:yyyyMMddHH".
func RankingSetKey(hour string) string {
	return redisstore.HashKey(rankingDomain.EntityRanking, []sharedDomain.Field{sharedDomain.F("hour", hour)})
}

// ProductNameKey es el hash con el nombre de un producto.
func ProductNameKey(productID string) string {
	return redisstore.HashKey(rankingDomain.EntityProductNames, []sharedDomain.Field{sharedDomain.F("product_id", productID)})
}

func (r *RankingRepoRedis) HourRanking(ctx context.Context, hour string) ([]rankingDomain.ProductRanking, error) {
	members, err := r.rdb.ZRevRangeWithScores(ctx, RankingSetKey(hour), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	ranking := make([]rankingDomain.ProductRanking, 0, len(members))
	for _, z := range members {
		id, ok := z.Member.(string)
		if !ok {
			continue
		}
		ranking = append(ranking, rankingDomain.ProductRanking{ProductID: id, Quantity: int64(math.Round(z.Score))})
	}
	return ranking, nil
}

func (r *RankingRepoRedis) ProductNames(ctx context.Context, productIDs []string) (map[string]string, error) {
	cmds := make([]*redis.StringCmd, len(productIDs))
	_, err := r.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range productIDs {
			cmds[i] = pipe.HGet(ctx, ProductNameKey(id), "product_name")
		}
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	names := make(map[string]string, len(productIDs))
	for i, cmd := range cmds {
		if name, err := cmd.Result(); err == nil {
			names[productIDs[i]] = name
		}
	}
	return names, nil
}
