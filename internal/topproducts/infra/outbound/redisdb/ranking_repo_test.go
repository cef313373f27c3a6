package redisdb

import (
	"testing"

	"github.com/stretchr/testify/assert"

	sharedDomain "github.com/davicafu/hexaprojector/internal/shared/domain"
	"github.com/davicafu/hexaprojector/internal/shared/infra/store/redisstore"
	rankingDomain "github.com/davicafu/hexaprojector/internal/topproducts/domain"
)

// Las claves de lectura tienen que coincidir con las que escribe redisstore.
func TestKeysMatchStoreLayout(t *testing.T) {
	set, member := redisstore.RankingKey(rankingDomain.EntityRanking, []sharedDomain.Field{
		sharedDomain.F("hour", "2025011009"), sharedDomain.F("product_id", "p-1"),
	})

	assert.Equal(t, "top-10-products:2025011009", RankingSetKey("2025011009"))
	assert.Equal(t, set, RankingSetKey("2025011009"))
	assert.Equal(t, "p-1", member)
	assert.Equal(t, "product-names:p-1", ProductNameKey("p-1"))
}
