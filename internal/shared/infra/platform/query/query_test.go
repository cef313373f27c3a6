package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPage(t *testing.T) {
	assert.Equal(t, OffsetPagination{Limit: 20, Offset: 0}, Page(0, 0))
	assert.Equal(t, OffsetPagination{Limit: 10, Offset: 20}, Page(3, 10))
	assert.Equal(t, OffsetPagination{Limit: MaxPageSize, Offset: 0}, Page(1, 10000))
}

func TestSort_Allowed(t *testing.T) {
	fallback := Sort{Field: "updated_at", Desc: true}

	assert.Equal(t, Sort{Field: "status"}, Sort{Field: "status"}.Allowed(fallback, "status", "updated_at"))
	assert.Equal(t, fallback, Sort{Field: "1; DROP TABLE carts"}.Allowed(fallback, "status", "updated_at"))
}

func TestSort_Direction(t *testing.T) {
	assert.Equal(t, "DESC", Sort{Field: "updated_at", Desc: true}.Direction())
	assert.Equal(t, "ASC", Sort{Field: "updated_at"}.Direction())
}
