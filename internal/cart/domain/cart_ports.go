package domain

import (
	"context"
	"errors"
	"fmt"

	sharedDomain "github.com/davicafu/hexaprojector/internal/shared/domain"
	sharedQuery "github.com/davicafu/hexaprojector/internal/shared/infra/platform/query"
)

var (
	ErrCartNotFound  = errors.New("cart not found")
	ErrInvalidStatus = errors.New("invalid cart status")
)

// CartReadRepository es la cara de consulta del read model.
type CartReadRepository interface {
	GetByID(ctx context.Context, cartID string) (*Cart, error)
	ListByCriteria(ctx context.Context, criteria sharedDomain.Criteria, pagination sharedQuery.OffsetPagination, sort sharedQuery.Sort) ([]*Cart, error)
}

// SortableFields son las columnas por las que se puede ordenar el listado.
var SortableFields = []string{"created_at", "updated_at", "status", "cart_id"}

// DefaultSort ordena por actividad más reciente.
var DefaultSort = sharedQuery.Sort{Field: "updated_at", Desc: true}

func CartCacheKeyByID(cartID string) string {
	return fmt.Sprintf("cart:id:%s", cartID)
}
