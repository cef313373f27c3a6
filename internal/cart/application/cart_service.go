package application

import (
	"context"
	"strings"

	"go.uber.org/zap"

	cartDomain "github.com/davicafu/hexaprojector/internal/cart/domain"
	sharedDomain "github.com/davicafu/hexaprojector/internal/shared/domain"
	sharedCache "github.com/davicafu/hexaprojector/internal/shared/infra/platform/cache"
	sharedQuery "github.com/davicafu/hexaprojector/internal/shared/infra/platform/query"
)

// CartFilter son los filtros opcionales del listado.
type CartFilter struct {
	CartID     string
	CustomerID string
	Status     string
}

// CartService expone las consultas sobre el read model de carritos.
type CartService struct {
	repo     cartDomain.CartReadRepository
	cache    sharedCache.Cache
	cacheTTL int
	log      *zap.Logger
}

func NewCartService(repo cartDomain.CartReadRepository, cache sharedCache.Cache, cacheTTL int, log *zap.Logger) *CartService {
	return &CartService{repo: repo, cache: cache, cacheTTL: cacheTTL, log: log}
}

// GetCart usa cache-aside con TTL corto: el read model cambia con cada evento.
func (s *CartService) GetCart(ctx context.Context, cartID string) (*cartDomain.Cart, error) {
	return sharedCache.GetOrLoad(ctx, s.cache, cartDomain.CartCacheKeyByID(cartID), s.cacheTTL, s.log,
		func(ctx context.Context) (*cartDomain.Cart, error) {
			return s.repo.GetByID(ctx, cartID)
		})
}

func (s *CartService) ListCarts(ctx context.Context, filter CartFilter, page sharedQuery.OffsetPagination, sort sharedQuery.Sort) ([]*cartDomain.Cart, error) {
	var criterias []sharedDomain.Criteria
	if filter.CartID != "" {
		criterias = append(criterias, cartDomain.CartIDCriteria{CartID: filter.CartID})
	}
	if filter.CustomerID != "" {
		criterias = append(criterias, cartDomain.CustomerIDCriteria{CustomerID: filter.CustomerID})
	}
	if filter.Status != "" {
		status := cartDomain.CartStatus(strings.ToUpper(filter.Status))
		if !status.Valid() {
			return nil, cartDomain.ErrInvalidStatus
		}
		criterias = append(criterias, cartDomain.StatusCriteria{Status: status})
	}

	sort = sort.Allowed(cartDomain.DefaultSort, cartDomain.SortableFields...)
	carts, err := s.repo.ListByCriteria(ctx, sharedDomain.And(criterias...), page, sort)
	if err != nil {
		s.log.Error("Failed to list carts", zap.Error(err))
		return nil, err
	}
	return carts, nil
}
