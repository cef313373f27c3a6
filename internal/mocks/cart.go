package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	cartDomain "github.com/davicafu/hexaprojector/internal/cart/domain"
	sharedDomain "github.com/davicafu/hexaprojector/internal/shared/domain"
	sharedQuery "github.com/davicafu/hexaprojector/internal/shared/infra/platform/query"
)

// MockCartRepo simula CartReadRepository.
type MockCartRepo struct {
	mock.Mock
}

var _ cartDomain.CartReadRepository = (*MockCartRepo)(nil)

func (m *MockCartRepo) GetByID(ctx context.Context, cartID string) (*cartDomain.Cart, error) {
	args := m.Called(ctx, cartID)
	if c := args.Get(0); c != nil {
		return c.(*cartDomain.Cart), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCartRepo) ListByCriteria(ctx context.Context, criteria sharedDomain.Criteria, pagination sharedQuery.OffsetPagination, sort sharedQuery.Sort) ([]*cartDomain.Cart, error) {
	args := m.Called(ctx, criteria, pagination, sort)
	if c := args.Get(0); c != nil {
		return c.([]*cartDomain.Cart), args.Error(1)
	}
	return nil, args.Error(1)
}
