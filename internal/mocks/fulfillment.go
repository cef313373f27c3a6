package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	fulfillmentDomain "github.com/davicafu/hexaprojector/internal/fulfillment/domain"
)

type MockFulfillmentRepo struct {
	mock.Mock
}

var _ fulfillmentDomain.FulfillmentReadRepository = (*MockFulfillmentRepo)(nil)

func (m *MockFulfillmentRepo) GetByOrderID(ctx context.Context, orderID string) (*fulfillmentDomain.Fulfillment, error) {
	args := m.Called(ctx, orderID)
	if r := args.Get(0); r != nil {
		return r.(*fulfillmentDomain.Fulfillment), args.Error(1)
	}
	return nil, args.Error(1)
}
