package application

import (
	"context"

	fulfillmentDomain "github.com/davicafu/hexaprojector/internal/fulfillment/domain"
)

type FulfillmentService struct {
	repo fulfillmentDomain.FulfillmentReadRepository
}

func NewFulfillmentService(repo fulfillmentDomain.FulfillmentReadRepository) *FulfillmentService {
	return &FulfillmentService{repo: repo}
}

func (s *FulfillmentService) GetFulfillment(ctx context.Context, orderID string) (*fulfillmentDomain.Fulfillment, error) {
	return s.repo.GetByOrderID(ctx, orderID)
}
