package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	rankingDomain "github.com/davicafu/hexaprojector/internal/topproducts/domain"
)

type MockRankingRepo struct {
	mock.Mock
}

var _ rankingDomain.RankingRepository = (*MockRankingRepo)(nil)

func (m *MockRankingRepo) HourRanking(ctx context.Context, hour string) ([]rankingDomain.ProductRanking, error) {
	args := m.Called(ctx, hour)
	if r := args.Get(0); r != nil {
		return r.([]rankingDomain.ProductRanking), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRankingRepo) ProductNames(ctx context.Context, productIDs []string) (map[string]string, error) {
	args := m.Called(ctx, productIDs)
	if r := args.Get(0); r != nil {
		return r.(map[string]string), args.Error(1)
	}
	return nil, args.Error(1)
}
