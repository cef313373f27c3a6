package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	sharedDomain "github.com/davicafu/hexaprojector/internal/shared/domain"
)

// MockStore simula un ProjectionStore (checkpoints + unidad de trabajo).
type MockStore struct {
	mock.Mock
}

var _ sharedDomain.ProjectionStore = (*MockStore)(nil)

func (m *MockStore) GetCheckpoint(ctx context.Context, readModel string) (uint64, bool, error) {
	args := m.Called(ctx, readModel)
	return args.Get(0).(uint64), args.Bool(1), args.Error(2)
}

func (m *MockStore) UpsertCheckpoint(ctx context.Context, cp sharedDomain.Checkpoint) error {
	args := m.Called(ctx, cp)
	return args.Error(0)
}

func (m *MockStore) Apply(ctx context.Context, mutations []sharedDomain.Mutation, cp sharedDomain.Checkpoint) error {
	args := m.Called(ctx, mutations, cp)
	return args.Error(0)
}
