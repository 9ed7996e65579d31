package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/travelplaner/travelplaner/internal/model"
)

// --- Store Mock ---

type mockStore struct {
	mock.Mock
}

func (m *mockStore) EnsureTable(ctx context.Context, table string) error {
	args := m.Called(ctx, table)
	return args.Error(0)
}

func (m *mockStore) Save(ctx context.Context, table string, row *model.LocationRow) error {
	args := m.Called(ctx, table, row)
	return args.Error(0)
}

func (m *mockStore) List(ctx context.Context, table string, limit int) ([]model.StoredLocation, error) {
	args := m.Called(ctx, table, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.StoredLocation), args.Error(1)
}

func (m *mockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
