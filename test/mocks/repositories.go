package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"doclib/domain/library"
)

// MockFieldCacheRepository implements FieldCacheRepository for testing
type MockFieldCacheRepository struct {
	mock.Mock
}

func (m *MockFieldCacheRepository) Get(ctx context.Context, listTitle, viewName string) ([]library.FieldDescriptor, bool, error) {
	args := m.Called(ctx, listTitle, viewName)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]library.FieldDescriptor), args.Bool(1), args.Error(2)
}

func (m *MockFieldCacheRepository) Save(ctx context.Context, listTitle, viewName string, fields []library.FieldDescriptor) error {
	args := m.Called(ctx, listTitle, viewName, fields)
	return args.Error(0)
}

func (m *MockFieldCacheRepository) Invalidate(ctx context.Context, listTitle string) error {
	args := m.Called(ctx, listTitle)
	return args.Error(0)
}
