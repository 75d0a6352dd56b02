package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"doclib/domain/library"
	"doclib/domain/paging"
)

// MockLibraryClient implements LibraryClient for testing
type MockLibraryClient struct {
	mock.Mock
}

func (m *MockLibraryClient) FetchItems(ctx context.Context, req paging.ItemsRequest) ([]library.RawRecord, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]library.RawRecord), args.Error(1)
}

func (m *MockLibraryClient) FetchStream(ctx context.Context, req paging.StreamRequest) (paging.StreamResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(paging.StreamResponse), args.Error(1)
}

func (m *MockLibraryClient) FetchFieldMetadata(ctx context.Context, listTitle, viewName string) ([]library.FieldDescriptor, error) {
	args := m.Called(ctx, listTitle, viewName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]library.FieldDescriptor), args.Error(1)
}
