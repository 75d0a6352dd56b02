package helpers

import (
	"context"
	"fmt"

	"github.com/stretchr/testify/mock"

	"doclib/domain/library"
	"doclib/domain/paging"
	"doclib/test/mocks"
)

// MockCollaborators holds the browser's collaborator mocks for easy injection
type MockCollaborators struct {
	Client     *mocks.MockLibraryClient
	FieldCache *mocks.MockFieldCacheRepository
}

// NewMockCollaborators creates a new set of collaborator mocks
func NewMockCollaborators() *MockCollaborators {
	return &MockCollaborators{
		Client:     &mocks.MockLibraryClient{},
		FieldCache: &mocks.MockFieldCacheRepository{},
	}
}

// ExpectFieldCacheMiss sets up a cache miss followed by a remote fetch and a cache save
func (m *MockCollaborators) ExpectFieldCacheMiss(listTitle, viewName string, fields []library.FieldDescriptor) {
	m.FieldCache.On("Get", mock.Anything, listTitle, viewName).Return(nil, false, nil)
	m.Client.On("FetchFieldMetadata", mock.Anything, listTitle, viewName).Return(fields, nil)
	m.FieldCache.On("Save", mock.Anything, listTitle, viewName, fields).Return(nil)
}

// ExpectFieldCacheHit sets up a fresh cache entry
func (m *MockCollaborators) ExpectFieldCacheHit(listTitle, viewName string, fields []library.FieldDescriptor) {
	m.FieldCache.On("Get", mock.Anything, listTitle, viewName).Return(fields, true, nil)
}

// ExpectStreamPage sets up one stream page answered for the given cursor
func (m *MockCollaborators) ExpectStreamPage(cursor string, resp paging.StreamResponse) {
	m.Client.On("FetchStream", mock.Anything, mock.MatchedBy(func(req paging.StreamRequest) bool {
		return req.Cursor == cursor
	})).Return(resp, nil).Once()
}

// ExpectItemsPage sets up one offset page answered for the given skip
func (m *MockCollaborators) ExpectItemsPage(skip int, records []library.RawRecord) {
	m.Client.On("FetchItems", mock.Anything, mock.MatchedBy(func(req paging.ItemsRequest) bool {
		return req.Skip == skip
	})).Return(records, nil).Once()
}

// AssertAllExpectations verifies all mock expectations were met
func (m *MockCollaborators) AssertAllExpectations(t mock.TestingT) {
	m.Client.AssertExpectations(t)
	m.FieldCache.AssertExpectations(t)
}

// TestData provides simple builders for test data
type TestData struct{}

// NewTestData creates a test data builder
func NewTestData() *TestData {
	return &TestData{}
}

// Fields returns a typical document library column set
func (td *TestData) Fields() []library.FieldDescriptor {
	return []library.FieldDescriptor{
		{InternalName: "DocIcon", Title: "Type", Type: library.FieldTypeUnknown, RawType: "Computed"},
		{InternalName: "LinkFilename", Title: "Name", Type: library.FieldTypeUnknown, RawType: "Computed"},
		{InternalName: "Modified", Title: "Modified", Type: library.FieldTypeDateTime, RawType: "DateTime"},
		{InternalName: "Editor", Title: "Modified By", Type: library.FieldTypeUser, RawType: "User"},
		{InternalName: "Status", Title: "Status", Type: library.FieldTypeText, RawType: "Text"},
		{InternalName: "_UIVersionString", Title: "Version", Type: library.FieldTypeText, RawType: "Text", Hidden: true},
	}
}

// StreamRow builds a RenderListDataAsStream row
func (td *TestData) StreamRow(id int, name string) library.RawRecord {
	return library.RawRecord{
		"ID":                    fmt.Sprintf("%d", id),
		"FileLeafRef":           name,
		"FileRef":               "/sites/team/Shared Documents/" + name,
		"Modified":              "2024-03-01T10:00:00Z",
		"Editor":                []any{map[string]any{"title": "Ana Lima"}},
		"SMTotalFileStreamSize": "2048",
	}
}

// BulkRow builds a REST items row
func (td *TestData) BulkRow(id int, name string) library.RawRecord {
	return library.RawRecord{
		"Id":              float64(id),
		"FileLeafRef":     name,
		"FileRef":         "/sites/team/Shared Documents/" + name,
		"Modified":        "2024-03-01T10:00:00Z",
		"Editor":          map[string]any{"Title": "Ana Lima"},
		"File_x0020_Size": float64(2048),
	}
}

// StreamRows builds rows with sequential ids starting at first
func (td *TestData) StreamRows(first int, names ...string) []library.RawRecord {
	rows := make([]library.RawRecord, len(names))
	for i, n := range names {
		rows[i] = td.StreamRow(first+i, n)
	}
	return rows
}

// Helper for common test context
func TestContext() context.Context {
	return context.Background()
}
