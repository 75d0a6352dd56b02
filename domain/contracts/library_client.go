package contracts

import (
	"context"

	"doclib/domain/library"
	"doclib/domain/paging"
)

// FieldMetadataFetcher loads column metadata for a list.
type FieldMetadataFetcher interface {
	// FetchFieldMetadata returns fields in the view's column order, or the default view's when viewName is empty.
	FetchFieldMetadata(ctx context.Context, listTitle, viewName string) ([]library.FieldDescriptor, error)
}

// LibraryClient is the remote document library API consumed by the browser.
type LibraryClient interface {
	paging.ItemsFetcher
	paging.StreamFetcher
	FieldMetadataFetcher
}
