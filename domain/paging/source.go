// Package paging provides the page-producing sources and the on-demand loader
// that accumulates their output.
package paging

import (
	"context"
	"errors"

	"doclib/domain/library"
)

var (
	// ErrExhausted is returned by a PageSource pulled after it reported its last page.
	ErrExhausted = errors.New("page source exhausted")
	// ErrCursorReused is returned when the service hands back a continuation token already consumed.
	ErrCursorReused = errors.New("continuation token already consumed")
	// ErrPullInFlight is returned when LoadNextPage is called while another pull is outstanding.
	ErrPullInFlight = errors.New("page pull already in flight")
	// ErrStalePage is returned when a pull completes after the loader was reset.
	ErrStalePage = errors.New("page arrived after loader reset")
)

// Page is one bounded batch of raw records.
// Done reports that no page exists after this one.
type Page struct {
	Records []library.RawRecord
	Done    bool
}

// PageSource pulls the next page or signals completion.
type PageSource interface {
	// Profile names the raw shape of the records this source produces.
	Profile() library.Profile
	// Next issues exactly one fetch. A failed fetch does not advance the source.
	Next(ctx context.Context) (Page, error)
}

// ItemsRequest asks for the next chunk of a list using top/skip paging.
type ItemsRequest struct {
	ListTitle string
	Fields    []string
	Top       int
	Skip      int   // records already returned
	AfterID   int64 // id of the last record returned, 0 on the first call
}

// ItemsFetcher performs offset-paged item fetches.
type ItemsFetcher interface {
	FetchItems(ctx context.Context, req ItemsRequest) ([]library.RawRecord, error)
}

// StreamRequest asks for one page of a view-XML query.
type StreamRequest struct {
	ListTitle string
	ViewXML   string
	Cursor    string // empty on the first call
}

// StreamResponse carries one page and the token for the next call.
type StreamResponse struct {
	Records    []library.RawRecord
	NextCursor string // empty when the sequence is exhausted
}

// StreamFetcher performs cursor-stream fetches.
type StreamFetcher interface {
	FetchStream(ctx context.Context, req StreamRequest) (StreamResponse, error)
}
