package paging

import (
	"context"
	"fmt"

	"doclib/domain/caml"
	"doclib/domain/library"
)

// OffsetSource pages a list with a fixed page size.
// An empty page marks the end; a short page does not.
type OffsetSource struct {
	fetcher   ItemsFetcher
	listTitle string
	fields    []string
	pageSize  int

	skip    int
	afterID int64
	done    bool
}

// NewOffsetSource creates an offset source. Non-positive page sizes use caml.DefaultPageSize.
func NewOffsetSource(fetcher ItemsFetcher, listTitle string, fields []string, pageSize int) *OffsetSource {
	if pageSize <= 0 {
		pageSize = caml.DefaultPageSize
	}
	return &OffsetSource{
		fetcher:   fetcher,
		listTitle: listTitle,
		fields:    append([]string(nil), fields...),
		pageSize:  pageSize,
	}
}

// Profile implements PageSource.
func (s *OffsetSource) Profile() library.Profile {
	return library.ProfileBulk
}

// Next implements PageSource.
func (s *OffsetSource) Next(ctx context.Context) (Page, error) {
	if s.done {
		return Page{}, ErrExhausted
	}

	records, err := s.fetcher.FetchItems(ctx, ItemsRequest{
		ListTitle: s.listTitle,
		Fields:    s.fields,
		Top:       s.pageSize,
		Skip:      s.skip,
		AfterID:   s.afterID,
	})
	if err != nil {
		return Page{}, fmt.Errorf("fetch items page (skip=%d): %w", s.skip, err)
	}

	if len(records) == 0 {
		s.done = true
		return Page{Done: true}, nil
	}

	s.skip += len(records)
	if id, ok := library.RecordID(records[len(records)-1]); ok {
		s.afterID = id
	}

	return Page{Records: records}, nil
}

// PageSize returns the fixed page size.
func (s *OffsetSource) PageSize() int {
	return s.pageSize
}
