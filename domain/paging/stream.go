package paging

import (
	"context"
	"fmt"

	"doclib/domain/caml"
	"doclib/domain/library"
)

// StreamSource pages a view-XML query by continuation token.
// The token from response N is the input of call N+1; a response without a token is the last page.
type StreamSource struct {
	fetcher   StreamFetcher
	listTitle string
	query     caml.QueryDescriptor
	viewXML   string

	cursor   string
	consumed map[string]struct{}
	done     bool
}

// NewStreamSource creates a stream source for query against listTitle.
func NewStreamSource(fetcher StreamFetcher, listTitle string, query caml.QueryDescriptor) *StreamSource {
	return &StreamSource{
		fetcher:   fetcher,
		listTitle: listTitle,
		query:     query,
		viewXML:   query.ViewXML(),
		consumed:  make(map[string]struct{}),
	}
}

// Profile implements PageSource.
func (s *StreamSource) Profile() library.Profile {
	return library.ProfileStream
}

// Query returns the descriptor this source was built from.
func (s *StreamSource) Query() caml.QueryDescriptor {
	return s.query
}

// Next implements PageSource.
func (s *StreamSource) Next(ctx context.Context) (Page, error) {
	if s.done {
		return Page{}, ErrExhausted
	}

	resp, err := s.fetcher.FetchStream(ctx, StreamRequest{
		ListTitle: s.listTitle,
		ViewXML:   s.viewXML,
		Cursor:    s.cursor,
	})
	if err != nil {
		return Page{}, fmt.Errorf("fetch stream page: %w", err)
	}

	if resp.NextCursor != "" {
		if _, seen := s.consumed[resp.NextCursor]; seen || resp.NextCursor == s.cursor {
			return Page{}, fmt.Errorf("stream cursor %q: %w", resp.NextCursor, ErrCursorReused)
		}
	}

	if s.cursor != "" {
		s.consumed[s.cursor] = struct{}{}
	}
	s.cursor = resp.NextCursor
	s.done = resp.NextCursor == ""

	return Page{Records: resp.Records, Done: s.done}, nil
}
