package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"doclib/domain/caml"
	"doclib/domain/contracts"
	"doclib/domain/library"
	"doclib/domain/paging"
)

// SessionMode selects the page source strategy of a session.
type SessionMode string

const (
	// ModeOffset pages the items endpoint and sorts/filters on the client.
	ModeOffset SessionMode = "offset"
	// ModeStream pages RenderListDataAsStream; sort and filter go to the server.
	ModeStream SessionMode = "stream"
)

// ParseSessionMode maps user input to a mode. Empty input selects ModeStream.
func ParseSessionMode(s string) (SessionMode, error) {
	switch SessionMode(s) {
	case "", ModeStream:
		return ModeStream, nil
	case ModeOffset:
		return ModeOffset, nil
	}
	return "", fmt.Errorf("unknown session mode %q", s)
}

// SessionStatus is the lifecycle state of a session.
type SessionStatus string

const (
	StatusLoading     SessionStatus = "loading"
	StatusReady       SessionStatus = "ready"
	StatusLoadingMore SessionStatus = "loading_more"
	StatusErrored     SessionStatus = "errored"
)

// SessionOptions describes the query a session browses.
type SessionOptions struct {
	ListTitle string      `json:"list"`
	ViewName  string      `json:"view,omitempty"`
	Mode      SessionMode `json:"mode"`
	Fields    []string    `json:"fields,omitempty"`
	PageSize  int         `json:"page_size,omitempty"`
	Sort      *SortSpec   `json:"sort,omitempty"`
	Filter    string      `json:"filter,omitempty"`
}

// SessionView is a point-in-time snapshot of a session.
type SessionView struct {
	ID        string                    `json:"id"`
	ListTitle string                    `json:"list"`
	Mode      SessionMode               `json:"mode"`
	Status    SessionStatus             `json:"status"`
	Error     string                    `json:"error,omitempty"`
	Columns   []library.FieldDescriptor `json:"columns"`
	Items     []library.Item            `json:"items"`
	Loaded    int                       `json:"loaded"`
	Pages     int                       `json:"pages"`
	HasMore   bool                      `json:"has_more"`
	Sort      *SortSpec                 `json:"sort,omitempty"`
	Filter    string                    `json:"filter,omitempty"`
	UpdatedAt time.Time                 `json:"updated_at"`
}

// Session pairs a paged loader with a view model for one browsing query.
type Session struct {
	mu sync.Mutex

	id      string
	opts    SessionOptions
	columns []library.FieldDescriptor
	client  contracts.LibraryClient
	loader  *paging.Loader
	view    *ViewModel

	status    SessionStatus
	err       error
	pages     int
	gen       uint64
	updatedAt time.Time
}

// NewSession builds a session in loading state. No page is fetched until Load is called.
func NewSession(id string, client contracts.LibraryClient, opts SessionOptions, columns []library.FieldDescriptor) *Session {
	s := &Session{
		id:        id,
		opts:      opts,
		columns:   append([]library.FieldDescriptor(nil), columns...),
		client:    client,
		view:      NewViewModel(),
		status:    StatusLoading,
		updatedAt: time.Now(),
	}
	if opts.Mode == ModeOffset {
		s.view.SetFilter(opts.Filter)
		if opts.Sort != nil {
			s.view.SetSort(opts.Sort.Field, opts.Sort.Ascending)
		}
	}
	s.loader = paging.NewLoader(s.newSource())
	return s
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Mode returns the session's mode.
func (s *Session) Mode() SessionMode {
	return s.opts.Mode
}

// Query returns the descriptor stream mode sends to the server for the current sort and filter.
func (s *Session) Query() caml.QueryDescriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query()
}

func (s *Session) query() caml.QueryDescriptor {
	var filter *caml.FilterClause
	if s.opts.Filter != "" {
		f := caml.BuildFilterContains("FileLeafRef", caml.EscapeValue(s.opts.Filter))
		filter = &f
	}
	var order *caml.OrderClause
	if s.opts.Sort != nil {
		o := caml.BuildOrderBy(s.opts.Sort.Field, s.opts.Sort.Ascending)
		order = &o
	}
	return caml.BuildQueryDescriptor(s.opts.Fields, filter, order, s.opts.PageSize)
}

func (s *Session) newSource() paging.PageSource {
	if s.opts.Mode == ModeOffset {
		return paging.NewOffsetSource(s.client, s.opts.ListTitle, s.opts.Fields, s.opts.PageSize)
	}
	return paging.NewStreamSource(s.client, s.opts.ListTitle, s.query())
}

// Load pulls the next page and merges it into the view.
// A failure moves the session to errored; data already loaded is kept.
func (s *Session) Load(ctx context.Context) (SessionView, error) {
	s.mu.Lock()
	switch s.status {
	case StatusErrored:
		s.mu.Unlock()
		return SessionView{}, contracts.ErrSessionErrored
	case StatusLoadingMore:
		s.mu.Unlock()
		return SessionView{}, contracts.ErrLoadInFlight
	}
	if !s.loader.HasMore() {
		defer s.mu.Unlock()
		return s.snapshot(), nil
	}
	if s.pages > 0 {
		s.status = StatusLoadingMore
	}
	return s.pull(ctx)
}

// pull runs one loader pull. It is entered with s.mu held and releases it.
func (s *Session) pull(ctx context.Context) (SessionView, error) {
	gen := s.gen
	s.mu.Unlock()

	items, err := s.loader.LoadNextPage(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if errors.Is(err, paging.ErrPullInFlight) {
		return SessionView{}, contracts.ErrLoadInFlight
	}
	if gen != s.gen || errors.Is(err, paging.ErrStalePage) {
		return SessionView{}, paging.ErrStalePage
	}
	s.updatedAt = time.Now()
	if err != nil {
		s.status = StatusErrored
		s.err = err
		return s.snapshot(), fmt.Errorf("load page %d of %q: %w", s.pages+1, s.opts.ListTitle, err)
	}

	s.view.Append(items...)
	s.pages++
	s.status = StatusReady
	return s.snapshot(), nil
}

// Sort changes the ordering. Offset sessions re-sort loaded data in place; stream sessions
// rebuild the server query, discard loaded pages and fetch the first page again.
// An empty field clears the sort.
func (s *Session) Sort(ctx context.Context, field string, ascending bool) (SessionView, error) {
	s.mu.Lock()
	if s.opts.Mode == ModeStream && s.status == StatusErrored {
		s.mu.Unlock()
		return SessionView{}, contracts.ErrSessionErrored
	}
	if field == "" {
		s.opts.Sort = nil
	} else {
		s.opts.Sort = &SortSpec{Field: field, Ascending: ascending}
	}
	if s.opts.Mode == ModeOffset {
		defer s.mu.Unlock()
		if field == "" {
			s.view.ClearSort()
		} else {
			s.view.SetSort(field, ascending)
		}
		s.updatedAt = time.Now()
		return s.snapshot(), nil
	}
	return s.requery(ctx)
}

// Filter changes the name filter; stream sessions re-query like Sort.
func (s *Session) Filter(ctx context.Context, text string) (SessionView, error) {
	s.mu.Lock()
	if s.opts.Mode == ModeStream && s.status == StatusErrored {
		s.mu.Unlock()
		return SessionView{}, contracts.ErrSessionErrored
	}
	s.opts.Filter = text
	if s.opts.Mode == ModeOffset {
		defer s.mu.Unlock()
		s.view.SetFilter(text)
		s.updatedAt = time.Now()
		return s.snapshot(), nil
	}
	return s.requery(ctx)
}

// requery resets the stream loader and loads page one. Entered with s.mu held.
func (s *Session) requery(ctx context.Context) (SessionView, error) {
	s.gen++
	s.loader.Reset(s.newSource())
	s.view.Reset()
	s.pages = 0
	s.status = StatusLoading
	return s.pull(ctx)
}

// Snapshot returns the current state.
func (s *Session) Snapshot() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Session) snapshot() SessionView {
	v := SessionView{
		ID:        s.id,
		ListTitle: s.opts.ListTitle,
		Mode:      s.opts.Mode,
		Status:    s.status,
		Columns:   append([]library.FieldDescriptor(nil), s.columns...),
		Items:     s.view.Displayed(),
		Loaded:    s.view.Len(),
		Pages:     s.pages,
		HasMore:   s.loader.HasMore(),
		Filter:    s.opts.Filter,
		UpdatedAt: s.updatedAt,
	}
	if s.err != nil {
		v.Error = s.err.Error()
	}
	if s.opts.Sort != nil {
		sort := *s.opts.Sort
		v.Sort = &sort
	}
	return v
}
