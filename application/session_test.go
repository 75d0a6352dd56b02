package application

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doclib/domain/library"
	"doclib/domain/paging"
	"doclib/test/mocks"
)

// gatedStream blocks the first FetchStream until release is closed; later calls answer immediately.
type gatedStream struct {
	mocks.MockLibraryClient

	mu      sync.Mutex
	calls   int
	started chan struct{}
	release chan struct{}
}

func (g *gatedStream) FetchStream(ctx context.Context, req paging.StreamRequest) (paging.StreamResponse, error) {
	g.mu.Lock()
	g.calls++
	first := g.calls == 1
	g.mu.Unlock()

	if first {
		close(g.started)
		<-g.release
		return paging.StreamResponse{Records: []library.RawRecord{{"ID": "1", "FileLeafRef": "stale.docx"}}}, nil
	}
	name := "fresh.docx"
	if strings.Contains(req.ViewXML, "<OrderBy>") {
		name = "sorted.docx"
	}
	return paging.StreamResponse{Records: []library.RawRecord{{"ID": "2", "FileLeafRef": name}}}, nil
}

func TestSession_RequeryDiscardsInFlightPage(t *testing.T) {
	client := &gatedStream{started: make(chan struct{}), release: make(chan struct{})}
	session := NewSession("s1", client, SessionOptions{ListTitle: "Docs", Mode: ModeStream}, nil)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := session.Load(ctx)
		done <- err
	}()
	<-client.started

	view, err := session.Sort(ctx, "Modified", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"sorted.docx"}, itemNames(view.Items))

	close(client.release)
	assert.ErrorIs(t, <-done, paging.ErrStalePage)

	final := session.Snapshot()
	assert.Equal(t, StatusReady, final.Status)
	assert.Equal(t, []string{"sorted.docx"}, itemNames(final.Items))
}

func TestSession_StatusTransitions(t *testing.T) {
	client := &mocks.MockLibraryClient{}
	client.On("FetchItems", context.Background(), paging.ItemsRequest{ListTitle: "Docs", Top: 1}).
		Return([]library.RawRecord{{"Id": 1.0, "FileLeafRef": "a"}}, nil).Once()
	client.On("FetchItems", context.Background(), paging.ItemsRequest{ListTitle: "Docs", Top: 1, Skip: 1, AfterID: 1}).
		Return([]library.RawRecord{}, nil).Once()

	session := NewSession("s2", client, SessionOptions{ListTitle: "Docs", Mode: ModeOffset, PageSize: 1}, nil)
	assert.Equal(t, StatusLoading, session.Snapshot().Status)

	view, err := session.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusReady, view.Status)
	assert.True(t, view.HasMore)

	view, err = session.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusReady, view.Status)
	assert.False(t, view.HasMore)
	assert.Equal(t, 1, view.Loaded)

	view, err = session.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, view.Pages, "no pull after exhaustion")
	client.AssertExpectations(t)
}

func TestSession_OffsetOptionsApplyToView(t *testing.T) {
	client := &mocks.MockLibraryClient{}
	client.On("FetchItems", context.Background(), paging.ItemsRequest{ListTitle: "Docs", Top: 3}).
		Return([]library.RawRecord{
			{"Id": 1.0, "FileLeafRef": "b-plan.txt"},
			{"Id": 2.0, "FileLeafRef": "memo.txt"},
			{"Id": 3.0, "FileLeafRef": "a-plan.txt"},
		}, nil)

	session := NewSession("s3", client, SessionOptions{
		ListTitle: "Docs",
		Mode:      ModeOffset,
		PageSize:  3,
		Filter:    "plan",
		Sort:      &SortSpec{Field: "name", Ascending: true},
	}, nil)

	view, err := session.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a-plan.txt", "b-plan.txt"}, itemNames(view.Items))
	assert.Equal(t, 3, view.Loaded)

	view, err = session.Sort(context.Background(), "", false)
	require.NoError(t, err)
	assert.Nil(t, view.Sort)
	assert.Equal(t, []string{"b-plan.txt", "a-plan.txt"}, itemNames(view.Items))
}

func TestSession_StreamQueryCarriesClauses(t *testing.T) {
	session := NewSession("s4", &mocks.MockLibraryClient{}, SessionOptions{
		ListTitle: "Docs",
		Mode:      ModeStream,
		Fields:    []string{"Status"},
		PageSize:  10,
		Filter:    "report",
		Sort:      &SortSpec{Field: "Modified"},
	}, nil)

	q := session.Query()
	require.NotNil(t, q.Filter)
	require.NotNil(t, q.OrderBy)
	assert.Equal(t, "FileLeafRef", q.Filter.Field)
	assert.Equal(t, "report", q.Filter.Value)
	assert.False(t, q.OrderBy.Ascending)
	assert.Equal(t, 10, q.PageSize)
	assert.Equal(t, "Status", q.Fields[len(q.Fields)-1])
}
