package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"doclib/application"
	"doclib/domain/library"
)

type fakePager struct {
	views []application.SessionView
	err   error
	calls int
}

func (f *fakePager) LoadMore(ctx context.Context, id string) (application.SessionView, error) {
	if f.calls >= len(f.views) {
		return application.SessionView{}, f.err
	}
	v := f.views[f.calls]
	f.calls++
	return v, nil
}

func TestItemsFlags_SessionOptions(t *testing.T) {
	opts, err := itemsFlags{mode: "offset", pageSize: 50, sort: "Modified", desc: true, filter: "q1"}.sessionOptions("Documents")
	require.NoError(t, err)
	assert.Equal(t, application.ModeOffset, opts.Mode)
	assert.Equal(t, "Documents", opts.ListTitle)
	assert.Equal(t, 50, opts.PageSize)
	require.NotNil(t, opts.Sort)
	assert.Equal(t, application.SortSpec{Field: "Modified", Ascending: false}, *opts.Sort)

	opts, err = itemsFlags{}.sessionOptions("Documents")
	require.NoError(t, err)
	assert.Equal(t, application.ModeStream, opts.Mode)
	assert.Nil(t, opts.Sort)

	_, err = itemsFlags{mode: "pages"}.sessionOptions("Documents")
	assert.Error(t, err)
	_, err = itemsFlags{pages: -1}.sessionOptions("Documents")
	assert.Error(t, err)
}

func TestLoadPages_StopsAtLimit(t *testing.T) {
	p := &fakePager{views: []application.SessionView{
		{ID: "s", Pages: 2, HasMore: true},
		{ID: "s", Pages: 3, HasMore: true},
	}}

	view, err := loadPages(context.Background(), p, application.SessionView{ID: "s", Pages: 1, HasMore: true}, 2)

	require.NoError(t, err)
	assert.Equal(t, 2, view.Pages)
	assert.Equal(t, 1, p.calls)
}

func TestLoadPages_ZeroLoadsEverything(t *testing.T) {
	p := &fakePager{views: []application.SessionView{
		{ID: "s", Pages: 2, HasMore: true},
		{ID: "s", Pages: 3, HasMore: false},
	}}

	view, err := loadPages(context.Background(), p, application.SessionView{ID: "s", Pages: 1, HasMore: true}, 0)

	require.NoError(t, err)
	assert.Equal(t, 3, view.Pages)
	assert.False(t, view.HasMore)
}

func TestLoadPages_ErrorKeepsLastView(t *testing.T) {
	p := &fakePager{err: errors.New("timeout")}
	start := application.SessionView{ID: "s", Pages: 1, Loaded: 30, HasMore: true}

	view, err := loadPages(context.Background(), p, start, 0)

	assert.ErrorContains(t, err, "load page 2: timeout")
	assert.Equal(t, 30, view.Loaded)
}

func TestWriteOutput(t *testing.T) {
	result := itemsResult{List: "Documents", Mode: "stream", Pages: 1, Loaded: 1,
		Items: []library.Item{{ID: 1, Name: "a.docx", Type: "docx"}}}

	var buf bytes.Buffer
	require.NoError(t, writeOutput(&buf, "json", result))
	assert.Contains(t, buf.String(), `"has_more": false`)
	assert.Contains(t, buf.String(), `"name": "a.docx"`)

	buf.Reset()
	require.NoError(t, writeOutput(&buf, "yaml", result))
	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "Documents", decoded["list"])
	items := decoded["items"].([]any)
	assert.Equal(t, "a.docx", items[0].(map[string]any)["name"])

	assert.Error(t, writeOutput(&buf, "csv", result))
}
