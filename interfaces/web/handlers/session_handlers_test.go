package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"doclib/application"
	"doclib/domain/contracts"
	"doclib/domain/library"
	"doclib/domain/paging"
	"doclib/interfaces/web/presenters"
	"doclib/test/helpers"
)

func newTestRouter(m *helpers.MockCollaborators) *chi.Mux {
	browser := application.NewDocumentBrowser(m.Client, m.FieldCache, application.NewSessionRegistry(time.Minute), 2)
	r := chi.NewRouter()
	Routes(r, NewLibraryHandlers(browser), NewSessionHandlers(browser, presenters.NewDocumentPresenter(nil, nil)))
	return r
}

func serve(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeView(t *testing.T, w *httptest.ResponseRecorder) application.SessionView {
	t.Helper()
	var view application.SessionView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	return view
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func openSession(t *testing.T, r http.Handler) application.SessionView {
	t.Helper()
	w := serve(r, http.MethodPost, "/api/sessions", `{"list":"Documents"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeView(t, w)
}

func TestSessionHandlers_OpenGetMore(t *testing.T) {
	// Arrange
	m := helpers.NewMockCollaborators()
	td := helpers.NewTestData()
	m.ExpectFieldCacheHit("Documents", "", td.Fields())
	m.ExpectStreamPage("", paging.StreamResponse{Records: td.StreamRows(1, "a.docx", "b.docx"), NextCursor: "A"})
	m.ExpectStreamPage("A", paging.StreamResponse{Records: td.StreamRows(3, "c.docx")})
	r := newTestRouter(m)

	// Act
	opened := openSession(t, r)
	got := serve(r, http.MethodGet, "/api/sessions/"+opened.ID, "")
	more := serve(r, http.MethodPost, "/api/sessions/"+opened.ID+"/more", "")

	// Assert
	assert.Equal(t, application.StatusReady, opened.Status)
	assert.Equal(t, 2, opened.Loaded)
	require.Equal(t, http.StatusOK, got.Code)
	assert.Equal(t, opened.ID, decodeView(t, got).ID)
	require.Equal(t, http.StatusOK, more.Code)
	view := decodeView(t, more)
	assert.Equal(t, 3, view.Loaded)
	assert.False(t, view.HasMore)
	m.AssertAllExpectations(t)
}

func TestSessionHandlers_OpenFetchFailureIsBadGateway(t *testing.T) {
	m := helpers.NewMockCollaborators()
	m.ExpectFieldCacheHit("Documents", "", helpers.NewTestData().Fields())
	m.Client.On("FetchStream", mock.Anything, mock.Anything).Return(paging.StreamResponse{}, errors.New("503 service unavailable"))
	r := newTestRouter(m)

	w := serve(r, http.MethodPost, "/api/sessions", `{"list":"Documents"}`)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	resp := decodeError(t, w)
	assert.Contains(t, resp.Error, "503 service unavailable")
	require.NotEmpty(t, resp.SessionID)

	// The errored session refuses further loads.
	more := serve(r, http.MethodPost, "/api/sessions/"+resp.SessionID+"/more", "")
	assert.Equal(t, http.StatusConflict, more.Code)
}

func TestSessionHandlers_OpenValidation(t *testing.T) {
	r := newTestRouter(helpers.NewMockCollaborators())

	tests := []struct {
		name string
		body string
	}{
		{"missing list", `{}`},
		{"unknown mode", `{"list":"Documents","mode":"scroll"}`},
		{"malformed body", `{"list":`},
		{"unknown field", `{"list":"Documents","pages":3}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, http.MethodPost, "/api/sessions", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestSessionHandlers_UnknownSessionIsNotFound(t *testing.T) {
	r := newTestRouter(helpers.NewMockCollaborators())

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/api/sessions/missing", ""},
		{http.MethodPost, "/api/sessions/missing/more", ""},
		{http.MethodPost, "/api/sessions/missing/sort", `{"field":"Modified"}`},
		{http.MethodPost, "/api/sessions/missing/filter", `{"text":"x"}`},
		{http.MethodDelete, "/api/sessions/missing", ""},
		{http.MethodGet, "/sessions/missing/grid", ""},
	} {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := serve(r, tc.method, tc.path, tc.body)
			assert.Equal(t, http.StatusNotFound, w.Code)
		})
	}
}

func TestSessionHandlers_SortAndFilterOffsetMode(t *testing.T) {
	// Arrange
	m := helpers.NewMockCollaborators()
	td := helpers.NewTestData()
	m.ExpectFieldCacheHit("Documents", "", td.Fields())
	m.ExpectItemsPage(0, []library.RawRecord{td.BulkRow(1, "b.docx"), td.BulkRow(2, "a.pdf")})
	r := newTestRouter(m)
	w := serve(r, http.MethodPost, "/api/sessions", `{"list":"Documents","mode":"offset"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decodeView(t, w).ID

	// Act
	sorted := serve(r, http.MethodPost, "/api/sessions/"+id+"/sort", `{"field":"name"}`)
	filtered := serve(r, http.MethodPost, "/api/sessions/"+id+"/filter", `{"text":"PDF"}`)

	// Assert
	require.Equal(t, http.StatusOK, sorted.Code)
	view := decodeView(t, sorted)
	require.Len(t, view.Items, 2)
	assert.Equal(t, "a.pdf", view.Items[0].Name)
	require.NotNil(t, view.Sort)
	assert.True(t, view.Sort.Ascending)

	require.Equal(t, http.StatusOK, filtered.Code)
	view = decodeView(t, filtered)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "a.pdf", view.Items[0].Name)
	m.Client.AssertNumberOfCalls(t, "FetchItems", 1)
}

func TestSessionHandlers_SortDescendingStreamMode(t *testing.T) {
	m := helpers.NewMockCollaborators()
	td := helpers.NewTestData()
	m.ExpectFieldCacheHit("Documents", "", td.Fields())
	m.ExpectStreamPage("", paging.StreamResponse{Records: td.StreamRows(1, "a", "b")})
	m.ExpectStreamPage("", paging.StreamResponse{Records: td.StreamRows(2, "b", "a")})
	r := newTestRouter(m)
	id := openSession(t, r).ID

	w := serve(r, http.MethodPost, "/api/sessions/"+id+"/sort", `{"field":"Modified","ascending":false}`)

	require.Equal(t, http.StatusOK, w.Code)
	last := m.Client.Calls[len(m.Client.Calls)-1].Arguments.Get(1).(paging.StreamRequest)
	assert.Contains(t, last.ViewXML, `Ascending="FALSE"`)
	assert.Equal(t, "", last.Cursor)
}

func TestSessionHandlers_Close(t *testing.T) {
	m := helpers.NewMockCollaborators()
	td := helpers.NewTestData()
	m.ExpectFieldCacheHit("Documents", "", td.Fields())
	m.ExpectStreamPage("", paging.StreamResponse{Records: td.StreamRows(1, "a")})
	r := newTestRouter(m)
	id := openSession(t, r).ID

	w := serve(r, http.MethodDelete, "/api/sessions/"+id, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = serve(r, http.MethodGet, "/api/sessions/"+id, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionHandlers_Grid(t *testing.T) {
	// Arrange
	m := helpers.NewMockCollaborators()
	td := helpers.NewTestData()
	m.ExpectFieldCacheHit("Documents", "", td.Fields())
	m.ExpectStreamPage("", paging.StreamResponse{Records: td.StreamRows(1, "Plan <v2>.docx"), NextCursor: "A"})
	m.ExpectStreamPage("A", paging.StreamResponse{Records: td.StreamRows(2, "notes.txt")})
	r := newTestRouter(m)
	id := openSession(t, r).ID

	// Act
	page := serve(r, http.MethodGet, "/sessions/"+id+"/grid", "")

	req := httptest.NewRequest(http.MethodGet, "/sessions/"+id+"/grid?more=1", nil)
	req.Header.Set("HX-Request", "true")
	req.Header.Set("HX-Target", "document-grid")
	partial := httptest.NewRecorder()
	r.ServeHTTP(partial, req)

	// Assert
	require.Equal(t, http.StatusOK, page.Code)
	assert.Equal(t, "text/html; charset=utf-8", page.Header().Get("Content-Type"))
	assert.Contains(t, page.Body.String(), "<!DOCTYPE html>")
	assert.Contains(t, page.Body.String(), "Plan &lt;v2&gt;.docx")
	assert.Contains(t, page.Body.String(), "Load more")

	require.Equal(t, http.StatusOK, partial.Code)
	assert.NotContains(t, partial.Body.String(), "<!DOCTYPE html>")
	assert.Contains(t, partial.Body.String(), "notes.txt")
	assert.NotContains(t, partial.Body.String(), "Load more")
}

func TestSessionHandlers_GridSortDefaultsToAscending(t *testing.T) {
	// Arrange
	m := helpers.NewMockCollaborators()
	td := helpers.NewTestData()
	m.ExpectFieldCacheHit("Documents", "", td.Fields())
	m.ExpectItemsPage(0, []library.RawRecord{td.BulkRow(1, "b.docx"), td.BulkRow(2, "a.pdf")})
	r := newTestRouter(m)
	w := serve(r, http.MethodPost, "/api/sessions", `{"list":"Documents","mode":"offset"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decodeView(t, w).ID

	// Act
	grid := serve(r, http.MethodGet, "/sessions/"+id+"/grid?sort=FileLeafRef", "")
	afterDefault := decodeView(t, serve(r, http.MethodGet, "/api/sessions/"+id, ""))
	serve(r, http.MethodGet, "/sessions/"+id+"/grid?sort=FileLeafRef&asc=false", "")
	afterDesc := decodeView(t, serve(r, http.MethodGet, "/api/sessions/"+id, ""))

	// Assert
	require.Equal(t, http.StatusOK, grid.Code)
	require.NotNil(t, afterDefault.Sort)
	assert.True(t, afterDefault.Sort.Ascending)
	assert.Equal(t, "a.pdf", afterDefault.Items[0].Name)
	require.NotNil(t, afterDesc.Sort)
	assert.False(t, afterDesc.Sort.Ascending)
	assert.Equal(t, "b.docx", afterDesc.Items[0].Name)
}

func TestQueryAscending(t *testing.T) {
	tests := map[string]bool{"": true, "true": true, "1": true, "false": false, "0": false, "sideways": true}
	for in, want := range tests {
		assert.Equal(t, want, queryAscending(in), "asc=%q", in)
	}
}

func TestLibraryHandlers_Fields(t *testing.T) {
	m := helpers.NewMockCollaborators()
	m.ExpectFieldCacheHit("Documents", "All Documents", helpers.NewTestData().Fields())
	r := newTestRouter(m)

	w := serve(r, http.MethodGet, "/api/libraries/Documents/fields?view=All+Documents", "")

	require.Equal(t, http.StatusOK, w.Code)
	var resp fieldsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Documents", resp.List)
	assert.Equal(t, "All Documents", resp.View)
	assert.Len(t, resp.Fields, 6)
	assert.NotContains(t, resp.Visible, "_UIVersionString")
}

func TestLibraryHandlers_FieldsRefresh(t *testing.T) {
	m := helpers.NewMockCollaborators()
	m.FieldCache.On("Invalidate", mock.Anything, "Documents").Return(nil)
	m.ExpectFieldCacheMiss("Documents", "", helpers.NewTestData().Fields())
	r := newTestRouter(m)

	w := serve(r, http.MethodGet, "/api/libraries/Documents/fields?refresh=1", "")

	assert.Equal(t, http.StatusOK, w.Code)
	m.AssertAllExpectations(t)
}

func TestLibraryHandlers_FieldsRemoteFailure(t *testing.T) {
	m := helpers.NewMockCollaborators()
	m.FieldCache.On("Get", mock.Anything, "Documents", "").Return(nil, false, nil)
	m.Client.On("FetchFieldMetadata", mock.Anything, "Documents", "").Return(nil, errors.New("403 forbidden"))
	r := newTestRouter(m)

	w := serve(r, http.MethodGet, "/api/libraries/Documents/fields", "")

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, decodeError(t, w).Error, "403 forbidden")
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{contracts.ErrSessionNotFound, http.StatusNotFound},
		{fmt.Errorf("load: %w", contracts.ErrLoadInFlight), http.StatusConflict},
		{contracts.ErrSessionErrored, http.StatusConflict},
		{paging.ErrStalePage, http.StatusConflict},
		{fmt.Errorf("open session: %w", contracts.ErrListRequired), http.StatusBadRequest},
		{errors.New("connection reset"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusForError(tt.err))
		})
	}
}
