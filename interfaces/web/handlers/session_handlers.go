package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"doclib/application"
	"doclib/interfaces/web/presenters"
	"doclib/interfaces/web/templates/pages"
	"doclib/logging"
)

// SessionHandlers serves browse session endpoints as JSON and as the HTML grid.
type SessionHandlers struct {
	browser   *application.DocumentBrowser
	presenter *presenters.DocumentPresenter
	logger    *logging.Logger
}

// NewSessionHandlers creates session handlers.
func NewSessionHandlers(browser *application.DocumentBrowser, presenter *presenters.DocumentPresenter) *SessionHandlers {
	return &SessionHandlers{
		browser:   browser,
		presenter: presenter,
		logger:    logging.Default().WithComponent("session_handlers"),
	}
}

type openSessionRequest struct {
	List     string                `json:"list"`
	View     string                `json:"view"`
	Mode     string                `json:"mode"`
	Fields   []string              `json:"fields"`
	PageSize int                   `json:"page_size"`
	Sort     *application.SortSpec `json:"sort"`
	Filter   string                `json:"filter"`
}

type sortRequest struct {
	Field     string `json:"field"`
	Ascending *bool  `json:"ascending"`
}

type filterRequest struct {
	Text string `json:"text"`
}

// Open creates a session and returns its first page.
func (h *SessionHandlers) Open(w http.ResponseWriter, r *http.Request) {
	var req openSessionRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	mode, err := application.ParseSessionMode(req.Mode)
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	view, err := h.browser.OpenSession(r.Context(), application.SessionOptions{
		ListTitle: req.List,
		ViewName:  req.View,
		Mode:      mode,
		Fields:    req.Fields,
		PageSize:  req.PageSize,
		Sort:      req.Sort,
		Filter:    req.Filter,
	})
	if err != nil {
		h.logger.WithContext(r.Context()).Warn("Open session failed", "list", req.List, "error", err)
		WriteJSON(w, StatusForError(err), errorResponse{Error: err.Error(), SessionID: view.ID})
		return
	}
	WriteJSON(w, http.StatusCreated, view)
}

// Get returns the current snapshot of a session.
func (h *SessionHandlers) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.browser.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, view)
}

// More loads the next page of a session.
func (h *SessionHandlers) More(w http.ResponseWriter, r *http.Request) {
	view, err := h.browser.LoadMore(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, view)
}

// Sort changes the ordering of a session. An empty field clears it.
func (h *SessionHandlers) Sort(w http.ResponseWriter, r *http.Request) {
	req := sortRequest{}
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	ascending := req.Ascending == nil || *req.Ascending

	view, err := h.browser.Sort(r.Context(), chi.URLParam(r, "id"), req.Field, ascending)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, view)
}

// Filter changes the name filter of a session.
func (h *SessionHandlers) Filter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	view, err := h.browser.Filter(r.Context(), chi.URLParam(r, "id"), req.Text)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, view)
}

// Close discards a session.
func (h *SessionHandlers) Close(w http.ResponseWriter, r *http.Request) {
	if err := h.browser.Close(r.Context(), chi.URLParam(r, "id")); err != nil {
		WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Grid renders the HTML document grid. Query parameters drive grid actions:
// sort/asc reorder, filter narrows by name, more=1 loads the next page.
// HTMX partial requests receive only the grid fragment.
func (h *SessionHandlers) Grid(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	q := r.URL.Query()

	view, err := h.browser.Get(ctx, id)
	if err != nil {
		http.Error(w, err.Error(), StatusForError(err))
		return
	}

	switch {
	case q.Has("sort"):
		view, err = h.browser.Sort(ctx, id, q.Get("sort"), queryAscending(q.Get("asc")))
	case q.Has("filter"):
		view, err = h.browser.Filter(ctx, id, q.Get("filter"))
	case q.Get("more") == "1":
		view, err = h.browser.LoadMore(ctx, id)
	}
	if err != nil {
		// The grid still renders; errored sessions carry their message in the view.
		h.logger.WithContext(ctx).Warn("Grid action failed", "session_id", id, "error", err)
		if current, getErr := h.browser.Get(ctx, id); getErr == nil {
			view = current
		}
		if view.Error == "" {
			view.Error = err.Error()
		}
	}

	vm := h.presenter.ToGridViewModel(view)
	renderPageOrFragment(w, r, pages.GridTargetID, pages.DocumentGridPage(*vm), pages.DocumentGrid(*vm))
}

// queryAscending reads the grid's asc parameter; absent or malformed means ascending.
func queryAscending(v string) bool {
	ascending, err := strconv.ParseBool(v)
	return err != nil || ascending
}
