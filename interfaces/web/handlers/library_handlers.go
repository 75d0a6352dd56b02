package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"doclib/application"
	"doclib/domain/library"
)

// LibraryHandlers serves list metadata endpoints.
type LibraryHandlers struct {
	browser *application.DocumentBrowser
}

// NewLibraryHandlers creates library handlers.
func NewLibraryHandlers(browser *application.DocumentBrowser) *LibraryHandlers {
	return &LibraryHandlers{browser: browser}
}

type fieldsResponse struct {
	List    string                    `json:"list"`
	View    string                    `json:"view,omitempty"`
	Fields  []library.FieldDescriptor `json:"fields"`
	Visible []string                  `json:"visible"`
}

// Fields returns the column metadata of a list view. refresh=1 bypasses the field cache.
func (h *LibraryHandlers) Fields(w http.ResponseWriter, r *http.Request) {
	list := chi.URLParam(r, "list")
	view := r.URL.Query().Get("view")

	load := h.browser.ListFields
	if r.URL.Query().Get("refresh") == "1" {
		load = h.browser.RefreshFields
	}
	fields, err := load(r.Context(), list, view)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, fieldsResponse{
		List:    list,
		View:    view,
		Fields:  fields,
		Visible: library.FieldNames(library.VisibleFields(fields)),
	})
}
