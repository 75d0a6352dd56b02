package handlers

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/a-h/templ"
)

// renderHTML buffers the component so a render failure can still produce a 500.
func renderHTML(w http.ResponseWriter, r *http.Request, status int, component templ.Component) {
	var buf bytes.Buffer
	if err := component.Render(r.Context(), &buf); err != nil {
		http.Error(w, "render page: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderPageOrFragment writes fragment when HTMX targets targetID, otherwise the full page.
func renderPageOrFragment(w http.ResponseWriter, r *http.Request, targetID string, page, fragment templ.Component) {
	if htmxTarget(r) == targetID {
		renderHTML(w, r, http.StatusOK, fragment)
		return
	}
	renderHTML(w, r, http.StatusOK, page)
}

// htmxTarget returns the element id an HTMX request swaps into, or "" for ordinary requests.
func htmxTarget(r *http.Request) string {
	if r.Header.Get("HX-Request") != "true" {
		return ""
	}
	return strings.TrimPrefix(r.Header.Get("HX-Target"), "#")
}
