package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
)

func textComponent(s string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}

func TestRenderPageOrFragment(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"plain request", nil, "page"},
		{"htmx other target", map[string]string{"HX-Request": "true", "HX-Target": "sidebar"}, "page"},
		{"htmx grid target", map[string]string{"HX-Request": "true", "HX-Target": "#grid"}, "fragment"},
		{"target without htmx", map[string]string{"HX-Target": "grid"}, "page"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()

			renderPageOrFragment(rec, req, "grid", textComponent("page"), textComponent("fragment"))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, rec.Body.String())
			assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
		})
	}
}

func TestRenderHTML_FailureIsServerError(t *testing.T) {
	failing := templ.ComponentFunc(func(context.Context, io.Writer) error {
		return errors.New("boom")
	})
	rec := httptest.NewRecorder()

	renderHTML(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, failing)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "render page: boom")
}
