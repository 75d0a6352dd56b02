// Package ui holds reusable templ components.
package ui

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// StatusBannerView is a status message shown above the grid.
type StatusBannerView struct {
	Title   string
	Message string
	Type    string // "error", "info"
}

// StatusBanner renders a banner, or nothing when the view has no message.
func StatusBanner(view StatusBannerView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if view.Message == "" {
			return nil
		}
		class := "border-slate-200 bg-slate-50 text-slate-700"
		if view.Type == "error" {
			class = "border-red-200 bg-red-50 text-red-700"
		}
		_, err := io.WriteString(w, `<div role="status" class="rounded border px-3 py-2 mb-3 `+class+`">`+
			`<strong>`+templ.EscapeString(view.Title)+`</strong> `+
			`<span>`+templ.EscapeString(view.Message)+`</span></div>`)
		return err
	})
}
