// Package pages holds full-page and partial templ components.
package pages

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"doclib/interfaces/web/presenters"
	"doclib/interfaces/web/templates/components/core"
	"doclib/interfaces/web/templates/components/ui"
)

// GridTargetID is the element the grid swaps into on HTMX requests.
const GridTargetID = "document-grid"

// htmlWriter stops writing after the first error.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) component(ctx context.Context, c templ.Component) {
	if h.err == nil {
		h.err = c.Render(ctx, h.w)
	}
}

// DocumentGridPage renders a complete page around the grid.
func DocumentGridPage(vm presenters.GridVM) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>`)
		h.text(vm.ListTitle)
		h.raw(`</title><script src="https://unpkg.com/htmx.org@1.9.12"></script>` +
			`<script src="https://cdn.tailwindcss.com"></script></head>` +
			`<body class="bg-white text-slate-900"><main class="max-w-6xl mx-auto p-6">`)
		h.raw(`<h1 class="text-xl font-semibold mb-4">`)
		h.text(vm.ListTitle)
		h.raw(`</h1><div id="` + GridTargetID + `">`)
		h.component(ctx, DocumentGrid(vm))
		h.raw(`</div></main></body></html>`)
		return h.err
	})
}

// DocumentGrid renders the swappable grid: banner, filter box, table and load-more control.
func DocumentGrid(vm presenters.GridVM) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		base := gridURL(vm.SessionID)

		if vm.Error != "" {
			h.component(ctx, ui.StatusBanner(ui.StatusBannerView{Title: "Load failed", Message: vm.Error, Type: "error"}))
		}

		h.raw(`<input type="search" name="filter" placeholder="Filter by name" class="border rounded px-2 py-1 mb-3" value="`)
		h.text(vm.Filter)
		h.raw(`" hx-get="` + base + `" hx-trigger="keyup changed delay:300ms" hx-target="#` + GridTargetID + `">`)

		h.raw(`<table class="w-full text-sm"><thead><tr>`)
		for _, col := range vm.Columns {
			sortURL := base + "?" + url.Values{
				"sort": {col.Field},
				"asc":  {strconv.FormatBool(core.NextAscending(col.SortState))},
			}.Encode()
			h.raw(`<th scope="col" aria-sort="` + core.AriaSort(col.SortState) + `" class="text-left px-2 py-1 ` + core.HeaderClass(col.SortState) + `">`)
			h.raw(`<a href="#" hx-get="`)
			h.text(sortURL)
			h.raw(`" hx-target="#` + GridTargetID + `">`)
			h.text(col.Title)
			if ind := core.SortIndicator(col.SortState); ind != "" {
				h.raw(` <span aria-hidden="true">` + ind + `</span>`)
			}
			h.raw(`</a></th>`)
		}
		h.raw(`</tr></thead><tbody>`)
		h.component(ctx, DocumentRows(vm.Rows))
		h.raw(`</tbody></table>`)

		h.raw(`<div class="mt-3 flex items-center gap-3"><span class="text-slate-500">`)
		h.text(vm.Summary)
		h.raw(`</span>`)
		if vm.HasMore && vm.Status != "errored" {
			h.raw(`<button type="button" class="border rounded px-3 py-1" hx-get="` + base + `?more=1" hx-target="#` + GridTargetID + `">Load more</button>`)
		}
		h.raw(`</div>`)
		return h.err
	})
}

// DocumentRows renders table rows for the grid body.
func DocumentRows(rows []presenters.DocumentRowVM) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		for _, row := range rows {
			h.raw(fmt.Sprintf(`<tr data-id="%d" class="border-t">`, row.ID))
			for _, cell := range row.Cells {
				h.raw(`<td class="px-2 py-1">`)
				switch {
				case cell.IconURL != "":
					h.raw(`<img width="16" height="16" src="`)
					h.text(cell.IconURL)
					h.raw(`" alt="`)
					h.text(cell.Text)
					h.raw(`">`)
				case cell.Href != "":
					h.raw(`<a class="text-blue-700 hover:underline" href="`)
					h.text(cell.Href)
					h.raw(`">`)
					h.text(cell.Text)
					h.raw(`</a>`)
				default:
					h.text(cell.Text)
				}
				h.raw(`</td>`)
			}
			h.raw(`</tr>`)
		}
		return h.err
	})
}

func gridURL(sessionID string) string {
	return "/sessions/" + url.PathEscape(sessionID) + "/grid"
}
