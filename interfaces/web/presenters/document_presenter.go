// Package presenters transforms domain data into UI-ready view models.
package presenters

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"doclib/application"
	"doclib/domain/library"
)

const (
	iconBase    = "/_layouts/15/images/"
	genericIcon = iconBase + "icgen.png"
	dateLayout  = "Jan 2, 2006 3:04 PM"
)

// LinkResolver turns server-relative paths into absolute links.
type LinkResolver interface {
	AbsoluteURL(serverRelative string) string
}

// ColumnVM is one grid header.
type ColumnVM struct {
	Field     string
	Title     string
	SortState string // "asc", "desc" or ""
}

// CellVM is one rendered grid cell.
type CellVM struct {
	Field   string
	Text    string
	Href    string
	IconURL string
}

// DocumentRowVM is one grid row.
type DocumentRowVM struct {
	ID         int
	Name       string
	Href       string
	IconURL    string
	Modified   string
	ModifiedBy string
	Size       string
	Type       string
	Cells      []CellVM
}

// GridVM is the view model for a session's document grid.
type GridVM struct {
	SessionID string
	ListTitle string
	Status    string
	Error     string
	Filter    string
	Columns   []ColumnVM
	Rows      []DocumentRowVM
	Loaded    int
	Pages     int
	HasMore   bool
	Summary   string
}

// DocumentPresenter formats library items for the grid.
type DocumentPresenter struct {
	links    LinkResolver
	location *time.Location
}

// NewDocumentPresenter creates a document presenter. Dates render in loc (UTC when nil).
func NewDocumentPresenter(links LinkResolver, loc *time.Location) *DocumentPresenter {
	if loc == nil {
		loc = time.UTC
	}
	return &DocumentPresenter{links: links, location: loc}
}

// ToGridViewModel converts a session snapshot to the grid view model.
func (p *DocumentPresenter) ToGridViewModel(view application.SessionView) *GridVM {
	vm := &GridVM{
		SessionID: view.ID,
		ListTitle: view.ListTitle,
		Status:    string(view.Status),
		Error:     view.Error,
		Filter:    view.Filter,
		Columns:   make([]ColumnVM, len(view.Columns)),
		Rows:      make([]DocumentRowVM, len(view.Items)),
		Loaded:    view.Loaded,
		Pages:     view.Pages,
		HasMore:   view.HasMore,
	}

	for i, col := range view.Columns {
		vm.Columns[i] = ColumnVM{Field: col.InternalName, Title: col.Title, SortState: sortState(view.Sort, col.InternalName)}
	}
	for i, item := range view.Items {
		vm.Rows[i] = p.ToRow(item, view.Columns)
	}

	vm.Summary = summarize(len(view.Items), view.Loaded, view.HasMore)
	return vm
}

// ToRow formats one item. Cells follow the column order.
func (p *DocumentPresenter) ToRow(item library.Item, columns []library.FieldDescriptor) DocumentRowVM {
	row := DocumentRowVM{
		ID:         item.ID,
		Name:       item.Name,
		Href:       p.link(item.URL),
		IconURL:    IconURL(item.Type),
		Modified:   p.formatTime(item.Modified, item.HasValidModified()),
		ModifiedBy: item.ModifiedBy,
		Size:       FormatSize(item.Size),
		Type:       item.Type,
		Cells:      make([]CellVM, len(columns)),
	}
	for i, col := range columns {
		row.Cells[i] = p.cell(item, row, col)
	}
	return row
}

func (p *DocumentPresenter) cell(item library.Item, row DocumentRowVM, col library.FieldDescriptor) CellVM {
	c := CellVM{Field: col.InternalName}

	switch col.InternalName {
	case "DocIcon":
		c.IconURL = row.IconURL
		c.Text = item.Type
		return c
	case "LinkFilename", "LinkFilenameNoMenu", "FileLeafRef":
		c.Text = item.Name
		c.Href = row.Href
		return c
	case "Modified":
		c.Text = row.Modified
		return c
	case "Editor":
		c.Text = item.ModifiedBy
		return c
	case "File_x0020_Size", "FileSizeDisplay", "SMTotalFileStreamSize":
		c.Text = row.Size
		return c
	case "FileRef":
		c.Text = item.URL
		c.Href = row.Href
		return c
	}

	c.Text = p.CellText(item.Fields, col)
	return c
}

// CellText renders a non-required field from the record bag according to its declared type.
func (p *DocumentPresenter) CellText(fields library.FieldBag, col library.FieldDescriptor) string {
	v, ok := fields.Get(col.InternalName)
	if !ok || v == nil {
		return ""
	}

	switch col.Type {
	case library.FieldTypeUser, library.FieldTypeLookup:
		titles := library.ReferenceTitles(v)
		if len(titles) == 0 {
			return ""
		}
		return titles[0]
	case library.FieldTypeUserMulti, library.FieldTypeLookupMulti:
		return strings.Join(library.ReferenceTitles(v), "; ")
	case library.FieldTypeDateTime:
		ts, ok := library.ParseTimestamp(v)
		if !ok {
			return fields.String(col.InternalName)
		}
		return p.formatTime(ts, true)
	case library.FieldTypeNumber, library.FieldTypeInteger:
		if n, ok := v.(float64); ok {
			return humanize.Commaf(n)
		}
	}
	return fields.String(col.InternalName)
}

func (p *DocumentPresenter) link(serverRelative string) string {
	if serverRelative == "" || p.links == nil {
		return serverRelative
	}
	return p.links.AbsoluteURL(serverRelative)
}

func (p *DocumentPresenter) formatTime(t time.Time, valid bool) string {
	if !valid {
		return ""
	}
	return t.In(p.location).Format(dateLayout)
}

// IconURL returns the SharePoint file-type icon for an extension.
func IconURL(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || ext == library.UnknownType || strings.ContainsAny(ext, "/\\") {
		return genericIcon
	}
	return iconBase + "ic" + ext + ".png"
}

// FormatSize renders a byte count, or "" for zero.
func FormatSize(size int64) string {
	if size <= 0 {
		return ""
	}
	return humanize.Bytes(uint64(size))
}

func sortState(sort *application.SortSpec, field string) string {
	if sort == nil || sort.Field != field {
		return ""
	}
	if sort.Ascending {
		return "asc"
	}
	return "desc"
}

func summarize(shown, loaded int, hasMore bool) string {
	suffix := ""
	if hasMore {
		suffix = ", more available"
	}
	if shown == loaded {
		return fmt.Sprintf("%d items%s", loaded, suffix)
	}
	return fmt.Sprintf("%d of %d items%s", shown, loaded, suffix)
}
