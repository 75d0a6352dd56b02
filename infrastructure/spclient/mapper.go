package spclient

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"doclib/domain/library"
	"doclib/domain/paging"
)

// bulkSelect is the projection the items endpoint always requests.
var bulkSelect = []string{"Id", "FileLeafRef", "FileRef", "Modified", "Editor/Title", "File_x0020_Size"}

// FieldSelect is the projection of the list fields query.
const FieldSelect = "InternalName,Title,TypeAsString,Hidden,ReadOnlyField"

// joinURL safely joins a base URL with a relative path
func joinURL(base, rel string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	if strings.HasPrefix(rel, "/") {
		u.Path = rel
		return u.String()
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.Path += rel
	return u.String()
}

// firstNonEmpty returns the first non-empty string from the provided values
func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// odataString quotes s as an OData string literal argument.
func odataString(s string) string {
	return "'" + url.PathEscape(strings.ReplaceAll(s, "'", "''")) + "'"
}

func listEndpoint(siteURL, listTitle string) string {
	return strings.TrimRight(siteURL, "/") + "/_api/web/lists/GetByTitle(" + odataString(listTitle) + ")"
}

// itemsEndpoint builds the REST items URL for one offset page.
// Continuation uses the server-side skiptoken keyed on the last returned id.
func itemsEndpoint(siteURL string, req paging.ItemsRequest) string {
	selectFields := append([]string(nil), bulkSelect...)
	seen := make(map[string]bool, len(selectFields)+len(req.Fields))
	for _, f := range selectFields {
		seen[f] = true
	}
	for _, f := range req.Fields {
		if f == "" || f == "Editor" || f == "ID" || seen[f] {
			continue
		}
		seen[f] = true
		selectFields = append(selectFields, f)
	}

	var b strings.Builder
	b.WriteString(listEndpoint(siteURL, req.ListTitle))
	b.WriteString("/items?$select=")
	b.WriteString(url.QueryEscape(strings.Join(selectFields, ",")))
	b.WriteString("&$expand=Editor")
	fmt.Fprintf(&b, "&$top=%d", req.Top)
	b.WriteString("&$orderby=Id")
	if req.AfterID > 0 {
		b.WriteString("&$skiptoken=")
		b.WriteString(url.QueryEscape("Paged=TRUE&p_ID=" + strconv.FormatInt(req.AfterID, 10)))
	}
	return b.String()
}

// streamEndpoint builds the RenderListDataAsStream URL; the cursor is the previous NextHref.
func streamEndpoint(siteURL, listTitle, cursor string) string {
	endpoint := listEndpoint(siteURL, listTitle) + "/RenderListDataAsStream"
	if cursor == "" {
		return endpoint
	}
	if !strings.HasPrefix(cursor, "?") {
		cursor = "?" + cursor
	}
	return endpoint + cursor
}

// viewFieldsEndpoint addresses the named view's columns, or the default view's.
func viewFieldsEndpoint(siteURL, listTitle, viewName string) string {
	if viewName == "" {
		return listEndpoint(siteURL, listTitle) + "/DefaultView/ViewFields"
	}
	return listEndpoint(siteURL, listTitle) + "/Views/GetByTitle(" + odataString(viewName) + ")/ViewFields"
}

func streamRequestBody(viewXML string) ([]byte, error) {
	return json.Marshal(renderListDataRequest{
		Parameters: renderListDataParameters{ViewXml: viewXML, RenderOptions: renderOptionListData},
	})
}

func toFieldDescriptors(fields []FieldApiData) []library.FieldDescriptor {
	out := make([]library.FieldDescriptor, 0, len(fields))
	for _, f := range fields {
		out = append(out, library.FieldDescriptor{
			InternalName: f.InternalName,
			Title:        firstNonEmpty(f.Title, f.InternalName),
			Type:         library.ParseFieldType(f.TypeAsString),
			RawType:      f.TypeAsString,
			Hidden:       f.Hidden,
			ReadOnly:     f.ReadOnlyField,
		})
	}
	return out
}

// orderByView returns the view's columns in view order. Column names absent from the
// field collection are skipped. An empty order returns the visible fields unchanged.
func orderByView(fields []library.FieldDescriptor, order []string) []library.FieldDescriptor {
	if len(order) == 0 {
		return library.VisibleFields(fields)
	}
	byName := make(map[string]library.FieldDescriptor, len(fields))
	for _, f := range fields {
		byName[f.InternalName] = f
	}
	out := make([]library.FieldDescriptor, 0, len(order))
	for _, name := range order {
		if f, ok := byName[name]; ok {
			out = append(out, f)
		}
	}
	return out
}
