// Package caml builds the declarative query (CAML view XML) consumed by the
// stream-paging strategy.
package caml

import (
	"fmt"
	"strings"
)

// DefaultPageSize is the row limit used when callers pass a non-positive page size.
const DefaultPageSize = 50

// BaselineFields are always projected so the normalizer can populate every required Item field.
var BaselineFields = []string{
	"ID",
	"FileLeafRef",
	"FileRef",
	"Modified",
	"Editor",
	"SMTotalFileStreamSize",
	"DocIcon",
	"File_x0020_Type",
	"FSObjType",
}

// OrderClause is a single-field sort.
type OrderClause struct {
	Field     string `json:"field" yaml:"field"`
	Ascending bool   `json:"ascending" yaml:"ascending"`
}

// FilterClause is a single "field contains value" predicate.
type FilterClause struct {
	Field string `json:"field" yaml:"field"`
	Value string `json:"value" yaml:"value"`
}

// QueryDescriptor is the full query surface: projection, one optional predicate,
// one optional sort and a row limit.
type QueryDescriptor struct {
	Fields   []string      `json:"fields" yaml:"fields"`
	Filter   *FilterClause `json:"filter,omitempty" yaml:"filter,omitempty"`
	OrderBy  *OrderClause  `json:"order_by,omitempty" yaml:"order_by,omitempty"`
	PageSize int           `json:"page_size" yaml:"page_size"`
}

// BuildOrderBy builds a sort clause. Field existence is not checked.
func BuildOrderBy(field string, ascending bool) OrderClause {
	return OrderClause{Field: field, Ascending: ascending}
}

// BuildFilterContains builds a contains predicate. The value is kept verbatim;
// callers that need escaping apply EscapeValue first.
func BuildFilterContains(field, value string) FilterClause {
	return FilterClause{Field: field, Value: value}
}

// BuildQueryDescriptor merges the baseline projection with fieldNames and applies
// the optional clauses. Overlapping names are kept as given.
func BuildQueryDescriptor(fieldNames []string, filter *FilterClause, orderBy *OrderClause, pageSize int) QueryDescriptor {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	fields := make([]string, 0, len(BaselineFields)+len(fieldNames))
	fields = append(fields, BaselineFields...)
	fields = append(fields, fieldNames...)

	q := QueryDescriptor{Fields: fields, PageSize: pageSize}
	if filter != nil {
		f := *filter
		q.Filter = &f
	}
	if orderBy != nil {
		o := *orderBy
		q.OrderBy = &o
	}
	return q
}

// HasField reports whether name is projected at least once.
func (q QueryDescriptor) HasField(name string) bool {
	for _, f := range q.Fields {
		if f == name {
			return true
		}
	}
	return false
}

// ViewXML serializes the descriptor to a CAML View document.
// Field names and the filter value are written verbatim.
func (q QueryDescriptor) ViewXML() string {
	var b strings.Builder

	b.WriteString("<View><ViewFields>")
	for _, name := range q.Fields {
		fmt.Fprintf(&b, `<FieldRef Name="%s" />`, name)
	}
	b.WriteString("</ViewFields><Query>")
	if q.Filter != nil {
		b.WriteString(whereContainsXML(*q.Filter))
	}
	if q.OrderBy != nil {
		b.WriteString(orderByXML(*q.OrderBy))
	}
	b.WriteString("</Query>")

	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	fmt.Fprintf(&b, `<RowLimit Paged="TRUE">%d</RowLimit>`, pageSize)
	b.WriteString("</View>")

	return b.String()
}

func orderByXML(o OrderClause) string {
	asc := "FALSE"
	if o.Ascending {
		asc = "TRUE"
	}
	return fmt.Sprintf(`<OrderBy><FieldRef Name="%s" Ascending="%s" /></OrderBy>`, o.Field, asc)
}

func whereContainsXML(f FilterClause) string {
	return fmt.Sprintf(`<Where><Contains><FieldRef Name="%s" /><Value Type="Text">%s</Value></Contains></Where>`, f.Field, f.Value)
}

var valueEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// EscapeValue XML-escapes a value for safe use in a filter clause.
func EscapeValue(s string) string {
	return valueEscaper.Replace(s)
}
