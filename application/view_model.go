package application

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"doclib/domain/library"
)

// SortSpec names the active sort column and direction.
type SortSpec struct {
	Field     string `json:"field"`
	Ascending bool   `json:"ascending"`
}

// ViewModel holds the accumulated items of one query session and derives the displayed set.
// Filter and sort are always recomputed over the full accumulated set.
// It is not safe for concurrent use; Session serializes access.
type ViewModel struct {
	items  []library.Item
	filter string
	sort   *SortSpec
}

// NewViewModel creates an empty view model.
func NewViewModel() *ViewModel {
	return &ViewModel{}
}

// Append merges a newly arrived page.
func (v *ViewModel) Append(items ...library.Item) {
	v.items = append(v.items, items...)
}

// Reset drops accumulated items. Filter and sort settings are kept.
func (v *ViewModel) Reset() {
	v.items = nil
}

// Accumulated returns every loaded item in arrival order.
func (v *ViewModel) Accumulated() []library.Item {
	return append([]library.Item(nil), v.items...)
}

// Len returns the accumulated count.
func (v *ViewModel) Len() int {
	return len(v.items)
}

// SetFilter sets the display-name filter; an empty string shows everything.
func (v *ViewModel) SetFilter(text string) {
	v.filter = text
}

// Filter returns the active filter text.
func (v *ViewModel) Filter() string {
	return v.filter
}

// SetSort orders the displayed set by field.
func (v *ViewModel) SetSort(field string, ascending bool) {
	v.sort = &SortSpec{Field: field, Ascending: ascending}
}

// ClearSort restores arrival order.
func (v *ViewModel) ClearSort() {
	v.sort = nil
}

// Sort returns the active sort, if any.
func (v *ViewModel) Sort() (SortSpec, bool) {
	if v.sort == nil {
		return SortSpec{}, false
	}
	return *v.sort, true
}

// Displayed returns the accumulated set sorted and then filtered.
func (v *ViewModel) Displayed() []library.Item {
	out := v.Accumulated()
	if v.sort != nil {
		SortItems(out, v.sort.Field, v.sort.Ascending)
	}
	return FilterByName(out, v.filter)
}

// FilterByName keeps items whose display name contains text, case-insensitively.
func FilterByName(items []library.Item, text string) []library.Item {
	if text == "" {
		return items
	}
	needle := strings.ToLower(text)
	out := make([]library.Item, 0, len(items))
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Name), needle) {
			out = append(out, it)
		}
	}
	return out
}

// SortItems stable-sorts items in place by field.
// Missing values go last when ascending and first when descending. Text that parses as a
// number compares numerically only when every present value in the column does.
func SortItems(items []library.Item, field string, ascending bool) {
	keys := make([]sortKey, len(items))
	numericColumn := true
	for i, item := range items {
		v, ok := SortValue(item, field)
		keys[i] = sortKey{item: item, value: v, present: ok}
		if ok {
			if _, isNum := numeric(v); !isNum {
				numericColumn = false
			}
		}
	}

	slices.SortStableFunc(keys, func(a, b sortKey) int {
		switch {
		case !a.present && !b.present:
			return 0
		case !a.present:
			if ascending {
				return 1
			}
			return -1
		case !b.present:
			if ascending {
				return -1
			}
			return 1
		}
		var c int
		if numericColumn {
			af, _ := numeric(a.value)
			bf, _ := numeric(b.value)
			c = cmp.Compare(af, bf)
		} else {
			c = compareValues(a.value, b.value)
		}
		if !ascending {
			c = -c
		}
		return c
	})

	for i, k := range keys {
		items[i] = k.item
	}
}

type sortKey struct {
	item    library.Item
	value   any
	present bool
}

// SortValue resolves the sort key of field for an item. Required fields are reachable
// through their source names; anything else comes from the fields bag.
// Empty required text and the Modified fallback count as missing.
func SortValue(item library.Item, field string) (any, bool) {
	switch field {
	case "FileLeafRef", "LinkFilename", "LinkFilenameNoMenu", "name", "Name":
		return presentString(item.Name)
	case "FileRef", "url", "URL":
		return presentString(item.URL)
	case "Modified", "modified":
		if !item.HasValidModified() {
			return nil, false
		}
		return item.Modified, true
	case "Editor", "modifiedBy", "ModifiedBy":
		return presentString(item.ModifiedBy)
	case "File_x0020_Size", "SMTotalFileStreamSize", "FileSizeDisplay", "size", "Size":
		return item.Size, true
	case "File_x0020_Type", "type", "Type":
		return presentString(item.Type)
	case "ID", "Id", "id":
		return item.ID, true
	}

	raw, ok := item.Fields.Get(field)
	if !ok {
		return nil, false
	}
	return flattenValue(raw)
}

func presentString(s string) (any, bool) {
	if s == "" {
		return nil, false
	}
	return s, true
}

// flattenValue reduces lookup and person shapes to their display title.
func flattenValue(v any) (any, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case string:
		if t == "" {
			return nil, false
		}
		return t, true
	case map[string]any:
		for _, k := range []string{"Title", "title", "lookupValue", "LookupValue"} {
			if s, ok := t[k].(string); ok && s != "" {
				return s, true
			}
		}
		return nil, false
	case []any:
		if len(t) == 0 {
			return nil, false
		}
		return flattenValue(t[0])
	default:
		return t, true
	}
}

// Kind ranks for mixed columns: times, then native numbers, then booleans, then text.
const (
	rankTime = iota
	rankNumber
	rankBool
	rankText
)

func rankOf(v any) int {
	switch v.(type) {
	case time.Time:
		return rankTime
	case int, int64, float64, json.Number:
		return rankNumber
	case bool:
		return rankBool
	default:
		return rankText
	}
}

// compareValues orders values of a column that is not entirely numeric. Values of different
// kinds compare by rank so the order stays transitive; text is never parsed as a number here.
func compareValues(a, b any) int {
	ra, rb := rankOf(a), rankOf(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}
	switch ra {
	case rankTime:
		return a.(time.Time).Compare(b.(time.Time))
	case rankNumber:
		af, _ := numeric(a)
		bf, _ := numeric(b)
		return cmp.Compare(af, bf)
	case rankBool:
		ab, bb := a.(bool), b.(bool)
		switch {
		case ab == bb:
			return 0
		case !ab:
			return -1
		default:
			return 1
		}
	}
	return strings.Compare(strings.ToLower(stringOf(a)), strings.ToLower(stringOf(b)))
}

// numeric handles native numbers plus strings that are entirely numeric (stream rows render numbers as text).
func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func stringOf(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
