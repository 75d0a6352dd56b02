package library

import "strings"

// referenceKeys are the display keys of person and lookup values across both record shapes.
var referenceKeys = []string{"title", "Title", "lookupValue", "LookupValue"}

// ReferenceTitles returns the display text of a person or lookup value.
// It accepts stream arrays ([{"title": ...}] or [{"lookupValue": ...}]), bulk expansions
// ({"Title": ...}), verbose multi-value envelopes ({"results": [...]}) and bare strings.
func ReferenceTitles(v any) []string {
	var titles []string
	collectTitles(v, &titles)
	return titles
}

func collectTitles(v any, out *[]string) {
	switch ref := v.(type) {
	case nil:
	case string:
		if s := strings.TrimSpace(ref); s != "" {
			*out = append(*out, s)
		}
	case []any:
		for _, el := range ref {
			collectTitles(el, out)
		}
	case []map[string]any:
		for _, el := range ref {
			collectTitles(el, out)
		}
	case map[string]any:
		if results, ok := ref["results"]; ok {
			collectTitles(results, out)
			return
		}
		for _, k := range referenceKeys {
			if s := asString(ref[k]); s != "" {
				*out = append(*out, s)
				return
			}
		}
	}
}
