package library

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Normalizer maps one raw record to one Item.
type Normalizer func(raw RawRecord) Item

// ForProfile returns the normalizer for records produced under profile.
// Unrecognized profiles fall back to the bulk shape.
func ForProfile(profile Profile) Normalizer {
	if profile == ProfileStream {
		return NormalizeStream
	}
	return NormalizeBulk
}

// timestampLayouts are tried in order when parsing Modified values.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"1/2/2006 3:04 PM",
	"1/2/2006 15:04",
	"1/2/2006",
	"2006-01-02",
}

// NormalizeBulk maps a REST items record (Editor expanded as a nested object).
func NormalizeBulk(raw RawRecord) Item {
	name := asString(raw["FileLeafRef"])
	return Item{
		ID:         firstInt(raw, "Id", "ID"),
		Name:       name,
		URL:        asString(raw["FileRef"]),
		Modified:   parseTimestamp(raw["Modified"]),
		ModifiedBy: nestedTitle(raw["Editor"]),
		Size:       firstInt64(raw, "File_x0020_Size"),
		Type:       ExtensionOf(name),
		Fields:     copyBag(raw),
	}
}

// NormalizeStream maps a RenderListDataAsStream row (Editor rendered as an array of
// person objects, numbers rendered as strings).
func NormalizeStream(raw RawRecord) Item {
	name := asString(raw["FileLeafRef"])
	return Item{
		ID:         firstInt(raw, "ID", "Id"),
		Name:       name,
		URL:        asString(raw["FileRef"]),
		Modified:   parseTimestamp(raw["Modified"]),
		ModifiedBy: personTitle(raw["Editor"]),
		Size:       firstInt64(raw, "SMTotalFileStreamSize", "File_x0020_Size"),
		Type:       ExtensionOf(name),
		Fields:     copyBag(raw),
	}
}

// ExtensionOf returns the substring after the last dot of name, case preserved.
// Names without an extension yield UnknownType.
func ExtensionOf(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 || idx == len(name)-1 {
		return UnknownType
	}
	return name[idx+1:]
}

func parseTimestamp(v any) time.Time {
	s := strings.TrimSpace(asString(v))
	if s == "" {
		return EpochSentinel
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return EpochSentinel
}

// nestedTitle resolves {"Title": "..."} expansions.
func nestedTitle(v any) string {
	m, ok := v.(map[string]any)
	if !ok {
		return ""
	}
	if t := asString(m["Title"]); t != "" {
		return t
	}
	return asString(m["title"])
}

// personTitle resolves [{"title": "..."}] person arrays, falling back to a nested object.
func personTitle(v any) string {
	switch p := v.(type) {
	case []any:
		if len(p) == 0 {
			return ""
		}
		return nestedTitle(p[0])
	case []map[string]any:
		if len(p) == 0 {
			return ""
		}
		return nestedTitle(p[0])
	default:
		return nestedTitle(v)
	}
}

func firstInt(raw RawRecord, keys ...string) int {
	return int(firstInt64(raw, keys...))
}

func firstInt64(raw RawRecord, keys ...string) int64 {
	for _, k := range keys {
		if n, ok := asInt64(raw[k]); ok {
			return n
		}
	}
	return 0
}

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		if f, err := n.Float64(); err == nil {
			return int64(f), true
		}
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(n), ",", "")
		if s == "" {
			return 0, false
		}
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int64(f), true
		}
	}
	return 0, false
}

// RecordID extracts the numeric item id of a raw record, checking both key spellings.
func RecordID(raw RawRecord) (int64, bool) {
	for _, k := range []string{"Id", "ID"} {
		if n, ok := asInt64(raw[k]); ok {
			return n, true
		}
	}
	return 0, false
}

// ParseTimestamp parses a Modified-style value with the same layouts the normalizers use.
// The bool is false when v is missing or unparseable.
func ParseTimestamp(v any) (time.Time, bool) {
	t := parseTimestamp(v)
	return t, !t.Equal(EpochSentinel)
}
