package library

import (
	"fmt"
	"time"
)

// RawRecord is one record exactly as the remote service returned it.
type RawRecord map[string]any

// Profile identifies the raw shape a Page Source produces.
type Profile string

const (
	// ProfileBulk is the REST items shape (nested expansion objects).
	ProfileBulk Profile = "bulk"
	// ProfileStream is the RenderListDataAsStream row shape (flattened, rendered strings).
	ProfileStream Profile = "stream"
)

// UnknownType is the Item.Type used when the name carries no extension.
const UnknownType = "unknown"

// EpochSentinel is the Modified value used when the source timestamp is missing or unparseable.
var EpochSentinel = time.Unix(0, 0).UTC()

// Item is a normalized document library entry.
// Required fields are always populated; everything the source returned is kept in Fields.
type Item struct {
	ID         int       `json:"id" yaml:"id"`
	Name       string    `json:"name" yaml:"name"`
	URL        string    `json:"url" yaml:"url"`
	Modified   time.Time `json:"modified" yaml:"modified"`
	ModifiedBy string    `json:"modified_by" yaml:"modified_by"`
	Size       int64     `json:"size" yaml:"size"`
	Type       string    `json:"type" yaml:"type"`
	Fields     FieldBag  `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// HasValidModified reports whether Modified came from the source rather than the sentinel.
func (i Item) HasValidModified() bool {
	return !i.Modified.Equal(EpochSentinel)
}

// FieldBag holds every raw field of a record keyed by its source name.
type FieldBag map[string]any

// Get returns the raw value stored under name.
func (b FieldBag) Get(name string) (any, bool) {
	v, ok := b[name]
	return v, ok
}

// String returns the value under name rendered as a string, or "" when absent or nil.
func (b FieldBag) String(name string) string {
	v, ok := b[name]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Has reports whether the bag carries name, even with a nil value.
func (b FieldBag) Has(name string) bool {
	_, ok := b[name]
	return ok
}

func copyBag(raw RawRecord) FieldBag {
	bag := make(FieldBag, len(raw))
	for k, v := range raw {
		bag[k] = v
	}
	return bag
}
