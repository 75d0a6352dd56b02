package library

import "strings"

// FieldType is the declared type of a list column.
type FieldType string

const (
	FieldTypeText        FieldType = "text"
	FieldTypeNote        FieldType = "note"
	FieldTypeNumber      FieldType = "number"
	FieldTypeInteger     FieldType = "integer"
	FieldTypeDateTime    FieldType = "datetime"
	FieldTypeUser        FieldType = "user"
	FieldTypeUserMulti   FieldType = "user_multi"
	FieldTypeLookup      FieldType = "lookup"
	FieldTypeLookupMulti FieldType = "lookup_multi"
	FieldTypeUnknown     FieldType = "unknown"
)

// ParseFieldType maps a SharePoint TypeAsString value to a FieldType.
func ParseFieldType(typeAsString string) FieldType {
	switch strings.TrimSpace(typeAsString) {
	case "Text":
		return FieldTypeText
	case "Note":
		return FieldTypeNote
	case "Number", "Currency":
		return FieldTypeNumber
	case "Integer", "Counter":
		return FieldTypeInteger
	case "DateTime":
		return FieldTypeDateTime
	case "User":
		return FieldTypeUser
	case "UserMulti":
		return FieldTypeUserMulti
	case "Lookup":
		return FieldTypeLookup
	case "LookupMulti":
		return FieldTypeLookupMulti
	default:
		return FieldTypeUnknown
	}
}

// FieldDescriptor describes one column of a list as reported by the field metadata query.
type FieldDescriptor struct {
	InternalName string    `json:"internal_name" yaml:"internal_name"`
	Title        string    `json:"title" yaml:"title"`
	Type         FieldType `json:"type" yaml:"type"`
	RawType      string    `json:"raw_type" yaml:"raw_type"`
	Hidden       bool      `json:"hidden" yaml:"hidden"`
	ReadOnly     bool      `json:"read_only" yaml:"read_only"`
}

// IsMulti reports whether the field holds a collection of references.
func (f FieldDescriptor) IsMulti() bool {
	return f.Type == FieldTypeUserMulti || f.Type == FieldTypeLookupMulti
}

// VisibleFields drops hidden fields while keeping order.
func VisibleFields(fields []FieldDescriptor) []FieldDescriptor {
	visible := make([]FieldDescriptor, 0, len(fields))
	for _, f := range fields {
		if !f.Hidden {
			visible = append(visible, f)
		}
	}
	return visible
}

// FieldNames returns the internal names of fields in order.
func FieldNames(fields []FieldDescriptor) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.InternalName
	}
	return names
}
