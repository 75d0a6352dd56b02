package library

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReferenceTitles(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []string
	}{
		{"nil", nil, nil},
		{"stream person array", []any{map[string]any{"id": "7", "title": "Ana Lima"}, map[string]any{"title": "Ben Ode"}}, []string{"Ana Lima", "Ben Ode"}},
		{"stream lookup array", []any{map[string]any{"lookupId": 3, "lookupValue": "Finance"}}, []string{"Finance"}},
		{"bulk expansion", map[string]any{"Title": "Ana Lima"}, []string{"Ana Lima"}},
		{"verbose multi", map[string]any{"results": []any{map[string]any{"Title": "A"}, map[string]any{"Title": "B"}}}, []string{"A", "B"}},
		{"bare string", " Legal ", []string{"Legal"}},
		{"empty array", []any{}, nil},
		{"object without title", map[string]any{"Id": 4}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReferenceTitles(tt.in))
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	ts, ok := ParseTimestamp("2024-03-05T10:30:00Z")
	assert.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC), ts)

	ts, ok = ParseTimestamp("3/5/2024 10:30 AM")
	assert.True(t, ok)
	assert.Equal(t, 10, ts.Hour())

	_, ok = ParseTimestamp("yesterday")
	assert.False(t, ok)
	_, ok = ParseTimestamp(nil)
	assert.False(t, ok)
}
