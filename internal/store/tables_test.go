package store

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmbeddedNumber(t *testing.T) {
	tests := []struct {
		name string
		want int
		ok   bool
	}{
		{"Table 1", 1, true},
		{"Table 10", 10, true},
		{"Masa 3", 3, true},
		{"T12 window", 12, true},
		{"Terrace", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := embeddedNumber(tt.name)
		assert.Equal(t, tt.ok, ok, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}
}

func TestDisplayOrder(t *testing.T) {
	names := []string{"Terrace", "Table 10", "Bar", "Table 2", "Table 1"}

	sort.SliceStable(names, func(i, j int) bool {
		return displayBefore(names[i], names[j])
	})

	// Numbered tables sort numerically, the rest alphabetically after them.
	assert.Equal(t, []string{"Table 1", "Table 2", "Table 10", "Bar", "Terrace"}, names)
}

func TestDisplayOrder_TiesBreakByName(t *testing.T) {
	assert.True(t, displayBefore("Garden 5", "Patio 5"))
	assert.False(t, displayBefore("Patio 5", "Garden 5"))
}
