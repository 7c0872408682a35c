package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPurity(t *testing.T) {
	tests := []struct {
		category string
		marking  string
		expected float64
	}{
		{"gold", "14k", 0.585},
		{"gold", "14K", 0.585},
		{"gold", "18kt", 0.750},
		{"gold", "24", 0.999},
		{"gold", "12k", 0},
		{"gold", "", 0},
		{"silver", "sterling", 0.925},
		{"silver", "925", 0.925},
		{"silver", "800", 0.800},
		{"silver", "junk", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, Purity(tt.category, tt.marking), "%s/%s", tt.category, tt.marking)
	}
}

func TestMelt(t *testing.T) {
	assert.InDelta(t, 1125.59, Melt(12, 0.585, 160.34), 0.01)
	assert.Zero(t, Melt(0, 0.585, 160.34))
	assert.Zero(t, Melt(12, 0, 160.34))
	assert.Zero(t, Melt(12, 0.585, 0))
}

func TestWeightSane(t *testing.T) {
	assert.True(t, WeightSane(0, "gold ring", "gold"), "unknown weight is not the weight check's problem")
	assert.True(t, WeightSane(25, "14k gold ring", "gold"))
	assert.False(t, WeightSane(50, "14k gold ring", "gold"), "50g gold ring is implausible")
	assert.True(t, WeightSane(400, "sterling flatware set", "silver"))
	assert.False(t, WeightSane(900, "sterling flatware set", "silver"))
	assert.True(t, WeightSane(150, "misc gold jewelry", "gold"), "unknown item type gets loose bound")
	assert.False(t, WeightSane(250, "misc gold jewelry", "gold"))
}
