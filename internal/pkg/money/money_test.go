package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"no rounding needed", 1460.23, 1460.23},
		{"round down", 1460.234, 1460.23},
		{"round half up", 1460.235, 1460.24},
		{"round up", 1460.236, 1460.24},
		{"whole number", 50000, 50000},
		{"zero", 0, 0},
		{"sub-cent", 0.004, 0},
		{"sub-cent up", 0.005, 0.01},
		{"negative half", -2.345, -2.35},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Round2(tt.in))
		})
	}
}

func TestFloorZero(t *testing.T) {
	assert.Equal(t, 0.0, FloorZero(-12.50))
	assert.Equal(t, 0.0, FloorZero(0))
	assert.Equal(t, 99.99, FloorZero(99.99))
}
