package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoolToDouble(t *testing.T) {
	assert.Equal(t, 1.0, boolToDouble(true))
	assert.Equal(t, 0.0, boolToDouble(false))
}

func TestDoubleToBool(t *testing.T) {
	tests := []struct {
		in   float64
		want bool
	}{
		{0, false},
		{math.Copysign(0, -1), false},
		{1, true},
		{-1, true},
		{0.5, true},
		{math.NaN(), true},
		{math.Inf(1), true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, doubleToBool(tt.in), "in=%v", tt.in)
	}
}

func TestVarHashToID(t *testing.T) {
	tests := []struct {
		in   float64
		want int32
	}{
		{0, 0},
		{5, 5},
		{5.9, 5},
		{-5.9, -5},
		{100017, 100017},
		{math.MaxInt32, math.MaxInt32},
		{math.MinInt32, math.MinInt32},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, varHashToID(tt.in), "in=%v", tt.in)
	}
}
