package rgbvi

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		p      float64
		want   float64
	}{
		{"upper tail", []float64{4, 1, 3, 2}, 99, 3.97},
		{"ninetieth", []float64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}, 90, 9.1},
		{"first", []float64{0, 10}, 1, 0.1},
		{"minimum", []float64{5, -2, 7}, 0, -2},
		{"maximum", []float64{5, -2, 7}, 100, 7},
		{"median even", []float64{1, 2, 3, 4}, 50, 2.5},
		{"single value", []float64{42}, 73, 42},
		{"constant", []float64{3, 3, 3, 3}, 37, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Percentile(tt.values, tt.p), 1e-12)
		})
	}
}

func TestPercentile_DoesNotSortInput(t *testing.T) {
	values := []float64{3, 1, 2}
	Percentile(values, 50)
	assert.Equal(t, []float64{3, 1, 2}, values)
}

func TestPercentile_Empty(t *testing.T) {
	assert.True(t, math.IsNaN(Percentile(nil, 50)))
}

func TestSaturate(t *testing.T) {
	tests := []struct {
		in   float64
		want uint8
	}{
		{0, 0},
		{-0.5, 0},
		{-300, 0},
		{0.999, 0},
		{127.5, 127},
		{254.999, 254},
		{255, 255},
		{1e9, 255},
		{math.Inf(1), 255},
		{math.Inf(-1), 0},
		{math.NaN(), 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, saturate(tt.in), "saturate(%v)", tt.in)
	}
}

func TestRescale_ClampsOvershoot(t *testing.T) {
	assert.Equal(t, 0.0, rescale(-1.0000001, -1, 1))
	assert.Equal(t, 1.0, rescale(1.0000001, -1, 1))
	assert.Equal(t, 0.5, rescale(0, -1, 1))
}
