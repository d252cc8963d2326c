package rgbvi

import (
	"math"
	"sort"
)

// clip bounds v to [lo, hi].
func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clip32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// rescale maps v from [lower, upper] onto [0, 1]. Floating-point overshoot
// at the theoretical extremes is clamped away.
func rescale(v, lower, upper float64) float64 {
	return clip((v-lower)/(upper-lower), 0, 1)
}

// saturate truncates v toward zero and saturates it to [0, 255]. NaN maps to 0.
func saturate(v float64) uint8 {
	switch {
	case math.IsNaN(v), v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}

func saturate32(v float32) uint8 {
	return saturate(float64(v))
}

// Percentile returns the p-th percentile (0..100) of values using linear
// interpolation between the closest ranks. values is not modified.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return percentileSorted(sorted, p)
}

func percentileSorted(sorted []float64, p float64) float64 {
	n := len(sorted)
	virtual := float64(n-1) * (p / 100)
	lower := math.Floor(virtual)
	i := int(lower)
	if i < 0 {
		return sorted[0]
	}
	if i >= n-1 {
		return sorted[n-1]
	}
	return lerp(sorted[i], sorted[i+1], virtual-lower)
}

// lerp interpolates from whichever end is closer, which keeps the result
// monotonic in t and exact at both ends.
func lerp(a, b, t float64) float64 {
	diff := b - a
	if t >= 0.5 {
		return b - float64(diff*(1-t))
	}
	return a + float64(diff*t)
}
