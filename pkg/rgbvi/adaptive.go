package rgbvi

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Adaptive indices derive part of their scaling from the index image itself,
// so a pixel's output depends on every other pixel.

const (
	rgriUpperPercentile = 99

	vegLowerPercentile = 1
	vegUpperPercentile = 90
	vegRedExponent     = 0.667
	vegBlueExponent    = 0.333
)

var (
	redGreenRatio = Formula{
		Name: "rgri", Title: "Red green ratio index",
		Kind: KindAdaptive, Lower: 0, Upper: 255, Ratio: true,
	}
	vegetative = Formula{
		Name: "veg", Title: "Vegetative index",
		Kind: KindAdaptive, Ratio: true,
		Discrepancy: "clips to the asymmetric 1st/90th percentile pair and quantizes the clipped raw index",
	}
)

// RGRI computes R/clip(G, 1, 255). The normalized plane is raw/255; the
// quantized plane is additionally clipped at its own 99th percentile.
func RGRI(img *Image, opts ...Option) (*Result, error) {
	if err := img.validate(); err != nil {
		return nil, err
	}
	f := redGreenRatio
	s := newSettings(opts)
	_, g, r := img.Channels()
	res := newResult(f.Name, img)
	levels := make([]float64, img.Len())

	res.Degenerate = forStrips(img.Height, img.Width, s, func(start, end int) int {
		count := 0
		for i := start; i < end; i++ {
			if g[i] < 1 {
				count++
			}
			raw := r[i] / clip(g[i], 1, 255)
			n := clip(raw/f.Upper, 0, 1)
			res.Raw[i] = raw
			res.Normalized[i] = n
			levels[i] = float64(saturate(n * 255))
		}
		return count
	})

	ceiling := Percentile(levels, rgriUpperPercentile)
	for i, level := range levels {
		res.Quantized[i] = saturate(math.Min(level, ceiling))
	}

	s.reportDegenerate(f.Name, res.Degenerate, img.Len())
	return res, nil
}

// Veg computes G/clip(R^0.667 * B^0.333, 0.1, 255). NaN values are replaced
// with 0, the index is clipped to its 1st..90th percentile range and then
// min-max rescaled. The quantized plane truncates the clipped index itself,
// saturated to [0, 255].
func Veg(img *Image, opts ...Option) (*Result, error) {
	if err := img.validate(); err != nil {
		return nil, err
	}
	f := vegetative
	s := newSettings(opts)
	b, g, r := img.Channels()
	res := newResult(f.Name, img)

	res.Degenerate = forStrips(img.Height, img.Width, s, func(start, end int) int {
		count := 0
		for i := start; i < end; i++ {
			d := float64(math.Pow(r[i], vegRedExponent) * math.Pow(b[i], vegBlueExponent))
			if d < 0.1 {
				count++
			}
			res.Raw[i] = g[i] / clip(d, 0.1, 255)
		}
		return count
	})

	nans := 0
	for i, v := range res.Raw {
		if math.IsNaN(v) {
			res.Raw[i] = 0
			nans++
		}
	}
	s.reportNaN(f.Name, nans, img.Len())

	lo := Percentile(res.Raw, vegLowerPercentile)
	hi := Percentile(res.Raw, vegUpperPercentile)
	clipped := make([]float64, len(res.Raw))
	for i, v := range res.Raw {
		clipped[i] = clip(v, lo, hi)
	}

	low, high := floats.Min(clipped), floats.Max(clipped)
	for i, v := range clipped {
		if high > low {
			res.Normalized[i] = clip((v-low)/(high-low), 0, 1)
		}
		res.Quantized[i] = saturate(v)
	}

	s.reportDegenerate(f.Name, res.Degenerate, img.Len())
	return res, nil
}
