package rgbvi

import "image"

// Kind tells how a formula maps its raw index onto [0, 1].
type Kind int

const (
	// KindFixed rescales with the formula's theoretical bounds; every output
	// pixel depends only on the matching input pixel.
	KindFixed Kind = iota
	// KindAdaptive uses statistics of the whole index image (percentiles,
	// min/max), so outputs depend on every pixel.
	KindAdaptive
)

func (k Kind) String() string {
	switch k {
	case KindFixed:
		return "fixed"
	case KindAdaptive:
		return "adaptive"
	default:
		return "unknown"
	}
}

// Func computes one index.
type Func func(img *Image, opts ...Option) (*Result, error)

// Formula describes a registered index.
type Formula struct {
	Name     string
	Title    string
	Citation string
	Kind     Kind
	// Lower and Upper are the theoretical raw range used by KindFixed formulas.
	Lower float64
	Upper float64
	// Ratio marks formulas that stabilize a denominator.
	Ratio bool
	// Discrepancy documents behaviour kept for compatibility that differs
	// from the other formulas.
	Discrepancy string
	Func        Func

	quantizeRaw bool
}

// Result holds the three planes produced by a formula, each Height*Width long.
type Result struct {
	Formula    string
	Height     int
	Width      int
	Raw        []float64
	Normalized []float64
	Quantized  []uint8
	// Degenerate counts pixels whose denominator was clipped or epsilon-stabilized.
	Degenerate int
}

func newResult(name string, img *Image) *Result {
	n := img.Len()
	return &Result{
		Formula:    name,
		Height:     img.Height,
		Width:      img.Width,
		Raw:        make([]float64, n),
		Normalized: make([]float64, n),
		Quantized:  make([]uint8, n),
	}
}

// Gray returns the quantized plane as a grayscale image. The pixels are copied.
func (r *Result) Gray() *image.Gray {
	g := image.NewGray(image.Rect(0, 0, r.Width, r.Height))
	copy(g.Pix, r.Quantized)
	return g
}

// pixelFunc computes the raw index of one pixel and reports whether the
// denominator had to be stabilized.
type pixelFunc func(b, g, r float64) (raw float64, degenerate bool)

// fixed evaluates a KindFixed formula pixel by pixel.
func (f Formula) fixed(img *Image, opts []Option, px pixelFunc) (*Result, error) {
	if err := img.validate(); err != nil {
		return nil, err
	}
	s := newSettings(opts)
	b, g, r := img.Channels()
	res := newResult(f.Name, img)

	res.Degenerate = forStrips(img.Height, img.Width, s, func(start, end int) int {
		count := 0
		for i := start; i < end; i++ {
			raw, degenerate := px(b[i], g[i], r[i])
			if degenerate {
				count++
			}
			n := rescale(raw, f.Lower, f.Upper)
			res.Raw[i] = raw
			res.Normalized[i] = n
			if f.quantizeRaw {
				res.Quantized[i] = saturate(raw * 255)
			} else {
				res.Quantized[i] = saturate(n * 255)
			}
		}
		return count
	})

	s.reportDegenerate(f.Name, res.Degenerate, img.Len())
	return res, nil
}
