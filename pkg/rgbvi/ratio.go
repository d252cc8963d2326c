package rgbvi

import "math"

// Ratio indices. Every denominator is kept away from zero, either by a hard
// clip or by an additive epsilon; the bounds are part of each index's
// definition and must not change.

const citationPerez2000 = `A.J. Pérez, F. López, J.V. Benlloch, S. Christensen, ` +
	`"Colour and shape analysis techniques for weed detection in cereal fields," ` +
	`Computers and Electronics in Agriculture, 25(3), 2000, 197-212. doi:10.1016/S0168-1699(99)00068-X`

const (
	ngbdiEpsilon = 0.000001
	variEpsilon  = float32(0.00001)
)

var (
	normalizedDifference = Formula{
		Name: "ndi", Title: "Normalized difference index", Citation: citationPerez2000,
		Kind: KindFixed, Lower: -1, Upper: 1, Ratio: true,
	}
	normalizedGreenRed = Formula{
		Name: "ngrdi", Title: "Normalized green red difference index",
		Kind: KindFixed, Lower: -1, Upper: 1, Ratio: true,
	}
	woebbecke = Formula{
		Name: "woebbecke_index", Title: "Woebbecke index", Citation: citationWoebbecke1994,
		Kind: KindFixed, Lower: -255, Upper: 255, Ratio: true,
		Discrepancy: "quantized plane is built from the raw index, not the normalized one",
		quantizeRaw: true,
	}
	modifiedGreenRed = Formula{
		Name: "mgrvi", Title: "Modified green red vegetation index",
		Kind: KindFixed, Lower: -1, Upper: 1, Ratio: true,
	}
	greenLeaf = Formula{
		Name: "gli", Title: "Green leaf index",
		Kind: KindFixed, Lower: -1, Upper: 1, Ratio: true,
	}
	redGreenBlue = Formula{
		Name: "rgbvi", Title: "Red green blue vegetation index",
		Kind: KindFixed, Lower: -1, Upper: 1, Ratio: true,
	}
	normalizedGreenBlue = Formula{
		Name: "ngbdi", Title: "Normalized green blue difference index",
		Kind: KindFixed, Lower: -1, Upper: 1, Ratio: true,
	}
	visibleAtmosphericallyResistant = Formula{
		Name: "vari", Title: "Visible atmospherically resistant index",
		Kind: KindFixed, Lower: -1, Upper: 1, Ratio: true,
	}
	kawashima = Formula{
		Name: "kawashima", Title: "Kawashima index",
		Kind: KindFixed, Lower: -1, Upper: 1, Ratio: true,
	}
)

// NDI computes (G-R)/clip(G+R, 1, 510).
func NDI(img *Image, opts ...Option) (*Result, error) {
	return normalizedDifference.fixed(img, opts, greenRedDifference)
}

// NGRDI is NDI registered under its other common name.
func NGRDI(img *Image, opts ...Option) (*Result, error) {
	return normalizedGreenRed.fixed(img, opts, greenRedDifference)
}

// WoebbeckeIndex computes (G-B)/clip(|R-G|, 1, 255). The index is very noisy.
// Its quantized plane truncates raw*255 (saturated to [0, 255]) instead of
// normalized*255; see Formula.Discrepancy.
func WoebbeckeIndex(img *Image, opts ...Option) (*Result, error) {
	return woebbecke.fixed(img, opts, func(b, g, r float64) (float64, bool) {
		d := math.Abs(r - g)
		return (g - b) / clip(d, 1, 255), d < 1 || d > 255
	})
}

// MGRVI computes (G²-R²)/clip(G²+R², 1, 130050).
func MGRVI(img *Image, opts ...Option) (*Result, error) {
	return modifiedGreenRed.fixed(img, opts, func(b, g, r float64) (float64, bool) {
		gg, rr := float64(g*g), float64(r*r)
		d := gg + rr
		return (gg - rr) / clip(d, 1, 130050), d < 1 || d > 130050
	})
}

// GLI computes (2G-R-B)/clip(2G+R+B, 1, 1020).
func GLI(img *Image, opts ...Option) (*Result, error) {
	return greenLeaf.fixed(img, opts, func(b, g, r float64) (float64, bool) {
		d := 2*g + r + b
		return (2*g - r - b) / clip(d, 1, 1020), d < 1 || d > 1020
	})
}

// RGBVI computes (G²-BR)/clip(G²+BR, 1, 130050).
func RGBVI(img *Image, opts ...Option) (*Result, error) {
	return redGreenBlue.fixed(img, opts, func(b, g, r float64) (float64, bool) {
		gg, br := float64(g*g), float64(b*r)
		d := gg + br
		return (gg - br) / clip(d, 1, 130050), d < 1 || d > 130050
	})
}

// NGBDI computes (G-B)/(G+B+1e-6), clipped to [-1, 1].
func NGBDI(img *Image, opts ...Option) (*Result, error) {
	return normalizedGreenBlue.fixed(img, opts, func(b, g, r float64) (float64, bool) {
		s := g + b
		return clip((g-b)/(s+ngbdiEpsilon), -1, 1), s == 0
	})
}

// Kawashima computes (R-B)/clip(R+B, 1, 510).
func Kawashima(img *Image, opts ...Option) (*Result, error) {
	return kawashima.fixed(img, opts, func(b, g, r float64) (float64, bool) {
		d := r + b
		return (r - b) / clip(d, 1, 510), d < 1 || d > 510
	})
}

// VARI computes (G-R)/(G+R-B+1e-5), clipped to [-1, 1]. All arithmetic,
// including normalization and quantization, runs in float32.
func VARI(img *Image, opts ...Option) (*Result, error) {
	if err := img.validate(); err != nil {
		return nil, err
	}
	f := visibleAtmosphericallyResistant
	s := newSettings(opts)
	b, g, r := img.channels32()
	res := newResult(f.Name, img)

	res.Degenerate = forStrips(img.Height, img.Width, s, func(start, end int) int {
		count := 0
		for i := start; i < end; i++ {
			d := g[i] + r[i] - b[i]
			if d == 0 {
				count++
			}
			index := clip32((g[i]-r[i])/(d+variEpsilon), -1, 1)
			n := (index + 1) / 2
			res.Raw[i] = float64(index)
			res.Normalized[i] = float64(n)
			res.Quantized[i] = saturate32(float32(n * 255))
		}
		return count
	})

	s.reportDegenerate(f.Name, res.Degenerate, img.Len())
	return res, nil
}

func greenRedDifference(b, g, r float64) (float64, bool) {
	d := g + r
	return (g - r) / clip(d, 1, 510), d < 1 || d > 510
}
