package visual

import (
	"image"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// CLAHEOptions configures contrast-limited adaptive histogram equalization.
type CLAHEOptions struct {
	TilesX int
	TilesY int
	// ClipLimit is relative to a uniform histogram: a bin may hold at most
	// ClipLimit times the tile's average bin count. Zero disables clipping.
	ClipLimit float64
}

// DefaultCLAHEOptions returns an 8x8 grid with a clip limit of 10.
func DefaultCLAHEOptions() CLAHEOptions {
	return CLAHEOptions{TilesX: 8, TilesY: 8, ClipLimit: 10}
}

// CLAHE equalizes the lightness of img. Pixels are converted to CIE L*a*b*,
// L* is equalized tile by tile and the colour is converted back, so hue
// and chroma are kept.
func CLAHE(img image.Image, opts CLAHEOptions) *image.RGBA {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return out
	}

	lightness := make([]uint8, w*h)
	as := make([]float64, w*h)
	bs := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c, _ := colorful.MakeColor(img.At(bounds.Min.X+x, bounds.Min.Y+y))
			l, a, b := c.Lab()
			i := y*w + x
			lightness[i] = uint8(math.Round(clampUnit(l) * 255))
			as[i], bs[i] = a, b
		}
	}

	equalized := EqualizeChannel(lightness, w, h, opts)

	for i, l := range equalized {
		r, g, b := colorful.Lab(float64(l)/255, as[i], bs[i]).Clamped().RGB255()
		out.Pix[i*4], out.Pix[i*4+1], out.Pix[i*4+2], out.Pix[i*4+3] = r, g, b, 255
	}
	return out
}

// EqualizeChannel applies CLAHE to a single 8-bit plane of size w*h and
// returns a new plane.
func EqualizeChannel(pix []uint8, w, h int, opts CLAHEOptions) []uint8 {
	out := make([]uint8, len(pix))
	if w <= 0 || h <= 0 || len(pix) != w*h {
		copy(out, pix)
		return out
	}

	tilesX := clampInt(opts.TilesX, 1, w)
	tilesY := clampInt(opts.TilesY, 1, h)

	luts := make([][256]uint8, tilesX*tilesY)
	for ty := 0; ty < tilesY; ty++ {
		y0, y1 := ty*h/tilesY, (ty+1)*h/tilesY
		for tx := 0; tx < tilesX; tx++ {
			x0, x1 := tx*w/tilesX, (tx+1)*w/tilesX
			luts[ty*tilesX+tx] = tileLUT(pix, w, x0, x1, y0, y1, opts.ClipLimit)
		}
	}

	tileW := float64(w) / float64(tilesX)
	tileH := float64(h) / float64(tilesY)
	for y := 0; y < h; y++ {
		fy := (float64(y)+0.5)/tileH - 0.5
		ty1 := int(math.Floor(fy))
		ya := fy - float64(ty1)
		ty2 := ty1 + 1
		ty1, ty2 = clampInt(ty1, 0, tilesY-1), clampInt(ty2, 0, tilesY-1)

		for x := 0; x < w; x++ {
			fx := (float64(x)+0.5)/tileW - 0.5
			tx1 := int(math.Floor(fx))
			xa := fx - float64(tx1)
			tx2 := tx1 + 1
			tx1, tx2 = clampInt(tx1, 0, tilesX-1), clampInt(tx2, 0, tilesX-1)

			v := pix[y*w+x]
			top := float64(luts[ty1*tilesX+tx1][v])*(1-xa) + float64(luts[ty1*tilesX+tx2][v])*xa
			bottom := float64(luts[ty2*tilesX+tx1][v])*(1-xa) + float64(luts[ty2*tilesX+tx2][v])*xa
			out[y*w+x] = uint8(math.Round(top*(1-ya) + bottom*ya))
		}
	}
	return out
}

// tileLUT builds the clipped, equalized mapping of one tile.
func tileLUT(pix []uint8, stride, x0, x1, y0, y1 int, clipLimit float64) [256]uint8 {
	var hist [256]int
	for y := y0; y < y1; y++ {
		for _, v := range pix[y*stride+x0 : y*stride+x1] {
			hist[v]++
		}
	}
	area := (x1 - x0) * (y1 - y0)

	if clipLimit > 0 {
		limit := int(clipLimit * float64(area) / 256)
		if limit < 1 {
			limit = 1
		}
		excess := 0
		for i, n := range hist {
			if n > limit {
				excess += n - limit
				hist[i] = limit
			}
		}
		batch, residual := excess/256, excess%256
		for i := range hist {
			hist[i] += batch
		}
		if residual > 0 {
			step := 256 / residual
			if step < 1 {
				step = 1
			}
			for i := 0; i < 256 && residual > 0; i += step {
				hist[i]++
				residual--
			}
		}
	}

	var lut [256]uint8
	scale := 255 / float64(area)
	sum := 0
	for i, n := range hist {
		sum += n
		lut[i] = uint8(math.Min(math.Round(float64(sum)*scale), 255))
	}
	return lut
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampUnit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
