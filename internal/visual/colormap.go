package visual

import (
	"fmt"
	"image"
	"image/color"
	"sort"
	"sync"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Built-in colormap names.
const (
	Gray       = "gray"
	Vegetation = "vegetation"
	Viridis    = "viridis"
)

// Stop anchors a colour at a position in [0, 1].
type Stop struct {
	Pos   float64
	Color colorful.Color
}

type blendSpace int

const (
	blendLab blendSpace = iota
	blendRGB
)

// Colormap maps 8-bit levels to colours. The 256-entry table is built on
// first use and is safe for concurrent reads.
type Colormap struct {
	name  string
	stops []Stop
	space blendSpace

	once sync.Once
	lut  [256]color.RGBA
}

// NewColormap builds a colormap that interpolates between stops in CIE L*a*b*.
// Stops must start at 0, end at 1 and be strictly increasing.
func NewColormap(name string, stops ...Stop) (*Colormap, error) {
	if len(stops) < 2 {
		return nil, fmt.Errorf("colormap %q needs at least two stops", name)
	}
	if stops[0].Pos != 0 || stops[len(stops)-1].Pos != 1 {
		return nil, fmt.Errorf("colormap %q must span [0, 1]", name)
	}
	for i := 1; i < len(stops); i++ {
		if stops[i].Pos <= stops[i-1].Pos {
			return nil, fmt.Errorf("colormap %q: stop %d is not increasing", name, i)
		}
	}
	return &Colormap{name: name, stops: append([]Stop(nil), stops...)}, nil
}

// ColormapByName returns a new instance of a built-in colormap.
func ColormapByName(name string) (*Colormap, error) {
	switch name {
	case Gray:
		cm, err := NewColormap(Gray, Stop{0, rgb(0, 0, 0)}, Stop{1, rgb(255, 255, 255)})
		if err != nil {
			return nil, err
		}
		cm.space = blendRGB
		return cm, nil
	case Vegetation:
		return NewColormap(Vegetation,
			Stop{0, rgb(0x8c, 0x51, 0x0a)},
			Stop{0.25, rgb(0xdf, 0xc2, 0x7d)},
			Stop{0.45, rgb(0xf6, 0xe8, 0xc3)},
			Stop{0.65, rgb(0xa6, 0xd9, 0x6a)},
			Stop{0.85, rgb(0x1a, 0x98, 0x50)},
			Stop{1, rgb(0x00, 0x68, 0x37)},
		)
	case Viridis:
		return NewColormap(Viridis,
			Stop{0, rgb(0x44, 0x01, 0x54)},
			Stop{0.125, rgb(0x48, 0x28, 0x78)},
			Stop{0.25, rgb(0x3e, 0x49, 0x89)},
			Stop{0.375, rgb(0x31, 0x68, 0x8e)},
			Stop{0.5, rgb(0x26, 0x82, 0x8e)},
			Stop{0.625, rgb(0x1f, 0x9e, 0x89)},
			Stop{0.75, rgb(0x35, 0xb7, 0x79)},
			Stop{0.875, rgb(0x6e, 0xce, 0x58)},
			Stop{1, rgb(0xfd, 0xe7, 0x25)},
		)
	default:
		return nil, fmt.Errorf("unknown colormap %q", name)
	}
}

// ColormapNames lists the built-in colormaps.
func ColormapNames() []string {
	names := []string{Gray, Vegetation, Viridis}
	sort.Strings(names)
	return names
}

func (c *Colormap) Name() string {
	return c.name
}

// At returns the colour for level v.
func (c *Colormap) At(v uint8) color.RGBA {
	c.once.Do(c.build)
	return c.lut[v]
}

func (c *Colormap) build() {
	seg := 0
	for i := range c.lut {
		t := float64(i) / 255
		for seg < len(c.stops)-2 && t > c.stops[seg+1].Pos {
			seg++
		}
		a, b := c.stops[seg], c.stops[seg+1]
		local := (t - a.Pos) / (b.Pos - a.Pos)

		var mixed colorful.Color
		if c.space == blendRGB {
			mixed = a.Color.BlendRgb(b.Color, local)
		} else {
			mixed = a.Color.BlendLab(b.Color, local)
		}
		r, g, bl := mixed.Clamped().RGB255()
		c.lut[i] = color.RGBA{R: r, G: g, B: bl, A: 255}
	}
}

// Colorize maps every level of g through cm.
func Colorize(g *image.Gray, cm *Colormap) *image.RGBA {
	bounds := g.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		src := g.Pix[g.PixOffset(bounds.Min.X, y):]
		dst := out.Pix[out.PixOffset(0, y-bounds.Min.Y):]
		for x := 0; x < bounds.Dx(); x++ {
			c := cm.At(src[x])
			dst[x*4], dst[x*4+1], dst[x*4+2], dst[x*4+3] = c.R, c.G, c.B, c.A
		}
	}
	return out
}

func rgb(r, g, b uint8) colorful.Color {
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}
