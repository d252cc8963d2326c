package rgbvi

import (
	"image"
	"image/color"
)

// Image is an 8-bit, three channel raster in Blue-Green-Red order.
// Pixels are interleaved row-major: the value of channel c at (x, y)
// is Pix[(y*Width+x)*3+c]. Index functions never modify Pix.
type Image struct {
	Height int
	Width  int
	Pix    []uint8
}

// Channel offsets inside an interleaved BGR pixel.
const (
	blueChannel  = 0
	greenChannel = 1
	redChannel   = 2
	numChannels  = 3
)

// NewImage wraps pix as an H×W×channels image. It fails with a *ShapeError
// unless channels is 3 and len(pix) == height*width*3.
func NewImage(height, width, channels int, pix []uint8) (*Image, error) {
	if channels != numChannels {
		return nil, &ShapeError{Height: height, Width: width, Channels: channels, Len: len(pix)}
	}
	img := &Image{Height: height, Width: width, Pix: pix}
	if err := img.validate(); err != nil {
		return nil, err
	}
	return img, nil
}

// FromImage converts a decoded image to BGR. Alpha is dropped and colours
// are taken un-premultiplied, the way image decoders hand them out.
func FromImage(src image.Image) *Image {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	pix := make([]uint8, width*height*numChannels)

	if nrgba, ok := src.(*image.NRGBA); ok {
		for y := 0; y < height; y++ {
			row := nrgba.Pix[(y+bounds.Min.Y-nrgba.Rect.Min.Y)*nrgba.Stride:]
			for x := 0; x < width; x++ {
				s := (x + bounds.Min.X - nrgba.Rect.Min.X) * 4
				d := (y*width + x) * numChannels
				pix[d+blueChannel] = row[s+2]
				pix[d+greenChannel] = row[s+1]
				pix[d+redChannel] = row[s]
			}
		}
		return &Image{Height: height, Width: width, Pix: pix}
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.NRGBAModel.Convert(src.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			d := (y*width + x) * numChannels
			pix[d+blueChannel] = c.B
			pix[d+greenChannel] = c.G
			pix[d+redChannel] = c.R
		}
	}
	return &Image{Height: height, Width: width, Pix: pix}
}

// Len returns the number of pixels.
func (im *Image) Len() int {
	return im.Height * im.Width
}

// Bounds returns the image rectangle anchored at the origin.
func (im *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, im.Width, im.Height)
}

// NRGBA converts the image back to an opaque *image.NRGBA.
func (im *Image) NRGBA() *image.NRGBA {
	out := image.NewNRGBA(im.Bounds())
	for i := 0; i < im.Len(); i++ {
		s := i * numChannels
		d := i * 4
		out.Pix[d] = im.Pix[s+redChannel]
		out.Pix[d+1] = im.Pix[s+greenChannel]
		out.Pix[d+2] = im.Pix[s+blueChannel]
		out.Pix[d+3] = 0xff
	}
	return out
}

// Channels splits the image into float64 planes. The planes are fresh
// copies; the caller owns them.
func (im *Image) Channels() (b, g, r []float64) {
	n := im.Len()
	b = make([]float64, n)
	g = make([]float64, n)
	r = make([]float64, n)
	for i := 0; i < n; i++ {
		p := im.Pix[i*numChannels : i*numChannels+numChannels]
		b[i] = float64(p[blueChannel])
		g[i] = float64(p[greenChannel])
		r[i] = float64(p[redChannel])
	}
	return b, g, r
}

// channels32 is Channels at single precision.
func (im *Image) channels32() (b, g, r []float32) {
	n := im.Len()
	b = make([]float32, n)
	g = make([]float32, n)
	r = make([]float32, n)
	for i := 0; i < n; i++ {
		p := im.Pix[i*numChannels : i*numChannels+numChannels]
		b[i] = float32(p[blueChannel])
		g[i] = float32(p[greenChannel])
		r[i] = float32(p[redChannel])
	}
	return b, g, r
}

func (im *Image) validate() error {
	if im == nil {
		return &ShapeError{Channels: numChannels}
	}
	if im.Height <= 0 || im.Width <= 0 || len(im.Pix) != im.Height*im.Width*numChannels {
		return &ShapeError{Height: im.Height, Width: im.Width, Channels: numChannels, Len: len(im.Pix)}
	}
	return nil
}
