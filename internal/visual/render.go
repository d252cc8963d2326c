package visual

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/anime-shed/vegindex-go/pkg/rgbvi"
)

var encoder = png.Encoder{CompressionLevel: png.BestSpeed}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := encoder.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// Render turns the quantized plane of res into a colour image. A nil
// colormap keeps the plane as grayscale.
func Render(res *rgbvi.Result, cm *Colormap) image.Image {
	gray := res.Gray()
	if cm == nil {
		return gray
	}
	return Colorize(gray, cm)
}

// RenderPNG renders res and returns the encoded bytes.
func RenderPNG(res *rgbvi.Result, cm *Colormap) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, Render(res, cm)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
