package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageFetcher loads and decodes an image from a source reference.
type ImageFetcher interface {
	FetchImage(ctx context.Context, ref string) (image.Image, error)
}

// DefaultMaxImageBytes caps the encoded size read from any source.
const DefaultMaxImageBytes = 50 * 1024 * 1024

// DefaultMaxImagePixels caps the decoded width*height. Index computation
// holds about 50 bytes per pixel.
const DefaultMaxImagePixels = 40_000_000

// ErrImageTooLarge is returned when an image exceeds the encoded size or
// pixel count limit.
var ErrImageTooLarge = errors.New("image exceeds size limit")

// Limits bounds what a fetcher accepts. Zero fields use the defaults.
type Limits struct {
	MaxBytes  int64
	MaxPixels int64
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{MaxBytes: DefaultMaxImageBytes, MaxPixels: DefaultMaxImagePixels}
}

func (l Limits) withDefaults() Limits {
	if l.MaxBytes <= 0 {
		l.MaxBytes = DefaultMaxImageBytes
	}
	if l.MaxPixels <= 0 {
		l.MaxPixels = DefaultMaxImagePixels
	}
	return l
}

// decode reads at most limits.MaxBytes from r and decodes them with the
// registered codecs (PNG, JPEG, GIF, TIFF, WebP). The header is checked
// against limits.MaxPixels before any pixel data is allocated.
func decode(r io.Reader, limits Limits) (image.Image, string, error) {
	limits = limits.withDefaults()
	lr := &io.LimitedReader{R: r, N: limits.MaxBytes + 1}

	// bytes consumed while sniffing the header are replayed for the full decode
	var header bytes.Buffer
	cfg, _, err := image.DecodeConfig(io.TeeReader(lr, &header))
	if lr.N <= 0 {
		return nil, "", fmt.Errorf("%w (%d bytes)", ErrImageTooLarge, limits.MaxBytes)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > limits.MaxPixels {
		return nil, "", fmt.Errorf("%w (%dx%d pixels, limit %d)", ErrImageTooLarge, cfg.Width, cfg.Height, limits.MaxPixels)
	}

	img, format, err := image.Decode(io.MultiReader(&header, lr))
	if lr.N <= 0 {
		return nil, "", fmt.Errorf("%w (%d bytes)", ErrImageTooLarge, limits.MaxBytes)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}
