package repository

import (
	"context"
	"image"
)

// ImageRepository defines the interface for image data access operations
type ImageRepository interface {
	// FetchImage retrieves and decodes the image named by ref
	FetchImage(ctx context.Context, ref string) (image.Image, error)

	// ValidateImageURL validates if the provided reference is acceptable
	ValidateImageURL(ref string) error

	// Schemes lists the URL schemes that have a registered source
	Schemes() []string
}
