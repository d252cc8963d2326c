package rgbvi

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidShape is matched by every *ShapeError.
	ErrInvalidShape = errors.New("rgbvi: image must be a non-empty H×W×3 array")

	// ErrUnknownFormula is returned by Compute for names missing from the registry.
	ErrUnknownFormula = errors.New("rgbvi: unknown formula")
)

// ShapeError describes an input that is not a well formed 3-channel image.
type ShapeError struct {
	Height   int
	Width    int
	Channels int
	Len      int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%v: got %dx%dx%d with %d values", ErrInvalidShape, e.Height, e.Width, e.Channels, e.Len)
}

// Is reports whether target is ErrInvalidShape.
func (e *ShapeError) Is(target error) bool {
	return target == ErrInvalidShape
}
