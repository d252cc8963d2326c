package rgbvi

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// uniformImage creates an image where every pixel holds the same BGR triple.
func uniformImage(t *testing.T, height, width int, b, g, r uint8) *Image {
	t.Helper()
	pix := make([]uint8, height*width*3)
	for i := 0; i < height*width; i++ {
		pix[i*3], pix[i*3+1], pix[i*3+2] = b, g, r
	}
	img, err := NewImage(height, width, 3, pix)
	require.NoError(t, err)
	return img
}

// pixelImage creates a 1×n image from BGR triples.
func pixelImage(t *testing.T, bgr ...[3]uint8) *Image {
	t.Helper()
	pix := make([]uint8, 0, len(bgr)*3)
	for _, p := range bgr {
		pix = append(pix, p[0], p[1], p[2])
	}
	img, err := NewImage(1, len(bgr), 3, pix)
	require.NoError(t, err)
	return img
}

// randomImage creates a reproducible noise image.
func randomImage(t *testing.T, seed int64, height, width int) *Image {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	pix := make([]uint8, height*width*3)
	rng.Read(pix)
	img, err := NewImage(height, width, 3, pix)
	require.NoError(t, err)
	return img
}
