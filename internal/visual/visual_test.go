package visual

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/anime-shed/vegindex-go/pkg/rgbvi"
)

func TestColormapByName(t *testing.T) {
	for _, name := range ColormapNames() {
		t.Run(name, func(t *testing.T) {
			cm, err := ColormapByName(name)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cm.Name() != name {
				t.Errorf("expected name %s, got %s", name, cm.Name())
			}
			if cm.At(0) == cm.At(255) {
				t.Errorf("expected distinct end colours")
			}
		})
	}

	if _, err := ColormapByName("jet"); err == nil {
		t.Error("expected error for unknown colormap")
	}
}

func TestColormapByName_FreshInstances(t *testing.T) {
	a, _ := ColormapByName(Vegetation)
	b, _ := ColormapByName(Vegetation)
	if a == b {
		t.Error("expected a new colormap per call")
	}
}

func TestGrayColormap_Identity(t *testing.T) {
	cm, err := ColormapByName(Gray)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for v := 0; v < 256; v++ {
		want := color.RGBA{R: uint8(v), G: uint8(v), B: uint8(v), A: 255}
		if got := cm.At(uint8(v)); got != want {
			t.Fatalf("level %d: expected %v, got %v", v, want, got)
		}
	}
}

func TestVegetationColormap_Endpoints(t *testing.T) {
	cm, _ := ColormapByName(Vegetation)

	assertNear(t, color.RGBA{R: 0x8c, G: 0x51, B: 0x0a, A: 255}, cm.At(0))
	assertNear(t, color.RGBA{R: 0x00, G: 0x68, B: 0x37, A: 255}, cm.At(255))

	// green dominates the upper half
	hi := cm.At(230)
	if hi.G <= hi.R {
		t.Errorf("expected green to dominate at the top of the ramp, got %v", hi)
	}
}

func TestNewColormap_Validation(t *testing.T) {
	black, white := rgb(0, 0, 0), rgb(255, 255, 255)
	tests := []struct {
		name  string
		stops []Stop
	}{
		{"single stop", []Stop{{0, black}}},
		{"not starting at zero", []Stop{{0.1, black}, {1, white}}},
		{"not ending at one", []Stop{{0, black}, {0.9, white}}},
		{"not increasing", []Stop{{0, black}, {0.5, white}, {0.5, black}, {1, white}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewColormap("custom", tt.stops...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestColormap_ConcurrentFirstUse(t *testing.T) {
	cm, _ := ColormapByName(Viridis)
	want, _ := ColormapByName(Viridis)
	expected := want.At(128)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := cm.At(128); got != expected {
				t.Errorf("expected %v, got %v", expected, got)
			}
		}()
	}
	wg.Wait()
}

func TestColorize(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 3, 2))
	copy(g.Pix, []uint8{0, 128, 255, 255, 128, 0})
	cm, _ := ColormapByName(Viridis)

	out := Colorize(g, cm)

	if out.Bounds().Dx() != 3 || out.Bounds().Dy() != 2 {
		t.Fatalf("unexpected bounds %v", out.Bounds())
	}
	if out.RGBAAt(0, 0) != cm.At(0) || out.RGBAAt(2, 0) != cm.At(255) || out.RGBAAt(1, 1) != cm.At(128) {
		t.Error("pixels were not mapped through the colormap")
	}
}

func TestColorize_SubImage(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 4, 4))
	g.SetGray(2, 3, color.Gray{Y: 255})
	sub := g.SubImage(image.Rect(2, 2, 4, 4)).(*image.Gray)
	cm, _ := ColormapByName(Gray)

	out := Colorize(sub, cm)

	if out.RGBAAt(0, 1) != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("expected white at (0,1), got %v", out.RGBAAt(0, 1))
	}
	if out.RGBAAt(1, 1) != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("expected black at (1,1), got %v", out.RGBAAt(1, 1))
	}
}

func TestEqualizeChannel_UniformStaysUniform(t *testing.T) {
	pix := bytes.Repeat([]byte{100}, 16*16)

	out := EqualizeChannel(pix, 16, 16, DefaultCLAHEOptions())

	for i, v := range out {
		if v != out[0] {
			t.Fatalf("pixel %d: expected %d, got %d", i, out[0], v)
		}
	}
}

func TestEqualizeChannel_StretchesLowContrast(t *testing.T) {
	const w, h = 64, 8
	pix := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pix[y*w+x] = uint8(100 + x/8)
		}
	}

	out := EqualizeChannel(pix, w, h, CLAHEOptions{TilesX: 1, TilesY: 1})

	lo, hi := out[0], out[0]
	for _, v := range out {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi != 255 {
		t.Errorf("expected the brightest level to map to 255, got %d", hi)
	}
	if int(hi)-int(lo) <= 7 {
		t.Errorf("expected contrast to increase, range is %d", int(hi)-int(lo))
	}
}

func TestEqualizeChannel_MalformedInputIsCopied(t *testing.T) {
	pix := []uint8{1, 2, 3}
	out := EqualizeChannel(pix, 2, 2, DefaultCLAHEOptions())
	if !bytes.Equal(out, pix) {
		t.Errorf("expected copy of input, got %v", out)
	}
	out[0] = 9
	if pix[0] != 1 {
		t.Error("input was modified")
	}
}

func TestCLAHE_KeepsBoundsAndGrayness(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 20, 10))
	for i := range src.Pix {
		src.Pix[i] = uint8(80 + i%40)
	}

	out := CLAHE(src, DefaultCLAHEOptions())

	if out.Bounds() != image.Rect(0, 0, 20, 10) {
		t.Fatalf("unexpected bounds %v", out.Bounds())
	}
	for i := 0; i < len(out.Pix); i += 4 {
		r, g, b := int(out.Pix[i]), int(out.Pix[i+1]), int(out.Pix[i+2])
		if abs(r-g) > 2 || abs(g-b) > 2 {
			t.Fatalf("expected gray output, got (%d,%d,%d)", r, g, b)
		}
		if out.Pix[i+3] != 255 {
			t.Fatalf("expected opaque output")
		}
	}
}

func TestRenderPNG(t *testing.T) {
	img, err := rgbvi.NewImage(2, 2, 3, []uint8{
		0, 255, 0, 0, 0, 255,
		0, 0, 0, 255, 255, 255,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res, err := rgbvi.ExG(img)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cm, _ := ColormapByName(Vegetation)

	data, err := RenderPNG(res, cm)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if decoded.Bounds().Dx() != 2 || decoded.Bounds().Dy() != 2 {
		t.Errorf("unexpected bounds %v", decoded.Bounds())
	}
	r, g, b, _ := decoded.At(0, 0).RGBA()
	want := cm.At(255)
	if uint8(r>>8) != want.R || uint8(g>>8) != want.G || uint8(b>>8) != want.B {
		t.Errorf("expected pure green pixel to use the top of the ramp")
	}

	if _, ok := Render(res, nil).(*image.Gray); !ok {
		t.Error("expected grayscale render without a colormap")
	}
}

func assertNear(t *testing.T, want, got color.RGBA) {
	t.Helper()
	if abs(int(want.R)-int(got.R)) > 1 || abs(int(want.G)-int(got.G)) > 1 || abs(int(want.B)-int(got.B)) > 1 {
		t.Errorf("expected about %v, got %v", want, got)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
