package analyzer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/anime-shed/vegindex-go/pkg/rgbvi"
)

// plotImage returns a w×h BGR image: left half green canopy, right half bare soil.
func plotImage(t *testing.T, w, h int) *rgbvi.Image {
	t.Helper()
	pix := make([]uint8, w*h*3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := pix[(y*w+x)*3:]
			if x < w/2 {
				p[0], p[1], p[2] = 40, 170, 50
			} else {
				p[0], p[1], p[2] = 60, 90, 130
			}
		}
	}
	img, err := rgbvi.NewImage(h, w, 3, pix)
	if err != nil {
		t.Fatalf("NewImage: %v", err)
	}
	return img
}

func newTestAnalyzer(t *testing.T) IndexAnalyzer {
	t.Helper()
	a, err := NewIndexAnalyzerWithWorkers(2)
	if err != nil {
		t.Fatalf("NewIndexAnalyzerWithWorkers: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestAnalyze_AllFormulas(t *testing.T) {
	a := newTestAnalyzer(t)
	img := plotImage(t, 8, 4)

	report, err := a.Analyze(context.Background(), img, DefaultOptions())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if report.Width != 8 || report.Height != 4 {
		t.Errorf("unexpected size %dx%d", report.Width, report.Height)
	}
	names := rgbvi.Names()
	if len(report.Indices) != len(names) {
		t.Fatalf("Expected %d indices, got %d", len(names), len(report.Indices))
	}
	for i, s := range report.Indices {
		if s.Formula != names[i] {
			t.Errorf("index %d: expected %s, got %s", i, names[i], s.Formula)
		}
		if len(s.Histogram) != DefaultHistogramBins {
			t.Errorf("%s: expected %d bins, got %d", s.Formula, DefaultHistogramBins, len(s.Histogram))
		}
		total := 0
		for _, c := range s.Histogram {
			total += c
		}
		if total != img.Len() {
			t.Errorf("%s: histogram counts %d pixels, want %d", s.Formula, total, img.Len())
		}
		if s.Min < 0 || s.Max > 1 || s.Mean < s.Min || s.Mean > s.Max {
			t.Errorf("%s: statistics out of range %+v", s.Formula, s)
		}
	}
}

func TestAnalyze_ExGSeparatesCanopy(t *testing.T) {
	a := newTestAnalyzer(t)
	img := plotImage(t, 8, 4)

	report, err := a.Analyze(context.Background(), img, DefaultOptions().WithFormulas("exgr", "ngrdi"))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(report.Indices) != 2 || report.Indices[0].Formula != "exgr" || report.Indices[1].Formula != "ngrdi" {
		t.Fatalf("unexpected selection %+v", report.Indices)
	}
	exgr, ok := report.Index("exgr")
	if !ok {
		t.Fatal("exgr missing from report")
	}
	if exgr.VegetationFraction != 0.5 {
		t.Errorf("Expected half the plot above the threshold, got %v", exgr.VegetationFraction)
	}
}

func TestAnalyze_SequentialMatchesPool(t *testing.T) {
	a := newTestAnalyzer(t)
	img := plotImage(t, 16, 6)

	pooled, err := a.Analyze(context.Background(), img, NormalizedOptions())
	if err != nil {
		t.Fatalf("pooled: %v", err)
	}
	sequential, err := a.Analyze(context.Background(), img, NormalizedOptions().WithoutWorkerPool())
	if err != nil {
		t.Fatalf("sequential: %v", err)
	}
	for i := range pooled.Indices {
		p, s := pooled.Indices[i], sequential.Indices[i]
		if p.Formula != s.Formula || p.Mean != s.Mean || p.StdDev != s.StdDev || p.DegeneratePixels != s.DegeneratePixels {
			t.Errorf("%s: pooled %+v differs from sequential %+v", p.Formula, p, s)
		}
	}
}

func TestAnalyze_Errors(t *testing.T) {
	a := newTestAnalyzer(t)
	img := plotImage(t, 4, 4)

	t.Run("unknown formula", func(t *testing.T) {
		_, err := a.Analyze(context.Background(), img, DefaultOptions().WithFormulas("exgr", "ndvi"))
		if !errors.Is(err, rgbvi.ErrUnknownFormula) {
			t.Errorf("Expected ErrUnknownFormula, got %v", err)
		}
	})

	t.Run("bad shape", func(t *testing.T) {
		bad := &rgbvi.Image{Height: 2, Width: 2, Pix: make([]uint8, 5)}
		_, err := a.Analyze(context.Background(), bad, LinearOptions())
		if !errors.Is(err, rgbvi.ErrInvalidShape) {
			t.Errorf("Expected ErrInvalidShape, got %v", err)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := a.Analyze(ctx, img, DefaultOptions())
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	})
}

func TestAnalyze_HookReceivesDiagnostics(t *testing.T) {
	a := newTestAnalyzer(t)
	black, err := rgbvi.NewImage(4, 4, 3, make([]uint8, 48))
	if err != nil {
		t.Fatalf("NewImage: %v", err)
	}

	var mu sync.Mutex
	seen := map[string]bool{}
	opts := DefaultOptions().WithFormulas("ndi", "gli").WithHook(func(d rgbvi.Diagnostic) {
		mu.Lock()
		defer mu.Unlock()
		if d.Kind == rgbvi.DiagnosticDegenerate {
			seen[d.Formula] = true
		}
	})

	if _, err := a.Analyze(context.Background(), black, opts); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if !seen["ndi"] || !seen["gli"] {
		t.Errorf("Expected degenerate diagnostics for ndi and gli, got %v", seen)
	}
}

func TestAnalyze_HookCalledFromConcurrentWorkers(t *testing.T) {
	a := newTestAnalyzer(t)
	black, err := rgbvi.NewImage(4, 4, 3, make([]uint8, 48))
	if err != nil {
		t.Fatalf("NewImage: %v", err)
	}

	// each call waits for the other, which only succeeds if both are in
	// flight on different workers at the same time
	var arrived atomic.Int32
	var overlapped atomic.Bool
	opts := DefaultOptions().WithFormulas("ndi", "gli").WithHook(func(d rgbvi.Diagnostic) {
		arrived.Add(1)
		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			if arrived.Load() >= 2 {
				overlapped.Store(true)
				return
			}
			time.Sleep(time.Millisecond)
		}
	})

	if _, err := a.Analyze(context.Background(), black, opts); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !overlapped.Load() {
		t.Error("Expected the hook to be invoked concurrently by pool workers")
	}

	// sequential mode never overlaps
	arrived.Store(0)
	overlapped.Store(false)
	seq := opts.WithoutWorkerPool().WithHook(func(d rgbvi.Diagnostic) {
		if arrived.Add(1) > 1 {
			overlapped.Store(true)
		}
		arrived.Add(-1)
	})
	if _, err := a.Analyze(context.Background(), black, seq); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if overlapped.Load() {
		t.Error("Expected sequential analysis to call the hook one at a time")
	}
}

func TestCompute(t *testing.T) {
	a := newTestAnalyzer(t)
	img := plotImage(t, 4, 2)

	res, err := a.Compute(context.Background(), img, "exgr", DefaultOptions())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	want, _ := rgbvi.Compute("exgr", img)
	for i := range want.Quantized {
		if res.Quantized[i] != want.Quantized[i] {
			t.Fatalf("pixel %d: got %d, want %d", i, res.Quantized[i], want.Quantized[i])
		}
	}

	if _, err := a.Compute(context.Background(), img, "nope", DefaultOptions()); !errors.Is(err, rgbvi.ErrUnknownFormula) {
		t.Errorf("Expected ErrUnknownFormula, got %v", err)
	}
}

func TestAnalyze_AfterClose(t *testing.T) {
	a, err := NewIndexAnalyzerWithWorkers(1)
	if err != nil {
		t.Fatalf("NewIndexAnalyzerWithWorkers: %v", err)
	}
	a.Close()

	report, err := a.Analyze(context.Background(), plotImage(t, 4, 4), LinearOptions())
	if err != nil {
		t.Fatalf("Expected inline fallback after Close, got %v", err)
	}
	if len(report.Indices) != len(rgbvi.LinearNames()) {
		t.Errorf("Expected %d indices, got %d", len(rgbvi.LinearNames()), len(report.Indices))
	}
}
