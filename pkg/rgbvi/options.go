package rgbvi

import "fmt"

// DiagnosticKind classifies a Diagnostic.
type DiagnosticKind string

const (
	// DiagnosticDegenerate means a ratio formula had to clip or epsilon-stabilize
	// the denominator for more pixels than the configured threshold allows.
	DiagnosticDegenerate DiagnosticKind = "degenerate"
	// DiagnosticNaNReplaced means NaN values were replaced with 0 before quantization.
	DiagnosticNaNReplaced DiagnosticKind = "nan_replaced"
)

// Diagnostic is a non-fatal observation made while computing an index.
type Diagnostic struct {
	Formula string
	Kind    DiagnosticKind
	Count   int
	Total   int
	Message string
}

// Fraction returns Count/Total.
func (d Diagnostic) Fraction() float64 {
	if d.Total == 0 {
		return 0
	}
	return float64(d.Count) / float64(d.Total)
}

// Hook receives diagnostics. A single formula call invokes it on the
// calling goroutine after all strips have finished. Callers that share one
// hook across concurrent formula calls must make it safe for concurrent use.
type Hook func(Diagnostic)

// Option tunes a single formula call.
type Option func(*settings)

const (
	defaultDegeneracyThreshold = 0.05
	// Images with at least this many pixels are split into row strips.
	defaultParallelThreshold = 100000
)

type settings struct {
	hook                Hook
	degeneracyThreshold float64
	parallelThreshold   int
}

// WithHook installs a diagnostics hook. A nil hook is ignored.
func WithHook(h Hook) Option {
	return func(s *settings) {
		if h != nil {
			s.hook = h
		}
	}
}

// WithDegeneracyThreshold sets the fraction of stabilized denominators
// above which a DiagnosticDegenerate is emitted.
func WithDegeneracyThreshold(fraction float64) Option {
	return func(s *settings) {
		if fraction >= 0 {
			s.degeneracyThreshold = fraction
		}
	}
}

// WithParallelThreshold sets the pixel count from which work is split across
// CPUs. Zero or a negative value keeps every call on one goroutine.
func WithParallelThreshold(pixels int) Option {
	return func(s *settings) {
		s.parallelThreshold = pixels
	}
}

func newSettings(opts []Option) settings {
	s := settings{
		hook:                func(Diagnostic) {},
		degeneracyThreshold: defaultDegeneracyThreshold,
		parallelThreshold:   defaultParallelThreshold,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	return s
}

func (s settings) reportDegenerate(formula string, count, total int) {
	if count == 0 || total == 0 {
		return
	}
	if float64(count)/float64(total) <= s.degeneracyThreshold {
		return
	}
	s.hook(Diagnostic{
		Formula: formula,
		Kind:    DiagnosticDegenerate,
		Count:   count,
		Total:   total,
		Message: fmt.Sprintf("%s: denominator stabilized for %d of %d pixels", formula, count, total),
	})
}

func (s settings) reportNaN(formula string, count, total int) {
	if count == 0 {
		return
	}
	s.hook(Diagnostic{
		Formula: formula,
		Kind:    DiagnosticNaNReplaced,
		Count:   count,
		Total:   total,
		Message: fmt.Sprintf("%s: replaced %d NaN values with 0", formula, count),
	})
}
