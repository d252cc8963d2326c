package analyzer

import "github.com/anime-shed/vegindex-go/pkg/rgbvi"

// Default analysis settings.
const (
	DefaultVegetationThreshold = 0.5
	DefaultDegeneracyThreshold = 0.05
	DefaultHistogramBins       = 16
)

// AnalysisOptions provides flexible configuration for index analysis
type AnalysisOptions struct {
	// Formulas to compute, in output order. Empty means every registered formula.
	Formulas []string

	// VegetationThreshold is the normalized value from which a pixel counts
	// towards IndexStatistics.VegetationFraction.
	VegetationThreshold float64
	DegeneracyThreshold float64
	HistogramBins       int

	// Hook receives core diagnostics. With UseWorkerPool the formulas run
	// concurrently and share Hook, so it must be safe for concurrent calls.
	Hook rgbvi.Hook

	// Performance options
	UseWorkerPool bool
}

// DefaultOptions returns default analysis options
func DefaultOptions() AnalysisOptions {
	return AnalysisOptions{
		VegetationThreshold: DefaultVegetationThreshold,
		DegeneracyThreshold: DefaultDegeneracyThreshold,
		HistogramBins:       DefaultHistogramBins,
		UseWorkerPool:       true,
	}
}

// LinearOptions computes the linear collection
func LinearOptions() AnalysisOptions {
	return DefaultOptions().WithFormulas(rgbvi.LinearNames()...)
}

// NormalizedOptions computes the normalized collection
func NormalizedOptions() AnalysisOptions {
	return DefaultOptions().WithFormulas(rgbvi.NormalizedNames()...)
}

// WithFormulas selects the formulas to compute
func (opts AnalysisOptions) WithFormulas(names ...string) AnalysisOptions {
	opts.Formulas = append([]string(nil), names...)
	return opts
}

// WithVegetationThreshold sets the vegetation cut-off on the normalized plane
func (opts AnalysisOptions) WithVegetationThreshold(threshold float64) AnalysisOptions {
	opts.VegetationThreshold = threshold
	return opts
}

// WithDegeneracyThreshold sets the fraction of stabilized pixels above which a diagnostic fires
func (opts AnalysisOptions) WithDegeneracyThreshold(fraction float64) AnalysisOptions {
	opts.DegeneracyThreshold = fraction
	return opts
}

// WithHistogramBins sets the number of histogram bins
func (opts AnalysisOptions) WithHistogramBins(bins int) AnalysisOptions {
	opts.HistogramBins = bins
	return opts
}

// WithHook routes core diagnostics to h. h may be called from several
// pool workers at once.
func (opts AnalysisOptions) WithHook(h rgbvi.Hook) AnalysisOptions {
	opts.Hook = h
	return opts
}

// WithoutWorkerPool computes formulas sequentially on the calling goroutine
func (opts AnalysisOptions) WithoutWorkerPool() AnalysisOptions {
	opts.UseWorkerPool = false
	return opts
}

// formulas resolves the selection, defaulting to the whole registry.
func (opts AnalysisOptions) formulas() []string {
	if len(opts.Formulas) == 0 {
		return rgbvi.Names()
	}
	return opts.Formulas
}

func (opts AnalysisOptions) bins() int {
	if opts.HistogramBins <= 0 {
		return DefaultHistogramBins
	}
	return opts.HistogramBins
}

func (opts AnalysisOptions) coreOptions() []rgbvi.Option {
	return []rgbvi.Option{
		rgbvi.WithHook(opts.Hook),
		rgbvi.WithDegeneracyThreshold(opts.DegeneracyThreshold),
	}
}
