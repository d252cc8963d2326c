package analyzer

import (
	"context"

	"github.com/anime-shed/vegindex-go/pkg/rgbvi"
)

// IndexAnalyzer defines the main interface for index analysis
type IndexAnalyzer interface {
	// Analyze computes and summarises every selected formula.
	Analyze(ctx context.Context, img *rgbvi.Image, options AnalysisOptions) (*IndexReport, error)

	// Compute runs a single formula and returns its planes.
	Compute(ctx context.Context, img *rgbvi.Image, formula string, options AnalysisOptions) (*rgbvi.Result, error)

	// Lifecycle management
	Close() error
}

// StatisticsCalculator summarises a computed index
type StatisticsCalculator interface {
	Summarize(formula rgbvi.Formula, result *rgbvi.Result, vegetationThreshold float64, bins int) IndexStatistics
}
