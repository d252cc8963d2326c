package analyzer

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/anime-shed/vegindex-go/pkg/rgbvi"
)

// statisticsCalculator implements StatisticsCalculator with gonum
type statisticsCalculator struct{}

// NewStatisticsCalculator creates a new statistics calculator
func NewStatisticsCalculator() StatisticsCalculator {
	return &statisticsCalculator{}
}

// Summarize computes population statistics of the normalized plane, the
// raw range, and an equal-width histogram over [0, 1].
func (sc *statisticsCalculator) Summarize(formula rgbvi.Formula, result *rgbvi.Result, vegetationThreshold float64, bins int) IndexStatistics {
	summary := IndexStatistics{
		Formula:          formula.Name,
		Title:            formula.Title,
		Kind:             formula.Kind.String(),
		DegeneratePixels: result.Degenerate,
		Discrepancy:      formula.Discrepancy,
	}
	if len(result.Normalized) == 0 {
		summary.Histogram = make([]int, bins)
		return summary
	}

	summary.Mean, summary.StdDev = stat.PopMeanStdDev(result.Normalized, nil)
	summary.Min = floats.Min(result.Normalized)
	summary.Max = floats.Max(result.Normalized)
	if len(result.Raw) > 0 {
		summary.RawMin = floats.Min(result.Raw)
		summary.RawMax = floats.Max(result.Raw)
	}

	var vegetated int
	for _, v := range result.Normalized {
		if v >= vegetationThreshold {
			vegetated++
		}
	}
	summary.VegetationFraction = float64(vegetated) / float64(len(result.Normalized))
	summary.Histogram = histogram(result.Normalized, bins)
	return summary
}

// histogram counts values into bins equal-width bins over [0, 1]. The last
// bin is closed so that 1 is counted.
func histogram(values []float64, bins int) []int {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	dividers := make([]float64, bins+1)
	floats.Span(dividers, 0, 1)
	dividers[bins] = math.Nextafter(1, 2)

	counts := stat.Histogram(nil, dividers, sorted, nil)
	out := make([]int, bins)
	for i, c := range counts {
		out[i] = int(c)
	}
	return out
}
