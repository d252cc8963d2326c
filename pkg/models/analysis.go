package models

import (
	"time"

	"github.com/anime-shed/vegindex-go/pkg/validation"
)

// IndexStatistics summarises one vegetation index over an image.
// Mean, StdDev, Min, Max and Histogram describe the normalized plane.
type IndexStatistics struct {
	Formula string `json:"formula"`
	Title   string `json:"title"`
	Kind    string `json:"kind"`

	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	RawMin float64 `json:"raw_min"`
	RawMax float64 `json:"raw_max"`

	// VegetationFraction is the share of pixels whose normalized value
	// reaches the vegetation threshold.
	VegetationFraction float64 `json:"vegetation_fraction"`
	Histogram          []int   `json:"histogram"`
	DegeneratePixels   int     `json:"degenerate_pixels"`
	Discrepancy        string  `json:"discrepancy,omitempty"`
}

// IndexReport is the result of computing several indices for one image.
type IndexReport struct {
	ImageURL          string    `json:"image_url,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
	ProcessingTimeSec float64   `json:"processing_time_sec"`
	Width             int       `json:"width"`
	Height            int       `json:"height"`
	Selection         string    `json:"selection,omitempty"`
	Threshold         float64   `json:"vegetation_threshold"`

	Indices []IndexStatistics `json:"indices"`

	QualityIssues []validation.QualityIssue `json:"quality_issues,omitempty"`
	Errors        []string                  `json:"errors,omitempty"`
}

// Index returns the statistics for formula, if present.
func (r *IndexReport) Index(formula string) (IndexStatistics, bool) {
	for _, s := range r.Indices {
		if s.Formula == formula {
			return s, true
		}
	}
	return IndexStatistics{}, false
}

// FormulaInfo describes a registered formula
type FormulaInfo struct {
	Name        string    `json:"name"`
	Title       string    `json:"title"`
	Citation    string    `json:"citation,omitempty"`
	Kind        string    `json:"kind"`
	Range       []float64 `json:"range,omitempty"`
	Ratio       bool      `json:"ratio"`
	Discrepancy string    `json:"discrepancy,omitempty"`
	Collections []string  `json:"collections"`
}

// ImageMetadata contains metadata about a decoded image
type ImageMetadata struct {
	Format string `json:"format,omitempty"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}
