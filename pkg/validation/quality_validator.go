package validation

import (
	"math"

	"github.com/anime-shed/vegindex-go/pkg/rgbvi"
)

// Issue severities.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// QualityThresholds defines configurable thresholds for quality validation
type QualityThresholds struct {
	// Resolution thresholds
	MinWidth  int
	MinHeight int

	// A pixel is dark when its brightest channel is below DarkLevel.
	DarkLevel          uint8
	MaxDarkFraction    float64
	MaxClippedFraction float64

	// Mean chroma (max-min channel, 0..1) below which the image is treated as grayscale.
	MinChroma float64

	// Channel balance threshold
	MaxChannelImbalance float64
}

// DefaultQualityThresholds returns the default quality thresholds
func DefaultQualityThresholds() QualityThresholds {
	return QualityThresholds{
		MinWidth:            32,
		MinHeight:           32,
		DarkLevel:           16,
		MaxDarkFraction:     0.5,
		MaxClippedFraction:  0.25,
		MinChroma:           0.02,
		MaxChannelImbalance: 0.35,
	}
}

// QualityValidator checks whether an image carries enough colour signal
// for index computation.
type QualityValidator struct {
	thresholds QualityThresholds
}

// NewQualityValidator creates a new quality validator with default thresholds
func NewQualityValidator() *QualityValidator {
	return &QualityValidator{
		thresholds: DefaultQualityThresholds(),
	}
}

// NewQualityValidatorWithThresholds creates a quality validator with custom thresholds
func NewQualityValidatorWithThresholds(thresholds QualityThresholds) *QualityValidator {
	return &QualityValidator{
		thresholds: thresholds,
	}
}

// QualityIssue represents a quality validation issue
type QualityIssue struct {
	Type        string  `json:"type"`
	Message     string  `json:"message"`
	Severity    string  `json:"severity"`
	ActualValue float64 `json:"actual_value,omitempty"`
	Threshold   float64 `json:"threshold,omitempty"`
}

// ImageQualityMetrics represents the metrics needed for quality validation
type ImageQualityMetrics struct {
	Width  int
	Height int

	DarkFraction    float64
	ClippedFraction float64
	MeanChroma      float64
	// Mean of each channel in blue, green, red order, scaled to 0..1.
	ChannelMeans [3]float64
}

// Measure computes quality metrics for img in a single pass.
func (qv *QualityValidator) Measure(img *rgbvi.Image) ImageQualityMetrics {
	metrics := ImageQualityMetrics{Width: img.Width, Height: img.Height}
	n := img.Len()
	if n == 0 || len(img.Pix) < n*3 {
		return metrics
	}

	var dark, clipped int
	var chroma float64
	var sums [3]float64
	for i := 0; i < n; i++ {
		p := img.Pix[i*3 : i*3+3]
		hi, lo := p[0], p[0]
		for c, v := range p {
			sums[c] += float64(v)
			if v > hi {
				hi = v
			}
			if v < lo {
				lo = v
			}
		}
		if hi < qv.thresholds.DarkLevel {
			dark++
		}
		if hi == 255 {
			clipped++
		}
		chroma += float64(hi-lo) / 255
	}

	total := float64(n)
	metrics.DarkFraction = float64(dark) / total
	metrics.ClippedFraction = float64(clipped) / total
	metrics.MeanChroma = chroma / total
	for c := range sums {
		metrics.ChannelMeans[c] = sums[c] / total / 255
	}
	return metrics
}

// Validate reports issues that make index values unreliable. Only a
// too-small image is an error; everything else is a warning.
func (qv *QualityValidator) Validate(metrics ImageQualityMetrics) []QualityIssue {
	var issues []QualityIssue

	// 1. Resolution
	if metrics.Width < qv.thresholds.MinWidth || metrics.Height < qv.thresholds.MinHeight {
		issues = append(issues, QualityIssue{
			Type:        "low_resolution",
			Message:     "Image is too small for meaningful index statistics.",
			Severity:    SeverityError,
			ActualValue: float64(metrics.Width * metrics.Height),
			Threshold:   float64(qv.thresholds.MinWidth * qv.thresholds.MinHeight),
		})
	}

	// 2. Dark pixels push ratio denominators towards zero
	if metrics.DarkFraction > qv.thresholds.MaxDarkFraction {
		issues = append(issues, QualityIssue{
			Type:        "underexposure",
			Message:     "Most of the image is nearly black. Ratio indices will be degenerate.",
			Severity:    SeverityWarning,
			ActualValue: metrics.DarkFraction,
			Threshold:   qv.thresholds.MaxDarkFraction,
		})
	}

	// 3. Clipped highlights
	if metrics.ClippedFraction > qv.thresholds.MaxClippedFraction {
		issues = append(issues, QualityIssue{
			Type:        "overexposure",
			Message:     "Many pixels have a saturated channel. Index values will be compressed.",
			Severity:    SeverityWarning,
			ActualValue: metrics.ClippedFraction,
			Threshold:   qv.thresholds.MaxClippedFraction,
		})
	}

	// 4. Grayscale input
	if metrics.MeanChroma < qv.thresholds.MinChroma {
		issues = append(issues, QualityIssue{
			Type:        "low_chroma",
			Message:     "Image is nearly grayscale. Colour indices carry no vegetation signal.",
			Severity:    SeverityWarning,
			ActualValue: metrics.MeanChroma,
			Threshold:   qv.thresholds.MinChroma,
		})
	}

	// 5. Channel balance
	means := metrics.ChannelMeans
	spread := math.Max(means[0], math.Max(means[1], means[2])) - math.Min(means[0], math.Min(means[1], means[2]))
	if spread > qv.thresholds.MaxChannelImbalance {
		issues = append(issues, QualityIssue{
			Type:        "channel_imbalance",
			Message:     "One colour channel dominates. Check white balance and filters.",
			Severity:    SeverityWarning,
			ActualValue: spread,
			Threshold:   qv.thresholds.MaxChannelImbalance,
		})
	}

	return issues
}

// ValidateImage is Measure followed by Validate.
func (qv *QualityValidator) ValidateImage(img *rgbvi.Image) []QualityIssue {
	return qv.Validate(qv.Measure(img))
}

// ConvertIssuesToMessages converts quality issues to simple error messages
func (qv *QualityValidator) ConvertIssuesToMessages(issues []QualityIssue) []string {
	var messages []string
	for _, issue := range issues {
		messages = append(messages, issue.Message)
	}
	return messages
}

// HasCriticalIssues checks if there are any critical (error severity) issues
func (qv *QualityValidator) HasCriticalIssues(issues []QualityIssue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}
