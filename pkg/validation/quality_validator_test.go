package validation

import (
	"testing"

	"github.com/anime-shed/vegindex-go/pkg/rgbvi"
)

// filledImage returns a w×h BGR image where every pixel is (b, g, r).
func filledImage(t *testing.T, w, h int, b, g, r uint8) *rgbvi.Image {
	t.Helper()
	pix := make([]uint8, w*h*3)
	for i := 0; i < w*h; i++ {
		pix[i*3], pix[i*3+1], pix[i*3+2] = b, g, r
	}
	img, err := rgbvi.NewImage(h, w, 3, pix)
	if err != nil {
		t.Fatalf("NewImage: %v", err)
	}
	return img
}

func issueTypes(issues []QualityIssue) map[string]QualityIssue {
	out := make(map[string]QualityIssue, len(issues))
	for _, issue := range issues {
		out[issue.Type] = issue
	}
	return out
}

func TestNewQualityValidator(t *testing.T) {
	validator := NewQualityValidator()
	if validator == nil {
		t.Fatal("Expected non-nil quality validator")
	}
	if validator.thresholds != DefaultQualityThresholds() {
		t.Errorf("Expected default thresholds, got %+v", validator.thresholds)
	}
}

func TestNewQualityValidatorWithThresholds(t *testing.T) {
	custom := QualityThresholds{MinWidth: 1, MinHeight: 1, MaxDarkFraction: 1, MaxClippedFraction: 1, MaxChannelImbalance: 1}
	validator := NewQualityValidatorWithThresholds(custom)
	if validator.thresholds.MinWidth != 1 {
		t.Errorf("Expected custom MinWidth 1, got %d", validator.thresholds.MinWidth)
	}
}

func TestMeasure(t *testing.T) {
	validator := NewQualityValidator()

	// top half black, bottom half green with a saturated channel
	pix := make([]uint8, 4*4*3)
	for i := 8; i < 16; i++ {
		pix[i*3+1] = 255
	}
	img, err := rgbvi.NewImage(4, 4, 3, pix)
	if err != nil {
		t.Fatalf("NewImage: %v", err)
	}

	m := validator.Measure(img)
	if m.Width != 4 || m.Height != 4 {
		t.Errorf("unexpected size %dx%d", m.Width, m.Height)
	}
	if m.DarkFraction != 0.5 {
		t.Errorf("DarkFraction = %v, want 0.5", m.DarkFraction)
	}
	if m.ClippedFraction != 0.5 {
		t.Errorf("ClippedFraction = %v, want 0.5", m.ClippedFraction)
	}
	if m.MeanChroma != 0.5 {
		t.Errorf("MeanChroma = %v, want 0.5", m.MeanChroma)
	}
	if m.ChannelMeans != [3]float64{0, 0.5, 0} {
		t.Errorf("ChannelMeans = %v", m.ChannelMeans)
	}
}

func TestValidate_HealthyImage(t *testing.T) {
	validator := NewQualityValidator()
	issues := validator.ValidateImage(filledImage(t, 64, 64, 60, 140, 90))
	if len(issues) > 0 {
		t.Errorf("Expected no quality issues, got: %v", issues)
	}
	if validator.HasCriticalIssues(issues) {
		t.Error("Expected no critical issues")
	}
}

func TestValidate_Issues(t *testing.T) {
	validator := NewQualityValidator()

	tests := []struct {
		name     string
		metrics  ImageQualityMetrics
		wantType string
		severity string
	}{
		{
			name:     "too small",
			metrics:  ImageQualityMetrics{Width: 16, Height: 64, MeanChroma: 0.3},
			wantType: "low_resolution",
			severity: SeverityError,
		},
		{
			name:     "mostly dark",
			metrics:  ImageQualityMetrics{Width: 64, Height: 64, DarkFraction: 0.8, MeanChroma: 0.3},
			wantType: "underexposure",
			severity: SeverityWarning,
		},
		{
			name:     "clipped",
			metrics:  ImageQualityMetrics{Width: 64, Height: 64, ClippedFraction: 0.4, MeanChroma: 0.3},
			wantType: "overexposure",
			severity: SeverityWarning,
		},
		{
			name:     "grayscale",
			metrics:  ImageQualityMetrics{Width: 64, Height: 64, MeanChroma: 0.001},
			wantType: "low_chroma",
			severity: SeverityWarning,
		},
		{
			name:     "red cast",
			metrics:  ImageQualityMetrics{Width: 64, Height: 64, MeanChroma: 0.3, ChannelMeans: [3]float64{0.1, 0.2, 0.9}},
			wantType: "channel_imbalance",
			severity: SeverityWarning,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := validator.Validate(tt.metrics)
			if len(issues) != 1 {
				t.Fatalf("Expected exactly one issue, got %v", issues)
			}
			issue, ok := issueTypes(issues)[tt.wantType]
			if !ok {
				t.Fatalf("Expected %s issue, got %v", tt.wantType, issues)
			}
			if issue.Severity != tt.severity {
				t.Errorf("Expected severity %s, got %s", tt.severity, issue.Severity)
			}
			if issue.Message == "" {
				t.Error("Expected a message")
			}
		})
	}
}

func TestValidateImage_BlackImage(t *testing.T) {
	validator := NewQualityValidator()
	issues := issueTypes(validator.ValidateImage(filledImage(t, 64, 64, 0, 0, 0)))

	if _, ok := issues["underexposure"]; !ok {
		t.Error("Expected underexposure for a black image")
	}
	if _, ok := issues["low_chroma"]; !ok {
		t.Error("Expected low_chroma for a black image")
	}
}

func TestConvertIssuesToMessages(t *testing.T) {
	validator := NewQualityValidator()
	issues := []QualityIssue{
		{Type: "a", Message: "first"},
		{Type: "b", Message: "second", Severity: SeverityError},
	}

	messages := validator.ConvertIssuesToMessages(issues)
	if len(messages) != 2 || messages[0] != "first" || messages[1] != "second" {
		t.Errorf("unexpected messages %v", messages)
	}
	if !validator.HasCriticalIssues(issues) {
		t.Error("Expected critical issue to be detected")
	}
}
