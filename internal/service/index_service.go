package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/anime-shed/vegindex-go/internal/analyzer"
	apperrors "github.com/anime-shed/vegindex-go/internal/errors"
	"github.com/anime-shed/vegindex-go/internal/logger"
	"github.com/anime-shed/vegindex-go/internal/observer"
	"github.com/anime-shed/vegindex-go/internal/repository"
	"github.com/anime-shed/vegindex-go/internal/storage"
	"github.com/anime-shed/vegindex-go/internal/strategy"
	"github.com/anime-shed/vegindex-go/internal/visual"
	"github.com/anime-shed/vegindex-go/pkg/models"
	"github.com/anime-shed/vegindex-go/pkg/rgbvi"
	"github.com/anime-shed/vegindex-go/pkg/validation"
)

// IndexService fetches images and computes, summarises and renders indices
type IndexService interface {
	ListFormulas() models.FormulaListResponse
	ComputeIndices(ctx context.Context, request models.ComputeRequest) (*models.IndexReport, error)
	RenderIndex(ctx context.Context, formula string, request models.RenderRequest) ([]byte, error)
	ValidateImageURL(imageURL string) error
}

// Settings carries the service defaults taken from configuration
type Settings struct {
	VegetationThreshold float64
	DegeneracyThreshold float64
	DefaultColormap     string
	// AnalysisTimeout bounds computation after the image was fetched. Zero disables it.
	AnalysisTimeout time.Duration
}

// DefaultSettings returns the settings used when configuration is absent
func DefaultSettings() Settings {
	return Settings{
		VegetationThreshold: analyzer.DefaultVegetationThreshold,
		DegeneracyThreshold: analyzer.DefaultDegeneracyThreshold,
		DefaultColormap:     visual.Vegetation,
	}
}

// indexService implements IndexService
type indexService struct {
	imageRepo repository.ImageRepository
	analyzer  analyzer.IndexAnalyzer
	quality   *validation.QualityValidator
	events    observer.Subject
	settings  Settings
}

// NewIndexService creates a new index service
func NewIndexService(
	imageRepository repository.ImageRepository,
	indexAnalyzer analyzer.IndexAnalyzer,
	events observer.Subject,
	settings Settings,
) IndexService {
	return &indexService{
		imageRepo: imageRepository,
		analyzer:  indexAnalyzer,
		quality:   validation.NewQualityValidator(),
		events:    events,
		settings:  settings,
	}
}

// ListFormulas describes the registry
func (s *indexService) ListFormulas() models.FormulaListResponse {
	linear, normalized := rgbvi.LinearNames(), rgbvi.NormalizedNames()
	infos := lo.Map(rgbvi.All(), func(f rgbvi.Formula, _ int) models.FormulaInfo {
		info := models.FormulaInfo{
			Name:        f.Name,
			Title:       f.Title,
			Citation:    f.Citation,
			Kind:        f.Kind.String(),
			Ratio:       f.Ratio,
			Discrepancy: f.Discrepancy,
			Collections: []string{},
		}
		if f.Kind == rgbvi.KindFixed {
			info.Range = []float64{f.Lower, f.Upper}
		}
		if lo.Contains(linear, f.Name) {
			info.Collections = append(info.Collections, strategy.CollectionLinear)
		}
		if lo.Contains(normalized, f.Name) {
			info.Collections = append(info.Collections, strategy.CollectionNormalized)
		}
		return info
	})

	return models.FormulaListResponse{
		Formulas:   infos,
		Linear:     linear,
		Normalized: normalized,
		Colormaps:  visual.ColormapNames(),
	}
}

// ComputeIndices fetches the image, computes the selected indices and
// attaches quality findings to the report.
func (s *indexService) ComputeIndices(ctx context.Context, request models.ComputeRequest) (*models.IndexReport, error) {
	selection, err := strategy.ForRequest(request.Collection, request.Formulas)
	if err != nil {
		if errors.Is(err, rgbvi.ErrUnknownFormula) {
			return nil, apperrors.FromCoreError(err)
		}
		return nil, apperrors.NewValidationError(err.Error(), err)
	}

	threshold := s.settings.VegetationThreshold
	if request.VegetationThreshold != nil {
		threshold = *request.VegetationThreshold
		if threshold < 0 || threshold > 1 {
			return nil, apperrors.NewValidationError("vegetation_threshold must be within [0, 1]", nil)
		}
	}

	img, err := s.loadImage(ctx, request.URL, request.CLAHE)
	if err != nil {
		return nil, err
	}

	formulas := selection.Formulas()
	start := time.Now()
	s.publish(ctx, observer.IndexEvent{EventType: observer.ComputationStarted, ImageURL: request.URL, Formulas: formulas})

	ctx, cancel := s.withAnalysisTimeout(ctx)
	defer cancel()

	options := analyzer.DefaultOptions().
		WithVegetationThreshold(threshold).
		WithDegeneracyThreshold(s.settings.DegeneracyThreshold).
		WithHook(s.diagnosticsHook(ctx, request.URL))

	report, err := strategy.NewAnalysisContext(s.analyzer, selection).ExecuteAnalysis(ctx, img, options)
	if err != nil {
		s.publish(ctx, observer.IndexEvent{
			EventType:      observer.ComputationFailed,
			ImageURL:       request.URL,
			Formulas:       formulas,
			ProcessingTime: time.Since(start),
			ErrorMessage:   err.Error(),
		})
		return nil, apperrors.FromCoreError(err)
	}

	report.ImageURL = request.URL
	report.QualityIssues = s.quality.ValidateImage(img)
	if s.quality.HasCriticalIssues(report.QualityIssues) {
		report.Errors = s.quality.ConvertIssuesToMessages(lo.Filter(report.QualityIssues, func(issue validation.QualityIssue, _ int) bool {
			return issue.Severity == validation.SeverityError
		}))
	}

	s.publish(ctx, observer.IndexEvent{
		EventType:      observer.ComputationCompleted,
		ImageURL:       request.URL,
		Formulas:       formulas,
		ProcessingTime: time.Since(start),
		Success:        true,
	})
	return report, nil
}

// RenderIndex computes one index and encodes it as a PNG through a colormap
func (s *indexService) RenderIndex(ctx context.Context, formula string, request models.RenderRequest) ([]byte, error) {
	if _, ok := rgbvi.Lookup(formula); !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("unknown formula %q", formula), rgbvi.ErrUnknownFormula)
	}

	name := request.Colormap
	if name == "" {
		name = s.settings.DefaultColormap
	}
	cm, err := visual.ColormapByName(name)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), err)
	}

	img, err := s.loadImage(ctx, request.URL, request.CLAHE)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	ctx, cancel := s.withAnalysisTimeout(ctx)
	defer cancel()

	options := analyzer.DefaultOptions().
		WithDegeneracyThreshold(s.settings.DegeneracyThreshold).
		WithHook(s.diagnosticsHook(ctx, request.URL))
	result, err := s.analyzer.Compute(ctx, img, formula, options)
	if err != nil {
		return nil, apperrors.FromCoreError(err)
	}

	data, err := visual.RenderPNG(result, cm)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode image", err)
	}

	s.publish(ctx, observer.IndexEvent{
		EventType:      observer.RenderCompleted,
		ImageURL:       request.URL,
		Formulas:       []string{formula},
		ProcessingTime: time.Since(start),
		Success:        true,
		Metadata:       map[string]interface{}{"colormap": cm.Name(), "bytes": len(data)},
	})
	return data, nil
}

// ValidateImageURL validates the image URL
func (s *indexService) ValidateImageURL(imageURL string) error {
	return s.imageRepo.ValidateImageURL(imageURL)
}

// loadImage validates, fetches and converts the image, optionally
// equalizing it first.
func (s *indexService) loadImage(ctx context.Context, imageURL string, clahe bool) (*rgbvi.Image, error) {
	if err := s.ValidateImageURL(imageURL); err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperrors.NewValidationError("invalid image URL", err)
	}

	start := time.Now()
	img, err := s.imageRepo.FetchImage(ctx, imageURL)
	if err != nil {
		s.publish(ctx, observer.IndexEvent{
			EventType:      observer.ImageFetchFailed,
			ImageURL:       imageURL,
			ProcessingTime: time.Since(start),
			ErrorMessage:   err.Error(),
		})
		return nil, fetchError(err)
	}
	s.publish(ctx, observer.IndexEvent{
		EventType:      observer.ImageFetched,
		ImageURL:       imageURL,
		ProcessingTime: time.Since(start),
		Success:        true,
		Metadata:       map[string]interface{}{"width": img.Bounds().Dx(), "height": img.Bounds().Dy()},
	})

	if clahe {
		img = visual.CLAHE(img, visual.DefaultCLAHEOptions())
	}
	return rgbvi.FromImage(img), nil
}

func fetchError(err error) error {
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewTimeoutError("image fetch timed out", err)
	case errors.Is(err, storage.ErrImageTooLarge):
		return apperrors.NewValidationError("image exceeds the size limit", err)
	case errors.Is(err, storage.ErrOutsideRoot):
		return apperrors.NewValidationError("image path is outside the served directory", err)
	case errors.Is(err, fs.ErrNotExist):
		return apperrors.NewNotFoundError("image not found", err)
	case errors.Is(err, image.ErrFormat):
		return apperrors.NewInvalidImageError("unsupported image format", err)
	default:
		return apperrors.NewNetworkError("failed to fetch image", err)
	}
}

func (s *indexService) withAnalysisTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.settings.AnalysisTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.settings.AnalysisTimeout)
}

// diagnosticsHook logs diagnostics and republishes degeneracy as events.
func (s *indexService) diagnosticsHook(ctx context.Context, imageURL string) rgbvi.Hook {
	logHook := logger.DiagnosticsHook(logger.WithFields(logrus.Fields{"image_url": imageURL}))
	if s.events == nil {
		return logHook
	}
	eventHook := observer.DiagnosticsHook(ctx, s.events, imageURL)
	return func(d rgbvi.Diagnostic) {
		logHook(d)
		eventHook(d)
	}
}

func (s *indexService) publish(ctx context.Context, event observer.IndexEvent) {
	if s.events != nil {
		s.events.NotifyObservers(ctx, event)
	}
}
