package container

import (
	"fmt"
	"net/http"

	"github.com/anime-shed/vegindex-go/internal/analyzer"
	"github.com/anime-shed/vegindex-go/internal/config"
	"github.com/anime-shed/vegindex-go/internal/factory"
	"github.com/anime-shed/vegindex-go/internal/logger"
	"github.com/anime-shed/vegindex-go/internal/observer"
	"github.com/anime-shed/vegindex-go/internal/repository"
	"github.com/anime-shed/vegindex-go/internal/service"
	"github.com/anime-shed/vegindex-go/internal/transport"
)

// Container holds all application dependencies
type Container struct {
	config          *config.Config
	indexAnalyzer   analyzer.IndexAnalyzer
	imageRepository repository.ImageRepository
	publisher       *observer.EventPublisher
	metrics         *observer.MetricsObserver
	indexService    service.IndexService
	handler         http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	logger.SetLevel(cfg.LogLevel)

	// Build dependency graph
	components := factory.NewComponentFactory(cfg)

	imageRepository, err := components.StorageFactory.CreateRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to create image repository: %w", err)
	}

	indexAnalyzer, err := components.AnalyzerFactory.CreateAnalyzer()
	if err != nil {
		return nil, fmt.Errorf("failed to create analyzer: %w", err)
	}

	metrics := observer.NewMetricsObserver()
	publisher := observer.NewEventPublisher()
	publisher.Subscribe(observer.NewLoggingObserver(logger.Logger))
	publisher.Subscribe(metrics)

	indexService := service.NewIndexService(imageRepository, indexAnalyzer, publisher, service.Settings{
		VegetationThreshold: cfg.VegetationThreshold,
		DegeneracyThreshold: cfg.DegeneracyThreshold,
		DefaultColormap:     cfg.DefaultColormap,
		AnalysisTimeout:     cfg.AnalysisTimeout,
	})
	handler := transport.NewHandler(indexService, cfg)

	logger.WithField("schemes", imageRepository.Schemes()).Info("Container initialized")

	return &Container{
		config:          cfg,
		indexAnalyzer:   indexAnalyzer,
		imageRepository: imageRepository,
		publisher:       publisher,
		metrics:         metrics,
		indexService:    indexService,
		handler:         handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Service returns the index service
func (c *Container) Service() service.IndexService {
	return c.indexService
}

// Metrics returns a snapshot of the event counters.
func (c *Container) Metrics() observer.Metrics {
	return c.metrics.GetMetrics()
}

// Close stops the analyzer workers and drains pending event notifications.
func (c *Container) Close() error {
	err := c.indexAnalyzer.Close()
	c.publisher.Wait()
	return err
}
