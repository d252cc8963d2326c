package factory

import (
	"fmt"

	"github.com/anime-shed/vegindex-go/internal/analyzer"
	"github.com/anime-shed/vegindex-go/internal/config"
	"github.com/anime-shed/vegindex-go/internal/logger"
	"github.com/anime-shed/vegindex-go/internal/repository"
	"github.com/anime-shed/vegindex-go/internal/storage"
	"github.com/anime-shed/vegindex-go/pkg/validation"
)

// StorageType represents different types of storage backends
type StorageType string

const (
	// HTTPStorage for HTTP-based image fetching
	HTTPStorage StorageType = "http"
	// AzureStorage for Azure blob storage
	AzureStorage StorageType = "azure"
	// LocalStorage for local file system
	LocalStorage StorageType = "local"
)

// AnalyzerFactory creates index analyzers
type AnalyzerFactory interface {
	CreateAnalyzer() (analyzer.IndexAnalyzer, error)
}

// StorageFactory creates storage implementations
type StorageFactory interface {
	CreateStorage(storageType StorageType) (storage.ImageFetcher, error)
	// CreateRepository registers every source the configuration enables.
	CreateRepository() (repository.ImageRepository, error)
}

// analyzerFactory implements AnalyzerFactory
type analyzerFactory struct {
	workers int
}

// NewAnalyzerFactory creates a new analyzer factory
func NewAnalyzerFactory(cfg *config.Config) AnalyzerFactory {
	return &analyzerFactory{workers: cfg.MaxWorkers}
}

// CreateAnalyzer creates an analyzer sized from the configuration
func (f *analyzerFactory) CreateAnalyzer() (analyzer.IndexAnalyzer, error) {
	return analyzer.NewIndexAnalyzerWithWorkers(f.workers)
}

// storageFactory implements StorageFactory
type storageFactory struct {
	cfg *config.Config
}

// NewStorageFactory creates a new storage factory
func NewStorageFactory(cfg *config.Config) StorageFactory {
	return &storageFactory{cfg: cfg}
}

// CreateStorage creates a storage implementation based on the specified type
func (f *storageFactory) CreateStorage(storageType StorageType) (storage.ImageFetcher, error) {
	switch storageType {
	case HTTPStorage:
		opts := storage.DefaultHTTPOptions()
		opts.Timeout = f.cfg.ImageFetchTimeout
		opts.Limits = f.limits()
		opts.Logger = logger.Logger
		return storage.NewHTTPImageFetcherWithOptions(opts), nil
	case AzureStorage:
		if !f.cfg.AzureEnabled() {
			return nil, fmt.Errorf("azure storage requires AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY")
		}
		blob, err := storage.NewAzureBlobFetcher(f.cfg.AzureStorageAccount, f.cfg.AzureStorageKey, f.limits())
		if err != nil {
			return nil, err
		}
		return blob, nil
	case LocalStorage:
		if !f.cfg.LocalEnabled() {
			return nil, fmt.Errorf("local storage requires LOCAL_IMAGE_ROOT")
		}
		return storage.NewFileImageFetcher(f.cfg.LocalImageRoot, f.limits()), nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}

func (f *storageFactory) limits() storage.Limits {
	return storage.Limits{MaxBytes: f.cfg.MaxImageBytes, MaxPixels: f.cfg.MaxImagePixels}
}

func (f *storageFactory) CreateRepository() (repository.ImageRepository, error) {
	web, err := f.CreateStorage(HTTPStorage)
	if err != nil {
		return nil, err
	}
	fetchers := map[string]storage.ImageFetcher{
		validation.SchemeHTTP:  web,
		validation.SchemeHTTPS: web,
	}

	if f.cfg.AzureEnabled() {
		blob, err := f.CreateStorage(AzureStorage)
		if err != nil {
			return nil, err
		}
		fetchers[validation.SchemeAzure] = blob
	}
	if f.cfg.LocalEnabled() {
		local, err := f.CreateStorage(LocalStorage)
		if err != nil {
			return nil, err
		}
		fetchers[validation.SchemeFile] = local
	}

	return repository.NewSourceRepository(fetchers, f.cfg.AllowedHosts), nil
}

// ComponentFactory combines all factories
type ComponentFactory struct {
	AnalyzerFactory AnalyzerFactory
	StorageFactory  StorageFactory
}

// NewComponentFactory creates a new component factory
func NewComponentFactory(cfg *config.Config) *ComponentFactory {
	return &ComponentFactory{
		AnalyzerFactory: NewAnalyzerFactory(cfg),
		StorageFactory:  NewStorageFactory(cfg),
	}
}
