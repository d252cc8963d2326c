package factory

import (
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/anime-shed/vegindex-go/internal/config"
	"github.com/anime-shed/vegindex-go/internal/storage"
)

func testConfig() *config.Config {
	return &config.Config{
		Host:               "127.0.0.1",
		Port:               "8080",
		RequestTimeout:     time.Second,
		ImageFetchTimeout:  time.Second,
		AnalysisTimeout:    time.Second,
		MaxRequestBodySize: 1024,
		MaxImageBytes:      1 << 20,
		MaxImagePixels:     1 << 20,
		MaxWorkers:         2,
		DefaultColormap:    "vegetation",
		LogLevel:           "info",
	}
}

func TestCreateStorage(t *testing.T) {
	cfg := testConfig()
	cfg.LocalImageRoot = "/srv/plots"
	f := NewStorageFactory(cfg)

	web, err := f.CreateStorage(HTTPStorage)
	if err != nil {
		t.Fatalf("http: %v", err)
	}
	if _, ok := web.(*storage.HTTPImageFetcher); !ok {
		t.Errorf("Expected *storage.HTTPImageFetcher, got %T", web)
	}

	local, err := f.CreateStorage(LocalStorage)
	if err != nil {
		t.Fatalf("local: %v", err)
	}
	if fl, ok := local.(*storage.FileImageFetcher); !ok || fl.Root != "/srv/plots" {
		t.Errorf("Expected file fetcher rooted at /srv/plots, got %#v", local)
	}

	if _, err := f.CreateStorage(AzureStorage); err == nil {
		t.Error("Expected azure to fail without credentials")
	}
	if _, err := f.CreateStorage("ftp"); err == nil {
		t.Error("Expected error for unsupported storage type")
	}
}

func TestCreateRepository_Schemes(t *testing.T) {
	tests := []struct {
		name   string
		adjust func(*config.Config)
		want   []string
	}{
		{"web only", func(*config.Config) {}, []string{"http", "https"}},
		{"with local", func(c *config.Config) { c.LocalImageRoot = "/srv" }, []string{"file", "http", "https"}},
		{
			"with azure",
			func(c *config.Config) {
				c.AzureStorageAccount = "fields"
				c.AzureStorageKey = "c2VjcmV0"
			},
			[]string{"azure", "http", "https"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.adjust(cfg)
			repo, err := NewStorageFactory(cfg).CreateRepository()
			if err != nil {
				t.Fatalf("CreateRepository: %v", err)
			}
			if got := repo.Schemes(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Schemes = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComponentFactory(t *testing.T) {
	f := NewComponentFactory(testConfig())
	a, err := f.AnalyzerFactory.CreateAnalyzer()
	if err != nil {
		t.Fatalf("CreateAnalyzer: %v", err)
	}
	defer a.Close()
	if f.StorageFactory == nil {
		t.Error("Expected storage factory")
	}
}

func TestCreateStorage_PixelLimit(t *testing.T) {
	dir := t.TempDir()
	f, err := os.Create(filepath.Join(dir, "wide.png"))
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	if err := png.Encode(f, image.NewGray(image.Rect(0, 0, 100, 100))); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	f.Close()

	cfg := testConfig()
	cfg.LocalImageRoot = dir
	cfg.MaxImagePixels = 5000
	local, err := NewStorageFactory(cfg).CreateStorage(LocalStorage)
	if err != nil {
		t.Fatalf("local: %v", err)
	}

	if _, err := local.FetchImage(context.Background(), "wide.png"); !errors.Is(err, storage.ErrImageTooLarge) {
		t.Errorf("Expected ErrImageTooLarge from configured pixel limit, got %v", err)
	}
}
