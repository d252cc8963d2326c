package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{
		"HOST", "PORT", "REQUEST_TIMEOUT", "IMAGE_FETCH_TIMEOUT", "ANALYSIS_TIMEOUT",
		"MAX_REQUEST_BODY_SIZE", "MAX_IMAGE_BYTES", "MAX_IMAGE_PIXELS", "MAX_WORKERS", "VEGETATION_THRESHOLD",
		"DEGENERACY_THRESHOLD", "DEFAULT_COLORMAP", "AZURE_STORAGE_ACCOUNT", "AZURE_STORAGE_KEY", "LOG_LEVEL",
		"ALLOWED_HOSTS", "LOCAL_IMAGE_ROOT",
	} {
		t.Setenv(key, "")
	}

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.ServerAddress() != "0.0.0.0:8080" {
		t.Errorf("expected 0.0.0.0:8080, got %s", cfg.ServerAddress())
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("expected 30s request timeout, got %s", cfg.RequestTimeout)
	}
	if cfg.VegetationThreshold != 0.5 {
		t.Errorf("expected vegetation threshold 0.5, got %g", cfg.VegetationThreshold)
	}
	if cfg.MaxImagePixels != 40_000_000 {
		t.Errorf("expected 40M pixel limit, got %d", cfg.MaxImagePixels)
	}
	if cfg.DegeneracyThreshold != 0.05 {
		t.Errorf("expected degeneracy threshold 0.05, got %g", cfg.DegeneracyThreshold)
	}
	if cfg.DefaultColormap != "vegetation" {
		t.Errorf("expected vegetation colormap, got %s", cfg.DefaultColormap)
	}
	if cfg.AzureEnabled() {
		t.Error("expected azure to be disabled without credentials")
	}
	if cfg.LocalEnabled() || len(cfg.AllowedHosts) != 0 {
		t.Errorf("expected no local root and no host restriction, got %q %v", cfg.LocalImageRoot, cfg.AllowedHosts)
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", " 9090 ")
	t.Setenv("MAX_WORKERS", "3")
	t.Setenv("MAX_IMAGE_PIXELS", "1000000")
	t.Setenv("VEGETATION_THRESHOLD", "0.65")
	t.Setenv("DEFAULT_COLORMAP", "Viridis")
	t.Setenv("AZURE_STORAGE_ACCOUNT", "fields")
	t.Setenv("AZURE_STORAGE_KEY", "c2VjcmV0")
	t.Setenv("ANALYSIS_TIMEOUT", "not-a-duration")
	t.Setenv("ALLOWED_HOSTS", " Tiles.example.com, ,cdn.example.com")
	t.Setenv("LOCAL_IMAGE_ROOT", "/srv/plots")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.ServerAddress() != "127.0.0.1:9090" {
		t.Errorf("unexpected address %s", cfg.ServerAddress())
	}
	if cfg.MaxWorkers != 3 {
		t.Errorf("expected 3 workers, got %d", cfg.MaxWorkers)
	}
	if cfg.MaxImagePixels != 1000000 {
		t.Errorf("expected 1000000 pixel limit, got %d", cfg.MaxImagePixels)
	}
	if cfg.VegetationThreshold != 0.65 {
		t.Errorf("expected 0.65, got %g", cfg.VegetationThreshold)
	}
	if cfg.DefaultColormap != "viridis" {
		t.Errorf("expected viridis, got %s", cfg.DefaultColormap)
	}
	if !cfg.AzureEnabled() {
		t.Error("expected azure to be enabled")
	}
	if cfg.AnalysisTimeout != 20*time.Second {
		t.Errorf("malformed duration should fall back to default, got %s", cfg.AnalysisTimeout)
	}
	if len(cfg.AllowedHosts) != 2 || cfg.AllowedHosts[0] != "tiles.example.com" || cfg.AllowedHosts[1] != "cdn.example.com" {
		t.Errorf("unexpected allowed hosts %v", cfg.AllowedHosts)
	}
	if !cfg.LocalEnabled() {
		t.Error("expected local sources to be enabled")
	}
}

func TestLoadFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"port out of range", "PORT", "70000", "invalid PORT"},
		{"port not numeric", "PORT", "http", "invalid PORT"},
		{"negative body size", "MAX_REQUEST_BODY_SIZE", "-1", "MAX_REQUEST_BODY_SIZE"},
		{"zero pixel limit", "MAX_IMAGE_PIXELS", "0", "MAX_IMAGE_PIXELS"},
		{"negative workers", "MAX_WORKERS", "-2", "MAX_WORKERS"},
		{"threshold above one", "VEGETATION_THRESHOLD", "1.5", "VEGETATION_THRESHOLD"},
		{"negative degeneracy", "DEGENERACY_THRESHOLD", "-0.1", "DEGENERACY_THRESHOLD"},
		{"unknown colormap", "DEFAULT_COLORMAP", "jet", "DEFAULT_COLORMAP"},
		{"half azure credentials", "AZURE_STORAGE_ACCOUNT", "fields", "AZURE_STORAGE_KEY"},
		{"unknown log level", "LOG_LEVEL", "chatty", "LOG_LEVEL"},
		{"relative local root", "LOCAL_IMAGE_ROOT", "plots", "LOCAL_IMAGE_ROOT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("AZURE_STORAGE_KEY", "")
			t.Setenv(tt.key, tt.value)

			_, err := LoadFromEnv()
			if err == nil {
				t.Fatal("expected error, got none")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error to contain %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}
