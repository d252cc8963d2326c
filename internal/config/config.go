package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/anime-shed/vegindex-go/internal/visual"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	ImageFetchTimeout  time.Duration
	AnalysisTimeout    time.Duration
	MaxRequestBodySize int64
	MaxImageBytes      int64
	MaxImagePixels     int64

	// Index computation
	MaxWorkers          int
	VegetationThreshold float64
	DegeneracyThreshold float64
	DefaultColormap     string

	// Azure blob sources; both empty disables azure:// references
	AzureStorageAccount string
	AzureStorageKey     string

	// AllowedHosts restricts http(s) sources; empty allows any host.
	AllowedHosts []string
	// LocalImageRoot enables file:// references below this directory.
	LocalImageRoot string

	LogLevel string
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// AzureEnabled reports whether blob credentials were supplied.
func (c *Config) AzureEnabled() bool {
	return c.AzureStorageAccount != "" && c.AzureStorageKey != ""
}

// LocalEnabled reports whether file:// references are served.
func (c *Config) LocalEnabled() bool {
	return c.LocalImageRoot != ""
}

func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Host:                getEnvOrDefault("HOST", "0.0.0.0"),
		Port:                getEnvOrDefault("PORT", "8080"),
		RequestTimeout:      parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		ImageFetchTimeout:   parseDurationOrDefault("IMAGE_FETCH_TIMEOUT", 15*time.Second),
		AnalysisTimeout:     parseDurationOrDefault("ANALYSIS_TIMEOUT", 20*time.Second),
		MaxRequestBodySize:  parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 10*1024*1024), // 10MB
		MaxImageBytes:       parseIntOrDefault("MAX_IMAGE_BYTES", 50*1024*1024),
		MaxImagePixels:      parseIntOrDefault("MAX_IMAGE_PIXELS", 40_000_000),
		MaxWorkers:          int(parseIntOrDefault("MAX_WORKERS", 0)),
		VegetationThreshold: parseFloatOrDefault("VEGETATION_THRESHOLD", 0.5),
		DegeneracyThreshold: parseFloatOrDefault("DEGENERACY_THRESHOLD", 0.05),
		DefaultColormap:     strings.ToLower(getEnvOrDefault("DEFAULT_COLORMAP", visual.Vegetation)),
		AzureStorageAccount: strings.TrimSpace(os.Getenv("AZURE_STORAGE_ACCOUNT")),
		AzureStorageKey:     strings.TrimSpace(os.Getenv("AZURE_STORAGE_KEY")),
		AllowedHosts:        parseListOrDefault("ALLOWED_HOSTS"),
		LocalImageRoot:      strings.TrimSpace(os.Getenv("LOCAL_IMAGE_ROOT")),
		LogLevel:            strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges that cannot be corrected by falling back to defaults.
func (c *Config) Validate() error {
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.MaxImageBytes <= 0 {
		return fmt.Errorf("MAX_IMAGE_BYTES must be > 0 (got %d)", c.MaxImageBytes)
	}
	if c.MaxImagePixels <= 0 {
		return fmt.Errorf("MAX_IMAGE_PIXELS must be > 0 (got %d)", c.MaxImagePixels)
	}
	if c.RequestTimeout <= 0 || c.ImageFetchTimeout <= 0 || c.AnalysisTimeout <= 0 {
		return fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s, analysis=%s)",
			c.RequestTimeout, c.ImageFetchTimeout, c.AnalysisTimeout)
	}
	if c.MaxWorkers < 0 {
		return fmt.Errorf("MAX_WORKERS must be >= 0 (got %d)", c.MaxWorkers)
	}
	if c.VegetationThreshold < 0 || c.VegetationThreshold > 1 {
		return fmt.Errorf("VEGETATION_THRESHOLD must be within [0, 1] (got %g)", c.VegetationThreshold)
	}
	if c.DegeneracyThreshold < 0 || c.DegeneracyThreshold > 1 {
		return fmt.Errorf("DEGENERACY_THRESHOLD must be within [0, 1] (got %g)", c.DegeneracyThreshold)
	}
	if _, err := visual.ColormapByName(c.DefaultColormap); err != nil {
		return fmt.Errorf("invalid DEFAULT_COLORMAP: %w", err)
	}
	if (c.AzureStorageAccount == "") != (c.AzureStorageKey == "") {
		return fmt.Errorf("AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY must be set together")
	}
	if c.LocalImageRoot != "" && !filepath.IsAbs(c.LocalImageRoot) {
		return fmt.Errorf("LOCAL_IMAGE_ROOT must be an absolute path (got %q)", c.LocalImageRoot)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// parseListOrDefault splits a comma separated variable, dropping empty items.
func parseListOrDefault(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.ToLower(strings.TrimSpace(item)); item != "" {
			out = append(out, item)
		}
	}
	return out
}
