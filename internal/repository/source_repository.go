package repository

import (
	"context"
	"fmt"
	"image"
	"net/url"
	"sort"
	"strings"

	"github.com/anime-shed/vegindex-go/internal/storage"
	"github.com/anime-shed/vegindex-go/pkg/validation"
)

// SourceRepository implements ImageRepository by dispatching on the URL
// scheme to one fetcher per source.
type SourceRepository struct {
	fetchers  map[string]storage.ImageFetcher
	validator *validation.URLValidator
}

// NewSourceRepository registers fetchers keyed by scheme. allowedHosts
// restricts http and https references; empty allows every host.
func NewSourceRepository(fetchers map[string]storage.ImageFetcher, allowedHosts []string) *SourceRepository {
	registered := make(map[string]storage.ImageFetcher, len(fetchers))
	for scheme, f := range fetchers {
		registered[strings.ToLower(scheme)] = f
	}
	r := &SourceRepository{fetchers: registered}
	r.validator = validation.NewURLValidatorWithOptions(r.Schemes(), allowedHosts)
	return r
}

// Schemes returns the registered schemes in lexical order
func (r *SourceRepository) Schemes() []string {
	schemes := make([]string, 0, len(r.fetchers))
	for scheme := range r.fetchers {
		schemes = append(schemes, scheme)
	}
	sort.Strings(schemes)
	return schemes
}

// ValidateImageURL checks ref against the registered schemes
func (r *SourceRepository) ValidateImageURL(ref string) error {
	if strings.TrimSpace(ref) == "" {
		return ErrInvalidImageURL
	}
	return r.validator.ValidateImageURL(ref)
}

// FetchImage validates ref and hands it to the fetcher for its scheme
func (r *SourceRepository) FetchImage(ctx context.Context, ref string) (image.Image, error) {
	if err := r.ValidateImageURL(ref); err != nil {
		return nil, err
	}
	u, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImageURL, err)
	}
	fetcher, ok := r.fetchers[u.Scheme]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
	return fetcher.FetchImage(ctx, ref)
}
