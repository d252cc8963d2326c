package validation

import (
	"net/url"
	"strings"

	apperrors "github.com/anime-shed/vegindex-go/internal/errors"
)

// Source schemes understood by the image repository.
const (
	SchemeHTTP  = "http"
	SchemeHTTPS = "https"
	SchemeAzure = "azure"
	SchemeFile  = "file"
)

// URLValidator handles URL validation logic
type URLValidator struct {
	allowedSchemes []string
	allowedHosts   []string
}

// NewURLValidator accepts http and https URLs on any host.
func NewURLValidator() *URLValidator {
	return &URLValidator{
		allowedSchemes: []string{SchemeHTTP, SchemeHTTPS},
		allowedHosts:   []string{}, // empty means all hosts allowed
	}
}

// NewURLValidatorWithOptions creates a URL validator with custom options.
// allowedHosts only restricts http and https URLs.
func NewURLValidatorWithOptions(schemes []string, hosts []string) *URLValidator {
	return &URLValidator{
		allowedSchemes: schemes,
		allowedHosts:   hosts,
	}
}

// Schemes returns the accepted schemes.
func (v *URLValidator) Schemes() []string {
	return append([]string(nil), v.allowedSchemes...)
}

// ValidateImageURL validates if the provided URL is acceptable for image processing
func (v *URLValidator) ValidateImageURL(imageURL string) error {
	if strings.TrimSpace(imageURL) == "" {
		return apperrors.NewValidationError("URL cannot be empty", nil)
	}

	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return apperrors.NewValidationError("Invalid URL format", err)
	}

	if !v.isSchemeAllowed(parsedURL.Scheme) {
		return apperrors.NewValidationError("URL scheme not allowed", nil)
	}

	switch parsedURL.Scheme {
	case SchemeFile:
		if parsedURL.Host != "" && parsedURL.Host != "localhost" {
			return apperrors.NewValidationError("file URL must not name a remote host", nil)
		}
		if parsedURL.Path == "" {
			return apperrors.NewValidationError("file URL must have a path", nil)
		}
	case SchemeAzure:
		if parsedURL.Host == "" {
			return apperrors.NewValidationError("blob URL must name a container", nil)
		}
		if strings.TrimPrefix(parsedURL.Path, "/") == "" {
			return apperrors.NewValidationError("blob URL must name a blob", nil)
		}
	default:
		if parsedURL.Host == "" {
			return apperrors.NewValidationError("URL must have a valid host", nil)
		}
		if !v.isHostAllowed(parsedURL.Hostname()) {
			return apperrors.NewValidationError("URL host not allowed", nil)
		}
	}

	return nil
}

// isSchemeAllowed checks if the URL scheme is in the allowed list
func (v *URLValidator) isSchemeAllowed(scheme string) bool {
	for _, allowed := range v.allowedSchemes {
		if scheme == allowed {
			return true
		}
	}
	return false
}

// isHostAllowed returns true if no host restrictions are set
func (v *URLValidator) isHostAllowed(host string) bool {
	if len(v.allowedHosts) == 0 {
		return true
	}
	for _, allowed := range v.allowedHosts {
		if host == allowed {
			return true
		}
	}
	return false
}
