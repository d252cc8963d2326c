package storage

import (
	"context"
	"fmt"
	"image"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const maxFetchAttempts = 3

// HTTPOptions tunes the HTTP fetcher.
type HTTPOptions struct {
	Timeout time.Duration
	// Backoff is multiplied by the attempt number between retries.
	Backoff time.Duration
	Limits  Limits
	Logger  *logrus.Logger
}

// DefaultHTTPOptions returns the production settings.
func DefaultHTTPOptions() HTTPOptions {
	return HTTPOptions{
		Timeout: 30 * time.Second,
		Backoff: time.Second,
		Limits:  DefaultLimits(),
	}
}

// HTTPImageFetcher downloads images over HTTP(S) with retries on transient failures.
type HTTPImageFetcher struct {
	client  *http.Client
	backoff time.Duration
	limits  Limits
	log     *logrus.Logger
}

// NewHTTPImageFetcher creates an HTTP image fetcher with default options.
func NewHTTPImageFetcher() *HTTPImageFetcher {
	return NewHTTPImageFetcherWithOptions(DefaultHTTPOptions())
}

func NewHTTPImageFetcherWithOptions(opts HTTPOptions) *HTTPImageFetcher {
	transport := &http.Transport{
		MaxIdleConns:           10,
		MaxIdleConnsPerHost:    2,
		IdleConnTimeout:        30 * time.Second,
		TLSHandshakeTimeout:    10 * time.Second,
		ResponseHeaderTimeout:  10 * time.Second,
		ExpectContinueTimeout:  1 * time.Second,
		MaxResponseHeaderBytes: 4096,
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}

	return &HTTPImageFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
		backoff: opts.Backoff,
		limits:  opts.Limits,
		log:     opts.Logger,
	}
}

// FetchImage downloads and decodes imageURL. Network errors and 5xx
// responses are retried up to three attempts; 4xx responses are not.
func (h *HTTPImageFetcher) FetchImage(ctx context.Context, imageURL string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("Accept", "image/png, image/jpeg, image/webp, image/tiff, image/gif, */*")
	req.Header.Set("User-Agent", "vegindex/1.0")

	var lastErr error
	for attempt := 1; attempt <= maxFetchAttempts; attempt++ {
		resp, err := h.client.Do(req)
		switch {
		case err != nil:
			lastErr = err
		case resp.StatusCode == http.StatusOK:
			defer resp.Body.Close()
			img, _, err := decode(resp.Body, h.limits)
			return img, err
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			resp.Body.Close()
			return nil, fmt.Errorf("failed to fetch image: client error: status code %d", resp.StatusCode)
		case resp.StatusCode >= 500:
			resp.Body.Close()
			lastErr = fmt.Errorf("server error: status code %d", resp.StatusCode)
		default:
			resp.Body.Close()
			return nil, fmt.Errorf("failed to fetch image: unexpected status code %d", resp.StatusCode)
		}

		if attempt == maxFetchAttempts {
			break
		}
		h.log.WithFields(logrus.Fields{
			"url":     imageURL,
			"attempt": attempt,
			"error":   lastErr.Error(),
		}).Debug("Retrying image fetch")

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("failed to fetch image: %w", ctx.Err())
		case <-time.After(time.Duration(attempt) * h.backoff):
		}
	}

	return nil, fmt.Errorf("failed to fetch image after %d attempts: %w", maxFetchAttempts, lastErr)
}
