// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// DefaultMaxBytes caps a single download.
const DefaultMaxBytes = 20 << 20

// ErrTooLarge is returned when a resource exceeds the size cap.
var ErrTooLarge = errors.New("resource exceeds size limit")

// Fetcher downloads http and https resources.
type Fetcher struct {
	Client     *http.Client
	MaxBytes   int64
	MaxRetries int
	Log        *slog.Logger
}

// NewFetcher returns a Fetcher whose requests time out after timeout.
func NewFetcher(timeout time.Duration, log *slog.Logger) *Fetcher {
	return &Fetcher{
		Client:   &http.Client{Timeout: timeout},
		MaxBytes: DefaultMaxBytes,
		Log:      log,
	}
}

// Fetch downloads rawURL and returns its body and Content-Type.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", fmt.Errorf("parsing %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := DoWithRetry(ctx, f.Client, req, f.MaxRetries, f.Log)
	if err != nil {
		return nil, "", fmt.Errorf("fetching %s: %w", u.Redacted(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetching %s: HTTP %d", u.Redacted(), resp.StatusCode)
	}

	limit := f.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", u.Redacted(), err)
	}
	if int64(len(data)) > limit {
		return nil, "", fmt.Errorf("%w: %s", ErrTooLarge, u.Redacted())
	}
	return data, resp.Header.Get("Content-Type"), nil
}
