// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil downloads resources referenced by source documents.
package httputil

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// RetryBaseDelay is the first backoff delay. Tests override it.
var RetryBaseDelay = time.Second

const defaultMaxRetries = 3

// retryable reports whether a response status is worth another attempt.
func retryable(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// DoWithRetry executes req and retries throttled or temporarily unavailable
// responses with exponential backoff starting at RetryBaseDelay. A
// Retry-After header given in seconds replaces the computed delay. After
// maxRetries (default 3) the last response is returned as-is.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int, log *slog.Logger) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}
		if !retryable(resp.StatusCode) || attempt >= maxRetries {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := RetryBaseDelay << attempt
		if s, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && s >= 0 {
			backoff = time.Duration(s) * time.Second
		}
		log.Debug("retrying request", "url", req.URL.String(), "status", resp.StatusCode,
			"backoff", backoff, "attempt", attempt+1, "max", maxRetries)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}
