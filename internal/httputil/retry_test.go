// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/tabsift/internal/logging"
)

func init() {
	RetryBaseDelay = time.Millisecond
}

// statusServer answers with codes[i] on the i-th call, repeating the last.
func statusServer(t *testing.T, calls *int32, codes ...int) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := atomic.AddInt32(calls, 1)
		w.WriteHeader(codes[min(int(n)-1, len(codes)-1)])
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestDoWithRetry(t *testing.T) {
	tests := []struct {
		name       string
		codes      []int
		maxRetries int
		wantCode   int
		wantCalls  int32
	}{
		{"immediate success", []int{200}, 3, 200, 1},
		{"throttled then ok", []int{429, 429, 200}, 5, 200, 3},
		{"unavailable then ok", []int{503, 502, 200}, 5, 200, 3},
		{"exhausts retries", []int{429}, 2, 429, 3},
		{"default retries", []int{503}, 0, 503, 4},
		{"server error passes through", []int{500}, 3, 500, 1},
		{"not found passes through", []int{404}, 3, 404, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			ts := statusServer(t, &calls, tt.codes...)
			req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
			require.NoError(t, err)

			resp, err := DoWithRetry(context.Background(), ts.Client(), req, tt.maxRetries, logging.Discard())
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantCode, resp.StatusCode)
			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(&calls))
		})
	}
}

func TestDoWithRetry_ContextCancelled(t *testing.T) {
	var calls int32
	ts := statusServer(t, &calls, 429)

	old := RetryBaseDelay
	RetryBaseDelay = 500 * time.Millisecond
	defer func() { RetryBaseDelay = old }()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	require.NoError(t, err)

	_, err = DoWithRetry(ctx, ts.Client(), req, 5, logging.Discard())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFetch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/img.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write([]byte("png-bytes"))
		case "/big":
			w.Write(make([]byte, 64))
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	f := NewFetcher(5*time.Second, logging.Discard())
	f.Client = ts.Client()

	data, ct, err := f.Fetch(context.Background(), ts.URL+"/img.png")
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
	assert.Equal(t, "image/png", ct)

	_, _, err = f.Fetch(context.Background(), ts.URL+"/missing")
	assert.ErrorContains(t, err, "HTTP 404")

	f.MaxBytes = 16
	_, _, err = f.Fetch(context.Background(), ts.URL+"/big")
	assert.ErrorIs(t, err, ErrTooLarge)

	_, _, err = f.Fetch(context.Background(), "file:///etc/passwd")
	assert.ErrorContains(t, err, "unsupported scheme")
}
