// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package output

import (
	"context"
	"log/slog"
	"path"

	"github.com/pdiddy/tabsift/internal/sift"
	"github.com/pdiddy/tabsift/pkg/types"
)

// ImageFetcher downloads images that a source only references by URL.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, string, error)
}

// fetchingSink embeds referenced images before passing them on. A failed
// download leaves the image as a reference. ctx is the invocation's
// context, so cancelling the run aborts a download in flight.
type fetchingSink struct {
	sift.Sink
	ctx   context.Context
	fetch ImageFetcher
	log   *slog.Logger
}

func (s fetchingSink) AppendImage(img *types.InlineImage) error {
	if img.Embedded() || img.URL == "" {
		return s.Sink.AppendImage(img)
	}
	data, contentType, err := s.fetch.Fetch(s.ctx, img.URL)
	if err != nil {
		s.log.Warn("image download failed, keeping link", "url", img.URL, "error", err)
		return s.Sink.AppendImage(img)
	}
	fetched := *img
	fetched.Data = data
	if fetched.ContentType == "" {
		fetched.ContentType = contentType
	}
	if fetched.Name == "" {
		fetched.Name = path.Base(img.URL)
	}
	return s.Sink.AppendImage(&fetched)
}
