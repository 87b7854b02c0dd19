// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"encoding/base64"
	"mime"
	"path"
	"strings"

	"github.com/pdiddy/tabsift/pkg/types"
)

// imageFromRef builds an InlineImage from a markup image reference. Base64
// data URIs are decoded; any other reference is kept as a URL.
func imageFromRef(ref, alt string) *types.InlineImage {
	img := &types.InlineImage{Alt: alt}
	if rest, ok := strings.CutPrefix(ref, "data:"); ok {
		meta, payload, found := strings.Cut(rest, ",")
		if found && strings.HasSuffix(meta, ";base64") {
			if data, err := base64.StdEncoding.DecodeString(payload); err == nil {
				img.ContentType = strings.TrimSuffix(meta, ";base64")
				img.Data = data
				img.Name = "image" + extensionFor(img.ContentType)
				return img
			}
		}
	}
	img.URL = ref
	img.Name = path.Base(ref)
	img.ContentType = mime.TypeByExtension(path.Ext(ref))
	return img
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/svg+xml":
		return ".svg"
	}
	if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}
