// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package output creates the cleaned documents.
//
// A document is created empty in a staging directory, relocated into its
// destination folder, filled through its sift.Sink and finally written in
// place. Docx and Markdown encoders are available.
package output

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/pdiddy/tabsift/internal/sift"
	"github.com/pdiddy/tabsift/pkg/types"
)

// Destination is one output document being built.
type Destination interface {
	// ID is the current path of the document file.
	ID() string

	// Sink receives the cleaned content.
	Sink() sift.Sink

	// MoveTo relocates the document file into dir.
	MoveTo(dir string) error

	// Finalize encodes the accumulated content into the document file.
	Finalize() error

	// Discard removes the document file. Used when the document cannot be
	// completed.
	Discard() error
}

// Creator makes new empty destinations. ctx bounds work done while the
// destination is filled, such as image downloads.
type Creator interface {
	Create(ctx context.Context, name string) (Destination, error)
}

// encoder is a Sink that can serialize what it received.
type encoder interface {
	sift.Sink
	Encoder
}

// FileCreator creates document files in a staging directory.
type FileCreator struct {
	StagingDir string
	Format     types.OutputFormat

	// ImagesDir receives image files for Markdown output. Empty embeds
	// images as data URIs.
	ImagesDir string

	// Images, when set, downloads images the source only links to so they
	// are embedded in the output.
	Images ImageFetcher
	Log    *slog.Logger
}

// NewFileCreator returns a FileCreator for the given settings.
func NewFileCreator(cfg types.SiftConfig) *FileCreator {
	return &FileCreator{
		StagingDir: cfg.StagingDir,
		Format:     cfg.Format,
		ImagesDir:  cfg.ImagesDir,
		Log:        slog.Default(),
	}
}

// Create writes an empty placeholder file named after name and returns its
// destination. An existing file of the same name is never overwritten.
func (c *FileCreator) Create(ctx context.Context, name string) (Destination, error) {
	if err := os.MkdirAll(c.StagingDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}
	base := SanitizeName(name)

	var enc encoder
	switch c.Format {
	case types.FormatMarkdown:
		enc = NewMarkdownWriter(base, c.ImagesDir)
	case types.FormatDocx, "":
		enc = NewDocxWriter()
	default:
		return nil, fmt.Errorf("unknown output format %q", c.Format)
	}

	path, err := createUnique(c.StagingDir, base, c.Format.Extension())
	if err != nil {
		return nil, err
	}
	d := &fileDestination{base: base, enc: enc, sink: enc}
	d.setPath(path)
	if c.Images != nil {
		log := c.Log
		if log == nil {
			log = slog.Default()
		}
		d.sink = fetchingSink{Sink: enc, ctx: ctx, fetch: c.Images, log: log}
	}
	return d, nil
}

type fileDestination struct {
	base string
	path string
	enc  encoder
	sink sift.Sink
}

func (d *fileDestination) ID() string      { return d.path }
func (d *fileDestination) Sink() sift.Sink { return d.sink }

// setPath records the document file and names extracted images after it,
// so documents that share a display name never share image files.
func (d *fileDestination) setPath(path string) {
	d.path = path
	if mw, ok := d.enc.(*MarkdownWriter); ok {
		mw.stem = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
}

func (d *fileDestination) Discard() error {
	if err := os.Remove(d.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %s: %w", d.path, err)
	}
	return nil
}

func (d *fileDestination) MoveTo(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	ext := filepath.Ext(d.path)
	target, err := createUnique(dir, d.base, ext)
	if err != nil {
		return err
	}
	if err := moveFile(d.path, target); err != nil {
		os.Remove(target)
		return fmt.Errorf("moving %s to %s: %w", filepath.Base(d.path), dir, err)
	}
	d.setPath(target)
	return nil
}

func (d *fileDestination) Finalize() error {
	return WriteFile(d.path, d.enc)
}

// Encoder serializes accumulated content.
type Encoder interface {
	Encode(w io.Writer) error
}

// WriteFile encodes enc into a temp file next to path and renames it over
// path, so readers never observe a partial document.
func WriteFile(path string, enc Encoder) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tabsift-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := enc.Encode(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// createUnique creates an empty file dir/base+ext, adding " (n)" before the
// extension until the name is free.
func createUnique(dir, base, ext string) (string, error) {
	for n := 1; n < 1000; n++ {
		name := base + ext
		if n > 1 {
			name = fmt.Sprintf("%s (%d)%s", base, n, ext)
		}
		path := filepath.Join(dir, name)
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("creating %s: %w", name, err)
		}
		return path, f.Close()
	}
	return "", fmt.Errorf("no free file name for %s%s in %s", base, ext, dir)
}

// moveFile renames src over dst, copying when they are on different devices.
func moveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil || !errors.Is(err, syscall.EXDEV) {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}

// SanitizeName makes name usable as a file name on common file systems.
func SanitizeName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r < 0x20 || r == 0x7f:
			return -1
		case strings.ContainsRune(`/\:*?"<>|`, r):
			return '_'
		}
		return r
	}, name)
	name = strings.TrimRight(strings.TrimSpace(name), ".")
	if name == "" {
		return "untitled"
	}
	return name
}
