// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source enumerates the documents of a source folder and resolves
// each one into the section model consumed by the filter.
//
// Item IDs are file names relative to the folder. Each supported extension
// has a Parser; files with other extensions are not listed.
package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pdiddy/tabsift/pkg/types"
)

var (
	// ErrNotFound is returned when an item no longer exists in the folder.
	ErrNotFound = errors.New("source document not found")

	// ErrUnsupported is returned for extensions without a parser.
	ErrUnsupported = errors.New("unsupported source format")
)

// Parser turns the raw bytes of one file into a Document. Parsers leave ID
// and Name empty; Folder.Open fills them.
type Parser interface {
	Parse(data []byte) (*types.Document, error)
}

var parsers = map[string]Parser{
	".yaml": &YAMLParser{},
	".yml":  &YAMLParser{},
	".json": &GoogleDocsParser{},
	".docx": &DOCXParser{},
	".md":   &MarkdownParser{},
	".html": &HTMLParser{},
	".htm":  &HTMLParser{},
	".pdf":  &PDFParser{},
}

// ParserFor returns the parser registered for a file name's extension.
func ParserFor(name string) (Parser, bool) {
	p, ok := parsers[strings.ToLower(filepath.Ext(name))]
	return p, ok
}

// Supported reports whether name has a registered parser.
func Supported(name string) bool {
	_, ok := ParserFor(name)
	return ok
}

// DisplayName is the file name without its extension.
func DisplayName(id string) string {
	return strings.TrimSuffix(id, filepath.Ext(id))
}

// Folder is a directory of source documents.
type Folder struct {
	dir string
}

// NewFolder returns a Folder rooted at dir.
func NewFolder(dir string) *Folder {
	return &Folder{dir: dir}
}

// Dir returns the folder path.
func (f *Folder) Dir() string { return f.dir }

// List returns the IDs of the supported documents in the folder, sorted by
// name. Subdirectories, dotfiles and Office lock files (~$*) are skipped.
func (f *Folder) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("reading source folder %s: %w", f.dir, err)
	}

	var ids []string
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
			continue
		}
		if !Supported(name) {
			continue
		}
		ids = append(ids, name)
	}
	slices.Sort(ids)
	return ids, nil
}

// Open reads and parses the document with the given ID.
func (f *Folder) Open(ctx context.Context, id string) (*types.Document, error) {
	if id == "" || filepath.Base(id) != id {
		return nil, fmt.Errorf("%w: invalid id %q", ErrNotFound, id)
	}
	p, ok := ParserFor(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, id)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(f.dir, id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", id, err)
	}

	doc, err := p.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", id, err)
	}
	doc.ID = id
	doc.Name = DisplayName(id)
	return doc, nil
}
