// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package merge combines the documents of a folder into one output document.
//
// Inputs are read in name order. A docx output concatenates the documents
// with a page break between them: Word inputs are appended with their own
// formatting, other inputs are rendered through the source parsers first. A
// Markdown output gives each document a title heading named after its file
// and separates documents with a rule. Inputs that cannot be read are
// reported and skipped.
package merge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fumiama/go-docx"

	"github.com/pdiddy/tabsift/internal/output"
	"github.com/pdiddy/tabsift/internal/sift"
	"github.com/pdiddy/tabsift/internal/source"
	"github.com/pdiddy/tabsift/pkg/types"
)

// ErrNoInputs is returned when the folder holds no readable documents.
var ErrNoInputs = errors.New("no documents to merge")

// DefaultSeparator separates documents in Markdown output.
const DefaultSeparator = "---"

// Options configures a merge.
type Options struct {
	// Format of the merged document. Empty derives it from the output
	// extension.
	Format types.OutputFormat

	// ImagesDir receives images for Markdown output. Empty embeds them.
	ImagesDir string

	// Separator is placed between documents in Markdown output.
	Separator string

	Now func() time.Time
	Log *slog.Logger

	// Out receives per-file progress lines.
	Out io.Writer
}

func (o *Options) applyDefaults(outPath string) {
	if o.Format == "" {
		o.Format = FormatFor(outPath)
	}
	if o.Separator == "" {
		o.Separator = DefaultSeparator
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Log == nil {
		o.Log = slog.Default()
	}
	if o.Out == nil {
		o.Out = io.Discard
	}
}

// Result summarizes a merge.
type Result struct {
	Output  string
	Total   int
	Merged  []string
	Skipped []string
}

// HasFailures reports whether any input was skipped.
func (r Result) HasFailures() bool {
	return len(r.Skipped) > 0
}

// FormatFor picks the output format from a file name.
func FormatFor(path string) types.OutputFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return types.FormatMarkdown
	}
	return types.FormatDocx
}

// DefaultOutput returns the output path used when none is given:
// <dir>_merged.<ext> in the working directory.
func DefaultOutput(dir string, format types.OutputFormat) string {
	name := filepath.Base(filepath.Clean(dir))
	return name + "_merged" + format.Extension()
}

// Dir merges every supported document in dir into outPath. The output file
// itself is ignored when it lives inside dir.
func Dir(ctx context.Context, dir, outPath string, opts Options) (Result, error) {
	opts.applyDefaults(outPath)
	res := Result{Output: outPath}

	folder := source.NewFolder(dir)
	ids, err := folder.List(ctx)
	if err != nil {
		return res, err
	}
	ids = withoutOutput(dir, outPath, ids)
	res.Total = len(ids)
	if len(ids) == 0 {
		return res, fmt.Errorf("%w in %s", ErrNoInputs, dir)
	}

	fmt.Fprintf(opts.Out, "input:  %s (%d files)\n", dir, len(ids))
	fmt.Fprintf(opts.Out, "output: %s\n", outPath)

	var b builder
	if opts.Format == types.FormatMarkdown {
		b = &markdownBuilder{opts: opts, dir: dir}
	} else {
		b = &docxBuilder{w: output.NewDocxWriter(), log: opts.Log}
	}

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		fmt.Fprintf(opts.Out, "  [%3d/%d] %s\n", i+1, len(ids), id)
		load := func() (*types.Document, error) { return folder.Open(ctx, id) }
		if err := b.add(filepath.Join(dir, id), load); err != nil {
			opts.Log.Warn("merge input skipped", "file", id, "error", err)
			fmt.Fprintf(opts.Out, "failed:  %s (%v)\n", id, err)
			res.Skipped = append(res.Skipped, id)
			continue
		}
		res.Merged = append(res.Merged, id)
	}
	if len(res.Merged) == 0 {
		return res, fmt.Errorf("%w: all %d inputs failed", ErrNoInputs, len(ids))
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return res, fmt.Errorf("creating output directory: %w", err)
	}
	if err := output.WriteFile(outPath, b.encoder(len(res.Merged))); err != nil {
		return res, err
	}
	fmt.Fprintf(opts.Out, "\nmerged %d of %d files -> %s\n", len(res.Merged), len(ids), outPath)
	return res, nil
}

func withoutOutput(dir, outPath string, ids []string) []string {
	abs, err := filepath.Abs(outPath)
	if err != nil {
		return ids
	}
	kept := ids[:0:0]
	for _, id := range ids {
		p, err := filepath.Abs(filepath.Join(dir, id))
		if err == nil && p == abs {
			continue
		}
		kept = append(kept, id)
	}
	return kept
}

// builder accumulates inputs. load parses the input at path into the
// document model.
type builder interface {
	add(path string, load func() (*types.Document, error)) error
	encoder(count int) output.Encoder
}

// docxBuilder appends every document to one docx body.
type docxBuilder struct {
	w     *output.DocxWriter
	log   *slog.Logger
	added int
}

func (b *docxBuilder) add(path string, load func() (*types.Document, error)) error {
	var part *docx.Docx
	if strings.EqualFold(filepath.Ext(path), ".docx") {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if part, err = docx.Parse(bytes.NewReader(data), int64(len(data))); err != nil {
			return fmt.Errorf("parsing docx: %w", err)
		}
	} else {
		doc, err := load()
		if err != nil {
			return err
		}
		rendered := output.NewDocxWriter()
		res := sift.NewFilter(nil, b.log).Document(doc, rendered)
		if n := len(res.Copy.Failures); n > 0 {
			b.log.Warn("merge copied with failures", "file", doc.ID, "failures", n)
		}
		part = rendered.Document()
	}

	if b.added > 0 {
		if err := b.w.AppendPageBreak(); err != nil {
			return err
		}
	}
	b.added++
	b.w.Document().AppendFile(part)
	return nil
}

func (b *docxBuilder) encoder(int) output.Encoder { return b.w }

// markdownBuilder renders each document separately and joins the sections.
type markdownBuilder struct {
	opts     Options
	dir      string
	sections []string
}

func (b *markdownBuilder) add(_ string, load func() (*types.Document, error)) error {
	doc, err := load()
	if err != nil {
		return err
	}
	stem := source.DisplayName(doc.ID)
	w := output.NewMarkdownWriter(stem, b.opts.ImagesDir)
	res := sift.NewFilter(nil, b.opts.Log).Document(doc, w)
	if n := len(res.Copy.Failures); n > 0 {
		b.opts.Log.Warn("merge copied with failures", "file", doc.ID, "failures", n)
	}
	b.sections = append(b.sections, "# "+stem+"\n\n"+strings.TrimSpace(w.String()))
	return nil
}

func (b *markdownBuilder) encoder(count int) output.Encoder {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<!--\n  generated: %s\n  input directory: %s\n  files: %d\n-->\n\n",
		b.opts.Now().Format("2006-01-02 15:04:05"), b.dir, count)
	buf.WriteString(strings.Join(b.sections, "\n\n"+b.opts.Separator+"\n\n"))
	buf.WriteString("\n")
	return rawEncoder(buf.Bytes())
}

type rawEncoder []byte

func (r rawEncoder) Encode(w io.Writer) error {
	_, err := w.Write(r)
	return err
}
