// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package output

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/pdiddy/tabsift/pkg/types"
)

// PageBreakMarker is the HTML block written for page breaks.
const PageBreakMarker = `<div style="page-break-after: always"></div>`

// MarkdownWriter accumulates content as GitHub-flavored Markdown.
type MarkdownWriter struct {
	stem      string
	imagesDir string

	lines    []string
	lastList bool
	list     listCounter
	images   int
}

// NewMarkdownWriter returns a writer for a document named stem. Images go to
// imagesDir as stem_imgNNN.ext, or inline as data URIs when imagesDir is
// empty.
func NewMarkdownWriter(stem, imagesDir string) *MarkdownWriter {
	return &MarkdownWriter{stem: stem, imagesDir: imagesDir}
}

// block starts a new blank-line separated block.
func (w *MarkdownWriter) block(text string) {
	w.lines = append(w.lines, "")
	w.lines = append(w.lines, strings.Split(text, "\n")...)
	w.lastList = false
	w.list.reset()
}

func (w *MarkdownWriter) AppendHeading(text string, level int) error {
	level = min(max(level, 1), 6)
	w.block(strings.Repeat("#", level) + " " + oneLine(text))
	return nil
}

func (w *MarkdownWriter) AppendParagraph(p *types.Paragraph) error {
	w.block(strings.ReplaceAll(p.Text, "\n", "  \n"))
	return nil
}

func (w *MarkdownWriter) AppendListItem(li *types.ListItem) error {
	if !w.lastList {
		w.lines = append(w.lines, "")
		w.list.reset()
	}
	marker := "-"
	if li.Ordered {
		marker = w.list.marker(li.Level, true)
	} else {
		w.list.marker(li.Level, false)
	}
	w.lines = append(w.lines, strings.Repeat("    ", max(li.Level, 0))+marker+" "+oneLine(li.Text))
	w.lastList = true
	return nil
}

func (w *MarkdownWriter) AppendTable(t *types.Table) error {
	cols := t.Columns()
	if len(t.Rows) == 0 || cols == 0 {
		return nil
	}
	var b strings.Builder
	writeRow := func(row []string) {
		b.WriteString("|")
		for j := 0; j < cols; j++ {
			cell := ""
			if j < len(row) {
				cell = tableCell(row[j])
			}
			b.WriteString(" " + cell + " |")
		}
		b.WriteString("\n")
	}
	writeRow(t.Rows[0])
	b.WriteString("|" + strings.Repeat(" --- |", cols) + "\n")
	for _, row := range t.Rows[1:] {
		writeRow(row)
	}
	w.block(strings.TrimSuffix(b.String(), "\n"))
	return nil
}

func (w *MarkdownWriter) AppendHorizontalRule() error {
	w.block("---")
	return nil
}

func (w *MarkdownWriter) AppendPageBreak() error {
	w.block(PageBreakMarker)
	return nil
}

func (w *MarkdownWriter) AppendTableOfContents(toc *types.TableOfContents) error {
	if len(toc.Entries) == 0 {
		return nil
	}
	lines := make([]string, 0, len(toc.Entries))
	for _, e := range toc.Entries {
		indent := strings.Repeat("    ", max(e.Level-1, 0))
		lines = append(lines, fmt.Sprintf("%s- [%s](#%s)", indent, oneLine(e.Text), Anchor(e.Text)))
	}
	w.block(strings.Join(lines, "\n"))
	return nil
}

func (w *MarkdownWriter) AppendImage(img *types.InlineImage) error {
	ref := img.URL
	if img.Embedded() {
		contentType := img.ContentType
		if contentType == "" {
			contentType = http.DetectContentType(img.Data)
		}
		if w.imagesDir == "" {
			ref = "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
		} else {
			path, err := w.saveImage(contentType, img.Data)
			if err != nil {
				return err
			}
			ref = filepath.ToSlash(path)
		}
	}
	if ref == "" {
		return fmt.Errorf("image %s has neither data nor URL", img.Name)
	}
	w.block(fmt.Sprintf("![%s](%s)", oneLine(img.Alt), ref))
	return nil
}

func (w *MarkdownWriter) saveImage(contentType string, data []byte) (string, error) {
	if err := os.MkdirAll(w.imagesDir, 0o755); err != nil {
		return "", fmt.Errorf("creating images directory: %w", err)
	}
	ext := contentType[strings.LastIndex(contentType, "/")+1:]
	if ext == "jpeg" {
		ext = "jpg"
	}
	// Numbers already taken by other files are skipped, never overwritten.
	for range 1000 {
		w.images++
		path := filepath.Join(w.imagesDir, fmt.Sprintf("%s_img%03d.%s", w.stem, w.images, ext))
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("creating image: %w", err)
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			return "", fmt.Errorf("writing image: %w", err)
		}
		return path, f.Close()
	}
	return "", fmt.Errorf("no free image name for %s in %s", w.stem, w.imagesDir)
}

// String renders the document. Runs of blank lines collapse into one.
func (w *MarkdownWriter) String() string {
	var out []string
	prevEmpty := true
	for _, l := range w.lines {
		empty := strings.TrimSpace(l) == ""
		if empty && prevEmpty {
			continue
		}
		out = append(out, l)
		prevEmpty = empty
	}
	s := strings.TrimSpace(strings.Join(out, "\n"))
	if s == "" {
		return ""
	}
	return s + "\n"
}

func (w *MarkdownWriter) Encode(out io.Writer) error {
	_, err := io.WriteString(out, w.String())
	return err
}

// Anchor returns the GitHub-style fragment for a heading text.
func Anchor(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(text)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune('-')
		}
	}
	return b.String()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func tableCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(strings.TrimSpace(s), "\n", "<br>")
}
