// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package output

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/pdiddy/tabsift/pkg/types"
)

// headingSizes are run sizes in half-points for heading levels 1..6.
var headingSizes = [...]string{"", "40", "32", "28", "26", "24", "22"}

const (
	bulletNumID  = "1"
	orderedNumID = "2"
)

// DocxWriter accumulates content into a Word document.
type DocxWriter struct {
	doc  *docx.Docx
	list listCounter
}

// NewDocxWriter returns a DocxWriter using the library's default template.
func NewDocxWriter() *DocxWriter {
	return &DocxWriter{doc: docx.New().WithDefaultTheme()}
}

// Document exposes the underlying document.
func (w *DocxWriter) Document() *docx.Docx { return w.doc }

func (w *DocxWriter) AppendHeading(text string, level int) error {
	level = min(max(level, 1), len(headingSizes)-1)
	w.list.reset()
	w.doc.AddParagraph().
		Style("Heading" + strconv.Itoa(level)).
		AddText(text).Bold().Size(headingSizes[level])
	return nil
}

func (w *DocxWriter) AppendParagraph(p *types.Paragraph) error {
	w.list.reset()
	para := w.doc.AddParagraph()
	if p.Text != "" {
		para.AddText(p.Text)
	}
	return nil
}

// AppendListItem writes the item with numbering properties. The default
// template has no numbering definitions, so the marker is also written as
// text.
func (w *DocxWriter) AppendListItem(li *types.ListItem) error {
	numID, style := bulletNumID, "ListBullet"
	if li.Ordered {
		numID, style = orderedNumID, "ListNumber"
	}
	level := max(li.Level, 0)
	marker := w.list.marker(level, li.Ordered)
	w.doc.AddParagraph().
		Style(style).
		NumPr(numID, strconv.Itoa(level)).
		AddText(strings.Repeat("\t", level) + marker + " " + li.Text)
	return nil
}

func (w *DocxWriter) AppendTable(t *types.Table) error {
	w.list.reset()
	rows, cols := len(t.Rows), t.Columns()
	if rows == 0 || cols == 0 {
		return nil
	}
	tbl := w.doc.AddTable(rows, cols, 0, nil)
	for i, row := range t.Rows {
		for j := 0; j < cols; j++ {
			cell := tbl.TableRows[i].TableCells[j].AddParagraph()
			if j < len(row) && row[j] != "" {
				cell.AddText(row[j])
			}
		}
	}
	return nil
}

func (w *DocxWriter) AppendHorizontalRule() error {
	w.list.reset()
	w.doc.AddParagraph().Justification("center").AddText(strings.Repeat("─", 24))
	return nil
}

func (w *DocxWriter) AppendPageBreak() error {
	w.list.reset()
	w.doc.AddParagraph().AddPageBreaks()
	return nil
}

func (w *DocxWriter) AppendTableOfContents(toc *types.TableOfContents) error {
	w.list.reset()
	for _, e := range toc.Entries {
		level := min(max(e.Level, 1), 9)
		w.doc.AddParagraph().Style("TOC" + strconv.Itoa(level)).AddText(e.Text)
	}
	return nil
}

func (w *DocxWriter) AppendImage(img *types.InlineImage) error {
	w.list.reset()
	if !img.Embedded() {
		if img.URL == "" {
			return errors.New("image has neither data nor URL")
		}
		w.doc.AddParagraph().AddLink(firstNonEmpty(img.Alt, img.Name, img.URL), img.URL)
		return nil
	}
	if _, err := w.doc.AddParagraph().AddInlineDrawing(img.Data); err != nil {
		return fmt.Errorf("embedding image %s: %w", img.Name, err)
	}
	return nil
}

func (w *DocxWriter) Encode(out io.Writer) error {
	_, err := w.doc.WriteTo(out)
	return err
}

// listCounter numbers consecutive ordered list items per nesting level.
type listCounter struct {
	counts []int
}

func (c *listCounter) marker(level int, ordered bool) string {
	level = max(level, 0)
	for len(c.counts) <= level {
		c.counts = append(c.counts, 0)
	}
	c.counts = c.counts[:level+1]
	if !ordered {
		c.counts[level] = 0
		return "•"
	}
	c.counts[level]++
	return strconv.Itoa(c.counts[level]) + "."
}

func (c *listCounter) reset() { c.counts = c.counts[:0] }

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
