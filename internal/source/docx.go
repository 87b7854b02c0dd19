// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"bytes"
	"fmt"
	"mime"
	"path"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/pdiddy/tabsift/pkg/types"
)

// DOCXParser reads Word documents. Heading 1..6 paragraphs open sections;
// a document without headings is flat.
type DOCXParser struct{}

func (p *DOCXParser) Parse(data []byte) (*types.Document, error) {
	d, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	r := docxReader{file: d}
	for _, item := range d.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			r.paragraph(it)
		case *docx.Table:
			r.flushTOC()
			r.out.add(docxTable(it))
		}
	}
	r.flushTOC()
	return r.out.document(), nil
}

type docxReader struct {
	file *docx.Docx
	out  outline
	toc  *types.TableOfContents
}

func (r *docxReader) flushTOC() {
	if r.toc != nil {
		r.out.add(r.toc)
		r.toc = nil
	}
}

func (r *docxReader) paragraph(para *docx.Paragraph) {
	style := docxStyle(para)
	text, inlines := r.runs(para)

	if level := tocLevel(style); level > 0 {
		if r.toc == nil {
			r.toc = &types.TableOfContents{}
		}
		if text != "" {
			r.toc.Entries = append(r.toc.Entries, types.TOCEntry{Text: text, Level: level})
		}
		return
	}
	r.flushTOC()

	if level := docxHeadingLevel(style); level > 0 && text != "" {
		r.out.heading(text, level)
		for _, el := range inlines {
			r.out.add(el)
		}
		return
	}

	switch {
	case isListParagraph(para):
		ilvl := 0
		if np := para.Properties.NumProperties; np.Ilvl != nil {
			ilvl, _ = strconv.Atoi(np.Ilvl.Val)
		}
		r.out.add(&types.ListItem{
			Text:    text,
			Level:   ilvl,
			Ordered: strings.Contains(strings.ToLower(style), "number"),
		})
	case text != "" || len(inlines) == 0:
		r.out.add(&types.Paragraph{Text: text})
	}
	for _, el := range inlines {
		r.out.add(el)
	}
}

// runs collects the paragraph text plus the page breaks and pictures found
// in its runs.
func (r *docxReader) runs(para *docx.Paragraph) (string, []types.Element) {
	var (
		buf     strings.Builder
		inlines []types.Element
	)
	visit := func(run *docx.Run) {
		for _, rc := range run.Children {
			switch c := rc.(type) {
			case *docx.Text:
				buf.WriteString(c.Text)
			case *docx.Tab:
				buf.WriteByte('\t')
			case *docx.BarterRabbet:
				if c.Type == "page" {
					inlines = append(inlines, &types.PageBreak{})
				} else {
					buf.WriteByte('\n')
				}
			case *docx.Drawing:
				inlines = append(inlines, r.drawing(c))
			}
		}
	}
	for _, child := range para.Children {
		switch c := child.(type) {
		case *docx.Run:
			visit(c)
		case *docx.Hyperlink:
			visit(&c.Run)
		}
	}
	return strings.TrimSpace(buf.String()), inlines
}

func (r *docxReader) drawing(d *docx.Drawing) types.Element {
	var (
		graphic *docx.AGraphic
		name    string
	)
	switch {
	case d.Inline != nil:
		graphic = d.Inline.Graphic
		if d.Inline.DocPr != nil {
			name = d.Inline.DocPr.Name
		}
	case d.Anchor != nil:
		graphic = d.Anchor.Graphic
		if d.Anchor.DocPr != nil {
			name = d.Anchor.DocPr.Name
		}
	}
	if graphic == nil || graphic.GraphicData == nil || graphic.GraphicData.Pic == nil ||
		graphic.GraphicData.Pic.BlipFill == nil {
		return &types.Other{Tag: "drawing"}
	}

	target, err := r.file.ReferTarget(graphic.GraphicData.Pic.BlipFill.Blip.Embed)
	if err != nil {
		return &types.Other{Tag: "drawing"}
	}
	m := r.file.Media(strings.TrimPrefix(target, "media/"))
	if m == nil {
		return &types.Other{Tag: "drawing"}
	}
	if name == "" {
		name = m.Name
	}
	return &types.InlineImage{
		Name:        path.Base(m.Name),
		ContentType: mime.TypeByExtension(path.Ext(m.Name)),
		Alt:         name,
		Data:        append([]byte(nil), m.Data...),
	}
}

func docxTable(t *docx.Table) *types.Table {
	tbl := &types.Table{}
	for _, row := range t.TableRows {
		cells := make([]string, 0, len(row.TableCells))
		for _, cell := range row.TableCells {
			var parts []string
			for _, p := range cell.Paragraphs {
				if s := docxParagraphText(p); s != "" {
					parts = append(parts, s)
				}
			}
			cells = append(cells, strings.Join(parts, "\n"))
		}
		tbl.Rows = append(tbl.Rows, cells)
	}
	return tbl
}

func docxStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return para.Properties.Style.Val
}

func isListParagraph(para *docx.Paragraph) bool {
	if para.Properties == nil || para.Properties.NumProperties == nil {
		return false
	}
	id := para.Properties.NumProperties.NumID
	return id != nil && id.Val != "" && id.Val != "0"
}

// docxHeadingLevel accepts both style IDs (Heading1) and style names
// (heading 1).
func docxHeadingLevel(style string) int {
	return styleLevel(style, "heading", 6)
}

func tocLevel(style string) int {
	return styleLevel(style, "toc", 9)
}

func styleLevel(style, prefix string, maxLevel int) int {
	s := strings.ToLower(strings.ReplaceAll(style, " ", ""))
	rest, ok := strings.CutPrefix(s, prefix)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 || n > maxLevel {
		return 0
	}
	return n
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		var run *docx.Run
		switch c := child.(type) {
		case *docx.Run:
			run = c
		case *docx.Hyperlink:
			run = &c.Run
		default:
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
