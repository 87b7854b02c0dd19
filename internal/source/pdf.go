// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"bytes"
	"fmt"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/pdiddy/tabsift/pkg/types"
)

// PDFParser extracts page text from PDFs. PDFs carry no usable section
// structure, so the result is always flat: one paragraph per block of text,
// with a page break between pages.
type PDFParser struct{}

func (p *PDFParser) Parse(data []byte) (*types.Document, error) {
	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	doc := &types.Document{}
	pages := 0
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract page %d: %w", i, err)
		}
		if pages > 0 {
			doc.Body = append(doc.Body, &types.PageBreak{})
		}
		pages++
		for _, block := range splitBlocks(text) {
			doc.Body = append(doc.Body, &types.Paragraph{Text: block})
		}
	}
	return doc, nil
}

// splitBlocks splits page text on blank lines.
func splitBlocks(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, b := range strings.Split(text, "\n\n") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
