// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/tabsift/pkg/types"
)

// GoogleDocsParser reads a Google Docs API document resource exported with
// includeTabsContent. Each tab becomes a section; documents exported without
// tabs are flat.
type GoogleDocsParser struct{}

type gdocDocument struct {
	DocumentID    string                      `json:"documentId"`
	Title         string                      `json:"title"`
	Tabs          []gdocTab                   `json:"tabs"`
	Body          *gdocBody                   `json:"body"`
	Lists         map[string]gdocList         `json:"lists"`
	InlineObjects map[string]gdocInlineObject `json:"inlineObjects"`
}

type gdocTab struct {
	TabProperties struct {
		TabID string `json:"tabId"`
		Title string `json:"title"`
	} `json:"tabProperties"`
	ChildTabs   []gdocTab        `json:"childTabs"`
	DocumentTab *gdocDocumentTab `json:"documentTab"`
}

type gdocDocumentTab struct {
	Body          *gdocBody                   `json:"body"`
	Lists         map[string]gdocList         `json:"lists"`
	InlineObjects map[string]gdocInlineObject `json:"inlineObjects"`
}

type gdocBody struct {
	Content []gdocStructural `json:"content"`
}

type gdocStructural struct {
	Paragraph       *gdocParagraph  `json:"paragraph"`
	Table           *gdocTable      `json:"table"`
	TableOfContents *gdocBody       `json:"tableOfContents"`
	SectionBreak    json.RawMessage `json:"sectionBreak"`
}

type gdocParagraph struct {
	Elements []gdocParagraphElement `json:"elements"`
	Bullet   *struct {
		ListID       string `json:"listId"`
		NestingLevel int    `json:"nestingLevel"`
	} `json:"bullet"`
	ParagraphStyle struct {
		NamedStyleType string `json:"namedStyleType"`
	} `json:"paragraphStyle"`
}

type gdocParagraphElement struct {
	TextRun *struct {
		Content string `json:"content"`
	} `json:"textRun"`
	InlineObjectElement *struct {
		InlineObjectID string `json:"inlineObjectId"`
	} `json:"inlineObjectElement"`
	PageBreak      json.RawMessage `json:"pageBreak"`
	HorizontalRule json.RawMessage `json:"horizontalRule"`
}

type gdocTable struct {
	TableRows []struct {
		TableCells []struct {
			Content []gdocStructural `json:"content"`
		} `json:"tableCells"`
	} `json:"tableRows"`
}

type gdocList struct {
	ListProperties struct {
		NestingLevels []struct {
			GlyphType   string `json:"glyphType"`
			GlyphSymbol string `json:"glyphSymbol"`
		} `json:"nestingLevels"`
	} `json:"listProperties"`
}

type gdocInlineObject struct {
	InlineObjectProperties struct {
		EmbeddedObject struct {
			Title           string `json:"title"`
			Description     string `json:"description"`
			ImageProperties struct {
				ContentURI string `json:"contentUri"`
			} `json:"imageProperties"`
		} `json:"embeddedObject"`
	} `json:"inlineObjectProperties"`
}

// gdocScope resolves list and inline object references of one tab.
type gdocScope struct {
	lists   map[string]gdocList
	objects map[string]gdocInlineObject
}

func (p *GoogleDocsParser) Parse(data []byte) (*types.Document, error) {
	var raw gdocDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse google docs json: %w", err)
	}

	doc := &types.Document{}
	if len(raw.Tabs) == 0 {
		if raw.Body != nil {
			scope := gdocScope{lists: raw.Lists, objects: raw.InlineObjects}
			doc.Body = scope.elements(raw.Body.Content)
		}
		return doc, nil
	}
	doc.Sections = gdocSections(raw.Tabs)
	return doc, nil
}

func gdocSections(tabs []gdocTab) []*types.SectionNode {
	nodes := make([]*types.SectionNode, 0, len(tabs))
	for _, t := range tabs {
		n := &types.SectionNode{Title: t.TabProperties.Title, Kind: types.SectionGroup}
		if dt := t.DocumentTab; dt != nil {
			n.Kind = types.SectionDocument
			if dt.Body != nil {
				scope := gdocScope{lists: dt.Lists, objects: dt.InlineObjects}
				n.Content = scope.elements(dt.Body.Content)
			}
		}
		n.Children = gdocSections(t.ChildTabs)
		nodes = append(nodes, n)
	}
	return nodes
}

func (s gdocScope) elements(content []gdocStructural) []types.Element {
	var out []types.Element
	for _, se := range content {
		switch {
		case se.Paragraph != nil:
			out = append(out, s.paragraph(se.Paragraph)...)
		case se.Table != nil:
			out = append(out, s.table(se.Table))
		case se.TableOfContents != nil:
			out = append(out, s.toc(se.TableOfContents))
		case se.SectionBreak != nil:
			// Every body starts with one; there is nothing to carry over.
		default:
			out = append(out, &types.Other{Tag: "unknown"})
		}
	}
	return out
}

// paragraph returns the text element for p followed by any page breaks,
// rules and images it contains.
func (s gdocScope) paragraph(p *gdocParagraph) []types.Element {
	var (
		text    strings.Builder
		inlines []types.Element
	)
	for _, el := range p.Elements {
		switch {
		case el.TextRun != nil:
			text.WriteString(el.TextRun.Content)
		case el.InlineObjectElement != nil:
			inlines = append(inlines, s.image(el.InlineObjectElement.InlineObjectID))
		case el.PageBreak != nil:
			inlines = append(inlines, &types.PageBreak{})
		case el.HorizontalRule != nil:
			inlines = append(inlines, &types.HorizontalRule{})
		}
	}

	body := strings.TrimRight(text.String(), "\n")
	var out []types.Element
	switch {
	case p.Bullet != nil:
		out = append(out, &types.ListItem{
			Text:    body,
			Level:   p.Bullet.NestingLevel,
			Ordered: s.ordered(p.Bullet.ListID, p.Bullet.NestingLevel),
		})
	case body != "" || len(inlines) == 0:
		out = append(out, &types.Paragraph{Text: body})
	}
	return append(out, inlines...)
}

func (s gdocScope) ordered(listID string, level int) bool {
	l, ok := s.lists[listID]
	if !ok || level >= len(l.ListProperties.NestingLevels) {
		return false
	}
	nl := l.ListProperties.NestingLevels[level]
	return nl.GlyphSymbol == "" && nl.GlyphType != "" && nl.GlyphType != "GLYPH_TYPE_UNSPECIFIED"
}

func (s gdocScope) image(id string) types.Element {
	obj, ok := s.objects[id]
	if !ok {
		return &types.Other{Tag: "inline_object"}
	}
	eo := obj.InlineObjectProperties.EmbeddedObject
	return &types.InlineImage{
		Name: id,
		Alt:  firstNonEmpty(eo.Description, eo.Title),
		URL:  eo.ImageProperties.ContentURI,
	}
}

func (s gdocScope) table(t *gdocTable) types.Element {
	tbl := &types.Table{}
	for _, r := range t.TableRows {
		row := make([]string, 0, len(r.TableCells))
		for _, c := range r.TableCells {
			row = append(row, plainText(s.elements(c.Content)))
		}
		tbl.Rows = append(tbl.Rows, row)
	}
	return tbl
}

func (s gdocScope) toc(b *gdocBody) types.Element {
	toc := &types.TableOfContents{}
	for _, el := range s.elements(b.Content) {
		switch e := el.(type) {
		case *types.Paragraph:
			if e.Text != "" {
				toc.Entries = append(toc.Entries, types.TOCEntry{Text: e.Text, Level: 1})
			}
		case *types.ListItem:
			toc.Entries = append(toc.Entries, types.TOCEntry{Text: e.Text, Level: e.Level + 1})
		}
	}
	return toc
}

// plainText joins the text of paragraphs and list items with newlines.
func plainText(els []types.Element) string {
	var parts []string
	for _, el := range els {
		switch e := el.(type) {
		case *types.Paragraph:
			parts = append(parts, e.Text)
		case *types.ListItem:
			parts = append(parts, e.Text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
