// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ElementKind is the discriminator of the Element union.
type ElementKind string

const (
	KindParagraph       ElementKind = "paragraph"
	KindListItem        ElementKind = "list_item"
	KindTable           ElementKind = "table"
	KindHorizontalRule  ElementKind = "horizontal_rule"
	KindPageBreak       ElementKind = "page_break"
	KindTableOfContents ElementKind = "table_of_contents"
	KindInlineImage     ElementKind = "inline_image"
	KindOther           ElementKind = "other"
)

// Element is one primitive piece of document content. Clone returns a
// detached copy that shares no mutable state with the receiver.
type Element interface {
	Kind() ElementKind
	Clone() Element
}

// Paragraph is a block of body text.
type Paragraph struct {
	Text string
}

func (p *Paragraph) Kind() ElementKind { return KindParagraph }

func (p *Paragraph) Clone() Element {
	c := *p
	return &c
}

// ListItem is one bulleted or numbered entry. Level is the zero-based
// nesting level.
type ListItem struct {
	Text    string
	Level   int
	Ordered bool
}

func (l *ListItem) Kind() ElementKind { return KindListItem }

func (l *ListItem) Clone() Element {
	c := *l
	return &c
}

// Table is a grid of cell texts, row-major. Rows may be ragged.
type Table struct {
	Rows [][]string
}

func (t *Table) Kind() ElementKind { return KindTable }

func (t *Table) Clone() Element {
	rows := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = append([]string(nil), r...)
	}
	return &Table{Rows: rows}
}

// Columns returns the width of the widest row.
func (t *Table) Columns() int {
	n := 0
	for _, r := range t.Rows {
		n = max(n, len(r))
	}
	return n
}

// HorizontalRule is a thematic break.
type HorizontalRule struct{}

func (*HorizontalRule) Kind() ElementKind { return KindHorizontalRule }
func (*HorizontalRule) Clone() Element    { return &HorizontalRule{} }

// PageBreak forces subsequent content onto a new page.
type PageBreak struct{}

func (*PageBreak) Kind() ElementKind { return KindPageBreak }
func (*PageBreak) Clone() Element    { return &PageBreak{} }

// TOCEntry is one line of a table of contents. Level starts at 1.
type TOCEntry struct {
	Text  string
	Level int
}

// TableOfContents is a generated contents listing carried over verbatim.
type TableOfContents struct {
	Entries []TOCEntry
}

func (t *TableOfContents) Kind() ElementKind { return KindTableOfContents }

func (t *TableOfContents) Clone() Element {
	return &TableOfContents{Entries: append([]TOCEntry(nil), t.Entries...)}
}

// InlineImage is a picture. Data holds the encoded image bytes; URL is set
// instead for pictures the source only references.
type InlineImage struct {
	Name        string
	ContentType string
	Alt         string
	Data        []byte
	URL         string
}

// Embedded reports whether the image bytes are available.
func (i *InlineImage) Embedded() bool {
	return len(i.Data) > 0
}

func (i *InlineImage) Kind() ElementKind { return KindInlineImage }

func (i *InlineImage) Clone() Element {
	c := *i
	c.Data = append([]byte(nil), i.Data...)
	return &c
}

// Other stands for source content with no output mapping (equations,
// footnote references, section properties). Tag names the source construct.
type Other struct {
	Tag string
}

func (o *Other) Kind() ElementKind { return KindOther }

func (o *Other) Clone() Element {
	c := *o
	return &c
}
