// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for tabsift: the source
// document model (sections and content elements) and run configuration.
package types

// SectionKind discriminates sections that carry their own content from
// sections that only group child sections.
type SectionKind string

const (
	SectionDocument SectionKind = "document"
	SectionGroup    SectionKind = "group"
)

// SectionNode is a labeled node in a source document's section hierarchy
// (a "tab" in a tabbed document, a heading-delimited section otherwise).
// Readers build the tree; nothing downstream mutates it.
type SectionNode struct {
	// Title is the section label that exclusion rules are tested against.
	Title string `json:"title" yaml:"title"`

	// Kind is SectionDocument when Content is meaningful.
	Kind SectionKind `json:"kind" yaml:"kind"`

	// Children are nested sections in document order.
	Children []*SectionNode `json:"children,omitempty" yaml:"children,omitempty"`

	// Content is the ordered body of a document-kind section.
	Content []Element `json:"-" yaml:"-"`
}

// HasContent reports whether the section carries its own body.
func (n *SectionNode) HasContent() bool {
	return n.Kind == SectionDocument
}

// Document is a resolved source item: its display name plus either a section
// hierarchy or a flat body.
type Document struct {
	// ID is the work-list reference the document was opened by.
	ID string `json:"id" yaml:"id"`

	// Name is the display name used to derive the output name.
	Name string `json:"name" yaml:"name"`

	// Sections is the hierarchical view. Empty for flat documents.
	Sections []*SectionNode `json:"sections,omitempty" yaml:"sections,omitempty"`

	// Body holds the whole content of a flat document, or the content that
	// precedes the first section of a structured one.
	Body []Element `json:"-" yaml:"-"`
}

// IsFlat reports whether the document has no section hierarchy at all.
func (d *Document) IsFlat() bool {
	return len(d.Sections) == 0
}
