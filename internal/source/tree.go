// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import "github.com/pdiddy/tabsift/pkg/types"

// outline builds a section tree from a linear stream of headings and
// content, the way heading-structured formats (docx, markdown, html) are laid
// out. Content before the first heading becomes the document preamble.
type outline struct {
	doc   types.Document
	stack []openSection
}

type openSection struct {
	node  *types.SectionNode
	level int
}

// heading opens a new section at level, closing any open section at the
// same or a deeper level.
func (o *outline) heading(title string, level int) {
	for len(o.stack) > 0 && o.stack[len(o.stack)-1].level >= level {
		o.stack = o.stack[:len(o.stack)-1]
	}
	n := &types.SectionNode{Title: title, Kind: types.SectionDocument}
	if len(o.stack) == 0 {
		o.doc.Sections = append(o.doc.Sections, n)
	} else {
		parent := o.stack[len(o.stack)-1].node
		parent.Children = append(parent.Children, n)
	}
	o.stack = append(o.stack, openSection{node: n, level: level})
}

// add appends el to the innermost open section, or to the preamble.
func (o *outline) add(el types.Element) {
	if el == nil {
		return
	}
	if len(o.stack) == 0 {
		o.doc.Body = append(o.doc.Body, el)
		return
	}
	top := o.stack[len(o.stack)-1].node
	top.Content = append(top.Content, el)
}

func (o *outline) document() *types.Document {
	d := o.doc
	return &d
}
