// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sift filters a document's section tree against the exclusion
// rules and copies the surviving content into an output sink.
//
// Surviving sections become heading markers whose level follows their
// nesting depth (clamped to 6). An excluded section takes its whole subtree
// with it. Content is copied element by element; a failing element is
// recorded and skipped so the rest of the document still arrives.
package sift

import "github.com/pdiddy/tabsift/pkg/types"

// Sink is the append-only content target of an output document. Each method
// receives a detached element that the sink may keep.
type Sink interface {
	AppendHeading(text string, level int) error
	AppendParagraph(p *types.Paragraph) error
	AppendListItem(li *types.ListItem) error
	AppendTable(t *types.Table) error
	AppendHorizontalRule() error
	AppendPageBreak() error
	AppendTableOfContents(toc *types.TableOfContents) error
	AppendImage(img *types.InlineImage) error
}
