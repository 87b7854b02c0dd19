// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sift

import (
	"log/slog"

	"github.com/pdiddy/tabsift/internal/match"
	"github.com/pdiddy/tabsift/pkg/types"
)

// MaxHeadingLevel is the deepest heading an output document gets. Deeper
// sections collapse onto it.
const MaxHeadingLevel = 6

// HeadingLevel maps a zero-based nesting depth to a heading level in 1..6.
func HeadingLevel(depth int) int {
	return min(max(depth, 0)+1, MaxHeadingLevel)
}

// Result describes what one filter pass wrote.
type Result struct {
	// Headings is the number of heading markers emitted.
	Headings int

	// Skipped lists the titles of excluded sections, outermost only.
	Skipped []string

	// Copy aggregates element copies and failures, headings included.
	Copy CopyReport
}

// Filter prunes excluded sections and flattens the rest into a sink.
type Filter struct {
	matcher *match.Matcher
	log     *slog.Logger
}

// NewFilter creates a Filter using m for exclusion decisions. A nil m
// keeps every section.
func NewFilter(m *match.Matcher, log *slog.Logger) *Filter {
	if log == nil {
		log = slog.Default()
	}
	return &Filter{matcher: m, log: log}
}

type frame struct {
	node  *types.SectionNode
	depth int
}

// Into walks roots in document order starting at depth. Excluded sections are
// skipped along with all of their descendants; every other section emits a
// heading marker, then its own content, then its children one level deeper.
func (f *Filter) Into(roots []*types.SectionNode, sink Sink, depth int) Result {
	var res Result

	stack := push(nil, roots, depth)
	for len(stack) > 0 {
		fr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := fr.node
		if n == nil {
			continue
		}

		if rule, ok := f.matcher.Match(n.Title); ok {
			f.log.Info("skip section", "title", n.Title, "rule", rule)
			res.Skipped = append(res.Skipped, n.Title)
			continue
		}

		level := HeadingLevel(fr.depth)
		if err := appendHeading(sink, n.Title, level); err != nil {
			f.log.Warn("heading append failed", "title", n.Title, "level", level, "error", err)
			res.Copy.Failures = append(res.Copy.Failures, CopyError{Index: -1, Kind: KindHeading, Err: err})
		} else {
			res.Headings++
		}

		if n.HasContent() {
			res.Copy.Merge(CopyAll(n.Content, sink, f.log))
		}

		stack = push(stack, n.Children, fr.depth+1)
	}
	return res
}

// Document filters a whole source document into sink. A flat document has its
// body copied as-is with no heading markers. A structured one has its
// preamble copied first, then its sections filtered from depth 0.
func (f *Filter) Document(doc *types.Document, sink Sink) Result {
	var res Result
	if len(doc.Body) > 0 {
		res.Copy = CopyAll(doc.Body, sink, f.log)
	}
	if doc.IsFlat() {
		return res
	}

	sub := f.Into(doc.Sections, sink, 0)
	res.Headings = sub.Headings
	res.Skipped = sub.Skipped
	res.Copy.Merge(sub.Copy)
	return res
}

// push appends nodes in reverse so the first node is popped first.
func push(stack []frame, nodes []*types.SectionNode, depth int) []frame {
	for i := len(nodes) - 1; i >= 0; i-- {
		stack = append(stack, frame{node: nodes[i], depth: depth})
	}
	return stack
}
