// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sift

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/pdiddy/tabsift/pkg/types"
)

// KindHeading tags failures of heading markers, which are not source elements.
const KindHeading types.ElementKind = "heading"

// CopyError records one element that could not be appended to the sink.
type CopyError struct {
	// Index is the element's position in its source sequence (-1 for headings).
	Index int
	Kind  types.ElementKind
	Err   error
}

func (e CopyError) Error() string {
	return fmt.Sprintf("copy %s at %d: %v", e.Kind, e.Index, e.Err)
}

func (e CopyError) Unwrap() error { return e.Err }

// CopyReport summarizes a copy pass.
type CopyReport struct {
	Copied   int
	Dropped  int
	Failures []CopyError
}

// Merge adds other's counts and failures to r.
func (r *CopyReport) Merge(other CopyReport) {
	r.Copied += other.Copied
	r.Dropped += other.Dropped
	r.Failures = append(r.Failures, other.Failures...)
}

// Err joins all failures, or returns nil when every element was copied.
func (r CopyReport) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// CopyAll appends a detached copy of every element of src to sink, in order.
// Elements without an output mapping are dropped. A failing element is logged
// with its kind and recorded; the remaining elements are still copied.
func CopyAll(src []types.Element, sink Sink, log *slog.Logger) CopyReport {
	if log == nil {
		log = slog.Default()
	}

	var report CopyReport
	for i, el := range src {
		if el == nil {
			report.Dropped++
			continue
		}
		copied, err := copyElement(el, sink)
		switch {
		case err != nil:
			log.Warn("element copy failed", "index", i, "type", string(el.Kind()), "error", err)
			report.Failures = append(report.Failures, CopyError{Index: i, Kind: el.Kind(), Err: err})
		case copied:
			report.Copied++
		default:
			log.Debug("element dropped", "index", i, "type", string(el.Kind()))
			report.Dropped++
		}
	}
	return report
}

// copyElement clones el and dispatches it to the matching sink method.
// Panics raised by the sink are turned into errors.
func copyElement(el types.Element, sink Sink) (copied bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			copied, err = false, fmt.Errorf("panic: %v", r)
		}
	}()

	switch c := el.Clone().(type) {
	case *types.Paragraph:
		err = sink.AppendParagraph(c)
	case *types.ListItem:
		err = sink.AppendListItem(c)
	case *types.Table:
		err = sink.AppendTable(c)
	case *types.HorizontalRule:
		err = sink.AppendHorizontalRule()
	case *types.PageBreak:
		err = sink.AppendPageBreak()
	case *types.TableOfContents:
		err = sink.AppendTableOfContents(c)
	case *types.InlineImage:
		err = sink.AppendImage(c)
	default:
		return false, nil
	}
	return err == nil, err
}

// appendHeading emits a heading marker with the same panic containment as
// element copies.
func appendHeading(sink Sink, title string, level int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return sink.AppendHeading(title, level)
}
