// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sift

import (
	"errors"
	"fmt"

	"github.com/pdiddy/tabsift/pkg/types"
)

// recordingSink implements Sink and records one line per append. Appends of
// a kind listed in fail return an error; kinds listed in panics panic.
type recordingSink struct {
	events []string
	fail   map[types.ElementKind]bool
	panics map[types.ElementKind]bool
}

func (s *recordingSink) check(kind types.ElementKind) error {
	if s.panics[kind] {
		panic("sink exploded")
	}
	if s.fail[kind] {
		return errors.New("sink rejected " + string(kind))
	}
	return nil
}

func (s *recordingSink) AppendHeading(text string, level int) error {
	if err := s.check(KindHeading); err != nil {
		return err
	}
	s.events = append(s.events, fmt.Sprintf("h%d:%s", level, text))
	return nil
}

func (s *recordingSink) AppendParagraph(p *types.Paragraph) error {
	if err := s.check(types.KindParagraph); err != nil {
		return err
	}
	s.events = append(s.events, "p:"+p.Text)
	return nil
}

func (s *recordingSink) AppendListItem(li *types.ListItem) error {
	if err := s.check(types.KindListItem); err != nil {
		return err
	}
	s.events = append(s.events, fmt.Sprintf("li%d:%s", li.Level, li.Text))
	return nil
}

func (s *recordingSink) AppendTable(t *types.Table) error {
	if err := s.check(types.KindTable); err != nil {
		return err
	}
	s.events = append(s.events, fmt.Sprintf("table:%dx%d", len(t.Rows), t.Columns()))
	return nil
}

func (s *recordingSink) AppendHorizontalRule() error {
	if err := s.check(types.KindHorizontalRule); err != nil {
		return err
	}
	s.events = append(s.events, "hr")
	return nil
}

func (s *recordingSink) AppendPageBreak() error {
	if err := s.check(types.KindPageBreak); err != nil {
		return err
	}
	s.events = append(s.events, "pb")
	return nil
}

func (s *recordingSink) AppendTableOfContents(toc *types.TableOfContents) error {
	if err := s.check(types.KindTableOfContents); err != nil {
		return err
	}
	s.events = append(s.events, fmt.Sprintf("toc:%d", len(toc.Entries)))
	return nil
}

func (s *recordingSink) AppendImage(img *types.InlineImage) error {
	if err := s.check(types.KindInlineImage); err != nil {
		return err
	}
	s.events = append(s.events, "img:"+img.Name)
	return nil
}
