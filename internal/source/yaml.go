// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"encoding/base64"
	"fmt"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/tabsift/pkg/types"
)

// YAMLParser reads an explicit tab tree:
//
//	tabs:
//	  - title: 概要
//	    content:
//	      - Plain strings are paragraphs.
//	      - list_item: {text: point, level: 0}
//	    children: [...]
//
// A file with only a top-level body: is a flat document.
type YAMLParser struct{}

type yamlDocument struct {
	Tabs []yamlTab     `yaml:"tabs"`
	Body []yamlElement `yaml:"body"`
}

type yamlTab struct {
	Title    string            `yaml:"title"`
	Type     types.SectionKind `yaml:"type"`
	Content  []yamlElement     `yaml:"content"`
	Children []yamlTab         `yaml:"children"`
}

type yamlListItem struct {
	Text    string `yaml:"text"`
	Level   int    `yaml:"level"`
	Ordered bool   `yaml:"ordered"`
}

type yamlTOCEntry struct {
	Text  string `yaml:"text"`
	Level int    `yaml:"level"`
}

type yamlImage struct {
	Name        string `yaml:"name"`
	ContentType string `yaml:"content_type"`
	Alt         string `yaml:"alt"`
	Data        string `yaml:"data"` // base64
	URL         string `yaml:"url"`
}

// yamlElement is a one-key mapping naming the element kind, or a bare
// string for a paragraph.
type yamlElement struct {
	Paragraph      *string        `yaml:"paragraph"`
	ListItem       *yamlListItem  `yaml:"list_item"`
	Table          [][]string     `yaml:"table"`
	HorizontalRule bool           `yaml:"horizontal_rule"`
	PageBreak      bool           `yaml:"page_break"`
	TOC            []yamlTOCEntry `yaml:"toc"`
	Image          *yamlImage     `yaml:"image"`
	Other          string         `yaml:"other"`
}

func (e *yamlElement) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		e.Paragraph = &s
		return nil
	}
	type plain yamlElement
	return value.Decode((*plain)(e))
}

func (e *yamlElement) element() (types.Element, error) {
	switch {
	case e.Paragraph != nil:
		return &types.Paragraph{Text: *e.Paragraph}, nil
	case e.ListItem != nil:
		return &types.ListItem{Text: e.ListItem.Text, Level: e.ListItem.Level, Ordered: e.ListItem.Ordered}, nil
	case e.Table != nil:
		return &types.Table{Rows: e.Table}, nil
	case e.HorizontalRule:
		return &types.HorizontalRule{}, nil
	case e.PageBreak:
		return &types.PageBreak{}, nil
	case e.TOC != nil:
		toc := &types.TableOfContents{}
		for _, t := range e.TOC {
			toc.Entries = append(toc.Entries, types.TOCEntry{Text: t.Text, Level: max(t.Level, 1)})
		}
		return toc, nil
	case e.Image != nil:
		img := &types.InlineImage{
			Name:        e.Image.Name,
			ContentType: e.Image.ContentType,
			Alt:         e.Image.Alt,
			URL:         e.Image.URL,
		}
		if e.Image.Data != "" {
			data, err := base64.StdEncoding.DecodeString(e.Image.Data)
			if err != nil {
				return nil, fmt.Errorf("image %s: decoding data: %w", e.Image.Name, err)
			}
			img.Data = data
		}
		return img, nil
	case e.Other != "":
		return &types.Other{Tag: e.Other}, nil
	}
	return &types.Other{Tag: "empty"}, nil
}

func (p *YAMLParser) Parse(data []byte) (*types.Document, error) {
	var raw yamlDocument
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	doc := &types.Document{}
	var err error
	if doc.Body, err = yamlElements(raw.Body); err != nil {
		return nil, err
	}
	if doc.Sections, err = yamlTabs(raw.Tabs); err != nil {
		return nil, err
	}
	return doc, nil
}

func yamlTabs(tabs []yamlTab) ([]*types.SectionNode, error) {
	var nodes []*types.SectionNode
	for _, t := range tabs {
		kind := t.Type
		if kind == "" {
			kind = types.SectionDocument
		}
		if kind != types.SectionDocument && kind != types.SectionGroup {
			return nil, fmt.Errorf("tab %q: unknown type %q", t.Title, t.Type)
		}
		n := &types.SectionNode{Title: t.Title, Kind: kind}
		var err error
		if kind == types.SectionDocument {
			if n.Content, err = yamlElements(t.Content); err != nil {
				return nil, fmt.Errorf("tab %q: %w", t.Title, err)
			}
		}
		if n.Children, err = yamlTabs(t.Children); err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func yamlElements(in []yamlElement) ([]types.Element, error) {
	var out []types.Element
	for i := range in {
		el, err := in[i].element()
		if err != nil {
			return nil, err
		}
		out = append(out, el)
	}
	return out, nil
}
