// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/pdiddy/tabsift/pkg/types"
)

// MarkdownParser reads CommonMark with GFM tables using goldmark. ATX and
// setext headings open sections.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(data []byte) (*types.Document, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	root := md.Parser().Parse(text.NewReader(data))

	r := mdReader{src: data}
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		r.block(n)
	}
	return r.out.document(), nil
}

type mdReader struct {
	src []byte
	out outline
}

func (r *mdReader) block(n ast.Node) {
	switch node := n.(type) {
	case *ast.Heading:
		title, imgs := r.inline(node)
		r.out.heading(title, node.Level)
		r.addAll(imgs)
	case *ast.Paragraph, *ast.TextBlock:
		txt, imgs := r.inline(node)
		if txt != "" || len(imgs) == 0 {
			r.out.add(&types.Paragraph{Text: txt})
		}
		r.addAll(imgs)
	case *ast.List:
		r.list(node, 0)
	case *ast.ThematicBreak:
		r.out.add(&types.HorizontalRule{})
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		r.out.add(&types.Paragraph{Text: strings.TrimRight(r.lines(node), "\n")})
	case *ast.Blockquote:
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			r.block(c)
		}
	case *ast.HTMLBlock:
		if strings.Contains(r.lines(node), "page-break-after") {
			r.out.add(&types.PageBreak{})
		} else {
			r.out.add(&types.Other{Tag: "html"})
		}
	case *east.Table:
		r.out.add(r.table(node))
	default:
		r.out.add(&types.Other{Tag: n.Kind().String()})
	}
}

func (r *mdReader) list(l *ast.List, level int) {
	for item := l.FirstChild(); item != nil; item = item.NextSibling() {
		var (
			parts  []string
			imgs   []types.Element
			nested []*ast.List
		)
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			if sub, ok := c.(*ast.List); ok {
				nested = append(nested, sub)
				continue
			}
			txt, im := r.inline(c)
			if txt != "" {
				parts = append(parts, txt)
			}
			imgs = append(imgs, im...)
		}
		r.out.add(&types.ListItem{
			Text:    strings.Join(parts, "\n"),
			Level:   level,
			Ordered: l.IsOrdered(),
		})
		r.addAll(imgs)
		for _, sub := range nested {
			r.list(sub, level+1)
		}
	}
}

func (r *mdReader) table(t *east.Table) *types.Table {
	tbl := &types.Table{}
	for row := t.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			txt, _ := r.inline(cell)
			cells = append(cells, txt)
		}
		tbl.Rows = append(tbl.Rows, cells)
	}
	return tbl
}

// inline flattens the inline children of n into text, collecting images
// separately.
func (r *mdReader) inline(n ast.Node) (string, []types.Element) {
	var (
		buf  bytes.Buffer
		imgs []types.Element
	)
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch v := c.(type) {
			case *ast.Text:
				buf.Write(v.Value(r.src))
				if v.SoftLineBreak() || v.HardLineBreak() {
					buf.WriteByte('\n')
				}
			case *ast.String:
				buf.Write(v.Value)
			case *ast.AutoLink:
				buf.Write(v.URL(r.src))
			case *ast.RawHTML:
			case *ast.Image:
				var alt bytes.Buffer
				for a := v.FirstChild(); a != nil; a = a.NextSibling() {
					if t, ok := a.(*ast.Text); ok {
						alt.Write(t.Value(r.src))
					}
				}
				imgs = append(imgs, imageFromRef(string(v.Destination), alt.String()))
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return strings.TrimSpace(buf.String()), imgs
}

func (r *mdReader) lines(n ast.Node) string {
	return string(n.Lines().Value(r.src))
}

func (r *mdReader) addAll(els []types.Element) {
	for _, el := range els {
		r.out.add(el)
	}
}
