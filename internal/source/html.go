// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/pdiddy/tabsift/pkg/types"
)

// HTMLParser reads HTML documents. h1..h6 open sections; everything else in
// the body is mapped to content elements.
type HTMLParser struct{}

func (p *HTMLParser) Parse(data []byte) (*types.Document, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	r := htmlReader{}
	if body := findElement(doc, "body"); body != nil {
		r.children(body)
	} else {
		r.children(doc)
	}
	return r.out.document(), nil
}

type htmlReader struct {
	out outline
}

func (r *htmlReader) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.node(c)
	}
}

func (r *htmlReader) node(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		if t := collapseSpace(n.Data); t != "" {
			r.out.add(&types.Paragraph{Text: t})
		}
		return
	case html.ElementNode:
	default:
		return
	}

	if level := headingLevel(n.Data); level > 0 {
		title, imgs := inlineContent(n)
		r.out.heading(title, level)
		r.addAll(imgs)
		return
	}

	switch n.Data {
	case "script", "style", "noscript", "template", "head":
	case "p":
		txt, imgs := inlineContent(n)
		if txt != "" || len(imgs) == 0 {
			r.out.add(&types.Paragraph{Text: txt})
		}
		r.addAll(imgs)
	case "pre":
		r.out.add(&types.Paragraph{Text: strings.Trim(textContent(n), "\n")})
	case "ul", "ol":
		r.list(n, 0)
	case "table":
		r.out.add(htmlTable(n))
	case "hr":
		r.out.add(&types.HorizontalRule{})
	case "img":
		r.out.add(imageFromRef(attr(n, "src"), attr(n, "alt")))
	case "br":
	default:
		breakBefore, breakAfter := pageBreaks(n)
		if breakBefore {
			r.out.add(&types.PageBreak{})
		}
		r.children(n)
		if breakAfter {
			r.out.add(&types.PageBreak{})
		}
	}
}

func (r *htmlReader) list(n *html.Node, level int) {
	ordered := n.Data == "ol"
	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}
		var (
			parts  []string
			imgs   []types.Element
			nested []*html.Node
		)
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.Data == "ul" || c.Data == "ol") {
				nested = append(nested, c)
				continue
			}
			txt, im := inlineContent(c)
			if txt != "" {
				parts = append(parts, txt)
			}
			imgs = append(imgs, im...)
		}
		r.out.add(&types.ListItem{Text: strings.Join(parts, " "), Level: level, Ordered: ordered})
		r.addAll(imgs)
		for _, sub := range nested {
			r.list(sub, level+1)
		}
	}
}

func (r *htmlReader) addAll(els []types.Element) {
	for _, el := range els {
		r.out.add(el)
	}
}

func htmlTable(n *html.Node) *types.Table {
	tbl := &types.Table{}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if c.Data != "tr" {
				walk(c)
				continue
			}
			var row []string
			for cell := c.FirstChild; cell != nil; cell = cell.NextSibling {
				if cell.Type == html.ElementNode && (cell.Data == "td" || cell.Data == "th") {
					row = append(row, collapseSpace(textContent(cell)))
				}
			}
			tbl.Rows = append(tbl.Rows, row)
		}
	}
	walk(n)
	return tbl
}

// inlineContent returns the text of n with <br> as newlines, plus any
// images it contains.
func inlineContent(n *html.Node) (string, []types.Element) {
	var (
		buf  strings.Builder
		imgs []types.Element
	)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			buf.WriteString(n.Data)
			return
		case n.Type == html.ElementNode && n.Data == "br":
			buf.WriteByte('\n')
			return
		case n.Type == html.ElementNode && n.Data == "img":
			imgs = append(imgs, imageFromRef(attr(n, "src"), attr(n, "alt")))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	lines := strings.Split(buf.String(), "\n")
	for i, l := range lines {
		lines[i] = collapseSpace(l)
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), imgs
}

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

func pageBreaks(n *html.Node) (before, after bool) {
	style := strings.ReplaceAll(strings.ToLower(attr(n, "style")), " ", "")
	before = strings.Contains(style, "page-break-before:always") || strings.Contains(style, "break-before:page")
	after = strings.Contains(style, "page-break-after:always") || strings.Contains(style, "break-after:page")
	return before, after
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return buf.String()
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if f := findElement(c, tag); f != nil {
			return f
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
