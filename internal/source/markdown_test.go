// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/tabsift/pkg/types"
)

func TestMarkdownParser_Sections(t *testing.T) {
	src := "前書き\n\n" +
		"# はじめに\n\nようこそ\n\n" +
		"# 議事録\n\n" +
		"## 決定事項\n\n" +
		"1. 一つ目\n2. 二つ目\n   - 補足\n\n" +
		"| 項目 | 担当 |\n|---|---|\n| DB | 田中 |\n\n" +
		"---\n\n" +
		"![構成図](img/arch.png)\n\n" +
		"```\ncode line\n```\n"

	doc, err := (&MarkdownParser{}).Parse([]byte(src))
	require.NoError(t, err)

	assert.Equal(t, []types.Element{&types.Paragraph{Text: "前書き"}}, doc.Body)
	require.Len(t, doc.Sections, 2)
	assert.Equal(t, "はじめに", doc.Sections[0].Title)
	assert.Equal(t, []types.Element{&types.Paragraph{Text: "ようこそ"}}, doc.Sections[0].Content)

	minutes := doc.Sections[1]
	assert.Empty(t, minutes.Content)
	require.Len(t, minutes.Children, 1)
	decisions := minutes.Children[0]
	assert.Equal(t, "決定事項", decisions.Title)

	c := decisions.Content
	require.Len(t, c, 7)
	assert.Equal(t, &types.ListItem{Text: "一つ目", Level: 0, Ordered: true}, c[0])
	assert.Equal(t, &types.ListItem{Text: "二つ目", Level: 0, Ordered: true}, c[1])
	assert.Equal(t, &types.ListItem{Text: "補足", Level: 1, Ordered: false}, c[2])
	assert.Equal(t, &types.Table{Rows: [][]string{{"項目", "担当"}, {"DB", "田中"}}}, c[3])
	assert.Equal(t, &types.HorizontalRule{}, c[4])
	img, ok := c[5].(*types.InlineImage)
	require.True(t, ok)
	assert.Equal(t, "構成図", img.Alt)
	assert.Equal(t, "img/arch.png", img.URL)
	assert.Equal(t, "arch.png", img.Name)
	assert.Equal(t, &types.Paragraph{Text: "code line"}, c[6])
}

func TestMarkdownParser_FlatWithoutHeadings(t *testing.T) {
	doc, err := (&MarkdownParser{}).Parse([]byte("one\n\ntwo\n\n<div style=\"page-break-after: always\"></div>\n\nthree\n"))
	require.NoError(t, err)
	assert.True(t, doc.IsFlat())
	assert.Equal(t, []types.Element{
		&types.Paragraph{Text: "one"},
		&types.Paragraph{Text: "two"},
		&types.PageBreak{},
		&types.Paragraph{Text: "three"},
	}, doc.Body)
}

func TestMarkdownParser_DataURIImage(t *testing.T) {
	doc, err := (&MarkdownParser{}).Parse([]byte("![dot](data:image/png;base64," + onePixelPNG + ")\n"))
	require.NoError(t, err)
	require.Len(t, doc.Body, 1)
	img := doc.Body[0].(*types.InlineImage)
	assert.True(t, img.Embedded())
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, "image.png", img.Name)
	assert.Empty(t, img.URL)
}
