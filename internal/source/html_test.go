// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/tabsift/pkg/types"
)

func TestHTMLParser_Sections(t *testing.T) {
	src := `<html><head><title>t</title><style>p{}</style></head><body>
<p>前書き</p>
<h1>概要</h1>
<p>一行目<br>二行目</p>
<ol><li>手順<ul><li>詳細</li></ul></li></ol>
<table><tr><th>項目</th><th>担当</th></tr><tr><td>DB</td><td>田中</td></tr></table>
<hr>
<div style="page-break-after: always"><p>改ページ前</p></div>
<h2>図</h2>
<p><img src="fig.png" alt="構成図"></p>
<script>ignored()</script>
</body></html>`

	doc, err := (&HTMLParser{}).Parse([]byte(src))
	require.NoError(t, err)

	assert.Equal(t, []types.Element{&types.Paragraph{Text: "前書き"}}, doc.Body)
	require.Len(t, doc.Sections, 1)
	overview := doc.Sections[0]
	assert.Equal(t, "概要", overview.Title)

	assert.Equal(t, []types.Element{
		&types.Paragraph{Text: "一行目\n二行目"},
		&types.ListItem{Text: "手順", Level: 0, Ordered: true},
		&types.ListItem{Text: "詳細", Level: 1, Ordered: false},
		&types.Table{Rows: [][]string{{"項目", "担当"}, {"DB", "田中"}}},
		&types.HorizontalRule{},
		&types.Paragraph{Text: "改ページ前"},
		&types.PageBreak{},
	}, overview.Content)

	require.Len(t, overview.Children, 1)
	fig := overview.Children[0]
	require.Len(t, fig.Content, 1)
	img := fig.Content[0].(*types.InlineImage)
	assert.Equal(t, "構成図", img.Alt)
	assert.Equal(t, "fig.png", img.URL)
}

func TestHTMLParser_Flat(t *testing.T) {
	doc, err := (&HTMLParser{}).Parse([]byte("<p>only</p>"))
	require.NoError(t, err)
	assert.True(t, doc.IsFlat())
	assert.Equal(t, []types.Element{&types.Paragraph{Text: "only"}}, doc.Body)
}

func TestHeadingLevel(t *testing.T) {
	assert.Equal(t, 1, headingLevel("h1"))
	assert.Equal(t, 6, headingLevel("h6"))
	assert.Equal(t, 0, headingLevel("h7"))
	assert.Equal(t, 0, headingLevel("hr"))
	assert.Equal(t, 0, headingLevel("header"))
}
