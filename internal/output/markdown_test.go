// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package output

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/tabsift/pkg/types"
)

func TestMarkdownWriter_Document(t *testing.T) {
	w := NewMarkdownWriter("doc", "")
	require.NoError(t, w.AppendTableOfContents(&types.TableOfContents{Entries: []types.TOCEntry{
		{Text: "概要", Level: 1},
		{Text: "Next Steps", Level: 2},
	}}))
	require.NoError(t, w.AppendHeading("概要", 1))
	require.NoError(t, w.AppendParagraph(&types.Paragraph{Text: "一行目\n二行目"}))
	require.NoError(t, w.AppendParagraph(&types.Paragraph{}))
	require.NoError(t, w.AppendParagraph(&types.Paragraph{}))
	require.NoError(t, w.AppendListItem(&types.ListItem{Text: "a", Ordered: true}))
	require.NoError(t, w.AppendListItem(&types.ListItem{Text: "b", Level: 1}))
	require.NoError(t, w.AppendListItem(&types.ListItem{Text: "c", Ordered: true}))
	require.NoError(t, w.AppendTable(&types.Table{Rows: [][]string{{"項目", "備考"}, {"a|b", "x\ny"}}}))
	require.NoError(t, w.AppendHeading("Next Steps", 9))
	require.NoError(t, w.AppendHorizontalRule())
	require.NoError(t, w.AppendPageBreak())

	want := strings.Join([]string{
		"- [概要](#概要)",
		"    - [Next Steps](#next-steps)",
		"",
		"# 概要",
		"",
		"一行目  ",
		"二行目",
		"",
		"1. a",
		"    - b",
		"2. c",
		"",
		"| 項目 | 備考 |",
		"| --- | --- |",
		`| a\|b | x<br>y |`,
		"",
		"###### Next Steps",
		"",
		"---",
		"",
		PageBreakMarker,
	}, "\n") + "\n"
	assert.Equal(t, want, w.String())
}

func TestMarkdownWriter_Images(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\nrest")

	t.Run("inline data uri", func(t *testing.T) {
		w := NewMarkdownWriter("doc", "")
		require.NoError(t, w.AppendImage(&types.InlineImage{Alt: "図", ContentType: "image/png", Data: png}))
		assert.Equal(t, "![図](data:image/png;base64,"+base64.StdEncoding.EncodeToString(png)+")\n", w.String())
	})

	t.Run("images dir", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "images")
		w := NewMarkdownWriter("doc", dir)
		require.NoError(t, w.AppendImage(&types.InlineImage{Alt: "a", ContentType: "image/jpeg", Data: []byte("jpg")}))
		require.NoError(t, w.AppendImage(&types.InlineImage{Alt: "b", Data: png}))

		first := filepath.Join(dir, "doc_img001.jpg")
		second := filepath.Join(dir, "doc_img002.png")
		assert.FileExists(t, first)
		assert.FileExists(t, second)
		assert.Contains(t, w.String(), "![a]("+filepath.ToSlash(first)+")")

		data, err := os.ReadFile(second)
		require.NoError(t, err)
		assert.Equal(t, png, data)
	})

	t.Run("remote url", func(t *testing.T) {
		w := NewMarkdownWriter("doc", "")
		require.NoError(t, w.AppendImage(&types.InlineImage{Alt: "r", URL: "https://example.com/x.png"}))
		assert.Equal(t, "![r](https://example.com/x.png)\n", w.String())
	})

	t.Run("nothing to reference", func(t *testing.T) {
		assert.Error(t, NewMarkdownWriter("doc", "").AppendImage(&types.InlineImage{Name: "x"}))
	})
}

func TestMarkdownWriter_Empty(t *testing.T) {
	assert.Equal(t, "", NewMarkdownWriter("doc", "").String())
}

func TestAnchor(t *testing.T) {
	assert.Equal(t, "next-steps", Anchor("Next Steps"))
	assert.Equal(t, "労務関連勤怠稼働のつけ方", Anchor("労務関連（勤怠・稼働のつけ方）"))
	assert.Equal(t, "v12-notes", Anchor("v1.2 notes"))
}
