// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sift

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/tabsift/internal/logging"
	"github.com/pdiddy/tabsift/pkg/types"
)

func allKinds() []types.Element {
	return []types.Element{
		&types.Paragraph{Text: "intro"},
		&types.ListItem{Text: "point", Level: 1},
		&types.Table{Rows: [][]string{{"a", "b"}, {"c", "d"}}},
		&types.HorizontalRule{},
		&types.PageBreak{},
		&types.TableOfContents{Entries: []types.TOCEntry{{Text: "x", Level: 1}}},
		&types.InlineImage{Name: "fig.png", ContentType: "image/png", Data: []byte{1, 2}},
		&types.Other{Tag: "equation"},
	}
}

func TestCopyAll_DispatchesEveryKind(t *testing.T) {
	sink := &recordingSink{}
	report := CopyAll(allKinds(), sink, logging.Discard())

	assert.Equal(t, []string{
		"p:intro", "li1:point", "table:2x2", "hr", "pb", "toc:1", "img:fig.png",
	}, sink.events)
	assert.Equal(t, 7, report.Copied)
	assert.Equal(t, 1, report.Dropped)
	assert.Empty(t, report.Failures)
	assert.NoError(t, report.Err())
}

func TestCopyAll_ContinuesAfterFailure(t *testing.T) {
	tests := []struct {
		name string
		sink *recordingSink
	}{
		{
			name: "sink error",
			sink: &recordingSink{fail: map[types.ElementKind]bool{types.KindTable: true}},
		},
		{
			name: "sink panic",
			sink: &recordingSink{panics: map[types.ElementKind]bool{types.KindTable: true}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := []types.Element{
				&types.Paragraph{Text: "before"},
				&types.Table{Rows: [][]string{{"x"}}},
				&types.Paragraph{Text: "after"},
			}
			report := CopyAll(src, tt.sink, logging.Discard())

			assert.Equal(t, []string{"p:before", "p:after"}, tt.sink.events)
			assert.Equal(t, 2, report.Copied)
			require.Len(t, report.Failures, 1)
			assert.Equal(t, 1, report.Failures[0].Index)
			assert.Equal(t, types.KindTable, report.Failures[0].Kind)
			assert.Error(t, report.Err())
		})
	}
}

func TestCopyAll_DetachesElements(t *testing.T) {
	orig := &types.Table{Rows: [][]string{{"a"}}}
	var got *types.Table
	sink := &captureSink{onTable: func(t *types.Table) { got = t }}

	CopyAll([]types.Element{orig}, sink, logging.Discard())

	require.NotNil(t, got)
	got.Rows[0][0] = "changed"
	assert.Equal(t, "a", orig.Rows[0][0])
}

func TestCopyAll_NilElementDropped(t *testing.T) {
	sink := &recordingSink{}
	report := CopyAll([]types.Element{nil, &types.Paragraph{Text: "x"}}, sink, nil)
	assert.Equal(t, 1, report.Copied)
	assert.Equal(t, 1, report.Dropped)
}

func TestCopyReport_Merge(t *testing.T) {
	r := CopyReport{Copied: 1}
	r.Merge(CopyReport{Copied: 2, Dropped: 1, Failures: []CopyError{{Index: 0, Kind: types.KindTable}}})
	assert.Equal(t, 3, r.Copied)
	assert.Equal(t, 1, r.Dropped)
	assert.Len(t, r.Failures, 1)
}

// captureSink is a recordingSink that hands tables to a callback.
type captureSink struct {
	recordingSink
	onTable func(*types.Table)
}

func (s *captureSink) AppendTable(t *types.Table) error {
	s.onTable(t)
	return nil
}
