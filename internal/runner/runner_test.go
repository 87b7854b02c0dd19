// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/tabsift/internal/logging"
	"github.com/pdiddy/tabsift/internal/match"
	"github.com/pdiddy/tabsift/internal/output"
	"github.com/pdiddy/tabsift/internal/sift"
	"github.com/pdiddy/tabsift/internal/source"
	"github.com/pdiddy/tabsift/internal/state"
	"github.com/pdiddy/tabsift/pkg/types"
)

// fakeClock is a manually advanced time source.
type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// fakeSource serves documents from memory. onOpen runs before each Open.
type fakeSource struct {
	ids     []string
	docs    map[string]*types.Document
	listErr error
	onOpen  func(id string)
	opened  []string
}

func (s *fakeSource) List(context.Context) ([]string, error) {
	return s.ids, s.listErr
}

func (s *fakeSource) Open(_ context.Context, id string) (*types.Document, error) {
	s.opened = append(s.opened, id)
	if s.onOpen != nil {
		s.onOpen(id)
	}
	d, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", source.ErrNotFound, id)
	}
	return d, nil
}

// docsFor builds one-section documents named after their IDs.
func docsFor(ids ...string) map[string]*types.Document {
	docs := make(map[string]*types.Document, len(ids))
	for _, id := range ids {
		docs[id] = &types.Document{
			ID:   id,
			Name: id,
			Sections: []*types.SectionNode{
				{Title: "はじめに", Kind: types.SectionDocument, Content: []types.Element{&types.Paragraph{Text: "intro"}}},
				{Title: "概要", Kind: types.SectionDocument, Content: []types.Element{&types.Paragraph{Text: id}}},
			},
		}
	}
	return docs
}

// fakeCreator hands out in-memory destinations.
type fakeCreator struct {
	dests     []*fakeDest
	createErr error
	moveErr   error
}

func (c *fakeCreator) Create(_ context.Context, name string) (output.Destination, error) {
	if c.createErr != nil {
		return nil, c.createErr
	}
	d := &fakeDest{name: name, dir: "root", moveErr: c.moveErr}
	c.dests = append(c.dests, d)
	return d, nil
}

func (c *fakeCreator) names() []string {
	var out []string
	for _, d := range c.dests {
		out = append(out, d.name)
	}
	return out
}

type fakeDest struct {
	name      string
	dir       string
	moveErr   error
	finalized bool
	discarded bool
	sink      lineSink
}

func (d *fakeDest) ID() string      { return d.dir + "/" + d.name }
func (d *fakeDest) Sink() sift.Sink { return &d.sink }
func (d *fakeDest) MoveTo(dir string) error {
	if d.moveErr != nil {
		return d.moveErr
	}
	d.dir = dir
	return nil
}
func (d *fakeDest) Finalize() error {
	d.finalized = true
	return nil
}
func (d *fakeDest) Discard() error {
	d.discarded = true
	return nil
}

// lineSink records headings and paragraphs.
type lineSink struct{ lines []string }

func (s *lineSink) AppendHeading(text string, level int) error {
	s.lines = append(s.lines, fmt.Sprintf("h%d:%s", level, text))
	return nil
}
func (s *lineSink) AppendParagraph(p *types.Paragraph) error {
	s.lines = append(s.lines, "p:"+p.Text)
	return nil
}
func (s *lineSink) AppendListItem(*types.ListItem) error               { return nil }
func (s *lineSink) AppendTable(*types.Table) error                     { return nil }
func (s *lineSink) AppendHorizontalRule() error                        { return nil }
func (s *lineSink) AppendPageBreak() error                             { return nil }
func (s *lineSink) AppendTableOfContents(*types.TableOfContents) error { return nil }
func (s *lineSink) AppendImage(*types.InlineImage) error               { return nil }

type harness struct {
	store   *state.MemoryStore
	source  *fakeSource
	creator *fakeCreator
	clock   *fakeClock
	out     *bytes.Buffer
	runner  *Runner
}

func newHarness(t *testing.T, ids ...string) *harness {
	t.Helper()
	h := &harness{
		store:   state.NewMemoryStore(),
		source:  &fakeSource{ids: ids, docs: docsFor(ids...)},
		creator: &fakeCreator{},
		clock:   &fakeClock{t: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)},
		out:     &bytes.Buffer{},
	}
	cfg := types.SiftConfig{
		OutputDir:    "out",
		OutputPrefix: types.DefaultOutputPrefix,
		TimeLimit:    15 * time.Minute,
	}
	h.runner = New(cfg, h.store, h.source, h.creator, match.MustCompile("^はじめに$"),
		WithClock(h.clock.Now),
		WithLogger(logging.Discard()),
		WithOutput(h.out),
	)
	return h
}

func (h *harness) get(t *testing.T, key string) (string, bool) {
	t.Helper()
	v, ok, err := h.store.Get(context.Background(), key)
	require.NoError(t, err)
	return v, ok
}

func TestRun_SuspendAndResume(t *testing.T) {
	h := newHarness(t, "A", "B", "C")
	h.source.onOpen = func(string) { h.clock.Advance(10 * time.Minute) }
	ctx := context.Background()

	sum, err := h.runner.Run(ctx)
	require.NoError(t, err)
	assert.True(t, sum.Started)
	assert.True(t, sum.Suspended)
	assert.False(t, sum.Completed)
	assert.Equal(t, 2, sum.Processed)
	assert.Equal(t, 2, sum.Cursor)

	idx, _ := h.get(t, KeyIndex)
	assert.Equal(t, "2", idx)
	running, _ := h.get(t, KeyRunning)
	assert.Equal(t, "true", running)
	list, _ := h.get(t, KeySourceList)
	assert.JSONEq(t, `["A","B","C"]`, list)

	st, err := h.runner.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, RunState{Phase: PhaseInProgress, Cursor: 2, Total: 3}, st)

	sum, err = h.runner.Run(ctx)
	require.NoError(t, err)
	assert.False(t, sum.Started)
	assert.True(t, sum.Completed)
	assert.Equal(t, 1, sum.Processed)

	assert.Equal(t, []string{"A", "B", "C"}, h.source.opened)
	assert.Equal(t, []string{"【選別済】A", "【選別済】B", "【選別済】C"}, h.creator.names())

	all, err := h.store.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRun_ProcessesAndFiltersEachItem(t *testing.T) {
	h := newHarness(t, "A")

	sum, err := h.runner.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, sum.Completed)

	require.Len(t, h.creator.dests, 1)
	d := h.creator.dests[0]
	assert.Equal(t, "out", d.dir)
	assert.True(t, d.finalized)
	assert.Equal(t, []string{"h1:概要", "p:A"}, d.sink.lines)

	assert.Contains(t, h.out.String(), "processing (1/1): A")
	assert.Contains(t, h.out.String(), "1 sections skipped")
	assert.Contains(t, h.out.String(), "cycle complete")
}

func TestRun_EmptyEnumeration(t *testing.T) {
	h := newHarness(t)

	_, err := h.runner.Run(context.Background())
	assert.ErrorIs(t, err, ErrEnumerationEmpty)

	all, err := h.store.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRun_ListError(t *testing.T) {
	h := newHarness(t, "A")
	h.source.listErr = errors.New("folder gone")

	_, err := h.runner.Run(context.Background())
	require.Error(t, err)
	_, ok := h.get(t, KeyRunning)
	assert.False(t, ok)
}

func TestRun_ItemFailuresAdvanceCursor(t *testing.T) {
	tests := []struct {
		name  string
		setup func(h *harness)
	}{
		{"resolution failure", func(h *harness) { delete(h.source.docs, "B") }},
		{"create failure", func(h *harness) { h.creator.createErr = errors.New("quota exceeded") }},
		{"move failure", func(h *harness) { h.creator.moveErr = errors.New("permission denied") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, "A", "B", "C")
			tt.setup(h)

			sum, err := h.runner.Run(context.Background())
			require.NoError(t, err)
			assert.True(t, sum.Completed)
			assert.Equal(t, 3, sum.Processed)
			assert.True(t, sum.HasFailures())
			assert.Equal(t, []string{"A", "B", "C"}, h.source.opened)
			assert.Contains(t, h.out.String(), "failed:")
		})
	}
}

func TestRun_MoveFailureDiscardsPlaceholder(t *testing.T) {
	h := newHarness(t, "A")
	h.creator.moveErr = errors.New("permission denied")

	sum, err := h.runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Failed)

	require.Len(t, h.creator.dests, 1)
	d := h.creator.dests[0]
	assert.True(t, d.discarded)
	assert.False(t, d.finalized)
	assert.Empty(t, d.sink.lines)
}

// TestRun_SlicingDoesNotChangeResult runs the same enumeration under
// different time budgets. However the work is split across invocations,
// each item is processed once, in order, with the same output.
func TestRun_SlicingDoesNotChangeResult(t *testing.T) {
	ids := []string{"A", "B", "C", "D"}
	tests := []struct {
		name        string
		limit       time.Duration
		invocations int
		firstCursor string
	}{
		{"one item per invocation", 5 * time.Minute, 4, "1"},
		{"two items per invocation", 15 * time.Minute, 2, "2"},
		{"single invocation", time.Hour, 1, ""},
	}

	reference := newHarness(t, ids...)
	reference.runner.timeLimit = 24 * time.Hour
	_, err := reference.runner.Run(context.Background())
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, ids...)
			h.runner.timeLimit = tt.limit
			h.source.onOpen = func(string) { h.clock.Advance(10 * time.Minute) }
			ctx := context.Background()

			runs := 0
			for {
				sum, err := h.runner.Run(ctx)
				require.NoError(t, err)
				runs++
				if runs == 1 && tt.firstCursor != "" {
					assert.True(t, sum.Suspended)
					idx, ok := h.get(t, KeyIndex)
					require.True(t, ok)
					assert.Equal(t, tt.firstCursor, idx)
				}
				if sum.Completed {
					break
				}
				require.Less(t, runs, 10, "run never completes")
			}

			assert.Equal(t, tt.invocations, runs)
			assert.Equal(t, ids, h.source.opened, "each item opened exactly once")
			assert.Equal(t, reference.creator.names(), h.creator.names())
			require.Len(t, h.creator.dests, len(reference.creator.dests))
			for i, d := range h.creator.dests {
				assert.Equal(t, reference.creator.dests[i].sink.lines, d.sink.lines)
				assert.Equal(t, "out", d.dir)
				assert.True(t, d.finalized)
			}

			all, err := h.store.All(ctx)
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestRun_ResolutionFailureIsJournaled(t *testing.T) {
	h := newHarness(t, "A", "B", "C")
	delete(h.source.docs, "B")
	h.source.onOpen = func(string) { h.clock.Advance(10 * time.Minute) }
	ctx := context.Background()

	sum, err := h.runner.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 2, sum.Cursor)

	out, err := h.store.Outcomes(ctx)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, state.OutcomeDone, out[0].Status)
	assert.Equal(t, state.OutcomeFailed, out[1].Status)
	assert.Equal(t, "B", out[1].ItemID)
	assert.Contains(t, out[1].Detail, "not found")
}

func TestRun_ResumeUsesSnapshot(t *testing.T) {
	h := newHarness(t, "A", "B", "C")
	ctx := context.Background()
	require.NoError(t, h.store.Set(ctx, KeySourceList, `["A","B","C"]`))
	require.NoError(t, h.store.Set(ctx, KeyIndex, "2"))
	require.NoError(t, h.store.Set(ctx, KeyRunning, "true"))
	h.source.ids = []string{"A", "B", "C", "D"}

	sum, err := h.runner.Run(ctx)
	require.NoError(t, err)
	assert.False(t, sum.Started)
	assert.Equal(t, 1, sum.Processed)
	assert.Equal(t, []string{"C"}, h.source.opened)
}

func TestRun_CursorWritesAreMonotonic(t *testing.T) {
	h := newHarness(t, "A", "B", "C")
	delete(h.source.docs, "B")
	var writes []string
	h.store.SetHook = func(key, value string) error {
		if key == KeyIndex {
			writes = append(writes, value)
		}
		return nil
	}

	_, err := h.runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "1", "2", "3"}, writes)
}

func TestRun_CursorPersistFailure(t *testing.T) {
	h := newHarness(t, "A", "B")
	h.store.SetHook = func(key, value string) error {
		if key == KeyIndex && value == "1" {
			return errors.New("disk full")
		}
		return nil
	}

	sum, err := h.runner.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, sum.Cursor)
	idx, _ := h.get(t, KeyIndex)
	assert.Equal(t, "0", idx)
}

func TestRun_CompletingStateIsCleared(t *testing.T) {
	h := newHarness(t, "A")
	ctx := context.Background()
	require.NoError(t, h.store.Set(ctx, KeySourceList, `["A"]`))
	require.NoError(t, h.store.Set(ctx, KeyIndex, "1"))
	require.NoError(t, h.store.Set(ctx, KeyRunning, "true"))

	st, err := h.runner.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, PhaseCompleting, st.Phase)

	sum, err := h.runner.Run(ctx)
	require.NoError(t, err)
	assert.True(t, sum.Completed)
	assert.Zero(t, sum.Processed)
	assert.Empty(t, h.source.opened)

	st, err = h.runner.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, PhaseNotStarted, st.Phase)
}

func TestRun_CancelledContextSuspends(t *testing.T) {
	h := newHarness(t, "A", "B")
	ctx, cancel := context.WithCancel(context.Background())
	h.source.onOpen = func(string) { cancel() }

	sum, err := h.runner.Run(ctx)
	require.NoError(t, err)
	assert.True(t, sum.Suspended)
	assert.Equal(t, 1, sum.Cursor)

	idx, _ := h.get(t, KeyIndex)
	assert.Equal(t, "1", idx)
}

func TestRun_CorruptState(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"bad list", KeySourceList, "not json"},
		{"bad index", KeyIndex, "-3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, "A")
			ctx := context.Background()
			require.NoError(t, h.store.Set(ctx, KeySourceList, `["A"]`))
			require.NoError(t, h.store.Set(ctx, KeyIndex, "0"))
			require.NoError(t, h.store.Set(ctx, KeyRunning, "true"))
			require.NoError(t, h.store.Set(ctx, tt.key, tt.value))

			_, err := h.runner.Run(ctx)
			assert.Error(t, err)
		})
	}
}

func TestRun_Busy(t *testing.T) {
	h := newHarness(t, "A")
	h.runner.mu.Lock()
	defer h.runner.mu.Unlock()

	_, err := h.runner.Run(context.Background())
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, h.runner.Reset(context.Background()), ErrBusy)
}

func TestReset(t *testing.T) {
	h := newHarness(t, "A", "B", "C")
	h.source.onOpen = func(string) { h.clock.Advance(10 * time.Minute) }
	ctx := context.Background()

	_, err := h.runner.Run(ctx)
	require.NoError(t, err)
	require.NoError(t, h.runner.Reset(ctx))
	require.NoError(t, h.runner.Reset(ctx), "reset is idempotent")

	st, err := h.runner.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, PhaseNotStarted, st.Phase)

	h.source.opened = nil
	sum, err := h.runner.Run(ctx)
	require.NoError(t, err)
	assert.True(t, sum.Started)
	assert.Equal(t, []string{"A", "B"}, h.source.opened)
}

func TestRunState_String(t *testing.T) {
	assert.Equal(t, "not started", RunState{}.String())
	assert.Equal(t, "in progress: 2/3 processed", RunState{Phase: PhaseInProgress, Cursor: 2, Total: 3}.String())
	assert.Equal(t, 1, RunState{Phase: PhaseInProgress, Cursor: 2, Total: 3}.Remaining())
}
