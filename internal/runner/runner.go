// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package runner drives the resumable cleaning cycle.
//
// A cycle enumerates the source folder once, then processes the items in
// order across as many invocations as the time budget requires. The cursor
// is persisted after every item, success or failure, so an interrupted
// invocation never reprocesses a finished item and never skips an
// unfinished one. The state is cleared when the last item is visited.
package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/pdiddy/tabsift/internal/match"
	"github.com/pdiddy/tabsift/internal/output"
	"github.com/pdiddy/tabsift/internal/sift"
	"github.com/pdiddy/tabsift/internal/state"
	"github.com/pdiddy/tabsift/pkg/types"
)

var (
	// ErrEnumerationEmpty is returned when a new cycle finds no source
	// documents. No state is written.
	ErrEnumerationEmpty = errors.New("no source documents found")

	// ErrBusy is returned when another invocation is already running in
	// this process.
	ErrBusy = errors.New("an invocation is already running")
)

// Source enumerates and resolves source documents.
type Source interface {
	List(ctx context.Context) ([]string, error)
	Open(ctx context.Context, id string) (*types.Document, error)
}

// Summary describes one invocation.
type Summary struct {
	// Started is true when this invocation began a new cycle.
	Started bool

	// Processed and Failed count items visited by this invocation.
	Processed int
	Failed    int

	// CopyFailures counts elements that could not be copied in items that
	// otherwise succeeded.
	CopyFailures int

	// Cursor and Total describe the cycle after this invocation.
	Cursor int
	Total  int

	// Suspended is true when the time budget or cancellation stopped the
	// invocation before the last item.
	Suspended bool

	// Completed is true when the cycle finished and its state was cleared.
	Completed bool
}

// HasFailures reports whether any item failed during this invocation.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// Option configures a Runner.
type Option func(*Runner)

// WithClock replaces the time source used for the budget and durations.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.log = l }
}

// WithOutput sets where per-item progress lines are printed.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) { r.out = w }
}

// Runner processes the cycle's work list against a persisted cursor.
type Runner struct {
	store     state.Store
	source    Source
	creator   output.Creator
	filter    *sift.Filter
	outputDir string
	prefix    string
	timeLimit time.Duration

	now func() time.Time
	log *slog.Logger
	out io.Writer

	mu sync.Mutex
}

// New creates a Runner. cfg supplies the output folder, name prefix and time
// budget; m decides which sections are excluded.
func New(cfg types.SiftConfig, store state.Store, src Source, creator output.Creator, m *match.Matcher, opts ...Option) *Runner {
	r := &Runner{
		store:     store,
		source:    src,
		creator:   creator,
		outputDir: cfg.OutputDir,
		prefix:    cfg.OutputPrefix,
		timeLimit: cfg.TimeLimit,
		now:       time.Now,
		log:       slog.Default(),
		out:       io.Discard,
	}
	for _, o := range opts {
		o(r)
	}
	if r.timeLimit <= 0 {
		r.timeLimit = types.DefaultTimeLimit
	}
	r.filter = sift.NewFilter(m, r.log)
	return r
}

// Run starts a new cycle when none is in progress, then processes items from
// the persisted cursor until the list is exhausted or the time budget of
// this invocation runs out. Cancelling ctx suspends the same way.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	if !r.mu.TryLock() {
		return Summary{}, ErrBusy
	}
	defer r.mu.Unlock()

	start := r.now()
	// Progress writes must land even when ctx is cancelled mid-item.
	persist := context.WithoutCancel(ctx)

	var sum Summary
	running, err := r.running(ctx)
	if err != nil {
		return sum, err
	}
	if !running {
		if err := r.begin(ctx, persist); err != nil {
			return sum, err
		}
		sum.Started = true
	}

	list, cursor, err := r.load(ctx)
	if err != nil {
		return sum, err
	}
	total := len(list)
	sum.Total = total

	r.log.Info("processing phase", "from", cursor+1, "total", total)
	fmt.Fprintf(r.out, "resuming at %d/%d\n", min(cursor+1, total), total)

	for cursor < total {
		if elapsed := r.now().Sub(start); elapsed > r.timeLimit {
			r.log.Info("time limit reached, suspending", "next", cursor+1, "total", total, "elapsed", elapsed)
			fmt.Fprintf(r.out, "\nsuspended: time limit reached (next: %d/%d)\n", cursor+1, total)
			sum.Cursor, sum.Suspended = cursor, true
			return sum, nil
		}
		if ctx.Err() != nil {
			r.log.Info("cancelled, suspending", "next", cursor+1, "total", total)
			fmt.Fprintf(r.out, "\nsuspended: cancelled (next: %d/%d)\n", cursor+1, total)
			sum.Cursor, sum.Suspended = cursor, true
			return sum, nil
		}

		copyFailures, err := r.processItem(ctx, cursor, total, list[cursor])
		r.record(persist, cursor, list[cursor], err)
		sum.Processed++
		sum.CopyFailures += copyFailures
		if err != nil {
			sum.Failed++
		}

		cursor++
		if err := r.store.Set(persist, KeyIndex, strconv.Itoa(cursor)); err != nil {
			sum.Cursor = cursor - 1
			return sum, fmt.Errorf("persisting cursor: %w", err)
		}
	}

	sum.Cursor = cursor
	if err := r.finish(persist); err != nil {
		return sum, err
	}
	sum.Completed = true
	fmt.Fprintf(r.out, "\ncycle complete: %d processed, %d failed this invocation (total: %d)\n",
		sum.Processed, sum.Failed, total)
	return sum, nil
}

// Reset clears all cycle state so the next invocation starts over.
func (r *Runner) Reset(ctx context.Context) error {
	if !r.mu.TryLock() {
		return ErrBusy
	}
	defer r.mu.Unlock()

	if err := r.store.ClearAll(ctx); err != nil {
		return fmt.Errorf("clearing state: %w", err)
	}
	r.log.Info("progress reset")
	return nil
}

// Status derives the cycle state from the persisted properties.
func (r *Runner) Status(ctx context.Context) (RunState, error) {
	running, err := r.running(ctx)
	if err != nil || !running {
		return RunState{Phase: PhaseNotStarted}, err
	}
	list, cursor, err := r.load(ctx)
	if err != nil {
		return RunState{}, err
	}
	st := RunState{Phase: PhaseInProgress, Cursor: cursor, Total: len(list)}
	if cursor >= len(list) {
		st.Phase = PhaseCompleting
	}
	return st, nil
}

func (r *Runner) running(ctx context.Context) (bool, error) {
	v, ok, err := r.store.Get(ctx, KeyRunning)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", KeyRunning, err)
	}
	return ok && v == "true", nil
}

// begin enumerates the source and writes the initial cycle state. The
// running flag is written last.
func (r *Runner) begin(ctx, persist context.Context) error {
	r.log.Info("starting new cycle")
	ids, err := r.source.List(ctx)
	if err != nil {
		return fmt.Errorf("enumerating source: %w", err)
	}
	if len(ids) == 0 {
		r.log.Warn("no source documents found")
		return ErrEnumerationEmpty
	}

	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encoding source list: %w", err)
	}
	for _, kv := range [][2]string{
		{KeySourceList, string(data)},
		{KeyIndex, "0"},
		{KeyRunning, "true"},
	} {
		if err := r.store.Set(persist, kv[0], kv[1]); err != nil {
			return fmt.Errorf("initializing state: %w", err)
		}
	}
	r.log.Info("cycle initialized", "documents", len(ids))
	fmt.Fprintf(r.out, "found %d documents\n", len(ids))
	return nil
}

// load reads the work list and cursor. A cursor beyond the list is clamped.
func (r *Runner) load(ctx context.Context) ([]string, int, error) {
	raw, _, err := r.store.Get(ctx, KeySourceList)
	if err != nil {
		return nil, 0, fmt.Errorf("reading %s: %w", KeySourceList, err)
	}
	var list []string
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &list); err != nil {
			return nil, 0, fmt.Errorf("decoding %s (reset to recover): %w", KeySourceList, err)
		}
	}

	idx, _, err := r.store.Get(ctx, KeyIndex)
	if err != nil {
		return nil, 0, fmt.Errorf("reading %s: %w", KeyIndex, err)
	}
	cursor := 0
	if idx != "" {
		cursor, err = strconv.Atoi(idx)
		if err != nil || cursor < 0 {
			return nil, 0, fmt.Errorf("invalid %s %q (reset to recover)", KeyIndex, idx)
		}
	}
	return list, min(cursor, len(list)), nil
}

func (r *Runner) finish(ctx context.Context) error {
	r.log.Info("all documents processed")
	if err := r.store.ClearAll(ctx); err != nil {
		return fmt.Errorf("clearing state: %w", err)
	}
	r.log.Info("progress state cleared")
	return nil
}

// processItem cleans one source document into a new output document. It
// returns the number of elements that failed to copy; a non-nil error means
// the item as a whole failed.
func (r *Runner) processItem(ctx context.Context, index, total int, id string) (int, error) {
	start := r.now()
	log := r.log.With("index", index, "id", id)

	doc, err := r.source.Open(ctx, id)
	if err != nil {
		return 0, r.itemFailed(log, id, err)
	}

	name := r.prefix + doc.Name
	log.Info("processing", "position", index+1, "total", total, "name", doc.Name)
	fmt.Fprintf(r.out, "processing (%d/%d): %s\n", index+1, total, doc.Name)

	dest, err := r.creator.Create(ctx, name)
	if err != nil {
		return 0, r.itemFailed(log, id, fmt.Errorf("creating %s: %w", name, err))
	}
	if err := dest.MoveTo(r.outputDir); err != nil {
		if derr := dest.Discard(); derr != nil {
			log.Warn("discarding placeholder", "path", dest.ID(), "error", derr)
		}
		return 0, r.itemFailed(log, id, err)
	}

	res := r.filter.Document(doc, dest.Sink())
	if err := dest.Finalize(); err != nil {
		return len(res.Copy.Failures), r.itemFailed(log, id, err)
	}

	elapsed := r.now().Sub(start)
	log.Info("done",
		"output", dest.ID(),
		"headings", res.Headings,
		"skipped", len(res.Skipped),
		"copied", res.Copy.Copied,
		"copy_failures", len(res.Copy.Failures),
		"duration", elapsed,
	)
	fmt.Fprintf(r.out, "    -> done (%.2fs, %d sections skipped, %d copy failures)\n",
		elapsed.Seconds(), len(res.Skipped), len(res.Copy.Failures))
	return len(res.Copy.Failures), nil
}

func (r *Runner) itemFailed(log *slog.Logger, id string, err error) error {
	log.Error("item failed", "error", err)
	fmt.Fprintf(r.out, "failed:  %s (%v)\n", id, err)
	return err
}

// record appends the item outcome when the store keeps a journal.
func (r *Runner) record(ctx context.Context, index int, id string, itemErr error) {
	j, ok := r.store.(state.Journal)
	if !ok {
		return
	}
	o := state.Outcome{Index: index, ItemID: id, Status: state.OutcomeDone, RecordedAt: r.now()}
	if itemErr != nil {
		o.Status, o.Detail = state.OutcomeFailed, itemErr.Error()
	}
	if err := j.Record(ctx, o); err != nil {
		r.log.Warn("recording outcome failed", "id", id, "error", err)
	}
}
