// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package trigger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pdiddy/tabsift/internal/runner"
	"github.com/pdiddy/tabsift/internal/source"
)

// DefaultDebounce is the quiet period before a change starts a cycle.
const DefaultDebounce = 2 * time.Second

// WatchOptions configures Watch.
type WatchOptions struct {
	// Dir is the source folder to watch.
	Dir string

	Debounce time.Duration
	Logger   *slog.Logger
	Out      io.Writer
}

// Watch blocks until ctx is cancelled. After a burst of changes to
// supported documents in opts.Dir it starts a new cycle if none is in
// progress, and drives it to completion one invocation at a time.
func Watch(ctx context.Context, opts WatchOptions, inv StatusInvoker) error {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(opts.Dir); err != nil {
		return fmt.Errorf("watching %s: %w", opts.Dir, err)
	}
	fmt.Fprintf(opts.Out, "watching %s (debounce=%s)\n", opts.Dir, opts.Debounce)

	debouncer := NewDebouncer(opts.Debounce, func(path string) {
		onChange(ctx, opts, inv, path)
	})
	defer debouncer.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(opts.Out, "\nshutting down watcher")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isRelevant(event) {
				continue
			}
			opts.Logger.Debug("source changed", "path", event.Name, "op", event.Op.String())
			debouncer.Trigger(event.Name)

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			opts.Logger.Error("watcher error", "error", watchErr)
		}
	}
}

// onChange starts a cycle when idle and runs invocations until it completes.
func onChange(ctx context.Context, opts WatchOptions, inv StatusInvoker, path string) {
	now := time.Now().Format("15:04:05")
	st, err := inv.Status(ctx)
	if err != nil {
		fmt.Fprintf(opts.Out, "[%s] %s -> ERROR: %v\n", now, filepath.Base(path), err)
		return
	}
	if st.Phase != runner.PhaseNotStarted {
		fmt.Fprintf(opts.Out, "[%s] %s -> ignored, cycle %s\n", now, filepath.Base(path), st)
		return
	}

	fmt.Fprintf(opts.Out, "[%s] %s -> starting cycle\n", now, filepath.Base(path))
	for ctx.Err() == nil {
		sum, err := inv.Run(ctx)
		if err != nil {
			if !errors.Is(err, runner.ErrBusy) {
				fmt.Fprintf(opts.Out, "  ERROR: %v\n", err)
			}
			return
		}
		if sum.Completed {
			fmt.Fprintf(opts.Out, "  cycle complete (%d documents)\n", sum.Total)
			return
		}
	}
}

// isRelevant keeps content changes to supported, non-temporary documents.
func isRelevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") ||
		strings.HasSuffix(name, "~") || strings.HasSuffix(name, ".swp") {
		return false
	}
	return source.Supported(name)
}
