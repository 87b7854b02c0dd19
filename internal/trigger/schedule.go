// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package trigger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/pdiddy/tabsift/internal/runner"
)

// ScheduleOptions configures Schedule.
type ScheduleOptions struct {
	// Every is the interval between invocations.
	Every time.Duration

	// Forever keeps invoking after a cycle completes, starting new cycles.
	Forever bool

	Logger *slog.Logger
	Out    io.Writer
}

// Schedule invokes inv immediately and then every opts.Every until the
// cycle completes or ctx is cancelled. An invocation rejected as busy is
// retried on the next tick. An empty source folder stops the schedule
// unless Forever is set.
func Schedule(ctx context.Context, opts ScheduleOptions, inv Invoker) error {
	if opts.Every <= 0 {
		return fmt.Errorf("invalid schedule interval %s", opts.Every)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}

	fmt.Fprintf(opts.Out, "scheduling every %s\n", opts.Every)
	ticker := time.NewTicker(opts.Every)
	defer ticker.Stop()

	for n := 1; ; n++ {
		done, err := invokeOnce(ctx, opts, inv, n)
		if err != nil && !opts.Forever {
			return err
		}
		if done && !opts.Forever {
			return nil
		}

		select {
		case <-ctx.Done():
			fmt.Fprintln(opts.Out, "\nschedule stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// invokeOnce reports whether the cycle completed. Only an empty source
// folder is returned as an error; other failures are logged and retried.
func invokeOnce(ctx context.Context, opts ScheduleOptions, inv Invoker, n int) (bool, error) {
	now := time.Now().Format("15:04:05")
	sum, err := inv.Run(ctx)
	switch {
	case errors.Is(err, runner.ErrBusy):
		opts.Logger.Info("invocation skipped, another is running", "tick", n)
		return false, nil
	case errors.Is(err, runner.ErrEnumerationEmpty):
		fmt.Fprintf(opts.Out, "[%s] #%d -> nothing to do: %v\n", now, n, err)
		return false, err
	case err != nil:
		opts.Logger.Error("scheduled invocation failed", "tick", n, "error", err)
		fmt.Fprintf(opts.Out, "[%s] #%d -> ERROR: %v\n", now, n, err)
		return false, nil
	}

	fmt.Fprintf(opts.Out, "[%s] #%d -> %d processed, %d failed (%d/%d)\n",
		now, n, sum.Processed, sum.Failed, sum.Cursor, sum.Total)
	return sum.Completed, nil
}
