// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package trigger invokes the runner without a person pressing a menu item.
//
// Schedule re-invokes the runner on a fixed interval until the cycle
// completes, the way a hosted time-driven trigger would. Watch starts a
// new cycle when the source folder changes while no cycle is in progress.
package trigger

import (
	"context"

	"github.com/pdiddy/tabsift/internal/runner"
)

// Invoker runs one invocation of the cycle.
type Invoker interface {
	Run(ctx context.Context) (runner.Summary, error)
}

// StatusInvoker is an Invoker that can also report the cycle state.
type StatusInvoker interface {
	Invoker
	Status(ctx context.Context) (runner.RunState, error)
}
