// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pdiddy/tabsift/internal/httputil"
	"github.com/pdiddy/tabsift/internal/match"
	"github.com/pdiddy/tabsift/internal/output"
	"github.com/pdiddy/tabsift/internal/runner"
	"github.com/pdiddy/tabsift/internal/source"
	"github.com/pdiddy/tabsift/internal/state"
	"github.com/pdiddy/tabsift/pkg/types"
)

const imageFetchTimeout = 30 * time.Second

// app holds the runner and the store it owns.
type app struct {
	cfg    types.Config
	store  *state.SQLiteStore
	runner *runner.Runner
}

// openApp wires the runner from cfg. The caller must Close the app.
func openApp(cfg types.Config) (*app, error) {
	m, err := match.Compile(cfg.Sift.IgnorePatterns)
	if err != nil {
		return nil, err
	}
	store, err := state.OpenSQLite(cfg.State.DBPath)
	if err != nil {
		return nil, err
	}
	creator := output.NewFileCreator(cfg.Sift)
	creator.Log = logger
	if cfg.Sift.FetchImages {
		creator.Images = httputil.NewFetcher(imageFetchTimeout, logger)
	}
	r := runner.New(cfg.Sift, store,
		source.NewFolder(cfg.Sift.SourceDir),
		creator,
		m,
		runner.WithLogger(logger),
		runner.WithOutput(os.Stdout),
	)
	return &app{cfg: cfg, store: store, runner: r}, nil
}

// openStateApp wires a runner for commands that only touch the state.
func openStateApp() (*app, error) {
	cfg, err := loadConfig(false)
	if err != nil {
		return nil, err
	}
	store, err := state.OpenSQLite(cfg.State.DBPath)
	if err != nil {
		return nil, err
	}
	r := runner.New(cfg.Sift, store, nil, nil, nil, runner.WithLogger(logger))
	return &app{cfg: cfg, store: store, runner: r}, nil
}

func (a *app) Close() error {
	if err := a.store.Close(); err != nil {
		return fmt.Errorf("closing state: %w", err)
	}
	return nil
}
