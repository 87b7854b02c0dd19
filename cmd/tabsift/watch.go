// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/tabsift/internal/trigger"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Start a cycle whenever the source folder changes",
	Long: `Watch monitors the source folder. After a burst of changes settles, and if
no cycle is in progress, it starts a new cycle and runs it to completion.`,
	PreRun: func(cmd *cobra.Command, args []string) { bindSiftFlags(cmd) },
	RunE: func(cmd *cobra.Command, args []string) error {
		debounce, _ := cmd.Flags().GetDuration("debounce")

		cfg, err := loadConfig(true)
		if err != nil {
			return err
		}
		a, err := openApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return trigger.Watch(ctx, trigger.WatchOptions{
			Dir:      cfg.Sift.SourceDir,
			Debounce: debounce,
			Logger:   logger,
			Out:      os.Stdout,
		}, a.runner)
	},
}

func init() {
	addSiftFlags(watchCmd)
	watchCmd.Flags().Duration("debounce", trigger.DefaultDebounce, "quiet period before a change starts a cycle")
	rootCmd.AddCommand(watchCmd)
}
