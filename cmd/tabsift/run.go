// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start a new cycle or resume the one in progress",
	Long: `Run performs one invocation. When no cycle is in progress it enumerates the
source folder and records the work list; otherwise it resumes at the saved
cursor. Documents are processed in order until the list is exhausted or the
time limit is reached. Interrupting with Ctrl-C suspends after the current
document.`,
	PreRun: func(cmd *cobra.Command, args []string) { bindSiftFlags(cmd) },
	RunE:   runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
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

	sum, err := a.runner.Run(ctx)
	if err != nil {
		return err
	}
	if sum.Suspended {
		fmt.Printf("%d documents remain; run again to continue\n", sum.Total-sum.Cursor)
	}
	if sum.HasFailures() {
		return fmt.Errorf("%d document(s) failed", sum.Failed)
	}
	return nil
}

func init() {
	addSiftFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}
