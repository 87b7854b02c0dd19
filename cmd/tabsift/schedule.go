// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/tabsift/internal/trigger"
	"github.com/pdiddy/tabsift/pkg/types"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Invoke run on an interval until the cycle completes",
	Long: `Schedule calls run immediately and then every --every until the cycle
completes. With --forever it keeps going and starts a new cycle each time
the previous one finishes.`,
	PreRun: func(cmd *cobra.Command, args []string) {
		bindSiftFlags(cmd)
		viper.BindPFlag("schedule.every", cmd.Flags().Lookup("every"))
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		forever, _ := cmd.Flags().GetBool("forever")

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

		return trigger.Schedule(ctx, trigger.ScheduleOptions{
			Every:   cfg.Schedule.Every,
			Forever: forever,
			Logger:  logger,
			Out:     os.Stdout,
		}, a.runner)
	},
}

func init() {
	addSiftFlags(scheduleCmd)
	scheduleCmd.Flags().Duration("every", types.DefaultScheduleTick, "interval between invocations")
	scheduleCmd.Flags().Bool("forever", false, "keep starting new cycles")
	rootCmd.AddCommand(scheduleCmd)
}
