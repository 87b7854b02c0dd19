// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the tabsift CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/tabsift/internal/logging"
	"github.com/pdiddy/tabsift/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the tabsift CLI.
var rootCmd = &cobra.Command{
	Use:   "tabsift",
	Short: "Copy documents into cleaned versions without the sections you exclude",
	Long: `tabsift walks a folder of tabbed or sectioned documents and writes a cleaned
copy of each one. Sections whose titles match an ignore pattern are dropped
together with everything nested under them; the rest is copied with headings
that mirror the original outline.

A cycle enumerates the source folder once and may span several invocations.
Progress is persisted after every document, so "tabsift run" can be stopped
and re-run at any time without redoing finished work.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.Setup(types.LogConfig{
			Level:  viper.GetString("log.level"),
			Format: viper.GetString("log.format"),
		})
		slog.SetDefault(logger)
	},
}

// logger is configured once flags and config are loaded.
var logger = slog.Default()

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./tabsift.yaml or ~/.config/tabsift/tabsift.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text or json")
	pf.String("db", types.DefaultStateDB, "state database path")

	viper.BindPFlag("log.level", pf.Lookup("log-level"))
	viper.BindPFlag("log.format", pf.Lookup("log-format"))
	viper.BindPFlag("state.db_path", pf.Lookup("db"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("tabsift")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "tabsift"))
		}
	}

	viper.SetEnvPrefix("TABSIFT")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
