// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/tabsift/pkg/types"
)

// envKeyReplacer maps sift.source_dir to TABSIFT_SIFT_SOURCE_DIR.
var envKeyReplacer = strings.NewReplacer(".", "_")

// addSiftFlags registers the flags shared by commands that process documents.
func addSiftFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("source", "", "source folder of documents to clean")
	f.String("output", "", "folder receiving the cleaned documents")
	f.String("prefix", types.DefaultOutputPrefix, "prefix prepended to cleaned document names")
	f.Duration("time-limit", types.DefaultTimeLimit, "wall-clock budget of one invocation")
	f.StringSlice("ignore", nil, "section title pattern to drop (repeatable)")
	f.String("format", string(types.FormatDocx), "output format: docx or markdown")
	f.String("images-dir", "", "folder for extracted images (markdown output; default embeds them)")
	f.Bool("fetch-images", false, "download linked images and embed them")
}

// bindSiftFlags binds the shared flags of cmd to their config keys. It runs
// in PreRun so only the executing command's flags win.
func bindSiftFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	for key, flag := range map[string]string{
		"sift.source_dir":      "source",
		"sift.output_dir":      "output",
		"sift.output_prefix":   "prefix",
		"sift.time_limit":      "time-limit",
		"sift.ignore_patterns": "ignore",
		"sift.format":          "format",
		"sift.images_dir":      "images-dir",
		"sift.fetch_images":    "fetch-images",
	} {
		viper.BindPFlag(key, f.Lookup(flag))
	}
}

// loadConfig reads the merged configuration and applies defaults. Commands
// that process documents pass validate to require the sift settings.
func loadConfig(validate bool) (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	cfg.ApplyDefaults()
	if !validate {
		return cfg, nil
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
