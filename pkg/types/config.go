// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"time"
)

// OutputFormat selects the cleaned document format.
type OutputFormat string

const (
	FormatDocx     OutputFormat = "docx"
	FormatMarkdown OutputFormat = "markdown"
)

// Extension returns the file extension written for the format.
func (f OutputFormat) Extension() string {
	if f == FormatMarkdown {
		return ".md"
	}
	return ".docx"
}

const (
	// DefaultOutputPrefix is prepended to every cleaned document name.
	DefaultOutputPrefix = "【選別済】"

	// DefaultTimeLimit is the per-invocation budget. It stays well under
	// the 30 minute cap common to hosted script runners.
	DefaultTimeLimit = 20 * time.Minute

	DefaultStateDB      = ".tabsift/state.db"
	DefaultServeAddr    = ":8095"
	DefaultScheduleTick = time.Minute
)

// SiftConfig holds settings for the cleaning run.
type SiftConfig struct {
	// SourceDir is the folder whose documents are enumerated at cycle start.
	SourceDir string `json:"source_dir" yaml:"source_dir" mapstructure:"source_dir"`

	// OutputDir is where cleaned documents are relocated after creation.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// StagingDir is where new documents are created before relocation
	// (defaults to a directory next to the state database).
	StagingDir string `json:"staging_dir" yaml:"staging_dir" mapstructure:"staging_dir"`

	// OutputPrefix is prepended to the source display name.
	OutputPrefix string `json:"output_prefix" yaml:"output_prefix" mapstructure:"output_prefix"`

	// TimeLimit is the wall-clock budget of one invocation.
	TimeLimit time.Duration `json:"time_limit" yaml:"time_limit" mapstructure:"time_limit"`

	// IgnorePatterns are regular expressions tested against section titles.
	// A title matching any of them is dropped together with its subtree.
	IgnorePatterns []string `json:"ignore_patterns" yaml:"ignore_patterns" mapstructure:"ignore_patterns"`

	// Format selects docx or markdown output.
	Format OutputFormat `json:"format" yaml:"format" mapstructure:"format"`

	// ImagesDir receives extracted images for markdown output. When empty,
	// images are embedded as base64 data URIs.
	ImagesDir string `json:"images_dir,omitempty" yaml:"images_dir,omitempty" mapstructure:"images_dir"`

	// FetchImages downloads images the source only links to and embeds
	// them. Failed downloads stay links.
	FetchImages bool `json:"fetch_images" yaml:"fetch_images" mapstructure:"fetch_images"`
}

// StateConfig holds settings for the persisted run state.
type StateConfig struct {
	// DBPath is the SQLite database holding the run properties.
	DBPath string `json:"db_path" yaml:"db_path" mapstructure:"db_path"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level"`
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// ServeConfig holds settings for the HTTP menu.
type ServeConfig struct {
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`
}

// ScheduleConfig holds settings for the timer trigger.
type ScheduleConfig struct {
	// Every is the interval between invocations.
	Every time.Duration `json:"every" yaml:"every" mapstructure:"every"`
}

// Config groups all settings, loaded once at process start.
type Config struct {
	Sift     SiftConfig     `json:"sift" yaml:"sift" mapstructure:"sift"`
	State    StateConfig    `json:"state" yaml:"state" mapstructure:"state"`
	Log      LogConfig      `json:"log" yaml:"log" mapstructure:"log"`
	Serve    ServeConfig    `json:"serve" yaml:"serve" mapstructure:"serve"`
	Schedule ScheduleConfig `json:"schedule" yaml:"schedule" mapstructure:"schedule"`
}

// ApplyDefaults fills zero values with defaults.
func (c *Config) ApplyDefaults() {
	if c.Sift.OutputPrefix == "" {
		c.Sift.OutputPrefix = DefaultOutputPrefix
	}
	if c.Sift.TimeLimit <= 0 {
		c.Sift.TimeLimit = DefaultTimeLimit
	}
	if c.Sift.Format == "" {
		c.Sift.Format = FormatDocx
	}
	if c.State.DBPath == "" {
		c.State.DBPath = DefaultStateDB
	}
	if c.Sift.StagingDir == "" {
		c.Sift.StagingDir = filepath.Join(filepath.Dir(c.State.DBPath), "staging")
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Serve.Addr == "" {
		c.Serve.Addr = DefaultServeAddr
	}
	if c.Schedule.Every <= 0 {
		c.Schedule.Every = DefaultScheduleTick
	}
}

// Validate checks the settings a cleaning run cannot do without.
func (c *Config) Validate() error {
	var errs []error
	if c.Sift.SourceDir == "" {
		errs = append(errs, errors.New("sift.source_dir is required"))
	}
	if c.Sift.OutputDir == "" {
		errs = append(errs, errors.New("sift.output_dir is required"))
	}
	switch c.Sift.Format {
	case FormatDocx, FormatMarkdown:
	default:
		errs = append(errs, fmt.Errorf("invalid sift.format %q: must be docx or markdown", c.Sift.Format))
	}
	for _, p := range c.Sift.IgnorePatterns {
		if _, err := regexp.Compile(p); err != nil {
			errs = append(errs, fmt.Errorf("invalid sift.ignore_patterns entry %q: %w", p, err))
		}
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid log.format %q: must be text or json", c.Log.Format))
	}
	return errors.Join(errs...)
}
