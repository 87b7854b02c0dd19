// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	var c Config
	c.ApplyDefaults()

	assert.Equal(t, DefaultOutputPrefix, c.Sift.OutputPrefix)
	assert.Equal(t, DefaultTimeLimit, c.Sift.TimeLimit)
	assert.Equal(t, FormatDocx, c.Sift.Format)
	assert.Equal(t, DefaultStateDB, c.State.DBPath)
	assert.Equal(t, filepath.Join(".tabsift", "staging"), c.Sift.StagingDir)
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, "text", c.Log.Format)
	assert.Equal(t, DefaultServeAddr, c.Serve.Addr)
	assert.Equal(t, DefaultScheduleTick, c.Schedule.Every)
}

func TestConfig_ApplyDefaultsKeepsValues(t *testing.T) {
	c := Config{
		Sift:  SiftConfig{OutputPrefix: "[clean] ", TimeLimit: 5 * time.Minute, Format: FormatMarkdown},
		State: StateConfig{DBPath: "/var/lib/tabsift/state.db"},
	}
	c.ApplyDefaults()

	assert.Equal(t, "[clean] ", c.Sift.OutputPrefix)
	assert.Equal(t, 5*time.Minute, c.Sift.TimeLimit)
	assert.Equal(t, FormatMarkdown, c.Sift.Format)
	assert.Equal(t, "/var/lib/tabsift/staging", c.Sift.StagingDir)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		c := Config{Sift: SiftConfig{SourceDir: "in", OutputDir: "out"}}
		c.ApplyDefaults()
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing source", func(c *Config) { c.Sift.SourceDir = "" }, "sift.source_dir is required"},
		{"missing output", func(c *Config) { c.Sift.OutputDir = "" }, "sift.output_dir is required"},
		{"bad format", func(c *Config) { c.Sift.Format = "pdf" }, `invalid sift.format "pdf"`},
		{"bad pattern", func(c *Config) { c.Sift.IgnorePatterns = []string{"ok", "(unclosed"} }, `"(unclosed"`},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, `invalid log.format "xml"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestOutputFormat_Extension(t *testing.T) {
	assert.Equal(t, ".docx", FormatDocx.Extension())
	assert.Equal(t, ".md", FormatMarkdown.Extension())
}
