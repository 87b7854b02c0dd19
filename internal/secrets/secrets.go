// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// The file name is the key and the trimmed file contents are the value.
package secrets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultDir is where secrets are read from unless configured otherwise.
const DefaultDir = ".secrets"

// MenuToken is the bearer token required by the HTTP menu. When absent the
// menu is served without authentication.
const MenuToken = "menu-token"

// Set is a loaded collection of secrets.
type Set map[string]string

// Get returns the secret stored under key.
func (s Set) Get(key string) (string, bool) {
	v, ok := s[key]
	return v, ok
}

// Keys returns the loaded key names, sorted. Values are never listed.
func (s Set) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Load reads every regular, non-hidden file in dir. A missing directory
// yields an empty Set. Unreadable and empty files are skipped.
func Load(dir string, log *slog.Logger) (Set, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Set{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	set := make(Set)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn("could not read secret", "name", name, "error", err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			set[name] = value
		}
	}
	return set, nil
}
