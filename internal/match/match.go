// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package match decides whether a section title is excluded by the
// configured ignore patterns.
//
// Patterns are Go regular expressions tested with an unanchored search, so a
// plain pattern excludes any title containing it and ^…$ restricts it to the
// whole title. Any single match excludes.
package match

import (
	"fmt"
	"regexp"
)

// Matcher holds a compiled, ordered set of exclusion rules.
type Matcher struct {
	rules []*regexp.Regexp
}

// Compile builds a Matcher from pattern strings. Empty patterns are ignored;
// an invalid pattern is reported with its position in the list.
func Compile(patterns []string) (*Matcher, error) {
	m := &Matcher{rules: make([]*regexp.Regexp, 0, len(patterns))}
	for i, p := range patterns {
		if p == "" {
			continue
		}
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("ignore pattern %d (%q): %w", i+1, p, err)
		}
		m.rules = append(m.rules, re)
	}
	return m, nil
}

// MustCompile is like Compile but panics on an invalid pattern. It is meant
// for tests and package-level fixtures.
func MustCompile(patterns ...string) *Matcher {
	m, err := Compile(patterns)
	if err != nil {
		panic(err)
	}
	return m
}

// ShouldExclude reports whether title matches at least one rule.
// A nil Matcher excludes nothing.
func (m *Matcher) ShouldExclude(title string) bool {
	_, ok := m.Match(title)
	return ok
}

// Match returns the first rule matching title.
func (m *Matcher) Match(title string) (string, bool) {
	if m == nil {
		return "", false
	}
	for _, re := range m.rules {
		if re.MatchString(title) {
			return re.String(), true
		}
	}
	return "", false
}

// Len returns the number of active rules.
func (m *Matcher) Len() int {
	if m == nil {
		return 0
	}
	return len(m.rules)
}

// ShouldExclude reports whether title matches any of rules.
func ShouldExclude(title string, rules []*regexp.Regexp) bool {
	for _, re := range rules {
		if re.MatchString(title) {
			return true
		}
	}
	return false
}
