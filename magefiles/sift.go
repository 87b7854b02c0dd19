//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

func tabsift(args ...string) error {
	return sh.RunV("./bin/tabsift", args...)
}

// Run builds the CLI and performs one invocation with ./tabsift.yaml.
func Run() error {
	mg.Deps(Build)
	return tabsift("run")
}

// Status prints the state of the current cycle.
func Status() error {
	mg.Deps(Build)
	return tabsift("status")
}

// Reset discards cycle progress.
func Reset() error {
	mg.Deps(Build)
	return tabsift("reset")
}
