//go:build mage

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Default target - build the binary
var Default = Build

const binPath = "bin/kbforge"

// Build builds the kbforge binary with version metadata.
func Build() error {
	version, _ := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if version == "" {
		version = "dev"
	}
	commit, _ := sh.Output("git", "rev-parse", "--short", "HEAD")
	if commit == "" {
		commit = "unknown"
	}
	ldflags := fmt.Sprintf(
		"-X github.com/kbforge/kbforge/internal/version.Version=%s "+
			"-X github.com/kbforge/kbforge/internal/version.CommitHash=%s "+
			"-X github.com/kbforge/kbforge/internal/version.BuildDate=%s",
		version, commit, time.Now().UTC().Format(time.RFC3339))
	return sh.RunV("go", "build", "-ldflags", ldflags, "-o", binPath, "./cmd/kbforge")
}

// Test runs the full test suite with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Lint runs go vet and staticcheck when available.
func Lint() error {
	if err := sh.RunV("go", "vet", "./..."); err != nil {
		return err
	}
	if _, err := sh.Output("staticcheck", "-version"); err != nil {
		fmt.Fprintln(os.Stderr, "staticcheck not found, skipping (install: go install honnef.co/go/tools/cmd/staticcheck@latest)")
		return nil
	}
	return sh.RunV("staticcheck", "./...")
}

// QA runs lint and tests.
func QA() error {
	mg.Deps(Lint)
	return Test()
}

// Clean removes build artifacts.
func Clean() error {
	return sh.Rm("bin")
}
