package firmware

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Checkout ensures the firmware source tree is present and current on disk
// before a build. Implementations are expected to be idempotent and to touch
// nothing outside the tree root.
type Checkout interface {
	Sync(ctx context.Context) error
}

// GitCheckout clones the firmware repository on first use and fast-forwards
// it on subsequent ones.
type GitCheckout struct {
	Tree    Tree
	RepoURL string
	Runner  Runner
}

// DefaultRepoURL is the upstream firmware repository cloned when no
// project-level override is configured.
const DefaultRepoURL = "https://github.com/qmk/qmk_firmware"

// Sync clones or updates the tree. A non-zero git exit is reported as an
// error carrying git's output.
func (g *GitCheckout) Sync(ctx context.Context) error {
	repo := g.RepoURL
	if repo == "" {
		repo = DefaultRepoURL
	}

	var dir string
	var argv []string
	if _, err := os.Stat(g.Tree.Root); os.IsNotExist(err) {
		dir = filepath.Dir(g.Tree.Root)
		argv = []string{"git", "clone", "--depth", "1", repo, filepath.Base(g.Tree.Root)}
	} else {
		dir = g.Tree.Root
		argv = []string{"git", "pull", "--ff-only"}
	}

	code, output, err := g.Runner.Run(ctx, dir, argv)
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	if code != 0 {
		return fmt.Errorf("checkout: git exited %d: %s", code, output)
	}
	return nil
}

// NopCheckout is used when the tree is managed externally (tests, CI images
// with a pre-synced checkout).
type NopCheckout struct{}

func (NopCheckout) Sync(context.Context) error { return nil }
