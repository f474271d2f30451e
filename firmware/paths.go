// Package firmware orchestrates keymap builds against a QMK-style firmware
// source tree: it validates preconditions, persists rendered keymap sources,
// invokes the external build tool, and captures the full outcome in a Result
// that never surfaces errors or panics to the caller.
package firmware

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Tree resolves conventional paths within a firmware source tree.
type Tree struct {
	// Root is the tree root directory, e.g. "qmk_firmware".
	Root string
}

// KeyboardDir returns the directory defining a keyboard.
func (t Tree) KeyboardDir(keyboard string) string {
	return filepath.Join(t.Root, "keyboards", keyboard)
}

// KeymapDir returns the keyboard-scoped directory a new keymap is written to.
func (t Tree) KeymapDir(keyboard, keymap string) string {
	return filepath.Join(t.Root, "keyboards", keyboard, "keymaps", keymap)
}

// KeymapCandidates returns every directory where an existing keymap of this
// name would collide: the keyboard-scoped path and the parent-scoped sibling
// used by revision-style keyboard layouts (keyboards/<kb>/../keymaps/<km>).
func (t Tree) KeymapCandidates(keyboard, keymap string) []string {
	return []string{
		t.KeymapDir(keyboard, keymap),
		filepath.Join(t.Root, "keyboards", keyboard, "..", "keymaps", keymap),
	}
}

// artifactBase flattens a keyboard identifier into the basename the build
// tool uses for compiled firmware: slashes become underscores.
func artifactBase(keyboard, keymap string) string {
	return strings.ReplaceAll(keyboard, "/", "_") + "_" + keymap
}

// FindArtifact locates the compiled firmware binary for a finished build.
// The build tool drops <keyboard>_<keymap>.hex (AVR) or .bin (ARM) in the
// tree root; .hex wins when both exist.
func (t Tree) FindArtifact(keyboard, keymap string) (string, error) {
	base := artifactBase(keyboard, keymap)
	for _, ext := range []string{".hex", ".bin"} {
		path := filepath.Join(t.Root, base+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no firmware artifact found for %s", base)
}

// LoadArtifact reads the compiled firmware binary and returns its filename
// and contents.
func (t Tree) LoadArtifact(keyboard, keymap string) (string, []byte, error) {
	path, err := t.FindArtifact(keyboard, keymap)
	if err != nil {
		return "", nil, err
	}
	data, err := os.ReadFile(path) // #nosec G304 - path is derived from the tree convention
	if err != nil {
		return "", nil, err
	}
	return filepath.Base(path), data, nil
}
