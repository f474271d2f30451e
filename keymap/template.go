// Package keymap renders QMK keymap.c sources from declarative layer
// descriptions. A keymap names a keyboard, a layout macro, and an ordered
// list of layers; rendering substitutes the layer table into a keyboard's
// template (a custom one from the firmware tree when present, otherwise the
// built-in default).
package keymap

import (
	"os"
	"path/filepath"
)

// Placeholder is the single substitution point recognized in templates.
const Placeholder = "__KEYMAP_GOES_HERE__"

// DefaultTemplate is the keymap.c template used when a keyboard doesn't
// ship its own under keyboards/<keyboard>/templates/keymap.c.
const DefaultTemplate = `#include QMK_KEYBOARD_H

/* THIS FILE WAS GENERATED!
 *
 * This file was generated by kbforge. You may or may not want to
 * edit it directly.
 */

const uint16_t PROGMEM keymaps[][MATRIX_ROWS][MATRIX_COLS] = {
__KEYMAP_GOES_HERE__
};
`

// Resolver locates the keymap.c template for a keyboard within a firmware
// source tree.
type Resolver struct {
	// Root is the firmware tree root, e.g. "qmk_firmware".
	Root string
}

// Resolve returns the template text for keyboard. A template at
// keyboards/<keyboard>/templates/keymap.c takes precedence over
// DefaultTemplate. A missing override is not an error; an unreadable one is.
func (r Resolver) Resolve(keyboard string) (string, error) {
	path := filepath.Join(r.Root, "keyboards", keyboard, "templates", "keymap.c")
	if _, err := os.Stat(path); err != nil {
		return DefaultTemplate, nil
	}
	data, err := os.ReadFile(path) // #nosec G304 - path is derived from the firmware tree convention
	if err != nil {
		return "", err
	}
	return string(data), nil
}
