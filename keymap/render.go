package keymap

import (
	"fmt"
	"strings"
)

// RenderLayers formats layers into the body of a QMK layer table. Each layer
// becomes one line of the form "\t[i] = LAYOUT(KC_A, KC_B)"; every line but
// the last carries a trailing comma. Tokens are emitted verbatim; malformed
// keycodes surface later as compile errors, not here.
func RenderLayers(layout string, layers [][]string) string {
	lines := make([]string, 0, len(layers))
	for i, layer := range layers {
		if i != 0 {
			lines[len(lines)-1] += ","
		}
		lines = append(lines, fmt.Sprintf("\t[%d] = %s(%s)", i, layout, strings.Join(layer, ", ")))
	}
	return strings.Join(lines, "\n")
}

// Render produces the full keymap.c text for a keyboard by substituting the
// rendered layer table into the keyboard's template. A template without the
// placeholder marker is returned unchanged. Deterministic for identical
// inputs and an identical on-disk override template.
func (r Resolver) Render(keyboard, layout string, layers [][]string) (string, error) {
	tmpl, err := r.Resolve(keyboard)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(tmpl, Placeholder, RenderLayers(layout, layers)), nil
}
