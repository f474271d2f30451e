package keymap

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Definition is a declarative keymap description, typically loaded from a
// keymap.yaml file:
//
//	keyboard: clueboard/66/rev3
//	keymap: mine
//	layout: LAYOUT_66_ansi
//	layers:
//	  - [KC_GESC, KC_1, KC_2]
//	  - [KC_TRNS, KC_F1, KC_F2]
//
// Layer order is significant: index 0 is the base layer.
type Definition struct {
	Keyboard string     `yaml:"keyboard"`
	Keymap   string     `yaml:"keymap"`
	Layout   string     `yaml:"layout"`
	Layers   [][]string `yaml:"layers"`
}

// Validate checks that the definition names everything a build needs.
// Empty layers are allowed; an empty layout or keyboard is not.
func (d *Definition) Validate() error {
	var problems []string
	if d.Keyboard == "" {
		problems = append(problems, "keyboard is required")
	}
	if d.Keymap == "" {
		problems = append(problems, "keymap is required")
	}
	if d.Layout == "" {
		problems = append(problems, "layout is required")
	}
	if len(problems) > 0 {
		return errors.New("invalid keymap definition: " + strings.Join(problems, "; "))
	}
	return nil
}

// LoadDefinition reads and parses a keymap definition YAML file.
// It does not validate; callers that need a buildable definition should
// call Validate after applying any overrides.
func LoadDefinition(path string) (*Definition, error) {
	data, err := os.ReadFile(path) // #nosec G304 - user-supplied definition file
	if err != nil {
		return nil, fmt.Errorf("reading keymap definition: %w", err)
	}
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parsing keymap definition: %w", err)
	}
	return &def, nil
}
