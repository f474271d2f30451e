// firmware/projectconfig.go - Project-specific configuration via .kbforge.yaml
//
// Projects can pin the firmware tree location, upstream repository, and
// display preferences without passing flags on every invocation.
package firmware

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProjectConfig represents project-specific kbforge configuration, loaded
// from .kbforge.yaml in the current directory or any parent.
type ProjectConfig struct {
	// FirmwareDir is the firmware source tree root (default: "qmk_firmware").
	FirmwareDir string `yaml:"firmware_dir"`

	// RepoURL is the upstream firmware repository cloned when the tree is
	// absent (default: the official QMK repository).
	RepoURL string `yaml:"repo_url"`

	// Checkout enables cloning/updating the tree before each build.
	Checkout bool `yaml:"checkout"`

	// Theme selects the terminal theme: "default", "orca", "mono".
	Theme string `yaml:"theme"`
}

// DefaultProjectConfig returns a ProjectConfig with sensible defaults.
func DefaultProjectConfig() *ProjectConfig {
	return &ProjectConfig{
		FirmwareDir: "qmk_firmware",
		RepoURL:     DefaultRepoURL,
		Theme:       "default",
	}
}

// LoadProjectConfig loads configuration from .kbforge.yaml, falling back to
// defaults when the file is missing or unreadable.
func LoadProjectConfig() *ProjectConfig {
	cfg := DefaultProjectConfig()

	configPath := findConfigFile()
	if configPath == "" {
		return cfg
	}

	data, err := os.ReadFile(configPath) // #nosec G304 - config file path is controlled
	if err != nil {
		return cfg
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return cfg
	}
	if cfg.FirmwareDir == "" {
		cfg.FirmwareDir = "qmk_firmware"
	}
	if cfg.RepoURL == "" {
		cfg.RepoURL = DefaultRepoURL
	}
	return cfg
}

// findConfigFile looks for .kbforge.yaml in current and parent directories.
func findConfigFile() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(dir, ".kbforge.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
