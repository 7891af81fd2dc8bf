// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// GenerateTOML renders cfg as a TOML document suitable for exbuild.toml.
func GenerateTOML(cfg *Config) (string, error) {
	raw, err := toml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("render config: %w", err)
	}
	header := "# exbuild configuration file.\n# Any key left out falls back to the built-in default.\n\n"
	return header + string(raw), nil
}

// CreateDefault writes a default exbuild.toml into the platform config
// directory unless one already exists. Returns the file path.
func CreateDefault() (string, error) {
	cfgDir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	path := filepath.Join(cfgDir, ConfigFileName)
	if _, err := os.Stat(path); err == nil {
		return path, nil // already present, leave it alone
	}

	content, err := GenerateTOML(DefaultConfig())
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write config file: %w", err)
	}
	return path, nil
}
