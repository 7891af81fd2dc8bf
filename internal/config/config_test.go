// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	chdir(t, dir)
	SetConfigDirOverride(filepath.Join(dir, "nonexistent-config-dir"))
	t.Cleanup(Reset)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(LoadOptions{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.BuildDir != "build" {
		t.Errorf("BuildDir = %q, want build", cfg.BuildDir)
	}
	if cfg.ChangesetDir != "changeset" {
		t.Errorf("ChangesetDir = %q, want changeset", cfg.ChangesetDir)
	}
	if !cfg.Stage || !cfg.CommitOnFailure {
		t.Error("Stage and CommitOnFailure should default to true")
	}
	if cfg.Convert.Qual != 68 {
		t.Errorf("Convert.Qual = %d, want 68", cfg.Convert.Qual)
	}
}

func TestLoad_ConfigFileOverridesDefaults(t *testing.T) {
	dir := isolate(t)

	content := "build_dir = \"out\"\n\n[ui]\nverbose = true\n"
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(LoadOptions{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.BuildDir != "out" {
		t.Errorf("BuildDir = %q, want out", cfg.BuildDir)
	}
	if !cfg.UI.Verbose {
		t.Error("UI.Verbose should come from the config file")
	}
	// untouched key falls through to the default
	if cfg.ChangesetDir != "changeset" {
		t.Errorf("ChangesetDir = %q, want default", cfg.ChangesetDir)
	}
}

func TestLoad_FlagBeatsConfigFile(t *testing.T) {
	dir := isolate(t)

	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("build_dir = \"from-file\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("build-dir", "build", "")
	if err := fs.Parse([]string{"--build-dir", "from-flag"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(LoadOptions{
		FlagBinds: map[string]*pflag.Flag{"build_dir": fs.Lookup("build-dir")},
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BuildDir != "from-flag" {
		t.Errorf("BuildDir = %q, want from-flag", cfg.BuildDir)
	}
}

func TestLoad_UnchangedFlagFallsThrough(t *testing.T) {
	dir := isolate(t)

	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("build_dir = \"from-file\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("build-dir", "build", "")

	cfg, err := Load(LoadOptions{
		FlagBinds: map[string]*pflag.Flag{"build_dir": fs.Lookup("build-dir")},
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BuildDir != "from-file" {
		t.Errorf("BuildDir = %q, want from-file (unset flag must not shadow file)", cfg.BuildDir)
	}
}

func TestLoad_OverrideBeatsEverything(t *testing.T) {
	dir := isolate(t)

	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("build_dir = \"from-file\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("build-dir", "build", "")
	if err := fs.Parse([]string{"--build-dir", "from-flag"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(LoadOptions{
		FlagBinds: map[string]*pflag.Flag{"build_dir": fs.Lookup("build-dir")},
		Overrides: map[string]any{"build_dir": "from-override", "ui.verbose": true},
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BuildDir != "from-override" {
		t.Errorf("BuildDir = %q, want from-override", cfg.BuildDir)
	}
	if !cfg.UI.Verbose {
		t.Error("dotted override key should reach nested struct")
	}
}

func TestLoad_UnknownOverrideKeyFails(t *testing.T) {
	isolate(t)

	_, err := Load(LoadOptions{Overrides: map[string]any{"no_such_key": 1}})
	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("Load() error = %v, want ConfigError", err)
	}
}

func TestLoad_MalformedFileIsFatal(t *testing.T) {
	dir := isolate(t)

	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("build_dir = [unclosed\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(LoadOptions{})
	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("Load() error = %v, want ConfigError", err)
	}
}

func TestLoad_MissingExplicitFileIsFatal(t *testing.T) {
	isolate(t)

	_, err := Load(LoadOptions{ConfigFilePath: "nope.toml"})
	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("Load() error = %v, want ConfigError", err)
	}
}

func TestLoad_MissingImplicitFileTolerated(t *testing.T) {
	isolate(t)

	if _, err := Load(LoadOptions{}); err != nil {
		t.Fatalf("Load() with no config file should use defaults, got %v", err)
	}
}

func TestLoad_NormalizesPaths(t *testing.T) {
	isolate(t)

	cfg, err := Load(LoadOptions{Overrides: map[string]any{"build_dir": "out//nested/"}})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BuildDir != filepath.Clean("out//nested/") {
		t.Errorf("BuildDir = %q, want cleaned path", cfg.BuildDir)
	}
}

func TestGenerateTOML_RoundTrip(t *testing.T) {
	dir := isolate(t)

	content, err := GenerateTOML(DefaultConfig())
	if err != nil {
		t.Fatalf("GenerateTOML() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(LoadOptions{})
	if err != nil {
		t.Fatalf("Load() of generated file error = %v", err)
	}
	if *cfg != *DefaultConfig() {
		t.Errorf("round-tripped config differs from defaults:\n got %+v\nwant %+v", cfg, DefaultConfig())
	}
}
