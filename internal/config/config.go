// SPDX-License-Identifier: MPL-2.0

// Package config resolves build configuration from layered sources.
//
// Precedence, highest first: explicit programmatic overrides, bound CLI
// flags, an optional TOML config file (exbuild.toml), built-in defaults.
// A missing config file is tolerated; a malformed one is fatal. An
// absent key always falls through to the next layer.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "exbuild"
	// ConfigFileName is the config file name with extension.
	ConfigFileName = "exbuild.toml"
)

// configDirOverride allows tests to override the config directory, since
// os.UserHomeDir does not reliably honor HOME on all platforms.
var configDirOverride string

// SetConfigDirOverride sets a custom config directory path for tests.
func SetConfigDirOverride(dir string) { configDirOverride = dir }

// Reset clears test overrides.
func Reset() { configDirOverride = "" }

// ConfigError is returned when a present config file cannot be parsed
// or an explicit override cannot be applied.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("configuration %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("configuration: %v", e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// LoadOptions defines explicit configuration loading inputs.
type LoadOptions struct {
	// ConfigFilePath forces loading from a specific config file when set.
	// The file must exist in that case.
	ConfigFilePath string
	// FlagBinds maps config keys to CLI flags; only flags the user
	// actually changed take precedence over the config file.
	FlagBinds map[string]*pflag.Flag
	// Overrides is the highest-precedence layer. Keys use the same dotted
	// names as the config file (e.g. "build_dir", "ui.verbose"); unknown
	// keys are a ConfigError.
	Overrides map[string]any
}

// ConfigDir returns the exbuild configuration directory using
// platform-specific conventions.
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// Load resolves the final configuration from all layers.
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")

	setDefaults(v)

	for key, fl := range opts.FlagBinds {
		if err := v.BindPFlag(key, fl); err != nil {
			return nil, &ConfigError{Err: err}
		}
	}

	path, err := resolveConfigFile(opts.ConfigFilePath)
	if err != nil {
		return nil, err
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, &ConfigError{Path: path, Err: err}
		}
		err = v.MergeConfig(f)
		f.Close()
		if err != nil {
			return nil, &ConfigError{Path: path, Err: err}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}

	if err := applyOverrides(&cfg, opts.Overrides); err != nil {
		return nil, err
	}

	cfg.normalizePaths()
	return &cfg, nil
}

// setDefaults mirrors DefaultConfig into viper so every key exists at
// the lowest layer.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("build_dir", d.BuildDir)
	v.SetDefault("changeset_dir", d.ChangesetDir)
	v.SetDefault("changeset_ext", d.ChangesetExt)
	v.SetDefault("dataset_dir", d.DatasetDir)
	v.SetDefault("exercises_subdir", d.ExercisesSubdir)
	v.SetDefault("exercise_json", d.ExerciseJSON)
	v.SetDefault("skip", d.Skip)
	v.SetDefault("stage", d.Stage)
	v.SetDefault("commit_on_failure", d.CommitOnFailure)
	v.SetDefault("model_gen.schema_file", d.ModelGen.SchemaFile)
	v.SetDefault("model_gen.model_file", d.ModelGen.ModelFile)
	v.SetDefault("model_gen.renew_checked_at", d.ModelGen.RenewCheckedAt)
	v.SetDefault("fetch.cache_file", d.Fetch.CacheFile)
	v.SetDefault("fetch.limit", d.Fetch.Limit)
	v.SetDefault("convert.encoder", d.Convert.Encoder)
	v.SetDefault("convert.jobs", d.Convert.Jobs)
	v.SetDefault("convert.speed", d.Convert.Speed)
	v.SetDefault("convert.qual", d.Convert.Qual)
	v.SetDefault("convert.minqual", d.Convert.MinQual)
	v.SetDefault("convert.maxqual", d.Convert.MaxQual)
	v.SetDefault("convert.sharpness", d.Convert.Sharpness)
	v.SetDefault("convert.encoder_extra", d.Convert.EncoderExtra)
	v.SetDefault("ui.verbose", d.UI.Verbose)
}

// resolveConfigFile picks the config file to read, or "" when none
// applies. An explicit path must exist; the implicit lookup (current
// directory, then the platform config dir) tolerates absence.
func resolveConfigFile(explicit string) (string, error) {
	if explicit != "" {
		if !fileExists(explicit) {
			return "", &ConfigError{Path: explicit, Err: os.ErrNotExist}
		}
		return explicit, nil
	}

	if fileExists(ConfigFileName) {
		return ConfigFileName, nil
	}

	cfgDir, err := ConfigDir()
	if err != nil {
		return "", nil // no home dir: fall back to defaults
	}
	global := filepath.Join(cfgDir, ConfigFileName)
	if fileExists(global) {
		return global, nil
	}
	return "", nil
}

// applyOverrides decodes the explicit override map onto cfg. Unknown
// keys fail loudly rather than being silently dropped.
func applyOverrides(cfg *Config, overrides map[string]any) error {
	if len(overrides) == 0 {
		return nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      cfg,
		ErrorUnused: true,
		TagName:     "mapstructure",
	})
	if err != nil {
		return &ConfigError{Err: err}
	}
	if err := dec.Decode(nested(overrides)); err != nil {
		return &ConfigError{Err: fmt.Errorf("apply overrides: %w", err)}
	}
	return nil
}

// nested expands dotted override keys ("ui.verbose") into nested maps
// so mapstructure can walk sub-structs.
func nested(flat map[string]any) map[string]any {
	out := make(map[string]any)
	for key, val := range flat {
		cur := out
		for {
			head, rest, dotted := cutDot(key)
			if !dotted {
				cur[head] = val
				break
			}
			sub, ok := cur[head].(map[string]any)
			if !ok {
				sub = make(map[string]any)
				cur[head] = sub
			}
			cur = sub
			key = rest
		}
	}
	return out
}

func cutDot(s string) (head, rest string, found bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			return s[:i], s[i+1:], true
		}
	}
	return s, "", false
}

// normalizePaths cleans every directory/file valued key so downstream
// code never sees redundant separators or trailing slashes.
func (c *Config) normalizePaths() {
	clean := func(p *string) {
		if *p != "" {
			*p = filepath.Clean(*p)
		}
	}
	clean(&c.BuildDir)
	clean(&c.ChangesetDir)
	clean(&c.DatasetDir)
	clean(&c.ModelGen.SchemaFile)
	clean(&c.ModelGen.ModelFile)
	clean(&c.Fetch.CacheFile)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}
