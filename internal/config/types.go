// SPDX-License-Identifier: MPL-2.0

package config

type (
	// Config is the fully layered build configuration. All directory
	// valued fields are normalized (cleaned paths) after layering.
	Config struct {
		// BuildDir is the persistent build output directory.
		BuildDir string `mapstructure:"build_dir" toml:"build_dir"`
		// ChangesetDir holds the change manifests.
		ChangesetDir string `mapstructure:"changeset_dir" toml:"changeset_dir"`
		// ChangesetExt is the manifest extension without the dot.
		ChangesetExt string `mapstructure:"changeset_ext" toml:"changeset_ext"`
		// DatasetDir is the source exercise dataset checkout.
		DatasetDir string `mapstructure:"dataset_dir" toml:"dataset_dir"`
		// ExercisesSubdir is the exercises directory name inside BuildDir.
		ExercisesSubdir string `mapstructure:"exercises_subdir" toml:"exercises_subdir"`
		// ExerciseJSON is the per-exercise document file name.
		ExerciseJSON string `mapstructure:"exercise_json" toml:"exercise_json"`
		// Skip is a priority skip list such as "1,2-3,5".
		Skip string `mapstructure:"skip" toml:"skip"`
		// Stage enables the staging session around builds.
		Stage bool `mapstructure:"stage" toml:"stage"`
		// CommitOnFailure commits staged work back even when a change
		// failed, preserving partial progress for resumable builds.
		CommitOnFailure bool `mapstructure:"commit_on_failure" toml:"commit_on_failure"`

		ModelGen ModelGenConfig `mapstructure:"model_gen" toml:"model_gen"`
		Fetch    FetchConfig    `mapstructure:"fetch" toml:"fetch"`
		Convert  ConvertConfig  `mapstructure:"convert" toml:"convert"`
		UI       UIConfig       `mapstructure:"ui" toml:"ui"`
	}

	// ModelGenConfig drives the schema-to-model maintenance unit.
	ModelGenConfig struct {
		SchemaFile     string `mapstructure:"schema_file" toml:"schema_file"`
		ModelFile      string `mapstructure:"model_file" toml:"model_file"`
		RenewCheckedAt bool   `mapstructure:"renew_checked_at" toml:"renew_checked_at"`
	}

	// FetchConfig drives the dataset scraper.
	FetchConfig struct {
		// CacheFile is where the raw scraped dataset lands.
		CacheFile string `mapstructure:"cache_file" toml:"cache_file"`
		// Limit caps the number of requested entries; 0 means everything.
		Limit int `mapstructure:"limit" toml:"limit"`
	}

	// ConvertConfig drives the image batch converter.
	ConvertConfig struct {
		// Encoder is the avifenc binary name or path.
		Encoder string `mapstructure:"encoder" toml:"encoder"`
		// Jobs bounds parallel encoder processes; 0 means one per CPU.
		Jobs      int `mapstructure:"jobs" toml:"jobs"`
		Speed     int `mapstructure:"speed" toml:"speed"`
		Qual      int `mapstructure:"qual" toml:"qual"`
		MinQual   int `mapstructure:"minqual" toml:"minqual"`
		MaxQual   int `mapstructure:"maxqual" toml:"maxqual"`
		Sharpness int `mapstructure:"sharpness" toml:"sharpness"`
		// EncoderExtra is a shell-quoted string of extra encoder args.
		EncoderExtra string `mapstructure:"encoder_extra" toml:"encoder_extra"`
	}

	// UIConfig holds presentation settings.
	UIConfig struct {
		Verbose bool `mapstructure:"verbose" toml:"verbose"`
	}
)

// DefaultConfig returns the built-in defaults, the lowest configuration
// layer.
func DefaultConfig() *Config {
	return &Config{
		BuildDir:        "build",
		ChangesetDir:    "changeset",
		ChangesetExt:    "toml",
		DatasetDir:      "deps/free-exercise-db",
		ExercisesSubdir: "exercises",
		ExerciseJSON:    "data.json",
		Stage:           true,
		CommitOnFailure: true,
		ModelGen: ModelGenConfig{
			SchemaFile:     "deps/free-exercise-db/schema.json",
			ModelFile:      "internal/model/document.go",
			RenewCheckedAt: true,
		},
		Fetch: FetchConfig{
			CacheFile: "deps/sl_raw_dataset.yml",
		},
		Convert: ConvertConfig{
			Encoder:   "avifenc",
			Speed:     4,
			Qual:      68,
			MinQual:   36,
			MaxQual:   94,
			Sharpness: 4,
		},
	}
}
