// SPDX-License-Identifier: MPL-2.0

package changes

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"exbuild/internal/changeset"
	"exbuild/internal/staging"
)

// datasetExcDirName is the dataset directory where exercises are located.
const datasetExcDirName = "exercises"

func init() {
	changeset.Register("dataset_copy", datasetCopy)
}

// datasetCopy packs the source dataset's exercises into the build
// directory: one directory per exercise, images alongside the document
// file. An existing exercises directory means a prior run already did
// this; the unit skips so builds stay resumable.
func datasetCopy(_ context.Context, env *changeset.Environment, log *log.Logger, _ map[string]any) error {
	if err := os.Mkdir(env.ExercisesDir, 0o755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			log.Warn("SKIPPING", "reason", "exercise dir exists", "dir", env.ExercisesDir)
			return nil
		}
		return fmt.Errorf("create exercise dir: %w", err)
	}

	src := filepath.Join(env.DatasetDir, datasetExcDirName)
	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("read dataset exercises %s: %w", src, err)
	}

	dirs := make(map[string]bool)
	var files []string
	for _, ent := range entries {
		switch {
		case ent.IsDir():
			dirs[ent.Name()] = true
		case strings.HasSuffix(ent.Name(), ".json"):
			files = append(files, ent.Name())
		}
	}

	log.Info("Found exercises", "json", len(files), "dirs", len(dirs))
	if len(dirs) != len(files) {
		log.Warn("json/dir mismatch", "by", len(files)-len(dirs))
	}

	// pair each document with its image directory by stem
	paired := make(map[string]string, len(files))
	for _, file := range files {
		stem := strings.TrimSuffix(file, ".json")
		if dirs[stem] {
			delete(dirs, stem)
			paired[file] = stem
		} else {
			log.Warn("No dir found for document", "file", file)
			paired[file] = ""
		}
	}
	for dir := range dirs {
		log.Warn("No JSON for dir", "dir", filepath.Join(src, dir))
	}

	log.Info("Packing dataset exercises", "into", env.ExercisesDir)
	for file, dir := range paired {
		stem := strings.TrimSuffix(file, ".json")
		dst := filepath.Join(env.ExercisesDir, stem)
		log.Debug("copy", "exercise", stem)

		if dir == "" {
			if err := os.Mkdir(dst, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", dst, err)
			}
		} else {
			if err := os.Mkdir(dst, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", dst, err)
			}
			if err := staging.CopyTree(filepath.Join(src, dir), dst); err != nil {
				return fmt.Errorf("copy %s: %w", dir, err)
			}
		}

		doc := filepath.Join(dst, env.Config.ExerciseJSON)
		if err := copyFile(filepath.Join(src, file), doc); err != nil {
			return fmt.Errorf("copy document %s: %w", file, err)
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
