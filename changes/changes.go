// SPDX-License-Identifier: MPL-2.0

// Package changes holds the compiled-in change units. Each unit
// registers its apply function under the id that manifest files in the
// changeset directory refer to; importing this package (for side
// effects) is what arms the registry.
package changes

import (
	"context"
	"path/filepath"

	"github.com/charmbracelet/log"

	"exbuild/internal/changeset"
)

func init() {
	changeset.Register("setenv", setenv)
}

// setenv resolves the derived environment paths every later unit
// relies on. It runs first so the resolution happens against the
// effective (possibly staged) build directory.
func setenv(_ context.Context, env *changeset.Environment, log *log.Logger, _ map[string]any) error {
	env.DatasetDir = filepath.Clean(env.DatasetDir)
	env.ExercisesDir = filepath.Join(env.BuildDir, env.Config.ExercisesSubdir)

	log.Debug("environment resolved",
		"dataset", env.DatasetDir, "exercises", env.ExercisesDir)
	return nil
}
