// SPDX-License-Identifier: MPL-2.0

package changes

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"

	"exbuild/internal/changeset"
	"exbuild/internal/model"
)

func init() {
	changeset.Register("load_collection", loadCollection)
}

// loadCollection reads every exercise document under the exercises dir
// into an in-memory collection for downstream units.
func loadCollection(_ context.Context, env *changeset.Environment, log *log.Logger, _ map[string]any) error {
	dirs, err := exerciseDirs(env)
	if err != nil {
		return err
	}

	col := model.NewCollection()
	for _, dir := range dirs {
		doc := filepath.Join(env.ExercisesDir, dir, env.Config.ExerciseJSON)
		ex, err := model.FromJSONFile(doc)
		if err != nil {
			return fmt.Errorf("load %s: %w", doc, err)
		}
		col.Add(ex)
	}

	env.Collection = col
	log.Info("Loaded documents into collection",
		"count", col.Len(), "document", env.Config.ExerciseJSON)
	return nil
}
