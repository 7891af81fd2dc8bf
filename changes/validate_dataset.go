// SPDX-License-Identifier: MPL-2.0

package changes

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"

	"exbuild/internal/changeset"
	"exbuild/internal/genmodel"
)

func init() {
	changeset.Register("validate_dataset", validateDataset)
}

// validateDataset checks every packed exercise document against the
// dataset JSON schema before anything downstream consumes it. By
// default all failures are collected and reported together; set
// fail_fast in the manifest to stop at the first one.
func validateDataset(ctx context.Context, env *changeset.Environment, log *log.Logger, opts map[string]any) error {
	failFast, _ := opts["fail_fast"].(bool)

	validator, err := genmodel.NewValidator(env.Config.ModelGen.SchemaFile)
	if err != nil {
		return err
	}

	dirs, err := exerciseDirs(env)
	if err != nil {
		return err
	}

	var bad int
	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return err
		}

		doc := filepath.Join(env.ExercisesDir, dir, env.Config.ExerciseJSON)
		if err := validator.ValidateFile(doc); err != nil {
			if failFast {
				return err
			}
			bad++
			log.Error("schema violation", "document", doc, "err", err)
		}
	}

	if bad > 0 {
		return fmt.Errorf("%d document(s) violate the dataset schema", bad)
	}
	log.Info("Documents validated against schema", "count", len(dirs))
	return nil
}
