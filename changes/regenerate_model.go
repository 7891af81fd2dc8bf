// SPDX-License-Identifier: MPL-2.0

package changes

import (
	"context"

	"github.com/charmbracelet/log"

	"exbuild/internal/changeset"
	"exbuild/internal/genmodel"
)

func init() {
	changeset.Register("regenerate_model", regenerateModel)
}

// regenerateModel keeps the generated exercise model in sync with the
// dataset's JSON schema.
func regenerateModel(_ context.Context, env *changeset.Environment, log *log.Logger, opts map[string]any) error {
	cfg := env.Config.ModelGen

	pkg := "model"
	if p, ok := opts["package"].(string); ok {
		pkg = p
	}
	typeName := "Document"
	if n, ok := opts["type_name"].(string); ok {
		typeName = n
	}

	m := &genmodel.SchemaModel{
		SchemaFile: cfg.SchemaFile,
		ModelFile:  cfg.ModelFile,
		Package:    pkg,
		TypeName:   typeName,
	}
	if err := m.Load(); err != nil {
		return err
	}

	changed, err := m.Regenerate(cfg.RenewCheckedAt)
	if err != nil {
		return err
	}

	switch {
	case changed:
		log.Warn("[REGENERATED] model", "model", m.ModelFile, "schema", m.SchemaFile)
	case cfg.RenewCheckedAt:
		log.Info("[NO REGEN NEEDED] updated checked-at", "model", m.ModelFile, "schema", m.SchemaFile)
	default:
		log.Info("[NO UPDATE NEEDED] model checked against schema",
			"model", m.ModelFile, "checked-at", genmodel.FormatTime(m.Headers.CheckedAt))
	}
	return nil
}
