// SPDX-License-Identifier: MPL-2.0

package changeset

import (
	"github.com/charmbracelet/log"

	"exbuild/internal/config"
	"exbuild/internal/model"
)

// Environment is the shared mutable context threaded through every
// change application. It is exclusively owned by one orchestrator run
// and handed to changes by reference in priority order; later changes
// observe earlier changes' writes. No concurrent access.
type Environment struct {
	// Config is the layered build configuration, read-only by convention.
	Config *config.Config

	// BuildDir is the effective build directory. While a staging session
	// is active this points at the staged copy, not the real directory.
	BuildDir string
	// ChangesetDir is where change manifests were discovered.
	ChangesetDir string
	// DatasetDir is the source dataset checkout consumed by copy units.
	DatasetDir string
	// ExercisesDir is set by the setenv unit once resolved against
	// BuildDir; empty until then.
	ExercisesDir string

	// Collection is populated by the load unit for downstream consumers.
	Collection *model.Collection

	// Log is the orchestrator's logger; changes receive children of it.
	Log *log.Logger

	// scratch holds unit-specific values keyed by change id, so one
	// change can leave data for a later one without growing new fields.
	scratch map[string]map[string]any
}

// NewEnvironment builds an Environment from layered configuration.
func NewEnvironment(cfg *config.Config, logger *log.Logger) *Environment {
	return &Environment{
		Config:       cfg,
		BuildDir:     cfg.BuildDir,
		ChangesetDir: cfg.ChangesetDir,
		DatasetDir:   cfg.DatasetDir,
		Log:          logger,
		scratch:      make(map[string]map[string]any),
	}
}

// Put stores a scratch value under (changeID, key).
func (e *Environment) Put(changeID, key string, value any) {
	tbl, ok := e.scratch[changeID]
	if !ok {
		tbl = make(map[string]any)
		e.scratch[changeID] = tbl
	}
	tbl[key] = value
}

// Get retrieves a scratch value stored by Put.
func (e *Environment) Get(changeID, key string) (any, bool) {
	tbl, ok := e.scratch[changeID]
	if !ok {
		return nil, false
	}
	v, ok := tbl[key]
	return v, ok
}
