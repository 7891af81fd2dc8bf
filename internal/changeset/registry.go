// SPDX-License-Identifier: MPL-2.0

package changeset

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
)

// ApplyFunc is the entry point a change unit exposes. It receives the
// shared environment, a logger scoped to the unit, and the decoded
// options table from the unit's manifest file.
type ApplyFunc func(ctx context.Context, env *Environment, log *log.Logger, opts map[string]any) error

var (
	registryMu sync.RWMutex
	registry   = make(map[string]ApplyFunc)
)

// Register binds an apply function to a change id. Units call this from
// init; registering the same id twice panics, since it means two units
// claim one identity.
func Register(id string, fn ApplyFunc) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if fn == nil {
		panic(fmt.Sprintf("changeset: nil apply function for %q", id))
	}
	if _, dup := registry[id]; dup {
		panic(fmt.Sprintf("changeset: apply function for %q registered twice", id))
	}
	registry[id] = fn
}

// IsRegistered reports whether an apply function exists for id.
func IsRegistered(id string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[id]
	return ok
}

func lookup(id string) (ApplyFunc, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	fn, ok := registry[id]
	return fn, ok
}

// Unregister removes an apply function. It exists for tests that need
// to install and tear down fixture units.
func Unregister(id string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(registry, id)
}
