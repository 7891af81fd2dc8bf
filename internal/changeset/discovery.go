// SPDX-License-Identifier: MPL-2.0

package changeset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/log"
)

// Collect lists the immediate children of dir, keeps the ones naming a
// change manifest for ext, and returns them ordered by (priority, id)
// ascending. Non-conforming files are excluded with a debug log line,
// never an error. No recursion into subdirectories.
//
// Fails with DiscoveryError when dir is missing or unreadable, or when
// two manifests share an id (the registry is keyed by id, so a
// duplicate would make one of them unreachable).
func Collect(dir, ext string, logger *log.Logger) ([]*Change, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &DiscoveryError{Dir: dir, Err: err}
	}

	seen := make(map[string]string) // id -> file of first occurrence
	var changes []*Change
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		name := ent.Name()
		if !matchesName(name, ext) {
			if logger != nil {
				logger.Debug("skipping non-change file", "file", name)
			}
			continue
		}

		chg, err := FromPath(filepath.Join(dir, name), ext)
		if err != nil {
			// matchesName passed, so this is the oversized-priority case
			return nil, &DiscoveryError{Dir: dir, Err: err}
		}

		if first, dup := seen[chg.ID]; dup {
			return nil, &DiscoveryError{
				Dir: dir,
				Err: fmt.Errorf("duplicate change id %q (%s and %s)", chg.ID, first, name),
			}
		}
		seen[chg.ID] = name
		changes = append(changes, chg)
	}

	sort.SliceStable(changes, func(i, j int) bool {
		if changes[i].Priority != changes[j].Priority {
			return changes[i].Priority < changes[j].Priority
		}
		return changes[i].ID < changes[j].ID
	})

	return changes, nil
}
