// SPDX-License-Identifier: MPL-2.0

// Package lint checks and repairs exercise identifiers.
package lint

import (
	"sort"
	"strings"
)

// DefaultIDMaxLen bounds identifier length. 95% of the upstream dataset
// names fit in 40 symbols.
const DefaultIDMaxLen = 40

const idAllowedSyms = "abcdefghijklmnopqrstuvwxyz0123456789_"

// Linter validates exercise identifiers against the project naming scheme:
// lowercase ascii letters, digits and single underscores, length-bounded.
type Linter struct {
	// IDMaxLen overrides DefaultIDMaxLen when positive.
	IDMaxLen int
}

// New creates a Linter with the default length bound.
func New() *Linter {
	return &Linter{IDMaxLen: DefaultIDMaxLen}
}

func (l *Linter) maxLen() int {
	if l.IDMaxLen > 0 {
		return l.IDMaxLen
	}
	return DefaultIDMaxLen
}

// IDLint reports whether id conforms to the naming scheme.
func (l *Linter) IDLint(id string) bool {
	if len(id) > l.maxLen() {
		return false
	}
	if id == "" {
		return false
	}
	for _, r := range id {
		if !strings.ContainsRune(idAllowedSyms, r) {
			return false
		}
	}
	return true
}

// IDFixup rewrites id towards the naming scheme: dashes become
// underscores ('-' may be unacceptable in further uses elsewhere),
// uppercase is lowered, repeated underscores collapse to one.
// The result is not guaranteed to lint; callers must re-check.
func IDFixup(id string) string {
	id = strings.ReplaceAll(id, "-", "_")
	id = strings.ToLower(id)

	for strings.Contains(id, "__") {
		id = strings.ReplaceAll(id, "__", "_")
	}

	return id
}

// LengthHistogram returns identifier lengths mapped to their frequency,
// plus the total count. Keys returns the lengths ordered most frequent
// first for report output.
type LengthHistogram struct {
	Counts map[int]int
	Total  int
}

// Histogram computes the length spread of ids.
func Histogram(ids []string) LengthHistogram {
	spread := make(map[int]int)
	for _, id := range ids {
		spread[len(id)]++
	}

	total := 0
	for _, n := range spread {
		total += n
	}
	return LengthHistogram{Counts: spread, Total: total}
}

// Keys returns histogram lengths ordered by descending frequency,
// ties by ascending length for determinism.
func (h LengthHistogram) Keys() []int {
	keys := make([]int, 0, len(h.Counts))
	for k := range h.Counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if h.Counts[keys[i]] != h.Counts[keys[j]] {
			return h.Counts[keys[i]] > h.Counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}
