// SPDX-License-Identifier: MPL-2.0

package changeset

import (
	"fmt"
	"strconv"
	"strings"
)

// SkipSet is a set of priorities excluded from a build queue.
type SkipSet map[int]struct{}

// Contains reports whether priority is in the set.
func (s SkipSet) Contains(priority int) bool {
	_, ok := s[priority]
	return ok
}

// ParseSkipSpec parses a skip list such as "1,2-3,5" into a SkipSet.
// Entries are single non-negative priorities or inclusive ranges.
// An empty spec yields an empty set.
func ParseSkipSpec(spec string) (SkipSet, error) {
	set := make(SkipSet)
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return set, nil
	}

	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("skip spec %q: empty entry", spec)
		}

		lo, hi, isRange := strings.Cut(part, "-")
		start, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil || start < 0 {
			return nil, fmt.Errorf("skip spec %q: bad priority %q", spec, part)
		}
		end := start
		if isRange {
			end, err = strconv.Atoi(strings.TrimSpace(hi))
			if err != nil || end < start {
				return nil, fmt.Errorf("skip spec %q: bad range %q", spec, part)
			}
		}

		for p := start; p <= end; p++ {
			set[p] = struct{}{}
		}
	}

	return set, nil
}

// Filter returns changes with the skipped priorities removed, preserving
// order.
func (s SkipSet) Filter(changes []*Change) []*Change {
	if len(s) == 0 {
		return changes
	}
	kept := make([]*Change, 0, len(changes))
	for _, chg := range changes {
		if !s.Contains(chg.Priority) {
			kept = append(kept, chg)
		}
	}
	return kept
}
