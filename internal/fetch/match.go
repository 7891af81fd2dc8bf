// SPDX-License-Identifier: MPL-2.0

package fetch

import (
	"sort"
	"strings"

	"github.com/agext/levenshtein"
)

// ExerciseCmp abstracts an exercise compared between datasets.
type ExerciseCmp struct {
	ID       string
	Name     string
	Altnames []string
}

// Names yields the primary name followed by the alternates.
func (e ExerciseCmp) Names() []string {
	return append([]string{e.Name}, e.Altnames...)
}

// Match is one candidate pairing with its similarity score.
type Match struct {
	Similarity float64
	Other      ExerciseCmp
	// OtherName is the candidate's name that scored best.
	OtherName string
}

// FindMatching ranks others by string similarity against e, comparing
// every name pair case-insensitively and keeping each candidate's best.
// A perfect match short-circuits to a single result. At most limit
// matches are returned; limit <= 0 keeps them all.
func (e ExerciseCmp) FindMatching(others []ExerciseCmp, limit int) []Match {
	matches := make([]Match, 0, len(others))
	for _, other := range others {
		best := Match{Similarity: -1, Other: other}
		for _, mine := range e.Names() {
			for _, theirs := range other.Names() {
				sim := levenshtein.Match(strings.ToLower(mine), strings.ToLower(theirs), nil)
				if sim > best.Similarity {
					best.Similarity = sim
					best.OtherName = theirs
				}
			}
		}
		if best.Similarity >= 1 {
			return []Match{best}
		}
		matches = append(matches, best)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
