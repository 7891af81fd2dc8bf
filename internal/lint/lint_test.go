// SPDX-License-Identifier: MPL-2.0

package lint

import (
	"strings"
	"testing"
)

func TestLinter_IDLint(t *testing.T) {
	l := New()

	tests := []struct {
		id   string
		want bool
	}{
		{"leg_press", true},
		{"barbell_curl_21s", true},
		{"a", true},
		{"", false},
		{"Leg_press", false},
		{"leg-press", false},
		{"leg press", false},
		{"squat!", false},
		{strings.Repeat("a", 40), true},
		{strings.Repeat("a", 41), false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := l.IDLint(tt.id); got != tt.want {
				t.Errorf("IDLint(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestLinter_IDLint_CustomMaxLen(t *testing.T) {
	l := &Linter{IDMaxLen: 5}

	if !l.IDLint("abcde") {
		t.Error("IDLint(abcde) with max 5 should pass")
	}
	if l.IDLint("abcdef") {
		t.Error("IDLint(abcdef) with max 5 should fail")
	}
}

func TestIDFixup(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Leg-Press", "leg_press"},
		{"leg__press", "leg_press"},
		{"leg___press", "leg_press"},
		{"3-4-Sit-Up", "3_4_sit_up"},
		{"already_fine", "already_fine"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := IDFixup(tt.in); got != tt.want {
				t.Errorf("IDFixup(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestHistogram(t *testing.T) {
	h := Histogram([]string{"ab", "cd", "efg", "h"})

	if h.Total != 4 {
		t.Errorf("Total = %d, want 4", h.Total)
	}
	if h.Counts[2] != 2 || h.Counts[3] != 1 || h.Counts[1] != 1 {
		t.Errorf("Counts = %v, want {2:2, 3:1, 1:1}", h.Counts)
	}

	keys := h.Keys()
	if len(keys) != 3 || keys[0] != 2 {
		t.Errorf("Keys() = %v, want most frequent length (2) first", keys)
	}
	// ties by ascending length
	if keys[1] != 1 || keys[2] != 3 {
		t.Errorf("Keys() tie order = %v, want [2 1 3]", keys)
	}
}
