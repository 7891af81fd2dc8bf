// SPDX-License-Identifier: MPL-2.0

package changeset

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
)

func TestCollect_Ordering(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"2_b.toml", "1_a.toml", "1_c.toml"} {
		writeManifest(t, dir, name, "")
	}

	changes, err := Collect(dir, "toml", log.New(io.Discard))
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	var got []string
	for _, chg := range changes {
		got = append(got, chg.ID)
	}
	want := []string{"a", "c", "b"} // priority ascending, ties by id
	if len(got) != len(want) {
		t.Fatalf("Collect() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Collect() order = %v, want %v", got, want)
		}
	}
}

func TestCollect_ExcludesNonConforming(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "1_real.toml", "")
	writeManifest(t, dir, "README.md", "")
	writeManifest(t, dir, "notes.toml", "")
	writeManifest(t, dir, "2_other.json", "")
	if err := os.MkdirAll(filepath.Join(dir, "3_subdir.toml"), 0o755); err != nil {
		t.Fatal(err)
	}

	changes, err := Collect(dir, "toml", log.New(io.Discard))
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(changes) != 1 || changes[0].ID != "real" {
		t.Errorf("Collect() = %v, want just 1_real", changes)
	}
}

func TestCollect_NoRecursion(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	writeManifest(t, sub, "1_nested.toml", "")

	changes, err := Collect(dir, "toml", log.New(io.Discard))
	if err != nil {
		t.Fatal(err)
	}
	if len(changes) != 0 {
		t.Errorf("Collect() = %v, want no recursion into subdirectories", changes)
	}
}

func TestCollect_MissingDir(t *testing.T) {
	_, err := Collect(filepath.Join(t.TempDir(), "nope"), "toml", log.New(io.Discard))
	var derr *DiscoveryError
	if !errors.As(err, &derr) {
		t.Fatalf("Collect() error = %v, want DiscoveryError", err)
	}
}

func TestCollect_DuplicateID(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "1_setenv.toml", "")
	writeManifest(t, dir, "2_setenv.toml", "")

	_, err := Collect(dir, "toml", log.New(io.Discard))
	var derr *DiscoveryError
	if !errors.As(err, &derr) {
		t.Fatalf("Collect() error = %v, want DiscoveryError for duplicate id", err)
	}
}

func TestParseSkipSpec(t *testing.T) {
	tests := []struct {
		spec    string
		want    []int
		wantErr bool
	}{
		{"", nil, false},
		{"1", []int{1}, false},
		{"1,2-3,5", []int{1, 2, 3, 5}, false},
		{" 1 , 2 - 3 ", []int{1, 2, 3}, false},
		{"3-1", nil, true},
		{"a", nil, true},
		{"1,,2", nil, true},
		{"-1", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			set, err := ParseSkipSpec(tt.spec)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSkipSpec(%q) error = %v, wantErr %v", tt.spec, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if len(set) != len(tt.want) {
				t.Fatalf("ParseSkipSpec(%q) = %v, want %v", tt.spec, set, tt.want)
			}
			for _, p := range tt.want {
				if !set.Contains(p) {
					t.Errorf("set should contain %d", p)
				}
			}
		})
	}
}

func TestSkipSet_Filter(t *testing.T) {
	changes := []*Change{
		{Priority: 1, ID: "a"},
		{Priority: 2, ID: "b"},
		{Priority: 3, ID: "c"},
	}

	set, err := ParseSkipSpec("2")
	if err != nil {
		t.Fatal(err)
	}

	kept := set.Filter(changes)
	if len(kept) != 2 || kept[0].ID != "a" || kept[1].ID != "c" {
		t.Errorf("Filter() = %v", kept)
	}
}
