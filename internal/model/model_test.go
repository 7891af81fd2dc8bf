// SPDX-License-Identifier: MPL-2.0

package model

import (
	"os"
	"path/filepath"
	"testing"
)

func writeExercise(t *testing.T, root, id, doc string) string {
	t.Helper()
	dir := filepath.Join(root, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(dir, "data.json")
	if err := os.WriteFile(file, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	return file
}

func TestFromJSONFile(t *testing.T) {
	root := t.TempDir()
	file := writeExercise(t, root, "machine_bicep_curl", `{
		"id": "stale-id-inside-doc",
		"name": "Machine Bicep Curl",
		"level": "beginner",
		"category": "strength",
		"primaryMuscles": ["biceps"]
	}`)

	ex, err := FromJSONFile(file)
	if err != nil {
		t.Fatalf("FromJSONFile() error = %v", err)
	}

	// dir name wins over the id embedded in the document
	if ex.ID != "machine_bicep_curl" {
		t.Errorf("ID = %q, want machine_bicep_curl", ex.ID)
	}
	if ex.Name != "Machine Bicep Curl" {
		t.Errorf("Name = %q", ex.Name)
	}
	if ex.Path != filepath.Join(root, "machine_bicep_curl") {
		t.Errorf("Path = %q", ex.Path)
	}
}

func TestFromJSONFile_Malformed(t *testing.T) {
	root := t.TempDir()
	file := writeExercise(t, root, "bad", `{not json`)

	if _, err := FromJSONFile(file); err == nil {
		t.Error("FromJSONFile() should fail on malformed JSON")
	}
}

func TestExercise_Rename(t *testing.T) {
	root := t.TempDir()
	writeExercise(t, root, "Old-Name", `{"name": "x", "level": "beginner", "category": "strength"}`)

	ex, err := FromJSONFile(filepath.Join(root, "Old-Name", "data.json"))
	if err != nil {
		t.Fatal(err)
	}

	if err := ex.Rename("old_name"); err != nil {
		t.Fatalf("Rename() error = %v", err)
	}

	if ex.ID != "old_name" {
		t.Errorf("ID = %q, want old_name", ex.ID)
	}
	if _, err := os.Stat(filepath.Join(root, "old_name", "data.json")); err != nil {
		t.Errorf("renamed dir missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "Old-Name")); !os.IsNotExist(err) {
		t.Error("old dir still present")
	}
}

func exerciseWithID(id string) *Exercise {
	return &Exercise{Document: Document{ID: id}}
}

func TestCollection(t *testing.T) {
	c := NewCollection()
	c.Add(exerciseWithID("squat"))
	c.Add(exerciseWithID("bench_press"))
	c.Add(exerciseWithID("deadlift"))

	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}

	if _, ok := c.Get("squat"); !ok {
		t.Error("Get(squat) not found")
	}

	want := []string{"bench_press", "deadlift", "squat"}
	ids := c.IDs()
	for i, id := range want {
		if ids[i] != id {
			t.Fatalf("IDs() = %v, want %v", ids, want)
		}
	}

	c.Remove(exerciseWithID("squat"))
	if _, ok := c.Get("squat"); ok {
		t.Error("Get(squat) should be gone after Remove")
	}
}
