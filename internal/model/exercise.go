// SPDX-License-Identifier: MPL-2.0

// Package model holds the exercise data model loaded during a build.
//
// The Document field set is generated from the dataset JSON schema by
// the regenerate_model change unit (internal/genmodel); Exercise wraps
// it with the on-disk location.
package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Exercise is one exercise entry as stored under
// <exercises dir>/<id>/<exercise json>.
type Exercise struct {
	Document

	// Path is the exercise directory; not part of the JSON document.
	Path string `json:"-"`
}

// FromJSONFile loads an Exercise from its JSON document. The id is taken
// from the parent directory name, which is authoritative over any id
// stored inside the document.
func FromJSONFile(file string) (*Exercise, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read exercise file: %w", err)
	}

	var ex Exercise
	if err := json.Unmarshal(raw, &ex); err != nil {
		return nil, fmt.Errorf("parse exercise %s: %w", file, err)
	}

	dir := filepath.Dir(file)
	ex.ID = filepath.Base(dir)
	ex.Path = dir
	return &ex, nil
}

// Rename moves the exercise directory to newID and updates ID and Path.
func (e *Exercise) Rename(newID string) error {
	if e.Path == "" {
		return fmt.Errorf("exercise %q has no base dir set", e.ID)
	}
	newDir := filepath.Join(filepath.Dir(e.Path), newID)
	if err := os.Rename(e.Path, newDir); err != nil {
		return fmt.Errorf("rename exercise %q: %w", e.ID, err)
	}
	e.Path = newDir
	e.ID = newID
	return nil
}
