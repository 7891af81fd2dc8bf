// SPDX-License-Identifier: MPL-2.0

// Package changeset defines ordered change units, their discovery, and
// the registry of apply functions that implement them.
//
// A change is declared by a file named <priority>_<id>.<ext> in the
// changeset directory. The file's name carries ordering and identity;
// its body is an optional TOML table of options handed to the apply
// function. The apply function itself is compiled in and registered by
// id at startup (see Register).
package changeset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/pelletier/go-toml/v2"
)

// DefaultExt is the change manifest extension used when the
// configuration does not override it.
const DefaultExt = "toml"

// namePattern matches <digits>_<rest>; the extension is checked
// separately so it stays configurable.
var namePattern = regexp.MustCompile(`^(\d+)_(.+)$`)

// Change is a single ordered unit of work sourced from a manifest file.
// Immutable after construction.
type Change struct {
	// Priority is the ordering key parsed from the file name. Not
	// necessarily unique; ties are broken by ID.
	Priority int
	// ID is the raw middle segment of the file name, unique per batch.
	ID string
	// Name is the human-readable form of ID.
	Name string
	// File is the manifest path the change was constructed from.
	File string
}

// Matches reports whether path names a change manifest: the base name
// conforms to <digits>_<id>.<ext> and the file exists.
func Matches(path, ext string) bool {
	if !matchesName(filepath.Base(path), ext) {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func matchesName(name, ext string) bool {
	stem, ok := strings.CutSuffix(name, "."+ext)
	if !ok {
		return false
	}
	return namePattern.MatchString(stem)
}

// FromPath constructs a Change from a manifest path. Fails with
// MalformedNameError when the name does not conform.
func FromPath(path, ext string) (*Change, error) {
	stem, ok := strings.CutSuffix(filepath.Base(path), "."+ext)
	if !ok {
		return nil, &MalformedNameError{Path: path}
	}
	m := namePattern.FindStringSubmatch(stem)
	if m == nil {
		return nil, &MalformedNameError{Path: path}
	}

	priority, err := strconv.Atoi(m[1])
	if err != nil {
		// digits too large for int; treat as malformed rather than panic
		return nil, &MalformedNameError{Path: path}
	}

	return &Change{
		Priority: priority,
		ID:       m[2],
		Name:     humanize(m[2]),
		File:     path,
	}, nil
}

// humanize turns an id into a display name: doubled underscores escape a
// literal underscore, remaining underscores become spaces, and the first
// letter is capitalized. "leg__press" -> "Leg_press", "leg_press" ->
// "Leg press".
func humanize(id string) string {
	const tmp = "\x00TEMP\x00"
	s := strings.ReplaceAll(id, "__", tmp)
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, tmp, "_")

	runes := []rune(s)
	if len(runes) > 0 {
		runes[0] = unicode.ToUpper(runes[0])
	}
	return string(runes)
}

// Options decodes the manifest body as a TOML table. An empty or
// whitespace-only manifest yields an empty table.
func (c *Change) Options() (map[string]any, error) {
	raw, err := os.ReadFile(c.File)
	if err != nil {
		return nil, fmt.Errorf("read change manifest: %w", err)
	}
	opts := make(map[string]any)
	if strings.TrimSpace(string(raw)) == "" {
		return opts, nil
	}
	if err := toml.Unmarshal(raw, &opts); err != nil {
		return nil, fmt.Errorf("parse change manifest %s: %w", c.File, err)
	}
	return opts, nil
}

// Apply runs the registered apply function for this change against env.
// The function receives a child logger prefixed with the change's name
// and the manifest's decoded options. Any failure is wrapped in
// ApplyError carrying the change's identity.
func (c *Change) Apply(ctx context.Context, env *Environment) error {
	fn, ok := lookup(c.ID)
	if !ok {
		return &ApplyError{ID: c.ID, Priority: c.Priority, Err: fmt.Errorf("%w for %q", ErrNotRegistered, c.ID)}
	}

	opts, err := c.Options()
	if err != nil {
		return &ApplyError{ID: c.ID, Priority: c.Priority, Err: err}
	}

	log := env.Log.WithPrefix(c.Name)
	if err := fn(ctx, env, log, opts); err != nil {
		return &ApplyError{ID: c.ID, Priority: c.Priority, Err: err}
	}
	return nil
}
