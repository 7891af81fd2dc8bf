// SPDX-License-Identifier: MPL-2.0

// Package genmodel keeps the generated exercise model in sync with the
// dataset's JSON schema: it emits the model source, tracks freshness
// through updated-at/checked-at file headers, and validates dataset
// documents against the schema.
package genmodel

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

// headerPrefix starts every header line in a generated Go file.
const headerPrefix = "// "

// timeLayout matches the stored timestamp form, UTC with explicit
// offset, second precision.
const timeLayout = "2006-01-02 15:04:05-07:00"

var headerRe = regexp.MustCompile(`^([\w-]+):\s*(\S.*?)\s*$`)

// Headers is the comment block atop a generated model file: known
// timestamps, free-form provenance comments, and any other key: value
// pairs.
type Headers struct {
	UpdatedAt *time.Time
	CheckedAt *time.Time
	Comments  []string
	Extra     map[string]string
}

// FormatTime renders t (or the current time when nil) in the stored
// form, normalized to UTC so local timezones never leak into the file.
func FormatTime(t *time.Time) string {
	now := time.Now()
	if t == nil {
		t = &now
	}
	return t.UTC().Format(timeLayout)
}

// ParseTime reads a stored timestamp.
func ParseTime(val string) (time.Time, error) {
	return time.Parse(timeLayout, val)
}

// Dump renders the header block, timestamps first, then extra pairs,
// then comments, each line comment-prefixed.
func (h *Headers) Dump() string {
	var lines []string

	if h.UpdatedAt != nil {
		lines = append(lines, "updated-at: "+FormatTime(h.UpdatedAt))
	}
	if h.CheckedAt != nil {
		lines = append(lines, "checked-at: "+FormatTime(h.CheckedAt))
	}
	for _, k := range sortedKeys(h.Extra) {
		lines = append(lines, k+": "+h.Extra[k])
	}
	lines = append(lines, h.Comments...)

	prefixed := make([]string, len(lines))
	for i, l := range lines {
		prefixed[i] = strings.TrimRight(headerPrefix+l, " ")
	}
	return strings.Join(prefixed, "\n")
}

// Load parses the comment lines of a header block. Lines matching
// "key: value" become headers; the rest are kept as comments.
// The known timestamp keys are pulled out into their fields.
func (h *Headers) Load(lines []string) error {
	if h.Extra == nil {
		h.Extra = make(map[string]string)
	}

	for _, line := range lines {
		if !strings.HasPrefix(line, "//") {
			return fmt.Errorf("header line %q must start with %q", line, headerPrefix)
		}
		body := strings.TrimPrefix(line, "//")
		body = strings.TrimPrefix(body, " ")

		if m := headerRe.FindStringSubmatch(body); m != nil {
			h.Extra[m[1]] = m[2]
		} else {
			h.Comments = append(h.Comments, body)
		}
	}

	for _, spec := range []struct {
		key  string
		dest **time.Time
	}{
		{"updated-at", &h.UpdatedAt},
		{"checked-at", &h.CheckedAt},
	} {
		if val, ok := h.Extra[spec.key]; ok {
			delete(h.Extra, spec.key)
			t, err := ParseTime(val)
			if err != nil {
				return fmt.Errorf("header %s: %w", spec.key, err)
			}
			*spec.dest = &t
		}
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
