// SPDX-License-Identifier: MPL-2.0

package genmodel

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// SchemaModel ties a generated Go source file to the JSON schema it was
// emitted from. The file begins with a header block (see Headers); the
// rest is the emitted body, compared verbatim to decide staleness.
type SchemaModel struct {
	// SchemaFile is the JSON schema the model is generated from.
	SchemaFile string
	// ModelFile is the generated Go source file.
	ModelFile string
	// Package and TypeName control the emitted declaration.
	Package  string
	TypeName string

	Headers Headers
	body    string
}

// Load reads the model file, splitting the leading comment block into
// Headers and keeping the remainder as the body. A missing file is not
// an error; the model is simply treated as never generated.
func (m *SchemaModel) Load() error {
	raw, err := os.ReadFile(m.ModelFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read model: %w", err)
	}

	lines := strings.Split(string(raw), "\n")
	var header []string
	i := 0
	for ; i < len(lines); i++ {
		if !strings.HasPrefix(lines[i], "//") {
			break
		}
		header = append(header, lines[i])
	}
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}

	if err := m.Headers.Load(header); err != nil {
		return fmt.Errorf("model %s: %w", m.ModelFile, err)
	}
	m.body = strings.Join(lines[i:], "\n")
	return nil
}

// Save writes the header block and body back to the model file.
func (m *SchemaModel) Save() error {
	var b strings.Builder
	if hdr := m.Headers.Dump(); hdr != "" {
		b.WriteString(hdr)
		b.WriteString("\n\n")
	}
	b.WriteString(m.body)

	if err := os.WriteFile(m.ModelFile, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write model: %w", err)
	}
	return nil
}

// Body returns the current generated source body.
func (m *SchemaModel) Body() string { return m.body }

// Regenerate emits the model from the schema and reconciles it with the
// stored body. When the emitted source differs, the body and updated-at
// header are replaced and true is returned. When it matches, only
// checked-at is renewed, and only if renewCheckedAt is set. The file is
// saved in either case.
func (m *SchemaModel) Regenerate(renewCheckedAt bool) (bool, error) {
	emitted, err := Emit(m.SchemaFile, m.Package, m.TypeName)
	if err != nil {
		return false, err
	}

	now := time.Now().UTC().Truncate(time.Second)
	changed := emitted != m.body
	if changed {
		m.body = emitted
		m.Headers.UpdatedAt = &now
		m.Headers.CheckedAt = &now
	} else if renewCheckedAt {
		m.Headers.CheckedAt = &now
	}

	if err := m.Save(); err != nil {
		return changed, err
	}
	return changed, nil
}
