// SPDX-License-Identifier: MPL-2.0

package genmodel

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"
	"cuelang.org/go/encoding/jsonschema"
)

// Validator checks dataset documents against a JSON schema. The schema
// is compiled once; Validate is then cheap per document.
type Validator struct {
	ctx    *cue.Context
	schema cue.Value
}

// NewValidator compiles the JSON schema at schemaFile into a CUE value.
func NewValidator(schemaFile string) (*Validator, error) {
	raw, err := os.ReadFile(schemaFile)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}

	ctx := cuecontext.New()
	expr, err := cuejson.Extract(schemaFile, raw)
	if err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", schemaFile, err)
	}
	schemaVal := ctx.BuildExpr(expr)
	if err := schemaVal.Err(); err != nil {
		return nil, fmt.Errorf("build schema %s: %w", schemaFile, err)
	}

	file, err := jsonschema.Extract(schemaVal, &jsonschema.Config{})
	if err != nil {
		return nil, fmt.Errorf("extract schema %s: %w", schemaFile, err)
	}
	schema := ctx.BuildFile(file)
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", schemaFile, err)
	}

	return &Validator{ctx: ctx, schema: schema}, nil
}

// Validate checks one JSON document against the schema. The name labels
// the document in error output.
func (v *Validator) Validate(name string, doc []byte) error {
	expr, err := cuejson.Extract(name, doc)
	if err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	val := v.ctx.BuildExpr(expr)
	if err := val.Err(); err != nil {
		return fmt.Errorf("build %s: %w", name, err)
	}

	unified := v.schema.Unify(val)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%s does not match schema:\n%s", name, cueerrors.Details(err, nil))
	}
	return nil
}

// ValidateFile reads and validates one JSON document from disk.
func (v *Validator) ValidateFile(path string) error {
	doc, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}
	return v.Validate(path, doc)
}
