// SPDX-License-Identifier: MPL-2.0

package genmodel

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// jsonSchema is the subset of JSON Schema the emitter understands. The
// dataset schema is a flat object of scalars, nullable scalars, and
// string arrays; anything fancier is an emit error, not a guess.
type jsonSchema struct {
	Title      string                `json:"title"`
	Type       any                   `json:"type"`
	Properties map[string]jsonSchema `json:"properties"`
	Items      *jsonSchema           `json:"items"`
	Enum       []any                 `json:"enum"`
	Required   []string              `json:"required"`
}

// Emit renders Go source for the schema: one struct whose fields mirror
// the schema's top-level properties, alphabetical for determinism.
// Optional scalar fields become pointers so null round-trips.
func Emit(schemaFile, pkg, typeName string) (string, error) {
	raw, err := os.ReadFile(schemaFile)
	if err != nil {
		return "", fmt.Errorf("read schema: %w", err)
	}

	var schema jsonSchema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return "", fmt.Errorf("parse schema %s: %w", schemaFile, err)
	}
	if len(schema.Properties) == 0 {
		return "", fmt.Errorf("schema %s has no properties to emit", schemaFile)
	}

	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}

	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "package %s\n\n", pkg)
	fmt.Fprintf(&b, "// %s mirrors one document of the dataset schema.\n", typeName)
	fmt.Fprintf(&b, "type %s struct {\n", typeName)
	for _, name := range names {
		prop := schema.Properties[name]
		goType, err := fieldType(prop, required[name])
		if err != nil {
			return "", fmt.Errorf("property %q: %w", name, err)
		}
		fmt.Fprintf(&b, "\t%s %s `json:\"%s\"`\n", fieldName(name), goType, name)
	}
	b.WriteString("}\n")
	return b.String(), nil
}

// fieldType maps a property schema to a Go type.
func fieldType(prop jsonSchema, required bool) (string, error) {
	types, nullable, err := typeSet(prop.Type)
	if err != nil {
		return "", err
	}
	if len(prop.Enum) > 0 && len(types) == 0 {
		// bare enum: infer from the first member
		if _, ok := prop.Enum[0].(string); ok {
			types = []string{"string"}
		}
	}
	if len(types) != 1 {
		return "", fmt.Errorf("unsupported type set %v", prop.Type)
	}

	var goType string
	switch types[0] {
	case "string":
		goType = "string"
	case "integer":
		goType = "int"
	case "number":
		goType = "float64"
	case "boolean":
		goType = "bool"
	case "array":
		if prop.Items == nil {
			return "", fmt.Errorf("array without items")
		}
		itemType, err := fieldType(*prop.Items, true)
		if err != nil {
			return "", err
		}
		return "[]" + itemType, nil
	default:
		return "", fmt.Errorf("unsupported type %q", types[0])
	}

	if nullable || !required {
		goType = "*" + goType
	}
	return goType, nil
}

// typeSet normalizes the schema "type" keyword, which may be a string
// or a list possibly including "null".
func typeSet(t any) (types []string, nullable bool, err error) {
	switch v := t.(type) {
	case nil:
		return nil, false, nil
	case string:
		return []string{v}, false, nil
	case []any:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false, fmt.Errorf("non-string type entry %v", item)
			}
			if s == "null" {
				nullable = true
				continue
			}
			types = append(types, s)
		}
		return types, nullable, nil
	default:
		return nil, false, fmt.Errorf("unsupported type keyword %v", t)
	}
}

// fieldName converts a JSON property name to an exported Go field name.
func fieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})
	var b strings.Builder
	for _, p := range parts {
		if p == "id" || p == "Id" {
			b.WriteString("ID")
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]) + p[1:])
	}
	return b.String()
}
