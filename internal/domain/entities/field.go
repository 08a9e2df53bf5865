// Package entities contains core domain data structures.
package entities

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// FieldType is the logical type of a user-defined field.
// The string values are the tokens persisted in campos.json.
type FieldType string

const (
	FieldTypeText    FieldType = "texto"
	FieldTypeInteger FieldType = "num entero"
	FieldTypeDecimal FieldType = "num decimal"
	FieldTypeBoolean FieldType = "v/f"
	FieldTypeDate    FieldType = "fecha"
)

// FieldTypes lists every supported field type in display order.
var FieldTypes = []FieldType{
	FieldTypeText,
	FieldTypeInteger,
	FieldTypeDecimal,
	FieldTypeBoolean,
	FieldTypeDate,
}

// IsValid reports whether t is one of the supported field types.
func (t FieldType) IsValid() bool {
	for _, ft := range FieldTypes {
		if ft == t {
			return true
		}
	}
	return false
}

// fieldTypeAliases maps short spellings accepted on the command line.
var fieldTypeAliases = map[string]FieldType{
	"entero":   FieldTypeInteger,
	"int":      FieldTypeInteger,
	"decimal":  FieldTypeDecimal,
	"float":    FieldTypeDecimal,
	"bool":     FieldTypeBoolean,
	"booleano": FieldTypeBoolean,
	"date":     FieldTypeDate,
	"text":     FieldTypeText,
}

// ParseFieldType resolves user input to a field type. It accepts the stored
// token, a short alias, or the 1-based position in FieldTypes.
func ParseFieldType(s string) (FieldType, error) {
	s = strings.ToLower(NormalizeName(s))
	if t := FieldType(s); t.IsValid() {
		return t, nil
	}
	if t, ok := fieldTypeAliases[s]; ok {
		return t, nil
	}
	if len(s) == 1 && s[0] >= '1' && int(s[0]-'0') <= len(FieldTypes) {
		return FieldTypes[s[0]-'1'], nil
	}
	return "", fmt.Errorf("unknown field type %q", s)
}

// Field is a named, typed attribute of the product schema.
type Field struct {
	Name string    `json:"nombre"`
	Type FieldType `json:"tipo"`
}

// FieldInfo describes a field together with its uniqueness flag.
type FieldInfo struct {
	Name   string    `json:"nombre"`
	Type   FieldType `json:"tipo"`
	Unique bool      `json:"unico"`
}

// Schema is the ordered set of field definitions.
// It serializes as a JSON object whose key order is the field order.
type Schema []Field

// Lookup returns the type of the named field.
func (s Schema) Lookup(name string) (FieldType, bool) {
	for _, f := range s {
		if f.Name == name {
			return f.Type, true
		}
	}
	return "", false
}

// Has reports whether the schema defines the named field.
func (s Schema) Has(name string) bool {
	_, ok := s.Lookup(name)
	return ok
}

// Names returns the field names in schema order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}

// Clone returns an independent copy of the schema.
func (s Schema) Clone() Schema {
	if s == nil {
		return nil
	}
	out := make(Schema, len(s))
	copy(out, s)
	return out
}

// Set updates the type of an existing field or appends a new one.
func (s *Schema) Set(name string, t FieldType) {
	for i := range *s {
		if (*s)[i].Name == name {
			(*s)[i].Type = t
			return
		}
	}
	*s = append(*s, Field{Name: name, Type: t})
}

// Rename changes a field name in place, keeping its position.
func (s Schema) Rename(oldName, newName string) {
	for i := range s {
		if s[i].Name == oldName {
			s[i].Name = newName
			return
		}
	}
}

// Remove deletes the named field, if present.
func (s *Schema) Remove(name string) {
	for i := range *s {
		if (*s)[i].Name == name {
			*s = append((*s)[:i], (*s)[i+1:]...)
			return
		}
	}
}

// MarshalJSON encodes the schema as an ordered JSON object.
func (s Schema) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(string(f.Type))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an ordered JSON object into the schema.
func (s *Schema) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*s = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("schema must be a JSON object")
	}

	out := Schema{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected schema key %v", keyTok)
		}
		var t string
		if err := dec.Decode(&t); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		out.Set(key, FieldType(t))
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*s = out
	return nil
}

// NormalizeName trims a field name and collapses inner whitespace.
// An empty result means the name is invalid.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
