// Package storage holds the document encoding shared by the store backends.
// Every backend persists the same five JSON documents; only where the bytes
// live differs.
package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/sbertone/inventario/internal/domain/entities"
)

// Document names. The JSON file backend uses them as file names.
const (
	DocFields  = "campos.json"
	DocUnique  = "campos_unicos.json"
	DocProduct = "inventario.json"
	DocHistory = "historial.json"
	DocBin     = "papelera.json"
)

// Documents lists every document in creation order.
var Documents = []string{DocFields, DocUnique, DocProduct, DocHistory, DocBin}

// ErrCorrupt marks a document that exists but cannot be parsed.
var ErrCorrupt = errors.New("corrupt document")

// EmptyDocument returns the empty default body for a document.
func EmptyDocument(name string) []byte {
	if name == DocFields {
		return []byte("{}")
	}
	return []byte("[]")
}

// Encode renders a document as 4-space indented UTF-8 JSON with a trailing
// newline. Non-ASCII text is written as is.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// NormalizeUnique sorts names and drops duplicates and blanks.
func NormalizeUnique(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = entities.NormalizeName(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// DecodeFields parses campos.json.
func DecodeFields(data []byte) (entities.Schema, error) {
	var schema entities.Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, corrupt(DocFields, err)
	}
	if schema == nil {
		schema = entities.Schema{}
	}
	return schema, nil
}

// DecodeUnique parses campos_unicos.json.
func DecodeUnique(data []byte) ([]string, error) {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, corrupt(DocUnique, err)
	}
	return NormalizeUnique(names), nil
}

// DecodeProducts parses inventario.json. Numbers decode as int64 when
// integral and float64 otherwise.
func DecodeProducts(data []byte) ([]entities.Product, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, corrupt(DocProduct, err)
	}
	products := make([]entities.Product, 0, len(raw))
	for i, r := range raw {
		p, err := entities.UnmarshalProduct(r)
		if err != nil {
			return nil, corrupt(DocProduct, fmt.Errorf("product %d: %w", i, err))
		}
		if p == nil {
			p = entities.Product{}
		}
		products = append(products, p)
	}
	return products, nil
}

// DecodeHistory parses historial.json.
func DecodeHistory(data []byte) ([]entities.Event, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var events []entities.Event
	if err := dec.Decode(&events); err != nil {
		return nil, corrupt(DocHistory, err)
	}
	for i := range events {
		events[i].Before = entities.NormalizeJSONValue(events[i].Before)
		events[i].After = entities.NormalizeJSONValue(events[i].After)
		if m, ok := entities.NormalizeJSONValue(events[i].Meta).(map[string]any); ok {
			events[i].Meta = m
		}
	}
	if events == nil {
		events = []entities.Event{}
	}
	return events, nil
}

// DecodeBin parses papelera.json.
func DecodeBin(data []byte) ([]entities.BinEntry, error) {
	var entries []entities.BinEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, corrupt(DocBin, err)
	}
	if entries == nil {
		entries = []entities.BinEntry{}
	}
	return entries, nil
}

func corrupt(name string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrCorrupt, name, err)
}
