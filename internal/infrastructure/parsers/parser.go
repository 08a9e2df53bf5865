// Package parsers reads products from JSON and CSV files for bulk import.
package parsers

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// RawProduct is one record of an import file. Values stay as text until the
// import validates them against the field schema.
type RawProduct struct {
	Values  map[string]string
	LineNum int // CSV line or JSON array position, 1-based
}

// Parser turns an import source into raw products.
type Parser interface {
	Parse(r io.Reader) ([]RawProduct, error)
}

// registry maps a format name to its parser. File extensions use the same keys.
var registry = map[string]Parser{
	"json": &JSONParser{},
	"csv":  &CSVParser{},
}

// Formats returns the supported format names.
func Formats() []string {
	return []string{"csv", "json"}
}

// Lookup picks a parser. An explicit format wins; "" or "auto" falls back to
// the file extension of name.
func Lookup(format, name string) (Parser, error) {
	key := strings.ToLower(strings.TrimSpace(format))
	if key == "" || key == "auto" {
		key = strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
		if key == "" {
			return nil, fmt.Errorf("cannot detect format of %q, pass one of %s", name, strings.Join(Formats(), ", "))
		}
	}
	p, ok := registry[key]
	if !ok {
		return nil, fmt.Errorf("unsupported format %q, expected one of %s", key, strings.Join(Formats(), ", "))
	}
	return p, nil
}
