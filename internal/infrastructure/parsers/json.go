package parsers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// JSONParser parses products from a JSON array of objects.
type JSONParser struct{}

// Parse reads JSON from the reader and returns parsed products.
// Numbers and booleans are turned into their text form; nested values are
// rejected.
func (p *JSONParser) Parse(r io.Reader) ([]RawProduct, error) {
	var objects []map[string]any

	decoder := json.NewDecoder(r)
	decoder.UseNumber()
	if err := decoder.Decode(&objects); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	products := make([]RawProduct, 0, len(objects))
	for i, obj := range objects {
		// Record numbers are 1-indexed.
		values := make(map[string]string, len(obj))
		for k, v := range obj {
			s, err := textValue(v)
			if err != nil {
				return nil, fmt.Errorf("record %d, field %q: %w", i+1, k, err)
			}
			values[k] = s
		}
		products = append(products, RawProduct{Values: values, LineNum: i + 1})
	}

	return products, nil
}

func textValue(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case json.Number:
		return val.String(), nil
	case bool:
		return strconv.FormatBool(val), nil
	case nil:
		return "", nil
	default:
		var buf bytes.Buffer
		_ = json.NewEncoder(&buf).Encode(val)
		return "", fmt.Errorf("unsupported value %s", bytes.TrimSpace(buf.Bytes()))
	}
}
