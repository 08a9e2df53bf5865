package entities

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"
)

// HiddenFieldsKey holds values of deleted fields inside a product.
const HiddenFieldsKey = "_campos_ocultos"

// Product is one inventory record: field name to typed value.
// Values are string, int64, float64 or bool; dates are DD-MM-YYYY strings.
type Product map[string]any

// Clone returns a deep copy of the product.
func (p Product) Clone() Product {
	if p == nil {
		return nil
	}
	out := make(Product, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

// Equal reports structural equality, treating numerically equal ints and floats as equal.
func (p Product) Equal(other Product) bool {
	return ValuesEqual(map[string]any(p), map[string]any(other))
}

// Fields returns the visible field names, sorted.
func (p Product) Fields() []string {
	names := make([]string, 0, len(p))
	for k := range p {
		if k == HiddenFieldsKey {
			continue
		}
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Hidden returns the archive of values for deleted fields, or nil.
func (p Product) Hidden() map[string]any {
	hidden, _ := p[HiddenFieldsKey].(map[string]any)
	return hidden
}

// Hide moves the named value into the hidden archive.
func (p Product) Hide(name string) {
	v, ok := p[name]
	if !ok {
		return
	}
	hidden := p.Hidden()
	if hidden == nil {
		hidden = make(map[string]any)
		p[HiddenFieldsKey] = hidden
	}
	hidden[name] = v
	delete(p, name)
}

// Unhide moves a value from the hidden archive back to a visible field.
func (p Product) Unhide(name string) (any, bool) {
	hidden := p.Hidden()
	v, ok := hidden[name]
	if !ok {
		return nil, false
	}
	delete(hidden, name)
	if len(hidden) == 0 {
		delete(p, HiddenFieldsKey)
	}
	p[name] = v
	return v, true
}

// ValuesEqual compares two decoded JSON-like values.
func ValuesEqual(a, b any) bool {
	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		return ok && af == bf
	}

	switch av := a.(type) {
	case map[string]any:
		bv, ok := asMap(b)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			w, ok := bv[k]
			if !ok || !ValuesEqual(v, w) {
				return false
			}
		}
		return true
	case Product:
		return ValuesEqual(map[string]any(av), b)
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !ValuesEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

// FormatValue renders a stored value the way it is shown and searched.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

// UnmarshalProduct decodes a JSON object into a product with normalized numbers.
func UnmarshalProduct(data []byte) (Product, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	return Product(NormalizeJSONValue(raw).(map[string]any)), nil
}

// NormalizeJSONValue converts json.Number values produced by a UseNumber
// decoder into int64 when integral and float64 otherwise.
func NormalizeJSONValue(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		f, _ := val.Float64()
		return f
	case map[string]any:
		for k, inner := range val {
			val[k] = NormalizeJSONValue(inner)
		}
		return val
	case []any:
		for i, inner := range val {
			val[i] = NormalizeJSONValue(inner)
		}
		return val
	default:
		return v
	}
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = cloneValue(inner)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = cloneValue(inner)
		}
		return out
	default:
		return v
	}
}

func asMap(v any) (map[string]any, bool) {
	switch val := v.(type) {
	case map[string]any:
		return val, true
	case Product:
		return map[string]any(val), true
	default:
		return nil, false
	}
}

func toFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case float64:
		if math.IsNaN(val) {
			return 0, false
		}
		return val, true
	default:
		return 0, false
	}
}
