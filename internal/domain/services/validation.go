package services

import (
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/sbertone/inventario/internal/domain/entities"
)

// DateLayout is the only accepted date format (DD-MM-YYYY).
const DateLayout = "02-01-2006"

var (
	truthyTokens = map[string]bool{
		"si": true, "sí": true, "s": true, "true": true, "1": true,
		"verdadero": true, "y": true, "yes": true, "t": true,
	}
	falsyTokens = map[string]bool{
		"no": true, "n": true, "0": true, "false": true, "falso": true, "f": true,
	}
)

// ParseValue converts raw input into the typed value for t.
// Non-string input is formatted first, so stored values can be re-typed.
// It never fails loudly: ok is false when the input is not valid for t.
func ParseValue(raw any, t entities.FieldType) (value any, ok bool) {
	if raw == nil {
		return nil, false
	}
	s, isString := raw.(string)
	if !isString {
		s = entities.FormatValue(raw)
	}
	s = strings.TrimSpace(s)

	switch t {
	case entities.FieldTypeText:
		if s == "" {
			return nil, false
		}
		return s, true

	case entities.FieldTypeBoolean:
		token := cases.Fold().String(s)
		if truthyTokens[token] {
			return true, true
		}
		if falsyTokens[token] {
			return false, true
		}
		return nil, false

	case entities.FieldTypeInteger:
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, false
		}
		return i, true

	case entities.FieldTypeDecimal:
		f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, false
		}
		return f, true

	case entities.FieldTypeDate:
		if _, err := time.Parse(DateLayout, s); err != nil {
			return nil, false
		}
		return s, true

	default:
		return nil, false
	}
}

// coerceStored adjusts a value loaded from storage to its field type without
// reparsing. JSON cannot distinguish 120.0 from 120, so decimals may load as ints.
func coerceStored(v any, t entities.FieldType) any {
	if t == entities.FieldTypeDecimal {
		if i, ok := v.(int64); ok {
			return float64(i)
		}
	}
	return v
}
