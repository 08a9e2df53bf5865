package entities

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Deletion reasons stored with bin entries.
const (
	ReasonProductDeleted = "eliminacion_producto"
	ReasonFieldDeleted   = "eliminacion_campo"
)

// BinEntry is a soft-deleted record kept in the recycle bin until it expires.
type BinEntry struct {
	ID             string          `json:"id"`
	Entity         EntityKind      `json:"entidad"`
	Snapshot       json.RawMessage `json:"snapshot"`
	SchemaSnapshot *Schema         `json:"schema_snapshot"`
	Reason         string          `json:"motivo"`
	Meta           map[string]any  `json:"meta"`
	DeletedAt      time.Time       `json:"fecha_eliminacion"`
	ExpiresAt      time.Time       `json:"expira_en"`
}

// FieldSnapshot is the bin snapshot of a deleted field. Values maps the
// product index at deletion time to the value that product held.
type FieldSnapshot struct {
	Name   string         `json:"nombre"`
	Type   FieldType      `json:"tipo"`
	Unique bool           `json:"unico"`
	Values map[string]any `json:"valores"`
}

// Expired reports whether the entry can no longer be restored at now.
func (e *BinEntry) Expired(now time.Time) bool {
	return !e.ExpiresAt.After(now)
}

// ProductSnapshot decodes the snapshot of a product entry.
func (e *BinEntry) ProductSnapshot() (Product, error) {
	if e.Entity != EntityProduct {
		return nil, fmt.Errorf("bin entry %s holds a %s, not a product", e.ID, e.Entity)
	}
	p, err := UnmarshalProduct(e.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("decoding product snapshot: %w", err)
	}
	return p, nil
}

// FieldSnapshot decodes the snapshot of a field entry.
func (e *BinEntry) FieldSnapshot() (*FieldSnapshot, error) {
	if e.Entity != EntityField {
		return nil, fmt.Errorf("bin entry %s holds a %s, not a field", e.ID, e.Entity)
	}
	dec := json.NewDecoder(bytes.NewReader(e.Snapshot))
	dec.UseNumber()
	var fs FieldSnapshot
	if err := dec.Decode(&fs); err != nil {
		return nil, fmt.Errorf("decoding field snapshot: %w", err)
	}
	for k, v := range fs.Values {
		fs.Values[k] = NormalizeJSONValue(v)
	}
	return &fs, nil
}

// binTimeLayouts are the accepted forms of bin timestamps after RFC 3339.
// Entries written without a UTC offset are read as local time.
var binTimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// binTime decodes RFC 3339 timestamps and the offset-less ISO form.
type binTime time.Time

func (t *binTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("bin timestamp: %w", err)
	}
	if s == "" {
		*t = binTime(time.Time{})
		return nil
	}
	if v, err := time.Parse(time.RFC3339Nano, s); err == nil {
		*t = binTime(v)
		return nil
	}
	for _, layout := range binTimeLayouts {
		if v, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			*t = binTime(v)
			return nil
		}
	}
	return fmt.Errorf("bin timestamp: cannot parse %q", s)
}

// UnmarshalJSON decodes an entry and compacts its raw snapshot so that
// entries compare equal regardless of the indentation they were stored with.
func (e *BinEntry) UnmarshalJSON(data []byte) error {
	type alias BinEntry
	var raw struct {
		alias
		DeletedAt binTime `json:"fecha_eliminacion"`
		ExpiresAt binTime `json:"expira_en"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	a := raw.alias
	a.DeletedAt = time.Time(raw.DeletedAt)
	a.ExpiresAt = time.Time(raw.ExpiresAt)
	if len(a.Snapshot) > 0 {
		var buf bytes.Buffer
		if err := json.Compact(&buf, a.Snapshot); err != nil {
			return fmt.Errorf("compacting snapshot: %w", err)
		}
		a.Snapshot = buf.Bytes()
	}
	*e = BinEntry(a)
	return nil
}
