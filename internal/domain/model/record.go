// Package model contains domain models passed between layers.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/okian/ritmo/internal/domain/schema"
)

// RawRow is one parsed CSV line: cells aligned with the file headers.
type RawRow struct {
	Headers []string
	Values  []string
	Line    int
}

// Cell returns the value at column i, or "" when the row is short.
func (r RawRow) Cell(i int) string {
	if i < 0 || i >= len(r.Values) {
		return ""
	}
	return r.Values[i]
}

// Get returns the value under header h.
func (r RawRow) Get(h string) string {
	for i, name := range r.Headers {
		if name == h {
			return r.Cell(i)
		}
	}
	return ""
}

// IsBlank reports whether every cell trims to empty.
func (r RawRow) IsBlank() bool {
	for _, v := range r.Values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Record is a normalized result row. Every canonical field holds a value.
type Record struct {
	values [schema.NumFields]string
}

// NewRecord builds a record from values in canonical order.
func NewRecord(values [schema.NumFields]string) Record {
	return Record{values: values}
}

// RecordOf builds a record from a partial field map; missing fields are "".
func RecordOf(fields map[schema.Field]string) Record {
	var r Record
	for f, v := range fields {
		if f.Valid() {
			r.values[f] = v
		}
	}
	return r
}

// Get returns the value of f.
func (r Record) Get(f schema.Field) string {
	if !f.Valid() {
		return ""
	}
	return r.values[f]
}

// With returns a copy of r with f set to v.
func (r Record) With(f schema.Field, v string) Record {
	if f.Valid() {
		r.values[f] = v
	}
	return r
}

// Values returns the cells in canonical order.
func (r Record) Values() []string {
	out := make([]string, schema.NumFields)
	copy(out, r.values[:])
	return out
}

// MarshalJSON encodes the record as an object in canonical column order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range schema.Names() {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, _ := json.Marshal(name)
		v, err := json.Marshal(r.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object keyed by canonical names. Unknown keys are rejected.
func (r *Record) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	var out Record
	for k, v := range m {
		f, ok := schema.Lookup(k)
		if !ok {
			return fmt.Errorf("record: unknown field %q", k)
		}
		out.values[f] = v
	}
	*r = out
	return nil
}
