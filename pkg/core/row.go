package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Row is one result row: column names and values in select-list order.
// It marshals to a JSON object whose keys keep column order.
type Row struct {
	Columns []string
	Values  []any
}

// NewRow builds a row from parallel column and value slices.
// Driver values are normalized so the row always serializes.
func NewRow(cols []string, vals []any) Row {
	values := make([]any, len(vals))
	for i, v := range vals {
		values[i] = NormalizeValue(v)
	}
	return Row{Columns: cols, Values: values}
}

// Get returns the value of the named column.
func (r Row) Get(col string) (any, bool) {
	for i, c := range r.Columns {
		if c == col {
			return r.Values[i], true
		}
	}
	return nil, false
}

// String returns the named column as text; NULL and missing columns give "".
func (r Row) String(col string) string {
	v, ok := r.Get(col)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// Map returns the row as a plain map. Column order is lost.
func (r Row) Map() map[string]any {
	m := make(map[string]any, len(r.Columns))
	for i, c := range r.Columns {
		m[c] = r.Values[i]
	}
	return m
}

// MarshalJSON encodes the row as an object in column order.
// Values that cannot be encoded fall back to their fmt representation.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.Columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(marshalValue(r.Values[i]))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object into a row. Key order follows the input.
func (r *Row) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("row must be a JSON object")
	}
	r.Columns = r.Columns[:0]
	r.Values = r.Values[:0]
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var v any
		if err := dec.Decode(&v); err != nil {
			return err
		}
		r.Columns = append(r.Columns, key)
		r.Values = append(r.Values, v)
	}
	_, err = dec.Token()
	return err
}

func marshalValue(v any) []byte {
	b, err := json.Marshal(v)
	if err == nil {
		return b
	}
	b, _ = json.Marshal(fmt.Sprintf("%v", v))
	return b
}

// NormalizeValue converts driver values into JSON-friendly values.
// []byte becomes a string; time values are kept for RFC 3339 encoding.
func NormalizeValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(val)
	case time.Time:
		return val
	case fmt.Stringer:
		if _, err := json.Marshal(val); err != nil {
			return val.String()
		}
		return val
	default:
		return val
	}
}
