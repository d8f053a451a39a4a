package model

import (
	"bytes"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Record is one parsed data row. Columns keeps header order so the JSON
// object is emitted in the same order as the upstream file.
type Record struct {
	Columns []string
	Values  map[string]any // int64, float64, bool, string or nil
}

// Get returns the value for a column and whether the column exists.
func (r Record) Get(column string) (any, bool) {
	v, ok := r.Values[column]
	return v, ok
}

// MarshalJSON encodes the record as an object keyed by column name.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.Columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(r.Values[col])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object into Values. Column order follows the
// order keys appear in the input.
func (r *Record) UnmarshalJSON(data []byte) error {
	iter := json.BorrowIterator(data)
	defer json.ReturnIterator(iter)

	r.Columns = nil
	r.Values = make(map[string]any)
	iter.ReadObjectCB(func(it *jsoniter.Iterator, key string) bool {
		r.Columns = append(r.Columns, key)
		r.Values[key] = it.Read()
		return true
	})
	return iter.Error
}
