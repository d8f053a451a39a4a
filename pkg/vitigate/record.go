package vitigate

import "github.com/crimson-sun/vitigate/internal/model"

// Record is one data row. Values holds int64, float64, bool, string or nil
// (empty cell). Columns preserves the upstream header order.
type Record struct {
	Columns []string
	Values  map[string]any
}

// MarshalJSON encodes the record as an object with keys in column order.
func (r Record) MarshalJSON() ([]byte, error) {
	return model.Record(r).MarshalJSON()
}
