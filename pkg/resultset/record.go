package resultset

import (
	"fmt"
	"strings"

	"github.com/orneryd/rgraph/pkg/graph"
)

// Record is one result row. Values are aligned with the header columns.
type Record struct {
	keys   []string
	values []interface{}
}

func newRecord(keys []string, values []interface{}) Record {
	return Record{keys: keys, values: values}
}

// GetByIndex returns the value of column i. It panics when i is out of range,
// like a slice index.
func (r Record) GetByIndex(i int) interface{} { return r.values[i] }

// Get returns the value of the first column called name.
func (r Record) Get(name string) (interface{}, bool) {
	for i, k := range r.keys {
		if k == name {
			return r.values[i], true
		}
	}
	return nil, false
}

// GetStringByIndex returns the display string of column i.
func (r Record) GetStringByIndex(i int) string { return graph.FormatValue(r.values[i]) }

// GetString returns the display string of the first column called name.
// A missing column and a null value both yield "".
func (r Record) GetString(name string) string {
	v, _ := r.Get(name)
	return graph.FormatValue(v)
}

// Keys returns the column names.
func (r Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Values returns the column values.
func (r Record) Values() []interface{} {
	out := make([]interface{}, len(r.values))
	copy(out, r.values)
	return out
}

// Size returns the number of columns.
func (r Record) Size() int { return len(r.values) }

func (r Record) String() string {
	var sb strings.Builder
	sb.WriteString("Record{values=[")
	for i, v := range r.values {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(graph.FormatValue(v))
	}
	sb.WriteString("]}")
	return sb.String()
}

var _ fmt.Stringer = Record{}
