package resultset

import (
	"fmt"
	"strings"
)

// Header is the ordered list of result columns.
type Header struct {
	names []string
	types []ColumnType
}

// NewHeader builds a header from parallel name and type lists.
func NewHeader(names []string, types []ColumnType) (Header, error) {
	if len(names) != len(types) {
		return Header{}, fmt.Errorf("%w: header has %d names and %d types", ErrProtocol, len(names), len(types))
	}
	h := Header{
		names: make([]string, len(names)),
		types: make([]ColumnType, len(types)),
	}
	copy(h.names, names)
	copy(h.types, types)
	return h, nil
}

// Names returns the column names in order.
func (h Header) Names() []string {
	out := make([]string, len(h.names))
	copy(out, h.names)
	return out
}

// Types returns the column types in order.
func (h Header) Types() []ColumnType {
	out := make([]ColumnType, len(h.types))
	copy(out, h.types)
	return out
}

// Len returns the number of columns.
func (h Header) Len() int { return len(h.names) }

// Index returns the position of the first column called name, or -1.
func (h Header) Index(name string) int {
	for i, n := range h.names {
		if n == name {
			return i
		}
	}
	return -1
}

// String renders the header as Header{types=[COLUMN_SCALAR, ...], names=[a, ...]}.
func (h Header) String() string {
	types := make([]string, len(h.types))
	for i, t := range h.types {
		types[i] = t.String()
	}
	return fmt.Sprintf("Header{types=[%s], names=[%s]}",
		strings.Join(types, ", "), strings.Join(h.names, ", "))
}
