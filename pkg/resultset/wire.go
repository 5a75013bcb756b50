// Package resultset decodes RedisGraph compact replies into typed records.
//
// A reply to GRAPH.QUERY ... --compact has one of two shapes:
//
//	[statistics]                   queries without a RETURN clause
//	[header, rows, statistics]     everything else
//
// The header lists (column type, column name) pairs. Every row holds one cell
// per column. A scalar cell is a (value type, payload) pair; node, edge and path
// payloads carry integer ids in place of labels, relationship types and property
// keys, which the decoder resolves through the per-graph metadata cache.
//
// Example Usage:
//
//	rs, err := resultset.Parse(ctx, reply, meta.Bind(fetcher))
//	if err != nil {
//		return err
//	}
//	for rs.HasNext() {
//		rec, _ := rs.Next()
//		name, _ := rec.Get("a.name")
//		fmt.Println(name)
//	}
//	fmt.Println(rs.Statistics().NodesCreated())
//
// Decoded values are nil, bool, int64, float64, string, []interface{},
// map[string]interface{}, graph.Node, graph.Edge, graph.Path or graph.Point.
// nil means "no value" and is distinct from an empty list, an empty map, zero
// and false.
package resultset

import "fmt"

// ValueType is the per-cell type discriminant of the compact format.
type ValueType int64

const (
	ValueUnknown ValueType = iota
	ValueNull
	ValueString
	ValueInteger
	ValueBoolean
	ValueDouble
	ValueArray
	ValueEdge
	ValueNode
	ValuePath
	ValueMap
	ValuePoint
)

var valueTypeNames = [...]string{
	ValueUnknown: "VALUE_UNKNOWN",
	ValueNull:    "VALUE_NULL",
	ValueString:  "VALUE_STRING",
	ValueInteger: "VALUE_INTEGER",
	ValueBoolean: "VALUE_BOOLEAN",
	ValueDouble:  "VALUE_DOUBLE",
	ValueArray:   "VALUE_ARRAY",
	ValueEdge:    "VALUE_EDGE",
	ValueNode:    "VALUE_NODE",
	ValuePath:    "VALUE_PATH",
	ValueMap:     "VALUE_MAP",
	ValuePoint:   "VALUE_POINT",
}

// String returns the wire name of the value type.
func (t ValueType) String() string {
	if t >= 0 && int(t) < len(valueTypeNames) {
		return valueTypeNames[t]
	}
	return fmt.Sprintf("VALUE_TYPE(%d)", int64(t))
}

// ColumnType is the coarse, per-column kind carried in the header.
//
// Compact replies from current servers mark every column ColumnScalar and tag
// each cell individually. ColumnNode and ColumnRelation columns carry bare node
// and edge payloads without a cell tag.
type ColumnType int64

const (
	ColumnUnknown ColumnType = iota
	ColumnScalar
	ColumnNode
	ColumnRelation
)

var columnTypeNames = [...]string{
	ColumnUnknown:  "COLUMN_UNKNOWN",
	ColumnScalar:   "COLUMN_SCALAR",
	ColumnNode:     "COLUMN_NODE",
	ColumnRelation: "COLUMN_RELATION",
}

// String returns the wire name of the column type.
func (t ColumnType) String() string {
	if t >= 0 && int(t) < len(columnTypeNames) {
		return columnTypeNames[t]
	}
	return fmt.Sprintf("COLUMN_TYPE(%d)", int64(t))
}
