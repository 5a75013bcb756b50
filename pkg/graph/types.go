// Package graph provides the graph entity values returned by rgraph queries.
//
// Every value in this package is immutable once built. Nodes, edges and paths are
// produced by the result-set decoder from the server's compact reply, and by tests
// through the explicit builders (NodeBuilder, EdgeBuilder, PathBuilder). There are
// no setters on the finished values: to derive a modified copy, start a builder
// from an existing value.
//
// Example Usage:
//
//	alice := graph.NewNodeBuilder().
//		ID(0).
//		Label("Person").
//		Property("name", "Alice").
//		Property("age", int64(32)).
//		Build()
//
//	bob := graph.NewNodeBuilder().ID(1).Label("Person").Build()
//
//	knows := graph.NewEdgeBuilder().
//		ID(0).
//		Type("KNOWS").
//		Endpoints(alice.ID(), bob.ID()).
//		Build()
//
//	p, err := graph.NewPathBuilder(1).Append(alice).Append(knows).Append(bob).Build()
//	if err != nil {
//		return err
//	}
//	fmt.Println(p.Length()) // 1
//
// Property values are always one of: nil, bool, int64, float64, string,
// []interface{}, map[string]interface{} or Point. Graph entities never appear as
// property values.
//
// ELI12:
//
// A graph is like a drawing of dots and arrows. Each dot (Node) has some name
// tags (labels) and a little notebook of facts (properties). Each arrow (Edge)
// goes from one dot to another and has exactly one kind written on it. A Path is
// a walk along the drawing: dot, arrow, dot, arrow, dot.
package graph

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Common errors
var (
	ErrInvalidPath = errors.New("invalid path")
)

// Property is a single named value on a node or an edge.
type Property struct {
	Name  string
	Value interface{}
}

// String returns the display form of the property, e.g. "age=32".
func (p Property) String() string {
	return p.Name + "=" + FormatValue(p.Value)
}

// Point is a geographic coordinate pair.
//
// Equality is exact on both components, so points can be compared with ==.
type Point struct {
	Latitude  float64
	Longitude float64
}

// String returns the display form of the point.
func (p Point) String() string {
	return fmt.Sprintf("Point{latitude=%s, longitude=%s}",
		strconv.FormatFloat(p.Latitude, 'g', -1, 64),
		strconv.FormatFloat(p.Longitude, 'g', -1, 64))
}

// propertySet is the shared, read-only property storage of nodes and edges.
type propertySet map[string]Property

func (ps propertySet) get(name string) (Property, bool) {
	p, ok := ps[name]
	return p, ok
}

func (ps propertySet) names() []string {
	names := make([]string, 0, len(ps))
	for name := range ps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (ps propertySet) values() map[string]interface{} {
	out := make(map[string]interface{}, len(ps))
	for name, p := range ps {
		out[name] = p.Value
	}
	return out
}

func (ps propertySet) equal(other propertySet) bool {
	if len(ps) != len(other) {
		return false
	}
	for name, p := range ps {
		q, ok := other[name]
		if !ok || !reflect.DeepEqual(p.Value, q.Value) {
			return false
		}
	}
	return true
}

func (ps propertySet) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, name := range ps.names() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(ps[name].String())
	}
	sb.WriteByte('}')
	return sb.String()
}

func (ps propertySet) clone() propertySet {
	out := make(propertySet, len(ps))
	for k, v := range ps {
		out[k] = v
	}
	return out
}

// Node is a graph vertex.
//
// The id is the server's internal identifier: unique within one snapshot of the
// graph, but reused after deletion, so it is not a stable key across mutations.
type Node struct {
	id     int64
	labels []string
	props  propertySet
}

// ID returns the internal node identifier.
func (n Node) ID() int64 { return n.id }

// Labels returns a copy of the node labels in server order.
func (n Node) Labels() []string {
	out := make([]string, len(n.labels))
	copy(out, n.labels)
	return out
}

// HasLabel reports whether the node carries the given label.
func (n Node) HasLabel(label string) bool {
	for _, l := range n.labels {
		if l == label {
			return true
		}
	}
	return false
}

// Property returns the named property.
func (n Node) Property(name string) (Property, bool) { return n.props.get(name) }

// PropertyNames returns the property names in sorted order.
func (n Node) PropertyNames() []string { return n.props.names() }

// Properties returns a copy of the property values keyed by name.
func (n Node) Properties() map[string]interface{} { return n.props.values() }

// Equal reports structural equality: same id, same labels in the same order and
// the same property set.
func (n Node) Equal(other Node) bool {
	if n.id != other.id || len(n.labels) != len(other.labels) {
		return false
	}
	for i := range n.labels {
		if n.labels[i] != other.labels[i] {
			return false
		}
	}
	return n.props.equal(other.props)
}

// String returns the display form of the node.
func (n Node) String() string {
	return fmt.Sprintf("Node{labels=[%s], id=%d, properties=%s}",
		strings.Join(n.labels, ", "), n.id, n.props)
}

// Edge is a directed, typed relationship between two nodes.
type Edge struct {
	id      int64
	relType string
	src     int64
	dst     int64
	props   propertySet
}

// ID returns the internal edge identifier.
func (e Edge) ID() int64 { return e.id }

// RelationshipType returns the single relationship type of the edge.
func (e Edge) RelationshipType() string { return e.relType }

// Source returns the id of the node the edge starts at.
func (e Edge) Source() int64 { return e.src }

// Destination returns the id of the node the edge points to.
func (e Edge) Destination() int64 { return e.dst }

// Property returns the named property.
func (e Edge) Property(name string) (Property, bool) { return e.props.get(name) }

// PropertyNames returns the property names in sorted order.
func (e Edge) PropertyNames() []string { return e.props.names() }

// Properties returns a copy of the property values keyed by name.
func (e Edge) Properties() map[string]interface{} { return e.props.values() }

// Equal reports structural equality.
func (e Edge) Equal(other Edge) bool {
	return e.id == other.id &&
		e.relType == other.relType &&
		e.src == other.src &&
		e.dst == other.dst &&
		e.props.equal(other.props)
}

// String returns the display form of the edge.
func (e Edge) String() string {
	return fmt.Sprintf("Edge{relationshipType=%s, source=%d, destination=%d, id=%d, properties=%s}",
		e.relType, e.src, e.dst, e.id, e.props)
}

// FormatValue renders a decoded value the way records display it.
//
// nil renders as the empty string, integers in base 10, floats in their
// shortest exact form and everything else through its String method or fmt.
func FormatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case fmt.Stringer:
		return val.String()
	case []interface{}:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = FormatValue(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + "=" + FormatValue(val[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprint(val)
	}
}
