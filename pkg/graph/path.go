package graph

import (
	"fmt"
	"strings"
)

// Path is an alternating sequence of nodes and edges that starts and ends with a
// node. A path of length n has n edges and n+1 nodes.
type Path struct {
	nodes []Node
	edges []Edge
}

// Nodes returns a copy of the path nodes in order.
func (p Path) Nodes() []Node {
	out := make([]Node, len(p.nodes))
	copy(out, p.nodes)
	return out
}

// Edges returns a copy of the path edges in order.
func (p Path) Edges() []Edge {
	out := make([]Edge, len(p.edges))
	copy(out, p.edges)
	return out
}

// Node returns the i-th node. It panics when i is out of range, like a slice index.
func (p Path) Node(i int) Node { return p.nodes[i] }

// Edge returns the i-th edge. It panics when i is out of range.
func (p Path) Edge(i int) Edge { return p.edges[i] }

// FirstNode returns the node the path starts at.
func (p Path) FirstNode() Node { return p.nodes[0] }

// LastNode returns the node the path ends at.
func (p Path) LastNode() Node { return p.nodes[len(p.nodes)-1] }

// NodeCount returns the number of nodes on the path.
func (p Path) NodeCount() int { return len(p.nodes) }

// Length returns the number of edges on the path.
func (p Path) Length() int { return len(p.edges) }

// Equal reports structural, order-sensitive equality.
func (p Path) Equal(other Path) bool {
	if len(p.nodes) != len(other.nodes) || len(p.edges) != len(other.edges) {
		return false
	}
	for i := range p.nodes {
		if !p.nodes[i].Equal(other.nodes[i]) {
			return false
		}
	}
	for i := range p.edges {
		if !p.edges[i].Equal(other.edges[i]) {
			return false
		}
	}
	return true
}

// String returns the display form of the path.
func (p Path) String() string {
	var sb strings.Builder
	sb.WriteString("Path{nodes=[")
	for i, n := range p.nodes {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(n.String())
	}
	sb.WriteString("], edges=[")
	for i, e := range p.edges {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e.String())
	}
	sb.WriteString("]}")
	return sb.String()
}

// PathBuilder assembles a Path one element at a time.
//
// Elements must alternate node, edge, node, ...; the first misplaced element
// is remembered and reported by Build.
//
// Example:
//
//	p, err := graph.NewPathBuilder(2).
//		Append(n0).Append(e0).Append(n1).Append(e1).Append(n2).
//		Build()
type PathBuilder struct {
	nodes []Node
	edges []Edge
	err   error
}

// NewPathBuilder returns a builder sized for a path with the given number of edges.
func NewPathBuilder(edges int) *PathBuilder {
	if edges < 0 {
		edges = 0
	}
	return &PathBuilder{
		nodes: make([]Node, 0, edges+1),
		edges: make([]Edge, 0, edges),
	}
}

// Append adds the next element. v must be a Node or an Edge.
func (b *PathBuilder) Append(v interface{}) *PathBuilder {
	if b.err != nil {
		return b
	}
	expectNode := len(b.nodes) == len(b.edges)
	switch el := v.(type) {
	case Node:
		if !expectNode {
			b.err = fmt.Errorf("%w: node %d at position %d, expected an edge", ErrInvalidPath, el.id, b.position())
			return b
		}
		b.nodes = append(b.nodes, el)
	case Edge:
		if expectNode {
			b.err = fmt.Errorf("%w: edge %d at position %d, expected a node", ErrInvalidPath, el.id, b.position())
			return b
		}
		b.edges = append(b.edges, el)
	default:
		b.err = fmt.Errorf("%w: unsupported element %T", ErrInvalidPath, v)
	}
	return b
}

func (b *PathBuilder) position() int { return len(b.nodes) + len(b.edges) }

// Build returns the finished path.
func (b *PathBuilder) Build() (Path, error) {
	if b.err != nil {
		return Path{}, b.err
	}
	if len(b.nodes) == 0 {
		return Path{}, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	if len(b.nodes) != len(b.edges)+1 {
		return Path{}, fmt.Errorf("%w: path must end with a node", ErrInvalidPath)
	}
	p := Path{
		nodes: make([]Node, len(b.nodes)),
		edges: make([]Edge, len(b.edges)),
	}
	copy(p.nodes, b.nodes)
	copy(p.edges, b.edges)
	return p, nil
}
