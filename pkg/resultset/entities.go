package resultset

import (
	"fmt"

	"github.com/orneryd/rgraph/pkg/cache"
	"github.com/orneryd/rgraph/pkg/graph"
)

// node decodes [id, [labelID, ...], [[keyID, type, value], ...]].
//
// Every label and property key is resolved before the node is built, so a
// partially named node is never returned.
func (d *decoder) node(v interface{}) (graph.Node, error) {
	fields, err := d.list(v, "node payload")
	if err != nil {
		return graph.Node{}, err
	}
	if len(fields) != 3 {
		return graph.Node{}, decodeErrorf("node payload has %d fields, want 3", len(fields))
	}

	id, err := d.integer(fields[0], "node id")
	if err != nil {
		return graph.Node{}, err
	}
	labelIDs, err := d.list(fields[1], "node labels")
	if err != nil {
		return graph.Node{}, err
	}

	b := graph.NewNodeBuilder().ID(id)
	for _, raw := range labelIDs {
		lid, err := d.integer(raw, "label id")
		if err != nil {
			return graph.Node{}, err
		}
		label, err := d.meta.Resolve(d.ctx, cache.Labels, lid)
		if err != nil {
			return graph.Node{}, fmt.Errorf("node %d: %w", id, err)
		}
		b.Label(label)
	}

	props, err := d.properties(fields[2])
	if err != nil {
		return graph.Node{}, fmt.Errorf("node %d: %w", id, err)
	}
	for _, p := range props {
		b.Property(p.Name, p.Value)
	}
	return b.Build(), nil
}

// edge decodes [id, typeID, srcID, dstID, [[keyID, type, value], ...]].
func (d *decoder) edge(v interface{}) (graph.Edge, error) {
	fields, err := d.list(v, "edge payload")
	if err != nil {
		return graph.Edge{}, err
	}
	if len(fields) != 5 {
		return graph.Edge{}, decodeErrorf("edge payload has %d fields, want 5", len(fields))
	}

	var ids [4]int64
	for i, what := range [...]string{"edge id", "relationship type id", "source id", "destination id"} {
		if ids[i], err = d.integer(fields[i], what); err != nil {
			return graph.Edge{}, err
		}
	}

	relType, err := d.meta.Resolve(d.ctx, cache.RelationshipTypes, ids[1])
	if err != nil {
		return graph.Edge{}, fmt.Errorf("edge %d: %w", ids[0], err)
	}

	props, err := d.properties(fields[4])
	if err != nil {
		return graph.Edge{}, fmt.Errorf("edge %d: %w", ids[0], err)
	}

	b := graph.NewEdgeBuilder().ID(ids[0]).Type(relType).Endpoints(ids[2], ids[3])
	for _, p := range props {
		b.Property(p.Name, p.Value)
	}
	return b.Build(), nil
}

// properties decodes a list of [keyID, type, value] triples.
//
// Graph entities are not legal property values and are rejected.
func (d *decoder) properties(v interface{}) ([]graph.Property, error) {
	triples, err := d.list(v, "properties")
	if err != nil {
		return nil, err
	}
	out := make([]graph.Property, 0, len(triples))
	for i, raw := range triples {
		triple, err := d.list(raw, "property")
		if err != nil {
			return nil, err
		}
		if len(triple) != 3 {
			return nil, decodeErrorf("property %d has %d fields, want 3", i, len(triple))
		}
		keyID, err := d.integer(triple[0], "property key id")
		if err != nil {
			return nil, err
		}
		t, err := d.integer(triple[1], "property type")
		if err != nil {
			return nil, err
		}
		name, err := d.meta.Resolve(d.ctx, cache.PropertyKeys, keyID)
		if err != nil {
			return nil, err
		}
		val, err := d.propertyValue(ValueType(t), triple[2])
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", name, err)
		}
		out = append(out, graph.Property{Name: name, Value: val})
	}
	return out, nil
}

func (d *decoder) propertyValue(t ValueType, v interface{}) (interface{}, error) {
	d.inProperty = true
	defer func() { d.inProperty = false }()
	return d.value(t, v)
}

// path decodes [nodesArrayCell, edgesArrayCell] into an alternating path.
func (d *decoder) path(v interface{}) (graph.Path, error) {
	parts, err := d.list(v, "path payload")
	if err != nil {
		return graph.Path{}, err
	}
	if len(parts) != 2 {
		return graph.Path{}, decodeErrorf("path payload has %d parts, want 2", len(parts))
	}

	rawNodes, err := d.cell(parts[0])
	if err != nil {
		return graph.Path{}, fmt.Errorf("path nodes: %w", err)
	}
	rawEdges, err := d.cell(parts[1])
	if err != nil {
		return graph.Path{}, fmt.Errorf("path edges: %w", err)
	}
	nodes, ok := rawNodes.([]interface{})
	if !ok {
		return graph.Path{}, decodeErrorf("path nodes are %T, want array", rawNodes)
	}
	edges, ok := rawEdges.([]interface{})
	if !ok {
		return graph.Path{}, decodeErrorf("path edges are %T, want array", rawEdges)
	}

	b := graph.NewPathBuilder(len(edges))
	for i, n := range nodes {
		node, ok := n.(graph.Node)
		if !ok {
			return graph.Path{}, decodeErrorf("path element %d is %T, want node", 2*i, n)
		}
		b.Append(node)
		if i < len(edges) {
			edge, ok := edges[i].(graph.Edge)
			if !ok {
				return graph.Path{}, decodeErrorf("path element %d is %T, want edge", 2*i+1, edges[i])
			}
			b.Append(edge)
		}
	}
	if len(edges) >= len(nodes) {
		return graph.Path{}, decodeErrorf("path has %d nodes and %d edges", len(nodes), len(edges))
	}
	p, err := b.Build()
	if err != nil {
		return graph.Path{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return p, nil
}

// point decodes [latitude, longitude]. The order is fixed by the wire format.
func (d *decoder) point(v interface{}) (graph.Point, error) {
	coords, err := d.list(v, "point payload")
	if err != nil {
		return graph.Point{}, err
	}
	if len(coords) != 2 {
		return graph.Point{}, decodeErrorf("point payload has %d fields, want 2", len(coords))
	}
	lat, err := d.double(coords[0], "latitude")
	if err != nil {
		return graph.Point{}, err
	}
	lon, err := d.double(coords[1], "longitude")
	if err != nil {
		return graph.Point{}, err
	}
	return graph.Point{Latitude: lat, Longitude: lon}, nil
}
