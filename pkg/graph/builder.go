package graph

// NodeBuilder assembles an immutable Node.
//
// The builder is the only place a node can be changed. Build copies the
// accumulated state, so a builder may keep being used after Build without
// affecting nodes it already produced.
type NodeBuilder struct {
	id     int64
	labels []string
	props  propertySet
}

// NewNodeBuilder returns an empty node builder.
func NewNodeBuilder() *NodeBuilder {
	return &NodeBuilder{props: make(propertySet)}
}

// NodeBuilderFrom returns a builder seeded with an existing node.
func NodeBuilderFrom(n Node) *NodeBuilder {
	return &NodeBuilder{
		id:     n.id,
		labels: n.Labels(),
		props:  n.props.clone(),
	}
}

// ID sets the node id.
func (b *NodeBuilder) ID(id int64) *NodeBuilder {
	b.id = id
	return b
}

// Label appends a label.
func (b *NodeBuilder) Label(label string) *NodeBuilder {
	b.labels = append(b.labels, label)
	return b
}

// RemoveLabel drops every occurrence of label.
func (b *NodeBuilder) RemoveLabel(label string) *NodeBuilder {
	kept := b.labels[:0]
	for _, l := range b.labels {
		if l != label {
			kept = append(kept, l)
		}
	}
	b.labels = kept
	return b
}

// Property sets a property, replacing any previous value with the same name.
func (b *NodeBuilder) Property(name string, value interface{}) *NodeBuilder {
	b.props[name] = Property{Name: name, Value: value}
	return b
}

// RemoveProperty drops the named property.
func (b *NodeBuilder) RemoveProperty(name string) *NodeBuilder {
	delete(b.props, name)
	return b
}

// Build returns the finished node.
func (b *NodeBuilder) Build() Node {
	labels := make([]string, len(b.labels))
	copy(labels, b.labels)
	return Node{id: b.id, labels: labels, props: b.props.clone()}
}

// EdgeBuilder assembles an immutable Edge.
type EdgeBuilder struct {
	id      int64
	relType string
	src     int64
	dst     int64
	props   propertySet
}

// NewEdgeBuilder returns an empty edge builder.
func NewEdgeBuilder() *EdgeBuilder {
	return &EdgeBuilder{props: make(propertySet)}
}

// EdgeBuilderFrom returns a builder seeded with an existing edge.
func EdgeBuilderFrom(e Edge) *EdgeBuilder {
	return &EdgeBuilder{
		id:      e.id,
		relType: e.relType,
		src:     e.src,
		dst:     e.dst,
		props:   e.props.clone(),
	}
}

// ID sets the edge id.
func (b *EdgeBuilder) ID(id int64) *EdgeBuilder {
	b.id = id
	return b
}

// Type sets the relationship type.
func (b *EdgeBuilder) Type(relType string) *EdgeBuilder {
	b.relType = relType
	return b
}

// Endpoints sets the source and destination node ids.
func (b *EdgeBuilder) Endpoints(src, dst int64) *EdgeBuilder {
	b.src = src
	b.dst = dst
	return b
}

// Property sets a property, replacing any previous value with the same name.
func (b *EdgeBuilder) Property(name string, value interface{}) *EdgeBuilder {
	b.props[name] = Property{Name: name, Value: value}
	return b
}

// RemoveProperty drops the named property.
func (b *EdgeBuilder) RemoveProperty(name string) *EdgeBuilder {
	delete(b.props, name)
	return b
}

// Build returns the finished edge.
func (b *EdgeBuilder) Build() Edge {
	return Edge{
		id:      b.id,
		relType: b.relType,
		src:     b.src,
		dst:     b.dst,
		props:   b.props.clone(),
	}
}
