package provider

import (
	"github.com/ritzau/topology-lens/pkg/model"
)

// Builder assembles a SimpleGraphProvider fluently. Vertex attribute calls
// apply to the most recent Vertex, edge attribute calls to the most recent Edge.
//
//	p, err := provider.NewBuilder("nodes").
//		Vertex("g0").Label("group0").StyleName("vertex").
//		Vertex("v1").Parent("g0").Label("vertex1").
//		Edge("e1", "v1", "g0").EdgeStyleName("edge").
//		Build()
type Builder struct {
	graph  *model.Graph
	vertex int // index of the current vertex, -1 if none
	edge   int // index of the current edge, -1 if none
}

// NewBuilder starts a graph for one namespace
func NewBuilder(namespace string) *Builder {
	return &Builder{
		graph:  model.NewGraph(namespace),
		vertex: -1,
		edge:   -1,
	}
}

// Vertex starts a new vertex in the builder's namespace
func (b *Builder) Vertex(id string) *Builder {
	ref := model.NewVertexRef(b.graph.Namespace, id)
	b.graph.AddVertex(model.Vertex{VertexRef: ref, Label: id})
	for i, v := range b.graph.Vertices {
		if v.VertexRef == ref {
			b.vertex = i
		}
	}
	return b
}

// Parent sets the parent group of the current vertex
func (b *Builder) Parent(id string) *Builder {
	return b.withVertex(func(v *model.Vertex) {
		v.Parent = model.NewVertexRef(b.graph.Namespace, id)
	})
}

// Label sets the label of the current vertex
func (b *Builder) Label(label string) *Builder {
	return b.withVertex(func(v *model.Vertex) { v.Label = label })
}

// IconKey sets the icon of the current vertex
func (b *Builder) IconKey(key string) *Builder {
	return b.withVertex(func(v *model.Vertex) { v.IconKey = key })
}

// Tooltip sets the tooltip of the current vertex
func (b *Builder) Tooltip(tooltip string) *Builder {
	return b.withVertex(func(v *model.Vertex) { v.Tooltip = tooltip })
}

// StyleName sets the style of the current vertex
func (b *Builder) StyleName(style string) *Builder {
	return b.withVertex(func(v *model.Vertex) { v.StyleName = style })
}

// Edge starts a new edge between two vertices of the builder's namespace
func (b *Builder) Edge(id, source, target string) *Builder {
	ns := b.graph.Namespace
	e := model.NewEdge(model.NewEdgeRef(ns, id), model.NewVertexRef(ns, source), model.NewVertexRef(ns, target))
	b.graph.AddEdge(e)
	for i, existing := range b.graph.Edges {
		if existing.EdgeRef == e.EdgeRef {
			b.edge = i
		}
	}
	return b
}

// EdgeLabel sets the label of the current edge
func (b *Builder) EdgeLabel(label string) *Builder {
	return b.withEdge(func(e *model.Edge) { e.Label = label })
}

// EdgeStyleName sets the style of the current edge
func (b *Builder) EdgeStyleName(style string) *Builder {
	return b.withEdge(func(e *model.Edge) { e.StyleName = style })
}

// Graph returns the raw graph assembled so far
func (b *Builder) Graph() *model.Graph {
	return b.graph
}

// Build validates the graph and creates the provider
func (b *Builder) Build() (*SimpleGraphProvider, error) {
	return NewSimpleGraphProvider(b.graph)
}

func (b *Builder) withVertex(fn func(v *model.Vertex)) *Builder {
	if b.vertex >= 0 {
		fn(&b.graph.Vertices[b.vertex])
	}
	return b
}

func (b *Builder) withEdge(fn func(e *model.Edge)) *Builder {
	if b.edge >= 0 {
		fn(&b.graph.Edges[b.edge])
	}
	return b
}

// EdgeBuilder assembles a SimpleEdgeProvider whose edges may link vertices of
// any namespace
type EdgeBuilder struct {
	namespace string
	edges     []model.Edge
}

// NewEdgeBuilder starts an edge set for one edge namespace
func NewEdgeBuilder(namespace string) *EdgeBuilder {
	return &EdgeBuilder{namespace: namespace}
}

// Edge starts a new edge between two fully qualified vertices
func (b *EdgeBuilder) Edge(id, sourceNamespace, sourceID, targetNamespace, targetID string) *EdgeBuilder {
	b.edges = append(b.edges, model.NewEdge(
		model.NewEdgeRef(b.namespace, id),
		model.NewVertexRef(sourceNamespace, sourceID),
		model.NewVertexRef(targetNamespace, targetID),
	))
	return b
}

// Label sets the label of the current edge
func (b *EdgeBuilder) Label(label string) *EdgeBuilder {
	if n := len(b.edges); n > 0 {
		b.edges[n-1].Label = label
	}
	return b
}

// StyleName sets the style of the current edge
func (b *EdgeBuilder) StyleName(style string) *EdgeBuilder {
	if n := len(b.edges); n > 0 {
		b.edges[n-1].StyleName = style
	}
	return b
}

// Build creates the edge provider
func (b *EdgeBuilder) Build() *SimpleEdgeProvider {
	return NewSimpleEdgeProvider(b.namespace, b.edges)
}
