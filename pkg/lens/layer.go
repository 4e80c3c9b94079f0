package lens

import (
	"github.com/ritzau/topology-lens/pkg/model"
	"github.com/ritzau/topology-lens/pkg/provider"
)

// Layer is an immutable vertex/edge snapshot passed between chain stages
type Layer struct {
	vertices  []model.Vertex
	index     map[model.VertexRef]int
	edges     []model.Edge
	edgeIndex map[model.EdgeRef]bool
	children  map[model.VertexRef][]model.VertexRef

	// hopFiltered is set once a hop stage has run; the zoom level then acts
	// as hop radius instead of group depth
	hopFiltered bool
}

func newLayer(vertices []model.Vertex, edges []model.Edge) *Layer {
	l := &Layer{
		vertices:  vertices,
		index:     make(map[model.VertexRef]int, len(vertices)),
		edges:     edges,
		edgeIndex: make(map[model.EdgeRef]bool, len(edges)),
		children:  make(map[model.VertexRef][]model.VertexRef),
	}
	for i, v := range vertices {
		l.index[v.VertexRef] = i
	}
	for _, e := range edges {
		l.edgeIndex[e.EdgeRef] = true
	}
	for _, v := range vertices {
		if _, exists := l.index[v.Parent]; v.HasParent() && exists {
			l.children[v.Parent] = append(l.children[v.Parent], v.VertexRef)
		}
	}
	return l
}

// layerFromProvider snapshots a base provider
func layerFromProvider(p provider.GraphProvider) *Layer {
	vertices := append([]model.Vertex(nil), p.Vertices()...)
	edges := append([]model.Edge(nil), p.Edges()...)
	return newLayer(vertices, edges)
}

// Vertices returns the layer's vertices. Callers must not modify the result.
func (l *Layer) Vertices() []model.Vertex {
	return l.vertices
}

// Edges returns the layer's edges. Callers must not modify the result.
func (l *Layer) Edges() []model.Edge {
	return l.edges
}

// Vertex looks up a vertex of the layer
func (l *Layer) Vertex(ref model.VertexRef) (model.Vertex, bool) {
	i, exists := l.index[ref]
	if !exists {
		return model.Vertex{}, false
	}
	return l.vertices[i], true
}

// HasVertex reports whether the layer holds a vertex
func (l *Layer) HasVertex(ref model.VertexRef) bool {
	_, exists := l.index[ref]
	return exists
}

// HasEdge reports whether the layer holds an edge
func (l *Layer) HasEdge(ref model.EdgeRef) bool {
	return l.edgeIndex[ref]
}

// Parent returns the parent of a vertex if the parent is part of the layer
func (l *Layer) Parent(ref model.VertexRef) (model.VertexRef, bool) {
	v, exists := l.Vertex(ref)
	if !exists || !v.HasParent() || !l.HasVertex(v.Parent) {
		return model.VertexRef{}, false
	}
	return v.Parent, true
}

// Children returns the children of a vertex that are part of the layer
func (l *Layer) Children(ref model.VertexRef) []model.VertexRef {
	return l.children[ref]
}

// Roots returns vertices whose parent is absent from the layer
func (l *Layer) Roots() []model.VertexRef {
	var roots []model.VertexRef
	for _, v := range l.vertices {
		if _, hasParent := l.Parent(v.VertexRef); !hasParent {
			roots = append(roots, v.VertexRef)
		}
	}
	return roots
}

// HopFiltered reports whether a hop stage produced this layer
func (l *Layer) HopFiltered() bool {
	return l.hopFiltered
}

// withEdges returns a layer with extra edges appended
func (l *Layer) withEdges(extra []model.Edge) *Layer {
	edges := make([]model.Edge, 0, len(l.edges)+len(extra))
	edges = append(edges, l.edges...)
	edges = append(edges, extra...)

	next := newLayer(l.vertices, edges)
	next.hopFiltered = l.hopFiltered
	return next
}

// restrict returns a layer holding only the kept vertices and the edges
// between them
func (l *Layer) restrict(keep map[model.VertexRef]bool) *Layer {
	vertices := make([]model.Vertex, 0, len(keep))
	for _, v := range l.vertices {
		if keep[v.VertexRef] {
			vertices = append(vertices, v)
		}
	}

	edges := make([]model.Edge, 0, len(l.edges))
	for _, e := range l.edges {
		if keep[e.Source.Vertex] && keep[e.Target.Vertex] {
			edges = append(edges, e)
		}
	}

	next := newLayer(vertices, edges)
	next.hopFiltered = l.hopFiltered
	return next
}
