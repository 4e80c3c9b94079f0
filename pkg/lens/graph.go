package lens

import (
	"encoding/json"
	"sort"

	"github.com/ritzau/topology-lens/pkg/model"
)

// Visitor receives every display vertex, then every display edge
type Visitor interface {
	VisitVertex(v model.Vertex)
	VisitEdge(e model.Edge)
}

// VisitorFuncs adapts plain functions to a Visitor. Nil functions are skipped.
type VisitorFuncs struct {
	Vertex func(v model.Vertex)
	Edge   func(e model.Edge)
}

func (f VisitorFuncs) VisitVertex(v model.Vertex) {
	if f.Vertex != nil {
		f.Vertex(v)
	}
}

func (f VisitorFuncs) VisitEdge(e model.Edge) {
	if f.Edge != nil {
		f.Edge(e)
	}
}

// Graph is an immutable display graph snapshot.
// Vertices and edges are sorted by reference.
type Graph struct {
	vertices    []model.Vertex
	edges       []model.Edge
	vertexIndex map[model.VertexRef]int
	edgeIndex   map[model.EdgeRef]int
	zoom        int
}

func newGraph(vertices []model.Vertex, edges []model.Edge, zoom int) *Graph {
	sort.Slice(vertices, func(i, j int) bool { return vertices[i].VertexRef.Less(vertices[j].VertexRef) })
	sort.Slice(edges, func(i, j int) bool { return edges[i].EdgeRef.Less(edges[j].EdgeRef) })

	g := &Graph{
		vertices:    vertices,
		edges:       edges,
		vertexIndex: make(map[model.VertexRef]int, len(vertices)),
		edgeIndex:   make(map[model.EdgeRef]int, len(edges)),
		zoom:        zoom,
	}
	for i, v := range vertices {
		g.vertexIndex[v.VertexRef] = i
	}
	for i, e := range edges {
		g.edgeIndex[e.EdgeRef] = i
	}
	return g
}

// DisplayVertices returns a copy of the display vertices
func (g *Graph) DisplayVertices() []model.Vertex {
	return append([]model.Vertex(nil), g.vertices...)
}

// DisplayEdges returns a copy of the display edges
func (g *Graph) DisplayEdges() []model.Edge {
	return append([]model.Edge(nil), g.edges...)
}

// Vertex looks up a display vertex
func (g *Graph) Vertex(ref model.VertexRef) (model.Vertex, bool) {
	i, exists := g.vertexIndex[ref]
	if !exists {
		return model.Vertex{}, false
	}
	return g.vertices[i], true
}

// Edge looks up a display edge
func (g *Graph) Edge(ref model.EdgeRef) (model.Edge, bool) {
	i, exists := g.edgeIndex[ref]
	if !exists {
		return model.Edge{}, false
	}
	return g.edges[i], true
}

// Contains reports whether a vertex is displayed
func (g *Graph) Contains(ref model.VertexRef) bool {
	_, exists := g.vertexIndex[ref]
	return exists
}

// SemanticZoomLevel returns the zoom level the graph was rendered at
func (g *Graph) SemanticZoomLevel() int {
	return g.zoom
}

// Visit walks all vertices, then all edges, once each
func (g *Graph) Visit(v Visitor) {
	for _, vertex := range g.vertices {
		v.VisitVertex(vertex)
	}
	for _, edge := range g.edges {
		v.VisitEdge(edge)
	}
}

// VerifyConnectedness checks that every edge attaches to display vertices
func (g *Graph) VerifyConnectedness() error {
	vertices := make(map[model.VertexRef]model.Vertex, len(g.vertices))
	for _, v := range g.vertices {
		vertices[v.VertexRef] = v
	}
	return verifyConnectedness(vertices, g.edges)
}

// MarshalJSON renders the graph as {"zoom", "vertices", "edges"}
func (g *Graph) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Zoom     int            `json:"zoom"`
		Vertices []model.Vertex `json:"vertices"`
		Edges    []model.Edge   `json:"edges"`
	}{
		Zoom:     g.zoom,
		Vertices: nonNil(g.vertices),
		Edges:    nonNil(g.edges),
	})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
