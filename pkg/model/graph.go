package model

// Graph is the raw, unfiltered data for one vertex namespace as delivered by a
// data source. Providers are built from it.
type Graph struct {
	Namespace string   `json:"namespace"`
	Vertices  []Vertex `json:"vertices"`
	Edges     []Edge   `json:"edges"`

	vertexIndex map[VertexRef]int
	edgeIndex   map[EdgeRef]int
}

// NewGraph creates a new empty graph for a namespace.
func NewGraph(namespace string) *Graph {
	return &Graph{
		Namespace:   namespace,
		Vertices:    make([]Vertex, 0),
		Edges:       make([]Edge, 0),
		vertexIndex: make(map[VertexRef]int),
		edgeIndex:   make(map[EdgeRef]int),
	}
}

// AddVertex adds a vertex to the graph. If a vertex with the same reference
// exists, it is replaced in place.
func (g *Graph) AddVertex(v Vertex) {
	g.ensureIndex()
	if i, exists := g.vertexIndex[v.VertexRef]; exists {
		g.Vertices[i] = v
		return
	}
	g.vertexIndex[v.VertexRef] = len(g.Vertices)
	g.Vertices = append(g.Vertices, v)
}

// AddEdge adds an edge to the graph, replacing an edge with the same reference.
func (g *Graph) AddEdge(e Edge) {
	g.ensureIndex()
	if i, exists := g.edgeIndex[e.EdgeRef]; exists {
		g.Edges[i] = e
		return
	}
	g.edgeIndex[e.EdgeRef] = len(g.Edges)
	g.Edges = append(g.Edges, e)
}

// Vertex looks up a vertex by reference
func (g *Graph) Vertex(ref VertexRef) (Vertex, bool) {
	g.ensureIndex()
	i, exists := g.vertexIndex[ref]
	if !exists {
		return Vertex{}, false
	}
	return g.Vertices[i], true
}

// ensureIndex rebuilds the lookup indexes for graphs not made by NewGraph
func (g *Graph) ensureIndex() {
	if g.vertexIndex != nil {
		return
	}
	g.vertexIndex = make(map[VertexRef]int, len(g.Vertices))
	g.edgeIndex = make(map[EdgeRef]int, len(g.Edges))
	for i, v := range g.Vertices {
		g.vertexIndex[v.VertexRef] = i
	}
	for i, e := range g.Edges {
		g.edgeIndex[e.EdgeRef] = i
	}
}

// LinkSet is a batch of auxiliary edges sharing one edge namespace. Its
// endpoints may reference vertices of any base namespace.
type LinkSet struct {
	Namespace string `json:"namespace"`
	Edges     []Edge `json:"edges"`
}

// Topology bundles a base graph with the auxiliary link sets that refer to it.
type Topology struct {
	Base  *Graph     `json:"base"`
	Links []*LinkSet `json:"links,omitempty"`
}
