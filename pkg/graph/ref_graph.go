package graph

import (
	"sort"

	"github.com/ritzau/topology-lens/pkg/model"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"
)

// builder is the subset of gonum graph behaviour RefGraph needs
type builder interface {
	graph.Graph
	graph.Builder
}

// RefGraph maps vertex references onto a gonum graph
type RefGraph struct {
	graph builder
	ids   map[model.VertexRef]int64 // Map from vertex reference to graph ID
	refs  []model.VertexRef         // Graph ID -> vertex reference
}

// NewDirected creates an empty directed reference graph
func NewDirected() *RefGraph {
	return newRefGraph(simple.NewDirectedGraph())
}

// NewUndirected creates an empty undirected reference graph
func NewUndirected() *RefGraph {
	return newRefGraph(simple.NewUndirectedGraph())
}

func newRefGraph(g builder) *RefGraph {
	return &RefGraph{
		graph: g,
		ids:   make(map[model.VertexRef]int64),
	}
}

// AddVertex adds a vertex to the graph and returns its graph ID.
// Adding a known vertex returns the existing ID.
func (rg *RefGraph) AddVertex(ref model.VertexRef) int64 {
	if id, exists := rg.ids[ref]; exists {
		return id
	}

	id := int64(len(rg.refs))
	rg.ids[ref] = id
	rg.refs = append(rg.refs, ref)
	rg.graph.AddNode(simple.Node(id))

	return id
}

// AddLink connects two vertices, adding them if needed.
// Self links are ignored since simple graphs cannot hold them; the return value
// reports whether a link was stored.
func (rg *RefGraph) AddLink(from, to model.VertexRef) bool {
	fromID := rg.AddVertex(from)
	toID := rg.AddVertex(to)
	if fromID == toID {
		return false
	}

	if rg.graph.Edge(fromID, toID) == nil {
		rg.graph.SetEdge(rg.graph.NewEdge(simple.Node(fromID), simple.Node(toID)))
	}
	return true
}

// ID returns the graph ID of a vertex
func (rg *RefGraph) ID(ref model.VertexRef) (int64, bool) {
	id, exists := rg.ids[ref]
	return id, exists
}

// Ref returns the vertex reference for a graph ID
func (rg *RefGraph) Ref(id int64) (model.VertexRef, bool) {
	if id < 0 || id >= int64(len(rg.refs)) {
		return model.VertexRef{}, false
	}
	return rg.refs[id], true
}

// Len returns the number of vertices in the graph
func (rg *RefGraph) Len() int {
	return len(rg.refs)
}

// Graph returns the underlying gonum graph
func (rg *RefGraph) Graph() graph.Graph {
	return rg.graph
}

// Directed returns the underlying graph as a directed graph, if it is one
func (rg *RefGraph) Directed() (graph.Directed, bool) {
	d, ok := rg.graph.(graph.Directed)
	if _, undirected := rg.graph.(graph.Undirected); undirected {
		return nil, false
	}
	return d, ok
}

// Neighbors returns the vertices reachable over one link, sorted
func (rg *RefGraph) Neighbors(ref model.VertexRef) []model.VertexRef {
	id, exists := rg.ids[ref]
	if !exists {
		return nil
	}

	var result []model.VertexRef
	iter := rg.graph.From(id)
	for iter.Next() {
		result = append(result, rg.refs[iter.Node().ID()])
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Less(result[j]) })
	return result
}

// Reachable computes the hop distance from the nearest focus vertex to every
// vertex within radius hops, following link direction on directed graphs.
// Focus vertices unknown to the graph are ignored.
// A negative radius or an empty focus set reaches nothing.
func (rg *RefGraph) Reachable(focus []model.VertexRef, radius int) map[model.VertexRef]int {
	distances := make(map[model.VertexRef]int)
	if radius < 0 {
		return distances
	}

	// Multi-source BFS: the walk starts from a virtual root linked to every
	// focus vertex, so depths are offset by one.
	walkGraph := simple.NewDirectedGraph()
	iter := rg.graph.Nodes()
	for iter.Next() {
		walkGraph.AddNode(iter.Node())
	}
	for id := range rg.refs {
		to := rg.graph.From(int64(id))
		for to.Next() {
			walkGraph.SetEdge(walkGraph.NewEdge(simple.Node(id), to.Node()))
		}
	}

	root := simple.Node(len(rg.refs))
	walkGraph.AddNode(root)
	seeded := false
	for _, ref := range focus {
		id, exists := rg.ids[ref]
		if !exists {
			continue
		}
		walkGraph.SetEdge(walkGraph.NewEdge(root, simple.Node(id)))
		seeded = true
	}
	if !seeded {
		return distances
	}

	var bfs traverse.BreadthFirst
	bfs.Walk(walkGraph, root, func(n graph.Node, depth int) bool {
		if depth-1 > radius {
			return true
		}
		if n.ID() != root.ID() {
			distances[rg.refs[n.ID()]] = depth - 1
		}
		return false
	})

	return distances
}
