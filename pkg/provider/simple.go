package provider

import (
	"fmt"

	"github.com/ritzau/topology-lens/pkg/cycles"
	"github.com/ritzau/topology-lens/pkg/logging"
	"github.com/ritzau/topology-lens/pkg/model"
)

// SimpleGraphProvider is a read-only GraphProvider built once from raw data
type SimpleGraphProvider struct {
	namespace string
	vertices  []model.Vertex
	edges     []model.Edge
	index     map[model.VertexRef]int
	children  map[model.VertexRef][]model.VertexRef
	roots     []model.VertexRef
}

// NewSimpleGraphProvider validates a raw graph and indexes its hierarchy.
// Every parent must be a vertex of the graph, parent links must not loop, and
// every edge endpoint must be a vertex of the graph.
func NewSimpleGraphProvider(g *model.Graph) (*SimpleGraphProvider, error) {
	logger := logging.New("provider.simple")

	p := &SimpleGraphProvider{
		namespace: g.Namespace,
		vertices:  make([]model.Vertex, 0, len(g.Vertices)),
		edges:     make([]model.Edge, 0, len(g.Edges)),
		index:     make(map[model.VertexRef]int, len(g.Vertices)),
		children:  make(map[model.VertexRef][]model.VertexRef),
	}

	for _, v := range g.Vertices {
		if v.Namespace != g.Namespace {
			return nil, fmt.Errorf("vertex %s in namespace %s: %w", v.VertexRef, g.Namespace, ErrForeignVertex)
		}
		if i, exists := p.index[v.VertexRef]; exists {
			logger.Warn("duplicate vertex, last definition wins", "vertex", v.VertexRef.String())
			p.vertices[i] = v
			continue
		}
		p.index[v.VertexRef] = len(p.vertices)
		p.vertices = append(p.vertices, v)
	}

	for _, v := range p.vertices {
		if !v.HasParent() {
			p.roots = append(p.roots, v.VertexRef)
			continue
		}
		if _, exists := p.index[v.Parent]; !exists {
			return nil, fmt.Errorf("vertex %s: parent %s: %w", v.VertexRef, v.Parent, ErrUnknownParent)
		}
		p.children[v.Parent] = append(p.children[v.Parent], v.VertexRef)
	}

	if loops := cycles.FindGroupCycles(p.vertices); len(loops) > 0 {
		return nil, fmt.Errorf("namespace %s: %v: %w", p.namespace, loops[0].Vertices, ErrGroupCycle)
	}

	for i := range p.vertices {
		p.vertices[i].ChildCount = len(p.children[p.vertices[i].VertexRef])
	}

	for _, e := range g.Edges {
		for _, end := range []model.VertexRef{e.Source.Vertex, e.Target.Vertex} {
			if _, exists := p.index[end]; !exists {
				return nil, fmt.Errorf("edge %s: endpoint %s: %w", e.EdgeRef, end, ErrDanglingEdge)
			}
		}
		p.edges = append(p.edges, e)
	}

	logger.Debug("provider built", "namespace", p.namespace,
		"vertices", len(p.vertices), "edges", len(p.edges), "roots", len(p.roots))

	return p, nil
}

func (p *SimpleGraphProvider) Namespace() string {
	return p.namespace
}

func (p *SimpleGraphProvider) Vertices() []model.Vertex {
	return p.vertices
}

func (p *SimpleGraphProvider) Edges() []model.Edge {
	return p.edges
}

func (p *SimpleGraphProvider) Vertex(ref model.VertexRef) (model.Vertex, bool) {
	i, exists := p.index[ref]
	if !exists {
		return model.Vertex{}, false
	}
	return p.vertices[i], true
}

func (p *SimpleGraphProvider) RootGroup() []model.Vertex {
	return p.lookup(p.roots)
}

func (p *SimpleGraphProvider) Children(ref model.VertexRef) []model.Vertex {
	return p.lookup(p.children[ref])
}

func (p *SimpleGraphProvider) Parent(ref model.VertexRef) (model.Vertex, bool) {
	v, exists := p.Vertex(ref)
	if !exists || !v.HasParent() {
		return model.Vertex{}, false
	}
	return p.Vertex(v.Parent)
}

func (p *SimpleGraphProvider) lookup(refs []model.VertexRef) []model.Vertex {
	result := make([]model.Vertex, 0, len(refs))
	for _, ref := range refs {
		result = append(result, p.vertices[p.index[ref]])
	}
	return result
}

// SimpleEdgeProvider is a read-only EdgeProvider over a fixed edge list
type SimpleEdgeProvider struct {
	namespace string
	edges     []model.Edge
}

// NewSimpleEdgeProvider creates an edge provider; later duplicates of an edge
// reference replace earlier ones
func NewSimpleEdgeProvider(namespace string, edges []model.Edge) *SimpleEdgeProvider {
	g := model.NewGraph(namespace)
	for _, e := range edges {
		g.AddEdge(e)
	}
	return &SimpleEdgeProvider{namespace: namespace, edges: g.Edges}
}

func (p *SimpleEdgeProvider) Namespace() string {
	return p.namespace
}

func (p *SimpleEdgeProvider) Edges() []model.Edge {
	return p.edges
}
