package lens

import (
	"github.com/ritzau/topology-lens/pkg/graph"
	"github.com/ritzau/topology-lens/pkg/model"
)

// ComputeDistances returns the hop distance from the nearest focus vertex for
// every vertex within radius, following layer edges in both directions
func ComputeDistances(l *Layer, focus []model.VertexRef, radius int) map[model.VertexRef]int {
	if len(focus) == 0 {
		return map[model.VertexRef]int{}
	}

	g := graph.NewUndirected()
	for _, v := range l.vertices {
		g.AddVertex(v.VertexRef)
	}
	for _, e := range l.edges {
		g.AddLink(e.Source.Vertex, e.Target.Vertex)
	}

	return g.Reachable(focus, radius)
}
