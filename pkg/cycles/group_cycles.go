package cycles

import (
	"sort"

	"github.com/ritzau/topology-lens/pkg/graph"
	"github.com/ritzau/topology-lens/pkg/model"
)

// GroupCycle is a chain of vertices whose parent links loop back on themselves
type GroupCycle struct {
	Vertices []model.VertexRef
}

// FindGroupCycles finds all loops in the parent relation of the given vertices.
// A vertex that is its own parent is reported as a cycle of one.
func FindGroupCycles(vertices []model.Vertex) []GroupCycle {
	rg := graph.NewDirected()
	cycles := make([]GroupCycle, 0)

	for _, v := range vertices {
		rg.AddVertex(v.VertexRef)
		if !v.HasParent() {
			continue
		}
		if v.Parent == v.VertexRef {
			cycles = append(cycles, GroupCycle{Vertices: []model.VertexRef{v.VertexRef}})
			continue
		}
		rg.AddLink(v.VertexRef, v.Parent)
	}

	directed, ok := rg.Directed()
	if !ok {
		return cycles
	}

	tarjan := NewTarjanSCC(directed)
	for _, scc := range tarjan.FindSCCs() {
		refs := make([]model.VertexRef, 0, len(scc))
		for _, nodeID := range scc {
			if ref, exists := rg.Ref(nodeID); exists {
				refs = append(refs, ref)
			}
		}
		sort.Slice(refs, func(i, j int) bool { return refs[i].Less(refs[j]) })
		cycles = append(cycles, GroupCycle{Vertices: refs})
	}

	return cycles
}
