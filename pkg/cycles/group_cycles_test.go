package cycles

import (
	"testing"

	"github.com/ritzau/topology-lens/pkg/model"
)

func vertex(id, parent string) model.Vertex {
	v := model.Vertex{VertexRef: model.NewVertexRef("nodes", id)}
	if parent != "" {
		v.Parent = model.NewVertexRef("nodes", parent)
	}
	return v
}

func TestFindGroupCycles_Forest(t *testing.T) {
	vertices := []model.Vertex{
		vertex("g0", ""),
		vertex("g1", "g0"),
		vertex("v1", "g1"),
		vertex("g2", "g0"),
		vertex("v3", "g2"),
	}

	cycles := FindGroupCycles(vertices)

	if len(cycles) != 0 {
		t.Errorf("Expected no cycles, but found %d: %v", len(cycles), cycles)
	}
}

func TestFindGroupCycles_SelfParent(t *testing.T) {
	cycles := FindGroupCycles([]model.Vertex{vertex("g0", "g0")})

	if len(cycles) != 1 {
		t.Fatalf("Expected 1 cycle, but found %d", len(cycles))
	}
	if len(cycles[0].Vertices) != 1 || cycles[0].Vertices[0].ID != "g0" {
		t.Errorf("Expected cycle [g0], got %v", cycles[0].Vertices)
	}
}

func TestFindGroupCycles_ThreeVertexLoop(t *testing.T) {
	// a -> b -> c -> a, plus a well-formed branch hanging off a
	vertices := []model.Vertex{
		vertex("a", "c"),
		vertex("b", "a"),
		vertex("c", "b"),
		vertex("leaf", "a"),
	}

	cycles := FindGroupCycles(vertices)

	if len(cycles) != 1 {
		t.Fatalf("Expected 1 cycle, but found %d", len(cycles))
	}

	got := cycles[0].Vertices
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("Expected cycle of length %d, got %v", len(want), got)
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("Expected %s at position %d, got %s", id, i, got[i].ID)
		}
	}
}

func TestFindGroupCycles_MultipleLoops(t *testing.T) {
	vertices := []model.Vertex{
		vertex("a", "b"),
		vertex("b", "a"),
		vertex("c", "d"),
		vertex("d", "e"),
		vertex("e", "c"),
	}

	cycles := FindGroupCycles(vertices)

	if len(cycles) != 2 {
		t.Fatalf("Expected 2 cycles, but found %d", len(cycles))
	}

	cycleSizes := make(map[int]int)
	for _, cycle := range cycles {
		cycleSizes[len(cycle.Vertices)]++
	}

	if cycleSizes[2] != 1 || cycleSizes[3] != 1 {
		t.Errorf("Expected one 2-vertex cycle and one 3-vertex cycle, got: %v", cycleSizes)
	}
}
