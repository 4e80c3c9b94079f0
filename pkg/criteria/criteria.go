// Package criteria defines the predicates a graph container applies when it
// materializes a display graph: semantic zoom level, focus hops, edge label
// matching and vertex collapsing.
package criteria

import (
	"github.com/ritzau/topology-lens/pkg/model"
)

// Criterion is anything a container can hold in its criteria list.
// Two criteria with the same key are the same criterion.
type Criterion interface {
	Key() string
}

// Stateful criteria change after they are added to a container. StateKey
// summarizes the current state so cached graphs can be invalidated.
type Stateful interface {
	Criterion
	StateKey() string
}

// HopCriterion contributes focus vertices to hop traversal
type HopCriterion interface {
	Criterion
	FocusVertices() []model.VertexRef
}

// EdgeFilter narrows the edges of one namespace. Edges of other namespaces
// are not affected.
type EdgeFilter interface {
	Criterion
	EdgeNamespace() string
	AcceptEdge(e model.Edge) bool
}

// VertexContext describes a display vertex to a VertexFilter
type VertexContext struct {
	// IsGroup is set when the vertex has children in the raw hierarchy
	IsGroup bool
	// Touched is set when at least one display edge attaches to the vertex
	Touched bool
}

// VertexFilter narrows the display vertex set
type VertexFilter interface {
	Criterion
	AcceptVertex(v model.Vertex, ctx VertexContext) bool
}

// CollapsibleCriterion folds a set of vertices into one synthetic vertex.
// Its fold set also seeds hop traversal.
type CollapsibleCriterion interface {
	HopCriterion
	FoldSet() []model.VertexRef
	IsCollapsed() bool
	SetCollapsed(collapsed bool)
	CollapsedRepresentation() model.Vertex
}
