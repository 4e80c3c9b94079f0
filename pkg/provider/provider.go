// Package provider holds the raw topology: base graph providers that own the
// vertices and edges of one namespace, auxiliary edge providers that link
// vertices across namespaces, and the registry the container consults for them.
package provider

import (
	"errors"

	"github.com/ritzau/topology-lens/pkg/model"
)

var (
	// ErrUnknownParent is returned when a vertex names a parent its provider does not own
	ErrUnknownParent = errors.New("parent vertex not found in provider")
	// ErrDanglingEdge is returned when an edge endpoint is not a vertex of its provider
	ErrDanglingEdge = errors.New("edge endpoint not found in provider")
	// ErrForeignVertex is returned when a vertex does not belong to the provider's namespace
	ErrForeignVertex = errors.New("vertex namespace does not match provider")
	// ErrGroupCycle is returned when parent links form a loop
	ErrGroupCycle = errors.New("group hierarchy contains a cycle")
)

// EdgeProvider supplies edges of one namespace
type EdgeProvider interface {
	// Namespace identifies the provider and the namespace of its edges
	Namespace() string

	// Edges returns all edges. Callers must not modify the result.
	Edges() []model.Edge
}

// GraphProvider owns the raw vertex set of one namespace together with the
// group hierarchy and the edges between its vertices
type GraphProvider interface {
	EdgeProvider

	// Vertices returns all vertices, in definition order
	Vertices() []model.Vertex

	// Vertex looks up a vertex by reference
	Vertex(ref model.VertexRef) (model.Vertex, bool)

	// RootGroup returns the vertices without a parent
	RootGroup() []model.Vertex

	// Children returns the vertices whose parent is ref
	Children(ref model.VertexRef) []model.Vertex

	// Parent returns the parent of ref, if it has one
	Parent(ref model.VertexRef) (model.Vertex, bool)
}
