package model

import (
	"fmt"
	"strings"
)

// VertexRef identifies a vertex by namespace and id.
// It is comparable and can be used as a map key.
type VertexRef struct {
	Namespace string `json:"namespace"`
	ID        string `json:"id"`
}

// NewVertexRef creates a vertex reference
func NewVertexRef(namespace, id string) VertexRef {
	return VertexRef{Namespace: namespace, ID: id}
}

// ParseVertexRef reads "namespace:id". A bare id belongs to defaultNamespace.
func ParseVertexRef(s, defaultNamespace string) VertexRef {
	if namespace, id, found := strings.Cut(s, ":"); found {
		return VertexRef{Namespace: namespace, ID: id}
	}
	return VertexRef{Namespace: defaultNamespace, ID: s}
}

// IsZero reports whether the reference is unset (used for "no parent")
func (r VertexRef) IsZero() bool {
	return r.Namespace == "" && r.ID == ""
}

// String renders the reference as "namespace:id"
func (r VertexRef) String() string {
	return fmt.Sprintf("%s:%s", r.Namespace, r.ID)
}

// Less orders references by namespace, then id
func (r VertexRef) Less(o VertexRef) bool {
	if r.Namespace != o.Namespace {
		return r.Namespace < o.Namespace
	}
	return r.ID < o.ID
}

// EdgeRef identifies an edge by namespace and id.
type EdgeRef struct {
	Namespace string `json:"namespace"`
	ID        string `json:"id"`
}

// NewEdgeRef creates an edge reference
func NewEdgeRef(namespace, id string) EdgeRef {
	return EdgeRef{Namespace: namespace, ID: id}
}

// String renders the reference as "namespace:id"
func (r EdgeRef) String() string {
	return fmt.Sprintf("%s:%s", r.Namespace, r.ID)
}

// Less orders references by namespace, then id
func (r EdgeRef) Less(o EdgeRef) bool {
	if r.Namespace != o.Namespace {
		return r.Namespace < o.Namespace
	}
	return r.ID < o.ID
}

// Vertex is a displayable vertex with its presentation metadata.
type Vertex struct {
	VertexRef
	Label      string    `json:"label"`
	IconKey    string    `json:"iconKey,omitempty"`
	Tooltip    string    `json:"tooltip,omitempty"`
	StyleName  string    `json:"styleName,omitempty"`
	Parent     VertexRef `json:"parent,omitempty"` // zero value means no parent
	ChildCount int       `json:"childCount"`
}

// Ref returns the identity of the vertex
func (v Vertex) Ref() VertexRef {
	return v.VertexRef
}

// HasParent reports whether the vertex belongs to a group
func (v Vertex) HasParent() bool {
	return !v.Parent.IsZero()
}

// EndPoint is one end of an edge: the owning edge and the vertex it attaches to.
type EndPoint struct {
	Edge   EdgeRef   `json:"edge"`
	Vertex VertexRef `json:"vertex"`
}

// Edge connects two vertices, possibly across namespaces.
type Edge struct {
	EdgeRef
	Source    EndPoint `json:"source"`
	Target    EndPoint `json:"target"`
	Label     string   `json:"label,omitempty"`
	StyleName string   `json:"styleName,omitempty"`
}

// NewEdge creates an edge between source and target
func NewEdge(ref EdgeRef, source, target VertexRef) Edge {
	return Edge{
		EdgeRef: ref,
		Source:  EndPoint{Edge: ref, Vertex: source},
		Target:  EndPoint{Edge: ref, Vertex: target},
	}
}

// Ref returns the identity of the edge
func (e Edge) Ref() EdgeRef {
	return e.EdgeRef
}

// WithEndpoints returns a copy of the edge attached to new vertices.
// The edge identity and presentation are preserved.
func (e Edge) WithEndpoints(source, target VertexRef) Edge {
	e.Source = EndPoint{Edge: e.EdgeRef, Vertex: source}
	e.Target = EndPoint{Edge: e.EdgeRef, Vertex: target}
	return e
}

// IsLoop reports whether both endpoints attach to the same vertex
func (e Edge) IsLoop() bool {
	return e.Source.Vertex == e.Target.Vertex
}
