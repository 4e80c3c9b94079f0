package criteria

import (
	"fmt"

	"github.com/ritzau/topology-lens/pkg/model"
)

// Collapsible folds a fixed set of vertices into one synthetic vertex while
// collapsed. The fold set doubles as hop focus so the folded vertices and
// their neighbourhood stay in view.
type Collapsible struct {
	representation model.Vertex
	members        []model.VertexRef
	collapsed      bool
}

// NewCollapsible creates a collapsed criterion. The representation is the
// vertex displayed in place of the members; its reference must not collide
// with a member.
func NewCollapsible(representation model.Vertex, members ...model.VertexRef) *Collapsible {
	seen := make(map[model.VertexRef]bool, len(members))
	unique := make([]model.VertexRef, 0, len(members))
	for _, m := range members {
		if seen[m] || m == representation.VertexRef {
			continue
		}
		seen[m] = true
		unique = append(unique, m)
	}

	return &Collapsible{
		representation: representation,
		members:        unique,
		collapsed:      true,
	}
}

func (c *Collapsible) Key() string {
	return "collapse/" + c.representation.VertexRef.String()
}

func (c *Collapsible) StateKey() string {
	return fmt.Sprintf("%t|%s", c.collapsed, joinRefs(c.members))
}

func (c *Collapsible) FoldSet() []model.VertexRef {
	result := make([]model.VertexRef, len(c.members))
	copy(result, c.members)
	return result
}

func (c *Collapsible) FocusVertices() []model.VertexRef {
	return c.FoldSet()
}

func (c *Collapsible) IsCollapsed() bool {
	return c.collapsed
}

func (c *Collapsible) SetCollapsed(collapsed bool) {
	c.collapsed = collapsed
}

func (c *Collapsible) CollapsedRepresentation() model.Vertex {
	return c.representation
}
