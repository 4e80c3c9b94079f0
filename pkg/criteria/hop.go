package criteria

import (
	"sort"
	"strings"

	"github.com/ritzau/topology-lens/pkg/model"
)

// FocusHop holds a named set of focus vertices. The hop radius is the
// container's semantic zoom level.
type FocusHop struct {
	name  string
	focus []model.VertexRef
	index map[model.VertexRef]bool
}

// NewFocusHop creates an empty focus set
func NewFocusHop(name string) *FocusHop {
	return &FocusHop{
		name:  name,
		index: make(map[model.VertexRef]bool),
	}
}

func (c *FocusHop) Key() string {
	return "hop/" + c.name
}

// Name returns the name given at construction
func (c *FocusHop) Name() string {
	return c.name
}

// Add puts vertices into focus, ignoring ones already present
func (c *FocusHop) Add(refs ...model.VertexRef) {
	for _, ref := range refs {
		if c.index[ref] {
			continue
		}
		c.index[ref] = true
		c.focus = append(c.focus, ref)
	}
}

// Remove takes a vertex out of focus, reporting whether it was present
func (c *FocusHop) Remove(ref model.VertexRef) bool {
	if !c.index[ref] {
		return false
	}
	delete(c.index, ref)
	for i, r := range c.focus {
		if r == ref {
			c.focus = append(c.focus[:i:i], c.focus[i+1:]...)
			break
		}
	}
	return true
}

// Contains reports whether a vertex is in focus
func (c *FocusHop) Contains(ref model.VertexRef) bool {
	return c.index[ref]
}

// Clear empties the focus set
func (c *FocusHop) Clear() {
	c.focus = nil
	c.index = make(map[model.VertexRef]bool)
}

// Len returns the number of focus vertices
func (c *FocusHop) Len() int {
	return len(c.focus)
}

func (c *FocusHop) FocusVertices() []model.VertexRef {
	result := make([]model.VertexRef, len(c.focus))
	copy(result, c.focus)
	return result
}

func (c *FocusHop) StateKey() string {
	return joinRefs(c.focus)
}

// joinRefs renders a set of references independent of insertion order
func joinRefs(refs []model.VertexRef) string {
	parts := make([]string, len(refs))
	for i, r := range refs {
		parts[i] = r.String()
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}
