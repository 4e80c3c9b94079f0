package lens

import (
	"fmt"
	"sort"

	"github.com/ritzau/topology-lens/pkg/criteria"
	"github.com/ritzau/topology-lens/pkg/logging"
	"github.com/ritzau/topology-lens/pkg/model"
)

// RenderGraph materializes the display graph of a chain output layer.
// zoom is the semantic zoom level; it is the group depth unless the layer was
// hop filtered.
func RenderGraph(l *Layer, zoom int, active []criteria.Criterion) (*Graph, error) {
	logging.Debug("rendering graph", "vertices", len(l.vertices), "edges", len(l.edges), "zoom", zoom, "hopFiltered", l.hopFiltered)

	// 1. Pick the display vertices
	var display map[model.VertexRef]bool
	if l.hopFiltered {
		display = make(map[model.VertexRef]bool, len(l.vertices))
		for _, v := range l.vertices {
			display[v.VertexRef] = true
		}
	} else {
		display = displaySetByZoom(l, zoom)
	}
	logging.Debug("display vertices by level", "count", len(display))

	// 2. Narrow raw edges with edge filters
	edges := filterEdges(l.edges, active)

	// 3. Map edges onto display vertices
	edges = mapEdgesToDisplay(l, edges, display)

	// 4. Narrow vertices with vertex filters
	display, edges = filterVertices(l, display, edges, active)

	// 5. Fold collapsed vertex sets
	vertices := make(map[model.VertexRef]model.Vertex, len(display))
	for ref := range display {
		v, _ := l.Vertex(ref)
		vertices[ref] = v
	}
	edges = collapseVertices(vertices, edges, active)

	// 6. Every edge must attach to display vertices
	if err := verifyConnectedness(vertices, edges); err != nil {
		return nil, err
	}

	logging.Debug("final result", "vertices", len(vertices), "edges", len(edges))

	result := make([]model.Vertex, 0, len(vertices))
	for _, v := range vertices {
		result = append(result, v)
	}
	return newGraph(result, edges, zoom), nil
}

// displaySetByZoom descends one generation per zoom level from every root
func displaySetByZoom(l *Layer, zoom int) map[model.VertexRef]bool {
	display := make(map[model.VertexRef]bool)

	var addOpen func(ref model.VertexRef, level int)
	addOpen = func(ref model.VertexRef, level int) {
		children := l.Children(ref)
		if level <= 0 || len(children) == 0 {
			display[ref] = true
			return
		}
		for _, child := range children {
			addOpen(child, level-1)
		}
	}

	for _, root := range l.Roots() {
		addOpen(root, zoom)
	}
	return display
}

// filterEdges drops edges rejected by an edge filter of their namespace
func filterEdges(edges []model.Edge, active []criteria.Criterion) []model.Edge {
	var filters []criteria.EdgeFilter
	for _, c := range active {
		if f, ok := c.(criteria.EdgeFilter); ok {
			filters = append(filters, f)
		}
	}
	if len(filters) == 0 {
		return edges
	}

	result := make([]model.Edge, 0, len(edges))
	for _, e := range edges {
		if acceptEdge(e, filters) {
			result = append(result, e)
		} else {
			logging.Trace("edge rejected by filter", "edge", e.EdgeRef)
		}
	}
	return result
}

func acceptEdge(e model.Edge, filters []criteria.EdgeFilter) bool {
	for _, f := range filters {
		if f.EdgeNamespace() == e.Namespace && !f.AcceptEdge(e) {
			return false
		}
	}
	return true
}

// mapEdgesToDisplay keeps edges between display vertices and replaces the
// rest with one pseudo-edge per namespace and unordered pair of nearest
// displayed ancestors
func mapEdgesToDisplay(l *Layer, edges []model.Edge, display map[model.VertexRef]bool) []model.Edge {
	sorted := append([]model.Edge(nil), edges...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].EdgeRef.Less(sorted[j].EdgeRef) })

	var result []model.Edge
	pseudo := make(map[model.EdgeRef]bool)

	for _, e := range sorted {
		if display[e.Source.Vertex] && display[e.Target.Vertex] {
			result = append(result, e)
			continue
		}

		actualSource, sourceFound := findVisibleAncestor(l, e.Source.Vertex, display)
		actualTarget, targetFound := findVisibleAncestor(l, e.Target.Vertex, display)

		// Skip edges where source or target has no displayed ancestor
		if !sourceFound || !targetFound {
			continue
		}

		// Skip edges inside one displayed group
		if actualSource == actualTarget {
			continue
		}

		p := pseudoEdge(e, actualSource, actualTarget)
		if pseudo[p.EdgeRef] {
			continue
		}
		pseudo[p.EdgeRef] = true
		result = append(result, p)
	}

	return result
}

// findVisibleAncestor walks up the hierarchy to the nearest displayed vertex,
// starting with the vertex itself
func findVisibleAncestor(l *Layer, ref model.VertexRef, display map[model.VertexRef]bool) (model.VertexRef, bool) {
	current := ref
	for {
		if display[current] {
			return current, true
		}
		parent, ok := l.Parent(current)
		if !ok {
			return model.VertexRef{}, false
		}
		current = parent
	}
}

// pseudoEdge stands in for e between two displayed ancestors. Endpoints are
// ordered so both directions share one identity.
func pseudoEdge(e model.Edge, a, b model.VertexRef) model.Edge {
	if b.Less(a) {
		a, b = b, a
	}
	ref := model.NewEdgeRef(PseudoNamespacePrefix+e.Namespace, fmt.Sprintf("<%s>-<%s>", a, b))

	p := model.NewEdge(ref, a, b)
	p.Label = e.Label
	p.StyleName = e.StyleName
	return p
}

// filterVertices drops display vertices rejected by a vertex filter along
// with the edges attached to them
func filterVertices(l *Layer, display map[model.VertexRef]bool, edges []model.Edge, active []criteria.Criterion) (map[model.VertexRef]bool, []model.Edge) {
	var filters []criteria.VertexFilter
	for _, c := range active {
		if f, ok := c.(criteria.VertexFilter); ok {
			filters = append(filters, f)
		}
	}
	if len(filters) == 0 {
		return display, edges
	}

	touched := make(map[model.VertexRef]bool)
	for _, e := range edges {
		touched[e.Source.Vertex] = true
		touched[e.Target.Vertex] = true
	}

	kept := make(map[model.VertexRef]bool, len(display))
	for ref := range display {
		v, _ := l.Vertex(ref)
		ctx := criteria.VertexContext{IsGroup: v.ChildCount > 0, Touched: touched[ref]}

		accepted := true
		for _, f := range filters {
			if !f.AcceptVertex(v, ctx) {
				accepted = false
				break
			}
		}
		if accepted {
			kept[ref] = true
		} else {
			logging.Trace("vertex rejected by filter", "vertex", ref)
		}
	}

	result := make([]model.Edge, 0, len(edges))
	for _, e := range edges {
		if kept[e.Source.Vertex] && kept[e.Target.Vertex] {
			result = append(result, e)
		}
	}
	return kept, result
}

// collapseVertices folds the members of every collapsed criterion into its
// synthetic vertex, in criteria order. Edges keep their identity: one
// endpoint in the fold set moves to the synthetic vertex, both drop the edge.
func collapseVertices(vertices map[model.VertexRef]model.Vertex, edges []model.Edge, active []criteria.Criterion) []model.Edge {
	for _, c := range active {
		collapsible, ok := c.(criteria.CollapsibleCriterion)
		if !ok || !collapsible.IsCollapsed() {
			continue
		}

		folded := make(map[model.VertexRef]bool)
		for _, ref := range collapsible.FoldSet() {
			if _, displayed := vertices[ref]; displayed {
				folded[ref] = true
			}
		}
		if len(folded) == 0 {
			logging.Trace("nothing to collapse", "criterion", c.Key())
			continue
		}

		synthetic := collapsible.CollapsedRepresentation()
		if _, taken := vertices[synthetic.VertexRef]; taken && !folded[synthetic.VertexRef] {
			logging.Warn("collapsed vertex id already displayed, skipping", "criterion", c.Key(), "vertex", synthetic.VertexRef)
			continue
		}
		for ref := range folded {
			delete(vertices, ref)
		}
		vertices[synthetic.VertexRef] = synthetic

		result := make([]model.Edge, 0, len(edges))
		for _, e := range edges {
			sourceFolded := folded[e.Source.Vertex]
			targetFolded := folded[e.Target.Vertex]

			switch {
			case sourceFolded && targetFolded:
				continue
			case sourceFolded:
				e = e.WithEndpoints(synthetic.VertexRef, e.Target.Vertex)
			case targetFolded:
				e = e.WithEndpoints(e.Source.Vertex, synthetic.VertexRef)
			}
			result = append(result, e)
		}
		edges = result

		logging.Debug("collapsed vertices", "criterion", c.Key(), "folded", len(folded), "into", synthetic.VertexRef)
	}
	return edges
}

// verifyConnectedness reports the first edge that attaches outside the
// display vertex set
func verifyConnectedness(vertices map[model.VertexRef]model.Vertex, edges []model.Edge) error {
	for _, e := range edges {
		if _, exists := vertices[e.Source.Vertex]; !exists {
			return fmt.Errorf("%w: %s source %s", ErrDisconnected, e.EdgeRef, e.Source.Vertex)
		}
		if _, exists := vertices[e.Target.Vertex]; !exists {
			return fmt.Errorf("%w: %s target %s", ErrDisconnected, e.EdgeRef, e.Target.Vertex)
		}
	}
	return nil
}
