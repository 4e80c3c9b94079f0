package lens

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritzau/topology-lens/pkg/criteria"
	"github.com/ritzau/topology-lens/pkg/model"
	"github.com/ritzau/topology-lens/pkg/provider"
)

func nodes(id string) model.VertexRef {
	return model.NewVertexRef("nodes", id)
}

// testTopology is two groups of two vertices in a ring, with three auxiliary
// edges in the "ncs" namespace
func testTopology(t *testing.T) (*provider.SimpleGraphProvider, *provider.SimpleEdgeProvider) {
	t.Helper()

	base, err := provider.NewBuilder("nodes").
		Vertex("g0").Label("group0").IconKey("group").Tooltip("root group").StyleName("vertex").
		Vertex("g1").Parent("g0").Label("group1").IconKey("group").Tooltip("group 1").StyleName("vertex").
		Vertex("v1").Parent("g1").Label("vertex1").IconKey("server").Tooltip("tooltip").StyleName("vertex").
		Vertex("v2").Parent("g1").Label("vertex2").IconKey("server").Tooltip("tooltip").StyleName("vertex").
		Vertex("g2").Parent("g0").Label("group2").IconKey("group").Tooltip("group 2").StyleName("vertex").
		Vertex("v3").Parent("g2").Label("vertex3").IconKey("server").Tooltip("tooltip").StyleName("vertex").
		Vertex("v4").Parent("g2").Label("vertex4").IconKey("server").Tooltip("tooltip").StyleName("vertex").
		Edge("e1", "v1", "v2").EdgeStyleName("edge").
		Edge("e2", "v2", "v3").EdgeStyleName("edge").
		Edge("e3", "v3", "v4").EdgeStyleName("edge").
		Edge("e4", "v4", "v1").EdgeStyleName("edge").
		Build()
	require.NoError(t, err)

	ncs := provider.NewEdgeBuilder("ncs").
		Edge("ncs1", "nodes", "v1", "nodes", "v3").Label("ncsedge1").StyleName("ncs edge").
		Edge("ncs2", "nodes", "v2", "nodes", "v4").Label("ncsedge2").StyleName("ncs edge").
		Edge("ncs3", "nodes", "v1", "nodes", "v2").Label("ncsedge3").StyleName("ncs edge").
		Build()

	return base, ncs
}

func newTestContainer(t *testing.T, opts ...Option) *Container {
	t.Helper()

	base, ncs := testTopology(t)
	c, err := NewContainer(base, append([]Option{WithEdgeProviders(ncs)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func testCollapsible() *criteria.Collapsible {
	rep := model.Vertex{VertexRef: nodes("test"), Label: "Collapsed vertex", StyleName: "test"}
	return criteria.NewCollapsible(rep, nodes("v2"), nodes("v4"))
}

// styles maps display element ids ("ns:id") to style names
func vertexStyles(g *Graph) map[string]string {
	result := make(map[string]string)
	for _, v := range g.DisplayVertices() {
		result[v.VertexRef.String()] = v.StyleName
	}
	return result
}

func edgeStyles(g *Graph) map[string]string {
	result := make(map[string]string)
	for _, e := range g.DisplayEdges() {
		result[e.EdgeRef.String()] = e.StyleName
	}
	return result
}

func graphOf(t *testing.T, c *Container) *Graph {
	t.Helper()

	g, err := c.Graph()
	require.NoError(t, err)
	require.NoError(t, g.VerifyConnectedness())
	return g
}

func TestContainer_ZoomLevels(t *testing.T) {
	c := newTestContainer(t)

	g := graphOf(t, c)
	assert.Equal(t, map[string]string{"nodes:g0": "vertex"}, vertexStyles(g))
	assert.Empty(t, g.DisplayEdges())

	c.SetSemanticZoomLevel(1)
	g = graphOf(t, c)
	assert.Equal(t, map[string]string{"nodes:g1": "vertex", "nodes:g2": "vertex"}, vertexStyles(g))
	assert.Equal(t, map[string]string{
		"pseudo-nodes:<nodes:g1>-<nodes:g2>": "edge",
		"pseudo-ncs:<nodes:g1>-<nodes:g2>":   "ncs edge",
	}, edgeStyles(g))

	c.SetSemanticZoomLevel(2)
	g = graphOf(t, c)
	assert.Len(t, g.DisplayVertices(), 4)
	assert.Equal(t, map[string]string{
		"nodes:e1": "edge", "nodes:e2": "edge", "nodes:e3": "edge", "nodes:e4": "edge",
		"ncs:ncs1": "ncs edge", "ncs:ncs2": "ncs edge", "ncs:ncs3": "ncs edge",
	}, edgeStyles(g))
}

func TestContainer_PseudoEdgeDeduplication(t *testing.T) {
	c := newTestContainer(t)
	c.SetSemanticZoomLevel(1)

	g := graphOf(t, c)

	// e2 (g1->g2) and e4 (g2->g1) share one pseudo-edge
	var pseudo []model.Edge
	for _, e := range g.DisplayEdges() {
		if e.Namespace == "pseudo-nodes" {
			pseudo = append(pseudo, e)
		}
	}
	require.Len(t, pseudo, 1)
	assert.Equal(t, nodes("g1"), pseudo[0].Source.Vertex)
	assert.Equal(t, nodes("g2"), pseudo[0].Target.Vertex)
	assert.Equal(t, pseudo[0].EdgeRef, pseudo[0].Source.Edge)
}

func TestContainer_LabelMatchKeepsMatchingEdges(t *testing.T) {
	c := newTestContainer(t)
	c.SetSemanticZoomLevel(1)

	require.True(t, c.AddCriteria(criteria.MustLabelMatches("ncs", "ncsedge.")))

	g := graphOf(t, c)
	assert.Equal(t, map[string]string{"nodes:g1": "vertex", "nodes:g2": "vertex"}, vertexStyles(g))
	assert.Equal(t, map[string]string{
		"pseudo-nodes:<nodes:g1>-<nodes:g2>": "edge",
		"pseudo-ncs:<nodes:g1>-<nodes:g2>":   "ncs edge",
	}, edgeStyles(g))
}

func TestContainer_LabelMatchNarrowsEdges(t *testing.T) {
	c := newTestContainer(t)
	c.SetSemanticZoomLevel(2)

	c.AddCriteria(criteria.MustLabelMatches("ncs", "ncsedge1"))

	g := graphOf(t, c)
	_, hasNCS1 := g.Edge(model.NewEdgeRef("ncs", "ncs1"))
	_, hasNCS2 := g.Edge(model.NewEdgeRef("ncs", "ncs2"))
	assert.True(t, hasNCS1)
	assert.False(t, hasNCS2)
	// other namespaces are untouched
	assert.Len(t, g.DisplayEdges(), 5)
}

func TestContainer_LabelMatchPrunesUntouchedVertices(t *testing.T) {
	base, err := provider.NewBuilder("nodes").
		Vertex("g0").
		Vertex("g1").Parent("g0").
		Vertex("v1").Parent("g1").
		Vertex("v2").Parent("g1").
		Vertex("g2").Parent("g0").
		Vertex("v3").Parent("g2").
		Vertex("v5").Parent("g2").
		Edge("e1", "v1", "v2").
		Build()
	require.NoError(t, err)
	ncs := provider.NewEdgeBuilder("ncs").
		Edge("ncs1", "nodes", "v1", "nodes", "v3").Label("ncsedge1").
		Build()

	tests := []struct {
		name     string
		pattern  string
		expected []model.VertexRef
	}{
		{"matching edge keeps endpoint", "ncsedge1", []model.VertexRef{nodes("v1"), nodes("v2"), nodes("v3")}},
		{"no match drops endpoint", "nothing", []model.VertexRef{nodes("v1"), nodes("v2")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewContainer(base, WithEdgeProviders(ncs))
			require.NoError(t, err)
			c.SetSemanticZoomLevel(2)

			g := graphOf(t, c)
			assert.True(t, g.Contains(nodes("v5")), "untouched leaf shown without filter")

			c.AddCriteria(criteria.MustLabelMatches("ncs", tt.pattern))
			g = graphOf(t, c)

			var refs []model.VertexRef
			for _, v := range g.DisplayVertices() {
				refs = append(refs, v.VertexRef)
			}
			assert.Equal(t, tt.expected, refs)
		})
	}
}

func TestContainer_ZeroFocusIsEmpty(t *testing.T) {
	for _, chain := range []Chain{DefaultChain, ReferenceChain} {
		t.Run(chain.String(), func(t *testing.T) {
			c := newTestContainer(t, WithChain(chain))

			g := graphOf(t, c)
			assert.Empty(t, g.DisplayVertices())
			assert.Empty(t, g.DisplayEdges())

			c.SetSemanticZoomLevel(3)
			g = graphOf(t, c)
			assert.Empty(t, g.DisplayVertices())
		})
	}
}

func TestContainer_SingleFocus(t *testing.T) {
	for _, chain := range []Chain{DefaultChain, ReferenceChain} {
		t.Run(chain.String(), func(t *testing.T) {
			c := newTestContainer(t, WithChain(chain))

			focus := criteria.NewFocusHop("focus")
			focus.Add(nodes("v1"))
			require.True(t, c.AddCriteria(focus))
			assert.Len(t, c.Criteria(), 2)

			g := graphOf(t, c)
			assert.Equal(t, map[string]string{"nodes:v1": "vertex"}, vertexStyles(g))
			assert.Empty(t, g.DisplayEdges())
		})
	}
}

func TestContainer_ReferenceChainHopsOverBaseEdges(t *testing.T) {
	c := newTestContainer(t, WithChain(ReferenceChain))

	focus := criteria.NewFocusHop("focus")
	focus.Add(nodes("v1"))
	c.AddCriteria(focus)
	c.SetSemanticZoomLevel(1)

	g := graphOf(t, c)
	assert.Equal(t, map[string]string{
		"nodes:v1": "vertex", "nodes:v2": "vertex", "nodes:v4": "vertex",
	}, vertexStyles(g))
	assert.Equal(t, map[string]string{
		"nodes:e1": "edge", "nodes:e4": "edge",
		"ncs:ncs2": "ncs edge", "ncs:ncs3": "ncs edge",
	}, edgeStyles(g))
}

func TestContainer_DefaultChainHopsOverAuxiliaryEdges(t *testing.T) {
	c := newTestContainer(t, WithChain(DefaultChain))

	focus := criteria.NewFocusHop("focus")
	focus.Add(nodes("v1"))
	c.AddCriteria(focus)
	c.SetSemanticZoomLevel(1)

	g := graphOf(t, c)
	// v3 is one ncs1 hop away
	assert.Len(t, g.DisplayVertices(), 4)
	assert.True(t, g.Contains(nodes("v3")))
	assert.Len(t, g.DisplayEdges(), 7)
}

func TestContainer_Collapse(t *testing.T) {
	for _, chain := range []Chain{DefaultChain, ReferenceChain} {
		t.Run(chain.String(), func(t *testing.T) {
			c := newTestContainer(t, WithChain(chain))

			focus := criteria.NewFocusHop("focus")
			focus.Add(nodes("v1"))
			c.AddCriteria(focus)
			c.SetSemanticZoomLevel(1)

			require.True(t, c.AddCriteria(testCollapsible()))
			assert.Len(t, c.Criteria(), 3)

			g := graphOf(t, c)
			assert.Equal(t, map[string]string{
				"nodes:v1": "vertex", "nodes:v3": "vertex", "nodes:test": "test",
			}, vertexStyles(g))

			type endpoints struct{ source, target string }
			expected := map[string]endpoints{
				"e1":   {"v1", "test"},
				"e2":   {"test", "v3"},
				"e3":   {"v3", "test"},
				"e4":   {"test", "v1"},
				"ncs1": {"v1", "v3"},
				"ncs3": {"v1", "test"},
			}
			actual := make(map[string]endpoints)
			for _, e := range g.DisplayEdges() {
				actual[e.ID] = endpoints{e.Source.Vertex.ID, e.Target.Vertex.ID}
			}
			assert.Equal(t, expected, actual)

			e1, ok := g.Edge(model.NewEdgeRef("nodes", "e1"))
			require.True(t, ok)
			assert.Equal(t, "edge", e1.StyleName)
		})
	}
}

func TestContainer_CollapseOntoDisplayedVertexIsSkipped(t *testing.T) {
	c := newTestContainer(t)
	c.SetSemanticZoomLevel(2)

	rep := model.Vertex{VertexRef: nodes("v3"), Label: "Collapsed", StyleName: "test"}
	require.True(t, c.AddCriteria(criteria.NewCollapsible(rep, nodes("v2"), nodes("v4"))))

	g := graphOf(t, c)
	assert.Len(t, g.DisplayVertices(), 4)
	assert.Len(t, g.DisplayEdges(), 7)
	v3, ok := g.Vertex(nodes("v3"))
	require.True(t, ok)
	assert.Equal(t, "vertex3", v3.Label)
	assert.Equal(t, "vertex", v3.StyleName)
	assert.True(t, g.Contains(nodes("v2")))
	assert.True(t, g.Contains(nodes("v4")))
}

func TestContainer_UnboundedZoomKeepsFocus(t *testing.T) {
	c := newTestContainer(t, WithChain(DefaultChain))

	focus := criteria.NewFocusHop("focus")
	focus.Add(nodes("v1"))
	c.AddCriteria(focus)
	c.SetSemanticZoomLevel(math.MaxInt)

	g := graphOf(t, c)
	assert.True(t, g.Contains(nodes("v1")))
	assert.Len(t, g.DisplayVertices(), 4)
}

func TestContainer_CollapseIgnoresHiddenMembers(t *testing.T) {
	c := newTestContainer(t)
	c.AddCriteria(testCollapsible())

	g := graphOf(t, c)
	assert.Equal(t, map[string]string{"nodes:g0": "vertex"}, vertexStyles(g))
}

func TestContainer_ExpandedCollapsible(t *testing.T) {
	c := newTestContainer(t, WithChain(DefaultChain))
	c.SetSemanticZoomLevel(1)

	collapsible := testCollapsible()
	c.AddCriteria(collapsible)
	require.True(t, graphOf(t, c).Contains(nodes("test")))

	require.NoError(t, c.Update(func() error {
		collapsible.SetCollapsed(false)
		return nil
	}))

	g := graphOf(t, c)
	assert.False(t, g.Contains(nodes("test")))
	assert.True(t, g.Contains(nodes("v2")))
	assert.True(t, g.Contains(nodes("v4")))
}

func TestContainer_IdempotentCriteria(t *testing.T) {
	c := newTestContainer(t)

	focus := criteria.NewFocusHop("focus")
	assert.True(t, c.AddCriteria(focus))
	assert.False(t, c.AddCriteria(focus))
	assert.False(t, c.AddCriteria(criteria.NewFocusHop("focus")))
	assert.True(t, c.AddCriteria(criteria.MustLabelMatches("ncs", "ncsedge.")))
	assert.False(t, c.AddCriteria(criteria.MustLabelMatches("ncs", "ncsedge.")))
	assert.Len(t, c.Criteria(), 3)

	_, isZoom := c.Criteria()[0].(criteria.SemanticZoomLevel)
	assert.True(t, isZoom)

	assert.True(t, c.RemoveCriteria(focus))
	assert.False(t, c.RemoveCriteria(focus))
	assert.Len(t, c.Criteria(), 2)
}

func TestContainer_ZoomCriterion(t *testing.T) {
	c := newTestContainer(t)

	c.SetSemanticZoomLevel(-3)
	assert.Equal(t, 0, c.SemanticZoomLevel())

	assert.True(t, c.AddCriteria(criteria.SemanticZoomLevel{Level: 2}))
	assert.Equal(t, 2, c.SemanticZoomLevel())
	assert.Len(t, c.Criteria(), 1)

	found, ok := c.FindCriteria(criteria.SemanticZoomLevelKey)
	require.True(t, ok)
	assert.Equal(t, criteria.SemanticZoomLevel{Level: 2}, found)
}

func TestContainer_UnboundProviderContributesNothing(t *testing.T) {
	c := newTestContainer(t)
	c.SetSemanticZoomLevel(1)

	assert.True(t, c.UnbindEdgeProvider("ncs"))
	assert.False(t, c.UnbindEdgeProvider("ncs"))
	assert.False(t, c.UnbindEdgeProvider("unknown"))

	g := graphOf(t, c)
	assert.Equal(t, map[string]string{"pseudo-nodes:<nodes:g1>-<nodes:g2>": "edge"}, edgeStyles(g))

	_, ncs := testTopology(t)
	c.BindEdgeProvider(ncs)
	g = graphOf(t, c)
	assert.Len(t, g.DisplayEdges(), 2)
}

func TestContainer_Memo(t *testing.T) {
	c := newTestContainer(t, WithChain(DefaultChain))

	focus := criteria.NewFocusHop("focus")
	focus.Add(nodes("v1"))
	c.AddCriteria(focus)

	first := graphOf(t, c)
	second := graphOf(t, c)
	assert.Same(t, first, second)

	require.NoError(t, c.Update(func() error {
		focus.Add(nodes("v3"))
		return nil
	}))
	third := graphOf(t, c)
	assert.NotSame(t, second, third)
	assert.Len(t, third.DisplayVertices(), 2)

	c.SetSemanticZoomLevel(1)
	assert.NotSame(t, third, graphOf(t, c))
}

func TestContainer_MemoDisabled(t *testing.T) {
	c := newTestContainer(t, WithMemo(false))

	first := graphOf(t, c)
	second := graphOf(t, c)
	assert.NotSame(t, first, second)
	assert.Equal(t, first.DisplayVertices(), second.DisplayVertices())
}

func TestContainer_SetBaseProvider(t *testing.T) {
	c := newTestContainer(t)
	c.SetSemanticZoomLevel(1)
	before := graphOf(t, c)

	replacement, err := provider.NewBuilder("nodes").
		Vertex("g0").
		Vertex("g1").Parent("g0").
		Build()
	require.NoError(t, err)

	require.NoError(t, c.SetBaseProvider(replacement))
	after := graphOf(t, c)
	assert.NotSame(t, before, after)
	assert.Equal(t, map[string]string{"nodes:g1": ""}, vertexStyles(after))

	// ncs edges no longer have endpoints in the base layer
	assert.Empty(t, after.DisplayEdges())

	assert.ErrorIs(t, c.SetBaseProvider(nil), ErrNoProvider)
}

func TestContainer_Close(t *testing.T) {
	c := newTestContainer(t)
	c.AddCriteria(criteria.NewFocusHop("focus"))

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	assert.Empty(t, c.EdgeProviders())
	assert.Len(t, c.Criteria(), 1)

	_, err := c.Graph()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestNewContainer_Errors(t *testing.T) {
	_, err := NewContainer(nil)
	assert.ErrorIs(t, err, ErrNoProvider)

	base, _ := testTopology(t)
	_, err = NewContainer(base, WithChain(Chain{StageHop, StageHop}))
	assert.ErrorIs(t, err, ErrInvalidChain)
}

func TestGraph_VisitorExhaustive(t *testing.T) {
	c := newTestContainer(t)

	for level := 0; level <= 3; level++ {
		c.SetSemanticZoomLevel(level)
		g := graphOf(t, c)

		vertexVisits := make(map[model.VertexRef]int)
		edgeVisits := make(map[model.EdgeRef]int)
		edgesStarted := false
		g.Visit(VisitorFuncs{
			Vertex: func(v model.Vertex) {
				assert.False(t, edgesStarted, "vertex visited after edges")
				vertexVisits[v.VertexRef]++
			},
			Edge: func(e model.Edge) {
				edgesStarted = true
				edgeVisits[e.EdgeRef]++
			},
		})

		require.Len(t, vertexVisits, len(g.DisplayVertices()))
		require.Len(t, edgeVisits, len(g.DisplayEdges()))
		for _, v := range g.DisplayVertices() {
			assert.Equal(t, 1, vertexVisits[v.VertexRef])
		}
		for _, e := range g.DisplayEdges() {
			assert.Equal(t, 1, edgeVisits[e.EdgeRef])
		}
	}
}

func TestGraph_ReturnsCopies(t *testing.T) {
	c := newTestContainer(t)
	g := graphOf(t, c)

	vertices := g.DisplayVertices()
	vertices[0].Label = "changed"

	v, ok := g.Vertex(nodes("g0"))
	require.True(t, ok)
	assert.Equal(t, "group0", v.Label)
}
