package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritzau/topology-lens/pkg/model"
)

func nodes(id string) model.VertexRef {
	return model.NewVertexRef("nodes", id)
}

func twoGroups(t *testing.T) *SimpleGraphProvider {
	t.Helper()

	p, err := NewBuilder("nodes").
		Vertex("g0").Label("group0").IconKey("group").Tooltip("root group").StyleName("vertex").
		Vertex("g1").Parent("g0").Label("group1").IconKey("group").StyleName("vertex").
		Vertex("v1").Parent("g1").Label("vertex1").IconKey("server").StyleName("vertex").
		Vertex("v2").Parent("g1").Label("vertex2").IconKey("server").StyleName("vertex").
		Vertex("g2").Parent("g0").Label("group2").IconKey("group").StyleName("vertex").
		Vertex("v3").Parent("g2").Label("vertex3").IconKey("server").StyleName("vertex").
		Vertex("v4").Parent("g2").Label("vertex4").IconKey("server").StyleName("vertex").
		Edge("e1", "v1", "v2").EdgeStyleName("edge").
		Edge("e2", "v2", "v3").EdgeStyleName("edge").
		Build()
	require.NoError(t, err)
	return p
}

func TestSimpleGraphProvider_RootGroup(t *testing.T) {
	p := twoGroups(t)

	roots := p.RootGroup()
	require.Len(t, roots, 1)
	assert.Equal(t, nodes("g0"), roots[0].VertexRef)
	assert.Equal(t, "root group", roots[0].Tooltip)
	assert.Equal(t, 2, roots[0].ChildCount)
}

func TestSimpleGraphProvider_Children(t *testing.T) {
	p := twoGroups(t)

	children := p.Children(nodes("g0"))
	require.Len(t, children, 2)
	assert.ElementsMatch(t, []model.VertexRef{nodes("g1"), nodes("g2")},
		[]model.VertexRef{children[0].VertexRef, children[1].VertexRef})

	parent, ok := p.Parent(children[0].VertexRef)
	require.True(t, ok)
	assert.Equal(t, nodes("g0"), parent.VertexRef)

	assert.Empty(t, p.Children(nodes("v1")), "leaf vertices have no children")
	_, ok = p.Parent(nodes("g0"))
	assert.False(t, ok, "roots have no parent")
	_, ok = p.Parent(nodes("missing"))
	assert.False(t, ok)
}

func TestSimpleGraphProvider_VerticesAndEdges(t *testing.T) {
	p := twoGroups(t)

	assert.Equal(t, "nodes", p.Namespace())
	assert.Len(t, p.Vertices(), 7)
	require.Len(t, p.Edges(), 2)

	e := p.Edges()[0]
	assert.Equal(t, model.NewEdgeRef("nodes", "e1"), e.EdgeRef)
	assert.Equal(t, nodes("v1"), e.Source.Vertex)
	assert.Equal(t, e.EdgeRef, e.Source.Edge)
	assert.Equal(t, "edge", e.StyleName)

	v, ok := p.Vertex(nodes("v3"))
	require.True(t, ok)
	assert.Equal(t, "vertex3", v.Label)
	assert.Equal(t, "server", v.IconKey)
}

func TestSimpleGraphProvider_Validation(t *testing.T) {
	t.Run("unknown parent", func(t *testing.T) {
		_, err := NewBuilder("nodes").Vertex("v1").Parent("ghost").Build()
		assert.ErrorIs(t, err, ErrUnknownParent)
	})

	t.Run("dangling edge", func(t *testing.T) {
		_, err := NewBuilder("nodes").Vertex("v1").Edge("e1", "v1", "ghost").Build()
		assert.ErrorIs(t, err, ErrDanglingEdge)
	})

	t.Run("parent cycle", func(t *testing.T) {
		_, err := NewBuilder("nodes").
			Vertex("a").Parent("b").
			Vertex("b").Parent("a").
			Build()
		assert.ErrorIs(t, err, ErrGroupCycle)
	})

	t.Run("foreign vertex", func(t *testing.T) {
		g := model.NewGraph("nodes")
		g.AddVertex(model.Vertex{VertexRef: model.NewVertexRef("other", "x")})
		_, err := NewSimpleGraphProvider(g)
		assert.ErrorIs(t, err, ErrForeignVertex)
	})
}

func TestBuilder_RedefinedVertexReplaces(t *testing.T) {
	p, err := NewBuilder("nodes").
		Vertex("v1").Label("first").
		Vertex("v1").Label("second").
		Build()
	require.NoError(t, err)

	require.Len(t, p.Vertices(), 1)
	assert.Equal(t, "second", p.Vertices()[0].Label)
}

func TestEdgeBuilder(t *testing.T) {
	ep := NewEdgeBuilder("ncs").
		Edge("ncs1", "nodes", "v1", "nodes", "v3").Label("ncsedge1").StyleName("ncs edge").
		Edge("ncs2", "nodes", "v2", "other", "x").Label("ncsedge2").
		Build()

	assert.Equal(t, "ncs", ep.Namespace())
	require.Len(t, ep.Edges(), 2)
	assert.Equal(t, "ncs edge", ep.Edges()[0].StyleName)
	assert.Equal(t, model.NewVertexRef("other", "x"), ep.Edges()[1].Target.Vertex)
	assert.Empty(t, ep.Edges()[1].StyleName)
}
