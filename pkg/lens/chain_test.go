package lens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritzau/topology-lens/pkg/model"
)

func TestParseChain(t *testing.T) {
	tests := []struct {
		input    string
		expected Chain
		wantErr  bool
	}{
		{"flat", FlatChain, false},
		{"default", DefaultChain, false},
		{"Reference", ReferenceChain, false},
		{"hop, merge", Chain{StageHop, StageMerge}, false},
		{"hop", Chain{StageHop}, false},
		{"none", Chain{}, false},
		{"", Chain{}, false},
		{"merge,merge", nil, true},
		{"merge,zoom", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			chain, err := ParseChain(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidChain)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, chain)
		})
	}
}

func TestChain_Validate(t *testing.T) {
	assert.NoError(t, DefaultChain.Validate())
	assert.NoError(t, Chain{}.Validate())
	assert.ErrorIs(t, Chain{StageMerge, Stage(7)}.Validate(), ErrInvalidChain)
	assert.ErrorIs(t, Chain{StageMerge, StageHop, StageMerge}.Validate(), ErrInvalidChain)
}

func TestChain_String(t *testing.T) {
	assert.Equal(t, "merge,hop", DefaultChain.String())
	assert.Equal(t, "hop,merge", ReferenceChain.String())
	assert.Equal(t, "stage(7)", Stage(7).String())
	assert.True(t, DefaultChain.Has(StageHop))
	assert.False(t, FlatChain.Has(StageHop))
}

func TestMergeStage_SkipsEdgesOutsideLayer(t *testing.T) {
	base, ncs := testTopology(t)
	layer := layerFromProvider(base)

	hop := hopStage(layer, []model.VertexRef{nodes("v1")}, 0)
	require.Len(t, hop.Vertices(), 1)
	assert.True(t, hop.HopFiltered())

	c, err := NewContainer(base, WithEdgeProviders(ncs))
	require.NoError(t, err)

	merged := mergeStage(hop, c.registry)
	assert.Empty(t, merged.Edges())

	merged = mergeStage(layer, c.registry)
	assert.Len(t, merged.Edges(), 7)
	assert.True(t, merged.HasEdge(model.NewEdgeRef("ncs", "ncs2")))
}

func TestComputeDistances(t *testing.T) {
	base, _ := testTopology(t)
	layer := layerFromProvider(base)

	distances := ComputeDistances(layer, []model.VertexRef{nodes("v1")}, 2)
	assert.Equal(t, map[model.VertexRef]int{
		nodes("v1"): 0,
		nodes("v2"): 1,
		nodes("v4"): 1,
		nodes("v3"): 2,
	}, distances)

	assert.Empty(t, ComputeDistances(layer, nil, 2))
}

func TestLayer_Hierarchy(t *testing.T) {
	base, _ := testTopology(t)
	layer := layerFromProvider(base)

	assert.Equal(t, []model.VertexRef{nodes("g0")}, layer.Roots())
	assert.ElementsMatch(t, []model.VertexRef{nodes("g1"), nodes("g2")}, layer.Children(nodes("g0")))

	parent, ok := layer.Parent(nodes("v3"))
	require.True(t, ok)
	assert.Equal(t, nodes("g2"), parent)

	restricted := layer.restrict(map[model.VertexRef]bool{nodes("v1"): true, nodes("v2"): true})
	assert.ElementsMatch(t, []model.VertexRef{nodes("v1"), nodes("v2")}, restricted.Roots())
	assert.Len(t, restricted.Edges(), 1)
}

func TestVerifyConnectedness(t *testing.T) {
	v1 := model.Vertex{VertexRef: nodes("v1")}
	vertices := map[model.VertexRef]model.Vertex{v1.VertexRef: v1}

	loop := model.NewEdge(model.NewEdgeRef("nodes", "loop"), nodes("v1"), nodes("v1"))
	assert.NoError(t, verifyConnectedness(vertices, []model.Edge{loop}))

	dangling := model.NewEdge(model.NewEdgeRef("nodes", "e1"), nodes("v1"), nodes("v2"))
	err := verifyConnectedness(vertices, []model.Edge{dangling})
	assert.ErrorIs(t, err, ErrDisconnected)
	assert.Contains(t, err.Error(), "nodes:v2")
}
