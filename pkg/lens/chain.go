package lens

import (
	"fmt"
	"strings"

	"github.com/ritzau/topology-lens/pkg/criteria"
	"github.com/ritzau/topology-lens/pkg/logging"
	"github.com/ritzau/topology-lens/pkg/model"
	"github.com/ritzau/topology-lens/pkg/provider"
)

// Stage is one step of the provider chain
type Stage int

const (
	// StageMerge adds the edges of every bound edge provider
	StageMerge Stage = iota
	// StageHop keeps only vertices within zoom-level hops of the focus
	StageHop
)

var stageNames = map[Stage]string{
	StageMerge: "merge",
	StageHop:   "hop",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// Chain lists the stages applied to the base layer, bottom-up
type Chain []Stage

var (
	// FlatChain merges auxiliary edges without hop filtering
	FlatChain = Chain{StageMerge}
	// DefaultChain hop-filters the merged layer, so hops follow auxiliary edges
	DefaultChain = Chain{StageMerge, StageHop}
	// ReferenceChain hop-filters the base layer and merges afterwards, so hops
	// only follow base edges
	ReferenceChain = Chain{StageHop, StageMerge}
)

// namedChains are the layering names accepted by ParseChain
var namedChains = map[string]Chain{
	"flat":      FlatChain,
	"default":   DefaultChain,
	"reference": ReferenceChain,
}

// ParseChain reads a layering name ("flat", "default", "reference") or a comma
// separated list of stages such as "merge,hop"
func ParseChain(s string) (Chain, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if named, ok := namedChains[s]; ok {
		return append(Chain(nil), named...), nil
	}
	if s == "" || s == "none" {
		return Chain{}, nil
	}

	var chain Chain
	for _, part := range strings.Split(s, ",") {
		name := strings.TrimSpace(part)
		found := false
		for stage, stageName := range stageNames {
			if stageName == name {
				chain = append(chain, stage)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: unknown stage %q", ErrInvalidChain, name)
		}
	}
	if err := chain.Validate(); err != nil {
		return nil, err
	}
	return chain, nil
}

// Validate rejects unknown and repeated stages
func (c Chain) Validate() error {
	seen := make(map[Stage]bool, len(c))
	for _, stage := range c {
		if _, known := stageNames[stage]; !known {
			return fmt.Errorf("%w: unknown %s", ErrInvalidChain, stage)
		}
		if seen[stage] {
			return fmt.Errorf("%w: %s listed twice", ErrInvalidChain, stage)
		}
		seen[stage] = true
	}
	return nil
}

// Has reports whether the chain contains a stage
func (c Chain) Has(stage Stage) bool {
	for _, s := range c {
		if s == stage {
			return true
		}
	}
	return false
}

func (c Chain) String() string {
	names := make([]string, len(c))
	for i, stage := range c {
		names[i] = stage.String()
	}
	return strings.Join(names, ",")
}

// chainInput is the container state the stages read
type chainInput struct {
	registry *provider.Registry
	criteria []criteria.Criterion
	zoom     int
}

// apply runs the stages over a base layer
func (c Chain) apply(base *Layer, in chainInput) *Layer {
	layer := base
	for _, stage := range c {
		switch stage {
		case StageMerge:
			layer = mergeStage(layer, in.registry)
		case StageHop:
			layer = hopStage(layer, focusOf(in.criteria), in.zoom)
		}
		logging.Trace("Applied chain stage", "stage", stage, "vertices", len(layer.vertices), "edges", len(layer.edges))
	}
	return layer
}

// mergeStage adds auxiliary edges whose endpoints are both in the layer
func mergeStage(l *Layer, registry *provider.Registry) *Layer {
	if registry == nil {
		return l
	}

	var extra []model.Edge
	seen := make(map[model.EdgeRef]bool)
	for _, p := range registry.Providers() {
		for _, e := range p.Edges() {
			if l.HasEdge(e.EdgeRef) || seen[e.EdgeRef] {
				continue
			}
			if !l.HasVertex(e.Source.Vertex) || !l.HasVertex(e.Target.Vertex) {
				logging.Trace("Skipping auxiliary edge outside layer", "edge", e.EdgeRef)
				continue
			}
			seen[e.EdgeRef] = true
			extra = append(extra, e)
		}
	}

	if len(extra) == 0 {
		return l
	}
	return l.withEdges(extra)
}

// hopStage keeps the vertices within radius hops of the focus
func hopStage(l *Layer, focus []model.VertexRef, radius int) *Layer {
	var inLayer []model.VertexRef
	for _, ref := range focus {
		if l.HasVertex(ref) {
			inLayer = append(inLayer, ref)
		}
	}

	keep := make(map[model.VertexRef]bool)
	for ref := range ComputeDistances(l, inLayer, radius) {
		keep[ref] = true
	}

	next := l.restrict(keep)
	next.hopFiltered = true
	return next
}

// focusOf unions the focus of every hop criterion in criteria order
func focusOf(active []criteria.Criterion) []model.VertexRef {
	var focus []model.VertexRef
	seen := make(map[model.VertexRef]bool)
	for _, c := range active {
		hop, ok := c.(criteria.HopCriterion)
		if !ok {
			continue
		}
		for _, ref := range hop.FocusVertices() {
			if !seen[ref] {
				seen[ref] = true
				focus = append(focus, ref)
			}
		}
	}
	return focus
}
