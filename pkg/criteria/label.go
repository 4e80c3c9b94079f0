package criteria

import (
	"fmt"
	"regexp"

	"github.com/ritzau/topology-lens/pkg/model"
)

// LabelMatch keeps only the edges of one namespace whose label matches a
// pattern. The whole label must match. Leaf vertices left without any display
// edge are pruned; group vertices always stay visible.
type LabelMatch struct {
	namespace string
	pattern   string
	re        *regexp.Regexp
}

// LabelMatches compiles a label filter for an edge namespace
func LabelMatches(namespace, pattern string) (*LabelMatch, error) {
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return nil, fmt.Errorf("label pattern %q: %w", pattern, err)
	}
	return &LabelMatch{namespace: namespace, pattern: pattern, re: re}, nil
}

// MustLabelMatches is LabelMatches for patterns known to be valid
func MustLabelMatches(namespace, pattern string) *LabelMatch {
	c, err := LabelMatches(namespace, pattern)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *LabelMatch) Key() string {
	return "label/" + c.namespace + "/" + c.pattern
}

// Pattern returns the pattern as given
func (c *LabelMatch) Pattern() string {
	return c.pattern
}

func (c *LabelMatch) EdgeNamespace() string {
	return c.namespace
}

func (c *LabelMatch) AcceptEdge(e model.Edge) bool {
	if e.Namespace != c.namespace {
		return true
	}
	return c.re.MatchString(e.Label)
}

func (c *LabelMatch) AcceptVertex(v model.Vertex, ctx VertexContext) bool {
	return ctx.IsGroup || ctx.Touched
}
