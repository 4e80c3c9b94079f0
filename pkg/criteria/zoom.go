package criteria

import "fmt"

// SemanticZoomLevelKey is the key of the zoom level criterion; a container
// holds exactly one
const SemanticZoomLevelKey = "szl"

// SemanticZoomLevel controls how deep into the group hierarchy the display
// expands, or the hop radius when the provider chain filters by focus
type SemanticZoomLevel struct {
	Level int
}

func (c SemanticZoomLevel) Key() string {
	return SemanticZoomLevelKey
}

func (c SemanticZoomLevel) StateKey() string {
	return fmt.Sprintf("%d", c.Level)
}
