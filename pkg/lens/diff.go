package lens

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/ritzau/topology-lens/pkg/model"
)

// GraphDiff represents the difference between two display graphs
type GraphDiff struct {
	AddedVertices    []model.Vertex    `json:"addedVertices"`
	RemovedVertices  []model.VertexRef `json:"removedVertices"`
	ModifiedVertices []model.Vertex    `json:"modifiedVertices"` // Vertices with changed presentation
	AddedEdges       []model.Edge      `json:"addedEdges"`
	RemovedEdges     []model.EdgeRef   `json:"removedEdges"`
	ModifiedEdges    []model.Edge      `json:"modifiedEdges"` // Edges with moved endpoints or changed presentation
	FullGraph        bool              `json:"fullGraph"`     // True if this is a full graph, not a diff
}

// IsEmpty reports whether the diff carries no changes
func (d *GraphDiff) IsEmpty() bool {
	return !d.FullGraph &&
		len(d.AddedVertices) == 0 && len(d.RemovedVertices) == 0 && len(d.ModifiedVertices) == 0 &&
		len(d.AddedEdges) == 0 && len(d.RemovedEdges) == 0 && len(d.ModifiedEdges) == 0
}

// stateHash is the memo key of a container state
type stateHash struct {
	Chain      string
	Zoom       int
	Criteria   []string
	Generation uint64
}

// ComputeHash generates a hash identifying a container state
func ComputeHash(chain Chain, zoom int, criteriaKeys []string, generation uint64) string {
	// Serialize the state to JSON for hashing
	data := stateHash{
		Chain:      chain.String(),
		Zoom:       zoom,
		Criteria:   criteriaKeys,
		Generation: generation,
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return ""
	}

	hash := sha256.Sum256(jsonData)
	return fmt.Sprintf("%x", hash)
}

// ComputeDiff computes the difference between two display graphs.
// A nil old graph yields the full new graph.
func ComputeDiff(oldGraph, newGraph *Graph) *GraphDiff {
	// If no old graph, return full graph
	if oldGraph == nil {
		return &GraphDiff{
			AddedVertices: newGraph.DisplayVertices(),
			AddedEdges:    newGraph.DisplayEdges(),
			FullGraph:     true,
		}
	}

	diff := &GraphDiff{
		AddedVertices:    make([]model.Vertex, 0),
		RemovedVertices:  make([]model.VertexRef, 0),
		ModifiedVertices: make([]model.Vertex, 0),
		AddedEdges:       make([]model.Edge, 0),
		RemovedEdges:     make([]model.EdgeRef, 0),
		ModifiedEdges:    make([]model.Edge, 0),
	}

	// Find added and modified vertices
	for _, v := range newGraph.vertices {
		if old, exists := oldGraph.Vertex(v.VertexRef); exists {
			// Vertex exists - check if modified
			if old != v {
				diff.ModifiedVertices = append(diff.ModifiedVertices, v)
			}
		} else {
			diff.AddedVertices = append(diff.AddedVertices, v)
		}
	}

	// Find removed vertices
	for _, v := range oldGraph.vertices {
		if !newGraph.Contains(v.VertexRef) {
			diff.RemovedVertices = append(diff.RemovedVertices, v.VertexRef)
		}
	}

	// Find added and modified edges
	for _, e := range newGraph.edges {
		if old, exists := oldGraph.Edge(e.EdgeRef); exists {
			if old != e {
				diff.ModifiedEdges = append(diff.ModifiedEdges, e)
			}
		} else {
			diff.AddedEdges = append(diff.AddedEdges, e)
		}
	}

	// Find removed edges
	for _, e := range oldGraph.edges {
		if _, exists := newGraph.Edge(e.EdgeRef); !exists {
			diff.RemovedEdges = append(diff.RemovedEdges, e.EdgeRef)
		}
	}

	return diff
}
