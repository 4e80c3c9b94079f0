// Package lens composes raw topology providers into display graphs.
//
// A Container runs a fixed pipeline on every Graph call:
//
//  1. take the base provider as a layer
//  2. apply the provider chain bottom-up (merge auxiliary edges, hop filter)
//  3. pick the display vertices (hop reach, or group expansion by zoom level)
//  4. narrow edges with edge filters and map hidden endpoints to pseudo-edges
//  5. narrow vertices with vertex filters
//  6. fold collapsed vertex sets into their synthetic vertices
//  7. verify every edge attaches to display vertices
package lens

import "errors"

var (
	// ErrDisconnected is returned when a materialized edge attaches to a vertex
	// outside the display set
	ErrDisconnected = errors.New("edge endpoint outside display vertex set")
	// ErrInvalidChain is returned for provider chains with unknown or repeated stages
	ErrInvalidChain = errors.New("invalid provider chain")
	// ErrNoProvider is returned when a container has no base provider
	ErrNoProvider = errors.New("no base graph provider")
	// ErrClosed is returned by a container after Close
	ErrClosed = errors.New("container closed")
)

// PseudoNamespacePrefix prefixes the namespace of edges that stand in for raw
// edges between hidden vertices
const PseudoNamespacePrefix = "pseudo-"
