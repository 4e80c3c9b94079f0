package pubsub

import (
	"context"
	"encoding/json"
	"errors"
)

// Topics published by the server
const (
	// TopicSourceStatus carries SourceStatus events about topology loading
	TopicSourceStatus = "source_status"
	// TopicDisplayGraph carries display graph snapshots and diffs
	TopicDisplayGraph = "display_graph"
)

// Event types on TopicDisplayGraph
const (
	EventGraphFull = "full"
	EventGraphDiff = "diff"
)

// ErrClosed is returned by a closed publisher
var ErrClosed = errors.New("publisher is closed")

// Event represents a pub/sub event
type Event struct {
	Topic   string          `json:"topic"`   // Subscription topic (e.g., "source_status", "display_graph")
	Type    string          `json:"type"`    // Event type (e.g., "loading", "ready", "diff")
	Data    json.RawMessage `json:"data"`    // Event payload
	Version int             `json:"version"` // Version number for ordering
}

// Subscription represents a client subscription to a topic
type Subscription interface {
	// Topic returns the subscription topic
	Topic() string

	// Events returns a channel for receiving events
	Events() <-chan Event

	// Close closes the subscription
	Close() error
}

// Publisher manages pub/sub subscriptions and event publishing
type Publisher interface {
	// Subscribe creates a new subscription to a topic
	// Context cancellation will close the subscription
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// Publish sends an event to all subscribers of a topic
	Publish(topic string, eventType string, data interface{}) error

	// Close shuts down the publisher and all subscriptions
	Close() error
}

// SourceStatus describes the state of the topology source
type SourceStatus struct {
	State   string `json:"state"`   // loading, ready, error
	Source  string `json:"source"`  // Document path
	Message string `json:"message"` // Human-readable status message
}
