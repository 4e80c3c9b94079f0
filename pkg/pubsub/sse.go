package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/ritzau/topology-lens/pkg/logging"
)

// subscriberQueue is the per-subscription channel capacity
const subscriberQueue = 100

// TopicConfig configures buffering behavior for a topic
type TopicConfig struct {
	BufferSize int  // Number of events to buffer (0 = no buffering)
	ReplayAll  bool // If true, replay all buffered events; if false, only replay last event

	// CloseLagging ends subscriptions that cannot keep up instead of dropping
	// single events. Diff streams need this: a client that missed a diff has
	// to reconnect for a fresh snapshot.
	CloseLagging bool
}

// topicState is everything the publisher tracks for one topic
type topicState struct {
	config      TopicConfig
	subscribers map[*sseSubscription]struct{}
	version     int
	buffer      []Event // most recent events, at most config.BufferSize
}

// SSEPublisher implements Publisher using Server-Sent Events
type SSEPublisher struct {
	mu     sync.RWMutex
	topics map[string]*topicState
	closed bool
}

// NewSSEPublisher creates a new SSE-based publisher
func NewSSEPublisher() *SSEPublisher {
	return &SSEPublisher{
		topics: make(map[string]*topicState),
	}
}

// topic returns the state of a topic, creating it on first use.
// The caller holds p.mu for writing.
func (p *SSEPublisher) topic(name string) *topicState {
	t, ok := p.topics[name]
	if !ok {
		t = &topicState{subscribers: make(map[*sseSubscription]struct{})}
		p.topics[name] = t
	}
	return t
}

// ConfigureTopic sets buffering configuration for a topic
func (p *SSEPublisher) ConfigureTopic(topic string, config TopicConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topic(topic).config = config
}

// Subscribe creates a new subscription to a topic. Buffered events are
// queued on the subscription before it is returned.
func (p *SSEPublisher) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrClosed
	}

	sub := &sseSubscription{
		topic:     topic,
		events:    make(chan Event, subscriberQueue),
		publisher: p,
	}
	t := p.topic(topic)
	t.subscribers[sub] = struct{}{}

	replay := t.buffer
	if !t.config.ReplayAll && len(replay) > 1 {
		replay = replay[len(replay)-1:]
	}
	if len(replay) > subscriberQueue {
		replay = replay[len(replay)-subscriberQueue:]
	}
	// The channel is empty and holds the whole replay, so this cannot block
	for _, event := range replay {
		sub.events <- event
	}
	p.mu.Unlock()

	if len(replay) > 0 {
		logging.Debug("Replayed events to new subscriber", "topic", topic, "count", len(replay))
	}

	go func() {
		<-ctx.Done()
		sub.Close()
	}()

	return sub, nil
}

// Publish sends an event to all subscribers of a topic
func (p *SSEPublisher) Publish(topic string, eventType string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	t := p.topic(topic)
	t.version++
	event := Event{
		Topic:   topic,
		Type:    eventType,
		Data:    jsonData,
		Version: t.version,
	}

	if size := t.config.BufferSize; size > 0 {
		t.buffer = append(t.buffer, event)
		if len(t.buffer) > size {
			t.buffer = append([]Event(nil), t.buffer[len(t.buffer)-size:]...)
		}
	}

	for sub := range t.subscribers {
		select {
		case sub.events <- event:
		default:
			if t.config.CloseLagging {
				logging.Warn("Subscriber fell behind, closing subscription", "topic", topic, "version", event.Version)
				delete(t.subscribers, sub)
				close(sub.events)
				continue
			}
			logging.Warn("Subscription channel full, dropping event", "topic", topic, "version", event.Version)
		}
	}

	return nil
}

// Close shuts down the publisher and all subscriptions
func (p *SSEPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	for _, t := range p.topics {
		for sub := range t.subscribers {
			close(sub.events)
		}
		t.subscribers = make(map[*sseSubscription]struct{})
	}
	return nil
}

// Subscribers returns the number of live subscriptions to a topic
func (p *SSEPublisher) Subscribers(topic string) int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if t, ok := p.topics[topic]; ok {
		return len(t.subscribers)
	}
	return 0
}

// unsubscribe removes a subscription (called by subscription.Close())
func (p *SSEPublisher) unsubscribe(sub *sseSubscription) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if t, ok := p.topics[sub.topic]; ok {
		delete(t.subscribers, sub)
	}
}

// sseSubscription implements Subscription
type sseSubscription struct {
	topic     string
	events    chan Event
	publisher *SSEPublisher
	closeOnce sync.Once
}

func (s *sseSubscription) Topic() string {
	return s.topic
}

// Events returns the event channel. It is closed when the publisher closes
// or drops a lagging subscriber, not by Close.
func (s *sseSubscription) Events() <-chan Event {
	return s.events
}

// Close unregisters the subscription
func (s *sseSubscription) Close() error {
	s.closeOnce.Do(func() {
		s.publisher.unsubscribe(s)
	})
	return nil
}

// WriteSSE writes an event to an SSE response writer.
// Format: "id: {version}\ndata: {json}\n\n"; the id lets reconnecting
// clients report the last version they saw.
func WriteSSE(w io.Writer, event Event) error {
	jsonData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = fmt.Fprintf(w, "id: %d\ndata: %s\n\n", event.Version, jsonData)
	return err
}
