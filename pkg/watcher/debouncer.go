package watcher

import (
	"context"
	"time"

	"github.com/ritzau/topology-lens/pkg/logging"
)

// Debouncer batches rapid file system events to avoid excessive reloads
type Debouncer struct {
	input       <-chan ChangeEvent
	output      chan ChangeEvent
	quietPeriod time.Duration
	maxWait     time.Duration
}

// NewDebouncer creates a new event debouncer. A batch is emitted once the
// input has been quiet for quietPeriod, or maxWait after its first event.
func NewDebouncer(input <-chan ChangeEvent, quietPeriod, maxWait time.Duration) *Debouncer {
	return &Debouncer{
		input:       input,
		output:      make(chan ChangeEvent, 10),
		quietPeriod: quietPeriod,
		maxWait:     maxWait,
	}
}

// Start begins processing events with debouncing
func (d *Debouncer) Start(ctx context.Context) {
	go d.run(ctx)
}

// run processes events and applies debouncing logic
func (d *Debouncer) run(ctx context.Context) {
	var (
		quiet       <-chan time.Time
		deadline    <-chan time.Time
		accumulated = make(map[ChangeType][]string)
		order       []ChangeType
		eventCount  int
	)

	flush := func() {
		quiet, deadline = nil, nil
		if eventCount == 0 {
			return
		}

		logging.Debug("flushing accumulated events", "count", eventCount)

		for _, changeType := range order {
			d.output <- ChangeEvent{
				Type:      changeType,
				Paths:     accumulated[changeType],
				Timestamp: time.Now(),
			}
		}

		// Reset accumulators
		accumulated = make(map[ChangeType][]string)
		order = nil
		eventCount = 0
	}

	defer close(d.output)

	for {
		select {
		case <-ctx.Done():
			flush()
			return

		case event, ok := <-d.input:
			if !ok {
				flush()
				return
			}

			// Accumulate event, keeping the order in which types first appeared
			if _, seen := accumulated[event.Type]; !seen {
				order = append(order, event.Type)
			}
			for _, path := range event.Paths {
				accumulated[event.Type] = appendUnique(accumulated[event.Type], path)
			}
			eventCount++

			// Reset quiet period; start max wait on first event
			quiet = time.After(d.quietPeriod)
			if deadline == nil {
				deadline = time.After(d.maxWait)
			}

		case <-quiet:
			flush()

		case <-deadline:
			flush()
		}
	}
}

// Output returns the channel of debounced events
func (d *Debouncer) Output() <-chan ChangeEvent {
	return d.output
}
