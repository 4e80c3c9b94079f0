package lens

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/ritzau/topology-lens/pkg/criteria"
	"github.com/ritzau/topology-lens/pkg/logging"
	"github.com/ritzau/topology-lens/pkg/provider"
)

// Option configures a Container
type Option func(*Container)

// WithChain sets the provider chain. The default is FlatChain.
func WithChain(chain Chain) Option {
	return func(c *Container) {
		c.chain = append(Chain(nil), chain...)
	}
}

// WithEdgeProviders binds auxiliary edge providers at construction
func WithEdgeProviders(providers ...provider.EdgeProvider) Option {
	return func(c *Container) {
		for _, p := range providers {
			c.registry.Bind(p)
		}
	}
}

// WithMemo enables or disables reuse of the last graph while the container
// state is unchanged. Enabled by default.
func WithMemo(enabled bool) Option {
	return func(c *Container) {
		c.memo = enabled
	}
}

// Container holds a base provider, its bound edge providers and the active
// criteria, and materializes display graphs from them
type Container struct {
	mu sync.Mutex

	base     provider.GraphProvider
	registry *provider.Registry
	chain    Chain
	zoom     criteria.SemanticZoomLevel
	criteria []criteria.Criterion

	// generation counts provider changes for the memo key
	generation uint64
	memo       bool
	lastHash   string
	last       *Graph
	closed     bool

	logger *slog.Logger
}

// NewContainer creates a container over a base provider
func NewContainer(base provider.GraphProvider, opts ...Option) (*Container, error) {
	if base == nil {
		return nil, ErrNoProvider
	}

	c := &Container{
		base:     base,
		registry: provider.NewRegistry(),
		chain:    append(Chain(nil), FlatChain...),
		memo:     true,
		logger:   logging.New("lens.container"),
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.chain.Validate(); err != nil {
		return nil, err
	}

	c.logger.Debug("Container created", "namespace", base.Namespace(), "chain", c.chain.String(), "edgeProviders", c.registry.Len())
	return c, nil
}

// Graph materializes the display graph for the current state
func (c *Container) Graph() (*Graph, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}

	hash := ComputeHash(c.chain, c.zoom.Level, c.criteriaKeys(), c.generation)
	if c.memo && c.last != nil && hash == c.lastHash {
		c.logger.Debug("Reusing memoized graph", "hash", hash[:12])
		return c.last, nil
	}

	layer := c.chain.apply(layerFromProvider(c.base), chainInput{
		registry: c.registry,
		criteria: c.criteria,
		zoom:     c.zoom.Level,
	})

	g, err := RenderGraph(layer, c.zoom.Level, c.criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to render graph: %w", err)
	}

	c.last = g
	c.lastHash = hash
	return g, nil
}

// SetSemanticZoomLevel sets the zoom level. Negative levels clamp to 0.
func (c *Container) SetSemanticZoomLevel(level int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.zoom.Level = max(level, 0)
}

// SemanticZoomLevel returns the current zoom level
func (c *Container) SemanticZoomLevel() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.zoom.Level
}

// AddCriteria adds a criterion. Adding a criterion whose key is already
// present does nothing and returns false. A SemanticZoomLevel replaces the
// container's zoom level.
func (c *Container) AddCriteria(crit criteria.Criterion) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if szl, ok := crit.(criteria.SemanticZoomLevel); ok {
		c.zoom.Level = max(szl.Level, 0)
		return true
	}

	if c.indexOf(crit.Key()) >= 0 {
		return false
	}
	c.criteria = append(c.criteria, crit)
	c.logger.Debug("Criterion added", "key", crit.Key())
	return true
}

// RemoveCriteria removes the criterion with the same key, reporting whether
// one was present. The zoom criterion cannot be removed.
func (c *Container) RemoveCriteria(crit criteria.Criterion) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(crit.Key())
	if i < 0 {
		return false
	}
	c.criteria = append(c.criteria[:i:i], c.criteria[i+1:]...)
	c.logger.Debug("Criterion removed", "key", crit.Key())
	return true
}

// FindCriteria returns the active criterion with a key
func (c *Container) FindCriteria(key string) (criteria.Criterion, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if key == criteria.SemanticZoomLevelKey {
		return c.zoom, true
	}
	if i := c.indexOf(key); i >= 0 {
		return c.criteria[i], true
	}
	return nil, false
}

// Criteria returns the zoom criterion followed by the active criteria in
// add order
func (c *Container) Criteria() []criteria.Criterion {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make([]criteria.Criterion, 0, len(c.criteria)+1)
	result = append(result, c.zoom)
	result = append(result, c.criteria...)
	return result
}

// Update runs fn while holding the container lock. Stateful criteria owned by
// the container must be mutated through Update when graphs are requested
// concurrently.
func (c *Container) Update(fn func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return fn()
}

// BindEdgeProvider binds an auxiliary edge provider, replacing any provider
// bound to the same namespace
func (c *Container) BindEdgeProvider(p provider.EdgeProvider) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.registry.Bind(p)
	c.generation++
}

// UnbindEdgeProvider unbinds the provider of a namespace
func (c *Container) UnbindEdgeProvider(namespace string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.registry.Unbind(namespace) {
		return false
	}
	c.generation++
	return true
}

// EdgeProviders returns the bound edge providers in bind order
func (c *Container) EdgeProviders() []provider.EdgeProvider {
	return c.registry.Providers()
}

// SetBaseProvider swaps the base provider, keeping criteria and bindings
func (c *Container) SetBaseProvider(base provider.GraphProvider) error {
	if base == nil {
		return ErrNoProvider
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.base = base
	c.generation++
	c.logger.Info("Base provider replaced", "namespace", base.Namespace(), "vertices", len(base.Vertices()))
	return nil
}

// BaseProvider returns the current base provider
func (c *Container) BaseProvider() provider.GraphProvider {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.base
}

// Chain returns the provider chain
func (c *Container) Chain() Chain {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append(Chain(nil), c.chain...)
}

// Close unbinds all edge providers and drops the criteria. Graph fails with
// ErrClosed afterwards.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.registry.Clear()
	c.criteria = nil
	c.last = nil
	c.lastHash = ""
	c.closed = true
	c.logger.Debug("Container closed")
	return nil
}

func (c *Container) indexOf(key string) int {
	for i, existing := range c.criteria {
		if existing.Key() == key {
			return i
		}
	}
	return -1
}

// criteriaKeys lists key and state of every criterion for the memo hash
func (c *Container) criteriaKeys() []string {
	keys := make([]string, 0, len(c.criteria))
	for _, crit := range c.criteria {
		key := crit.Key()
		if s, ok := crit.(criteria.Stateful); ok {
			key += "=" + s.StateKey()
		}
		keys = append(keys, key)
	}
	return keys
}
