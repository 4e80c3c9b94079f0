package provider

import (
	"sync"

	"github.com/ritzau/topology-lens/pkg/logging"
	"github.com/ritzau/topology-lens/pkg/model"
)

// Registry tracks the auxiliary edge providers bound to a container.
// Providers are identified by namespace and iterate in bind order.
type Registry struct {
	mu        sync.RWMutex
	providers []EdgeProvider
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{}
}

// Bind registers a provider. Binding a namespace that is already bound
// replaces the old provider in place.
func (r *Registry) Bind(p EdgeProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.providers {
		if existing.Namespace() == p.Namespace() {
			r.providers[i] = p
			logging.Debug("edge provider rebound", "namespace", p.Namespace())
			return
		}
	}

	r.providers = append(r.providers, p)
	logging.Debug("edge provider bound", "namespace", p.Namespace(), "edges", len(p.Edges()))
}

// Unbind removes the provider for a namespace, reporting whether one was bound
func (r *Registry) Unbind(namespace string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.providers {
		if existing.Namespace() == namespace {
			r.providers = append(r.providers[:i:i], r.providers[i+1:]...)
			logging.Debug("edge provider unbound", "namespace", namespace)
			return true
		}
	}
	return false
}

// Providers returns the bound providers in bind order
func (r *Registry) Providers() []EdgeProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]EdgeProvider, len(r.providers))
	copy(result, r.providers)
	return result
}

// Edges returns the edges of the provider bound for namespace.
// An unbound namespace contributes no edges.
func (r *Registry) Edges(namespace string) []model.Edge {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.providers {
		if p.Namespace() == namespace {
			return p.Edges()
		}
	}
	return nil
}

// Len returns the number of bound providers
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}

// Clear unbinds every provider
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers = nil
}
