package provider

import (
	"log/slog"
	"sort"
	"sync"
)

// Registry holds registered connectors keyed by descriptor ID.
//
// Registration is an idempotent upsert: registering under an existing ID
// replaces the previous connector wholesale. The registry is mutated only
// by Register; selection and pipeline execution read it without copying.
//
// Thread-safety: all methods are safe for concurrent use. In practice the
// registry is populated once at startup and read-only afterwards.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
	}
}

// Register upserts a connector under its descriptor ID.
// Re-registering the same ID replaces the previous connector.
func (r *Registry) Register(p Provider) {
	d := p.Descriptor()

	r.mu.Lock()
	_, replaced := r.providers[d.ID]
	r.providers[d.ID] = p
	r.mu.Unlock()

	slog.Debug("provider registered",
		"id", d.ID,
		"name", d.Name,
		"levels", len(d.Levels),
		"tokens", len(d.Tokens),
		"replaced", replaced,
	)
}

// Get returns the connector registered under id.
// Returns a ContractError with ErrCodeNotFound when the ID is unknown.
func (r *Registry) Get(id string) (Provider, error) {
	r.mu.RLock()
	p, ok := r.providers[id]
	r.mu.RUnlock()

	if !ok {
		return nil, NewNotFoundError(id)
	}
	return p, nil
}

// List returns all registered connectors ordered by ID.
// The stable order keeps candidate generation deterministic.
func (r *Registry) List() []Provider {
	r.mu.RLock()
	ids := make([]string, 0, len(r.providers))
	for id := range r.providers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]Provider, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.providers[id])
	}
	r.mu.RUnlock()

	return out
}

// Len returns the number of registered connectors.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}
