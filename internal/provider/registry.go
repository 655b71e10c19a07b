package provider

import (
	"fmt"
	"io"
	"sort"
	"sync"
)

// Registry manages the adapters available to a decision engine. It is an
// explicit object injected into the engine's constructor; there is no
// ambient process-wide provider table.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[string]Adapter),
	}
}

// Register adds an adapter to the registry
func (r *Registry) Register(adapter Adapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := adapter.Name()
	if _, exists := r.adapters[name]; exists {
		return fmt.Errorf("provider %s already registered", name)
	}

	r.adapters[name] = adapter
	return nil
}

// Get retrieves an adapter by name
func (r *Registry) Get(name string) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	adapter, exists := r.adapters[name]
	if !exists {
		return nil, fmt.Errorf("provider %s not found", name)
	}

	return adapter, nil
}

// List returns all registered provider names, sorted for stable display
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Close releases any adapter holding resources and empties the registry.
// Adapters opt in by implementing io.Closer; the stock adapters hold only
// an http.Client and have nothing to release.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for name, adapter := range r.adapters {
		if closer, ok := adapter.(io.Closer); ok {
			if err := closer.Close(); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("close provider %s: %w", name, err)
			}
		}
	}
	r.adapters = make(map[string]Adapter)
	return firstErr
}

// LoadFromConfig builds and registers adapters for every enabled entry.
func (r *Registry) LoadFromConfig(configs []Config) error {
	for _, cfg := range configs {
		if !cfg.Enabled {
			continue
		}

		adapter, err := NewFromConfig(cfg)
		if err != nil {
			return fmt.Errorf("failed to create provider %s: %w", cfg.Name, err)
		}

		if err := r.Register(adapter); err != nil {
			return err
		}
	}
	return nil
}
