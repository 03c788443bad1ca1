package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Errors for registry operations.
var (
	ErrDuplicateStore = errors.New("store already registered")
	ErrStoreNotFound  = errors.New("store not registered")
)

// Registry holds named stores for the lifetime of a checkout session.
// Each key is claimed exactly once.
type Registry struct {
	mu     sync.RWMutex
	stores map[string]any
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		stores: make(map[string]any),
	}
}

// Register claims key for store. Registering an already claimed key fails.
func (r *Registry) Register(key string, store any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.stores[key]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateStore, key)
	}
	r.stores[key] = store
	return nil
}

// Lookup returns the store registered under key.
func (r *Registry) Lookup(key string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	store, ok := r.stores[key]
	return store, ok
}

// Keys returns all registered keys in sorted order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.stores))
	for key := range r.stores {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
