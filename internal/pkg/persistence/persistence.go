// Package persistence is the durable key-value capability that replaces the
// browser's local storage. Every component that keeps state (admin token,
// customer identity, cart) receives a Store instead of touching global state.
package persistence

import (
	"context"
	"errors"
	"sync"
)

// Well-known keys, kept identical to the web client's local storage keys
const (
	KeyAdminToken = "ADMIN_TOKEN"
	KeyCustomerID = "customerId"
	KeyCart       = "cart"
)

// ErrNotFound is returned by Get when the key has no value
var ErrNotFound = errors.New("persistence: key not found")

// Store is a string key-value store
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// MemoryStore is an in-process Store
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

// Get returns the value for key or ErrNotFound
func (m *MemoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

// Set stores value under key
func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Remove deletes key; removing a missing key is not an error
func (m *MemoryStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Len reports the number of stored keys
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Namespaced scopes a Store to one visitor, the way each browser has its own local storage
type Namespaced struct {
	store  Store
	prefix string
}

// Namespace returns a view of store whose keys are prefixed with "<namespace>:"
func Namespace(store Store, namespace string) *Namespaced {
	return &Namespaced{store: store, prefix: namespace + ":"}
}

func (n *Namespaced) Get(ctx context.Context, key string) (string, error) {
	return n.store.Get(ctx, n.prefix+key)
}

func (n *Namespaced) Set(ctx context.Context, key, value string) error {
	return n.store.Set(ctx, n.prefix+key, value)
}

func (n *Namespaced) Remove(ctx context.Context, key string) error {
	return n.store.Remove(ctx, n.prefix+key)
}
