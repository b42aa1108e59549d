// Package store provides the key/value persistence the tab tracker and
// closed-tab history are built on.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound is returned (wrapped) by Get for keys that were never set.
var ErrNotFound = errors.New("key not found")

// Store is a minimal key/value store holding JSON-encoded values.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// GetJSON decodes the value under key into v. It returns false, and leaves
// v untouched, when the key is absent.
func GetJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	raw, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}

// Memory is an in-process Store. The zero value is ready to use.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// Get returns a copy of the value stored under key.
func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", key, ErrNotFound)
	}
	return append([]byte(nil), v...), nil
}

// Set stores a copy of value under key.
func (m *Memory) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		m.data = make(map[string][]byte)
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

// Namespaced scopes every key of an underlying Store to one namespace, so
// several sessions can share a state file without seeing each other's
// values. Keys are stored as "<key>:<namespace>".
type Namespaced struct {
	next Store
	ns   string
}

// Namespace returns s scoped to ns. An empty ns returns s unchanged.
func Namespace(s Store, ns string) Store {
	if ns == "" {
		return s
	}
	return &Namespaced{next: s, ns: ns}
}

func (n *Namespaced) key(key string) string {
	return key + ":" + n.ns
}

// Get implements Store.
func (n *Namespaced) Get(ctx context.Context, key string) ([]byte, error) {
	return n.next.Get(ctx, n.key(key))
}

// Set implements Store.
func (n *Namespaced) Set(ctx context.Context, key string, value []byte) error {
	return n.next.Set(ctx, n.key(key), value)
}
