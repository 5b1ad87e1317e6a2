package kv

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
)

// Op names a Medium operation for failure injection.
type Op string

const (
	OpGet    Op = "get"
	OpSet    Op = "set"
	OpRemove Op = "remove"
	OpKeys   Op = "keys"
)

// MemoryMedium is an in-process Medium. FailOn, when set, is consulted before
// every operation and a non-nil result is returned instead of performing it.
type MemoryMedium struct {
	mu     sync.RWMutex
	data   map[string]string
	FailOn func(op Op, key string) error
}

// NewMemoryMedium returns an empty MemoryMedium.
func NewMemoryMedium() *MemoryMedium {
	return &MemoryMedium{data: make(map[string]string)}
}

func (m *MemoryMedium) fail(op Op, key string) error {
	if m.FailOn == nil {
		return nil
	}
	return m.FailOn(op, key)
}

func (m *MemoryMedium) Get(_ context.Context, key string) (string, error) {
	if err := m.fail(OpGet, key); err != nil {
		return "", err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryMedium) Set(_ context.Context, key, value string) error {
	if err := m.fail(OpSet, key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryMedium) Remove(_ context.Context, key string) error {
	if err := m.fail(OpRemove, key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemoryMedium) Keys(_ context.Context, prefix string) ([]string, error) {
	if err := m.fail(OpKeys, prefix); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0)
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

// Snapshot returns a copy of every stored entry.
func (m *MemoryMedium) Snapshot() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.data)
}
