// Package kv provides the persisted key-value medium the period store is
// written against.
package kv

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Get when the key is absent.
	ErrNotFound = errors.New("kv: key not found")
	// ErrUnavailable wraps failures of the backing store itself.
	ErrUnavailable = errors.New("kv: medium unavailable")
)

// Medium is a string-keyed store with atomic single-key writes.
type Medium interface {
	// Get returns the value stored under key or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set replaces the value stored under key.
	Set(ctx context.Context, key, value string) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	// Keys lists every key starting with prefix, sorted ascending.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Lookup reads key and reports whether it exists, folding ErrNotFound into ok.
func Lookup(ctx context.Context, m Medium, key string) (value string, ok bool, err error) {
	value, err = m.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}
