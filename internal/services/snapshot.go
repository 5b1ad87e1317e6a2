package services

import (
	"context"
	"errors"
	"fmt"

	"wisespend/internal/kv"
	"wisespend/internal/logger"
)

// keySnapshot records the values of a set of keys so a multi-key operation
// can be undone. A nil value means the key was absent.
type keySnapshot struct {
	medium  kv.Medium
	entries map[string]*string
	order   []string
}

func takeSnapshot(ctx context.Context, medium kv.Medium, keys ...string) (*keySnapshot, error) {
	s := &keySnapshot{medium: medium, entries: make(map[string]*string, len(keys))}
	if err := s.add(ctx, keys...); err != nil {
		return nil, err
	}
	return s, nil
}

// add records more keys. Keys already captured keep their first value.
func (s *keySnapshot) add(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if _, seen := s.entries[key]; seen {
			continue
		}
		value, ok, err := kv.Lookup(ctx, s.medium, key)
		if err != nil {
			return fmt.Errorf("snapshot %s: %w", key, err)
		}
		if ok {
			v := value
			s.entries[key] = &v
		} else {
			s.entries[key] = nil
		}
		s.order = append(s.order, key)
	}
	return nil
}

// data exposes the captured values for persisting as a backup blob.
func (s *keySnapshot) data() map[string]*string {
	return s.entries
}

// restore writes back every captured key, removing keys that were absent.
// It keeps going after a failure and reports all of them.
func (s *keySnapshot) restore(ctx context.Context) error {
	// Restores must run even when the caller's context is already done.
	ctx = context.WithoutCancel(ctx)

	var errs []error
	for i := len(s.order) - 1; i >= 0; i-- {
		key := s.order[i]
		var err error
		if v := s.entries[key]; v != nil {
			err = s.medium.Set(ctx, key, *v)
		} else {
			err = s.medium.Remove(ctx, key)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("restore %s: %w", key, err))
		}
	}
	if len(errs) > 0 {
		logger.Named("snapshot").Errorw("rollback incomplete", "keys", len(s.order), "failures", len(errs))
	}
	return errors.Join(errs...)
}
