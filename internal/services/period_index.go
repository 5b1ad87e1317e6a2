package services

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	apperrors "wisespend/internal/errors"
	"wisespend/internal/keyspace"
	"wisespend/internal/kv"
	"wisespend/internal/models"
	"wisespend/internal/period"
)

// periodIndex keeps the list of known periods under its own key so it can be
// read without loading any period data.
type periodIndex struct {
	medium kv.Medium
	keys   keyspace.Keyspace
	clock  Clock
}

// NewPeriodIndex creates a new PeriodIndexer.
func NewPeriodIndex(medium kv.Medium, keys keyspace.Keyspace, clock Clock) PeriodIndexer {
	return &periodIndex{medium: medium, keys: keys, clock: clock}
}

// Load returns the persisted index, or an empty one if none was written yet.
func (x *periodIndex) Load(ctx context.Context) (*models.PeriodIndex, error) {
	value, ok, err := kv.Lookup(ctx, x.medium, x.keys.Index())
	if err != nil {
		return nil, persistenceFailure(err)
	}
	idx := &models.PeriodIndex{Periods: []period.ID{}}
	if !ok {
		return idx, nil
	}
	if err := json.Unmarshal([]byte(value), idx); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, fmt.Errorf("decode period index: %w", err))
	}
	if idx.Periods == nil {
		idx.Periods = []period.ID{}
	}
	period.SortDescending(idx.Periods)
	return idx, nil
}

func (x *periodIndex) save(ctx context.Context, idx *models.PeriodIndex) error {
	idx.LastUpdated = x.clock.Now().UTC()
	raw, err := json.Marshal(idx)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, err)
	}
	if err := x.medium.Set(ctx, x.keys.Index(), string(raw)); err != nil {
		return persistenceFailure(err)
	}
	return nil
}

func (x *periodIndex) update(ctx context.Context, fn func(idx *models.PeriodIndex) bool) error {
	idx, err := x.Load(ctx)
	if err != nil {
		return err
	}
	if !fn(idx) {
		return nil
	}
	return x.save(ctx, idx)
}

// List returns every known period, most recent first.
func (x *periodIndex) List(ctx context.Context) ([]period.ID, error) {
	idx, err := x.Load(ctx)
	if err != nil {
		return nil, err
	}
	return idx.Periods, nil
}

func (x *periodIndex) Contains(ctx context.Context, id period.ID) (bool, error) {
	ids, err := x.List(ctx)
	if err != nil {
		return false, err
	}
	return slices.Contains(ids, id), nil
}

// Add inserts id and keeps the list sorted. Adding a known period is a no-op.
func (x *periodIndex) Add(ctx context.Context, id period.ID) error {
	return x.update(ctx, func(idx *models.PeriodIndex) bool {
		if slices.Contains(idx.Periods, id) {
			return false
		}
		idx.Periods = append(idx.Periods, id)
		period.SortDescending(idx.Periods)
		return true
	})
}

// Remove drops id from the index. Only purge calls this.
func (x *periodIndex) Remove(ctx context.Context, id period.ID) error {
	return x.update(ctx, func(idx *models.PeriodIndex) bool {
		i := slices.Index(idx.Periods, id)
		if i < 0 {
			return false
		}
		idx.Periods = slices.Delete(idx.Periods, i, i+1)
		if idx.Current == id {
			idx.Current = period.ID{}
			if len(idx.Periods) > 0 {
				idx.Current = idx.Periods[0]
			}
		}
		return true
	})
}

func (x *periodIndex) CurrentPointer(ctx context.Context) (period.ID, error) {
	idx, err := x.Load(ctx)
	if err != nil {
		return period.ID{}, err
	}
	return idx.Current, nil
}

func (x *periodIndex) SetCurrentPointer(ctx context.Context, id period.ID) error {
	return x.update(ctx, func(idx *models.PeriodIndex) bool {
		if idx.Current == id {
			return false
		}
		idx.Current = id
		return true
	})
}

// MarkMigrated records that the legacy import has run for this installation.
func (x *periodIndex) MarkMigrated(ctx context.Context, at time.Time) error {
	return x.update(ctx, func(idx *models.PeriodIndex) bool {
		at = at.UTC()
		idx.LegacyMigratedAt = &at
		return true
	})
}

// SetPendingRollover records the calendar period awaiting manual creation.
// The zero ID clears it.
func (x *periodIndex) SetPendingRollover(ctx context.Context, id period.ID) error {
	return x.update(ctx, func(idx *models.PeriodIndex) bool {
		if idx.PendingRollover == id {
			return false
		}
		idx.PendingRollover = id
		return true
	})
}
