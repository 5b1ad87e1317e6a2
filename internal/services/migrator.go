package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	apperrors "wisespend/internal/errors"
	"wisespend/internal/keyspace"
	"wisespend/internal/kv"
	"wisespend/internal/logger"
	"wisespend/internal/models"
	"wisespend/internal/period"
	"wisespend/internal/uuid"
)

// MigrationResult reports what a migration run did.
type MigrationResult struct {
	Period        period.ID     `json:"period"`
	Skipped       bool          `json:"skipped"`
	Reason        string        `json:"reason,omitempty"`
	BackupKey     string        `json:"backup_key,omitempty"`
	ImportedKinds []period.Kind `json:"imported_kinds"`
}

// migrator imports the flat legacy dataset into the current calendar period.
type migrator struct {
	store     RecordStorer
	index     PeriodIndexer
	lifecycle LifecycleManager
	medium    kv.Medium
	keys      keyspace.Keyspace
	clock     Clock
	emit      func(Event)
	newID     func() string
}

// NewLegacyMigrator creates a new LegacyMigrator.
func NewLegacyMigrator(store RecordStorer, index PeriodIndexer, lifecycle LifecycleManager,
	medium kv.Medium, keys keyspace.Keyspace, clock Clock, emit func(Event)) LegacyMigrator {
	if emit == nil {
		emit = func(Event) {}
	}
	return &migrator{
		store:     store,
		index:     index,
		lifecycle: lifecycle,
		medium:    medium,
		keys:      keys,
		clock:     clock,
		emit:      emit,
		newID:     uuid.New,
	}
}

// Run imports legacy data unless the current period is already indexed or an
// earlier run completed. On failure every touched key is restored and
// MIGRATION_FAILURE is returned.
func (m *migrator) Run(ctx context.Context) (*MigrationResult, error) {
	log := logger.Named("migration")
	now := m.clock.Now()
	current := period.FromTime(now)
	result := &MigrationResult{Period: current, ImportedKinds: []period.Kind{}}

	idx, err := m.index.Load(ctx)
	if err != nil {
		return nil, m.fail(current, err)
	}
	if slices.Contains(idx.Periods, current) {
		result.Skipped = true
		result.Reason = "current period already indexed"
		return result, nil
	}
	if idx.LegacyMigratedAt != nil {
		result.Skipped = true
		result.Reason = "legacy data already migrated"
		return result, nil
	}

	legacyKeys, err := m.medium.Keys(ctx, m.keys.LegacyPrefix())
	if err != nil {
		return nil, m.fail(current, err)
	}
	touched := append(slices.Clone(legacyKeys), m.keys.PeriodKeys(current)...)
	touched = append(touched, m.keys.Index())

	snap, err := takeSnapshot(ctx, m.medium, touched...)
	if err != nil {
		return nil, m.fail(current, err)
	}
	backupKey, err := m.writeBackup(ctx, snap)
	if err != nil {
		return nil, m.fail(current, err)
	}
	result.BackupKey = backupKey
	log.Infow("legacy backup written", "key", backupKey, "legacy_keys", len(legacyKeys))

	if err := m.importInto(ctx, current, result); err != nil {
		if rerr := snap.restore(ctx); rerr != nil {
			err = errors.Join(err, rerr)
		}
		log.Errorw("migration rolled back", "period", current.String(), "error", err)
		return nil, m.fail(current, err)
	}

	log.Infow("migration completed", "period", current.String(), "imported", len(result.ImportedKinds))
	m.emit(newEvent(EventMigrationCompleted, current, m.clock.Now()))
	return result, nil
}

func (m *migrator) importInto(ctx context.Context, current period.ID, result *MigrationResult) error {
	for _, kind := range period.AllKinds() {
		raw, ok, err := kv.Lookup(ctx, m.medium, m.keys.Legacy(kind))
		if err != nil {
			return fmt.Errorf("read legacy %s: %w", kind, err)
		}
		if !ok {
			continue
		}
		doc, err := models.DecodeLegacy(kind, []byte(raw), m.newID)
		if err != nil {
			return err
		}
		encoded, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		if err := m.store.WriteRawBucket(ctx, current, kind, encoded); err != nil {
			return fmt.Errorf("write %s: %w", kind, err)
		}
		result.ImportedKinds = append(result.ImportedKinds, kind)
	}

	if err := m.index.Add(ctx, current); err != nil {
		return err
	}
	if err := m.index.MarkMigrated(ctx, m.clock.Now()); err != nil {
		return err
	}
	return m.lifecycle.ForceActive(ctx, current)
}

func (m *migrator) writeBackup(ctx context.Context, snap *keySnapshot) (string, error) {
	now := m.clock.Now().UTC()
	raw, err := json.Marshal(models.LegacyBackup{Timestamp: now, Data: snap.data()})
	if err != nil {
		return "", err
	}
	key := m.keys.LegacyBackup(now)
	if err := m.medium.Set(ctx, key, string(raw)); err != nil {
		return "", err
	}
	return key, nil
}

func (m *migrator) fail(current period.ID, err error) error {
	wrapped := apperrors.Wrap(apperrors.ErrMigrationFailure, err)
	m.emit(newErrorEvent(EventMigrationError, current, m.clock.Now(), wrapped))
	return wrapped
}
