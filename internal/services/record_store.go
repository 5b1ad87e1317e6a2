package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "wisespend/internal/errors"
	"wisespend/internal/keyspace"
	"wisespend/internal/kv"
	"wisespend/internal/logger"
	"wisespend/internal/models"
	"wisespend/internal/period"
	"wisespend/internal/validator"
)

// recordStore persists bucket documents and period metadata.
type recordStore struct {
	medium kv.Medium
	keys   keyspace.Keyspace
	clock  Clock
	emit   func(Event)
}

// NewRecordStore creates a new RecordStorer. emit receives a bucketSaved
// event after every successful write; it may be nil.
func NewRecordStore(medium kv.Medium, keys keyspace.Keyspace, clock Clock, emit func(Event)) RecordStorer {
	if emit == nil {
		emit = func(Event) {}
	}
	return &recordStore{medium: medium, keys: keys, clock: clock, emit: emit}
}

func persistenceFailure(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Wrap(apperrors.ErrPersistenceFailure, err)
}

// ReadBucket returns the document stored for one bucket, or NOT_FOUND.
func (s *recordStore) ReadBucket(ctx context.Context, id period.ID, kind period.Kind) (models.Document, error) {
	raw, ok, err := s.ReadRawBucket(ctx, id, kind)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.WithMessage(apperrors.ErrNotFound, fmt.Sprintf("bucket %s of %s not found", kind, id))
	}
	doc, err := models.DecodeDocument(kind, raw)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}
	return doc, nil
}

// WriteBucket validates doc and replaces the stored bucket. On success the
// period's last-save timestamp moves forward; on failure both keys keep their
// previous values.
func (s *recordStore) WriteBucket(ctx context.Context, id period.ID, kind period.Kind, doc models.Document) error {
	if doc == nil || doc.Kind() != kind {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("document does not belong to bucket %s", kind))
	}
	if err := validator.Struct(doc); err != nil {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, err)
	}

	snap, err := takeSnapshot(ctx, s.medium, s.keys.Bucket(id, kind), s.keys.Meta(id))
	if err != nil {
		return persistenceFailure(err)
	}
	if err := s.medium.Set(ctx, s.keys.Bucket(id, kind), string(raw)); err != nil {
		return persistenceFailure(err)
	}
	if err := s.TouchLastSave(ctx, id, s.clock.Now()); err != nil {
		if rerr := snap.restore(ctx); rerr != nil {
			err = errors.Join(err, rerr)
		}
		return persistenceFailure(err)
	}

	ev := newEvent(EventBucketSaved, id, s.clock.Now())
	ev.Kind = kind
	s.emit(ev)
	return nil
}

// ReadAllBuckets loads every bucket present for a period. Missing buckets are
// reported, not fatal.
func (s *recordStore) ReadAllBuckets(ctx context.Context, id period.ID) (*models.PeriodRecord, *models.IntegrityReport, error) {
	record := &models.PeriodRecord{Period: id, Buckets: make(map[period.Kind]models.Document)}
	report := &models.IntegrityReport{Period: id, Complete: true, MissingKinds: []period.Kind{}}

	for _, kind := range period.AllKinds() {
		raw, ok, err := s.ReadRawBucket(ctx, id, kind)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			report.Complete = false
			report.MissingKinds = append(report.MissingKinds, kind)
			continue
		}
		doc, err := models.DecodeDocument(kind, raw)
		if err != nil {
			return nil, nil, apperrors.Wrap(apperrors.ErrInternal, err)
		}
		record.Buckets[kind] = doc
	}
	return record, report, nil
}

// ValidateIntegrity checks which buckets exist without decoding them.
func (s *recordStore) ValidateIntegrity(ctx context.Context, id period.ID) (*models.IntegrityReport, error) {
	report := &models.IntegrityReport{Period: id, Complete: true, MissingKinds: []period.Kind{}}
	for _, kind := range period.AllKinds() {
		_, ok, err := kv.Lookup(ctx, s.medium, s.keys.Bucket(id, kind))
		if err != nil {
			return nil, persistenceFailure(err)
		}
		if !ok {
			report.Complete = false
			report.MissingKinds = append(report.MissingKinds, kind)
		}
	}
	return report, nil
}

func (s *recordStore) ReadRawBucket(ctx context.Context, id period.ID, kind period.Kind) (json.RawMessage, bool, error) {
	value, ok, err := kv.Lookup(ctx, s.medium, s.keys.Bucket(id, kind))
	if err != nil {
		return nil, false, persistenceFailure(err)
	}
	if !ok {
		return nil, false, nil
	}
	return json.RawMessage(value), true, nil
}

func (s *recordStore) WriteRawBucket(ctx context.Context, id period.ID, kind period.Kind, raw json.RawMessage) error {
	if err := s.medium.Set(ctx, s.keys.Bucket(id, kind), string(raw)); err != nil {
		return persistenceFailure(err)
	}
	return nil
}

// ReadMeta returns the metadata of a period and whether it exists.
func (s *recordStore) ReadMeta(ctx context.Context, id period.ID) (*models.PeriodMeta, bool, error) {
	value, ok, err := kv.Lookup(ctx, s.medium, s.keys.Meta(id))
	if err != nil {
		return nil, false, persistenceFailure(err)
	}
	if !ok {
		return nil, false, nil
	}
	var meta models.PeriodMeta
	if err := json.Unmarshal([]byte(value), &meta); err != nil {
		return nil, false, apperrors.Wrap(apperrors.ErrInternal, fmt.Errorf("decode meta of %s: %w", id, err))
	}
	return &meta, true, nil
}

func (s *recordStore) WriteMeta(ctx context.Context, id period.ID, meta *models.PeriodMeta) error {
	raw, err := json.Marshal(meta)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, err)
	}
	if err := s.medium.Set(ctx, s.keys.Meta(id), string(raw)); err != nil {
		return persistenceFailure(err)
	}
	return nil
}

// TouchLastSave stamps the period's last-save time. Periods without metadata
// are left alone.
func (s *recordStore) TouchLastSave(ctx context.Context, id period.ID, at time.Time) error {
	meta, ok, err := s.ReadMeta(ctx, id)
	if err != nil || !ok {
		return err
	}
	at = at.UTC()
	meta.LastSave = &at
	return s.WriteMeta(ctx, id, meta)
}

// Backup copies every present bucket and the metadata of a period into a
// timestamped backup entry and returns its key.
func (s *recordStore) Backup(ctx context.Context, id period.ID, reason string) (string, error) {
	now := s.clock.Now().UTC()
	backup := models.PeriodBackup{
		Period:    id,
		Reason:    reason,
		Timestamp: now,
		Data:      make(map[period.Kind]json.RawMessage),
	}
	for _, kind := range period.AllKinds() {
		raw, ok, err := s.ReadRawBucket(ctx, id, kind)
		if err != nil {
			return "", err
		}
		if ok {
			backup.Data[kind] = raw
		}
	}
	meta, ok, err := s.ReadMeta(ctx, id)
	if err != nil {
		return "", err
	}
	if ok {
		backup.Meta = meta
	}

	raw, err := json.Marshal(backup)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternal, err)
	}
	key := s.keys.PeriodBackup(id, now)
	if err := s.medium.Set(ctx, key, string(raw)); err != nil {
		return "", persistenceFailure(err)
	}
	logger.Named("store").Infow("period backup written", "period", id.String(), "reason", reason, "key", key)
	return key, nil
}

// RemovePeriod deletes every bucket and the metadata of a period.
func (s *recordStore) RemovePeriod(ctx context.Context, id period.ID) error {
	for _, key := range s.keys.PeriodKeys(id) {
		if err := s.medium.Remove(ctx, key); err != nil {
			return persistenceFailure(err)
		}
	}
	return nil
}
