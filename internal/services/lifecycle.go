package services

import (
	"context"
	"errors"
	"fmt"

	apperrors "wisespend/internal/errors"
	"wisespend/internal/keyspace"
	"wisespend/internal/kv"
	"wisespend/internal/logger"
	"wisespend/internal/models"
	"wisespend/internal/period"
)

// lifecycle implements the period state machine. It does not lock; the
// orchestrator serializes every call.
type lifecycle struct {
	store    RecordStorer
	index    PeriodIndexer
	medium   kv.Medium
	keys     keyspace.Keyspace
	clock    Clock
	policy   Policy
	autosave *Ticker
	emit     func(Event)
}

// NewLifecycle creates a new LifecycleManager. autosave is started while at
// least one period is unlocked and stopped otherwise.
func NewLifecycle(store RecordStorer, index PeriodIndexer, medium kv.Medium, keys keyspace.Keyspace,
	clock Clock, policy Policy, autosave *Ticker, emit func(Event)) LifecycleManager {
	if emit == nil {
		emit = func(Event) {}
	}
	return &lifecycle{
		store:    store,
		index:    index,
		medium:   medium,
		keys:     keys,
		clock:    clock,
		policy:   policy,
		autosave: autosave,
		emit:     emit,
	}
}

func (l *lifecycle) requireIndexed(ctx context.Context, id period.ID) error {
	ok, err := l.index.Contains(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.WithMessage(apperrors.ErrUnknownPeriod, fmt.Sprintf("period %s does not exist", id))
	}
	return nil
}

// stateOf reads a period's state. A period without metadata is archived.
func (l *lifecycle) stateOf(ctx context.Context, id period.ID) (period.State, error) {
	meta, ok, err := l.store.ReadMeta(ctx, id)
	if err != nil {
		return "", err
	}
	if !ok {
		return period.StateArchived, nil
	}
	return meta.State, nil
}

// State returns the state of an indexed period.
func (l *lifecycle) State(ctx context.Context, id period.ID) (period.State, error) {
	if err := l.requireIndexed(ctx, id); err != nil {
		return "", err
	}
	return l.stateOf(ctx, id)
}

// States returns the state of every indexed period.
func (l *lifecycle) States(ctx context.Context) (map[period.ID]period.State, error) {
	ids, err := l.index.List(ctx)
	if err != nil {
		return nil, err
	}
	states := make(map[period.ID]period.State, len(ids))
	for _, id := range ids {
		st, err := l.stateOf(ctx, id)
		if err != nil {
			return nil, err
		}
		states[id] = st
	}
	return states, nil
}

func (l *lifecycle) periodsIn(ctx context.Context, want period.State) ([]period.ID, error) {
	ids, err := l.index.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []period.ID
	for _, id := range ids {
		st, err := l.stateOf(ctx, id)
		if err != nil {
			return nil, err
		}
		if st == want {
			out = append(out, id)
		}
	}
	return out, nil
}

// ActivePeriod returns the period in the Active state, if any.
func (l *lifecycle) ActivePeriod(ctx context.Context) (period.ID, bool, error) {
	active, err := l.periodsIn(ctx, period.StateActive)
	if err != nil || len(active) == 0 {
		return period.ID{}, false, err
	}
	if len(active) > 1 {
		logger.Named("lifecycle").Warnw("more than one active period", "periods", fmt.Sprint(active))
	}
	return active[0], true, nil
}

func (l *lifecycle) UnlockedPeriods(ctx context.Context) ([]period.ID, error) {
	return l.periodsIn(ctx, period.StateUnlocked)
}

func (l *lifecycle) setState(ctx context.Context, id period.ID, state period.State) error {
	meta, ok, err := l.store.ReadMeta(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		meta = &models.PeriodMeta{}
	}
	now := l.clock.Now().UTC()
	meta.State = state
	meta.LastStateChange = now
	meta.Editable = state.Editable()
	meta.AutoSave = state.AutoSave()
	if state == period.StateUnlocked {
		meta.UnlockedAt = &now
	} else {
		meta.UnlockedAt = nil
	}
	return l.store.WriteMeta(ctx, id, meta)
}

// transaction runs fn with the given keys snapshotted and restores them if fn
// fails. Events queued by fn are only emitted on success.
func (l *lifecycle) transaction(ctx context.Context, keys []string, fn func(emit func(Event)) error) error {
	snap, err := takeSnapshot(ctx, l.medium, keys...)
	if err != nil {
		return persistenceFailure(err)
	}
	var events []Event
	if err := fn(func(ev Event) { events = append(events, ev) }); err != nil {
		if rerr := snap.restore(ctx); rerr != nil {
			err = errors.Join(err, rerr)
		}
		return err
	}
	for _, ev := range events {
		l.emit(ev)
	}
	return nil
}

func (l *lifecycle) stateKeys(ids ...period.ID) []string {
	keys := []string{l.keys.Index()}
	for _, id := range ids {
		if !id.IsZero() {
			keys = append(keys, l.keys.Meta(id))
		}
	}
	return keys
}

// Prepare indexes a new period in the Preparing state.
func (l *lifecycle) Prepare(ctx context.Context, id period.ID) error {
	return l.transaction(ctx, l.stateKeys(id), func(emit func(Event)) error {
		if err := l.setState(ctx, id, period.StatePreparing); err != nil {
			return err
		}
		return l.index.Add(ctx, id)
	})
}

// Activate moves a Preparing period to Active, archives the previously active
// period and points the index at it. It returns the archived period, if any.
func (l *lifecycle) Activate(ctx context.Context, id period.ID) (period.ID, error) {
	if err := l.requireIndexed(ctx, id); err != nil {
		return period.ID{}, err
	}
	st, err := l.stateOf(ctx, id)
	if err != nil {
		return period.ID{}, err
	}
	if st != period.StatePreparing {
		return period.ID{}, apperrors.WithMessage(apperrors.ErrInvalidTransition,
			fmt.Sprintf("period %s is %s, only preparing periods can be activated", id, st))
	}
	return l.makeActive(ctx, id)
}

// ForceActive makes an indexed period Active regardless of its state.
// Migration and rollover use it for periods that were never prepared.
func (l *lifecycle) ForceActive(ctx context.Context, id period.ID) error {
	if err := l.requireIndexed(ctx, id); err != nil {
		return err
	}
	_, err := l.makeActive(ctx, id)
	return err
}

func (l *lifecycle) makeActive(ctx context.Context, id period.ID) (period.ID, error) {
	previous, hasPrevious, err := l.ActivePeriod(ctx)
	if err != nil {
		return period.ID{}, err
	}
	if hasPrevious && previous == id {
		return period.ID{}, nil
	}
	if !hasPrevious {
		previous = period.ID{}
	}

	err = l.transaction(ctx, l.stateKeys(id, previous), func(emit func(Event)) error {
		now := l.clock.Now()
		if !previous.IsZero() {
			if err := l.setState(ctx, previous, period.StateArchived); err != nil {
				return err
			}
			emit(newEvent(EventPeriodArchived, previous, now))
		}
		if err := l.setState(ctx, id, period.StateActive); err != nil {
			return err
		}
		if err := l.index.SetCurrentPointer(ctx, id); err != nil {
			return err
		}
		emit(newEvent(EventPeriodActivated, id, now))
		return nil
	})
	if err != nil {
		return period.ID{}, err
	}
	return previous, nil
}

// AutoArchive moves an Active period to Archived.
func (l *lifecycle) AutoArchive(ctx context.Context, id period.ID) error {
	st, err := l.State(ctx, id)
	if err != nil {
		return err
	}
	if st != period.StateActive {
		return apperrors.WithMessage(apperrors.ErrInvalidTransition,
			fmt.Sprintf("period %s is %s, only the active period can be archived", id, st))
	}
	return l.transaction(ctx, l.stateKeys(id), func(emit func(Event)) error {
		if err := l.setState(ctx, id, period.StateArchived); err != nil {
			return err
		}
		emit(newEvent(EventPeriodArchived, id, l.clock.Now()))
		return nil
	})
}

// Unlock makes an Archived period editable again after backing it up.
func (l *lifecycle) Unlock(ctx context.Context, id period.ID) error {
	st, err := l.State(ctx, id)
	if err != nil {
		return err
	}
	if st != period.StateArchived {
		return apperrors.WithMessage(apperrors.ErrInvalidTransition,
			fmt.Sprintf("period %s is %s, only archived periods can be unlocked", id, st))
	}
	unlocked, err := l.UnlockedPeriods(ctx)
	if err != nil {
		return err
	}
	if len(unlocked) >= l.policy.MaxUnlockedPeriods {
		return apperrors.WithMessage(apperrors.ErrUnlockLimitExceeded,
			fmt.Sprintf("at most %d period(s) can be unlocked at once", l.policy.MaxUnlockedPeriods))
	}

	err = l.transaction(ctx, l.stateKeys(id), func(emit func(Event)) error {
		backupKey, err := l.store.Backup(ctx, id, "unlock")
		if err != nil {
			return err
		}
		if err := l.setState(ctx, id, period.StateUnlocked); err != nil {
			if rerr := l.medium.Remove(context.WithoutCancel(ctx), backupKey); rerr != nil {
				err = errors.Join(err, rerr)
			}
			return err
		}
		emit(newEvent(EventPeriodUnlocked, id, l.clock.Now()))
		return nil
	})
	if err != nil {
		return err
	}
	l.autosave.Start(context.Background())
	return nil
}

// Lock returns an Unlocked period to Archived. The autosave ticker stops when
// no unlocked period remains.
func (l *lifecycle) Lock(ctx context.Context, id period.ID) error {
	st, err := l.State(ctx, id)
	if err != nil {
		return err
	}
	if st != period.StateUnlocked {
		return apperrors.WithMessage(apperrors.ErrInvalidTransition,
			fmt.Sprintf("period %s is %s, only unlocked periods can be locked", id, st))
	}
	err = l.transaction(ctx, l.stateKeys(id), func(emit func(Event)) error {
		if err := l.setState(ctx, id, period.StateArchived); err != nil {
			return err
		}
		emit(newEvent(EventPeriodLocked, id, l.clock.Now()))
		return nil
	})
	if err != nil {
		return err
	}
	return l.ReconcileAutosave(ctx)
}

// ReconcileAutosave runs the autosave ticker iff some period is unlocked.
func (l *lifecycle) ReconcileAutosave(ctx context.Context) error {
	unlocked, err := l.UnlockedPeriods(ctx)
	if err != nil {
		return err
	}
	if len(unlocked) > 0 {
		l.autosave.Start(context.Background())
	} else {
		l.autosave.Stop()
	}
	return nil
}

// Autosave stamps the last-save time of every Active or Unlocked period.
func (l *lifecycle) Autosave(ctx context.Context) error {
	states, err := l.States(ctx)
	if err != nil {
		return err
	}
	now := l.clock.Now()
	var errs []error
	for id, st := range states {
		if !st.AutoSave() {
			continue
		}
		if err := l.store.TouchLastSave(ctx, id, now); err != nil {
			errs = append(errs, fmt.Errorf("autosave %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

func (l *lifecycle) AutosaveRunning() bool {
	return l.autosave.Running()
}
