package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	apperrors "wisespend/internal/errors"
	"wisespend/internal/keyspace"
	"wisespend/internal/kv"
	"wisespend/internal/logger"
	"wisespend/internal/models"
	"wisespend/internal/period"
)

// Policy holds the configurable limits of the period lifecycle.
type Policy struct {
	MaxFuturePeriods   int           `json:"max_future_periods"`
	MaxUnlockedPeriods int           `json:"max_unlocked_periods"`
	RetentionMonths    int           `json:"retention_months"`
	AutosaveInterval   time.Duration `json:"autosave_interval"`
	RolloverInterval   time.Duration `json:"rollover_interval"`
}

// DefaultPolicy returns the limits used when none are configured.
func DefaultPolicy() Policy {
	return Policy{
		MaxFuturePeriods:   12,
		MaxUnlockedPeriods: 1,
		RetentionMonths:    12,
		AutosaveInterval:   30 * time.Second,
		RolloverInterval:   time.Hour,
	}
}

type namedCallback struct {
	name string
	fn   NavigationCallback
}

// orchestrator serializes every operation on the store behind one mutex.
// Events and navigation callbacks produced by an operation are delivered
// after the mutex is released.
type orchestrator struct {
	mu sync.Mutex

	medium    kv.Medium
	keys      keyspace.Keyspace
	clock     Clock
	policy    Policy
	store     RecordStorer
	index     PeriodIndexer
	lifecycle LifecycleManager
	migrator  LegacyMigrator
	bus       *eventBus
	autosave  *Ticker
	rollover  *Ticker

	cbMu      sync.Mutex
	callbacks []namedCallback

	initialized bool
	log         *zap.SugaredLogger
}

// NewOrchestrator wires the period store over medium. Call Open before use
// and Close when done.
func NewOrchestrator(medium kv.Medium, keys keyspace.Keyspace, clock Clock, policy Policy) Orchestrator {
	o := &orchestrator{
		medium: medium,
		keys:   keys,
		clock:  clock,
		policy: policy,
		bus:    &eventBus{},
		log:    logger.Named("orchestrator"),
	}
	o.autosave = NewTicker("autosave", policy.AutosaveInterval, o.autosaveTick)
	o.rollover = NewTicker("rollover", policy.RolloverInterval, o.rolloverTick)

	o.store = NewRecordStore(medium, keys, clock, o.bus.emit)
	o.index = NewPeriodIndex(medium, keys, clock)
	o.lifecycle = NewLifecycle(o.store, o.index, medium, keys, clock, policy, o.autosave, o.bus.emit)
	o.migrator = NewLegacyMigrator(o.store, o.index, o.lifecycle, medium, keys, clock, o.bus.emit)
	return o
}

// exclusive runs fn under the store lock, then delivers the events it queued
// and, if fn navigated to a period, runs the navigation callbacks.
func (o *orchestrator) exclusive(ctx context.Context, fn func() (period.ID, error)) error {
	var (
		nav    period.ID
		err    error
		events []Event
	)
	func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		defer func() { events = o.bus.take() }()
		nav, err = fn()
	}()

	o.bus.deliver(events)
	if err == nil && !nav.IsZero() {
		o.runCallbacks(ctx, nav)
	}
	return err
}

// read runs fn under the store lock. fn must not emit events.
func (o *orchestrator) read(fn func() error) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return fn()
}

// failed queues the error event for a failed operation and returns err.
func (o *orchestrator) failed(typ EventType, id period.ID, err error) error {
	o.bus.emit(newErrorEvent(typ, id, o.clock.Now(), err))
	return err
}

// atomically snapshots keys, runs fn and undoes both the writes and the
// queued events if fn fails.
func (o *orchestrator) atomically(ctx context.Context, keys []string, fn func() error) error {
	snap, err := takeSnapshot(ctx, o.medium, keys...)
	if err != nil {
		return persistenceFailure(err)
	}
	mark := o.bus.mark()
	if err := fn(); err != nil {
		o.bus.rollback(mark)
		if rerr := snap.restore(ctx); rerr != nil {
			err = errors.Join(err, rerr)
		}
		if rerr := o.lifecycle.ReconcileAutosave(context.WithoutCancel(ctx)); rerr != nil {
			o.log.Warnw("failed to reconcile autosave after rollback", "error", rerr)
		}
		return err
	}
	return nil
}

// stateKeys returns the index key and the meta key of every indexed period.
func (o *orchestrator) stateKeys(ctx context.Context, extra ...period.ID) ([]string, error) {
	ids, err := o.index.List(ctx)
	if err != nil {
		return nil, err
	}
	keys := []string{o.keys.Index()}
	for _, id := range append(ids, extra...) {
		keys = append(keys, o.keys.Meta(id))
	}
	return keys, nil
}

// Open prepares the store: it imports legacy data on first run, restores the
// autosave ticker for periods left unlocked, catches up with the calendar and
// reports gaps in the active period.
func (o *orchestrator) Open(ctx context.Context) error {
	return o.exclusive(ctx, func() (period.ID, error) {
		calendar := period.FromTime(o.clock.Now())

		// the migrator reports its own migrationError
		res, err := o.migrator.Run(ctx)
		if err != nil {
			return period.ID{}, err
		}
		if res.Skipped {
			o.log.Debugw("legacy migration skipped", "reason", res.Reason)
		}

		if err := o.lifecycle.ReconcileAutosave(ctx); err != nil {
			return period.ID{}, o.failed(EventStoreOpenError, calendar, err)
		}

		rollover, nav, err := o.checkRollover(ctx)
		if err != nil {
			return period.ID{}, o.failed(EventMonthRolloverError, calendar, err)
		}

		active, hasActive, err := o.lifecycle.ActivePeriod(ctx)
		if err != nil {
			return period.ID{}, o.failed(EventStoreOpenError, calendar, err)
		}
		if hasActive {
			if err := o.resumeActive(ctx, active); err != nil {
				return period.ID{}, o.failed(EventStoreOpenError, active, err)
			}
		}

		o.initialized = true
		o.log.Infow("period store opened",
			"active", active.String(),
			"calendar", rollover.CalendarPeriod.String(),
			"manual_creation_required", rollover.RequiresManualCreation,
		)
		return nav, nil
	})
}

// resumeActive points an unset current pointer at the active period and
// reports its missing buckets.
func (o *orchestrator) resumeActive(ctx context.Context, active period.ID) error {
	current, err := o.index.CurrentPointer(ctx)
	if err != nil {
		return err
	}
	if current.IsZero() {
		if err := o.index.SetCurrentPointer(ctx, active); err != nil {
			return err
		}
	}
	return o.reportIntegrity(ctx, active)
}

func (o *orchestrator) reportIntegrity(ctx context.Context, id period.ID) error {
	report, err := o.store.ValidateIntegrity(ctx, id)
	if err != nil {
		return err
	}
	if !report.Complete {
		ev := newEvent(EventIntegrityWarning, id, o.clock.Now())
		ev.Code = apperrors.ErrIntegrityWarning.Code
		ev.MissingKinds = report.MissingKinds
		o.bus.emit(ev)
		o.log.Warnw("period is missing buckets", "period", id.String(), "missing", report.MissingKinds)
	}
	return nil
}

// Start launches the rollover-detection ticker. It stops when ctx is
// cancelled or Close is called.
func (o *orchestrator) Start(ctx context.Context) {
	o.rollover.Start(ctx)
}

// Close stops both tickers and waits for them to exit.
func (o *orchestrator) Close() {
	o.rollover.Close()
	o.autosave.Close()
}

func (o *orchestrator) autosaveTick(ctx context.Context) {
	_ = o.exclusive(ctx, func() (period.ID, error) {
		if ctx.Err() != nil {
			return period.ID{}, nil
		}
		if err := o.lifecycle.Autosave(ctx); err != nil {
			o.log.Warnw("autosave failed", "error", err)
		}
		return period.ID{}, nil
	})
}

func (o *orchestrator) rolloverTick(ctx context.Context) {
	if _, err := o.CheckMonthRollover(ctx); err != nil {
		o.log.Errorw("rollover check failed", "error", err)
	}
}

// RegisterCallback adds a named navigation callback. Registering an existing
// name replaces it in place.
func (o *orchestrator) RegisterCallback(name string, fn NavigationCallback) {
	o.cbMu.Lock()
	defer o.cbMu.Unlock()
	for i := range o.callbacks {
		if o.callbacks[i].name == name {
			o.callbacks[i].fn = fn
			return
		}
	}
	o.callbacks = append(o.callbacks, namedCallback{name: name, fn: fn})
	o.log.Debugw("navigation callback registered", "name", name)
}

func (o *orchestrator) UnregisterCallback(name string) {
	o.cbMu.Lock()
	defer o.cbMu.Unlock()
	for i := range o.callbacks {
		if o.callbacks[i].name == name {
			o.callbacks = append(o.callbacks[:i:i], o.callbacks[i+1:]...)
			return
		}
	}
}

// Subscribe adds an event subscriber and returns a function removing it.
func (o *orchestrator) Subscribe(fn Subscriber) func() {
	return o.bus.subscribe(fn)
}

// runCallbacks calls every navigation callback in registration order. A
// failing or panicking callback is logged and does not stop the others.
func (o *orchestrator) runCallbacks(ctx context.Context, id period.ID) {
	o.cbMu.Lock()
	callbacks := make([]namedCallback, len(o.callbacks))
	copy(callbacks, o.callbacks)
	o.cbMu.Unlock()

	for _, cb := range callbacks {
		if err := o.callCallback(ctx, cb, id); err != nil {
			o.log.Errorw("navigation callback failed", "name", cb.name, "period", id.String(), "error", err)
		}
	}
}

func (o *orchestrator) callCallback(ctx context.Context, cb namedCallback, id period.ID) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return cb.fn(ctx, id)
}

// SwitchTo moves the current pointer to id. Archived periods can be viewed
// but not opened for editing. Any other unlocked period is locked again.
func (o *orchestrator) SwitchTo(ctx context.Context, id period.ID, intent SwitchIntent) error {
	return o.exclusive(ctx, func() (period.ID, error) {
		keys, err := o.stateKeys(ctx)
		if err != nil {
			return period.ID{}, o.failed(EventPeriodChangedError, id, err)
		}
		err = o.atomically(ctx, keys, func() error {
			return o.switchLocked(ctx, id, intent)
		})
		if err != nil {
			return period.ID{}, o.failed(EventPeriodChangedError, id, err)
		}
		return id, nil
	})
}

func (o *orchestrator) switchLocked(ctx context.Context, id period.ID, intent SwitchIntent) error {
	if intent != IntentView && intent != IntentEdit {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("unknown switch intent %q", intent))
	}
	state, err := o.lifecycle.State(ctx, id)
	if err != nil {
		return err
	}
	if intent == IntentEdit && !state.Editable() {
		return apperrors.WithMessage(apperrors.ErrNotEditable,
			fmt.Sprintf("period %s is archived; unlock it before editing", id))
	}

	unlocked, err := o.lifecycle.UnlockedPeriods(ctx)
	if err != nil {
		return err
	}
	for _, other := range unlocked {
		if other == id {
			continue
		}
		if err := o.lifecycle.Lock(ctx, other); err != nil {
			return err
		}
		o.log.Infow("period locked on navigation", "period", other.String(), "target", id.String())
	}

	if err := o.index.SetCurrentPointer(ctx, id); err != nil {
		return err
	}
	o.bus.emit(newEvent(EventPeriodChanged, id, o.clock.Now()))
	return nil
}

// CreatePeriod clones source into a new Preparing period. Without a source
// the most recent period with every bucket present is used.
func (o *orchestrator) CreatePeriod(ctx context.Context, target period.ID, source *period.ID) error {
	return o.exclusive(ctx, func() (period.ID, error) {
		if err := o.createLocked(ctx, target, source); err != nil {
			return period.ID{}, o.failed(EventPeriodCreatedError, target, err)
		}
		return period.ID{}, nil
	})
}

func (o *orchestrator) createLocked(ctx context.Context, target period.ID, source *period.ID) error {
	if target.IsZero() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "target period is required")
	}
	exists, err := o.index.Contains(ctx, target)
	if err != nil {
		return err
	}
	if exists {
		return apperrors.WithMessage(apperrors.ErrAlreadyExists, fmt.Sprintf("period %s already exists", target))
	}
	if err := o.checkFutureLimit(ctx, target); err != nil {
		return err
	}
	from, err := o.resolveCloneSource(ctx, source)
	if err != nil {
		return err
	}

	keys := append(o.keys.PeriodKeys(target), o.keys.Index())
	err = o.atomically(ctx, keys, func() error {
		return o.cloneInto(ctx, from, target)
	})
	if err != nil {
		return err
	}

	ev := newEvent(EventPeriodCreated, target, o.clock.Now())
	ev.Source = from
	o.bus.emit(ev)
	o.log.Infow("period created", "period", target.String(), "source", from.String())
	return nil
}

func (o *orchestrator) checkFutureLimit(ctx context.Context, target period.ID) error {
	base, ok, err := o.lifecycle.ActivePeriod(ctx)
	if err != nil {
		return err
	}
	if !ok {
		base = period.FromTime(o.clock.Now())
	}
	if ahead := base.MonthsUntil(target); ahead > o.policy.MaxFuturePeriods {
		return apperrors.WithMessage(apperrors.ErrFutureLimitExceeded,
			fmt.Sprintf("period %s is %d months ahead of %s (limit %d)", target, ahead, base, o.policy.MaxFuturePeriods))
	}
	return nil
}

func (o *orchestrator) resolveCloneSource(ctx context.Context, source *period.ID) (period.ID, error) {
	if source != nil {
		ok, err := o.index.Contains(ctx, *source)
		if err != nil {
			return period.ID{}, err
		}
		if !ok {
			return period.ID{}, apperrors.WithMessage(apperrors.ErrUnknownPeriod, fmt.Sprintf("source period %s does not exist", *source))
		}
		report, err := o.store.ValidateIntegrity(ctx, *source)
		if err != nil {
			return period.ID{}, err
		}
		if len(report.MissingKinds) == len(period.AllKinds()) {
			return period.ID{}, apperrors.WithMessage(apperrors.ErrNoCloneSource, fmt.Sprintf("source period %s holds no data", *source))
		}
		return *source, nil
	}

	ids, err := o.index.List(ctx)
	if err != nil {
		return period.ID{}, err
	}
	for _, id := range ids {
		report, err := o.store.ValidateIntegrity(ctx, id)
		if err != nil {
			return period.ID{}, err
		}
		if report.Complete {
			return id, nil
		}
	}
	return period.ID{}, apperrors.ErrNoCloneSource
}

// cloneInto copies every bucket of from into target, clearing payment state,
// and indexes target as Preparing. Stray data already stored under target is
// backed up first.
func (o *orchestrator) cloneInto(ctx context.Context, from, target period.ID) error {
	stray, err := o.store.ValidateIntegrity(ctx, target)
	if err != nil {
		return err
	}
	var backupKey string
	if len(stray.MissingKinds) < len(period.AllKinds()) {
		if backupKey, err = o.store.Backup(ctx, target, "clone"); err != nil {
			return err
		}
	}
	undoBackup := func(err error) error {
		if backupKey == "" {
			return err
		}
		if rerr := o.medium.Remove(context.WithoutCancel(ctx), backupKey); rerr != nil {
			return errors.Join(err, rerr)
		}
		return err
	}

	record, _, err := o.store.ReadAllBuckets(ctx, from)
	if err != nil {
		return undoBackup(err)
	}
	for _, kind := range period.AllKinds() {
		doc, ok := record.Buckets[kind]
		if !ok {
			if err := o.medium.Remove(ctx, o.keys.Bucket(target, kind)); err != nil {
				return undoBackup(persistenceFailure(err))
			}
			continue
		}
		if s, ok := doc.(models.Scrubber); ok {
			s.ResetExecutionState()
		}
		raw, err := encodeDocument(doc)
		if err != nil {
			return undoBackup(err)
		}
		if err := o.store.WriteRawBucket(ctx, target, kind, raw); err != nil {
			return undoBackup(err)
		}
	}
	if err := o.lifecycle.Prepare(ctx, target); err != nil {
		return undoBackup(err)
	}
	return nil
}

// ActivatePeriod activates a Preparing period and navigates to it.
func (o *orchestrator) ActivatePeriod(ctx context.Context, id period.ID) error {
	return o.exclusive(ctx, func() (period.ID, error) {
		keys, err := o.stateKeys(ctx)
		if err != nil {
			return period.ID{}, o.failed(EventPeriodActivatedError, id, err)
		}
		err = o.atomically(ctx, keys, func() error {
			previous, err := o.lifecycle.Activate(ctx, id)
			if err != nil {
				return err
			}
			if err := o.switchLocked(ctx, id, IntentEdit); err != nil {
				return err
			}
			return o.completePendingRollover(ctx, id, previous)
		})
		if err != nil {
			return period.ID{}, o.failed(EventPeriodActivatedError, id, err)
		}
		return id, nil
	})
}

// completePendingRollover clears the pending marker once the period it names
// has been activated by hand.
func (o *orchestrator) completePendingRollover(ctx context.Context, id, previous period.ID) error {
	idx, err := o.index.Load(ctx)
	if err != nil {
		return err
	}
	if idx.PendingRollover != id {
		return nil
	}
	if err := o.index.SetPendingRollover(ctx, period.ID{}); err != nil {
		return err
	}
	ev := newEvent(EventMonthRolloverCompleted, id, o.clock.Now())
	ev.Source = previous
	o.bus.emit(ev)
	o.log.Infow("pending rollover completed", "period", id.String())
	return nil
}

// UnlockPeriod makes an archived period editable.
func (o *orchestrator) UnlockPeriod(ctx context.Context, id period.ID) error {
	return o.exclusive(ctx, func() (period.ID, error) {
		if err := o.lifecycle.Unlock(ctx, id); err != nil {
			return period.ID{}, o.failed(EventPeriodUnlockedError, id, err)
		}
		o.log.Infow("period unlocked", "period", id.String())
		return period.ID{}, nil
	})
}

// LockPeriod archives an unlocked period again.
func (o *orchestrator) LockPeriod(ctx context.Context, id period.ID) error {
	return o.exclusive(ctx, func() (period.ID, error) {
		if err := o.lifecycle.Lock(ctx, id); err != nil {
			return period.ID{}, o.failed(EventPeriodLockedError, id, err)
		}
		o.log.Infow("period locked", "period", id.String())
		return period.ID{}, nil
	})
}

// CheckMonthRollover compares the calendar month with the active period.
// When the calendar has moved on, the active period is archived once; the
// calendar period is activated if it exists, otherwise a single
// monthRolloverDetected event asks for it to be created. Skipped months are
// never created.
func (o *orchestrator) CheckMonthRollover(ctx context.Context) (*RolloverResult, error) {
	var result *RolloverResult
	err := o.exclusive(ctx, func() (period.ID, error) {
		res, nav, err := o.checkRollover(ctx)
		if err != nil {
			return period.ID{}, o.failed(EventMonthRolloverError, period.FromTime(o.clock.Now()), err)
		}
		result = res
		return nav, nil
	})
	return result, err
}

func (o *orchestrator) checkRollover(ctx context.Context) (*RolloverResult, period.ID, error) {
	calendar := period.FromTime(o.clock.Now())
	result := &RolloverResult{CalendarPeriod: calendar}

	active, hasActive, err := o.lifecycle.ActivePeriod(ctx)
	if err != nil {
		return nil, period.ID{}, err
	}
	if hasActive {
		result.PreviousActive = active
		if active == calendar {
			return result, period.ID{}, nil
		}
		if active.After(calendar) {
			o.log.Warnw("active period is ahead of the calendar", "active", active.String(), "calendar", calendar.String())
			return result, period.ID{}, nil
		}
	}

	idx, err := o.index.Load(ctx)
	if err != nil {
		return nil, period.ID{}, err
	}
	exists, err := o.index.Contains(ctx, calendar)
	if err != nil {
		return nil, period.ID{}, err
	}
	if !hasActive && !exists && idx.PendingRollover == calendar {
		result.RequiresManualCreation = true
		return result, period.ID{}, nil
	}

	keys, err := o.stateKeys(ctx)
	if err != nil {
		return nil, period.ID{}, err
	}
	var nav period.ID
	err = o.atomically(ctx, keys, func() error {
		if hasActive {
			if err := o.lifecycle.AutoArchive(ctx, active); err != nil {
				return err
			}
			result.Archived = true
			o.log.Infow("period auto-archived", "period", active.String(), "calendar", calendar.String())
		}

		if !exists {
			result.RequiresManualCreation = true
			if idx.PendingRollover == calendar {
				return nil
			}
			if err := o.index.SetPendingRollover(ctx, calendar); err != nil {
				return err
			}
			ev := newEvent(EventMonthRolloverDetected, calendar, o.clock.Now())
			ev.Source = active
			ev.RequiresManualCreation = true
			o.bus.emit(ev)
			o.log.Infow("calendar period requires manual creation", "period", calendar.String())
			return nil
		}

		state, err := o.lifecycle.State(ctx, calendar)
		if err != nil {
			return err
		}
		if state == period.StatePreparing {
			if _, err := o.lifecycle.Activate(ctx, calendar); err != nil {
				return err
			}
		} else if err := o.lifecycle.ForceActive(ctx, calendar); err != nil {
			return err
		}
		if err := o.switchLocked(ctx, calendar, IntentView); err != nil {
			return err
		}
		if err := o.index.SetPendingRollover(ctx, period.ID{}); err != nil {
			return err
		}
		result.Activated = true
		nav = calendar

		ev := newEvent(EventMonthRolloverCompleted, calendar, o.clock.Now())
		ev.Source = active
		o.bus.emit(ev)
		return nil
	})
	if err != nil {
		return nil, period.ID{}, err
	}
	return result, nav, nil
}
