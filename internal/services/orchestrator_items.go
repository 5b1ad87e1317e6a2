package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	apperrors "wisespend/internal/errors"
	"wisespend/internal/models"
	"wisespend/internal/period"
	"wisespend/internal/uuid"
)

func encodeDocument(doc models.Document) (json.RawMessage, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}
	return raw, nil
}

func (o *orchestrator) requireIndexed(ctx context.Context, id period.ID) error {
	ok, err := o.index.Contains(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.WithMessage(apperrors.ErrUnknownPeriod, fmt.Sprintf("period %s does not exist", id))
	}
	return nil
}

// ReadBucket returns one bucket of an indexed period.
func (o *orchestrator) ReadBucket(ctx context.Context, id period.ID, kind period.Kind) (models.Document, error) {
	var doc models.Document
	err := o.read(func() error {
		if err := o.requireIndexed(ctx, id); err != nil {
			return err
		}
		var err error
		doc, err = o.store.ReadBucket(ctx, id, kind)
		return err
	})
	return doc, err
}

// ReadAllBuckets returns every bucket present for a period and the list of
// missing ones.
func (o *orchestrator) ReadAllBuckets(ctx context.Context, id period.ID) (*models.PeriodRecord, *models.IntegrityReport, error) {
	var (
		record *models.PeriodRecord
		report *models.IntegrityReport
	)
	err := o.read(func() error {
		if err := o.requireIndexed(ctx, id); err != nil {
			return err
		}
		var err error
		record, report, err = o.store.ReadAllBuckets(ctx, id)
		return err
	})
	return record, report, err
}

func (o *orchestrator) ValidateIntegrity(ctx context.Context, id period.ID) (*models.IntegrityReport, error) {
	var report *models.IntegrityReport
	err := o.read(func() error {
		if err := o.requireIndexed(ctx, id); err != nil {
			return err
		}
		var err error
		report, err = o.store.ValidateIntegrity(ctx, id)
		return err
	})
	return report, err
}

// WriteBucket replaces one bucket of an editable period.
func (o *orchestrator) WriteBucket(ctx context.Context, id period.ID, kind period.Kind, doc models.Document) error {
	return o.exclusive(ctx, func() (period.ID, error) {
		if err := o.writeLocked(ctx, id, kind, doc); err != nil {
			ev := newErrorEvent(EventBucketSavedError, id, o.clock.Now(), err)
			ev.Kind = kind
			o.bus.emit(ev)
			return period.ID{}, err
		}
		return period.ID{}, nil
	})
}

func (o *orchestrator) writeLocked(ctx context.Context, id period.ID, kind period.Kind, doc models.Document) error {
	state, err := o.lifecycle.State(ctx, id)
	if err != nil {
		return err
	}
	if !state.Editable() {
		return apperrors.WithMessage(apperrors.ErrNotEditable,
			fmt.Sprintf("period %s is archived; unlock it before editing", id))
	}
	return o.store.WriteBucket(ctx, id, kind, doc)
}

// CurrentPeriod returns the navigation pointer.
func (o *orchestrator) CurrentPeriod(ctx context.Context) (period.ID, error) {
	var id period.ID
	err := o.read(func() error {
		var err error
		id, err = o.index.CurrentPointer(ctx)
		return err
	})
	return id, err
}

// ActivePeriod returns the period in the Active state, if any.
func (o *orchestrator) ActivePeriod(ctx context.Context) (period.ID, bool, error) {
	var (
		id period.ID
		ok bool
	)
	err := o.read(func() error {
		var err error
		id, ok, err = o.lifecycle.ActivePeriod(ctx)
		return err
	})
	return id, ok, err
}

// PeriodsInfo describes every indexed period, most recent first.
func (o *orchestrator) PeriodsInfo(ctx context.Context) ([]PeriodInfo, error) {
	var infos []PeriodInfo
	err := o.read(func() error {
		var err error
		infos, err = o.periodsInfoLocked(ctx)
		return err
	})
	return infos, err
}

func (o *orchestrator) periodsInfoLocked(ctx context.Context) ([]PeriodInfo, error) {
	idx, err := o.index.Load(ctx)
	if err != nil {
		return nil, err
	}
	infos := make([]PeriodInfo, 0, len(idx.Periods))
	for _, id := range idx.Periods {
		state, err := o.lifecycle.State(ctx, id)
		if err != nil {
			return nil, err
		}
		infos = append(infos, PeriodInfo{
			Period:      id,
			State:       state,
			Editable:    state.Editable(),
			Current:     id == idx.Current,
			Active:      state == period.StateActive,
			DisplayName: id.DisplayName(),
			CanActivate: state == period.StatePreparing,
			CanUnlock:   state == period.StateArchived,
			CanSwitch:   state.Editable() || state == period.StateArchived,
		})
	}
	return infos, nil
}

// SystemState returns a snapshot of the store for diagnostics.
func (o *orchestrator) SystemState(ctx context.Context) (*SystemState, error) {
	var state *SystemState
	err := o.read(func() error {
		idx, err := o.index.Load(ctx)
		if err != nil {
			return err
		}
		infos, err := o.periodsInfoLocked(ctx)
		if err != nil {
			return err
		}
		active, _, err := o.lifecycle.ActivePeriod(ctx)
		if err != nil {
			return err
		}
		state = &SystemState{
			Initialized:     o.initialized,
			CurrentPeriod:   idx.Current,
			ActivePeriod:    active,
			CalendarPeriod:  period.FromTime(o.clock.Now()),
			PendingRollover: idx.PendingRollover,
			TotalPeriods:    len(idx.Periods),
			AutosaveRunning: o.lifecycle.AutosaveRunning(),
			Periods:         infos,
			Policy:          o.policy,
		}
		return nil
	})
	return state, err
}

// editCurrent loads a bucket of the current period, lets fn modify it and
// writes it back. A missing bucket starts out empty.
func (o *orchestrator) editCurrent(ctx context.Context, kind period.Kind, fn func(doc models.Document) error) error {
	var current period.ID
	return o.exclusive(ctx, func() (period.ID, error) {
		err := func() error {
			var err error
			current, err = o.index.CurrentPointer(ctx)
			if err != nil {
				return err
			}
			if current.IsZero() {
				return apperrors.WithMessage(apperrors.ErrUnknownPeriod, "no current period selected")
			}
			state, err := o.lifecycle.State(ctx, current)
			if err != nil {
				return err
			}
			if !state.Editable() {
				return apperrors.WithMessage(apperrors.ErrNotEditable,
					fmt.Sprintf("period %s is archived; unlock it before editing", current))
			}

			doc, err := o.store.ReadBucket(ctx, current, kind)
			if errors.Is(err, apperrors.ErrNotFound) {
				doc, err = models.NewDocument(kind)
				if err != nil {
					return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
				}
			} else if err != nil {
				return err
			}
			if err := fn(doc); err != nil {
				return err
			}
			return o.store.WriteBucket(ctx, current, kind, doc)
		}()
		if err != nil {
			ev := newErrorEvent(EventBucketSavedError, current, o.clock.Now(), err)
			ev.Kind = kind
			o.bus.emit(ev)
			return period.ID{}, err
		}
		return period.ID{}, nil
	})
}

func itemNotFound(kind period.Kind, id string) error {
	return apperrors.WithMessage(apperrors.ErrNotFound, fmt.Sprintf("item %s not found in %s", id, kind))
}

// AddIncomeItem appends an income source to the current period.
func (o *orchestrator) AddIncomeItem(ctx context.Context, item models.IncomeItem) (*models.IncomeItem, error) {
	if item.ID == "" {
		item.ID = uuid.New()
	}
	err := o.editCurrent(ctx, period.KindIncome, func(doc models.Document) error {
		income := doc.(*models.IncomeDocument)
		income.Items = append(income.Items, item)
		income.Recalculate()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// AddExpenseItem appends an expense to one of the expense buckets of the
// current period.
func (o *orchestrator) AddExpenseItem(ctx context.Context, kind period.Kind, item models.ExpenseItem) (*models.ExpenseItem, error) {
	if !kind.IsExpense() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("%s is not an expense bucket", kind))
	}
	if item.ID == "" {
		item.ID = uuid.New()
	}
	now := o.clock.Now().UTC()
	item.CreatedAt = &now
	item.UpdatedAt = &now

	err := o.editCurrent(ctx, kind, func(doc models.Document) error {
		list := doc.(models.ExpenseDocument).Expenses()
		list.Items = append(list.Items, item)
		list.Recalculate()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// SetItemAmount changes the amount of an item and recomputes the total.
func (o *orchestrator) SetItemAmount(ctx context.Context, kind period.Kind, itemID string, amount decimal.Decimal) error {
	return o.editCurrent(ctx, kind, func(doc models.Document) error {
		ledger, ok := doc.(models.Ledger)
		if !ok {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("%s has no items", kind))
		}
		if !ledger.SetItemAmount(itemID, amount) {
			return itemNotFound(kind, itemID)
		}
		return nil
	})
}

// RemoveItem deletes an item and recomputes the total.
func (o *orchestrator) RemoveItem(ctx context.Context, kind period.Kind, itemID string) error {
	return o.editCurrent(ctx, kind, func(doc models.Document) error {
		ledger, ok := doc.(models.Ledger)
		if !ok {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("%s has no items", kind))
		}
		if !ledger.RemoveItem(itemID) {
			return itemNotFound(kind, itemID)
		}
		return nil
	})
}

// MarkPaid records or clears the payment of an expense item.
func (o *orchestrator) MarkPaid(ctx context.Context, kind period.Kind, itemID string, paid bool) error {
	if !kind.IsExpense() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("%s is not an expense bucket", kind))
	}
	return o.editCurrent(ctx, kind, func(doc models.Document) error {
		list := doc.(models.ExpenseDocument).Expenses()
		if !list.MarkPaid(itemID, paid, o.clock.Now().UTC()) {
			return itemNotFound(kind, itemID)
		}
		return nil
	})
}

// PurgeCandidates lists archived periods older than the retention horizon.
// It only reports; nothing is deleted.
func (o *orchestrator) PurgeCandidates(ctx context.Context) ([]period.ID, error) {
	var out []period.ID
	err := o.read(func() error {
		horizon := period.FromTime(o.clock.Now()).AddMonths(-o.policy.RetentionMonths)
		states, err := o.lifecycle.States(ctx)
		if err != nil {
			return err
		}
		ids, err := o.index.List(ctx)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if id.Before(horizon) && states[id] == period.StateArchived {
				out = append(out, id)
			}
		}
		return nil
	})
	if out == nil {
		out = []period.ID{}
	}
	return out, err
}

// PurgePeriod removes an archived period after writing a backup of it.
func (o *orchestrator) PurgePeriod(ctx context.Context, id period.ID) error {
	return o.exclusive(ctx, func() (period.ID, error) {
		if err := o.purgeLocked(ctx, id); err != nil {
			return period.ID{}, o.failed(EventPeriodPurgedError, id, err)
		}
		return period.ID{}, nil
	})
}

func (o *orchestrator) purgeLocked(ctx context.Context, id period.ID) error {
	state, err := o.lifecycle.State(ctx, id)
	if err != nil {
		return err
	}
	if state != period.StateArchived {
		return apperrors.WithMessage(apperrors.ErrInvalidTransition,
			fmt.Sprintf("period %s is %s, only archived periods can be purged", id, state))
	}
	backupKey, err := o.store.Backup(ctx, id, "purge")
	if err != nil {
		return err
	}

	keys := append(o.keys.PeriodKeys(id), o.keys.Index())
	err = o.atomically(ctx, keys, func() error {
		if err := o.store.RemovePeriod(ctx, id); err != nil {
			return err
		}
		return o.index.Remove(ctx, id)
	})
	if err != nil {
		return err
	}

	o.bus.emit(newEvent(EventPeriodPurged, id, o.clock.Now()))
	o.log.Infow("period purged", "period", id.String(), "backup", backupKey)
	return nil
}
