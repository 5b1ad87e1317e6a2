package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"wisespend/internal/models"
	"wisespend/internal/pagination"
	"wisespend/internal/period"
)

// Clock is the wall-clock source for timestamps and rollover detection.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the local wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// RecordStorer reads and writes the buckets and metadata of individual periods.
type RecordStorer interface {
	ReadBucket(ctx context.Context, id period.ID, kind period.Kind) (models.Document, error)
	WriteBucket(ctx context.Context, id period.ID, kind period.Kind, doc models.Document) error
	ReadAllBuckets(ctx context.Context, id period.ID) (*models.PeriodRecord, *models.IntegrityReport, error)
	ValidateIntegrity(ctx context.Context, id period.ID) (*models.IntegrityReport, error)

	ReadRawBucket(ctx context.Context, id period.ID, kind period.Kind) (json.RawMessage, bool, error)
	WriteRawBucket(ctx context.Context, id period.ID, kind period.Kind, raw json.RawMessage) error
	ReadMeta(ctx context.Context, id period.ID) (*models.PeriodMeta, bool, error)
	WriteMeta(ctx context.Context, id period.ID, meta *models.PeriodMeta) error
	TouchLastSave(ctx context.Context, id period.ID, at time.Time) error
	Backup(ctx context.Context, id period.ID, reason string) (string, error)
	RemovePeriod(ctx context.Context, id period.ID) error
}

// PeriodIndexer maintains the enumeration of known periods.
type PeriodIndexer interface {
	Load(ctx context.Context) (*models.PeriodIndex, error)
	List(ctx context.Context) ([]period.ID, error)
	Contains(ctx context.Context, id period.ID) (bool, error)
	Add(ctx context.Context, id period.ID) error
	Remove(ctx context.Context, id period.ID) error
	CurrentPointer(ctx context.Context) (period.ID, error)
	SetCurrentPointer(ctx context.Context, id period.ID) error
	MarkMigrated(ctx context.Context, at time.Time) error
	SetPendingRollover(ctx context.Context, id period.ID) error
}

// LifecycleManager owns the period state machine and the autosave ticker.
type LifecycleManager interface {
	State(ctx context.Context, id period.ID) (period.State, error)
	States(ctx context.Context) (map[period.ID]period.State, error)
	ActivePeriod(ctx context.Context) (period.ID, bool, error)
	UnlockedPeriods(ctx context.Context) ([]period.ID, error)

	Prepare(ctx context.Context, id period.ID) error
	Activate(ctx context.Context, id period.ID) (period.ID, error)
	AutoArchive(ctx context.Context, id period.ID) error
	ForceActive(ctx context.Context, id period.ID) error
	Unlock(ctx context.Context, id period.ID) error
	Lock(ctx context.Context, id period.ID) error

	ReconcileAutosave(ctx context.Context) error
	Autosave(ctx context.Context) error
	AutosaveRunning() bool
}

// LegacyMigrator imports the un-partitioned dataset into the current period.
type LegacyMigrator interface {
	Run(ctx context.Context) (*MigrationResult, error)
}

// AuditFilter narrows the audit trail listing.
type AuditFilter struct {
	Period    *period.ID
	EventType *EventType
}

// AuditServicer persists the event stream.
type AuditServicer interface {
	Record(ev Event)
	ListEvents(ctx context.Context, filter AuditFilter, page pagination.PageRequest) (*pagination.PageResponse[models.AuditLog], error)
}

// NavigationCallback runs after the current period pointer moves.
type NavigationCallback func(ctx context.Context, id period.ID) error

// SwitchIntent states why the caller navigates to a period.
type SwitchIntent string

const (
	IntentView SwitchIntent = "view"
	IntentEdit SwitchIntent = "edit"
)

// PeriodInfo summarizes one indexed period for navigation UIs.
type PeriodInfo struct {
	Period      period.ID    `json:"period"`
	State       period.State `json:"state"`
	Editable    bool         `json:"is_editable"`
	Current     bool         `json:"is_current"`
	Active      bool         `json:"is_active"`
	DisplayName string       `json:"display_name"`
	CanActivate bool         `json:"can_activate"`
	CanUnlock   bool         `json:"can_unlock"`
	CanSwitch   bool         `json:"can_switch"`
}

// SystemState is a point-in-time view of the whole store.
type SystemState struct {
	Initialized     bool         `json:"is_initialized"`
	CurrentPeriod   period.ID    `json:"current_period"`
	ActivePeriod    period.ID    `json:"active_period"`
	CalendarPeriod  period.ID    `json:"calendar_period"`
	PendingRollover period.ID    `json:"pending_rollover"`
	TotalPeriods    int          `json:"total_periods"`
	AutosaveRunning bool         `json:"autosave_running"`
	Periods         []PeriodInfo `json:"periods"`
	Policy          Policy       `json:"policy"`
}

// RolloverResult describes what a rollover check did.
type RolloverResult struct {
	CalendarPeriod         period.ID `json:"calendar_period"`
	PreviousActive         period.ID `json:"previous_active"`
	Archived               bool      `json:"archived"`
	Activated              bool      `json:"activated"`
	RequiresManualCreation bool      `json:"requires_manual_creation"`
}

// Orchestrator is the only entry point other subsystems use.
type Orchestrator interface {
	Open(ctx context.Context) error
	Start(ctx context.Context)
	Close()

	SwitchTo(ctx context.Context, id period.ID, intent SwitchIntent) error
	CreatePeriod(ctx context.Context, target period.ID, source *period.ID) error
	ActivatePeriod(ctx context.Context, id period.ID) error
	UnlockPeriod(ctx context.Context, id period.ID) error
	LockPeriod(ctx context.Context, id period.ID) error
	CheckMonthRollover(ctx context.Context) (*RolloverResult, error)

	RegisterCallback(name string, fn NavigationCallback)
	UnregisterCallback(name string)
	Subscribe(fn Subscriber) (unsubscribe func())

	ReadBucket(ctx context.Context, id period.ID, kind period.Kind) (models.Document, error)
	ReadAllBuckets(ctx context.Context, id period.ID) (*models.PeriodRecord, *models.IntegrityReport, error)
	ValidateIntegrity(ctx context.Context, id period.ID) (*models.IntegrityReport, error)
	WriteBucket(ctx context.Context, id period.ID, kind period.Kind, doc models.Document) error

	CurrentPeriod(ctx context.Context) (period.ID, error)
	ActivePeriod(ctx context.Context) (period.ID, bool, error)
	PeriodsInfo(ctx context.Context) ([]PeriodInfo, error)
	SystemState(ctx context.Context) (*SystemState, error)

	AddIncomeItem(ctx context.Context, item models.IncomeItem) (*models.IncomeItem, error)
	AddExpenseItem(ctx context.Context, kind period.Kind, item models.ExpenseItem) (*models.ExpenseItem, error)
	SetItemAmount(ctx context.Context, kind period.Kind, itemID string, amount decimal.Decimal) error
	RemoveItem(ctx context.Context, kind period.Kind, itemID string) error
	MarkPaid(ctx context.Context, kind period.Kind, itemID string, paid bool) error

	PurgeCandidates(ctx context.Context) ([]period.ID, error)
	PurgePeriod(ctx context.Context, id period.ID) error
}
