package models

import (
	"encoding/json"
	"time"

	"wisespend/internal/period"
)

// PeriodMeta is the lifecycle metadata persisted next to a period's buckets.
type PeriodMeta struct {
	State           period.State `json:"state"`
	LastStateChange time.Time    `json:"last_state_change"`
	LastSave        *time.Time   `json:"last_save,omitempty"`
	UnlockedAt      *time.Time   `json:"unlocked_at,omitempty"`
	Editable        bool         `json:"is_editable"`
	AutoSave        bool         `json:"auto_save"`
}

// PeriodIndex enumerates every known period, most recent first.
type PeriodIndex struct {
	Periods          []period.ID `json:"periods"`
	Current          period.ID   `json:"current_period"`
	LastUpdated      time.Time   `json:"last_updated"`
	LegacyMigratedAt *time.Time  `json:"legacy_migrated_at,omitempty"`
	// PendingRollover is the calendar period that was detected but could not
	// be activated because it does not exist yet.
	PendingRollover period.ID `json:"pending_rollover"`
}

// PeriodRecord is the set of buckets stored for one period. It may be partial.
type PeriodRecord struct {
	Period  period.ID                `json:"period"`
	Buckets map[period.Kind]Document `json:"buckets"`
}

// IntegrityReport lists the buckets a period is missing.
type IntegrityReport struct {
	Period       period.ID     `json:"period"`
	Complete     bool          `json:"complete"`
	MissingKinds []period.Kind `json:"missing_kinds"`
}

// LegacyBackup is the snapshot written before importing the flat dataset.
// A nil value records a key that did not exist.
type LegacyBackup struct {
	Timestamp time.Time          `json:"timestamp"`
	Data      map[string]*string `json:"data"`
}

// PeriodBackup is a defensive copy of a period's buckets.
type PeriodBackup struct {
	Period    period.ID                       `json:"period"`
	Reason    string                          `json:"reason"`
	Timestamp time.Time                       `json:"timestamp"`
	Data      map[period.Kind]json.RawMessage `json:"data"`
	Meta      *PeriodMeta                     `json:"meta,omitempty"`
}
