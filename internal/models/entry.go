package models

import "time"

// Entry is one row of the persisted key-value medium.
type Entry struct {
	Key       string    `gorm:"column:entry_key;type:varchar(255);primaryKey"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName pins the table created by the SQL migrations.
func (Entry) TableName() string { return "kv_entries" }
