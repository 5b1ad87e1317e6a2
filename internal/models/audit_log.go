package models

// AuditLog records every lifecycle event emitted by the period store, so the
// history of archives, unlocks and rollovers survives restarts.
type AuditLog struct {
	Base
	EventType    string `gorm:"type:varchar(64);not null;index" json:"event_type"`
	Period       string `gorm:"type:varchar(7);index" json:"period,omitempty"`
	SourcePeriod string `gorm:"type:varchar(7)" json:"source_period,omitempty"`
	BucketKind   string `gorm:"type:varchar(32)" json:"bucket_kind,omitempty"`
	ErrorCode    string `gorm:"type:varchar(64)" json:"error_code,omitempty"`
	Payload      string `gorm:"type:text" json:"payload,omitempty"`
}
