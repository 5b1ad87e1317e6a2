package services

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	apperrors "wisespend/internal/errors"
	"wisespend/internal/logger"
	"wisespend/internal/models"
	"wisespend/internal/pagination"
)

// auditService persists the period event stream to the audit_logs table.
type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Record stores ev. Errors are logged but never propagate so a failing audit
// trail cannot block the store.
func (s *auditService) Record(ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		logger.Get().Errorw("failed to marshal audit payload", "error", err, "event", ev.Type)
		payload = []byte("{}")
	}

	entry := &models.AuditLog{
		Base:         models.Base{ID: ev.ID, CreatedAt: ev.Timestamp},
		EventType:    string(ev.Type),
		Period:       ev.Period.String(),
		SourcePeriod: ev.Source.String(),
		BucketKind:   string(ev.Kind),
		ErrorCode:    ev.Code,
		Payload:      string(payload),
	}

	if err := s.db.Create(entry).Error; err != nil {
		logger.Get().Errorw("failed to create audit log entry",
			"error", err,
			"event", ev.Type,
			"period", ev.Period.String(),
		)
	}
}

// ListEvents returns recorded events, newest first.
func (s *auditService) ListEvents(ctx context.Context, filter AuditFilter, page pagination.PageRequest) (*pagination.PageResponse[models.AuditLog], error) {
	page.Defaults()

	query := s.db.WithContext(ctx).Model(&models.AuditLog{})
	if filter.Period != nil {
		query = query.Where("period = ?", filter.Period.String())
	}
	if filter.EventType != nil {
		query = query.Where("event_type = ?", string(*filter.EventType))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}

	var logs []models.AuditLog
	if err := query.Scopes(pagination.Paginate(page)).Order("created_at DESC, id DESC").Find(&logs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}

	resp := pagination.NewPageResponse(logs, page.Page, page.PageSize, total)
	return &resp, nil
}
