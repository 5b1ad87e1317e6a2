package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "wisespend/internal/errors"
	"wisespend/internal/pagination"
	"wisespend/internal/period"
	"wisespend/internal/services"
)

// EventHandler serves the persisted audit trail of period events.
type EventHandler struct {
	auditService services.AuditServicer
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(auditService services.AuditServicer) *EventHandler {
	return &EventHandler{auditService: auditService}
}

// ListEvents handles listing recorded events, newest first. It accepts the
// optional filters "period" and "type".
// @Summary     List events
// @Description List recorded period events, newest first
// @Tags        events
// @Produce     json
// @Param       period    query string false "Filter by period (YYYY_MM)"
// @Param       type      query string false "Filter by event type"
// @Param       page      query int    false "Page number" default(1)
// @Param       page_size query int    false "Items per page" default(50)
// @Success     200 {object} pagination.PageResponse[models.AuditLog] "Events"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /events [get]
func (h *EventHandler) ListEvents(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var filter services.AuditFilter
	if v := c.Query("period"); v != "" {
		id, err := period.Parse(v)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
		filter.Period = &id
	}
	if v := c.Query("type"); v != "" {
		typ := services.EventType(v)
		filter.EventType = &typ
	}

	result, err := h.auditService.ListEvents(c.Request.Context(), filter, page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
