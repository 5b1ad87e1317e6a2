package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "wisespend/internal/errors"
	"wisespend/internal/period"
	"wisespend/internal/services"
)

// PeriodHandler exposes period navigation and lifecycle operations.
type PeriodHandler struct {
	orchestrator services.Orchestrator
}

// NewPeriodHandler creates a new PeriodHandler.
func NewPeriodHandler(orchestrator services.Orchestrator) *PeriodHandler {
	return &PeriodHandler{orchestrator: orchestrator}
}

// CreatePeriodRequest represents the request payload for creating a period.
type CreatePeriodRequest struct {
	Target string  `json:"target" binding:"required,period_id"`
	Source *string `json:"source" binding:"omitempty,period_id"`
}

// SwitchPeriodRequest represents the request payload for navigating to a period.
type SwitchPeriodRequest struct {
	Intent string `json:"intent" binding:"omitempty,switch_intent"`
}

// ListPeriods handles listing every known period, most recent first.
// @Summary     List periods
// @Description List every known period, most recent first, with navigation flags
// @Tags        periods
// @Produce     json
// @Success     200 {object} object{periods=[]services.PeriodInfo} "Periods"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /periods [get]
func (h *PeriodHandler) ListPeriods(c *gin.Context) {
	infos, err := h.orchestrator.PeriodsInfo(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"periods": infos})
}

// GetCurrent returns the navigation pointer and the active period.
// @Summary     Get current period
// @Description Get the navigation pointer and the active period
// @Tags        periods
// @Produce     json
// @Success     200 {object} object{current_period=string,active_period=string} "Current and active period"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /current [get]
func (h *PeriodHandler) GetCurrent(c *gin.Context) {
	ctx := c.Request.Context()
	current, err := h.orchestrator.CurrentPeriod(ctx)
	if err != nil {
		respondWithError(c, err)
		return
	}
	active, _, err := h.orchestrator.ActivePeriod(ctx)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"current_period": current, "active_period": active})
}

// CreatePeriod handles cloning a new period in the Preparing state.
// @Summary     Create a period
// @Description Clone a period in the Preparing state from source, or from the most recent complete period
// @Tags        periods
// @Accept      json
// @Produce     json
// @Param       request body CreatePeriodRequest true "Target and optional source period"
// @Success     201 {object} object{period=services.PeriodInfo} "Period created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Source period not found"
// @Failure     409 {object} ErrorResponse "Period already exists"
// @Failure     422 {object} ErrorResponse "Too far in the future or nothing to clone"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /periods [post]
func (h *PeriodHandler) CreatePeriod(c *gin.Context) {
	var req CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	target, err := period.Parse(req.Target)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	var source *period.ID
	if req.Source != nil {
		id, err := period.Parse(*req.Source)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
		source = &id
	}

	if err := h.orchestrator.CreatePeriod(c.Request.Context(), target, source); err != nil {
		respondWithError(c, err)
		return
	}
	h.respondWithPeriod(c, http.StatusCreated, target)
}

// ActivatePeriod handles activating a Preparing period.
// @Summary     Activate a period
// @Description Make a Preparing period the active one; the previous active period is archived
// @Tags        periods
// @Produce     json
// @Param       id path string true "Period (YYYY_MM)"
// @Success     200 {object} object{period=services.PeriodInfo} "Period activated"
// @Failure     400 {object} ErrorResponse "Invalid period"
// @Failure     404 {object} ErrorResponse "Period not found"
// @Failure     409 {object} ErrorResponse "Invalid transition"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /periods/{id}/activate [post]
func (h *PeriodHandler) ActivatePeriod(c *gin.Context) {
	h.transition(c, h.orchestrator.ActivatePeriod)
}

// UnlockPeriod handles making an archived period editable.
// @Summary     Unlock a period
// @Description Make an archived period editable; a backup is written first
// @Tags        periods
// @Produce     json
// @Param       id path string true "Period (YYYY_MM)"
// @Success     200 {object} object{period=services.PeriodInfo} "Period unlocked"
// @Failure     400 {object} ErrorResponse "Invalid period"
// @Failure     404 {object} ErrorResponse "Period not found"
// @Failure     409 {object} ErrorResponse "Invalid transition or unlock limit reached"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /periods/{id}/unlock [post]
func (h *PeriodHandler) UnlockPeriod(c *gin.Context) {
	h.transition(c, h.orchestrator.UnlockPeriod)
}

// LockPeriod handles archiving an unlocked period again.
// @Summary     Lock a period
// @Description Archive an unlocked period again
// @Tags        periods
// @Produce     json
// @Param       id path string true "Period (YYYY_MM)"
// @Success     200 {object} object{period=services.PeriodInfo} "Period locked"
// @Failure     400 {object} ErrorResponse "Invalid period"
// @Failure     404 {object} ErrorResponse "Period not found"
// @Failure     409 {object} ErrorResponse "Invalid transition"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /periods/{id}/lock [post]
func (h *PeriodHandler) LockPeriod(c *gin.Context) {
	h.transition(c, h.orchestrator.LockPeriod)
}

// SwitchPeriod handles moving the navigation pointer. The intent defaults to view.
// @Summary     Switch to a period
// @Description Move the navigation pointer; intent "edit" unlocks archived periods
// @Tags        periods
// @Accept      json
// @Produce     json
// @Param       id      path string              true  "Period (YYYY_MM)"
// @Param       request body SwitchPeriodRequest false "Navigation intent (view or edit)"
// @Success     200 {object} object{period=services.PeriodInfo} "Switched"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Period not found"
// @Failure     409 {object} ErrorResponse "Unlock limit reached"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /periods/{id}/switch [post]
func (h *PeriodHandler) SwitchPeriod(c *gin.Context) {
	id, err := parsePeriodParam(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SwitchPeriodRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
	}
	intent := services.IntentView
	if req.Intent != "" {
		intent = services.SwitchIntent(req.Intent)
	}

	if err := h.orchestrator.SwitchTo(c.Request.Context(), id, intent); err != nil {
		respondWithError(c, err)
		return
	}
	h.respondWithPeriod(c, http.StatusOK, id)
}

// GetIntegrity reports which buckets a period is missing.
// @Summary     Check period integrity
// @Description List the buckets a period is missing
// @Tags        periods
// @Produce     json
// @Param       id path string true "Period (YYYY_MM)"
// @Success     200 {object} object{integrity=models.IntegrityReport} "Integrity report"
// @Failure     400 {object} ErrorResponse "Invalid period"
// @Failure     404 {object} ErrorResponse "Period not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /periods/{id}/integrity [get]
func (h *PeriodHandler) GetIntegrity(c *gin.Context) {
	id, err := parsePeriodParam(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	report, err := h.orchestrator.ValidateIntegrity(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"integrity": report})
}

// CheckRollover runs the month rollover check on demand.
// @Summary     Check month rollover
// @Description Archive the active period when the calendar has moved on and activate the calendar period if it exists
// @Tags        maintenance
// @Produce     json
// @Security    MaintenanceKey
// @Success     200 {object} object{rollover=services.RolloverResult} "Rollover result"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     500 {object} ErrorResponse "Server error"
// @Failure     503 {object} ErrorResponse "Maintenance disabled"
// @Router      /rollover/check [post]
func (h *PeriodHandler) CheckRollover(c *gin.Context) {
	result, err := h.orchestrator.CheckMonthRollover(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rollover": result})
}

// GetSystemState returns a diagnostic snapshot of the store.
// @Summary     Get system state
// @Description Diagnostic snapshot of the store, its periods and policy
// @Tags        system
// @Produce     json
// @Success     200 {object} object{system=services.SystemState} "System state"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /system [get]
func (h *PeriodHandler) GetSystemState(c *gin.Context) {
	state, err := h.orchestrator.SystemState(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"system": state})
}

// GetPurgeCandidates lists archived periods past the retention horizon.
// @Summary     List purge candidates
// @Description List archived periods older than the retention horizon
// @Tags        maintenance
// @Produce     json
// @Security    MaintenanceKey
// @Success     200 {object} object{candidates=[]string} "Candidate periods"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     500 {object} ErrorResponse "Server error"
// @Failure     503 {object} ErrorResponse "Maintenance disabled"
// @Router      /purge-candidates [get]
func (h *PeriodHandler) GetPurgeCandidates(c *gin.Context) {
	ids, err := h.orchestrator.PurgeCandidates(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"candidates": ids})
}

// PurgePeriod deletes an archived period after backing it up.
// @Summary     Purge a period
// @Description Back up and delete an archived period
// @Tags        maintenance
// @Produce     json
// @Security    MaintenanceKey
// @Param       id path string true "Period (YYYY_MM)"
// @Success     200 {object} object{message=string} "Period purged"
// @Failure     400 {object} ErrorResponse "Invalid period"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     404 {object} ErrorResponse "Period not found"
// @Failure     409 {object} ErrorResponse "Period is not archived"
// @Failure     500 {object} ErrorResponse "Server error"
// @Failure     503 {object} ErrorResponse "Maintenance disabled"
// @Router      /periods/{id} [delete]
func (h *PeriodHandler) PurgePeriod(c *gin.Context) {
	id, err := parsePeriodParam(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	if err := h.orchestrator.PurgePeriod(c.Request.Context(), id); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Period purged successfully"})
}

func (h *PeriodHandler) transition(c *gin.Context, fn func(ctx context.Context, id period.ID) error) {
	id, err := parsePeriodParam(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	if err := fn(c.Request.Context(), id); err != nil {
		respondWithError(c, err)
		return
	}
	h.respondWithPeriod(c, http.StatusOK, id)
}

// respondWithPeriod writes the current summary of id.
func (h *PeriodHandler) respondWithPeriod(c *gin.Context, status int, id period.ID) {
	infos, err := h.orchestrator.PeriodsInfo(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	for _, info := range infos {
		if info.Period == id {
			c.JSON(status, gin.H{"period": info})
			return
		}
	}
	respondWithError(c, apperrors.WithMessage(apperrors.ErrUnknownPeriod, "period "+id.String()+" does not exist"))
}
