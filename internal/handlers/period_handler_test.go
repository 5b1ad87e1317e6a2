package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "wisespend/internal/errors"
	"wisespend/internal/models"
	"wisespend/internal/period"
	"wisespend/internal/services"
)

func setupPeriodRouter(handler *PeriodHandler) *gin.Engine {
	r := gin.New()
	r.GET("/periods", handler.ListPeriods)
	r.POST("/periods", handler.CreatePeriod)
	r.DELETE("/periods/:id", handler.PurgePeriod)
	r.POST("/periods/:id/activate", handler.ActivatePeriod)
	r.POST("/periods/:id/unlock", handler.UnlockPeriod)
	r.POST("/periods/:id/lock", handler.LockPeriod)
	r.POST("/periods/:id/switch", handler.SwitchPeriod)
	r.GET("/periods/:id/integrity", handler.GetIntegrity)
	r.GET("/current", handler.GetCurrent)
	r.GET("/purge-candidates", handler.GetPurgeCandidates)
	r.POST("/rollover/check", handler.CheckRollover)
	r.GET("/system", handler.GetSystemState)
	return r
}

func TestPeriodHandler_ListPeriods(t *testing.T) {
	svc := &mockOrchestrator{periodsInfoFn: infoFor("2025_01", period.StateActive)}
	r := setupPeriodRouter(NewPeriodHandler(svc))

	rec := doRequest(r, http.MethodGet, "/periods", "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	periods := parseJSON(t, rec)["periods"].([]interface{})
	require.Len(t, periods, 1)
	first := periods[0].(map[string]interface{})
	assert.Equal(t, "2025_01", first["period"])
	assert.Equal(t, "active", first["state"])
	assert.Equal(t, true, first["is_editable"])
}

func TestPeriodHandler_CreatePeriod(t *testing.T) {
	t.Run("returns 201 with the new period", func(t *testing.T) {
		var gotTarget period.ID
		var gotSource *period.ID
		svc := &mockOrchestrator{
			createPeriodFn: func(_ context.Context, target period.ID, source *period.ID) error {
				gotTarget, gotSource = target, source
				return nil
			},
			periodsInfoFn: infoFor("2025_02", period.StatePreparing),
		}
		r := setupPeriodRouter(NewPeriodHandler(svc))

		rec := doRequest(r, http.MethodPost, "/periods", `{"target":"2025_02","source":"2024_12"}`)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, period.MustParse("2025_02"), gotTarget)
		require.NotNil(t, gotSource)
		assert.Equal(t, period.MustParse("2024_12"), *gotSource)
		p := parseJSON(t, rec)["period"].(map[string]interface{})
		assert.Equal(t, "preparing", p["state"])
	})

	t.Run("source is optional", func(t *testing.T) {
		var gotSource *period.ID
		svc := &mockOrchestrator{
			createPeriodFn: func(_ context.Context, _ period.ID, source *period.ID) error {
				gotSource = source
				return nil
			},
			periodsInfoFn: infoFor("2025_02", period.StatePreparing),
		}
		r := setupPeriodRouter(NewPeriodHandler(svc))

		rec := doRequest(r, http.MethodPost, "/periods", `{"target":"2025_02"}`)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Nil(t, gotSource)
	})

	t.Run("returns 400 on malformed period", func(t *testing.T) {
		r := setupPeriodRouter(NewPeriodHandler(&mockOrchestrator{}))

		for _, body := range []string{`{}`, `{"target":"2025-02"}`, `{"target":"2025_13"}`, `{"target":"2025_02","source":"x"}`} {
			rec := doRequest(r, http.MethodPost, "/periods", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, body)
			assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
		}
	})

	t.Run("maps store errors to status codes", func(t *testing.T) {
		tests := []struct {
			err    *apperrors.AppError
			status int
		}{
			{apperrors.ErrAlreadyExists, http.StatusConflict},
			{apperrors.ErrFutureLimitExceeded, http.StatusUnprocessableEntity},
			{apperrors.ErrNoCloneSource, http.StatusUnprocessableEntity},
			{apperrors.ErrUnknownPeriod, http.StatusNotFound},
		}
		for _, tt := range tests {
			svc := &mockOrchestrator{
				createPeriodFn: func(context.Context, period.ID, *period.ID) error { return tt.err },
			}
			r := setupPeriodRouter(NewPeriodHandler(svc))

			rec := doRequest(r, http.MethodPost, "/periods", `{"target":"2025_02"}`)
			assert.Equal(t, tt.status, rec.Code, tt.err.Code)
			assertErrorCode(t, parseJSON(t, rec), tt.err.Code)
		}
	})
}

func TestPeriodHandler_Transitions(t *testing.T) {
	var calls []string
	record := func(name string) func(context.Context, period.ID) error {
		return func(_ context.Context, id period.ID) error {
			calls = append(calls, name+":"+id.String())
			return nil
		}
	}
	svc := &mockOrchestrator{
		activatePeriodFn: record("activate"),
		unlockPeriodFn:   record("unlock"),
		lockPeriodFn:     record("lock"),
		periodsInfoFn:    infoFor("2024_11", period.StateUnlocked),
	}
	r := setupPeriodRouter(NewPeriodHandler(svc))

	for _, action := range []string{"activate", "unlock", "lock"} {
		rec := doRequest(r, http.MethodPost, "/periods/2024_11/"+action, "")
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	assert.Equal(t, []string{"activate:2024_11", "unlock:2024_11", "lock:2024_11"}, calls)

	rec := doRequest(r, http.MethodPost, "/periods/november/unlock", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPeriodHandler_UnlockLimit(t *testing.T) {
	svc := &mockOrchestrator{
		unlockPeriodFn: func(context.Context, period.ID) error {
			return apperrors.WithMessage(apperrors.ErrUnlockLimitExceeded, "at most 1 period(s) can be unlocked at once")
		},
	}
	r := setupPeriodRouter(NewPeriodHandler(svc))

	rec := doRequest(r, http.MethodPost, "/periods/2024_10/unlock", "")

	assert.Equal(t, http.StatusConflict, rec.Code)
	result := parseJSON(t, rec)
	assertErrorCode(t, result, "UNLOCK_LIMIT_EXCEEDED")
	assert.Equal(t, "at most 1 period(s) can be unlocked at once", result["error"].(map[string]interface{})["message"])
}

func TestPeriodHandler_SwitchPeriod(t *testing.T) {
	t.Run("defaults to view", func(t *testing.T) {
		var got services.SwitchIntent
		svc := &mockOrchestrator{
			switchToFn: func(_ context.Context, _ period.ID, intent services.SwitchIntent) error {
				got = intent
				return nil
			},
			periodsInfoFn: infoFor("2024_10", period.StateArchived),
		}
		r := setupPeriodRouter(NewPeriodHandler(svc))

		rec := doRequest(r, http.MethodPost, "/periods/2024_10/switch", "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, services.IntentView, got)
	})

	t.Run("edit on archived period is forbidden", func(t *testing.T) {
		svc := &mockOrchestrator{
			switchToFn: func(_ context.Context, _ period.ID, intent services.SwitchIntent) error {
				if intent == services.IntentEdit {
					return apperrors.ErrNotEditable
				}
				return nil
			},
		}
		r := setupPeriodRouter(NewPeriodHandler(svc))

		rec := doRequest(r, http.MethodPost, "/periods/2024_10/switch", `{"intent":"edit"}`)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assertErrorCode(t, parseJSON(t, rec), "NOT_EDITABLE")
	})

	t.Run("rejects unknown intents", func(t *testing.T) {
		r := setupPeriodRouter(NewPeriodHandler(&mockOrchestrator{}))

		rec := doRequest(r, http.MethodPost, "/periods/2024_10/switch", `{"intent":"delete"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestPeriodHandler_Diagnostics(t *testing.T) {
	svc := &mockOrchestrator{
		validateIntegrityFn: func(_ context.Context, id period.ID) (*models.IntegrityReport, error) {
			return &models.IntegrityReport{Period: id, MissingKinds: []period.Kind{period.KindReports}}, nil
		},
		checkRolloverFn: func(context.Context) (*services.RolloverResult, error) {
			return &services.RolloverResult{CalendarPeriod: period.MustParse("2025_03"), RequiresManualCreation: true}, nil
		},
		purgeCandidatesFn: func(context.Context) ([]period.ID, error) {
			return []period.ID{period.MustParse("2023_06")}, nil
		},
	}
	r := setupPeriodRouter(NewPeriodHandler(svc))

	rec := doRequest(r, http.MethodGet, "/periods/2025_01/integrity", "")
	require.Equal(t, http.StatusOK, rec.Code)
	integrity := parseJSON(t, rec)["integrity"].(map[string]interface{})
	assert.Equal(t, []interface{}{"reports"}, integrity["missing_kinds"])

	rec = doRequest(r, http.MethodPost, "/rollover/check", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rollover := parseJSON(t, rec)["rollover"].(map[string]interface{})
	assert.Equal(t, "2025_03", rollover["calendar_period"])
	assert.Equal(t, true, rollover["requires_manual_creation"])

	rec = doRequest(r, http.MethodGet, "/purge-candidates", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{"2023_06"}, parseJSON(t, rec)["candidates"])

	rec = doRequest(r, http.MethodGet, "/current", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2025_01", parseJSON(t, rec)["current_period"])

	rec = doRequest(r, http.MethodGet, "/system", "")
	require.Equal(t, http.StatusOK, rec.Code)
	system := parseJSON(t, rec)["system"].(map[string]interface{})
	assert.Equal(t, true, system["is_initialized"])
}

func TestPeriodHandler_PurgePeriod(t *testing.T) {
	svc := &mockOrchestrator{
		purgePeriodFn: func(_ context.Context, id period.ID) error {
			if id == period.MustParse("2025_01") {
				return apperrors.ErrInvalidTransition
			}
			return nil
		},
	}
	r := setupPeriodRouter(NewPeriodHandler(svc))

	rec := doRequest(r, http.MethodDelete, "/periods/2023_06", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(r, http.MethodDelete, "/periods/2025_01", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assertErrorCode(t, parseJSON(t, rec), "INVALID_TRANSITION")
}
