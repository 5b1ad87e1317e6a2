package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wisespend/internal/models"
	"wisespend/internal/pagination"
	"wisespend/internal/services"
)

func setupEventRouter(handler *EventHandler) *gin.Engine {
	r := gin.New()
	r.GET("/events", handler.ListEvents)
	return r
}

func TestEventHandler_ListEvents(t *testing.T) {
	t.Run("passes filters and paging", func(t *testing.T) {
		var gotFilter services.AuditFilter
		var gotPage pagination.PageRequest
		svc := &mockAuditService{
			listEventsFn: func(_ context.Context, filter services.AuditFilter, page pagination.PageRequest) (*pagination.PageResponse[models.AuditLog], error) {
				gotFilter, gotPage = filter, page
				resp := pagination.NewPageResponse([]models.AuditLog{{EventType: "periodUnlocked", Period: "2024_11"}}, 2, 10, 11)
				return &resp, nil
			},
		}
		r := setupEventRouter(NewEventHandler(svc))

		rec := doRequest(r, http.MethodGet, "/events?period=2024_11&type=periodUnlocked&page=2&page_size=10", "")

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		require.NotNil(t, gotFilter.Period)
		assert.Equal(t, "2024_11", gotFilter.Period.String())
		require.NotNil(t, gotFilter.EventType)
		assert.Equal(t, services.EventPeriodUnlocked, *gotFilter.EventType)
		assert.Equal(t, 2, gotPage.Page)
		assert.Equal(t, 10, gotPage.PageSize)

		result := parseJSON(t, rec)
		assert.EqualValues(t, 2, result["total_pages"])
		assert.Len(t, result["data"], 1)
	})

	t.Run("rejects malformed filters", func(t *testing.T) {
		r := setupEventRouter(NewEventHandler(&mockAuditService{}))

		rec := doRequest(r, http.MethodGet, "/events?period=last-month", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = doRequest(r, http.MethodGet, "/events?page_size=1000", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
