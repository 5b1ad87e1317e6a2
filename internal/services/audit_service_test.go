package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "wisespend/internal/errors"
	"wisespend/internal/models"
	"wisespend/internal/pagination"
	"wisespend/internal/period"
	"wisespend/internal/testutil"
)

func TestAuditService_RecordAndList(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	svc := NewAuditService(db)

	base := testutil.Date(2025, 1, 10)
	for i, typ := range []EventType{EventPeriodCreated, EventPeriodActivated, EventBucketSaved} {
		ev := newEvent(typ, jan2025, base.Add(time.Duration(i)*time.Minute))
		if typ == EventBucketSaved {
			ev.Kind = period.KindIncome
		}
		svc.Record(ev)
	}
	svc.Record(newErrorEvent(EventPeriodUnlockedError, dec2024, base, apperrors.ErrUnlockLimitExceeded))

	page, err := svc.ListEvents(ctx, AuditFilter{}, pagination.PageRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, page.TotalItems)
	assert.Equal(t, pagination.DefaultPageSize, page.PageSize)
	require.Len(t, page.Data, 4)
	assert.Equal(t, string(EventBucketSaved), page.Data[0].EventType, "newest first")
	assert.Equal(t, string(period.KindIncome), page.Data[0].BucketKind)

	p := jan2025
	page, err = svc.ListEvents(ctx, AuditFilter{Period: &p}, pagination.PageRequest{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.TotalItems)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Data, 2)

	typ := EventPeriodUnlockedError
	page, err = svc.ListEvents(ctx, AuditFilter{EventType: &typ}, pagination.PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, apperrors.ErrUnlockLimitExceeded.Code, page.Data[0].ErrorCode)
	assert.Equal(t, "2024_12", page.Data[0].Period)
}

func TestAuditService_RecordIsIdempotentPerEvent(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	svc := NewAuditService(db)

	ev := newEvent(EventPeriodLocked, nov2024, testutil.Date(2024, 12, 1))
	svc.Record(ev)
	svc.Record(ev)

	var count int64
	require.NoError(t, db.Model(&models.AuditLog{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	page, err := svc.ListEvents(ctx, AuditFilter{}, pagination.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, ev.ID, page.Data[0].ID)
}

func TestAuditService_SubscribedToOrchestrator(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, testutil.Date(2025, 1, 15))
	db := testutil.SetupTestDB(t)
	audit := NewAuditService(db)
	s.o.Subscribe(audit.Record)

	require.NoError(t, s.o.Open(ctx))
	err := s.o.LockPeriod(ctx, jan2025)
	require.Error(t, err)

	page, err := audit.ListEvents(ctx, AuditFilter{}, pagination.PageRequest{PageSize: 100})
	require.NoError(t, err)
	types := map[string]bool{}
	for _, row := range page.Data {
		types[row.EventType] = true
	}
	assert.True(t, types[string(EventMigrationCompleted)])
	assert.True(t, types[string(EventPeriodLockedError)])
}

func TestNewErrorEventCarriesCode(t *testing.T) {
	at := testutil.Date(2025, 1, 1)

	ev := newErrorEvent(EventPeriodCreatedError, jan2025, at, apperrors.WithMessage(apperrors.ErrAlreadyExists, "exists"))
	assert.True(t, ev.IsError())
	assert.Equal(t, apperrors.ErrAlreadyExists.Code, ev.Code)
	assert.Equal(t, "exists", ev.Error)

	ev = newErrorEvent(EventPeriodCreatedError, jan2025, at, errors.New("disk on fire"))
	assert.Equal(t, apperrors.ErrInternal.Code, ev.Code)

	assert.False(t, newEvent(EventPeriodCreated, jan2025, at).IsError())
}

func TestEventBus_RollbackDropsUndoneEvents(t *testing.T) {
	bus := &eventBus{}
	at := testutil.Date(2025, 1, 1)

	bus.emit(newEvent(EventPeriodArchived, dec2024, at))
	mark := bus.mark()
	bus.emit(newEvent(EventPeriodActivated, jan2025, at))
	bus.emit(newEvent(EventPeriodChanged, jan2025, at))
	bus.rollback(mark)

	events := bus.take()
	require.Len(t, events, 1)
	assert.Equal(t, EventPeriodArchived, events[0].Type)
	assert.Empty(t, bus.take())
}
