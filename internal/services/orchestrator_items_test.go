package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "wisespend/internal/errors"
	"wisespend/internal/kv"
	"wisespend/internal/models"
	"wisespend/internal/period"
	"wisespend/internal/testutil"
)

func TestOrchestrator_WriteBucketGuards(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, testutil.Date(2025, 1, 15))
	s.seed(t, dec2024, period.StateArchived, nil)
	s.seed(t, jan2025, period.StateActive, nil)

	err := s.o.WriteBucket(ctx, dec2024, period.KindIncome, testutil.Income(1))
	testutil.AssertErrorIs(t, err, apperrors.ErrNotEditable)

	err = s.o.WriteBucket(ctx, feb2025, period.KindIncome, testutil.Income(1))
	testutil.AssertErrorIs(t, err, apperrors.ErrUnknownPeriod)

	failures := s.events.ofType(EventBucketSavedError)
	require.Len(t, failures, 2)
	assert.Equal(t, apperrors.ErrNotEditable.Code, failures[0].Code)
	assert.Equal(t, period.KindIncome, failures[0].Kind)

	_, err = s.o.ReadBucket(ctx, dec2024, period.KindIncome)
	testutil.AssertErrorIs(t, err, apperrors.ErrNotFound)
	_, err = s.o.ReadBucket(ctx, feb2025, period.KindIncome)
	testutil.AssertErrorIs(t, err, apperrors.ErrUnknownPeriod)

	require.NoError(t, s.o.WriteBucket(ctx, jan2025, period.KindIncome, testutil.Income(1)))
	assert.Len(t, s.events.ofType(EventBucketSaved), 1)
}

func TestOrchestrator_PreparingPeriodIsEditable(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, testutil.Date(2025, 1, 15))
	s.seed(t, jan2025, period.StateActive, testutil.FullRecord(testutil.Date(2025, 1, 2)))
	require.NoError(t, s.o.CreatePeriod(ctx, feb2025, nil))

	require.NoError(t, s.o.WriteBucket(ctx, feb2025, period.KindReports, &models.ReportsDocument{ExportFormat: "xlsx"}))
	require.NoError(t, s.o.SwitchTo(ctx, feb2025, IntentEdit))
}

func TestOrchestrator_ItemHelpers(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, testutil.Date(2025, 1, 15))
	s.seed(t, jan2025, period.StateActive, nil)

	salary, err := s.o.AddIncomeItem(ctx, models.IncomeItem{Source: "salary", Amount: decimal.NewFromInt(2000), Active: true})
	require.NoError(t, err)
	assert.NotEmpty(t, salary.ID)

	rent, err := s.o.AddExpenseItem(ctx, period.KindFixedExpenses, models.ExpenseItem{Category: "rent", Amount: decimal.NewFromInt(800), Active: true})
	require.NoError(t, err)
	require.NotNil(t, rent.CreatedAt)
	power, err := s.o.AddExpenseItem(ctx, period.KindFixedExpenses, models.ExpenseItem{Category: "power", Amount: decimal.NewFromInt(90), Active: true})
	require.NoError(t, err)

	require.NoError(t, s.o.MarkPaid(ctx, period.KindFixedExpenses, rent.ID, true))
	require.NoError(t, s.o.SetItemAmount(ctx, period.KindFixedExpenses, power.ID, decimal.NewFromInt(110)))

	doc, err := s.o.ReadBucket(ctx, jan2025, period.KindFixedExpenses)
	require.NoError(t, err)
	fixed := doc.(*models.FixedExpensesDocument)
	require.Len(t, fixed.Items, 2)
	assert.True(t, fixed.Items[0].Paid)
	require.NotNil(t, fixed.Items[0].PaidAt)
	assert.True(t, fixed.Items[0].PaidAt.Equal(s.clock.Now()))
	assert.True(t, fixed.Total.Equal(decimal.NewFromInt(910)))

	require.NoError(t, s.o.MarkPaid(ctx, period.KindFixedExpenses, rent.ID, false))
	require.NoError(t, s.o.RemoveItem(ctx, period.KindFixedExpenses, power.ID))

	doc, err = s.o.ReadBucket(ctx, jan2025, period.KindFixedExpenses)
	require.NoError(t, err)
	fixed = doc.(*models.FixedExpensesDocument)
	require.Len(t, fixed.Items, 1)
	assert.False(t, fixed.Items[0].Paid)
	assert.Nil(t, fixed.Items[0].PaidAt)
	assert.True(t, fixed.Total.Equal(decimal.NewFromInt(800)))

	require.NoError(t, s.o.SetItemAmount(ctx, period.KindIncome, salary.ID, decimal.NewFromInt(2100)))
	doc, err = s.o.ReadBucket(ctx, jan2025, period.KindIncome)
	require.NoError(t, err)
	assert.True(t, doc.(*models.IncomeDocument).Total.Equal(decimal.NewFromInt(2100)))
}

func TestOrchestrator_ItemHelperErrors(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, testutil.Date(2025, 1, 15))
	s.seed(t, dec2024, period.StateArchived, nil)
	s.seed(t, jan2025, period.StateActive, nil)

	_, err := s.o.AddExpenseItem(ctx, period.KindIncome, models.ExpenseItem{Category: "x"})
	testutil.AssertErrorIs(t, err, apperrors.ErrInvalidInput)

	testutil.AssertErrorIs(t, s.o.MarkPaid(ctx, period.KindIncome, "any", true), apperrors.ErrInvalidInput)
	testutil.AssertErrorIs(t, s.o.RemoveItem(ctx, period.KindConfiguration, "any"), apperrors.ErrInvalidInput)
	testutil.AssertErrorIs(t, s.o.RemoveItem(ctx, period.KindFixedExpenses, "missing"), apperrors.ErrNotFound)

	_, err = s.o.AddIncomeItem(ctx, models.IncomeItem{Source: "refund", Amount: decimal.NewFromInt(-5), Active: true})
	testutil.AssertErrorIs(t, err, apperrors.ErrInvalidInput)

	require.NoError(t, s.o.SwitchTo(ctx, dec2024, IntentView))
	_, err = s.o.AddIncomeItem(ctx, models.IncomeItem{Source: "bonus", Amount: decimal.NewFromInt(5), Active: true})
	testutil.AssertErrorIs(t, err, apperrors.ErrNotEditable)
}

func TestOrchestrator_PeriodsInfo(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, testutil.Date(2025, 1, 15))
	s.seed(t, nov2024, period.StateUnlocked, nil)
	s.seed(t, dec2024, period.StateArchived, nil)
	s.seed(t, jan2025, period.StateActive, nil)
	s.seed(t, feb2025, period.StatePreparing, nil)

	infos, err := s.o.PeriodsInfo(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 4)
	assert.Equal(t, feb2025, infos[0].Period, "most recent first")

	byID := map[period.ID]PeriodInfo{}
	for _, info := range infos {
		byID[info.Period] = info
	}
	assert.True(t, byID[jan2025].Current)
	assert.True(t, byID[jan2025].Active)
	assert.True(t, byID[feb2025].CanActivate)
	assert.True(t, byID[dec2024].CanUnlock)
	assert.False(t, byID[dec2024].Editable)
	assert.True(t, byID[nov2024].Editable)
	assert.Equal(t, "January 2025", byID[jan2025].DisplayName)
}

func TestOrchestrator_PurgeArchivedPeriods(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, testutil.Date(2025, 1, 15))
	old := period.MustNew(2023, 6)
	s.seed(t, old, period.StateArchived, testutil.FullRecord(testutil.Date(2023, 6, 3)))
	s.seed(t, period.MustNew(2023, 7), period.StateUnlocked, nil)
	s.seed(t, dec2024, period.StateArchived, nil)
	s.seed(t, jan2025, period.StateActive, nil)

	candidates, err := s.o.PurgeCandidates(ctx)
	require.NoError(t, err)
	assert.Equal(t, []period.ID{old}, candidates)

	testutil.AssertErrorIs(t, s.o.PurgePeriod(ctx, jan2025), apperrors.ErrInvalidTransition)
	assert.Len(t, s.events.ofType(EventPeriodPurgedError), 1)

	require.NoError(t, s.o.PurgePeriod(ctx, old))

	ok, err := s.o.index.Contains(ctx, old)
	require.NoError(t, err)
	assert.False(t, ok)
	for _, key := range testKeys.PeriodKeys(old) {
		_, found, err := kv.Lookup(ctx, s.medium, key)
		require.NoError(t, err)
		assert.False(t, found, key)
	}
	backups, err := s.medium.Keys(ctx, testKeys.PeriodBackupPrefix(old))
	require.NoError(t, err)
	assert.Len(t, backups, 1)
	assert.Len(t, s.events.ofType(EventPeriodPurged), 1)

	candidates, err = s.o.PurgeCandidates(ctx)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}
