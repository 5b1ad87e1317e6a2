package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"wisespend/internal/models"
	"wisespend/internal/pagination"
	"wisespend/internal/period"
	"wisespend/internal/services"
	"wisespend/internal/validator"
)

// --- mock orchestrator ---

type mockOrchestrator struct {
	periodsInfoFn       func(ctx context.Context) ([]services.PeriodInfo, error)
	createPeriodFn      func(ctx context.Context, target period.ID, source *period.ID) error
	activatePeriodFn    func(ctx context.Context, id period.ID) error
	unlockPeriodFn      func(ctx context.Context, id period.ID) error
	lockPeriodFn        func(ctx context.Context, id period.ID) error
	switchToFn          func(ctx context.Context, id period.ID, intent services.SwitchIntent) error
	validateIntegrityFn func(ctx context.Context, id period.ID) (*models.IntegrityReport, error)
	checkRolloverFn     func(ctx context.Context) (*services.RolloverResult, error)
	readBucketFn        func(ctx context.Context, id period.ID, kind period.Kind) (models.Document, error)
	readAllBucketsFn    func(ctx context.Context, id period.ID) (*models.PeriodRecord, *models.IntegrityReport, error)
	writeBucketFn       func(ctx context.Context, id period.ID, kind period.Kind, doc models.Document) error
	addIncomeItemFn     func(ctx context.Context, item models.IncomeItem) (*models.IncomeItem, error)
	addExpenseItemFn    func(ctx context.Context, kind period.Kind, item models.ExpenseItem) (*models.ExpenseItem, error)
	setItemAmountFn     func(ctx context.Context, kind period.Kind, itemID string, amount decimal.Decimal) error
	removeItemFn        func(ctx context.Context, kind period.Kind, itemID string) error
	markPaidFn          func(ctx context.Context, kind period.Kind, itemID string, paid bool) error
	purgePeriodFn       func(ctx context.Context, id period.ID) error
	purgeCandidatesFn   func(ctx context.Context) ([]period.ID, error)
}

func (m *mockOrchestrator) Open(context.Context) error { return nil }

func (m *mockOrchestrator) Start(context.Context) {}

func (m *mockOrchestrator) Close() {}

func (m *mockOrchestrator) RegisterCallback(string, services.NavigationCallback) {}

func (m *mockOrchestrator) UnregisterCallback(string) {}

func (m *mockOrchestrator) Subscribe(services.Subscriber) func() { return func() {} }

func (m *mockOrchestrator) SwitchTo(ctx context.Context, id period.ID, intent services.SwitchIntent) error {
	if m.switchToFn != nil {
		return m.switchToFn(ctx, id, intent)
	}
	return nil
}

func (m *mockOrchestrator) CreatePeriod(ctx context.Context, target period.ID, source *period.ID) error {
	if m.createPeriodFn != nil {
		return m.createPeriodFn(ctx, target, source)
	}
	return nil
}

func (m *mockOrchestrator) ActivatePeriod(ctx context.Context, id period.ID) error {
	if m.activatePeriodFn != nil {
		return m.activatePeriodFn(ctx, id)
	}
	return nil
}

func (m *mockOrchestrator) UnlockPeriod(ctx context.Context, id period.ID) error {
	if m.unlockPeriodFn != nil {
		return m.unlockPeriodFn(ctx, id)
	}
	return nil
}

func (m *mockOrchestrator) LockPeriod(ctx context.Context, id period.ID) error {
	if m.lockPeriodFn != nil {
		return m.lockPeriodFn(ctx, id)
	}
	return nil
}

func (m *mockOrchestrator) CheckMonthRollover(ctx context.Context) (*services.RolloverResult, error) {
	if m.checkRolloverFn != nil {
		return m.checkRolloverFn(ctx)
	}
	return &services.RolloverResult{}, nil
}

func (m *mockOrchestrator) ReadBucket(ctx context.Context, id period.ID, kind period.Kind) (models.Document, error) {
	if m.readBucketFn != nil {
		return m.readBucketFn(ctx, id, kind)
	}
	return models.NewDocument(kind)
}

func (m *mockOrchestrator) ReadAllBuckets(ctx context.Context, id period.ID) (*models.PeriodRecord, *models.IntegrityReport, error) {
	if m.readAllBucketsFn != nil {
		return m.readAllBucketsFn(ctx, id)
	}
	return &models.PeriodRecord{Period: id, Buckets: map[period.Kind]models.Document{}},
		&models.IntegrityReport{Period: id, MissingKinds: period.AllKinds()}, nil
}

func (m *mockOrchestrator) ValidateIntegrity(ctx context.Context, id period.ID) (*models.IntegrityReport, error) {
	if m.validateIntegrityFn != nil {
		return m.validateIntegrityFn(ctx, id)
	}
	return &models.IntegrityReport{Period: id, Complete: true, MissingKinds: []period.Kind{}}, nil
}

func (m *mockOrchestrator) WriteBucket(ctx context.Context, id period.ID, kind period.Kind, doc models.Document) error {
	if m.writeBucketFn != nil {
		return m.writeBucketFn(ctx, id, kind, doc)
	}
	return nil
}

func (m *mockOrchestrator) CurrentPeriod(context.Context) (period.ID, error) {
	return period.MustParse("2025_01"), nil
}

func (m *mockOrchestrator) ActivePeriod(context.Context) (period.ID, bool, error) {
	return period.MustParse("2025_01"), true, nil
}

func (m *mockOrchestrator) PeriodsInfo(ctx context.Context) ([]services.PeriodInfo, error) {
	if m.periodsInfoFn != nil {
		return m.periodsInfoFn(ctx)
	}
	return []services.PeriodInfo{}, nil
}

func (m *mockOrchestrator) SystemState(context.Context) (*services.SystemState, error) {
	return &services.SystemState{Initialized: true, Policy: services.DefaultPolicy()}, nil
}

func (m *mockOrchestrator) AddIncomeItem(ctx context.Context, item models.IncomeItem) (*models.IncomeItem, error) {
	if m.addIncomeItemFn != nil {
		return m.addIncomeItemFn(ctx, item)
	}
	return &item, nil
}

func (m *mockOrchestrator) AddExpenseItem(ctx context.Context, kind period.Kind, item models.ExpenseItem) (*models.ExpenseItem, error) {
	if m.addExpenseItemFn != nil {
		return m.addExpenseItemFn(ctx, kind, item)
	}
	return &item, nil
}

func (m *mockOrchestrator) SetItemAmount(ctx context.Context, kind period.Kind, itemID string, amount decimal.Decimal) error {
	if m.setItemAmountFn != nil {
		return m.setItemAmountFn(ctx, kind, itemID, amount)
	}
	return nil
}

func (m *mockOrchestrator) RemoveItem(ctx context.Context, kind period.Kind, itemID string) error {
	if m.removeItemFn != nil {
		return m.removeItemFn(ctx, kind, itemID)
	}
	return nil
}

func (m *mockOrchestrator) MarkPaid(ctx context.Context, kind period.Kind, itemID string, paid bool) error {
	if m.markPaidFn != nil {
		return m.markPaidFn(ctx, kind, itemID, paid)
	}
	return nil
}

func (m *mockOrchestrator) PurgeCandidates(ctx context.Context) ([]period.ID, error) {
	if m.purgeCandidatesFn != nil {
		return m.purgeCandidatesFn(ctx)
	}
	return []period.ID{}, nil
}

func (m *mockOrchestrator) PurgePeriod(ctx context.Context, id period.ID) error {
	if m.purgePeriodFn != nil {
		return m.purgePeriodFn(ctx, id)
	}
	return nil
}

var _ services.Orchestrator = (*mockOrchestrator)(nil)

// --- mock audit service ---

type mockAuditService struct {
	listEventsFn func(ctx context.Context, filter services.AuditFilter, page pagination.PageRequest) (*pagination.PageResponse[models.AuditLog], error)
}

func (m *mockAuditService) Record(services.Event) {}

func (m *mockAuditService) ListEvents(ctx context.Context, filter services.AuditFilter, page pagination.PageRequest) (*pagination.PageResponse[models.AuditLog], error) {
	if m.listEventsFn != nil {
		return m.listEventsFn(ctx, filter, page)
	}
	resp := pagination.NewPageResponse([]models.AuditLog{}, 1, pagination.DefaultPageSize, 0)
	return &resp, nil
}

var _ services.AuditServicer = (*mockAuditService)(nil)

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

// infoFor returns a PeriodsInfo stub listing one period.
func infoFor(id string, state period.State) func(context.Context) ([]services.PeriodInfo, error) {
	return func(context.Context) ([]services.PeriodInfo, error) {
		return []services.PeriodInfo{{
			Period:   period.MustParse(id),
			State:    state,
			Editable: state.Editable(),
		}}, nil
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}
