package validator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"wisespend/internal/models"
)

type switchRequest struct {
	Period string `validate:"required,period_id"`
	Kind   string `validate:"omitempty,bucket_kind"`
	Intent string `validate:"omitempty,switch_intent"`
}

func TestCustomTags(t *testing.T) {
	tests := []struct {
		name    string
		req     switchRequest
		wantErr bool
	}{
		{"valid request", switchRequest{Period: "2025_01", Kind: "fixed_expenses", Intent: "edit"}, false},
		{"bad period", switchRequest{Period: "2025-01"}, true},
		{"month out of range", switchRequest{Period: "2025_13"}, true},
		{"unknown kind", switchRequest{Period: "2025_01", Kind: "savings"}, true},
		{"unknown intent", switchRequest{Period: "2025_01", Intent: "delete"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.req)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDocumentValidation(t *testing.T) {
	valid := &models.FixedExpensesDocument{ExpenseList: models.ExpenseList{Items: []models.ExpenseItem{
		{ID: "rent", Category: "rent", Amount: decimal.NewFromInt(500), Active: true},
	}}}
	assert.NoError(t, Struct(valid))

	negative := &models.FixedExpensesDocument{ExpenseList: models.ExpenseList{Items: []models.ExpenseItem{
		{ID: "rent", Category: "rent", Amount: decimal.NewFromInt(-1), Active: true},
	}}}
	assert.Error(t, Struct(negative))

	missingID := &models.IncomeDocument{Items: []models.IncomeItem{{Source: "salary", Amount: decimal.NewFromInt(1)}}}
	assert.Error(t, Struct(missingID))

	assert.NoError(t, Struct(&models.ConfigurationDocument{Currency: "CLP"}))
	assert.Error(t, Struct(&models.ConfigurationDocument{Currency: "XXY"}))
}
