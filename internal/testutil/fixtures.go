package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"wisespend/internal/models"
	"wisespend/internal/period"
)

// counter provides unique item IDs across fixtures within a test run.
var counter atomic.Int64

func nextID(prefix string) string {
	return fmt.Sprintf("%s%03d", prefix, counter.Add(1))
}

// Income builds an income document with one active item per amount.
func Income(amounts ...int64) *models.IncomeDocument {
	doc := &models.IncomeDocument{Items: []models.IncomeItem{}}
	for i, amount := range amounts {
		doc.Items = append(doc.Items, models.IncomeItem{
			ID:     nextID("in"),
			Source: fmt.Sprintf("source %d", i+1),
			Amount: decimal.NewFromInt(amount),
			Active: true,
		})
	}
	doc.Recalculate()
	return doc
}

// PaidExpenses builds an expense list whose items are all marked paid at paidAt.
func PaidExpenses(paidAt time.Time, amounts ...int64) models.ExpenseList {
	list := models.ExpenseList{Items: []models.ExpenseItem{}}
	for i, amount := range amounts {
		at := paidAt
		list.Items = append(list.Items, models.ExpenseItem{
			ID:       nextID("ex"),
			Category: fmt.Sprintf("expense %d", i+1),
			Amount:   decimal.NewFromInt(amount),
			Active:   true,
			Paid:     true,
			PaidAt:   &at,
		})
	}
	list.Recalculate()
	return list
}

// FullRecord returns one document per bucket kind. Expense items are paid.
func FullRecord(paidAt time.Time) map[period.Kind]models.Document {
	return map[period.Kind]models.Document{
		period.KindIncome:           Income(1000, 250),
		period.KindFixedExpenses:    &models.FixedExpensesDocument{ExpenseList: PaidExpenses(paidAt, 400, 60)},
		period.KindVariableExpenses: &models.VariableExpensesDocument{ExpenseList: PaidExpenses(paidAt, 120)},
		period.KindExtraExpenses: &models.ExtraExpensesDocument{
			ExpenseList: PaidExpenses(paidAt, 80),
			Budget:      decimal.NewFromInt(150),
			Percentage:  decimal.NewFromInt(10),
		},
		period.KindConfiguration: &models.ConfigurationDocument{Currency: "CLP", AutoSave: true, SaveIntervalMS: 30000},
		period.KindUserProfile:   &models.UserProfileDocument{Name: "Household"},
		period.KindReports:       &models.ReportsDocument{ExportFormat: "pdf", Periodicity: "monthly"},
	}
}
