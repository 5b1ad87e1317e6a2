package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"wisespend/internal/period"
)

// Document is the payload of one bucket. Each period.Kind has exactly one
// concrete document type; see NewDocument.
type Document interface {
	Kind() period.Kind
}

// Ledger is implemented by documents holding a total and line items.
type Ledger interface {
	Document
	Recalculate()
	SetItemAmount(id string, amount decimal.Decimal) bool
	RemoveItem(id string) bool
}

// Scrubber is implemented by documents holding per-period execution state
// (payment flags) that must not leak into a cloned period.
type Scrubber interface {
	ResetExecutionState()
}

// IncomeItem is one income source.
type IncomeItem struct {
	ID     string          `json:"id" validate:"required"`
	Source string          `json:"source" validate:"required,max=200"`
	Amount decimal.Decimal `json:"amount" validate:"gte=0"`
	Active bool            `json:"active"`
}

// IncomeDocument holds the income sources of a period.
type IncomeDocument struct {
	Total decimal.Decimal `json:"total"`
	Items []IncomeItem    `json:"items" validate:"dive"`
}

func (*IncomeDocument) Kind() period.Kind { return period.KindIncome }

// Recalculate sets Total to the sum of active items.
func (d *IncomeDocument) Recalculate() {
	total := decimal.Zero
	for _, it := range d.Items {
		if it.Active {
			total = total.Add(it.Amount)
		}
	}
	d.Total = total
}

func (d *IncomeDocument) SetItemAmount(id string, amount decimal.Decimal) bool {
	for i := range d.Items {
		if d.Items[i].ID == id {
			d.Items[i].Amount = amount
			d.Recalculate()
			return true
		}
	}
	return false
}

func (d *IncomeDocument) RemoveItem(id string) bool {
	for i := range d.Items {
		if d.Items[i].ID == id {
			d.Items = append(d.Items[:i], d.Items[i+1:]...)
			d.Recalculate()
			return true
		}
	}
	return false
}

// ExpenseItem is one payable expense line.
type ExpenseItem struct {
	ID        string          `json:"id" validate:"required"`
	Category  string          `json:"category" validate:"required,max=200"`
	Amount    decimal.Decimal `json:"amount" validate:"gte=0"`
	Active    bool            `json:"active"`
	Paid      bool            `json:"paid"`
	PaidAt    *time.Time      `json:"paid_at,omitempty"`
	CreatedAt *time.Time      `json:"created_at,omitempty"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty"`
}

// ExpenseList is the shape shared by every expense bucket.
type ExpenseList struct {
	Total decimal.Decimal `json:"total"`
	Items []ExpenseItem   `json:"items" validate:"dive"`
}

// Recalculate sets Total to the sum of active items.
func (l *ExpenseList) Recalculate() {
	total := decimal.Zero
	for _, it := range l.Items {
		if it.Active {
			total = total.Add(it.Amount)
		}
	}
	l.Total = total
}

// ResetExecutionState clears payment flags and payment timestamps.
func (l *ExpenseList) ResetExecutionState() {
	for i := range l.Items {
		l.Items[i].Paid = false
		l.Items[i].PaidAt = nil
	}
}

func (l *ExpenseList) SetItemAmount(id string, amount decimal.Decimal) bool {
	for i := range l.Items {
		if l.Items[i].ID == id {
			l.Items[i].Amount = amount
			l.Recalculate()
			return true
		}
	}
	return false
}

func (l *ExpenseList) RemoveItem(id string) bool {
	for i := range l.Items {
		if l.Items[i].ID == id {
			l.Items = append(l.Items[:i], l.Items[i+1:]...)
			l.Recalculate()
			return true
		}
	}
	return false
}

// MarkPaid flips the paid flag of an item and stamps or clears PaidAt.
func (l *ExpenseList) MarkPaid(id string, paid bool, at time.Time) bool {
	for i := range l.Items {
		if l.Items[i].ID != id {
			continue
		}
		l.Items[i].Paid = paid
		if paid {
			ts := at
			l.Items[i].PaidAt = &ts
		} else {
			l.Items[i].PaidAt = nil
		}
		l.Items[i].UpdatedAt = &at
		return true
	}
	return false
}

// Expenses returns the embedded list.
func (l *ExpenseList) Expenses() *ExpenseList { return l }

// ExpenseDocument is implemented by the three expense buckets.
type ExpenseDocument interface {
	Ledger
	Scrubber
	Expenses() *ExpenseList
}

// FixedExpensesDocument holds recurring fixed expenses.
type FixedExpensesDocument struct {
	ExpenseList
}

func (*FixedExpensesDocument) Kind() period.Kind { return period.KindFixedExpenses }

// VariableExpensesDocument holds variable expenses.
type VariableExpensesDocument struct {
	ExpenseList
}

func (*VariableExpensesDocument) Kind() period.Kind { return period.KindVariableExpenses }

// ExtraExpensesDocument holds one-off expenses drawn against a budget.
type ExtraExpensesDocument struct {
	ExpenseList
	Budget     decimal.Decimal `json:"budget" validate:"gte=0"`
	Percentage decimal.Decimal `json:"percentage" validate:"gte=0"`
}

func (*ExtraExpensesDocument) Kind() period.Kind { return period.KindExtraExpenses }

// ConfigurationDocument holds per-period display and saving preferences.
type ConfigurationDocument struct {
	Currency          string `json:"currency" validate:"omitempty,iso4217"`
	AutoSave          bool   `json:"auto_save"`
	SaveIntervalMS    int64  `json:"save_interval_ms" validate:"gte=0"`
	ShowNotifications bool   `json:"show_notifications"`
	Theme             string `json:"theme"`
	DateFormat        string `json:"date_format"`
	ShowDetails       bool   `json:"show_details"`
}

func (*ConfigurationDocument) Kind() period.Kind { return period.KindConfiguration }

// UserProfileDocument holds the household profile.
type UserProfileDocument struct {
	Name       string     `json:"name"`
	Email      string     `json:"email" validate:"omitempty,email"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
	LastAccess *time.Time `json:"last_access,omitempty"`
}

func (*UserProfileDocument) Kind() period.Kind { return period.KindUserProfile }

// ReportsDocument holds report preferences and the last generated report time.
type ReportsDocument struct {
	LastReport    *time.Time `json:"last_report,omitempty"`
	IncludeCharts bool       `json:"include_charts"`
	ExportFormat  string     `json:"export_format"`
	Periodicity   string     `json:"periodicity"`
}

func (*ReportsDocument) Kind() period.Kind { return period.KindReports }

// NewDocument allocates the empty document type for kind.
func NewDocument(kind period.Kind) (Document, error) {
	switch kind {
	case period.KindIncome:
		return &IncomeDocument{}, nil
	case period.KindFixedExpenses:
		return &FixedExpensesDocument{}, nil
	case period.KindVariableExpenses:
		return &VariableExpensesDocument{}, nil
	case period.KindExtraExpenses:
		return &ExtraExpensesDocument{}, nil
	case period.KindConfiguration:
		return &ConfigurationDocument{}, nil
	case period.KindUserProfile:
		return &UserProfileDocument{}, nil
	case period.KindReports:
		return &ReportsDocument{}, nil
	}
	return nil, fmt.Errorf("unknown bucket kind %q", kind)
}

// DecodeDocument decodes raw JSON into the document type for kind.
func DecodeDocument(kind period.Kind, raw []byte) (Document, error) {
	doc, err := NewDocument(kind)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, doc); err != nil {
		return nil, fmt.Errorf("decode %s document: %w", kind, err)
	}
	return doc, nil
}
