package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"wisespend/internal/period"
)

// Legacy documents were written by the un-partitioned version of the app,
// with Spanish field names and loosely typed values.

type legacyTime struct {
	t *time.Time
}

var legacyTimeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

func (lt *legacyTime) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("legacy timestamp: %w", err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range legacyTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			lt.t = &t
			return nil
		}
	}
	return fmt.Errorf("legacy timestamp %q: unrecognized format", s)
}

type legacyItem struct {
	ID        string          `json:"id"`
	Source    string          `json:"fuente"`
	Category  string          `json:"categoria"`
	Amount    decimal.Decimal `json:"monto"`
	Active    *bool           `json:"activo"`
	Paid      bool            `json:"pagado"`
	PaidAt    legacyTime      `json:"fechaPago"`
	CreatedAt legacyTime      `json:"fechaCreacion"`
	UpdatedAt legacyTime      `json:"fechaActualizacion"`
}

func (it legacyItem) active() bool {
	return it.Active == nil || *it.Active
}

type legacyLedger struct {
	Total     decimal.Decimal `json:"total"`
	Breakdown []legacyItem    `json:"desglose"`
	Items     []legacyItem    `json:"items"`
	Budget    decimal.Decimal `json:"presupuesto"`
	Percent   decimal.Decimal `json:"porcentaje"`
}

// lines returns the item list; income used "desglose", expenses "items".
func (l legacyLedger) lines() []legacyItem {
	if len(l.Items) > 0 {
		return l.Items
	}
	return l.Breakdown
}

type legacyConfiguration struct {
	Currency          string `json:"monedaPrincipal"`
	AutoSave          bool   `json:"autoGuardado"`
	SaveInterval      int64  `json:"intervalGuardado"`
	ShowNotifications bool   `json:"mostrarNotificaciones"`
	Theme             string `json:"tema"`
	DateFormat        string `json:"formatoFecha"`
	ShowDetails       bool   `json:"mostrarDetalles"`
}

type legacyUser struct {
	Name       string     `json:"nombre"`
	Email      string     `json:"email"`
	CreatedAt  legacyTime `json:"fechaCreacion"`
	LastAccess legacyTime `json:"ultimoAcceso"`
}

type legacyReports struct {
	LastReport legacyTime `json:"ultimoReporte"`
	Settings   struct {
		IncludeCharts bool   `json:"incluirGraficos"`
		ExportFormat  string `json:"formatoExportacion"`
		Periodicity   string `json:"periodicidad"`
	} `json:"configuracionReporte"`
}

// DecodeLegacy converts a legacy document into the typed document for kind.
// newID supplies identifiers for legacy items stored without one.
func DecodeLegacy(kind period.Kind, raw []byte, newID func() string) (Document, error) {
	switch kind {
	case period.KindIncome:
		var l legacyLedger
		if err := json.Unmarshal(raw, &l); err != nil {
			return nil, fmt.Errorf("decode legacy %s: %w", kind, err)
		}
		doc := &IncomeDocument{Items: []IncomeItem{}}
		for _, it := range l.lines() {
			id := it.ID
			if id == "" {
				id = newID()
			}
			doc.Items = append(doc.Items, IncomeItem{
				ID:     id,
				Source: it.Source,
				Amount: it.Amount,
				Active: it.active(),
			})
		}
		doc.Recalculate()
		return doc, nil

	case period.KindFixedExpenses, period.KindVariableExpenses, period.KindExtraExpenses:
		var l legacyLedger
		if err := json.Unmarshal(raw, &l); err != nil {
			return nil, fmt.Errorf("decode legacy %s: %w", kind, err)
		}
		list := ExpenseList{Items: []ExpenseItem{}}
		for _, it := range l.lines() {
			id := it.ID
			if id == "" {
				id = newID()
			}
			label := it.Category
			if label == "" {
				label = it.Source
			}
			list.Items = append(list.Items, ExpenseItem{
				ID:        id,
				Category:  label,
				Amount:    it.Amount,
				Active:    it.active(),
				Paid:      it.Paid,
				PaidAt:    it.PaidAt.t,
				CreatedAt: it.CreatedAt.t,
				UpdatedAt: it.UpdatedAt.t,
			})
		}
		list.Recalculate()
		switch kind {
		case period.KindFixedExpenses:
			return &FixedExpensesDocument{ExpenseList: list}, nil
		case period.KindVariableExpenses:
			return &VariableExpensesDocument{ExpenseList: list}, nil
		}
		return &ExtraExpensesDocument{ExpenseList: list, Budget: l.Budget, Percentage: l.Percent}, nil

	case period.KindConfiguration:
		var c legacyConfiguration
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("decode legacy %s: %w", kind, err)
		}
		return &ConfigurationDocument{
			Currency:          c.Currency,
			AutoSave:          c.AutoSave,
			SaveIntervalMS:    c.SaveInterval,
			ShowNotifications: c.ShowNotifications,
			Theme:             c.Theme,
			DateFormat:        c.DateFormat,
			ShowDetails:       c.ShowDetails,
		}, nil

	case period.KindUserProfile:
		var u legacyUser
		if err := json.Unmarshal(raw, &u); err != nil {
			return nil, fmt.Errorf("decode legacy %s: %w", kind, err)
		}
		return &UserProfileDocument{
			Name:       u.Name,
			Email:      u.Email,
			CreatedAt:  u.CreatedAt.t,
			LastAccess: u.LastAccess.t,
		}, nil

	case period.KindReports:
		var r legacyReports
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("decode legacy %s: %w", kind, err)
		}
		return &ReportsDocument{
			LastReport:    r.LastReport.t,
			IncludeCharts: r.Settings.IncludeCharts,
			ExportFormat:  r.Settings.ExportFormat,
			Periodicity:   r.Settings.Periodicity,
		}, nil
	}
	return nil, fmt.Errorf("unknown bucket kind %q", kind)
}
