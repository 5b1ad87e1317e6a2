package models

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wisespend/internal/period"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("gen-%d", n)
	}
}

func TestDecodeLegacyIncome(t *testing.T) {
	raw := []byte(`{"total":2417000,"desglose":[
		{"fuente":"Claudia","monto":1186480,"activo":true},
		{"fuente":"Norman","monto":1218520},
		{"fuente":"Edith","monto":12000,"activo":false}]}`)

	doc, err := DecodeLegacy(period.KindIncome, raw, sequentialIDs())
	require.NoError(t, err)

	income := doc.(*IncomeDocument)
	require.Len(t, income.Items, 3)
	assert.Equal(t, "gen-1", income.Items[0].ID)
	assert.Equal(t, "Claudia", income.Items[0].Source)
	assert.True(t, income.Items[1].Active, "missing activo defaults to active")
	assert.False(t, income.Items[2].Active)
	assert.True(t, income.Total.Equal(decimal.NewFromInt(2405000)))
}

func TestDecodeLegacyExpenses(t *testing.T) {
	raw := []byte(`{"total":350900,"presupuesto":213162,"porcentaje":10,"items":[
		{"id":"ge001","categoria":"Viaje","monto":115000,"activo":true,"pagado":true,"fechaPago":"2024-06-02T10:00:00.000Z"},
		{"id":"ge002","categoria":"Leche","monto":133800,"activo":true,"fechaPago":null}]}`)

	doc, err := DecodeLegacy(period.KindExtraExpenses, raw, sequentialIDs())
	require.NoError(t, err)

	extra := doc.(*ExtraExpensesDocument)
	assert.True(t, extra.Budget.Equal(decimal.NewFromInt(213162)))
	assert.True(t, extra.Percentage.Equal(decimal.NewFromInt(10)))
	require.Len(t, extra.Items, 2)
	assert.Equal(t, "ge001", extra.Items[0].ID)
	assert.True(t, extra.Items[0].Paid)
	require.NotNil(t, extra.Items[0].PaidAt)
	assert.Equal(t, 2024, extra.Items[0].PaidAt.Year())
	assert.Nil(t, extra.Items[1].PaidAt)
	assert.True(t, extra.Total.Equal(decimal.NewFromInt(248800)))
}

func TestDecodeLegacySettings(t *testing.T) {
	cfg, err := DecodeLegacy(period.KindConfiguration,
		[]byte(`{"monedaPrincipal":"CLP","autoGuardado":true,"intervalGuardado":10000,"tema":"claro"}`), sequentialIDs())
	require.NoError(t, err)
	assert.Equal(t, &ConfigurationDocument{Currency: "CLP", AutoSave: true, SaveIntervalMS: 10000, Theme: "claro"}, cfg)

	reports, err := DecodeLegacy(period.KindReports,
		[]byte(`{"ultimoReporte":null,"configuracionReporte":{"incluirGraficos":true,"formatoExportacion":"pdf","periodicidad":"mensual"}}`), sequentialIDs())
	require.NoError(t, err)
	assert.Equal(t, &ReportsDocument{IncludeCharts: true, ExportFormat: "pdf", Periodicity: "mensual"}, reports)

	user, err := DecodeLegacy(period.KindUserProfile,
		[]byte(`{"nombre":"Casa","email":"","fechaCreacion":"2024-01-01"}`), sequentialIDs())
	require.NoError(t, err)
	profile := user.(*UserProfileDocument)
	assert.Equal(t, "Casa", profile.Name)
	require.NotNil(t, profile.CreatedAt)
	assert.Nil(t, profile.LastAccess)
}

func TestDecodeLegacyRejectsGarbage(t *testing.T) {
	_, err := DecodeLegacy(period.KindFixedExpenses, []byte(`not json`), sequentialIDs())
	assert.Error(t, err)

	_, err = DecodeLegacy(period.KindFixedExpenses, []byte(`{"items":[{"fechaPago":"yesterday"}]}`), sequentialIDs())
	assert.Error(t, err)
}
