package keyspace

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"wisespend/internal/period"
)

func TestKeys(t *testing.T) {
	ks := New("wisespend", "presupuesto")
	jan := period.MustParse("2025_01")

	assert.Equal(t, "wisespend_2025_01_ingresos", ks.Bucket(jan, period.KindIncome))
	assert.Equal(t, "wisespend_2025_01_gastos_fijos", ks.Bucket(jan, period.KindFixedExpenses))
	assert.Equal(t, "wisespend_2025_01_config", ks.Meta(jan))
	assert.Equal(t, "wisespend_periods_index", ks.Index())
	assert.Equal(t, "presupuesto_gastos_extras", ks.Legacy(period.KindExtraExpenses))

	ts := time.UnixMilli(1735689600000)
	assert.Equal(t, "wisespend_legacy_backup_1735689600000", ks.LegacyBackup(ts))
	assert.Equal(t, "wisespend_backup_2025_01_1735689600000", ks.PeriodBackup(jan, ts))
	assert.True(t, ks.IsLegacy("presupuesto_ingresos"))
	assert.False(t, ks.IsLegacy("wisespend_2025_01_ingresos"))
}

func TestKeysAreCollisionFree(t *testing.T) {
	ks := New("wisespend", "presupuesto")
	seen := map[string]string{ks.Index(): "index"}

	start := period.MustParse("2023_11")
	for i := 0; i < 30; i++ {
		id := start.AddMonths(i)
		for _, key := range ks.PeriodKeys(id) {
			if owner, dup := seen[key]; dup {
				t.Fatalf("key %q produced for %s and %s", key, owner, id)
			}
			seen[key] = id.String()
		}
	}
	assert.Len(t, seen, 30*8+1)
}
