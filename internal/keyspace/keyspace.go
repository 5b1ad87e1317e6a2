// Package keyspace maps periods and buckets onto the string keys of the
// persisted key-value medium. It holds no state beyond the key prefixes.
package keyspace

import (
	"fmt"
	"strings"
	"time"

	"wisespend/internal/period"
)

const (
	metaSuffix   = "config"
	indexSuffix  = "periods_index"
	legacyBackup = "legacy_backup"
	periodBackup = "backup"
)

// Keyspace builds storage keys under a fixed prefix.
type Keyspace struct {
	prefix       string
	legacyPrefix string
}

// New returns a Keyspace. prefix namespaces the partitioned layout,
// legacyPrefix names the flat dataset that predates it.
func New(prefix, legacyPrefix string) Keyspace {
	return Keyspace{prefix: prefix, legacyPrefix: legacyPrefix}
}

func (k Keyspace) Prefix() string { return k.prefix }

// Bucket returns the key holding one bucket of one period.
func (k Keyspace) Bucket(id period.ID, kind period.Kind) string {
	return fmt.Sprintf("%s_%s_%s", k.prefix, id, kind.StorageName())
}

// Meta returns the key holding a period's lifecycle metadata.
func (k Keyspace) Meta(id period.ID) string {
	return fmt.Sprintf("%s_%s_%s", k.prefix, id, metaSuffix)
}

// PeriodKeys returns every key owned by a period: all buckets then its meta.
func (k Keyspace) PeriodKeys(id period.ID) []string {
	keys := make([]string, 0, len(period.AllKinds())+1)
	for _, kind := range period.AllKinds() {
		keys = append(keys, k.Bucket(id, kind))
	}
	return append(keys, k.Meta(id))
}

// Index returns the key of the period index.
func (k Keyspace) Index() string {
	return k.prefix + "_" + indexSuffix
}

// LegacyBackup returns the key of a pre-migration snapshot taken at ts.
func (k Keyspace) LegacyBackup(ts time.Time) string {
	return fmt.Sprintf("%s_%s_%d", k.prefix, legacyBackup, ts.UnixMilli())
}

// LegacyBackupPrefix is the common prefix of all legacy snapshots.
func (k Keyspace) LegacyBackupPrefix() string {
	return k.prefix + "_" + legacyBackup + "_"
}

// PeriodBackup returns the key of a defensive period snapshot taken at ts.
func (k Keyspace) PeriodBackup(id period.ID, ts time.Time) string {
	return fmt.Sprintf("%s_%s_%s_%d", k.prefix, periodBackup, id, ts.UnixMilli())
}

// PeriodBackupPrefix is the common prefix of a period's snapshots.
func (k Keyspace) PeriodBackupPrefix(id period.ID) string {
	return fmt.Sprintf("%s_%s_%s_", k.prefix, periodBackup, id)
}

// LegacyPrefix is the prefix shared by every key of the flat dataset.
func (k Keyspace) LegacyPrefix() string {
	return k.legacyPrefix + "_"
}

// Legacy returns the flat, pre-partition key of a bucket.
func (k Keyspace) Legacy(kind period.Kind) string {
	return k.legacyPrefix + "_" + kind.StorageName()
}

// IsLegacy reports whether key belongs to the flat dataset.
func (k Keyspace) IsLegacy(key string) bool {
	return strings.HasPrefix(key, k.LegacyPrefix())
}
