package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"wisespend/internal/models"
)

type gormMedium struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormMedium returns a Medium backed by the kv_entries table.
func NewGormMedium(db *gorm.DB) Medium {
	return &gormMedium{db: db, now: time.Now}
}

func (m *gormMedium) Get(ctx context.Context, key string) (string, error) {
	var entry models.Entry
	err := m.db.WithContext(ctx).Where("entry_key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get %s: %w: %w", key, ErrUnavailable, err)
	}
	return entry.Value, nil
}

func (m *gormMedium) Set(ctx context.Context, key, value string) error {
	entry := models.Entry{Key: key, Value: value, UpdatedAt: m.now().UTC()}
	err := m.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("set %s: %w: %w", key, ErrUnavailable, err)
	}
	return nil
}

func (m *gormMedium) Remove(ctx context.Context, key string) error {
	if err := m.db.WithContext(ctx).Where("entry_key = ?", key).Delete(&models.Entry{}).Error; err != nil {
		return fmt.Errorf("remove %s: %w: %w", key, ErrUnavailable, err)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (m *gormMedium) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := m.db.WithContext(ctx).
		Model(&models.Entry{}).
		Where(`entry_key LIKE ? ESCAPE '\'`, likeEscaper.Replace(prefix)+"%").
		Order("entry_key ASC").
		Pluck("entry_key", &keys).Error
	if err != nil {
		return nil, fmt.Errorf("list keys %s*: %w: %w", prefix, ErrUnavailable, err)
	}
	return keys, nil
}
