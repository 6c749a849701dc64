package repositories

import (
	"context"
	"errors"

	"cinefund/internal/adapters/persistence/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormRepository stores client state in the session_entries table
type gormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a SQL-backed key-value repository.
// The table must exist; see models.AutoMigrate.
func NewGormRepository(db *gorm.DB) KeyValueRepository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var entry models.SessionEntry
	err := r.db.WithContext(ctx).Where("entry_key = ?", key).Take(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return entry.EntryValue, true, nil
}

// Set upserts the entry
func (r *gormRepository) Set(ctx context.Context, key, value string) error {
	entry := models.SessionEntry{EntryKey: key, EntryValue: value}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"entry_value", "updated_at"}),
	}).Create(&entry).Error
}

func (r *gormRepository) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Where("entry_key = ?", key).Delete(&models.SessionEntry{}).Error
}

// Close closes the underlying connection pool
func (r *gormRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
