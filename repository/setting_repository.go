package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/appestoicismo/newsllater/models"
	"github.com/appestoicismo/newsllater/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingRepositoryImpl implements SettingRepository interface
type SettingRepositoryImpl struct {
	*BaseRepository[models.Setting, struct{}]
}

// NewSettingRepository creates a new settings repository
func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &SettingRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Setting, struct{}](db),
	}
}

// All returns every setting ordered by key
func (r *SettingRepositoryImpl) All(ctx context.Context) ([]*models.Setting, error) {
	var rows []*models.Setting
	if err := r.getDB(ctx).Order("key ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	return rows, nil
}

// ByKey returns the setting or nil when absent
func (r *SettingRepositoryImpl) ByKey(ctx context.Context, key string) (*models.Setting, error) {
	var row models.Setting
	err := r.getDB(ctx).Where("key = ?", key).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read setting %q: %w", key, err)
	}
	return &row, nil
}

// Upsert inserts or replaces a single setting
func (r *SettingRepositoryImpl) Upsert(ctx context.Context, key, value string) error {
	return r.UpsertMany(ctx, map[string]string{key: value})
}

// UpsertMany inserts or replaces all given settings in one transaction
func (r *SettingRepositoryImpl) UpsertMany(ctx context.Context, values map[string]string) (err error) {
	if len(values) == 0 {
		return nil
	}

	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	defer func() { err = finish(db, shouldCommit, err) }()

	now := utils.UTCNow()
	rows := make([]*models.Setting, 0, len(values))
	for _, key := range sortedKeys(values) {
		rows = append(rows, &models.Setting{Key: key, Value: values[key], UpdatedAt: now})
	}

	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to upsert settings: %w", err)
	}
	return nil
}

// EnsureDefaults inserts each default whose key is not yet present
func (r *SettingRepositoryImpl) EnsureDefaults(ctx context.Context, defaults map[string]string) (err error) {
	if len(defaults) == 0 {
		return nil
	}

	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	defer func() { err = finish(db, shouldCommit, err) }()

	now := utils.UTCNow()
	rows := make([]*models.Setting, 0, len(defaults))
	for _, key := range sortedKeys(defaults) {
		rows = append(rows, &models.Setting{Key: key, Value: defaults[key], UpdatedAt: now})
	}

	if err = db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to seed default settings: %w", err)
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
