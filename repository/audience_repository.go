package repository

import (
	"context"
	"fmt"

	"github.com/appestoicismo/newsllater/models"
	"gorm.io/gorm"
)

// AudienceRepositoryImpl implements AudienceRepository interface
type AudienceRepositoryImpl struct {
	*BaseRepository[models.Audience, models.AudienceFilter]
}

// NewAudienceRepository creates a new audience repository
func NewAudienceRepository(db *gorm.DB) AudienceRepository {
	return &AudienceRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Audience, models.AudienceFilter](db),
	}
}

// applyFilter applies filter criteria to a GORM query
func (r *AudienceRepositoryImpl) applyFilter(query *gorm.DB, filter models.AudienceFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.Name != nil {
		query = query.Where("name = ?", *filter.Name)
	}
	return query
}

// ByFilter retrieves audiences based on filter criteria
func (r *AudienceRepositoryImpl) ByFilter(ctx context.Context, filter models.AudienceFilter, orderBy string, limit, offset int) ([]*models.Audience, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Audience{}), filter)

	if orderBy == "" {
		orderBy = "created_at DESC, id DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.Audience
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of audiences matching filter
func (r *AudienceRepositoryImpl) Count(ctx context.Context, filter models.AudienceFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	if err := r.applyFilter(db.Model(&models.Audience{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any audience matches the filter
func (r *AudienceRepositoryImpl) Exists(ctx context.Context, filter models.AudienceFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *AudienceRepositoryImpl) statsQuery(ctx context.Context) *gorm.DB {
	return r.getDB(ctx).
		Table("audiences").
		Select("audiences.*, COUNT(newsletters.id) AS newsletter_count").
		Joins("LEFT JOIN newsletters ON newsletters.audience_id = audiences.id").
		Group("audiences.id")
}

// ListWithStats lists all audiences, newest first, with their newsletter counts
func (r *AudienceRepositoryImpl) ListWithStats(ctx context.Context) ([]*models.AudienceWithStats, error) {
	var rows []*models.AudienceWithStats
	err := r.statsQuery(ctx).
		Order("audiences.created_at DESC, audiences.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list audiences: %w", err)
	}
	return rows, nil
}

// ByIDWithStats retrieves one audience with its newsletter count
func (r *AudienceRepositoryImpl) ByIDWithStats(ctx context.Context, id uint) (*models.AudienceWithStats, error) {
	var rows []*models.AudienceWithStats
	err := r.statsQuery(ctx).
		Where("audiences.id = ?", id).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find audience %d: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Update replaces name and description; reports false when the audience does not exist
func (r *AudienceRepositoryImpl) Update(ctx context.Context, id uint, name, description string) (updated bool, err error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return false, err
	}
	defer func() { err = finish(db, shouldCommit, err) }()

	res := db.Model(&models.Audience{}).
		Where("id = ?", id).
		Updates(map[string]any{"name": name, "description": description})
	if res.Error != nil {
		return false, fmt.Errorf("failed to update audience %d: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Delete removes an audience and detaches its newsletters
func (r *AudienceRepositoryImpl) Delete(ctx context.Context, id uint) (deleted bool, err error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return false, err
	}
	defer func() { err = finish(db, shouldCommit, err) }()

	// Mirrors the ON DELETE SET NULL constraint for stores that do not enforce it
	if err = db.Model(&models.Newsletter{}).
		Where("audience_id = ?", id).
		Update("audience_id", nil).Error; err != nil {
		return false, fmt.Errorf("failed to detach newsletters from audience %d: %w", id, err)
	}

	res := db.Delete(&models.Audience{}, id)
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete audience %d: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// IncrementUsage bumps usage_count by one
func (r *AudienceRepositoryImpl) IncrementUsage(ctx context.Context, id uint) error {
	res := r.getDB(ctx).Model(&models.Audience{}).
		Where("id = ?", id).
		UpdateColumn("usage_count", gorm.Expr("usage_count + ?", 1))
	if res.Error != nil {
		return fmt.Errorf("failed to increment usage of audience %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("audience %d: %w", id, gorm.ErrRecordNotFound)
	}
	return nil
}
