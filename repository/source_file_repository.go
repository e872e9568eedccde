package repository

import (
	"context"
	"fmt"

	"github.com/appestoicismo/newsllater/models"
	"gorm.io/gorm"
)

// SourceFileRepositoryImpl implements SourceFileRepository interface
type SourceFileRepositoryImpl struct {
	*BaseRepository[models.SourceFile, models.SourceFileFilter]
}

// NewSourceFileRepository creates a new source file repository
func NewSourceFileRepository(db *gorm.DB) SourceFileRepository {
	return &SourceFileRepositoryImpl{
		BaseRepository: NewBaseRepository[models.SourceFile, models.SourceFileFilter](db),
	}
}

// applyFilter applies filter criteria to a GORM query
func (r *SourceFileRepositoryImpl) applyFilter(query *gorm.DB, filter models.SourceFileFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.NewsletterID != nil {
		query = query.Where("newsletter_id = ?", *filter.NewsletterID)
	}
	if filter.FileType != nil {
		query = query.Where("file_type = ?", *filter.FileType)
	}
	return query
}

// ByFilter retrieves source files based on filter criteria
func (r *SourceFileRepositoryImpl) ByFilter(ctx context.Context, filter models.SourceFileFilter, orderBy string, limit, offset int) ([]*models.SourceFile, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.SourceFile{}), filter)

	if orderBy == "" {
		orderBy = "id ASC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.SourceFile
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of source files matching filter
func (r *SourceFileRepositoryImpl) Count(ctx context.Context, filter models.SourceFileFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	if err := r.applyFilter(db.Model(&models.SourceFile{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any source file matches the filter
func (r *SourceFileRepositoryImpl) Exists(ctx context.Context, filter models.SourceFileFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListMetaByNewsletter lists source files of a newsletter in upload order, without their content
func (r *SourceFileRepositoryImpl) ListMetaByNewsletter(ctx context.Context, newsletterID uint) ([]*models.SourceFile, error) {
	var rows []*models.SourceFile
	err := r.getDB(ctx).
		Model(&models.SourceFile{}).
		Select("id", "newsletter_id", "file_name", "file_type", "uploaded_at").
		Where("newsletter_id = ?", newsletterID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list source files of newsletter %d: %w", newsletterID, err)
	}
	return rows, nil
}
