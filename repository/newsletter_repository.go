package repository

import (
	"context"
	"fmt"

	"github.com/appestoicismo/newsllater/models"
	"github.com/appestoicismo/newsllater/utils"
	"gorm.io/gorm"
)

// NewsletterRepositoryImpl implements NewsletterRepository interface
type NewsletterRepositoryImpl struct {
	*BaseRepository[models.Newsletter, models.NewsletterFilter]
}

// NewNewsletterRepository creates a new newsletter repository
func NewNewsletterRepository(db *gorm.DB) NewsletterRepository {
	return &NewsletterRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Newsletter, models.NewsletterFilter](db),
	}
}

// containsExpr renders a case-sensitive substring test for the active dialect.
// LIKE is avoided because sqlite folds ASCII case.
func containsExpr(db *gorm.DB, column string) string {
	if db.Dialector.Name() == "sqlite" {
		return fmt.Sprintf("instr(%s, ?) > 0", column)
	}
	return fmt.Sprintf("strpos(%s, ?) > 0", column)
}

// applyFilter applies filter criteria to a GORM query
func (r *NewsletterRepositoryImpl) applyFilter(query *gorm.DB, filter models.NewsletterFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("newsletters.id = ?", *filter.ID)
	}
	if filter.AudienceID != nil {
		query = query.Where("newsletters.audience_id = ?", *filter.AudienceID)
	}
	if filter.Search != nil && *filter.Search != "" {
		query = query.Where(
			containsExpr(query, "newsletters.pain_point")+" OR "+containsExpr(query, "newsletters.audience_description"),
			*filter.Search, *filter.Search,
		)
	}
	return query
}

// ByFilter retrieves newsletters based on filter criteria
func (r *NewsletterRepositoryImpl) ByFilter(ctx context.Context, filter models.NewsletterFilter, orderBy string, limit, offset int) ([]*models.Newsletter, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Newsletter{}), filter)

	if orderBy == "" {
		orderBy = "newsletters.created_at DESC, newsletters.id DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.Newsletter
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of newsletters matching filter
func (r *NewsletterRepositoryImpl) Count(ctx context.Context, filter models.NewsletterFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	if err := r.applyFilter(db.Model(&models.Newsletter{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any newsletter matches the filter
func (r *NewsletterRepositoryImpl) Exists(ctx context.Context, filter models.NewsletterFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *NewsletterRepositoryImpl) withAudienceQuery(ctx context.Context) *gorm.DB {
	return r.getDB(ctx).
		Table("newsletters").
		Select("newsletters.*, audiences.name AS audience_name").
		Joins("LEFT JOIN audiences ON audiences.id = newsletters.audience_id")
}

// ListWithAudience lists newsletters newest first, joined with the audience name
func (r *NewsletterRepositoryImpl) ListWithAudience(ctx context.Context, filter models.NewsletterFilter, limit, offset int) ([]*models.NewsletterWithAudience, error) {
	query := r.applyFilter(r.withAudienceQuery(ctx), filter).
		Order("newsletters.created_at DESC, newsletters.id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.NewsletterWithAudience
	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list newsletters: %w", err)
	}
	return rows, nil
}

// ByIDWithAudience retrieves a newsletter with its audience name
func (r *NewsletterRepositoryImpl) ByIDWithAudience(ctx context.Context, id uint) (*models.NewsletterWithAudience, error) {
	var rows []*models.NewsletterWithAudience
	err := r.withAudienceQuery(ctx).
		Where("newsletters.id = ?", id).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find newsletter %d: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// UpdateContent replaces the generated content and framework of a newsletter
func (r *NewsletterRepositoryImpl) UpdateContent(ctx context.Context, id uint, content string, framework *string) (updated bool, err error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return false, err
	}
	defer func() { err = finish(db, shouldCommit, err) }()

	res := db.Model(&models.Newsletter{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"generated_content":   content,
			"framework_extracted": framework,
			"updated_at":          utils.UTCNow(),
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to update newsletter %d: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Delete removes a newsletter together with its source files
func (r *NewsletterRepositoryImpl) Delete(ctx context.Context, id uint) (deleted bool, err error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return false, err
	}
	defer func() { err = finish(db, shouldCommit, err) }()

	// Mirrors the ON DELETE CASCADE constraint for stores that do not enforce it
	if err = db.Where("newsletter_id = ?", id).Delete(&models.SourceFile{}).Error; err != nil {
		return false, fmt.Errorf("failed to delete source files of newsletter %d: %w", id, err)
	}

	res := db.Delete(&models.Newsletter{}, id)
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete newsletter %d: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}
