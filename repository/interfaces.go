// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/appestoicismo/newsllater/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// AudienceRepository defines operations for audiences
type AudienceRepository interface {
	Repository[models.Audience, models.AudienceFilter]
	ListWithStats(ctx context.Context) ([]*models.AudienceWithStats, error)
	ByIDWithStats(ctx context.Context, id uint) (*models.AudienceWithStats, error)
	Update(ctx context.Context, id uint, name, description string) (bool, error)
	Delete(ctx context.Context, id uint) (bool, error)
	IncrementUsage(ctx context.Context, id uint) error
}

// NewsletterRepository defines operations for newsletters
type NewsletterRepository interface {
	Repository[models.Newsletter, models.NewsletterFilter]
	ListWithAudience(ctx context.Context, filter models.NewsletterFilter, limit, offset int) ([]*models.NewsletterWithAudience, error)
	ByIDWithAudience(ctx context.Context, id uint) (*models.NewsletterWithAudience, error)
	UpdateContent(ctx context.Context, id uint, content string, framework *string) (bool, error)
	Delete(ctx context.Context, id uint) (bool, error)
}

// SourceFileRepository defines operations for source files
type SourceFileRepository interface {
	Repository[models.SourceFile, models.SourceFileFilter]
	ListMetaByNewsletter(ctx context.Context, newsletterID uint) ([]*models.SourceFile, error)
}

// SettingRepository defines operations for key-value settings
type SettingRepository interface {
	All(ctx context.Context) ([]*models.Setting, error)
	ByKey(ctx context.Context, key string) (*models.Setting, error)
	Upsert(ctx context.Context, key, value string) error
	UpsertMany(ctx context.Context, values map[string]string) error
	EnsureDefaults(ctx context.Context, defaults map[string]string) error
}
