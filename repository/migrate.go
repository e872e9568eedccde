package repository

import (
	"context"
	"fmt"

	"github.com/appestoicismo/newsllater/models"
	"gorm.io/gorm"
)

// Migrate brings the schema up to date and seeds default settings
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	if err := NewSettingRepository(db).EnsureDefaults(ctx, models.DefaultSettings); err != nil {
		return err
	}

	return nil
}

// Transactor runs fn inside a single database transaction carried by the context
type Transactor func(ctx context.Context, fn func(context.Context) error) error

// NewTransactor binds WithTransaction to a database handle
func NewTransactor(db *gorm.DB) Transactor {
	return func(ctx context.Context, fn func(context.Context) error) error {
		return WithTransaction(ctx, db, fn)
	}
}
