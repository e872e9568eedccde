package testing

import (
	"fmt"
	"math/rand"

	"github.com/appestoicismo/newsllater/models"
	"github.com/appestoicismo/newsllater/utils"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestAudience inserts an audience with a unique name
func (tf *TestFixtures) CreateTestAudience(description string) (*models.Audience, error) {
	audience := &models.Audience{
		Name:        fmt.Sprintf("Audience %06d", rand.Intn(1000000)),
		Description: description,
	}

	if err := tf.DB.DB.Create(audience).Error; err != nil {
		return nil, fmt.Errorf("failed to create test audience: %w", err)
	}

	return audience, nil
}

// CreateTestNewsletter inserts a newsletter, optionally linked to an audience
func (tf *TestFixtures) CreateTestNewsletter(audienceID *uint, audienceDescription, painPoint string) (*models.Newsletter, error) {
	newsletter := &models.Newsletter{
		AudienceID:          audienceID,
		AudienceDescription: audienceDescription,
		PainPoint:           painPoint,
		GeneratedContent:    "# " + painPoint + "\n\nPasso 1: respire.",
		FrameworkExtracted:  utils.ToPtr("Passo 1: respire."),
	}

	if err := tf.DB.DB.Create(newsletter).Error; err != nil {
		return nil, fmt.Errorf("failed to create test newsletter: %w", err)
	}

	return newsletter, nil
}

// CreateTestSourceFile attaches a source file to a newsletter
func (tf *TestFixtures) CreateTestSourceFile(newsletterID uint, name string, fileType models.FileType, content string) (*models.SourceFile, error) {
	sourceFile := &models.SourceFile{
		NewsletterID: newsletterID,
		FileName:     name,
		FileType:     fileType,
		FileContent:  content,
	}

	if err := tf.DB.DB.Create(sourceFile).Error; err != nil {
		return nil, fmt.Errorf("failed to create test source file: %w", err)
	}

	return sourceFile, nil
}

// SetTestSetting overwrites a setting value
func (tf *TestFixtures) SetTestSetting(key, value string) error {
	err := tf.DB.DB.Model(&models.Setting{}).
		Where("key = ?", key).
		Update("value", value).Error
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}

// CountRows returns the number of rows of the given model
func (tf *TestFixtures) CountRows(model any) (int64, error) {
	var count int64
	if err := tf.DB.DB.Model(model).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
