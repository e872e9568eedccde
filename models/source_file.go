package models

import (
	"time"

	"github.com/appestoicismo/newsllater/utils"
	"gorm.io/gorm"
)

// SourceFile records a document that fed a newsletter generation
// Table: source_files
// FileContent keeps the extracted text for provenance; rows are immutable
type SourceFile struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	NewsletterID uint      `gorm:"not null;index" json:"newsletter_id"`
	FileName     string    `gorm:"type:varchar(255);not null" json:"file_name"`
	FileType     FileType  `gorm:"type:varchar(10);not null" json:"file_type"`
	FileContent  string    `gorm:"type:text;not null" json:"-"`
	UploadedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"uploaded_at"`
}

func (SourceFile) TableName() string { return "source_files" }

// BeforeCreate sets the upload timestamp
func (s *SourceFile) BeforeCreate(tx *gorm.DB) error {
	if s.UploadedAt.IsZero() {
		s.UploadedAt = utils.UTCNow()
	}
	return nil
}

// SourceFileFilter represents filter criteria for source file queries
type SourceFileFilter struct {
	ID           *uint     `json:"id,omitempty"`
	NewsletterID *uint     `json:"newsletter_id,omitempty"`
	FileType     *FileType `json:"file_type,omitempty"`
}
