package models

import (
	"time"
)

// Audience is a reusable description of the reader a newsletter targets
// Table: audiences
// UsageCount is bumped once per generation that references the audience
type Audience struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description string    `gorm:"type:text;not null" json:"description"`
	UsageCount  int       `gorm:"not null;default:0" json:"usage_count"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
}

func (Audience) TableName() string { return "audiences" }

// AudienceWithStats is the read projection used by listings
type AudienceWithStats struct {
	Audience
	NewsletterCount int64 `gorm:"column:newsletter_count" json:"newsletter_count"`
}

// AudienceFilter represents filter criteria for audience queries
type AudienceFilter struct {
	ID   *uint   `json:"id,omitempty"`
	Name *string `json:"name,omitempty"`
}
