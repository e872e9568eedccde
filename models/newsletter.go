package models

import (
	"time"

	"github.com/appestoicismo/newsllater/utils"
	"gorm.io/gorm"
)

// Newsletter is one generated edition together with the inputs it was produced from
// Table: newsletters
// AudienceDescription is a snapshot taken at generation time and is never re-derived
// AudienceID is nulled when the linked audience is deleted
type Newsletter struct {
	ID                  uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	AudienceID          *uint     `gorm:"index" json:"audience_id"`
	AudienceDescription string    `gorm:"type:text;not null" json:"audience_description"`
	PainPoint           string    `gorm:"type:text;not null" json:"pain_point"`
	AdditionalContext   *string   `gorm:"type:text" json:"additional_context"`
	GeneratedContent    string    `gorm:"type:text;not null" json:"generated_content"`
	FrameworkExtracted  *string   `gorm:"type:text" json:"framework_extracted"`
	CreatedAt           time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
	UpdatedAt           time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relations
	Audience    *Audience    `gorm:"foreignKey:AudienceID;references:ID;constraint:OnDelete:SET NULL" json:"-"`
	SourceFiles []SourceFile `gorm:"foreignKey:NewsletterID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Newsletter) TableName() string { return "newsletters" }

// BeforeCreate normalizes timestamps to UTC
func (n *Newsletter) BeforeCreate(tx *gorm.DB) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = utils.UTCNow()
	}
	if n.UpdatedAt.IsZero() {
		n.UpdatedAt = n.CreatedAt
	}
	return nil
}

// NewsletterWithAudience is the read projection carrying the linked audience name
type NewsletterWithAudience struct {
	Newsletter
	AudienceName *string `gorm:"column:audience_name" json:"audience_name"`
}

// NewsletterFilter represents filter criteria for newsletter queries.
// Search matches pain_point or audience_description as a case-sensitive substring.
type NewsletterFilter struct {
	ID         *uint   `json:"id,omitempty"`
	AudienceID *uint   `json:"audience_id,omitempty"`
	Search     *string `json:"search,omitempty"`
}
