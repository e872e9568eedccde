package dto

// AudienceRequest is used to create or replace an audience
type AudienceRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"required"`
}

// AudienceResponse represents an audience with usage statistics
type AudienceResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	UsageCount      int    `json:"usage_count"`
	NewsletterCount int64  `json:"newsletter_count"`
	CreatedAt       string `json:"created_at"`
}
