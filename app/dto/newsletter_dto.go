package dto

// UploadedFile is a source document already spooled to local disk
type UploadedFile struct {
	Path         string
	OriginalName string
}

// GenerateNewsletterRequest carries the multipart form of a generation request
type GenerateNewsletterRequest struct {
	AudienceID          *uint          `json:"audience_id,omitempty" validate:"omitempty,min=1"`
	AudienceDescription string         `json:"audience_description,omitempty"`
	PainPoint           string         `json:"pain_point"`
	AdditionalContext   string         `json:"additional_context,omitempty"`
	SourceText          string         `json:"source_text,omitempty"`
	Files               []UploadedFile `json:"-"`
	RequestID           string         `json:"-"`
}

// SourceFileDTO is the metadata view of a source document
type SourceFileDTO struct {
	ID         uint   `json:"id"`
	FileName   string `json:"file_name"`
	FileType   string `json:"file_type"`
	UploadedAt string `json:"uploaded_at"`
}

// NewsletterResponse represents a stored newsletter
type NewsletterResponse struct {
	ID                  uint            `json:"id"`
	AudienceID          *uint           `json:"audience_id"`
	AudienceName        *string         `json:"audience_name"`
	AudienceDescription string          `json:"audience_description"`
	PainPoint           string          `json:"pain_point"`
	AdditionalContext   *string         `json:"additional_context"`
	GeneratedContent    string          `json:"generated_content"`
	FrameworkExtracted  *string         `json:"framework_extracted"`
	CreatedAt           string          `json:"created_at"`
	UpdatedAt           string          `json:"updated_at"`
	SourceFiles         []SourceFileDTO `json:"source_files,omitempty"`
}

// ListNewslettersRequest represents listing query parameters
type ListNewslettersRequest struct {
	Page       int    `query:"page" validate:"omitempty,min=1"`
	Limit      int    `query:"limit" validate:"omitempty,min=1"`
	AudienceID *uint  `query:"audience_id" validate:"omitempty,min=1"`
	Search     string `query:"search" validate:"omitempty,max=255"`
}

// ListNewslettersResponse is one page of newsletters
type ListNewslettersResponse struct {
	Items      []NewsletterResponse `json:"items"`
	Pagination Pagination           `json:"pagination"`
}

// UpdateNewsletterRequest represents a manual edit of generated content
type UpdateNewsletterRequest struct {
	ID                 uint    `json:"-"`
	GeneratedContent   string  `json:"generated_content" validate:"required"`
	FrameworkExtracted *string `json:"framework_extracted,omitempty"`
}

// ExportFormat selects the rendering of a single newsletter export
type ExportFormat string

const (
	ExportFormatText ExportFormat = "txt"
	ExportFormatHTML ExportFormat = "html"
)

// ExportFile is a rendered download
type ExportFile struct {
	FileName    string
	ContentType string
	Content     []byte
}
