package businessflow

import (
	"math"
	"strings"

	"github.com/appestoicismo/newsllater/app/dto"
	"github.com/appestoicismo/newsllater/models"
	"github.com/appestoicismo/newsllater/utils"
)

// normalizePage applies listing defaults and caps
func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = utils.DefaultPageSize
	}
	if limit > utils.MaxPageSize {
		limit = utils.MaxPageSize
	}
	return page, limit
}

func newPagination(page, limit int, total int64) dto.Pagination {
	return dto.Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}
}

// ToNewsletterDTO converts a newsletter read projection for responses
func ToNewsletterDTO(n models.NewsletterWithAudience) dto.NewsletterResponse {
	return dto.NewsletterResponse{
		ID:                  n.ID,
		AudienceID:          n.AudienceID,
		AudienceName:        n.AudienceName,
		AudienceDescription: n.AudienceDescription,
		PainPoint:           n.PainPoint,
		AdditionalContext:   n.AdditionalContext,
		GeneratedContent:    n.GeneratedContent,
		FrameworkExtracted:  n.FrameworkExtracted,
		CreatedAt:           utils.FormatRFC3339(n.CreatedAt),
		UpdatedAt:           utils.FormatRFC3339(n.UpdatedAt),
	}
}

// ToSourceFileDTO converts source file metadata for responses
func ToSourceFileDTO(f models.SourceFile) dto.SourceFileDTO {
	return dto.SourceFileDTO{
		ID:         f.ID,
		FileName:   f.FileName,
		FileType:   string(f.FileType),
		UploadedAt: utils.FormatRFC3339(f.UploadedAt),
	}
}

// ToAudienceDTO converts an audience read projection for responses
func ToAudienceDTO(a models.AudienceWithStats) dto.AudienceResponse {
	return dto.AudienceResponse{
		ID:              a.ID,
		Name:            a.Name,
		Description:     a.Description,
		UsageCount:      a.UsageCount,
		NewsletterCount: a.NewsletterCount,
		CreatedAt:       utils.FormatRFC3339(a.CreatedAt),
	}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
