package businessflow

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/appestoicismo/newsllater/app/dto"
	"github.com/appestoicismo/newsllater/models"
	"github.com/appestoicismo/newsllater/repository"
	"github.com/appestoicismo/newsllater/utils"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/xuri/excelize/v2"
)

// maxExportRows bounds the history workbook
const maxExportRows = 5000

// excelCellLimit is the maximum number of characters in a worksheet cell
const excelCellLimit = 32767

// NewsletterFlow handles stored newsletters
type NewsletterFlow interface {
	List(ctx context.Context, req *dto.ListNewslettersRequest) (*dto.ListNewslettersResponse, error)
	Get(ctx context.Context, id uint) (*dto.NewsletterResponse, error)
	Update(ctx context.Context, req *dto.UpdateNewsletterRequest) (*dto.NewsletterResponse, error)
	Delete(ctx context.Context, id uint) error
	Export(ctx context.Context, id uint, format dto.ExportFormat) (*dto.ExportFile, error)
	ExportHistoryXLSX(ctx context.Context, audienceID *uint, search string) (*dto.ExportFile, error)
}

// NewsletterFlowImpl implements NewsletterFlow
type NewsletterFlowImpl struct {
	newsletterRepo repository.NewsletterRepository
	sourceFileRepo repository.SourceFileRepository
}

// NewNewsletterFlow creates a new newsletter flow instance
func NewNewsletterFlow(
	newsletterRepo repository.NewsletterRepository,
	sourceFileRepo repository.SourceFileRepository,
) NewsletterFlow {
	return &NewsletterFlowImpl{
		newsletterRepo: newsletterRepo,
		sourceFileRepo: sourceFileRepo,
	}
}

func newsletterFilter(audienceID *uint, search string) models.NewsletterFilter {
	filter := models.NewsletterFilter{AudienceID: audienceID}
	if search != "" {
		filter.Search = &search
	}
	return filter
}

// List returns one page of newsletters, newest first
func (f *NewsletterFlowImpl) List(ctx context.Context, req *dto.ListNewslettersRequest) (*dto.ListNewslettersResponse, error) {
	page, limit := normalizePage(req.Page, req.Limit)
	filter := newsletterFilter(req.AudienceID, req.Search)

	rows, err := f.newsletterRepo.ListWithAudience(ctx, filter, limit, (page-1)*limit)
	if err != nil {
		return nil, NewBusinessError(CodePersistenceError, "Failed to list newsletters", err)
	}

	total, err := f.newsletterRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError(CodePersistenceError, "Failed to count newsletters", err)
	}

	items := make([]dto.NewsletterResponse, 0, len(rows))
	for _, row := range rows {
		items = append(items, ToNewsletterDTO(*row))
	}

	return &dto.ListNewslettersResponse{
		Items:      items,
		Pagination: newPagination(page, limit, total),
	}, nil
}

// Get returns a newsletter with its source file metadata
func (f *NewsletterFlowImpl) Get(ctx context.Context, id uint) (*dto.NewsletterResponse, error) {
	row, err := f.find(ctx, id)
	if err != nil {
		return nil, err
	}

	files, err := f.sourceFileRepo.ListMetaByNewsletter(ctx, id)
	if err != nil {
		return nil, NewBusinessError(CodePersistenceError, "Failed to list source files", err)
	}

	out := ToNewsletterDTO(*row)
	out.SourceFiles = make([]dto.SourceFileDTO, 0, len(files))
	for _, file := range files {
		out.SourceFiles = append(out.SourceFiles, ToSourceFileDTO(*file))
	}
	return &out, nil
}

// Update replaces the generated content; an absent framework clears it
func (f *NewsletterFlowImpl) Update(ctx context.Context, req *dto.UpdateNewsletterRequest) (*dto.NewsletterResponse, error) {
	if blank(req.GeneratedContent) {
		return nil, NewValidationError("generated_content", "Generated content is required", ErrContentRequired)
	}

	var framework *string
	if req.FrameworkExtracted != nil && *req.FrameworkExtracted != "" {
		framework = req.FrameworkExtracted
	}

	updated, err := f.newsletterRepo.UpdateContent(ctx, req.ID, req.GeneratedContent, framework)
	if err != nil {
		return nil, NewBusinessError(CodePersistenceError, "Failed to update newsletter", err)
	}
	if !updated {
		return nil, newsletterNotFound(req.ID)
	}

	row, err := f.find(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	out := ToNewsletterDTO(*row)
	return &out, nil
}

// Delete removes a newsletter and its source files
func (f *NewsletterFlowImpl) Delete(ctx context.Context, id uint) error {
	deleted, err := f.newsletterRepo.Delete(ctx, id)
	if err != nil {
		return NewBusinessError(CodePersistenceError, "Failed to delete newsletter", err)
	}
	if !deleted {
		return newsletterNotFound(id)
	}
	return nil
}

// Export renders a single newsletter as plain text or HTML
func (f *NewsletterFlowImpl) Export(ctx context.Context, id uint, format dto.ExportFormat) (*dto.ExportFile, error) {
	if format == "" {
		format = dto.ExportFormatText
	}

	row, err := f.find(ctx, id)
	if err != nil {
		return nil, err
	}

	switch format {
	case dto.ExportFormatText:
		return &dto.ExportFile{
			FileName:    fmt.Sprintf("newsletter-%d.txt", id),
			ContentType: "text/plain; charset=utf-8",
			Content:     []byte(row.GeneratedContent),
		}, nil
	case dto.ExportFormatHTML:
		return &dto.ExportFile{
			FileName:    fmt.Sprintf("newsletter-%d.html", id),
			ContentType: "text/html; charset=utf-8",
			Content:     renderHTML(row.PainPoint, row.GeneratedContent),
		}, nil
	default:
		return nil, NewValidationError("format", "Export format must be txt or html", ErrInvalidExportFormat)
	}
}

// ExportHistoryXLSX writes the filtered history to a workbook
func (f *NewsletterFlowImpl) ExportHistoryXLSX(ctx context.Context, audienceID *uint, search string) (*dto.ExportFile, error) {
	rows, err := f.newsletterRepo.ListWithAudience(ctx, newsletterFilter(audienceID, search), maxExportRows, 0)
	if err != nil {
		return nil, NewBusinessError(CodePersistenceError, "Failed to list newsletters", err)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	const sheet = "Newsletters"
	if err := xl.SetSheetName(xl.GetSheetName(0), sheet); err != nil {
		return nil, NewBusinessError(CodeExportFailure, "Failed to prepare workbook", err)
	}

	header := []string{"id", "created_at", "audience_id", "audience_name", "audience_description", "pain_point", "additional_context", "framework_extracted", "generated_content"}
	if err := xl.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, NewBusinessError(CodeExportFailure, "Failed to write workbook", err)
	}

	for i, r := range rows {
		audienceID := ""
		if r.AudienceID != nil {
			audienceID = strconv.FormatUint(uint64(*r.AudienceID), 10)
		}
		record := []string{
			strconv.FormatUint(uint64(r.ID), 10),
			utils.FormatRFC3339(r.CreatedAt),
			audienceID,
			truncateCell(utils.Deref(r.AudienceName)),
			truncateCell(r.AudienceDescription),
			truncateCell(r.PainPoint),
			truncateCell(utils.Deref(r.AdditionalContext)),
			truncateCell(utils.Deref(r.FrameworkExtracted)),
			truncateCell(r.GeneratedContent),
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := xl.SetSheetRow(sheet, cellRef, &record); err != nil {
			return nil, NewBusinessError(CodeExportFailure, "Failed to write workbook", err)
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return nil, NewBusinessError(CodeExportFailure, "Failed to write Excel file", err)
	}

	return &dto.ExportFile{
		FileName:    "newsletters.xlsx",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Content:     buf.Bytes(),
	}, nil
}

func (f *NewsletterFlowImpl) find(ctx context.Context, id uint) (*models.NewsletterWithAudience, error) {
	row, err := f.newsletterRepo.ByIDWithAudience(ctx, id)
	if err != nil {
		return nil, NewBusinessError(CodePersistenceError, "Failed to load newsletter", err)
	}
	if row == nil {
		return nil, newsletterNotFound(id)
	}
	return row, nil
}

func newsletterNotFound(id uint) error {
	return NewBusinessErrorf(CodeNewsletterNotFound, "Newsletter %d not found", ErrNewsletterNotFound, id)
}

// renderHTML converts the markdown body to a standalone HTML document
func renderHTML(title, body string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.HrefTargetBlank | html.CompletePage,
		Title: title,
	})
	return markdown.ToHTML([]byte(body), p, renderer)
}

func truncateCell(s string) string {
	if utf8.RuneCountInString(s) <= excelCellLimit {
		return s
	}
	var b strings.Builder
	n := 0
	for _, r := range s {
		if n == excelCellLimit {
			break
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}
