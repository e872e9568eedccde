package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/appestoicismo/newsllater/app/dto"
	"github.com/appestoicismo/newsllater/app/services/extractor"
	businessflow "github.com/appestoicismo/newsllater/business_flow"
	"github.com/appestoicismo/newsllater/config"
	"github.com/appestoicismo/newsllater/logger"
	"github.com/appestoicismo/newsllater/models"
	"github.com/appestoicismo/newsllater/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

// generationTimeoutMargin is added to the provider timeout for extraction and persistence
const generationTimeoutMargin = 30 * time.Second

// errUploadRejected marks an upload that failed the size, count or type checks
var errUploadRejected = errors.New("upload rejected")

// NewsletterHandlerInterface defines the contract for newsletter handlers
type NewsletterHandlerInterface interface {
	Generate(c fiber.Ctx) error
	List(c fiber.Ctx) error
	ExportHistory(c fiber.Ctx) error
	Get(c fiber.Ctx) error
	Export(c fiber.Ctx) error
	Update(c fiber.Ctx) error
	Delete(c fiber.Ctx) error
}

// NewsletterHandler handles newsletter-related HTTP requests
type NewsletterHandler struct {
	baseHandler
	generationFlow  businessflow.NewsletterGenerationFlow
	newsletterFlow  businessflow.NewsletterFlow
	upload          config.UploadConfig
	generateTimeout time.Duration
}

// NewNewsletterHandler creates a new newsletter handler
func NewNewsletterHandler(
	generationFlow businessflow.NewsletterGenerationFlow,
	newsletterFlow businessflow.NewsletterFlow,
	upload config.UploadConfig,
	providerTimeout time.Duration,
) *NewsletterHandler {
	if upload.Dir == "" {
		upload.Dir = "uploads"
	}
	if upload.MaxFiles <= 0 {
		upload.MaxFiles = utils.MaxUploadFiles
	}
	if upload.MaxFileSize <= 0 {
		upload.MaxFileSize = utils.MaxUploadFileSize
	}
	return &NewsletterHandler{
		baseHandler:     newBaseHandler(),
		generationFlow:  generationFlow,
		newsletterFlow:  newsletterFlow,
		upload:          upload,
		generateTimeout: providerTimeout + generationTimeoutMargin,
	}
}

// Generate handles newsletter generation
// @Summary Generate Newsletter
// @Description Generate a newsletter from an audience, a pain point and uploaded source documents
// @Tags Newsletters
// @Accept multipart/form-data
// @Produce json
// @Param audience_id formData int false "Saved audience ID"
// @Param audience_description formData string false "Audience description when no saved audience is used"
// @Param pain_point formData string true "Pain point of the week"
// @Param additional_context formData string false "Additional context"
// @Param source_text formData string false "Pasted source text"
// @Param files formData file false "Source documents (pdf, docx, txt, md)"
// @Success 201 {object} dto.APIResponse{data=dto.NewsletterResponse} "Newsletter generated successfully"
// @Failure 400 {object} dto.APIResponse "Validation error, unsupported file or missing API key"
// @Failure 404 {object} dto.APIResponse "Audience not found"
// @Failure 502 {object} dto.APIResponse "Provider rejected the request"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/newsletters/generate [post]
func (h *NewsletterHandler) Generate(c fiber.Ctx) error {
	var req dto.GenerateNewsletterRequest

	if strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEApplicationJSON) {
		if err := c.Bind().JSON(&req); err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", businessflow.CodeValidation, nil)
		}
	} else {
		req.AudienceDescription = c.FormValue("audience_description")
		req.PainPoint = c.FormValue("pain_point")
		req.AdditionalContext = c.FormValue("additional_context")
		req.SourceText = c.FormValue("source_text")
		if raw := strings.TrimSpace(c.FormValue("audience_id")); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil || id == 0 {
				return h.ErrorResponse(c, fiber.StatusBadRequest, "audience_id must be a positive integer", businessflow.CodeValidation,
					dto.ErrorDetail{Field: "audience_id"})
			}
			audienceID := uint(id)
			req.AudienceID = &audienceID
		}

		files, err := h.spoolUploads(c)
		if err != nil {
			return h.BusinessErrorResponse(c, err, "Failed to receive uploaded files")
		}
		req.Files = files
	}

	ctx, cancel := h.createRequestContextWithTimeout(c, "/api/newsletters/generate", h.generateTimeout)
	defer cancel()
	req.RequestID = utils.RequestIDFromContext(ctx)

	result, err := h.generationFlow.Generate(ctx, &req)
	if err != nil {
		return h.BusinessErrorResponse(c, err, "Failed to generate newsletter")
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Newsletter generated successfully", result)
}

// spoolUploads writes the multipart files to the upload directory in request order.
// On any rejection the files already written are removed.
func (h *NewsletterHandler) spoolUploads(c fiber.Ctx) (uploaded []dto.UploadedFile, err error) {
	if !strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm) {
		return nil, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, businessflow.NewValidationError("files", "Invalid multipart form", err)
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		return nil, nil
	}
	if len(headers) > h.upload.MaxFiles {
		return nil, businessflow.NewValidationError("files",
			fmt.Sprintf("At most %d files can be uploaded", h.upload.MaxFiles), errUploadRejected)
	}

	defer func() {
		if err != nil {
			removeSpooled(uploaded)
			uploaded = nil
		}
	}()

	for _, fh := range headers {
		path, serr := h.saveUploadedFile(fh)
		if serr != nil {
			return uploaded, serr
		}
		uploaded = append(uploaded, dto.UploadedFile{Path: path, OriginalName: fh.Filename})
	}
	return uploaded, nil
}

func (h *NewsletterHandler) saveUploadedFile(fileHeader *multipart.FileHeader) (string, error) {
	if !extractor.IsAllowedUpload(fileHeader.Header.Get(fiber.HeaderContentType), fileHeader.Filename) ||
		extractor.FileTypeFromName(fileHeader.Filename) == models.FileTypeUnknown {
		return "", businessflow.NewBusinessError(businessflow.CodeUnsupportedFileType,
			"Unsupported file type. Use PDF, DOCX, TXT or MD", errUploadRejected)
	}
	if fileHeader.Size > h.upload.MaxFileSize {
		return "", businessflow.NewValidationError("files",
			fmt.Sprintf("File %s exceeds the %d byte limit", fileHeader.Filename, h.upload.MaxFileSize), errUploadRejected)
	}

	if err := os.MkdirAll(h.upload.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	fullPath := filepath.Join(h.upload.Dir, "file-"+uuid.New().String()+ext)

	src, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(fullPath)
		return "", err
	}

	return fullPath, nil
}

func removeSpooled(files []dto.UploadedFile) {
	for _, f := range files {
		if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
			logger.Warn("failed to remove uploaded file", "path", f.Path, "error", err.Error())
		}
	}
}

// List returns newsletters with filters and pagination
// @Summary List Newsletters
// @Description List stored newsletters, newest first
// @Tags Newsletters
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Items per page (default 10)"
// @Param audience_id query int false "Filter by audience"
// @Param search query string false "Substring of pain point or audience description"
// @Success 200 {object} dto.APIResponse{data=[]dto.NewsletterResponse} "Newsletters retrieved successfully"
// @Failure 400 {object} dto.APIResponse "Invalid query parameters"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/newsletters [get]
func (h *NewsletterHandler) List(c fiber.Ctx) error {
	page := utils.DefaultPage
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		page = v
	}
	limit := utils.DefaultPageSize
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		limit = v
	}
	audienceID, ok := queryAudienceID(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "audience_id must be a positive integer", businessflow.CodeValidation,
			dto.ErrorDetail{Field: "audience_id"})
	}

	req := dto.ListNewslettersRequest{
		Page:       page,
		Limit:      limit,
		AudienceID: audienceID,
		Search:     c.Query("search"),
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/newsletters")
	defer cancel()

	result, err := h.newsletterFlow.List(ctx, &req)
	if err != nil {
		return h.BusinessErrorResponse(c, err, "Failed to list newsletters")
	}

	pagination := result.Pagination
	return c.Status(fiber.StatusOK).JSON(dto.APIResponse{
		Success:    true,
		Message:    "Newsletters retrieved successfully",
		Data:       result.Items,
		Pagination: &pagination,
	})
}

// ExportHistory downloads the newsletter history as a workbook
// @Summary Export Newsletter History
// @Description Download the filtered newsletter history as an Excel workbook
// @Tags Newsletters
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param audience_id query int false "Filter by audience"
// @Param search query string false "Substring of pain point or audience description"
// @Success 200 {file} file "Workbook"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/newsletters/export.xlsx [get]
func (h *NewsletterHandler) ExportHistory(c fiber.Ctx) error {
	audienceID, ok := queryAudienceID(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "audience_id must be a positive integer", businessflow.CodeValidation,
			dto.ErrorDetail{Field: "audience_id"})
	}

	ctx, cancel := h.createRequestContext(c, "/api/newsletters/export.xlsx")
	defer cancel()

	file, err := h.newsletterFlow.ExportHistoryXLSX(ctx, audienceID, c.Query("search"))
	if err != nil {
		return h.BusinessErrorResponse(c, err, "Failed to export newsletters")
	}
	return sendFile(c, file)
}

// Get returns a newsletter with its source file metadata
// @Summary Get Newsletter
// @Tags Newsletters
// @Produce json
// @Param id path int true "Newsletter ID"
// @Success 200 {object} dto.APIResponse{data=dto.NewsletterResponse} "Newsletter retrieved successfully"
// @Failure 404 {object} dto.APIResponse "Newsletter not found"
// @Router /api/newsletters/{id} [get]
func (h *NewsletterHandler) Get(c fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid newsletter id", businessflow.CodeValidation, dto.ErrorDetail{Field: "id"})
	}

	ctx, cancel := h.createRequestContext(c, "/api/newsletters/:id")
	defer cancel()

	result, err := h.newsletterFlow.Get(ctx, id)
	if err != nil {
		return h.BusinessErrorResponse(c, err, "Failed to get newsletter")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Newsletter retrieved successfully", result)
}

// Export downloads one newsletter as text or HTML
// @Summary Export Newsletter
// @Tags Newsletters
// @Produce plain
// @Produce html
// @Param id path int true "Newsletter ID"
// @Param format query string false "txt (default) or html"
// @Success 200 {file} file "Rendered newsletter"
// @Failure 400 {object} dto.APIResponse "Invalid format"
// @Failure 404 {object} dto.APIResponse "Newsletter not found"
// @Router /api/newsletters/{id}/export [get]
func (h *NewsletterHandler) Export(c fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid newsletter id", businessflow.CodeValidation, dto.ErrorDetail{Field: "id"})
	}

	format := dto.ExportFormat(strings.ToLower(c.Query("format", string(dto.ExportFormatText))))

	ctx, cancel := h.createRequestContext(c, "/api/newsletters/:id/export")
	defer cancel()

	file, err := h.newsletterFlow.Export(ctx, id, format)
	if err != nil {
		return h.BusinessErrorResponse(c, err, "Failed to export newsletter")
	}
	return sendFile(c, file)
}

// Update replaces the generated content of a newsletter
// @Summary Update Newsletter
// @Tags Newsletters
// @Accept json
// @Produce json
// @Param id path int true "Newsletter ID"
// @Param request body dto.UpdateNewsletterRequest true "Edited content"
// @Success 200 {object} dto.APIResponse{data=dto.NewsletterResponse} "Newsletter updated successfully"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Newsletter not found"
// @Router /api/newsletters/{id} [put]
func (h *NewsletterHandler) Update(c fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid newsletter id", businessflow.CodeValidation, dto.ErrorDetail{Field: "id"})
	}

	var req dto.UpdateNewsletterRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", businessflow.CodeValidation, nil)
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}
	req.ID = id

	ctx, cancel := h.createRequestContext(c, "/api/newsletters/:id")
	defer cancel()

	result, err := h.newsletterFlow.Update(ctx, &req)
	if err != nil {
		return h.BusinessErrorResponse(c, err, "Failed to update newsletter")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Newsletter updated successfully", result)
}

// Delete removes a newsletter and its source files
// @Summary Delete Newsletter
// @Tags Newsletters
// @Produce json
// @Param id path int true "Newsletter ID"
// @Success 200 {object} dto.APIResponse "Newsletter deleted successfully"
// @Failure 404 {object} dto.APIResponse "Newsletter not found"
// @Router /api/newsletters/{id} [delete]
func (h *NewsletterHandler) Delete(c fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid newsletter id", businessflow.CodeValidation, dto.ErrorDetail{Field: "id"})
	}

	ctx, cancel := h.createRequestContext(c, "/api/newsletters/:id")
	defer cancel()

	if err := h.newsletterFlow.Delete(ctx, id); err != nil {
		return h.BusinessErrorResponse(c, err, "Failed to delete newsletter")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Newsletter deleted successfully", nil)
}

// queryAudienceID reads the optional audience_id filter; ok is false when it is malformed
func queryAudienceID(c fiber.Ctx) (*uint, bool) {
	raw := strings.TrimSpace(c.Query("audience_id"))
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return nil, false
	}
	v := uint(id)
	return &v, true
}

func sendFile(c fiber.Ctx, file *dto.ExportFile) error {
	c.Set(fiber.HeaderContentType, file.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.FileName))
	return c.Status(fiber.StatusOK).Send(file.Content)
}
