package handlers

import (
	"github.com/appestoicismo/newsllater/app/dto"
	businessflow "github.com/appestoicismo/newsllater/business_flow"
	"github.com/gofiber/fiber/v3"
)

// AudienceHandlerInterface defines the contract for audience handlers
type AudienceHandlerInterface interface {
	Create(c fiber.Ctx) error
	List(c fiber.Ctx) error
	Get(c fiber.Ctx) error
	Update(c fiber.Ctx) error
	Delete(c fiber.Ctx) error
}

// AudienceHandler handles saved audience HTTP requests
type AudienceHandler struct {
	baseHandler
	audienceFlow businessflow.AudienceFlow
}

// NewAudienceHandler creates a new audience handler
func NewAudienceHandler(audienceFlow businessflow.AudienceFlow) *AudienceHandler {
	return &AudienceHandler{
		baseHandler:  newBaseHandler(),
		audienceFlow: audienceFlow,
	}
}

// Create stores a new audience
// @Summary Create Audience
// @Tags Audiences
// @Accept json
// @Produce json
// @Param request body dto.AudienceRequest true "Audience data"
// @Success 201 {object} dto.APIResponse{data=dto.AudienceResponse} "Audience created successfully"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Router /api/audiences [post]
func (h *AudienceHandler) Create(c fiber.Ctx) error {
	var req dto.AudienceRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", businessflow.CodeValidation, nil)
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/audiences")
	defer cancel()

	result, err := h.audienceFlow.Create(ctx, &req)
	if err != nil {
		return h.BusinessErrorResponse(c, err, "Failed to create audience")
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Audience created successfully", result)
}

// List returns every audience, newest first
// @Summary List Audiences
// @Tags Audiences
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.AudienceResponse} "Audiences retrieved successfully"
// @Router /api/audiences [get]
func (h *AudienceHandler) List(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/audiences")
	defer cancel()

	result, err := h.audienceFlow.List(ctx)
	if err != nil {
		return h.BusinessErrorResponse(c, err, "Failed to list audiences")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Audiences retrieved successfully", result)
}

// Get returns one audience
// @Summary Get Audience
// @Tags Audiences
// @Produce json
// @Param id path int true "Audience ID"
// @Success 200 {object} dto.APIResponse{data=dto.AudienceResponse} "Audience retrieved successfully"
// @Failure 404 {object} dto.APIResponse "Audience not found"
// @Router /api/audiences/{id} [get]
func (h *AudienceHandler) Get(c fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid audience id", businessflow.CodeValidation, dto.ErrorDetail{Field: "id"})
	}

	ctx, cancel := h.createRequestContext(c, "/api/audiences/:id")
	defer cancel()

	result, err := h.audienceFlow.Get(ctx, id)
	if err != nil {
		return h.BusinessErrorResponse(c, err, "Failed to get audience")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Audience retrieved successfully", result)
}

// Update replaces name and description of an audience
// @Summary Update Audience
// @Tags Audiences
// @Accept json
// @Produce json
// @Param id path int true "Audience ID"
// @Param request body dto.AudienceRequest true "Audience data"
// @Success 200 {object} dto.APIResponse{data=dto.AudienceResponse} "Audience updated successfully"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Audience not found"
// @Router /api/audiences/{id} [put]
func (h *AudienceHandler) Update(c fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid audience id", businessflow.CodeValidation, dto.ErrorDetail{Field: "id"})
	}

	var req dto.AudienceRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", businessflow.CodeValidation, nil)
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/audiences/:id")
	defer cancel()

	result, err := h.audienceFlow.Update(ctx, id, &req)
	if err != nil {
		return h.BusinessErrorResponse(c, err, "Failed to update audience")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Audience updated successfully", result)
}

// Delete removes an audience; its newsletters keep their copied description
// @Summary Delete Audience
// @Tags Audiences
// @Produce json
// @Param id path int true "Audience ID"
// @Success 200 {object} dto.APIResponse "Audience deleted successfully"
// @Failure 404 {object} dto.APIResponse "Audience not found"
// @Router /api/audiences/{id} [delete]
func (h *AudienceHandler) Delete(c fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid audience id", businessflow.CodeValidation, dto.ErrorDetail{Field: "id"})
	}

	ctx, cancel := h.createRequestContext(c, "/api/audiences/:id")
	defer cancel()

	if err := h.audienceFlow.Delete(ctx, id); err != nil {
		return h.BusinessErrorResponse(c, err, "Failed to delete audience")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Audience deleted successfully", nil)
}
