package handlers

import (
	"github.com/appestoicismo/newsllater/app/dto"
	businessflow "github.com/appestoicismo/newsllater/business_flow"
	"github.com/gofiber/fiber/v3"
)

// SettingsHandlerInterface defines the contract for settings handlers
type SettingsHandlerInterface interface {
	GetAll(c fiber.Ctx) error
	UpdateMany(c fiber.Ctx) error
	UpdateOne(c fiber.Ctx) error
}

// SettingsHandler handles application settings
type SettingsHandler struct {
	baseHandler
	settingsFlow businessflow.SettingsFlow
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settingsFlow businessflow.SettingsFlow) *SettingsHandler {
	return &SettingsHandler{
		baseHandler:  newBaseHandler(),
		settingsFlow: settingsFlow,
	}
}

// GetAll returns every setting as one object
// @Summary Get Settings
// @Tags Settings
// @Produce json
// @Success 200 {object} dto.APIResponse{data=map[string]string} "Settings retrieved successfully"
// @Router /api/settings [get]
func (h *SettingsHandler) GetAll(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/settings")
	defer cancel()

	result, err := h.settingsFlow.GetAll(ctx)
	if err != nil {
		return h.BusinessErrorResponse(c, err, "Failed to load settings")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Settings retrieved successfully", result)
}

// UpdateMany upserts every key of the posted object
// @Summary Update Settings
// @Tags Settings
// @Accept json
// @Produce json
// @Param request body map[string]any true "Settings to upsert"
// @Success 200 {object} dto.APIResponse "Settings updated successfully"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Router /api/settings [post]
func (h *SettingsHandler) UpdateMany(c fiber.Ctx) error {
	var values map[string]any
	if err := c.Bind().JSON(&values); err != nil || values == nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Settings must be an object", businessflow.CodeValidation,
			dto.ErrorDetail{Field: "settings"})
	}

	ctx, cancel := h.createRequestContext(c, "/api/settings")
	defer cancel()

	if err := h.settingsFlow.UpdateMany(ctx, values); err != nil {
		return h.BusinessErrorResponse(c, err, "Failed to update settings")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Settings updated successfully", nil)
}

// UpdateOne upserts a single key
// @Summary Update Setting
// @Tags Settings
// @Accept json
// @Produce json
// @Param request body dto.UpdateSettingRequest true "Key and value"
// @Success 200 {object} dto.APIResponse "Setting updated successfully"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Router /api/settings/single [post]
func (h *SettingsHandler) UpdateOne(c fiber.Ctx) error {
	var req dto.UpdateSettingRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", businessflow.CodeValidation, nil)
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}
	if req.Value == nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "value is required", businessflow.CodeValidation,
			dto.ErrorDetail{Field: "value"})
	}

	ctx, cancel := h.createRequestContext(c, "/api/settings/single")
	defer cancel()

	if err := h.settingsFlow.UpdateOne(ctx, req.Key, *req.Value); err != nil {
		return h.BusinessErrorResponse(c, err, "Failed to update setting")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Setting updated successfully", nil)
}
