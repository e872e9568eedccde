// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/appestoicismo/newsllater/app/dto"
	businessflow "github.com/appestoicismo/newsllater/business_flow"
	"github.com/appestoicismo/newsllater/logger"
	"github.com/appestoicismo/newsllater/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/requestid"
)

// baseHandler carries the response helpers shared by every handler
type baseHandler struct {
	validator *validator.Validate
}

func newBaseHandler() baseHandler {
	v := validator.New()
	// Report fields by their wire name
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
			if name != "" && name != "-" {
				return name
			}
		}
		return ""
	})
	return baseHandler{validator: v}
}

func (h *baseHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Error:   message,
		Code:    errorCode,
		Details: details,
	})
}

func (h *baseHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// validate runs struct validation and writes a 400 on failure; ok is false when a response was written
func (h *baseHandler) validate(c fiber.Ctx, req any) (ok bool, err error) {
	verr := h.validator.Struct(req)
	if verr == nil {
		return true, nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(verr, &fieldErrors) || len(fieldErrors) == 0 {
		return false, h.ErrorResponse(c, fiber.StatusBadRequest, verr.Error(), businessflow.CodeValidation, nil)
	}
	first := fieldErrors[0]
	return false, h.ErrorResponse(c, fiber.StatusBadRequest, getValidationErrorMessage(first), businessflow.CodeValidation,
		dto.ErrorDetail{Field: first.Field()})
}

// BusinessErrorResponse writes the envelope for an error returned by a flow
func (h *baseHandler) BusinessErrorResponse(c fiber.Ctx, err error, fallback string) error {
	var be *businessflow.BusinessError
	if !errors.As(err, &be) {
		logger.Error(fallback, err, "path", c.Path())
		return h.ErrorResponse(c, fiber.StatusInternalServerError, fallback, "INTERNAL_ERROR", nil)
	}

	status := statusForCode(be.Code)
	if status >= fiber.StatusInternalServerError {
		logger.Error(fallback, err, "path", c.Path(), "code", be.Code)
	}

	var details any
	switch {
	case be.Field != "":
		details = dto.ErrorDetail{Field: be.Field}
	case be.StatusCode != 0:
		details = dto.ErrorDetail{StatusCode: be.StatusCode}
	}
	return h.ErrorResponse(c, status, be.Message, be.Code, details)
}

// statusForCode maps a business error code to its HTTP status
func statusForCode(code string) int {
	switch code {
	case businessflow.CodeValidation, businessflow.CodeConfiguration, businessflow.CodeUnsupportedFileType:
		return fiber.StatusBadRequest
	case businessflow.CodeAudienceNotFound, businessflow.CodeNewsletterNotFound:
		return fiber.StatusNotFound
	case businessflow.CodeProviderError:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// createRequestContext creates a context with the default timeout
func (h *baseHandler) createRequestContext(c fiber.Ctx, endpoint string) (context.Context, context.CancelFunc) {
	return h.createRequestContextWithTimeout(c, endpoint, utils.DefaultRequestTimeout)
}

// createRequestContextWithTimeout creates a context with custom timeout and request-scoped values
func (h *baseHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	reqID := requestid.FromContext(c)
	if reqID == "" {
		reqID = c.Get(fiber.HeaderXRequestID)
	}

	ctx = context.WithValue(ctx, utils.RequestIDKey, reqID)
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)

	return ctx, cancel
}

// parseID reads a positive numeric path parameter
func parseID(c fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return uint(id), nil
}

func getValidationErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "min":
		return err.Field() + " must be at least " + err.Param()
	case "max":
		return err.Field() + " must be at most " + err.Param() + " characters"
	case "oneof":
		return err.Field() + " must be one of: " + err.Param()
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", err.Field(), err.Param())
	default:
		return err.Field() + " is invalid"
	}
}
