// Package businessflow contains the core business logic and use cases for newsletter workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Error codes. The set is closed; handlers map each code to a status.
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeAudienceNotFound    = "AUDIENCE_NOT_FOUND"
	CodeNewsletterNotFound  = "NEWSLETTER_NOT_FOUND"
	CodeConfiguration       = "CONFIGURATION_ERROR"
	CodeUnsupportedFileType = "UNSUPPORTED_FILE_TYPE"
	CodeExtractionFailure   = "EXTRACTION_FAILURE"
	CodeProviderError       = "PROVIDER_ERROR"
	CodeTransportError      = "TRANSPORT_ERROR"
	CodePersistenceError    = "PERSISTENCE_ERROR"
	CodeExportFailure       = "EXPORT_FAILURE"
)

// Business flow error constants
var (
	ErrPainPointRequired           = errors.New("pain point is required")
	ErrAudienceDescriptionRequired = errors.New("audience description is required")
	ErrSourceMaterialsRequired     = errors.New("source materials are required")
	ErrAudienceNotFound            = errors.New("audience not found")
	ErrNewsletterNotFound          = errors.New("newsletter not found")
	ErrAPIKeyNotConfigured         = errors.New("anthropic api key not configured")
	ErrContentRequired             = errors.New("generated content is required")
	ErrAudienceFieldsRequired      = errors.New("name and description are required")
	ErrSettingKeyRequired          = errors.New("setting key is required")
	ErrSettingValueRequired        = errors.New("setting value is required")
	ErrInvalidExportFormat         = errors.New("export format must be txt or html")
)

// BusinessError is returned by every flow operation that fails
type BusinessError struct {
	Code    string
	Message string
	// Field names the offending input of a validation error
	Field string
	// StatusCode is the provider status of a provider error
	StatusCode int
	Err        error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

// NewValidationError reports bad or missing input on field
func NewValidationError(field, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    CodeValidation,
		Message: message,
		Field:   field,
		Err:     err,
	}
}

// CodeOf returns the code of the first BusinessError in err's chain
func CodeOf(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

func hasCode(err error, code string) bool {
	return CodeOf(err) == code
}

func IsValidationError(err error) bool {
	return hasCode(err, CodeValidation)
}

func IsAudienceNotFound(err error) bool {
	return hasCode(err, CodeAudienceNotFound)
}

func IsNewsletterNotFound(err error) bool {
	return hasCode(err, CodeNewsletterNotFound)
}

func IsNotFound(err error) bool {
	return IsAudienceNotFound(err) || IsNewsletterNotFound(err)
}

func IsConfigurationError(err error) bool {
	return hasCode(err, CodeConfiguration)
}

func IsUnsupportedFileType(err error) bool {
	return hasCode(err, CodeUnsupportedFileType)
}

func IsExtractionFailure(err error) bool {
	return hasCode(err, CodeExtractionFailure)
}

func IsProviderError(err error) bool {
	return hasCode(err, CodeProviderError)
}

func IsTransportError(err error) bool {
	return hasCode(err, CodeTransportError)
}

func IsPersistenceError(err error) bool {
	return hasCode(err, CodePersistenceError)
}
