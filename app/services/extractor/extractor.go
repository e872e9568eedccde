// Package extractor turns uploaded source documents into normalized plain text
package extractor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/appestoicismo/newsllater/models"
)

// Kind classifies extraction failures
type Kind string

const (
	KindUnsupportedType   Kind = "UNSUPPORTED_FILE_TYPE"
	KindExtractionFailure Kind = "EXTRACTION_FAILURE"
)

// Error is returned by Extract for every failure
type Error struct {
	Kind     Kind
	Path     string
	FileType models.FileType
	Err      error
}

func (e *Error) Error() string {
	if e.Kind == KindUnsupportedType {
		return fmt.Sprintf("unsupported file type: %s", e.FileType)
	}
	if e.Err != nil {
		return fmt.Sprintf("failed to process file %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("failed to process file %s", e.Path)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsUnsupportedType reports whether err is an unsupported type failure
func IsUnsupportedType(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindUnsupportedType
}

// IsExtractionFailure reports whether err is a parse or read failure
func IsExtractionFailure(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindExtractionFailure
}

// Extract reads the document at path according to fileType and returns its
// normalized text. The file is left in place.
func Extract(ctx context.Context, path string, fileType models.FileType) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &Error{Kind: KindExtractionFailure, Path: path, FileType: fileType, Err: err}
	}

	var (
		raw string
		err error
	)
	switch models.FileType(strings.ToLower(string(fileType))) {
	case models.FileTypePDF:
		raw, err = extractPDF(path)
	case models.FileTypeDOCX:
		raw, err = extractDOCX(path)
	case models.FileTypeTXT, models.FileTypeMarkdown:
		raw, err = extractText(path)
	default:
		return "", &Error{Kind: KindUnsupportedType, Path: path, FileType: fileType}
	}
	if err != nil {
		return "", &Error{Kind: KindExtractionFailure, Path: path, FileType: fileType, Err: err}
	}

	return Normalize(raw), nil
}

// extractText decodes the file as UTF-8, replacing invalid sequences
func extractText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(data), "�"), nil
}
