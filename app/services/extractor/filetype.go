package extractor

import (
	"path/filepath"
	"strings"

	"github.com/appestoicismo/newsllater/models"
)

var allowedMIMETypes = map[string]bool{
	"application/pdf": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"text/plain":      true,
	"text/markdown":   true,
	"text/x-markdown": true,
}

var extensionTypes = map[string]models.FileType{
	".pdf":  models.FileTypePDF,
	".docx": models.FileTypeDOCX,
	".txt":  models.FileTypeTXT,
	".md":   models.FileTypeMarkdown,
}

// FileTypeFromName maps a filename extension to a file type, or FileTypeUnknown
func FileTypeFromName(filename string) models.FileType {
	if t, ok := extensionTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return t
	}
	return models.FileTypeUnknown
}

// IsAllowedUpload accepts a file when either its declared MIME type or its
// extension is one of the supported document kinds
func IsAllowedUpload(mimeType, filename string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if allowedMIMETypes[mimeType] {
		return true
	}
	return FileTypeFromName(filename) != models.FileTypeUnknown
}
