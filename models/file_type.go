package models

import (
	"database/sql/driver"
	"fmt"
)

// FileType is the declared type of an uploaded source document.
type FileType string

const (
	FileTypePDF      FileType = "pdf"
	FileTypeDOCX     FileType = "docx"
	FileTypeTXT      FileType = "txt"
	FileTypeMarkdown FileType = "md"
	FileTypeUnknown  FileType = "unknown"
)

// Valid checks if the file type is one the extractor understands.
func (t FileType) Valid() bool {
	switch t {
	case FileTypePDF, FileTypeDOCX, FileTypeTXT, FileTypeMarkdown:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for FileType
func (t *FileType) Scan(value any) error {
	if value == nil {
		*t = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*t = FileType(v)
	case []byte:
		*t = FileType(string(v))
	default:
		return fmt.Errorf("cannot scan %T into FileType", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for FileType
func (t FileType) Value() (driver.Value, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid FileType: %s", t)
	}
	return string(t), nil
}
