package models

import (
	"time"
)

// Setting keys read by the application
const (
	SettingAnthropicAPIKey = "anthropic_api_key"
	SettingSignatureName   = "signature_name"
	SettingDefaultTone     = "default_tone"
)

// DefaultSettings are inserted on migration when the key is absent
var DefaultSettings = map[string]string{
	SettingSignatureName:   "Alex Dantas",
	SettingDefaultTone:     "equilibrado",
	SettingAnthropicAPIKey: "",
}

// Setting is a plain key-value pair. Values are stored as plain text,
// including the provider API key.
// Table: settings
type Setting struct {
	Key       string    `gorm:"primaryKey;type:varchar(255)" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Setting) TableName() string { return "settings" }
