package businessflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/appestoicismo/newsllater/repository"
)

// SettingsFlow handles the key-value settings store
type SettingsFlow interface {
	GetAll(ctx context.Context) (map[string]string, error)
	UpdateMany(ctx context.Context, values map[string]any) error
	UpdateOne(ctx context.Context, key string, value any) error
}

// SettingsFlowImpl implements SettingsFlow
type SettingsFlowImpl struct {
	settingRepo repository.SettingRepository
}

// NewSettingsFlow creates a new settings flow instance
func NewSettingsFlow(settingRepo repository.SettingRepository) SettingsFlow {
	return &SettingsFlowImpl{settingRepo: settingRepo}
}

// GetAll returns every setting as a flat object
func (f *SettingsFlowImpl) GetAll(ctx context.Context) (map[string]string, error) {
	rows, err := f.settingRepo.All(ctx)
	if err != nil {
		return nil, NewBusinessError(CodePersistenceError, "Failed to load settings", err)
	}

	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Value
	}
	return out, nil
}

// UpdateMany upserts every pair in one transaction
func (f *SettingsFlowImpl) UpdateMany(ctx context.Context, values map[string]any) error {
	if values == nil {
		return NewValidationError("settings", "Settings must be an object", nil)
	}

	stringified := make(map[string]string, len(values))
	for key, value := range values {
		if strings.TrimSpace(key) == "" {
			return NewValidationError("key", "Setting key is required", ErrSettingKeyRequired)
		}
		stringified[key] = stringify(value)
	}

	if err := f.settingRepo.UpsertMany(ctx, stringified); err != nil {
		return NewBusinessError(CodePersistenceError, "Failed to update settings", err)
	}
	return nil
}

// UpdateOne upserts a single key
func (f *SettingsFlowImpl) UpdateOne(ctx context.Context, key string, value any) error {
	if strings.TrimSpace(key) == "" {
		return NewValidationError("key", "Setting key is required", ErrSettingKeyRequired)
	}

	if err := f.settingRepo.Upsert(ctx, key, stringify(value)); err != nil {
		return NewBusinessError(CodePersistenceError, "Failed to update setting", err)
	}
	return nil
}

// stringify renders JSON scalars the way they were sent; objects and arrays
// are stored as compact JSON
func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool, float64, int, int64, json.Number:
		return fmt.Sprint(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	}
}
