package dto

// UpdateSettingRequest sets a single key. Value is nil when it was omitted or null.
type UpdateSettingRequest struct {
	Key   string `json:"key" validate:"required,max=255"`
	Value *any   `json:"value"`
}
