package dto

import (
	"encoding/json"
	"time"

	"github.com/noah-isme/institute-api/internal/models"
)

// SettingResponse serializes a site setting.
type SettingResponse struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	IsPublic  bool            `json:"is_public"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// SettingsResponse is the keyed map handed to settings consumers.
type SettingsResponse struct {
	Settings map[string]json.RawMessage `json:"settings"`
	CacheHit bool                       `json:"cache_hit,omitempty"`
}

// SettingUpsertRequest captures an admin settings write.
type SettingUpsertRequest struct {
	Key      string          `json:"key" validate:"required,min=2,max=128"`
	Value    json.RawMessage `json:"value" validate:"required"`
	IsPublic bool            `json:"is_public"`
}

// NewSettingResponse converts a setting model into a DTO.
func NewSettingResponse(setting models.Setting) SettingResponse {
	return SettingResponse{
		Key:       setting.Key,
		Value:     json.RawMessage(setting.Value),
		IsPublic:  setting.IsPublic,
		UpdatedAt: setting.UpdatedAt,
	}
}
