package dto

import (
	"manhwahub/internal/microservices/http-api/models"
)

// UpdateSettingsRequest: PATCH /settings. Omitted fields keep their value;
// types are merged key by key and must name known types.
type UpdateSettingsRequest struct {
	Enabled *bool           `json:"enabled"`
	Types   map[string]bool `json:"types"`
	Sound   *bool           `json:"sound"`
	Desktop *bool           `json:"desktop"`
}

func (r UpdateSettingsRequest) ToPatch() (models.SettingsPatch, error) {
	patch := models.SettingsPatch{
		Enabled: r.Enabled,
		Sound:   r.Sound,
		Desktop: r.Desktop,
	}
	if len(r.Types) > 0 {
		patch.Types = make(map[models.NotificationType]bool, len(r.Types))
		for name, on := range r.Types {
			t, err := models.ParseNotificationType(name)
			if err != nil {
				return models.SettingsPatch{}, err
			}
			patch.Types[t] = on
		}
	}
	return patch, nil
}
