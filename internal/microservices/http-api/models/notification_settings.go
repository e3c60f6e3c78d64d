package models

// NotificationSettings holds one user's notification preferences.
type NotificationSettings struct {
	UserID  int64                     `json:"userId"`
	Enabled bool                      `json:"enabled"`
	Types   map[NotificationType]bool `json:"types"`
	Sound   bool                      `json:"sound"`
	Desktop bool                      `json:"desktop"`
}

// DefaultNotificationSettings returns the record materialized on first access.
func DefaultNotificationSettings(userID int64) NotificationSettings {
	types := make(map[NotificationType]bool, len(NotificationTypes))
	for _, t := range NotificationTypes {
		types[t] = true
	}
	return NotificationSettings{
		UserID:  userID,
		Enabled: true,
		Types:   types,
		Sound:   false,
		Desktop: false,
	}
}

// Allows is the admission predicate: the master switch and the per-type flag.
func (s NotificationSettings) Allows(t NotificationType) bool {
	return s.Enabled && s.Types[t]
}

// Clone returns a copy that shares no map with s.
func (s NotificationSettings) Clone() NotificationSettings {
	out := s
	out.Types = make(map[NotificationType]bool, len(s.Types))
	for k, v := range s.Types {
		out.Types[k] = v
	}
	return out
}

// SettingsPatch is a partial update. Nil fields are left untouched and
// Types entries are merged key by key.
type SettingsPatch struct {
	Enabled *bool                     `json:"enabled,omitempty"`
	Types   map[NotificationType]bool `json:"types,omitempty"`
	Sound   *bool                     `json:"sound,omitempty"`
	Desktop *bool                     `json:"desktop,omitempty"`
}

// Apply merges p into s and returns the result.
func (p SettingsPatch) Apply(s NotificationSettings) NotificationSettings {
	out := s.Clone()
	if p.Enabled != nil {
		out.Enabled = *p.Enabled
	}
	for k, v := range p.Types {
		out.Types[k] = v
	}
	if p.Sound != nil {
		out.Sound = *p.Sound
	}
	if p.Desktop != nil {
		out.Desktop = *p.Desktop
	}
	return out
}
