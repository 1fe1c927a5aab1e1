package core

import "time"

// Themes the app understands. Anything else in a settings patch is rejected.
const (
	ThemeDefault  = "default"
	ThemeBirthday = "birthday"
	ThemeStars    = "stars"
)

type (
	// Settings is the singleton app configuration record, created lazily
	// with defaults on first read and shallow-merged on every write.
	Settings struct {
		MasterVolume  float64   `json:"masterVolume"`
		EffectsVolume float64   `json:"effectsVolume"`
		MusicVolume   float64   `json:"musicVolume"`
		AudioEnabled  bool      `json:"audioEnabled"`
		BirthdayMode  bool      `json:"birthdayMode"`
		Theme         string    `json:"theme"`
		LastUpdated   time.Time `json:"lastUpdated"`
	}

	// SettingsPatch is a partial update. Nil fields are left untouched.
	SettingsPatch struct {
		MasterVolume  *float64 `json:"masterVolume,omitempty"`
		EffectsVolume *float64 `json:"effectsVolume,omitempty"`
		MusicVolume   *float64 `json:"musicVolume,omitempty"`
		AudioEnabled  *bool    `json:"audioEnabled,omitempty"`
		BirthdayMode  *bool    `json:"birthdayMode,omitempty"`
		Theme         *string  `json:"theme,omitempty" validate:"omitempty,oneof=default birthday stars"`
	}
)

// DefaultSettings returns the settings used before anything has been saved.
func DefaultSettings() Settings {
	return Settings{
		MasterVolume:  0.7,
		EffectsVolume: 0.8,
		MusicVolume:   0.4,
		AudioEnabled:  true,
		BirthdayMode:  false,
		Theme:         ThemeDefault,
		LastUpdated:   time.Now(),
	}
}

// Apply merges the patch into s, clamping the volume fields to [0,1].
func (p *SettingsPatch) Apply(s *Settings, now time.Time) {
	if p.MasterVolume != nil {
		s.MasterVolume = ClampVolume(*p.MasterVolume)
	}
	if p.EffectsVolume != nil {
		s.EffectsVolume = ClampVolume(*p.EffectsVolume)
	}
	if p.MusicVolume != nil {
		s.MusicVolume = ClampVolume(*p.MusicVolume)
	}
	if p.AudioEnabled != nil {
		s.AudioEnabled = *p.AudioEnabled
	}
	if p.BirthdayMode != nil {
		s.BirthdayMode = *p.BirthdayMode
	}
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	s.LastUpdated = now
}

// ClampVolume forces a volume fraction into [0,1].
func ClampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
