package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClampVolume(t *testing.T) {
	assert.Equal(t, 1.0, ClampVolume(1.5))
	assert.Equal(t, 0.0, ClampVolume(-0.2))
	assert.Equal(t, 0.5, ClampVolume(0.5))
	assert.Equal(t, 0.0, ClampVolume(0))
	assert.Equal(t, 1.0, ClampVolume(1))
}

func TestSettingsPatchApply(t *testing.T) {
	s := DefaultSettings()
	now := time.Now()

	vol := 1.5
	theme := ThemeBirthday
	enabled := false
	patch := SettingsPatch{
		MasterVolume: &vol,
		Theme:        &theme,
		AudioEnabled: &enabled,
	}
	patch.Apply(&s, now)

	assert.Equal(t, 1.0, s.MasterVolume)
	assert.Equal(t, ThemeBirthday, s.Theme)
	assert.False(t, s.AudioEnabled)
	assert.Equal(t, now, s.LastUpdated)

	// Untouched fields keep their defaults.
	assert.Equal(t, 0.8, s.EffectsVolume)
	assert.Equal(t, 0.4, s.MusicVolume)
	assert.False(t, s.BirthdayMode)
}

func TestSettingsPatchApplyClampsAllVolumes(t *testing.T) {
	s := DefaultSettings()

	master := -0.2
	effects := 2.0
	music := 0.25
	patch := SettingsPatch{
		MasterVolume:  &master,
		EffectsVolume: &effects,
		MusicVolume:   &music,
	}
	patch.Apply(&s, time.Now())

	assert.Equal(t, 0.0, s.MasterVolume)
	assert.Equal(t, 1.0, s.EffectsVolume)
	assert.Equal(t, 0.25, s.MusicVolume)
}

func TestSessionValid(t *testing.T) {
	now := time.Now()
	s := Session{Authenticated: true, ExpiresAt: now.Add(time.Hour)}
	assert.True(t, s.Valid(now))

	expired := Session{Authenticated: true, ExpiresAt: now.Add(-time.Second)}
	assert.False(t, expired.Valid(now))

	unauthenticated := Session{Authenticated: false, ExpiresAt: now.Add(time.Hour)}
	assert.False(t, unauthenticated.Valid(now))
}
