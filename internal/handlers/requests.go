package handlers

// StartDrawRequest represents a request to start a draw session
type StartDrawRequest struct {
	WithAnimation *bool `json:"with_animation"`
}

// SettingsUpdateRequest represents a partial preferences update.
// Omitted fields keep their stored value.
type SettingsUpdateRequest struct {
	SoundEnabled     *bool `json:"sound_enabled"`
	DarkModeEnabled  *bool `json:"dark_mode_enabled"`
	VibrationEnabled *bool `json:"vibration_enabled"`
}
