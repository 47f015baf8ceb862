package handlers

import (
	"net/http"

	"github.com/abrezinsky/luckydraw/internal/services"
)

func (h *Handlers) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Settings.Get(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, settings)
}

func (h *Handlers) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	settings, err := h.Settings.Update(r.Context(), services.SettingsUpdate{
		SoundEnabled:     req.SoundEnabled,
		DarkModeEnabled:  req.DarkModeEnabled,
		VibrationEnabled: req.VibrationEnabled,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, settings)
}

// handleResetSettings restores default preferences (admin only).
// A successful reset also discards any in-progress draw session.
func (h *Handlers) handleResetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Settings.ResetToDefaults(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, settings)
}
