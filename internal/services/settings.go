package services

import (
	"context"
	"strconv"
	"sync"

	"github.com/abrezinsky/luckydraw/internal/errors"
	"github.com/abrezinsky/luckydraw/internal/logger"
	"github.com/abrezinsky/luckydraw/internal/models"
	"github.com/abrezinsky/luckydraw/internal/repository"
)

// Broadcaster defines the interface for broadcasting settings to clients
type Broadcaster interface {
	BroadcastSettings(settings models.Settings)
}

// SettingsUpdate is a partial change; nil fields are left alone
type SettingsUpdate struct {
	SoundEnabled     *bool `json:"sound_enabled,omitempty"`
	DarkModeEnabled  *bool `json:"dark_mode_enabled,omitempty"`
	VibrationEnabled *bool `json:"vibration_enabled,omitempty"`
}

// SettingsService handles user preferences
type SettingsService struct {
	log         logger.Logger
	repo        repository.SettingsRepository
	broadcaster Broadcaster

	// writeMu serializes read-modify-write cycles on the preferences
	writeMu sync.Mutex

	mu       sync.Mutex
	watchers map[chan models.Settings]struct{}
	reset    chan struct{}
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(log logger.Logger, repo repository.SettingsRepository) *SettingsService {
	return &SettingsService{
		log:      log,
		repo:     repo,
		watchers: make(map[chan models.Settings]struct{}),
		reset:    make(chan struct{}, 1),
	}
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *SettingsService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Get returns the current preferences. Missing keys fall back to their defaults.
func (s *SettingsService) Get(ctx context.Context) (models.Settings, error) {
	defaults := models.DefaultSettings()

	sound, err := s.getBool(ctx, repository.SettingSoundEnabled, defaults.SoundEnabled)
	if err != nil {
		return models.Settings{}, err
	}
	dark, err := s.getBool(ctx, repository.SettingDarkModeEnabled, defaults.DarkModeEnabled)
	if err != nil {
		return models.Settings{}, err
	}
	vibration, err := s.getBool(ctx, repository.SettingVibrationEnabled, defaults.VibrationEnabled)
	if err != nil {
		return models.Settings{}, err
	}

	return models.Settings{
		SoundEnabled:     sound,
		DarkModeEnabled:  dark,
		VibrationEnabled: vibration,
	}, nil
}

func (s *SettingsService) getBool(ctx context.Context, key string, def bool) (bool, error) {
	value, err := s.repo.GetSetting(ctx, key)
	if err != nil {
		if err == repository.ErrNotFound {
			return def, nil
		}
		return false, errors.Storage(err)
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		s.log.Warn("Ignoring malformed setting", "key", key, "value", value)
		return def, nil
	}
	return b, nil
}

// SetSoundEnabled turns sound effects on or off
func (s *SettingsService) SetSoundEnabled(ctx context.Context, enabled bool) (models.Settings, error) {
	return s.Update(ctx, SettingsUpdate{SoundEnabled: &enabled})
}

// SetDarkModeEnabled turns the dark theme on or off
func (s *SettingsService) SetDarkModeEnabled(ctx context.Context, enabled bool) (models.Settings, error) {
	return s.Update(ctx, SettingsUpdate{DarkModeEnabled: &enabled})
}

// SetVibrationEnabled turns haptic feedback on or off
func (s *SettingsService) SetVibrationEnabled(ctx context.Context, enabled bool) (models.Settings, error) {
	return s.Update(ctx, SettingsUpdate{VibrationEnabled: &enabled})
}

// Update applies a partial change atomically and returns the resulting preferences
func (s *SettingsService) Update(ctx context.Context, update SettingsUpdate) (models.Settings, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	values := make(map[string]string, 3)
	if update.SoundEnabled != nil {
		values[repository.SettingSoundEnabled] = strconv.FormatBool(*update.SoundEnabled)
	}
	if update.DarkModeEnabled != nil {
		values[repository.SettingDarkModeEnabled] = strconv.FormatBool(*update.DarkModeEnabled)
	}
	if update.VibrationEnabled != nil {
		values[repository.SettingVibrationEnabled] = strconv.FormatBool(*update.VibrationEnabled)
	}

	if err := s.repo.SetSettings(ctx, values); err != nil {
		s.log.Error("Failed to save settings", "keys", len(values), "error", err)
		return models.Settings{}, errors.Storage(err)
	}

	settings, err := s.Get(ctx)
	if err != nil {
		return models.Settings{}, err
	}
	s.publish(settings)
	return settings, nil
}

// ResetToDefaults restores every preference and raises the reset signal
func (s *SettingsService) ResetToDefaults(ctx context.Context) (models.Settings, error) {
	defaults := models.DefaultSettings()
	settings, err := s.Update(ctx, SettingsUpdate{
		SoundEnabled:     &defaults.SoundEnabled,
		DarkModeEnabled:  &defaults.DarkModeEnabled,
		VibrationEnabled: &defaults.VibrationEnabled,
	})
	if err != nil {
		return models.Settings{}, err
	}

	// Signals raised before the consumer catches up collapse into one.
	select {
	case s.reset <- struct{}{}:
	default:
	}

	s.log.Info("Settings reset to defaults")
	return settings, nil
}

// ResetSignal delivers one value per reset burst. It has a single consumer.
func (s *SettingsService) ResetSignal() <-chan struct{} {
	return s.reset
}

// Watch returns a channel that receives the current preferences right away and
// again after every change. Slow readers only see the latest value.
// The channel is closed when ctx is done.
func (s *SettingsService) Watch(ctx context.Context) (<-chan models.Settings, error) {
	current, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	ch := make(chan models.Settings, 1)
	ch <- current

	s.mu.Lock()
	s.watchers[ch] = struct{}{}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.watchers, ch)
		close(ch)
		s.mu.Unlock()
	}()
	return ch, nil
}

func (s *SettingsService) publish(settings models.Settings) {
	s.mu.Lock()
	for ch := range s.watchers {
		select {
		case <-ch:
		default:
		}
		ch <- settings
	}
	s.mu.Unlock()

	if s.broadcaster != nil {
		s.broadcaster.BroadcastSettings(settings)
	}
}
