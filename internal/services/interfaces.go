package services

import (
	"context"

	"github.com/abrezinsky/luckydraw/internal/models"
)

// RunnerServicer defines the interface for draw control
type RunnerServicer interface {
	Start(withAnimation bool) error
	QuickStart() error
	Pause() error
	Resume() error
	Reset()
	State() RunnerState
	Snapshot() RunnerSnapshot
	Catalog() *Catalog
	AddObserver(o DrawObserver)
}

// HistoryServicer defines the interface for session history operations
type HistoryServicer interface {
	SaveSession(ctx context.Context, session models.LotterySession) error
	GetSession(ctx context.Context, id string) (*models.LotterySession, error)
	ListSessions(ctx context.Context) ([]models.LotterySession, error)
	SearchSessions(ctx context.Context, query string) ([]models.LotterySession, error)
	RecentCompleted(ctx context.Context, limit int) ([]models.LotterySession, error)
	Count(ctx context.Context) (int, error)
	Unfinished(ctx context.Context) (*models.LotterySession, error)
	DeleteSession(ctx context.Context, id string) error
	ClearSessions(ctx context.Context) error
	Watch(ctx context.Context) (<-chan []models.LotterySession, error)
	ShareText(ctx context.Context, id string) (string, error)
	ShareImage(ctx context.Context, id string, size int) ([]byte, error)
	SetBroadcaster(b HistoryBroadcaster)
}

// SettingsServicer defines the interface for settings operations
type SettingsServicer interface {
	Get(ctx context.Context) (models.Settings, error)
	SetSoundEnabled(ctx context.Context, enabled bool) (models.Settings, error)
	SetDarkModeEnabled(ctx context.Context, enabled bool) (models.Settings, error)
	SetVibrationEnabled(ctx context.Context, enabled bool) (models.Settings, error)
	Update(ctx context.Context, update SettingsUpdate) (models.Settings, error)
	ResetToDefaults(ctx context.Context) (models.Settings, error)
	ResetSignal() <-chan struct{}
	Watch(ctx context.Context) (<-chan models.Settings, error)
	SetBroadcaster(b Broadcaster)
}

// Ensure concrete types implement interfaces
var (
	_ RunnerServicer   = (*SessionRunner)(nil)
	_ HistoryServicer  = (*HistoryService)(nil)
	_ SettingsServicer = (*SettingsService)(nil)
	_ SessionSaver     = (*HistoryService)(nil)
	_ NumberGenerator  = (*Generator)(nil)
)
