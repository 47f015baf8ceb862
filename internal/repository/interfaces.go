package repository

import (
	"context"

	"github.com/abrezinsky/luckydraw/internal/models"
)

// SessionRepository defines lottery session data operations
type SessionRepository interface {
	SaveSession(ctx context.Context, rec models.SessionRecord) error
	GetSession(ctx context.Context, id string) (*models.SessionRecord, error)
	ListSessions(ctx context.Context) ([]models.SessionRecord, error)
	ListCompletedSessions(ctx context.Context, limit int) ([]models.SessionRecord, error)
	GetActiveSession(ctx context.Context) (*models.SessionRecord, error)
	DeleteSession(ctx context.Context, id string) error
	ClearSessions(ctx context.Context) error
	CountSessions(ctx context.Context) (int, error)
}

// SettingsRepository defines settings data operations
type SettingsRepository interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	SetSettings(ctx context.Context, values map[string]string) error
}

// FullRepository combines all repository interfaces
type FullRepository interface {
	SessionRepository
	SettingsRepository
}

// Ensure Repository implements all interfaces
var _ FullRepository = (*Repository)(nil)
