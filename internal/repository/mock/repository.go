package mock

import (
	"context"

	"github.com/abrezinsky/luckydraw/internal/models"
	"github.com/abrezinsky/luckydraw/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.SaveSessionError = errors.New("disk full")
//	svc := services.NewHistoryService(log, mockRepo, catalog)
//	err := svc.SaveSession(ctx, session)
//	// err is now a storage failure wrapping the injected error
type Repository struct {
	repository.FullRepository

	// ===== Session Errors =====
	SaveSessionError           error
	GetSessionError            error
	ListSessionsError          error
	ListCompletedSessionsError error
	DeleteSessionError         error
	ClearSessionsError         error
	GetActiveSessionError      error
	CountSessionsError         error

	// ===== Settings Errors =====
	GetSettingError error
	SetSettingError error

	// SaveSessionCalls counts calls to SaveSession, including failed ones
	SaveSessionCalls int
}

// NewRepository creates a mock repository wrapping a real one
func NewRepository(real repository.FullRepository) *Repository {
	return &Repository{
		FullRepository: real,
	}
}

// ===== Session Methods =====

func (m *Repository) SaveSession(ctx context.Context, rec models.SessionRecord) error {
	m.SaveSessionCalls++
	if m.SaveSessionError != nil {
		return m.SaveSessionError
	}
	return m.FullRepository.SaveSession(ctx, rec)
}

func (m *Repository) GetSession(ctx context.Context, id string) (*models.SessionRecord, error) {
	if m.GetSessionError != nil {
		return nil, m.GetSessionError
	}
	return m.FullRepository.GetSession(ctx, id)
}

func (m *Repository) ListSessions(ctx context.Context) ([]models.SessionRecord, error) {
	if m.ListSessionsError != nil {
		return nil, m.ListSessionsError
	}
	return m.FullRepository.ListSessions(ctx)
}

func (m *Repository) ListCompletedSessions(ctx context.Context, limit int) ([]models.SessionRecord, error) {
	if m.ListCompletedSessionsError != nil {
		return nil, m.ListCompletedSessionsError
	}
	return m.FullRepository.ListCompletedSessions(ctx, limit)
}

func (m *Repository) DeleteSession(ctx context.Context, id string) error {
	if m.DeleteSessionError != nil {
		return m.DeleteSessionError
	}
	return m.FullRepository.DeleteSession(ctx, id)
}

func (m *Repository) ClearSessions(ctx context.Context) error {
	if m.ClearSessionsError != nil {
		return m.ClearSessionsError
	}
	return m.FullRepository.ClearSessions(ctx)
}

func (m *Repository) GetActiveSession(ctx context.Context) (*models.SessionRecord, error) {
	if m.GetActiveSessionError != nil {
		return nil, m.GetActiveSessionError
	}
	return m.FullRepository.GetActiveSession(ctx)
}

func (m *Repository) CountSessions(ctx context.Context) (int, error) {
	if m.CountSessionsError != nil {
		return 0, m.CountSessionsError
	}
	return m.FullRepository.CountSessions(ctx)
}

// ===== Settings Methods =====

func (m *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	if m.GetSettingError != nil {
		return "", m.GetSettingError
	}
	return m.FullRepository.GetSetting(ctx, key)
}

func (m *Repository) SetSetting(ctx context.Context, key, value string) error {
	if m.SetSettingError != nil {
		return m.SetSettingError
	}
	return m.FullRepository.SetSetting(ctx, key, value)
}

func (m *Repository) SetSettings(ctx context.Context, values map[string]string) error {
	if m.SetSettingError != nil {
		return m.SetSettingError
	}
	return m.FullRepository.SetSettings(ctx, values)
}
