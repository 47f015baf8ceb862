package drawclient

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// MockClient is an in-memory board for testing code that drives a Client
type MockClient struct {
	mu            sync.Mutex
	baseURL       string
	password      string
	authenticated bool
	prizes        []Prize
	snapshot      Snapshot
	sessions      []Session
	settings      Settings
	shareTexts    map[string]string
	controlErr    error
	sessionsErr   error
	loginErr      error
	calls         []string
}

// MockOption configures the mock client
type MockOption func(*MockClient)

// WithPrizes sets the catalog to return
func WithPrizes(prizes []Prize) MockOption {
	return func(m *MockClient) {
		m.prizes = prizes
	}
}

// WithSessions sets the stored sessions to return, newest first
func WithSessions(sessions []Session) MockOption {
	return func(m *MockClient) {
		m.sessions = sessions
	}
}

// WithShareText sets the share text returned for a session
func WithShareText(id, text string) MockOption {
	return func(m *MockClient) {
		m.shareTexts[id] = text
	}
}

// WithControlError sets an error to return from every draw control call
func WithControlError(err error) MockOption {
	return func(m *MockClient) {
		m.controlErr = err
	}
}

// WithSessionsError sets an error to return from Sessions
func WithSessionsError(err error) MockOption {
	return func(m *MockClient) {
		m.sessionsErr = err
	}
}

// WithLoginError sets an error to return from Login
func WithLoginError(err error) MockOption {
	return func(m *MockClient) {
		m.loginErr = err
	}
}

// WithBaseURL sets the base URL
func WithBaseURL(url string) MockOption {
	return func(m *MockClient) {
		m.baseURL = url
	}
}

// NewMockClient creates a new mock board client in the idle state
func NewMockClient(opts ...MockOption) *MockClient {
	m := &MockClient{
		baseURL:    "http://mock-luckydraw.local",
		prizes:     DefaultMockPrizes(),
		settings:   Settings{SoundEnabled: true, DarkModeEnabled: true, VibrationEnabled: true},
		shareTexts: make(map[string]string),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.snapshot = Snapshot{State: "idle", Remaining: m.prizes}
	return m
}

// DefaultMockPrizes returns a three tier catalog with the jackpot last
func DefaultMockPrizes() []Prize {
	return []Prize{
		{ID: "eighth", Name: "Giải Tám", DisplayName: "GIẢI TÁM", Results: 1, Digits: 2},
		{ID: "first", Name: "Giải Nhất", DisplayName: "GIẢI NHẤT", Results: 1, Digits: 5},
		{ID: "special", Name: "Giải Đặc Biệt", DisplayName: "GIẢI ĐẶC BIỆT", Results: 1, Digits: 6, Jackpot: true},
	}
}

// Calls returns the names of the operations performed so far
func (m *MockClient) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// BaseURL returns the configured base URL
func (m *MockClient) BaseURL() string {
	return m.baseURL
}

// SetPassword records the operator password
func (m *MockClient) SetPassword(password string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.password = password
	m.authenticated = false
}

// Login records a successful login unless a login error was configured
func (m *MockClient) Login(ctx context.Context, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "login")
	if m.loginErr != nil {
		return m.loginErr
	}
	m.password = password
	m.authenticated = true
	return nil
}

// Catalog returns the configured prizes
func (m *MockClient) Catalog(ctx context.Context) ([]Prize, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "catalog")
	return m.prizes, nil
}

// State returns the current mock snapshot
func (m *MockClient) State(ctx context.Context) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "state")
	snap := m.snapshot
	return &snap, nil
}

// Start moves an idle or completed board to running
func (m *MockClient) Start(ctx context.Context, withAnimation *bool) (*Snapshot, error) {
	animate := true
	if withAnimation != nil {
		animate = *withAnimation
	}
	return m.transition("start", []string{"idle", "completed"}, func() {
		m.snapshot = Snapshot{
			State:         "running",
			SessionID:     fmt.Sprintf("mock-%d", len(m.sessions)+1),
			Remaining:     m.prizes,
			WithAnimation: animate,
		}
	})
}

// QuickStart draws every prize at once and stores the session
func (m *MockClient) QuickStart(ctx context.Context) (*Snapshot, error) {
	return m.transition("quick-start", []string{"idle", "completed"}, func() {
		now := time.Now()
		session := Session{ID: fmt.Sprintf("mock-%d", len(m.sessions)+1), StartedAt: now, EndedAt: &now, Completed: true}
		snap := Snapshot{State: "completed", SessionID: session.ID, CurrentIndex: len(m.prizes), Progress: 1}
		for _, p := range m.prizes {
			number := strings.Repeat("7", p.Digits)
			snap.Results = append(snap.Results, DrawResult{Prize: p, Numbers: []string{number}, CreatedAt: now})
			session.Results = append(session.Results, SessionResult{PrizeID: p.ID, PrizeName: p.Name, DisplayName: p.DisplayName, Numbers: []string{number}})
			session.NumberCount++
		}
		m.snapshot = snap
		m.sessions = append([]Session{session}, m.sessions...)
	})
}

// Pause moves a running board to paused
func (m *MockClient) Pause(ctx context.Context) (*Snapshot, error) {
	return m.transition("pause", []string{"running"}, func() { m.snapshot.State = "paused" })
}

// Resume moves a paused board to running
func (m *MockClient) Resume(ctx context.Context) (*Snapshot, error) {
	return m.transition("resume", []string{"paused"}, func() { m.snapshot.State = "running" })
}

// Reset returns the board to idle from any state
func (m *MockClient) Reset(ctx context.Context) (*Snapshot, error) {
	return m.transition("reset", nil, func() {
		m.snapshot = Snapshot{State: "idle", Remaining: m.prizes}
	})
}

func (m *MockClient) transition(name string, from []string, apply func()) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
	if m.controlErr != nil {
		return nil, m.controlErr
	}
	if from != nil && !contains(from, m.snapshot.State) {
		return nil, &APIError{Status: 409, Code: "CONFLICT", Message: fmt.Sprintf("cannot %s while %s", name, m.snapshot.State)}
	}
	apply()
	snap := m.snapshot
	return &snap, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Sessions returns stored sessions whose id contains query
func (m *MockClient) Sessions(ctx context.Context, query string) ([]Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "sessions")
	if m.sessionsErr != nil {
		return nil, m.sessionsErr
	}
	var out []Session
	for _, s := range m.sessions {
		if query == "" || strings.Contains(strings.ToLower(s.ID), strings.ToLower(query)) {
			out = append(out, s)
		}
	}
	return out, nil
}

// ShareText returns the configured share text for id
func (m *MockClient) ShareText(ctx context.Context, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "share")
	text, ok := m.shareTexts[id]
	if !ok {
		return "", &APIError{Status: 404, Code: "NOT_FOUND", Message: "session not found"}
	}
	return text, nil
}

// ClearHistory drops all stored sessions; it requires a prior login
func (m *MockClient) ClearHistory(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "clear")
	if !m.ensureAuthLocked() {
		return &APIError{Status: 401, Code: "UNAUTHORIZED", Message: "Unauthorized - please log in"}
	}
	m.sessions = nil
	return nil
}

// ResetSettings restores default preferences and idles the board; it requires a prior login
func (m *MockClient) ResetSettings(ctx context.Context) (*Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "reset-settings")
	if !m.ensureAuthLocked() {
		return nil, &APIError{Status: 401, Code: "UNAUTHORIZED", Message: "Unauthorized - please log in"}
	}
	m.settings = Settings{SoundEnabled: true, DarkModeEnabled: true, VibrationEnabled: true}
	m.snapshot = Snapshot{State: "idle", Remaining: m.prizes}
	settings := m.settings
	return &settings, nil
}

// ensureAuthLocked logs in with the configured password the way HTTPClient does
func (m *MockClient) ensureAuthLocked() bool {
	if !m.authenticated && m.password != "" && m.loginErr == nil {
		m.calls = append(m.calls, "login")
		m.authenticated = true
	}
	return m.authenticated
}

// Ensure MockClient implements Client
var _ Client = (*MockClient)(nil)
