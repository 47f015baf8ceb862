package models

import "time"

// Prize describes one tier of the drawing ceremony
type Prize struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	DisplayName string        `json:"display_name"`
	Results     int           `json:"results"`
	Digits      int           `json:"digits"`
	RevealDelay time.Duration `json:"-"`
}

// DrawResult holds the numbers drawn for a single prize
type DrawResult struct {
	Prize     Prize     `json:"prize"`
	Numbers   []string  `json:"numbers"`
	CreatedAt time.Time `json:"created_at"`
}

// LotterySession is one pass through the prize catalog.
// Results are keyed by prize ID; display order comes from the catalog.
type LotterySession struct {
	ID        string                `json:"id"`
	Results   map[string]DrawResult `json:"results"`
	StartedAt time.Time             `json:"started_at"`
	EndedAt   *time.Time            `json:"ended_at"`
	Completed bool                  `json:"completed"`
}

// Duration returns how long the session took, or zero if it never finished
func (s LotterySession) Duration() time.Duration {
	if s.EndedAt == nil {
		return 0
	}
	return s.EndedAt.Sub(s.StartedAt)
}

// NumberCount returns the total amount of numbers drawn across all prizes
func (s LotterySession) NumberCount() int {
	total := 0
	for _, r := range s.Results {
		total += len(r.Numbers)
	}
	return total
}

// SessionRecord is the persisted form of a LotterySession.
// Timestamps are epoch milliseconds.
type SessionRecord struct {
	ID          string
	ResultsJSON string
	StartTime   int64
	EndTime     *int64
	IsCompleted bool
}

// Settings holds the user preferences
type Settings struct {
	SoundEnabled     bool `json:"sound_enabled"`
	DarkModeEnabled  bool `json:"dark_mode_enabled"`
	VibrationEnabled bool `json:"vibration_enabled"`
}

// DefaultSettings returns the preferences used on first start and after a reset
func DefaultSettings() Settings {
	return Settings{
		SoundEnabled:     true,
		DarkModeEnabled:  true,
		VibrationEnabled: true,
	}
}

// DrawEventType identifies a step of the draw sequence
type DrawEventType string

const (
	EventStarting         DrawEventType = "starting"
	EventRolling          DrawEventType = "rolling"
	EventCompleted        DrawEventType = "completed"
	EventSessionCompleted DrawEventType = "session_completed"
	EventSaveFailed       DrawEventType = "save_failed"
	EventReset            DrawEventType = "reset"
)

// DrawEvent is emitted by the session runner while a sequence progresses
type DrawEvent struct {
	Type     DrawEventType   `json:"type"`
	Prize    *Prize          `json:"prize,omitempty"`
	Progress float64         `json:"progress,omitempty"`
	Result   *DrawResult     `json:"result,omitempty"`
	Session  *LotterySession `json:"session,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
