package repository

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"github.com/abrezinsky/luckydraw/internal/models"
)

// Setting keys persisted in the settings table
const (
	SettingSoundEnabled     = "sound_enabled"
	SettingDarkModeEnabled  = "dark_mode_enabled"
	SettingVibrationEnabled = "vibration_enabled"
)

// Repository provides data access methods
type Repository struct {
	db *sql.DB
}

// New creates a new Repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite works best with single connection
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db}

	// Run migrations
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

// DB returns the underlying database connection
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// migrate runs database migrations
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS lottery_sessions (
			id TEXT PRIMARY KEY,
			results_json TEXT NOT NULL,
			start_time INTEGER NOT NULL,
			end_time INTEGER,
			is_completed BOOLEAN NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_start_time ON lottery_sessions(start_time)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return err
		}
	}

	defaults := models.DefaultSettings()
	defaultSettings := map[string]string{
		SettingSoundEnabled:     formatBool(defaults.SoundEnabled),
		SettingDarkModeEnabled:  formatBool(defaults.DarkModeEnabled),
		SettingVibrationEnabled: formatBool(defaults.VibrationEnabled),
	}

	for key, value := range defaultSettings {
		_, err := r.db.Exec(`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`, key, value)
		if err != nil {
			return err
		}
	}

	return nil
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// ==================== Session Methods ====================

const sessionColumns = `id, results_json, start_time, end_time, is_completed`

// SaveSession inserts a session or replaces the row with the same ID
func (r *Repository) SaveSession(ctx context.Context, rec models.SessionRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO lottery_sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			results_json = excluded.results_json,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			is_completed = excluded.is_completed
	`, rec.ID, rec.ResultsJSON, rec.StartTime, nullInt64(rec.EndTime), rec.IsCompleted)
	return err
}

// GetSession retrieves a session by ID
func (r *Repository) GetSession(ctx context.Context, id string) (*models.SessionRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM lottery_sessions WHERE id = ?`, id)
	rec, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ListSessions returns all sessions, newest first
func (r *Repository) ListSessions(ctx context.Context) ([]models.SessionRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+sessionColumns+` FROM lottery_sessions
		ORDER BY start_time DESC, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSessions(rows)
}

// ListCompletedSessions returns up to limit finished sessions, newest first
func (r *Repository) ListCompletedSessions(ctx context.Context, limit int) ([]models.SessionRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+sessionColumns+` FROM lottery_sessions
		WHERE end_time IS NOT NULL
		ORDER BY start_time DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSessions(rows)
}

// GetActiveSession returns the newest session that has no end time.
// The runner only persists finished sessions, so this normally returns ErrNotFound.
func (r *Repository) GetActiveSession(ctx context.Context) (*models.SessionRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+` FROM lottery_sessions
		WHERE end_time IS NULL
		ORDER BY start_time DESC
		LIMIT 1
	`)
	rec, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// DeleteSession removes a session. Deleting an unknown ID returns ErrNotFound.
func (r *Repository) DeleteSession(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM lottery_sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearSessions removes every stored session
func (r *Repository) ClearSessions(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM lottery_sessions`)
	return err
}

// CountSessions returns the number of stored sessions
func (r *Repository) CountSessions(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM lottery_sessions`).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*models.SessionRecord, error) {
	var rec models.SessionRecord
	var endTime sql.NullInt64
	if err := row.Scan(&rec.ID, &rec.ResultsJSON, &rec.StartTime, &endTime, &rec.IsCompleted); err != nil {
		return nil, err
	}
	if endTime.Valid {
		end := endTime.Int64
		rec.EndTime = &end
	}
	return &rec, nil
}

func scanSessions(rows *sql.Rows) ([]models.SessionRecord, error) {
	var records []models.SessionRecord
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

// ==================== Settings Methods ====================

// GetSetting retrieves a setting value
func (r *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return value, err
}

// SetSetting updates a setting value
func (r *Repository) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, value)
	return err
}

// SetSettings writes all values in one transaction; on error none of them are applied
func (r *Repository) SetSettings(ctx context.Context, values map[string]string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for key, value := range values {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, value); err != nil {
			return err
		}
	}
	return tx.Commit()
}
