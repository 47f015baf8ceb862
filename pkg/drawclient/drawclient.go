// Package drawclient provides a client for remote control of a LuckyDraw board over its HTTP API.
package drawclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/abrezinsky/luckydraw/internal/logger"
)

// Prize describes one prize tier of the board's catalog
type Prize struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	DisplayName   string `json:"display_name"`
	Results       int    `json:"results"`
	Digits        int    `json:"digits"`
	RevealDelayMs int64  `json:"reveal_delay_ms,omitempty"`
	Jackpot       bool   `json:"jackpot,omitempty"`
}

// CatalogResponse is the response from GET /api/catalog
type CatalogResponse struct {
	Prizes []Prize `json:"prizes"`
}

// DrawResult holds the numbers drawn for one prize in a live snapshot
type DrawResult struct {
	Prize     Prize     `json:"prize"`
	Numbers   []string  `json:"numbers"`
	CreatedAt time.Time `json:"created_at"`
}

// Snapshot is the board's current draw state
type Snapshot struct {
	State         string       `json:"state"`
	SessionID     string       `json:"session_id,omitempty"`
	CurrentPrize  *Prize       `json:"current_prize,omitempty"`
	CurrentIndex  int          `json:"current_index"`
	Progress      float64      `json:"progress"`
	Results       []DrawResult `json:"results"`
	Remaining     []Prize      `json:"remaining"`
	LastError     string       `json:"last_error,omitempty"`
	WithAnimation bool         `json:"with_animation"`
}

// SessionResult holds the numbers drawn for one prize of a stored session
type SessionResult struct {
	PrizeID     string   `json:"prize_id"`
	PrizeName   string   `json:"prize_name"`
	DisplayName string   `json:"display_name"`
	Numbers     []string `json:"numbers"`
}

// Session is a stored draw session
type Session struct {
	ID              string          `json:"id"`
	Results         []SessionResult `json:"results"`
	StartedAt       time.Time       `json:"started_at"`
	EndedAt         *time.Time      `json:"ended_at"`
	Completed       bool            `json:"completed"`
	DurationSeconds int64           `json:"duration_seconds"`
	NumberCount     int             `json:"number_count"`
}

// SessionListResponse is the response from GET /api/sessions
type SessionListResponse struct {
	Sessions []Session `json:"sessions"`
	Count    int       `json:"count"`
}

// Settings holds the board preferences
type Settings struct {
	SoundEnabled     bool `json:"sound_enabled"`
	DarkModeEnabled  bool `json:"dark_mode_enabled"`
	VibrationEnabled bool `json:"vibration_enabled"`
}

// APIError is an error reported by the board
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// IsConflict reports whether err is a rejected draw transition
func IsConflict(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict
}

// ErrLoginFailed is returned when the admin password is rejected
var ErrLoginFailed = errors.New("login failed: wrong password")

// Client defines the interface for board operations
type Client interface {
	// Login signs in as operator, required for ClearHistory and ResetSettings
	Login(ctx context.Context, password string) error
	// SetPassword configures the operator password for automatic login
	SetPassword(password string)
	// Catalog retrieves the prize tiers in draw order
	Catalog(ctx context.Context) ([]Prize, error)
	// State retrieves the current draw snapshot
	State(ctx context.Context) (*Snapshot, error)
	// Start begins a session; nil leaves the animation choice to the board
	Start(ctx context.Context, withAnimation *bool) (*Snapshot, error)
	// QuickStart begins a session without animation
	QuickStart(ctx context.Context) (*Snapshot, error)
	// Pause halts a running session
	Pause(ctx context.Context) (*Snapshot, error)
	// Resume continues a paused session
	Resume(ctx context.Context) (*Snapshot, error)
	// Reset discards the current session
	Reset(ctx context.Context) (*Snapshot, error)
	// Sessions lists stored sessions matching query, newest first
	Sessions(ctx context.Context, query string) ([]Session, error)
	// ShareText retrieves the plain-text summary of a stored session
	ShareText(ctx context.Context, id string) (string, error)
	// ClearHistory deletes every stored session
	ClearHistory(ctx context.Context) error
	// ResetSettings restores default preferences and discards the current session
	ResetSettings(ctx context.Context) (*Settings, error)
	// BaseURL returns the configured board URL
	BaseURL() string
}

// HTTPClient is a real HTTP client for the board API
type HTTPClient struct {
	baseURL       string
	httpClient    *http.Client
	log           logger.Logger
	password      string
	authenticated bool
}

// NewHTTPClient creates a new board client with cookie support
func NewHTTPClient(baseURL string, log logger.Logger) *HTTPClient {
	jar, _ := cookiejar.New(nil)
	return NewHTTPClientWithHTTPClient(baseURL, &http.Client{
		Timeout: 30 * time.Second,
		Jar:     jar,
	}, log)
}

// NewHTTPClientWithHTTPClient creates a new board client with a custom http.Client.
// The client must carry a cookie jar for operator actions to work.
func NewHTTPClientWithHTTPClient(baseURL string, httpClient *http.Client, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		log:        log,
	}
}

// BaseURL returns the configured board URL
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// SetPassword configures the operator password for automatic login
func (c *HTTPClient) SetPassword(password string) {
	c.password = password
	c.authenticated = false
}

// Login signs in as operator and keeps the session cookie
func (c *HTTPClient) Login(ctx context.Context, password string) error {
	form := url.Values{}
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/admin/login", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	// The board answers a good password with a redirect to the dashboard.
	// Stop there: the cookie is already in the jar.
	client := *c.httpClient
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to board: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	c.log.Debug("Board login response", "status", resp.StatusCode)

	switch resp.StatusCode {
	case http.StatusFound, http.StatusSeeOther:
	case http.StatusUnauthorized:
		return ErrLoginFailed
	default:
		return fmt.Errorf("board returned status %d on login", resp.StatusCode)
	}

	c.password = password
	c.authenticated = true
	c.log.Info("Board login successful", "url", c.baseURL)
	return nil
}

// doRequest sends a JSON request and decodes the response into out.
// Operator endpoints log in first and retry once if the session expired.
func (c *HTTPClient) doRequest(ctx context.Context, method, path string, body, out interface{}, operator bool) error {
	if operator && !c.authenticated && c.password != "" {
		c.log.Debug("Not authenticated, logging in before request")
		if err := c.Login(ctx, c.password); err != nil {
			return fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	status, data, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized && operator && c.password != "" && c.authenticated {
		c.log.Debug("Session expired, re-authenticating")
		c.authenticated = false
		if err := c.Login(ctx, c.password); err != nil {
			return fmt.Errorf("failed to re-authenticate: %w", err)
		}
		if status, data, err = c.send(ctx, method, path, body); err != nil {
			return err
		}
	}

	if status < 200 || status > 299 {
		apiErr := &APIError{Status: status}
		if err := json.Unmarshal(data, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(data))
			if apiErr.Message == "" {
				apiErr.Message = http.StatusText(status)
			}
		}
		return apiErr
	}

	if out == nil || status == http.StatusNoContent {
		return nil
	}
	if s, ok := out.(*string); ok {
		*s = string(data)
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (c *HTTPClient) send(ctx context.Context, method, path string, body interface{}) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	reqURL := c.baseURL + path
	c.log.Debug("Board request", "method", method, "url", reqURL)

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to connect to board: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debug("Board response", "status", resp.StatusCode, "bytes", len(data))
	return resp.StatusCode, data, nil
}

// Catalog retrieves the prize tiers in draw order
func (c *HTTPClient) Catalog(ctx context.Context) ([]Prize, error) {
	var resp CatalogResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/catalog", nil, &resp, false); err != nil {
		return nil, err
	}
	return resp.Prizes, nil
}

// State retrieves the current draw snapshot
func (c *HTTPClient) State(ctx context.Context) (*Snapshot, error) {
	return c.snapshot(ctx, http.MethodGet, "/api/draw", nil)
}

// Start begins a session; nil leaves the animation choice to the board
func (c *HTTPClient) Start(ctx context.Context, withAnimation *bool) (*Snapshot, error) {
	var body interface{}
	if withAnimation != nil {
		body = map[string]bool{"with_animation": *withAnimation}
	}
	return c.snapshot(ctx, http.MethodPost, "/api/draw/start", body)
}

// QuickStart begins a session without animation
func (c *HTTPClient) QuickStart(ctx context.Context) (*Snapshot, error) {
	return c.snapshot(ctx, http.MethodPost, "/api/draw/quick-start", nil)
}

// Pause halts a running session
func (c *HTTPClient) Pause(ctx context.Context) (*Snapshot, error) {
	return c.snapshot(ctx, http.MethodPost, "/api/draw/pause", nil)
}

// Resume continues a paused session
func (c *HTTPClient) Resume(ctx context.Context) (*Snapshot, error) {
	return c.snapshot(ctx, http.MethodPost, "/api/draw/resume", nil)
}

// Reset discards the current session
func (c *HTTPClient) Reset(ctx context.Context) (*Snapshot, error) {
	return c.snapshot(ctx, http.MethodPost, "/api/draw/reset", nil)
}

func (c *HTTPClient) snapshot(ctx context.Context, method, path string, body interface{}) (*Snapshot, error) {
	var snap Snapshot
	if err := c.doRequest(ctx, method, path, body, &snap, false); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Sessions lists stored sessions matching query, newest first
func (c *HTTPClient) Sessions(ctx context.Context, query string) ([]Session, error) {
	path := "/api/sessions"
	if query != "" {
		path += "?q=" + url.QueryEscape(query)
	}
	var resp SessionListResponse
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &resp, false); err != nil {
		return nil, err
	}
	return resp.Sessions, nil
}

// ShareText retrieves the plain-text summary of a stored session
func (c *HTTPClient) ShareText(ctx context.Context, id string) (string, error) {
	var text string
	if err := c.doRequest(ctx, http.MethodGet, "/api/sessions/"+url.PathEscape(id)+"/share", nil, &text, false); err != nil {
		return "", err
	}
	return text, nil
}

// ClearHistory deletes every stored session
func (c *HTTPClient) ClearHistory(ctx context.Context) error {
	return c.doRequest(ctx, http.MethodDelete, "/api/admin/sessions", nil, nil, true)
}

// ResetSettings restores default preferences and discards the current session
func (c *HTTPClient) ResetSettings(ctx context.Context) (*Settings, error) {
	var settings Settings
	if err := c.doRequest(ctx, http.MethodPost, "/api/admin/settings/reset", nil, &settings, true); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Ensure HTTPClient implements Client
var _ Client = (*HTTPClient)(nil)
