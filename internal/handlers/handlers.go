package handlers

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/abrezinsky/luckydraw/internal/auth"
	"github.com/abrezinsky/luckydraw/internal/metrics"
	"github.com/abrezinsky/luckydraw/internal/services"
	"github.com/abrezinsky/luckydraw/internal/websocket"
)

// NewStaticServer creates a static file server from an fs.FS
func NewStaticServer(staticFS fs.FS) http.Handler {
	return http.FileServer(http.FS(staticFS))
}

// AdminPageData holds the data passed to admin templates
type AdminPageData struct {
	Title     string
	PageTitle string
	ActiveNav string

	// OperatorSessions is the number of signed-in operators
	OperatorSessions int
}

// Templates holds all parsed HTML templates
type Templates struct {
	Index          *template.Template
	History        *template.Template
	Session        *template.Template
	AdminLogin     *template.Template
	AdminDashboard *template.Template
}

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Runner   services.RunnerServicer
	History  services.HistoryServicer
	Settings services.SettingsServicer
	Auth     *auth.Auth
	Hub      *websocket.Hub
	Log      HTTPLogger

	// LoginLimiter throttles POST /admin/login per client address when set
	LoginLimiter *auth.LoginLimiter

	// Metrics enables /metrics and request instrumentation when set
	Metrics *metrics.Metrics

	// DefaultAnimation is used by /api/draw/start when the request does not choose
	DefaultAnimation bool

	templates    *Templates
	staticServer http.Handler
}

// HTTPLogger is an interface for loggers that support HTTP logging control
type HTTPLogger interface {
	IsHTTPLoggingEnabled() bool
}

// New creates a new Handlers instance with all dependencies
func New(
	runner services.RunnerServicer,
	history services.HistoryServicer,
	settings services.SettingsServicer,
	templatesFS fs.FS,
	staticServer http.Handler,
	adminAuth *auth.Auth,
	hub *websocket.Hub,
	log HTTPLogger,
) (*Handlers, error) {
	templates, err := loadTemplates(templatesFS)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	return &Handlers{
		Runner:           runner,
		History:          history,
		Settings:         settings,
		Auth:             adminAuth,
		Hub:              hub,
		Log:              log,
		LoginLimiter:     auth.NewLoginLimiter(auth.LoginRefill, auth.LoginBurst),
		DefaultAnimation: true,
		templates:        templates,
		staticServer:     staticServer,
	}, nil
}

// NoopHTTPLogger is a test logger that always returns false for HTTP logging
type NoopHTTPLogger struct{}

func (NoopHTTPLogger) IsHTTPLoggingEnabled() bool { return false }

// NewForTesting creates a Handlers instance without templates or hub (for testing API endpoints)
func NewForTesting(
	runner services.RunnerServicer,
	history services.HistoryServicer,
	settings services.SettingsServicer,
) *Handlers {
	return &Handlers{
		Runner:           runner,
		History:          history,
		Settings:         settings,
		Auth:             auth.New("test-password"),
		Log:              NoopHTTPLogger{},
		DefaultAnimation: true,
	}
}

// loadTemplates parses all templates once at startup
func loadTemplates(templatesFS fs.FS) (*Templates, error) {
	t := &Templates{}
	var err error

	if t.Index, err = template.ParseFS(templatesFS, "index.html"); err != nil {
		return nil, fmt.Errorf("index template: %w", err)
	}
	if t.History, err = template.ParseFS(templatesFS, "history.html"); err != nil {
		return nil, fmt.Errorf("history template: %w", err)
	}
	if t.Session, err = template.ParseFS(templatesFS, "session.html"); err != nil {
		return nil, fmt.Errorf("session template: %w", err)
	}
	if t.AdminLogin, err = template.ParseFS(templatesFS, "admin/login.html"); err != nil {
		return nil, fmt.Errorf("admin login template: %w", err)
	}
	if t.AdminDashboard, err = template.ParseFS(templatesFS, "admin/layout.html", "admin/dashboard.html"); err != nil {
		return nil, fmt.Errorf("admin dashboard template: %w", err)
	}

	return t, nil
}

// broadcastState pushes the runner snapshot to connected boards after a control action
func (h *Handlers) broadcastState() {
	if h.Hub == nil {
		return
	}
	h.Hub.BroadcastState(h.Runner.Snapshot())
}
