package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/luckydraw/internal/auth"
	"github.com/abrezinsky/luckydraw/internal/handlers"
	"github.com/abrezinsky/luckydraw/internal/logger"
	"github.com/abrezinsky/luckydraw/internal/metrics"
	"github.com/abrezinsky/luckydraw/internal/repository"
	"github.com/abrezinsky/luckydraw/internal/services"
	"github.com/abrezinsky/luckydraw/internal/websocket"
)

// Config holds the settings needed to assemble the application
type Config struct {
	DBPath string

	// DrawAnimation is the default for sessions started without an explicit choice
	DrawAnimation bool

	// Seed makes draws reproducible when non-zero
	Seed uint64

	Pacing services.Pacing

	// StateInterval is how often the draw state is rebroadcast while a session is active
	StateInterval time.Duration
}

// DefaultConfig returns the configuration used by the command line when no flags are given
func DefaultConfig() Config {
	return Config{
		DBPath:        "luckydraw.db",
		DrawAnimation: true,
		Pacing:        services.DefaultPacing(),
		StateInterval: 2 * time.Second,
	}
}

// App holds all application dependencies
type App struct {
	log      logger.Logger
	handlers *handlers.Handlers
	repo     *repository.Repository
	runner   *services.SessionRunner
	history  *services.HistoryService
	settings *services.SettingsService
	hub      *websocket.Hub
	cancel   context.CancelFunc

	mu        sync.Mutex
	server    *http.Server
	boardURL  string
	closed    bool
	closeOnce sync.Once
}

// New creates and initializes a new application instance
func New(log logger.Logger, cfg Config, templatesFS, staticFS fs.FS, adminAuth *auth.Auth) (*App, error) {
	repo, err := repository.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	catalog := services.DefaultCatalog()
	historyService := services.NewHistoryService(log.With("component", "history"), repo, catalog)
	settingsService := services.NewSettingsService(log.With("component", "settings"), repo)

	var gen *services.Generator
	if cfg.Seed != 0 {
		gen = services.NewGenerator(cfg.Seed)
	} else {
		gen = services.NewRandomGenerator()
	}
	runner := services.NewSessionRunner(log.With("component", "runner"), catalog, gen, historyService, cfg.Pacing)

	// The hub must be running before the runner emits its first event
	hub := websocket.New(log.With("component", "ws"), runner, settingsService)
	hub.Start()
	settingsService.SetBroadcaster(hub)
	historyService.SetBroadcaster(hub)
	runner.AddObserver(hub)

	m := metrics.New()
	runner.AddObserver(m)
	m.RegisterGauge("websocket", "clients", "Connected board and admin sockets.", func() float64 {
		return float64(hub.ClientCount())
	})

	staticServer := handlers.NewStaticServer(staticFS)

	h, err := handlers.New(
		runner,
		historyService,
		settingsService,
		templatesFS,
		staticServer,
		adminAuth,
		hub,
		log,
	)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}
	h.DefaultAnimation = cfg.DrawAnimation
	h.Metrics = m

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		log:      log,
		handlers: h,
		repo:     repo,
		runner:   runner,
		history:  historyService,
		settings: settingsService,
		hub:      hub,
		cancel:   cancel,
	}

	interval := cfg.StateInterval
	if interval <= 0 {
		interval = DefaultConfig().StateInterval
	}
	go hub.RunStateTicker(ctx, interval)
	go a.watchSettingsReset(ctx)

	a.reportHistory(ctx)
	return a, nil
}

// watchSettingsReset discards the in-progress draw whenever preferences are reset to defaults
func (a *App) watchSettingsReset(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-a.settings.ResetSignal():
			a.log.Info("Settings reset, discarding current draw session")
			a.runner.Reset()
		}
	}
}

// reportHistory logs what the previous runs left in the store
func (a *App) reportHistory(ctx context.Context) {
	count, err := a.history.Count(ctx)
	if err != nil {
		a.log.Warn("Could not count stored sessions", "error", err)
		return
	}
	a.log.Info("Session history loaded", "sessions", count)

	unfinished, err := a.history.Unfinished(ctx)
	if err != nil {
		a.log.Warn("Could not check for unfinished sessions", "error", err)
		return
	}
	if unfinished != nil {
		a.log.Warn("Found a session that never finished",
			"session_id", unfinished.ID,
			"started_at", unfinished.StartedAt.Format(time.DateTime),
			"prizes_drawn", len(unfinished.Results))
	}
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// Runner returns the draw session runner, for keyboard control
func (a *App) Runner() services.RunnerServicer {
	return a.runner
}

// BoardURL returns the LAN address of the draw board once Run has been called
func (a *App) BoardURL() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.boardURL
}

// Close performs graceful shutdown of app resources. It is safe to call more than once.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		a.cancel()

		a.mu.Lock()
		a.closed = true
		server := a.server
		a.mu.Unlock()
		if server != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := server.Shutdown(ctx); err != nil {
				a.log.Warn("HTTP server shutdown", "error", err)
			}
			cancel()
		}

		a.runner.Close()
		if err := a.repo.Close(); err != nil {
			a.log.Warn("Failed to close database", "error", err)
		}
	})
}

// Run starts the HTTP server and blocks until it stops. A server stopped by Close returns nil.
func (a *App) Run(addr string) error {
	ip := getPreferredIP(realNetworkProvider{})
	boardURL := fmt.Sprintf("http://%s%s", ip, addr)

	server := &http.Server{Addr: addr, Handler: a.Router()}
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.server = server
	a.boardURL = boardURL
	a.mu.Unlock()

	a.log.Info("Server starting", "url", boardURL)
	a.log.Info("History URL", "url", boardURL+"/history")
	a.log.Info("Admin URL", "url", boardURL+"/admin")
	a.log.Debug("Metrics URL", "url", boardURL+"/metrics")

	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// networkInterface wraps net.Interface for testing
type networkInterface interface {
	Flags() net.Flags
	Addrs() ([]net.Addr, error)
}

// realInterface wraps a real net.Interface
type realInterface struct {
	iface net.Interface
}

func (r realInterface) Flags() net.Flags {
	return r.iface.Flags
}

func (r realInterface) Addrs() ([]net.Addr, error) {
	return r.iface.Addrs()
}

// networkProvider is an interface for getting network interfaces (for testing)
type networkProvider interface {
	Interfaces() ([]networkInterface, error)
}

// realNetworkProvider implements networkProvider using actual net package
type realNetworkProvider struct{}

func (realNetworkProvider) Interfaces() ([]networkInterface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	result := make([]networkInterface, len(ifaces))
	for i, iface := range ifaces {
		result[i] = realInterface{iface: iface}
	}
	return result, nil
}

// getPreferredIP returns the best IP address for LAN access.
// Prefers private network addresses (192.168.x.x, 10.x.x.x, 172.16-31.x.x).
// Falls back to localhost if no suitable address is found.
func getPreferredIP(provider networkProvider) string {
	ifaces, err := provider.Interfaces()
	if err != nil {
		return "localhost"
	}

	var candidates []net.IP

	for _, iface := range ifaces {
		// Skip down, loopback, and point-to-point interfaces
		flags := iface.Flags()
		if flags&net.FlagUp == 0 || flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}

			// Only consider IPv4 addresses
			if ip == nil || ip.To4() == nil {
				continue
			}

			// Skip loopback
			if ip.IsLoopback() {
				continue
			}

			candidates = append(candidates, ip)
		}
	}

	// Prefer private network addresses
	for _, ip := range candidates {
		ipStr := ip.String()
		if strings.HasPrefix(ipStr, "192.168.") ||
			strings.HasPrefix(ipStr, "10.") ||
			isPrivate172(ip) {
			return ipStr
		}
	}

	// Fall back to any non-loopback if no private address found
	if len(candidates) > 0 {
		return candidates[0].String()
	}

	return "localhost"
}

// isPrivate172 checks if IP is in 172.16.0.0/12 range
func isPrivate172(ip net.IP) bool {
	if ip4 := ip.To4(); ip4 != nil {
		return ip4[0] == 172 && ip4[1] >= 16 && ip4[1] <= 31
	}
	return false
}
