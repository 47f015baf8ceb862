package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RequestTimeout bounds every route except the websocket
const RequestTimeout = 60 * time.Second

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger)
	if h.Metrics != nil {
		r.Use(h.Metrics.Middleware)
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)

	// The websocket stays outside the request timeout
	if h.Hub != nil {
		r.Get("/ws", h.Hub.ServeWs)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(RequestTimeout))
		h.routes(r)
	})

	return r
}

// routes registers every request/response endpoint
func (h *Handlers) routes(r chi.Router) {
	if h.staticServer != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", h.staticServer))
	}

	// Pages
	r.Get("/", h.handleIndex)
	r.Get("/history", h.handleHistoryPage)
	r.Get("/history/{id}", h.handleSessionPage)

	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics.Handler())
	}

	// Draw control
	r.Get("/api/catalog", h.handleGetCatalog)
	r.Get("/api/draw", h.handleGetDraw)
	r.Post("/api/draw/start", h.handleStartDraw)
	r.Post("/api/draw/quick-start", h.handleQuickStart)
	r.Post("/api/draw/pause", h.handlePauseDraw)
	r.Post("/api/draw/resume", h.handleResumeDraw)
	r.Post("/api/draw/reset", h.handleResetDraw)

	// History
	r.Get("/api/sessions", h.handleListSessions)
	r.Get("/api/sessions/{id}", h.handleGetSession)
	r.Delete("/api/sessions/{id}", h.handleDeleteSession)
	r.Get("/api/sessions/{id}/share", h.handleShareText)
	r.Get("/api/sessions/{id}/qr", h.handleShareQR)

	// Preferences
	r.Get("/api/settings", h.handleGetSettings)
	r.Put("/api/settings", h.handleUpdateSettings)

	// Auth routes (public)
	r.Get("/admin/login", h.handleLoginPage)
	r.Post("/admin/login", h.handleLogin)
	r.Post("/admin/logout", h.handleLogout)

	// Admin pages (protected)
	r.Group(func(r chi.Router) {
		r.Use(h.Auth.RequireAuth)
		r.Get("/admin", h.handleAdminDashboard)
	})

	// Admin API (protected)
	r.Group(func(r chi.Router) {
		r.Use(h.Auth.RequireAuthAPI)
		r.Delete("/api/admin/sessions", h.handleClearSessions)
		r.Post("/api/admin/settings/reset", h.handleResetSettings)
	})
}
