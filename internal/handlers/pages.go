package handlers

import (
	"net/http"

	apperrors "github.com/abrezinsky/luckydraw/internal/errors"
	"github.com/abrezinsky/luckydraw/internal/models"
)

// BoardPageData holds the data for the draw board
type BoardPageData struct {
	Prizes   []PrizeResponse
	Settings models.Settings
}

// SessionPageData holds the data for a single history entry
type SessionPageData struct {
	Session   SessionResponse
	ShareText string
}

// handleIndex renders the draw board
func (h *Handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := BoardPageData{
		Prizes:   newCatalogResponse(h.Runner.Catalog()).Prizes,
		Settings: models.DefaultSettings(),
	}
	// The board still renders with defaults when preferences cannot be read
	if settings, err := h.Settings.Get(r.Context()); err == nil {
		data.Settings = settings
	}
	h.templates.Index.Execute(w, data)
}

// handleHistoryPage renders the history list. Entries are loaded by the page from /api/sessions.
func (h *Handlers) handleHistoryPage(w http.ResponseWriter, r *http.Request) {
	h.templates.History.Execute(w, nil)
}

// handleSessionPage renders a stored session with its share text
func (h *Handlers) handleSessionPage(w http.ResponseWriter, r *http.Request) {
	id, err := requireParam(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	session, err := h.History.GetSession(r.Context(), id)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.ErrNotFound {
			http.NotFound(w, r)
			return
		}
		apiErr := ToAPIError(err)
		http.Error(w, apiErr.Message, apiErr.Status)
		return
	}

	text, err := h.History.ShareText(r.Context(), id)
	if err != nil {
		apiErr := ToAPIError(err)
		http.Error(w, apiErr.Message, apiErr.Status)
		return
	}

	h.templates.Session.Execute(w, SessionPageData{
		Session:   newSessionResponse(h.Runner.Catalog(), *session),
		ShareText: text,
	})
}

// handleAdminDashboard renders the operator dashboard
func (h *Handlers) handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	data := AdminPageData{
		Title:            "Bảng điều khiển",
		PageTitle:        "Bảng điều khiển",
		ActiveNav:        "dashboard",
		OperatorSessions: h.Auth.ActiveSessions(),
	}
	h.templates.AdminDashboard.ExecuteTemplate(w, "admin", data)
}
