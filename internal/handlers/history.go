package handlers

import (
	"net/http"
	"strconv"
)

// DefaultQRSize is the edge length in pixels of share images when none is requested
const DefaultQRSize = 256

// handleListSessions lists stored sessions, newest first.
// ?q= filters by session id or drawn number; ?limit= returns only the most recent completed sessions.
func (h *Handlers) handleListSessions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.URL.Query().Has("limit") {
		limit, err := parseIntQuery(r, "limit", 0)
		if err != nil {
			respondError(w, err)
			return
		}
		sessions, err := h.History.RecentCompleted(ctx, limit)
		if err != nil {
			respondError(w, err)
			return
		}
		respondOK(w, newSessionListResponse(h.Runner.Catalog(), sessions))
		return
	}

	sessions, err := h.History.SearchSessions(ctx, r.URL.Query().Get("q"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, newSessionListResponse(h.Runner.Catalog(), sessions))
}

func (h *Handlers) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, err := requireParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	session, err := h.History.GetSession(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, newSessionResponse(h.Runner.Catalog(), *session))
}

func (h *Handlers) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := requireParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.History.DeleteSession(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}

// handleShareText returns the plain-text summary of a session
func (h *Handlers) handleShareText(w http.ResponseWriter, r *http.Request) {
	id, err := requireParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	text, err := h.History.ShareText(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(text))
}

// handleShareQR returns the share text of a session encoded as a PNG QR code
func (h *Handlers) handleShareQR(w http.ResponseWriter, r *http.Request) {
	id, err := requireParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	size, err := parseIntQuery(r, "size", DefaultQRSize)
	if err != nil {
		respondError(w, err)
		return
	}

	png, err := h.History.ShareImage(r.Context(), id, size)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("Content-Disposition", `inline; filename="luckydraw-`+id+`.png"`)
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// handleClearSessions deletes the whole history (admin only)
func (h *Handlers) handleClearSessions(w http.ResponseWriter, r *http.Request) {
	if err := h.History.ClearSessions(r.Context()); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "History cleared")
}
