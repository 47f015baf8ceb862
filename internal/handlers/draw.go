package handlers

import (
	"net/http"
)

// handleGetCatalog returns the prize tiers in draw order
func (h *Handlers) handleGetCatalog(w http.ResponseWriter, r *http.Request) {
	respondOK(w, newCatalogResponse(h.Runner.Catalog()))
}

// handleGetDraw returns the current runner snapshot
func (h *Handlers) handleGetDraw(w http.ResponseWriter, r *http.Request) {
	respondOK(w, h.Runner.Snapshot())
}

// handleStartDraw starts a new session. An empty body uses the server's animation default.
func (h *Handlers) handleStartDraw(w http.ResponseWriter, r *http.Request) {
	var req StartDrawRequest
	if _, err := decodeOptionalJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	withAnimation := h.DefaultAnimation
	if req.WithAnimation != nil {
		withAnimation = *req.WithAnimation
	}

	h.control(w, func() error { return h.Runner.Start(withAnimation) })
}

// handleQuickStart starts a new session without animation
func (h *Handlers) handleQuickStart(w http.ResponseWriter, r *http.Request) {
	h.control(w, h.Runner.QuickStart)
}

func (h *Handlers) handlePauseDraw(w http.ResponseWriter, r *http.Request) {
	h.control(w, h.Runner.Pause)
}

func (h *Handlers) handleResumeDraw(w http.ResponseWriter, r *http.Request) {
	h.control(w, h.Runner.Resume)
}

// handleResetDraw discards the in-progress session
func (h *Handlers) handleResetDraw(w http.ResponseWriter, r *http.Request) {
	h.control(w, func() error {
		h.Runner.Reset()
		return nil
	})
}

// control runs a runner transition and answers with the resulting snapshot
func (h *Handlers) control(w http.ResponseWriter, action func() error) {
	if err := action(); err != nil {
		respondError(w, err)
		return
	}
	h.broadcastState()
	respondOK(w, h.Runner.Snapshot())
}
