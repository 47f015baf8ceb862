package handlers

import (
	"time"

	"github.com/abrezinsky/luckydraw/internal/models"
	"github.com/abrezinsky/luckydraw/internal/services"
)

// PrizeResponse describes one prize tier
type PrizeResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	DisplayName   string `json:"display_name"`
	Results       int    `json:"results"`
	Digits        int    `json:"digits"`
	RevealDelayMs int64  `json:"reveal_delay_ms"`
	Jackpot       bool   `json:"jackpot"`
}

// CatalogResponse lists the prize tiers in draw order
type CatalogResponse struct {
	Prizes []PrizeResponse `json:"prizes"`
}

// ResultResponse holds the numbers drawn for one prize
type ResultResponse struct {
	PrizeID     string    `json:"prize_id"`
	PrizeName   string    `json:"prize_name"`
	DisplayName string    `json:"display_name"`
	Numbers     []string  `json:"numbers"`
	CreatedAt   time.Time `json:"created_at"`
}

// SessionResponse is a stored session with its results in catalog order
type SessionResponse struct {
	ID              string           `json:"id"`
	Results         []ResultResponse `json:"results"`
	StartedAt       time.Time        `json:"started_at"`
	EndedAt         *time.Time       `json:"ended_at"`
	Completed       bool             `json:"completed"`
	DurationSeconds int64            `json:"duration_seconds"`
	NumberCount     int              `json:"number_count"`
}

// SessionListResponse wraps a list of sessions
type SessionListResponse struct {
	Sessions []SessionResponse `json:"sessions"`
	Count    int               `json:"count"`
}

func newPrizeResponse(catalog *services.Catalog, p models.Prize) PrizeResponse {
	return PrizeResponse{
		ID:            p.ID,
		Name:          p.Name,
		DisplayName:   p.DisplayName,
		Results:       p.Results,
		Digits:        p.Digits,
		RevealDelayMs: p.RevealDelay.Milliseconds(),
		Jackpot:       catalog.IsJackpot(p),
	}
}

func newCatalogResponse(catalog *services.Catalog) CatalogResponse {
	prizes := catalog.Prizes()
	resp := CatalogResponse{Prizes: make([]PrizeResponse, 0, len(prizes))}
	for _, p := range prizes {
		resp.Prizes = append(resp.Prizes, newPrizeResponse(catalog, p))
	}
	return resp
}

func newSessionResponse(catalog *services.Catalog, s models.LotterySession) SessionResponse {
	ordered := catalog.Ordered(s.Results)
	results := make([]ResultResponse, 0, len(ordered))
	for _, r := range ordered {
		results = append(results, ResultResponse{
			PrizeID:     r.Prize.ID,
			PrizeName:   r.Prize.Name,
			DisplayName: r.Prize.DisplayName,
			Numbers:     r.Numbers,
			CreatedAt:   r.CreatedAt,
		})
	}
	return SessionResponse{
		ID:              s.ID,
		Results:         results,
		StartedAt:       s.StartedAt,
		EndedAt:         s.EndedAt,
		Completed:       s.Completed,
		DurationSeconds: int64(s.Duration().Seconds()),
		NumberCount:     s.NumberCount(),
	}
}

func newSessionListResponse(catalog *services.Catalog, sessions []models.LotterySession) SessionListResponse {
	resp := SessionListResponse{Sessions: make([]SessionResponse, 0, len(sessions)), Count: len(sessions)}
	for _, s := range sessions {
		resp.Sessions = append(resp.Sessions, newSessionResponse(catalog, s))
	}
	return resp
}
