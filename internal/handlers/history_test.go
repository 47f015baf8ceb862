package handlers_test

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/abrezinsky/luckydraw/internal/handlers"
	"github.com/abrezinsky/luckydraw/internal/models"
	"github.com/abrezinsky/luckydraw/internal/services"
)

// seedSession stores a completed session with one number per prize
func seedSession(t *testing.T, setup *testSetup, id string, started time.Time, numbers map[string]string) models.LotterySession {
	t.Helper()

	catalog := services.DefaultCatalog()
	ended := started.Add(90 * time.Second)
	session := models.LotterySession{
		ID:        id,
		Results:   make(map[string]models.DrawResult),
		StartedAt: started,
		EndedAt:   &ended,
		Completed: true,
	}
	for prizeID, n := range numbers {
		prize, ok := catalog.Lookup(prizeID)
		if !ok {
			t.Fatalf("unknown prize %s", prizeID)
		}
		session.Results[prizeID] = models.DrawResult{Prize: prize, Numbers: []string{n}, CreatedAt: ended}
	}

	if err := setup.history.SaveSession(context.Background(), session); err != nil {
		t.Fatalf("failed to seed session: %v", err)
	}
	return session
}

var seedTime = time.Date(2024, 3, 9, 20, 15, 30, 0, time.Local)

func TestListSessions_NewestFirst(t *testing.T) {
	setup := newTestSetup(t)
	seedSession(t, setup, "older", seedTime, map[string]string{"eighth": "12"})
	seedSession(t, setup, "newer", seedTime.Add(time.Hour), map[string]string{"eighth": "34"})

	rec := setup.do(t, http.MethodGet, "/api/sessions", nil, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp handlers.SessionListResponse
	decodeBody(t, rec, &resp)
	if resp.Count != 2 {
		t.Fatalf("expected 2 sessions, got %d", resp.Count)
	}
	if resp.Sessions[0].ID != "newer" || resp.Sessions[1].ID != "older" {
		t.Errorf("expected newest first, got %s, %s", resp.Sessions[0].ID, resp.Sessions[1].ID)
	}
}

func TestListSessions_Search(t *testing.T) {
	setup := newTestSetup(t)
	seedSession(t, setup, "alpha-session", seedTime, map[string]string{"special": "123456"})
	seedSession(t, setup, "beta-session", seedTime.Add(time.Minute), map[string]string{"special": "654321"})

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"beta-session", "alpha-session"}},
		{"ALPHA", []string{"alpha-session"}},
		{"6543", []string{"beta-session"}},
		{"session", []string{"beta-session", "alpha-session"}},
		{"999", nil},
	}

	for _, tt := range tests {
		t.Run("q="+tt.query, func(t *testing.T) {
			rec := setup.do(t, http.MethodGet, "/api/sessions?q="+tt.query, nil, false)

			var resp handlers.SessionListResponse
			decodeBody(t, rec, &resp)
			if resp.Count != len(tt.want) {
				t.Fatalf("expected %d results, got %d", len(tt.want), resp.Count)
			}
			for i, id := range tt.want {
				if resp.Sessions[i].ID != id {
					t.Errorf("result %d: expected %s, got %s", i, id, resp.Sessions[i].ID)
				}
			}
		})
	}
}

func TestListSessions_Limit(t *testing.T) {
	setup := newTestSetup(t)
	for i, id := range []string{"a", "b", "c"} {
		seedSession(t, setup, id, seedTime.Add(time.Duration(i)*time.Minute), map[string]string{"eighth": "01"})
	}

	rec := setup.do(t, http.MethodGet, "/api/sessions?limit=2", nil, false)
	var resp handlers.SessionListResponse
	decodeBody(t, rec, &resp)
	if resp.Count != 2 || resp.Sessions[0].ID != "c" || resp.Sessions[1].ID != "b" {
		t.Errorf("expected [c b], got %+v", resp.Sessions)
	}

	for _, bad := range []string{"0", "-1", "ten"} {
		rec := setup.do(t, http.MethodGet, "/api/sessions?limit="+bad, nil, false)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("limit=%s: expected 400, got %d", bad, rec.Code)
		}
	}
}

func TestGetSession(t *testing.T) {
	setup := newTestSetup(t)
	seedSession(t, setup, "s1", seedTime, map[string]string{
		"special": "000777",
		"eighth":  "42",
		"first":   "13579",
	})

	rec := setup.do(t, http.MethodGet, "/api/sessions/s1", nil, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp handlers.SessionResponse
	decodeBody(t, rec, &resp)
	if resp.ID != "s1" || !resp.Completed {
		t.Errorf("unexpected session %+v", resp)
	}
	if resp.DurationSeconds != 90 || resp.NumberCount != 3 {
		t.Errorf("expected 90s and 3 numbers, got %ds and %d", resp.DurationSeconds, resp.NumberCount)
	}

	// Results follow catalog order
	wantOrder := []string{"eighth", "first", "special"}
	if len(resp.Results) != len(wantOrder) {
		t.Fatalf("expected %d results, got %d", len(wantOrder), len(resp.Results))
	}
	for i, id := range wantOrder {
		if resp.Results[i].PrizeID != id {
			t.Errorf("result %d: expected %s, got %s", i, id, resp.Results[i].PrizeID)
		}
	}
	if resp.Results[2].Numbers[0] != "000777" {
		t.Errorf("expected leading zeros kept, got %s", resp.Results[2].Numbers[0])
	}
}

func TestGetSession_NotFound(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodGet, "/api/sessions/missing", nil, false)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	var apiErr handlers.APIError
	decodeBody(t, rec, &apiErr)
	if apiErr.Code != handlers.ErrCodeNotFound {
		t.Errorf("expected NOT_FOUND, got %s", apiErr.Code)
	}
}

func TestDeleteSession(t *testing.T) {
	setup := newTestSetup(t)
	seedSession(t, setup, "gone", seedTime, map[string]string{"eighth": "01"})

	rec := setup.do(t, http.MethodDelete, "/api/sessions/gone", nil, false)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	rec = setup.do(t, http.MethodDelete, "/api/sessions/gone", nil, false)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 on second delete, got %d", rec.Code)
	}
}

func TestShareText(t *testing.T) {
	setup := newTestSetup(t)
	seedSession(t, setup, "abcdef1234", seedTime, map[string]string{"special": "123456", "eighth": "07"})

	rec := setup.do(t, http.MethodGet, "/api/sessions/abcdef1234/share", nil, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("expected text/plain, got %s", ct)
	}

	body := rec.Body.String()
	for _, want := range []string{"🎲 KẾT QUẢ XỔ SỐ MAY MẮN 🎲", "🆔 Mã phiên: abcdef12", "123456", "09/03/2024 20:15:30"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected share text to contain %q, got:\n%s", want, body)
		}
	}
	if strings.Index(body, "123456") > strings.Index(body, "07") {
		t.Error("expected the jackpot to be listed first")
	}
}

func TestShareQR(t *testing.T) {
	setup := newTestSetup(t)
	seedSession(t, setup, "qr", seedTime, map[string]string{"special": "123456"})

	rec := setup.do(t, http.MethodGet, "/api/sessions/qr/qr", nil, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("expected image/png, got %s", ct)
	}

	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("expected a PNG, got error %v", err)
	}
	if w := img.Bounds().Dx(); w != handlers.DefaultQRSize {
		t.Errorf("expected default width %d, got %d", handlers.DefaultQRSize, w)
	}
}

func TestShareQR_Errors(t *testing.T) {
	setup := newTestSetup(t)
	seedSession(t, setup, "qr", seedTime, map[string]string{"special": "123456"})

	tests := []struct {
		name string
		path string
		want int
	}{
		{"unknown session", "/api/sessions/nope/qr", http.StatusNotFound},
		{"size too small", "/api/sessions/qr/qr?size=10", http.StatusBadRequest},
		{"size too large", "/api/sessions/qr/qr?size=5000", http.StatusBadRequest},
		{"size not a number", "/api/sessions/qr/qr?size=big", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := setup.do(t, http.MethodGet, tt.path, nil, false)
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestHistory_StorageFailures(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
	}{
		{"list", http.MethodGet, "/api/sessions"},
		{"get", http.MethodGet, "/api/sessions/x"},
		{"delete", http.MethodDelete, "/api/sessions/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setup, repo := newTestSetupWithMockRepo(t)
			failure := errors.New("database is locked")
			repo.ListSessionsError = failure
			repo.GetSessionError = failure
			repo.DeleteSessionError = failure

			rec := setup.do(t, tt.method, tt.path, nil, false)
			if rec.Code != http.StatusServiceUnavailable {
				t.Fatalf("expected 503, got %d", rec.Code)
			}

			var apiErr handlers.APIError
			decodeBody(t, rec, &apiErr)
			if apiErr.Code != handlers.ErrCodeStorageUnavailable {
				t.Errorf("expected STORAGE_UNAVAILABLE, got %s", apiErr.Code)
			}
			if strings.Contains(apiErr.Message, "locked") {
				t.Error("storage details must not leak to clients")
			}
		})
	}
}

func TestClearSessions_RequiresAuth(t *testing.T) {
	setup := newTestSetup(t)
	seedSession(t, setup, "keep", seedTime, map[string]string{"eighth": "01"})

	rec := setup.do(t, http.MethodDelete, "/api/admin/sessions", nil, false)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	rec = setup.do(t, http.MethodDelete, "/api/admin/sessions", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	list := setup.do(t, http.MethodGet, "/api/sessions", nil, false)
	var resp handlers.SessionListResponse
	decodeBody(t, list, &resp)
	if resp.Count != 0 {
		t.Errorf("expected empty history, got %d", resp.Count)
	}
}
