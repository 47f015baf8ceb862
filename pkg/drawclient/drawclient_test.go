package drawclient

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/abrezinsky/luckydraw/internal/handlers"
	"github.com/abrezinsky/luckydraw/internal/logger"
	"github.com/abrezinsky/luckydraw/internal/services"
	"github.com/abrezinsky/luckydraw/internal/testutil"
)

func quietLogger() logger.Logger {
	return logger.NewWithWriter(io.Discard, slog.LevelError)
}

// newBoard serves the real handlers with a draw that parks on its first roll
func newBoard(t *testing.T) *httptest.Server {
	t.Helper()
	log := quietLogger()
	repo := testutil.NewTestRepository(t)
	catalog := services.DefaultCatalog()
	history := services.NewHistoryService(log, repo, catalog)
	settings := services.NewSettingsService(log, repo)
	pacing := services.Pacing{Steps: 1, RollDuration: time.Hour, JackpotRollDuration: time.Hour}
	runner := services.NewSessionRunner(log, catalog, services.NewGenerator(3), history, pacing)
	t.Cleanup(runner.Close)

	server := httptest.NewServer(handlers.NewForTesting(runner, history, settings).Router())
	t.Cleanup(server.Close)
	return server
}

func TestHTTPClient_DrawLifecycle(t *testing.T) {
	server := newBoard(t)
	client := NewHTTPClient(server.URL, quietLogger())
	ctx := context.Background()

	prizes, err := client.Catalog(ctx)
	if err != nil {
		t.Fatalf("Catalog failed: %v", err)
	}
	if len(prizes) != 9 || !prizes[8].Jackpot {
		t.Fatalf("unexpected catalog %+v", prizes)
	}

	animate := true
	snap, err := client.Start(ctx, &animate)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if snap.State != "running" || snap.SessionID == "" || !snap.WithAnimation {
		t.Errorf("unexpected snapshot after start %+v", snap)
	}

	if _, err := client.Start(ctx, nil); !IsConflict(err) {
		t.Errorf("expected conflict on second start, got %v", err)
	}

	if snap, err = client.Pause(ctx); err != nil || snap.State != "paused" {
		t.Fatalf("Pause: state %v, err %v", snap, err)
	}
	if snap, err = client.Resume(ctx); err != nil || snap.State != "running" {
		t.Fatalf("Resume: state %v, err %v", snap, err)
	}
	if snap, err = client.Reset(ctx); err != nil || snap.State != "idle" {
		t.Fatalf("Reset: state %v, err %v", snap, err)
	}

	state, err := client.State(ctx)
	if err != nil {
		t.Fatalf("State failed: %v", err)
	}
	if state.State != "idle" || len(state.Remaining) != 9 {
		t.Errorf("unexpected idle state %+v", state)
	}
}

func TestHTTPClient_QuickStartAndHistory(t *testing.T) {
	server := newBoard(t)
	client := NewHTTPClient(server.URL, quietLogger())
	ctx := context.Background()

	snap, err := client.QuickStart(ctx)
	if err != nil {
		t.Fatalf("QuickStart failed: %v", err)
	}

	var sessions []Session
	deadline := time.Now().Add(2 * time.Second)
	for len(sessions) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("session was never stored")
		}
		time.Sleep(10 * time.Millisecond)
		if sessions, err = client.Sessions(ctx, ""); err != nil {
			t.Fatalf("Sessions failed: %v", err)
		}
	}
	if sessions[0].ID != snap.SessionID || !sessions[0].Completed {
		t.Errorf("unexpected stored session %+v", sessions[0])
	}

	text, err := client.ShareText(ctx, snap.SessionID)
	if err != nil {
		t.Fatalf("ShareText failed: %v", err)
	}
	if !strings.Contains(text, snap.SessionID[:8]) {
		t.Errorf("expected share text to carry the session id, got:\n%s", text)
	}

	if _, err := client.ShareText(ctx, "missing"); err == nil {
		t.Error("expected error for unknown session")
	} else {
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
			t.Errorf("expected 404 API error, got %v", err)
		}
	}
}

func TestHTTPClient_OperatorActions(t *testing.T) {
	server := newBoard(t)
	ctx := context.Background()

	anonymous := NewHTTPClient(server.URL, quietLogger())
	if err := anonymous.ClearHistory(ctx); err == nil {
		t.Error("expected clear to be refused without login")
	}

	if err := anonymous.Login(ctx, "wrong"); !errors.Is(err, ErrLoginFailed) {
		t.Errorf("expected ErrLoginFailed, got %v", err)
	}

	operator := NewHTTPClient(server.URL, quietLogger())
	operator.SetPassword("test-password")
	if err := operator.ClearHistory(ctx); err != nil {
		t.Fatalf("ClearHistory failed: %v", err)
	}
	settings, err := operator.ResetSettings(ctx)
	if err != nil {
		t.Fatalf("ResetSettings failed: %v", err)
	}
	if !settings.SoundEnabled || !settings.DarkModeEnabled || !settings.VibrationEnabled {
		t.Errorf("expected defaults, got %+v", settings)
	}
}

func TestHTTPClient_ReauthenticatesOnExpiredSession(t *testing.T) {
	logins := 0
	cleared := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/admin/login":
			logins++
			http.SetCookie(w, &http.Cookie{Name: "luckydraw_session", Value: "fresh", Path: "/"})
			http.Redirect(w, r, "/admin", http.StatusFound)
		case "/api/admin/sessions":
			// The first session the board hands out is already stale
			if c, err := r.Cookie("luckydraw_session"); err != nil || logins < 2 || c.Value != "fresh" {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"code":"UNAUTHORIZED","error":"Unauthorized - please log in"}`))
				return
			}
			cleared++
			w.Write([]byte(`{"success":true}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, quietLogger())
	client.SetPassword("secret")

	if err := client.ClearHistory(context.Background()); err != nil {
		t.Fatalf("ClearHistory failed: %v", err)
	}
	if logins != 2 || cleared != 1 {
		t.Errorf("expected 2 logins and 1 clear, got %d and %d", logins, cleared)
	}
}

func TestHTTPClient_ErrorResponses(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantMsg  string
		wantCode string
	}{
		{"json error", http.StatusConflict, `{"code":"CONFLICT","error":"no draw session is running"}`, "no draw session is running", "CONFLICT"},
		{"plain text", http.StatusServiceUnavailable, "down for maintenance", "down for maintenance", ""},
		{"empty body", http.StatusInternalServerError, "", "Internal Server Error", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewHTTPClient(server.URL, quietLogger()).Pause(context.Background())
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %v", err)
			}
			if apiErr.Status != tt.status || apiErr.Message != tt.wantMsg || apiErr.Code != tt.wantCode {
				t.Errorf("unexpected error %+v", apiErr)
			}
		})
	}
}

func TestHTTPClient_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	if _, err := NewHTTPClient(server.URL, quietLogger()).State(context.Background()); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestHTTPClient_ConnectionError(t *testing.T) {
	client := NewHTTPClient("http://127.0.0.1:1", quietLogger())
	if _, err := client.Catalog(context.Background()); err == nil {
		t.Fatal("expected connection error")
	}
}

func TestHTTPClient_BaseURL(t *testing.T) {
	client := NewHTTPClient("http://board.local:8080/", quietLogger())
	if client.BaseURL() != "http://board.local:8080" {
		t.Errorf("expected trailing slash trimmed, got %s", client.BaseURL())
	}
}

func TestMockClient_Lifecycle(t *testing.T) {
	m := NewMockClient()
	ctx := context.Background()

	if _, err := m.Pause(ctx); !IsConflict(err) {
		t.Errorf("expected conflict pausing idle board, got %v", err)
	}

	snap, err := m.QuickStart(ctx)
	if err != nil {
		t.Fatalf("QuickStart failed: %v", err)
	}
	if snap.State != "completed" || len(snap.Results) != 3 {
		t.Errorf("unexpected snapshot %+v", snap)
	}

	sessions, _ := m.Sessions(ctx, "")
	if len(sessions) != 1 || sessions[0].NumberCount != 3 {
		t.Errorf("expected one stored session, got %+v", sessions)
	}

	if err := m.ClearHistory(ctx); err == nil {
		t.Error("expected clear to need a login")
	}
	m.SetPassword("pw")
	if err := m.ClearHistory(ctx); err != nil {
		t.Errorf("expected clear after password set, got %v", err)
	}

	calls := strings.Join(m.Calls(), ",")
	if calls != "pause,quick-start,sessions,clear,clear,login" {
		t.Errorf("unexpected calls %s", calls)
	}
}

func TestMockClient_Options(t *testing.T) {
	boom := errors.New("boom")
	m := NewMockClient(
		WithBaseURL("http://other"),
		WithControlError(boom),
		WithSessionsError(boom),
		WithShareText("abc", "hello"),
		WithPrizes(DefaultMockPrizes()[:1]),
	)
	ctx := context.Background()

	if m.BaseURL() != "http://other" {
		t.Errorf("unexpected base URL %s", m.BaseURL())
	}
	if _, err := m.Start(ctx, nil); !errors.Is(err, boom) {
		t.Errorf("expected control error, got %v", err)
	}
	if _, err := m.Sessions(ctx, ""); !errors.Is(err, boom) {
		t.Errorf("expected sessions error, got %v", err)
	}
	if text, _ := m.ShareText(ctx, "abc"); text != "hello" {
		t.Errorf("unexpected share text %q", text)
	}
	if prizes, _ := m.Catalog(ctx); len(prizes) != 1 {
		t.Errorf("expected one prize, got %d", len(prizes))
	}
}

func TestClientInterface(t *testing.T) {
	var _ Client = NewHTTPClient("http://localhost", quietLogger())
	var _ Client = NewMockClient()
}
