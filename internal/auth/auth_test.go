package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	a := New("test-password")

	if a == nil {
		t.Fatal("expected auth to be created")
	}
	if a.password != "test-password" {
		t.Error("expected password to be set")
	}
	if a.sessions == nil {
		t.Error("expected sessions map to be initialized")
	}
}

func TestGeneratePassword_Format(t *testing.T) {
	pw := GeneratePassword()

	parts := strings.Split(pw, "-")
	if len(parts) != 3 {
		t.Errorf("expected 3 words separated by dashes, got %d parts: %s", len(parts), pw)
	}

	// Verify each part is from drawWords
	for _, part := range parts {
		found := false
		for _, word := range drawWords {
			if part == word {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("word %q not in drawWords list", part)
		}
	}
}

func TestGeneratePassword_Randomness(t *testing.T) {
	// Generate multiple passwords and verify they're not all the same
	passwords := make(map[string]bool)
	for i := 0; i < 10; i++ {
		passwords[GeneratePassword()] = true
	}

	// 20 words in 3 positions: repeated passwords are rare
	if len(passwords) < 3 {
		t.Errorf("expected more password variety, got only %d unique passwords", len(passwords))
	}
}

func TestLogin_ValidPassword(t *testing.T) {
	a := New("correct-password")

	token, ok := a.Login("correct-password")

	if !ok {
		t.Error("expected login to succeed with correct password")
	}
	if token == "" {
		t.Error("expected token to be returned")
	}
	if len(token) != 64 { // 32 bytes = 64 hex chars
		t.Errorf("expected 64-char token, got %d chars", len(token))
	}
}

func TestLogin_InvalidPassword(t *testing.T) {
	a := New("correct-password")

	token, ok := a.Login("wrong-password")

	if ok {
		t.Error("expected login to fail with wrong password")
	}
	if token != "" {
		t.Error("expected empty token on failed login")
	}
}

func TestLogin_EmptyPasswordNeverMatches(t *testing.T) {
	a := New("")

	if _, ok := a.Login(""); ok {
		t.Error("expected empty password to be rejected")
	}
}

func TestActiveSessions_DropsExpired(t *testing.T) {
	a := New("password")
	live, _ := a.Login("password")
	stale, _ := a.Login("password")

	a.mu.Lock()
	a.sessions[stale] = time.Now().Add(-time.Minute)
	a.mu.Unlock()

	if n := a.ActiveSessions(); n != 1 {
		t.Errorf("expected 1 active session, got %d", n)
	}
	if !a.ValidateSession(live) {
		t.Error("expected live session to survive pruning")
	}
}

func TestLogin_CreatesSession(t *testing.T) {
	a := New("password")

	token, _ := a.Login("password")

	if !a.ValidateSession(token) {
		t.Error("expected session to be valid after login")
	}
}

func TestLogout_InvalidatesSession(t *testing.T) {
	a := New("password")
	token, _ := a.Login("password")

	a.Logout(token)

	if a.ValidateSession(token) {
		t.Error("expected session to be invalid after logout")
	}
}

func TestValidateSession_InvalidToken(t *testing.T) {
	a := New("password")

	if a.ValidateSession("nonexistent-token") {
		t.Error("expected false for nonexistent token")
	}
}

func TestValidateSession_ExpiredSession(t *testing.T) {
	a := New("password")
	token, _ := a.Login("password")

	// Manually expire the session
	a.mu.Lock()
	a.sessions[token] = time.Now().Add(-1 * time.Hour)
	a.mu.Unlock()

	if a.ValidateSession(token) {
		t.Error("expected expired session to be invalid")
	}

	// Verify session was cleaned up
	a.mu.RLock()
	_, exists := a.sessions[token]
	a.mu.RUnlock()
	if exists {
		t.Error("expected expired session to be removed")
	}
}

func TestGetSessionFromRequest(t *testing.T) {
	a := New("lucky-dragon-seven")
	token, _ := a.Login("lucky-dragon-seven")

	tests := []struct {
		name   string
		cookie *http.Cookie
		want   bool
	}{
		{"valid cookie", &http.Cookie{Name: CookieName, Value: token}, true},
		{"no cookie", nil, false},
		{"unknown token", &http.Cookie{Name: CookieName, Value: "not-a-token"}, false},
		{"other cookie name", &http.Cookie{Name: "session", Value: token}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			if got := a.GetSessionFromRequest(req); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

// serveProtected runs one request through middleware guarding a 200 handler
func serveProtected(mw func(http.Handler) http.Handler, path, token string) *httptest.ResponseRecorder {
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuth(t *testing.T) {
	a := New("password")
	token, _ := a.Login("password")

	if rec := serveProtected(a.RequireAuth, "/admin", token); rec.Code != http.StatusOK {
		t.Errorf("expected 200 with session, got %d", rec.Code)
	}

	rec := serveProtected(a.RequireAuth, "/admin", "")
	if rec.Code != http.StatusFound {
		t.Errorf("expected 302 without session, got %d", rec.Code)
	}
	if location := rec.Header().Get("Location"); location != "/admin/login" {
		t.Errorf("expected redirect to /admin/login, got %s", location)
	}
}

func TestRequireAuthAPI(t *testing.T) {
	a := New("password")
	token, _ := a.Login("password")

	if rec := serveProtected(a.RequireAuthAPI, "/api/admin/sessions", token); rec.Code != http.StatusOK {
		t.Errorf("expected 200 with session, got %d", rec.Code)
	}

	rec := serveProtected(a.RequireAuthAPI, "/api/admin/sessions", "expired-token")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON content type, got %s", ct)
	}
	if body := rec.Body.String(); !strings.Contains(body, `"code":"UNAUTHORIZED"`) {
		t.Errorf("expected UNAUTHORIZED code in body, got: %s", body)
	}
}

func TestSetSessionCookie(t *testing.T) {
	rr := httptest.NewRecorder()

	SetSessionCookie(rr, "test-token")

	cookies := rr.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}

	cookie := cookies[0]
	if cookie.Name != CookieName {
		t.Errorf("expected cookie name %s, got %s", CookieName, cookie.Name)
	}
	if cookie.Value != "test-token" {
		t.Errorf("expected cookie value 'test-token', got %s", cookie.Value)
	}
	if !cookie.HttpOnly {
		t.Error("expected HttpOnly to be true")
	}
	if cookie.Path != "/" {
		t.Errorf("expected path '/', got %s", cookie.Path)
	}
	if cookie.MaxAge != int(SessionExpiry.Seconds()) {
		t.Errorf("expected MaxAge %d, got %d", int(SessionExpiry.Seconds()), cookie.MaxAge)
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Error("expected SameSite=Lax")
	}
}

func TestClearSessionCookie(t *testing.T) {
	rr := httptest.NewRecorder()

	ClearSessionCookie(rr)

	cookies := rr.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}

	cookie := cookies[0]
	if cookie.Name != CookieName {
		t.Errorf("expected cookie name %s, got %s", CookieName, cookie.Name)
	}
	if cookie.MaxAge != -1 {
		t.Errorf("expected MaxAge -1 (delete), got %d", cookie.MaxAge)
	}
}

func TestConcurrentSessionAccess(t *testing.T) {
	a := New("password")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, ok := a.Login("password")
			if !ok {
				t.Error("login failed")
				return
			}
			a.ValidateSession(token)
			a.ActiveSessions()
			a.Logout(token)
		}()
	}
	wg.Wait()

	if n := a.ActiveSessions(); n != 0 {
		t.Errorf("expected no sessions after logout, got %d", n)
	}
}
