package handlers

import (
	"net/http"
	"strconv"

	"github.com/abrezinsky/luckydraw/internal/auth"
)

// LoginPageData holds data for the login template
type LoginPageData struct {
	Error string
}

// handleLoginPage renders the login form, or sends operators who are already signed in to the dashboard
func (h *Handlers) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if h.Auth.GetSessionFromRequest(r) {
		http.Redirect(w, r, "/admin", http.StatusFound)
		return
	}

	h.templates.AdminLogin.Execute(w, LoginPageData{})
}

// handleLogin processes login form submission
func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	if h.LoginLimiter != nil && !h.LoginLimiter.Allow(auth.ClientAddr(r)) {
		w.Header().Set("Retry-After", strconv.Itoa(int(auth.LoginRefill.Seconds())))
		w.WriteHeader(http.StatusTooManyRequests)
		h.templates.AdminLogin.Execute(w, LoginPageData{Error: "Quá nhiều lần thử, vui lòng đợi"})
		return
	}

	token, ok := h.Auth.Login(r.FormValue("password"))
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		h.templates.AdminLogin.Execute(w, LoginPageData{Error: "Sai mật khẩu"})
		return
	}

	auth.SetSessionCookie(w, token)
	http.Redirect(w, r, "/admin", http.StatusFound)
}

// handleLogout clears the session and redirects to login
func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.CookieName); err == nil {
		h.Auth.Logout(cookie.Value)
	}

	auth.ClearSessionCookie(w)
	http.Redirect(w, r, "/admin/login", http.StatusFound)
}
