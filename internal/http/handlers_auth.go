package http

import (
	"errors"
	"log/slog"
	"net/http"

	"spendtrack/internal/core"
)

type loginPageData struct {
	OAuthEnabled bool
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "login.html", loginPageData{OAuthEnabled: s.oauth != nil})
}

func (s *Server) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "register.html", nil)
}

// handleLogin verifies local credentials and issues a session. Unknown users
// and wrong passwords land on the same redirect; nothing distinguishes them.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	username := sanitizeInput(r.Form.Get("username"))
	password := r.Form.Get("password")

	user, err := s.resolver.LoginLocal(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, core.ErrInvalidCredentials) {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		slog.ErrorContext(r.Context(), "Login lookup failed", "error", err, "username", username)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if err := s.sessions.Issue(r.Context(), w, user); err != nil {
		slog.ErrorContext(r.Context(), "Session issue failed", "error", err, "username", username)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// handleRegister creates a local account and logs it in. A taken username
// redirects to the login page without creating anything.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	username := sanitizeInput(r.Form.Get("username"))
	password := r.Form.Get("password")

	user, err := s.resolver.RegisterLocal(r.Context(), username, password)
	if err != nil {
		// The silent redirect is reserved for duplicates; a failing store
		// is a server error, not a rejection.
		if errors.Is(err, core.ErrUsernameTaken) {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		slog.ErrorContext(r.Context(), "Registration failed", "error", err, "username", username)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if err := s.sessions.Issue(r.Context(), w, user); err != nil {
		slog.ErrorContext(r.Context(), "Session issue failed", "error", err, "username", username)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if s.oauth == nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	http.Redirect(w, r, s.oauth.LoginURL(), http.StatusFound)
}

// handleGoogleCallback completes the code exchange and maps the asserted
// email onto a user record, creating one on first login.
func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if s.oauth == nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	email, err := s.oauth.Exchange(r.Context(), code)
	if err != nil {
		slog.ErrorContext(r.Context(), "OAuth exchange failed", "error", err)
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	user, err := s.resolver.ResolveOAuth(r.Context(), email)
	if err != nil {
		slog.ErrorContext(r.Context(), "OAuth resolve failed", "error", err, "email", email)
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	if err := s.sessions.Issue(r.Context(), w, user); err != nil {
		slog.ErrorContext(r.Context(), "Session issue failed", "error", err, "username", user.Username)
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}
