package web

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/najdeno/internal/app"
)

// formData echoes submitted fields back into the login and register pages.
type formData struct {
	PageData
	Username string
	Contact  string
}

// LoginPage handles GET /login.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "login.html", &formData{
		PageData: PageData{Title: "Log in", Success: notices[r.URL.Query().Get("done")]},
	})
}

// LoginSubmit handles POST /login.
func (s *Server) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	token, user, err := s.Accounts.Login(r.Context(), username, r.FormValue("password"))
	if err != nil {
		s.Templates.RenderStatus(w, http.StatusBadRequest, "login.html", &formData{
			PageData: PageData{Title: "Log in", Error: userMessage(err)},
			Username: username,
		})
		return
	}

	s.setAuthCookie(w, token)
	slog.Info("user logged in", "user", user.Username, "via", "web")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// RegisterPage handles GET /register.
func (s *Server) RegisterPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "register.html", &formData{PageData: PageData{Title: "Register"}})
}

// RegisterSubmit handles POST /register.
func (s *Server) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	req := app.RegisterRequest{
		Username: r.FormValue("username"),
		Password: r.FormValue("password"),
		Contact:  r.FormValue("contact"),
	}
	user, err := s.Accounts.Register(r.Context(), req)
	if err != nil {
		s.Templates.RenderStatus(w, http.StatusBadRequest, "register.html", &formData{
			PageData: PageData{Title: "Register", Error: userMessage(err)},
			Username: req.Username,
			Contact:  req.Contact,
		})
		return
	}

	slog.Info("user registered", "user", user.Username, "via", "web")
	http.Redirect(w, r, "/login?done=registered", http.StatusSeeOther)
}

// Logout handles POST /logout.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if claims := GetWebClaims(r.Context()); claims != nil {
		if err := s.Accounts.Logout(r.Context(), claims); err != nil {
			slog.Error("failed to revoke session", "user", claims.Username, "error", err)
		}
	}
	clearAuthCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
