package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/najdeno/internal/app"
	"github.com/erazemk/najdeno/internal/model"
)

type profileData struct {
	PageData
	Profile model.Profile
	Items   []model.Item
}

// ProfilePage handles GET /profile.
func (s *Server) ProfilePage(w http.ResponseWriter, r *http.Request) {
	s.renderProfile(w, r, http.StatusOK, PageData{Success: notices[r.URL.Query().Get("done")]})
}

func (s *Server) renderProfile(w http.ResponseWriter, r *http.Request, status int, page PageData) {
	claims := GetWebClaims(r.Context())
	user, err := s.Accounts.Profile(r.Context(), claims.UserID)
	if err != nil {
		clearAuthCookie(w)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	items, err := s.Items.List(r.Context(), model.ItemFilter{UserID: user.ID, Limit: model.MaxListLimit})
	if err != nil {
		slog.Error("failed to list own items", "user", user.Username, "error", err)
	}

	page.Title = "Profile"
	page.User = claims
	s.Templates.RenderStatus(w, status, "profile.html", &profileData{
		PageData: page,
		Profile:  user.Profile(),
		Items:    items,
	})
}

// ProfileSubmit handles POST /profile.
func (s *Server) ProfileSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	if _, err := s.Accounts.UpdateContact(r.Context(), claims.UserID, r.FormValue("contact")); err != nil {
		s.renderProfile(w, r, http.StatusBadRequest, PageData{Error: userMessage(err)})
		return
	}

	slog.Info("profile updated", "user", claims.Username, "via", "web")
	http.Redirect(w, r, "/profile?done=profile", http.StatusSeeOther)
}

// PasswordSubmit handles POST /profile/password.
func (s *Server) PasswordSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	err := s.Accounts.ChangePassword(r.Context(), claims.UserID, r.FormValue("current_password"), r.FormValue("new_password"))
	if errors.Is(err, app.ErrInvalidCredentials) {
		s.renderProfile(w, r, http.StatusBadRequest, PageData{Error: "Current password is incorrect."})
		return
	}
	if err != nil {
		s.renderProfile(w, r, http.StatusBadRequest, PageData{Error: userMessage(err)})
		return
	}

	slog.Info("user changed own password", "user", claims.Username, "via", "web")
	http.Redirect(w, r, "/profile?done=password", http.StatusSeeOther)
}
