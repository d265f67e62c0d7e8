package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/najdeno/internal/app"
)

// AuthHandler handles account endpoints.
type AuthHandler struct {
	Accounts *app.AccountService
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Contact  string `json:"contact"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type updateProfileRequest struct {
	Contact string `json:"contact"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Register handles POST /api/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.Accounts.Register(r.Context(), app.RegisterRequest{
		Username: req.Username,
		Password: req.Password,
		Contact:  req.Contact,
	})
	if err != nil {
		serviceError(w, r, err, "failed to register")
		return
	}

	slog.Info("user registered", "user", user.Username)
	jsonMessage(w, http.StatusCreated, "registered")
}

// Login handles POST /api/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, user, err := h.Accounts.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, app.ErrInvalidCredentials) {
			slog.Warn("login failed", "username", req.Username, "remote", r.RemoteAddr)
		}
		serviceError(w, r, err, "failed to log in")
		return
	}

	slog.Info("user logged in", "user", user.Username)
	jsonResponse(w, http.StatusOK, loginResponse{Token: token})
}

// Logout handles POST /api/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.Accounts.Logout(r.Context(), claims); err != nil {
		serviceError(w, r, err, "failed to log out")
		return
	}

	slog.Info("user logged out", "user", claims.Username)
	jsonMessage(w, http.StatusOK, "logged out")
}

// Profile handles GET /api/profile.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.Accounts.Profile(r.Context(), claims.UserID)
	if err != nil {
		serviceError(w, r, err, "failed to load profile")
		return
	}
	jsonResponse(w, http.StatusOK, user.Profile())
}

// UpdateProfile handles PUT /api/profile.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.Accounts.UpdateContact(r.Context(), claims.UserID, req.Contact)
	if err != nil {
		serviceError(w, r, err, "failed to update profile")
		return
	}

	slog.Info("profile updated", "user", claims.Username)
	jsonResponse(w, http.StatusOK, user.Profile())
}

// ChangePassword handles PUT /api/password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.Accounts.ChangePassword(r.Context(), claims.UserID, req.CurrentPassword, req.NewPassword)
	if errors.Is(err, app.ErrInvalidCredentials) {
		jsonError(w, http.StatusUnauthorized, "current password is incorrect")
		return
	}
	if err != nil {
		serviceError(w, r, err, "failed to update password")
		return
	}

	slog.Info("user changed own password", "user", claims.Username)
	jsonMessage(w, http.StatusOK, "password updated")
}
