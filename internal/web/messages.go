package web

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/erazemk/najdeno/internal/app"
)

// userMessage turns a service error into text shown on a page.
func userMessage(err error) string {
	switch {
	case errors.Is(err, app.ErrValidation):
		msg := strings.TrimPrefix(err.Error(), app.ErrValidation.Error()+": ")
		if msg == "" {
			return "Please check the form and try again."
		}
		return strings.ToUpper(msg[:1]) + msg[1:] + "."
	case errors.Is(err, app.ErrUsernameTaken):
		return "That username is already taken."
	case errors.Is(err, app.ErrInvalidCredentials):
		return "Invalid username or password."
	case errors.Is(err, app.ErrInvalidImage):
		return "The photo must be a JPEG or PNG image."
	case errors.Is(err, app.ErrForbidden):
		return "You can only delete your own reports."
	case errors.Is(err, app.ErrNotFound):
		return "That report no longer exists."
	default:
		slog.Error("request failed", "error", err)
		return "Something went wrong. Please try again."
	}
}

// notices are the success banners selected by the "done" query parameter.
var notices = map[string]string{
	"registered": "Account created. You can now log in.",
	"reported":   "Thanks! Your report has been posted.",
	"deleted":    "Report removed.",
	"profile":    "Profile updated.",
	"password":   "Password changed.",
}
