package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/najdeno/internal/app"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("error encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// jsonMessage writes a {"message": ...} response.
func jsonMessage(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"message": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// serviceError maps an app error to a response. Unknown errors are logged and
// reported as a generic internal error with the given message.
func serviceError(w http.ResponseWriter, r *http.Request, err error, internal string) {
	switch {
	case errors.Is(err, app.ErrValidation):
		jsonError(w, http.StatusBadRequest, strings.TrimPrefix(err.Error(), app.ErrValidation.Error()+": "))
	case errors.Is(err, app.ErrUsernameTaken):
		jsonError(w, http.StatusBadRequest, app.ErrUsernameTaken.Error())
	case errors.Is(err, app.ErrInvalidCredentials):
		jsonError(w, http.StatusBadRequest, app.ErrInvalidCredentials.Error())
	case errors.Is(err, app.ErrInvalidImage):
		jsonError(w, http.StatusBadRequest, "image must be a JPEG or PNG file")
	case errors.Is(err, app.ErrUnauthorized):
		jsonError(w, http.StatusUnauthorized, "invalid token")
	case errors.Is(err, app.ErrForbidden):
		jsonError(w, http.StatusForbidden, app.ErrForbidden.Error())
	case errors.Is(err, app.ErrNotFound):
		jsonError(w, http.StatusNotFound, strings.TrimPrefix(err.Error(), app.ErrNotFound.Error()+": ")+" not found")
	default:
		slog.Error(internal, "method", r.Method, "path", r.URL.Path, "error", err)
		jsonError(w, http.StatusInternalServerError, internal)
	}
}
