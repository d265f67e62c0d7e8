package api

import (
	"net/http"

	"github.com/erazemk/najdeno/internal/app"
	"github.com/erazemk/najdeno/internal/model"
)

// Config holds the dependencies of the API router.
type Config struct {
	Accounts       *app.AccountService
	Items          *app.ItemService
	Health         Pinger
	MaxUploadBytes int64
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(cfg Config) http.Handler {
	mux := http.NewServeMux()

	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = model.DefaultMaxUploadBytes
	}

	authHandler := &AuthHandler{Accounts: cfg.Accounts}
	itemsHandler := &ItemsHandler{Items: cfg.Items, MaxUploadBytes: cfg.MaxUploadBytes}
	healthHandler := &HealthHandler{Store: cfg.Health}

	authMW := AuthMiddleware(cfg.Accounts)

	// Public.
	mux.HandleFunc("POST /api/register", authHandler.Register)
	mux.HandleFunc("POST /api/login", authHandler.Login)
	mux.HandleFunc("GET /api/items", itemsHandler.List)
	mux.HandleFunc("GET /api/items/{id}", itemsHandler.Get)
	mux.HandleFunc("GET /api/health", healthHandler.Check)

	// Authenticated.
	mux.Handle("POST /api/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("GET /api/profile", authMW(http.HandlerFunc(authHandler.Profile)))
	mux.Handle("PUT /api/profile", authMW(http.HandlerFunc(authHandler.UpdateProfile)))
	mux.Handle("PUT /api/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/items", authMW(http.HandlerFunc(itemsHandler.Create)))
	mux.Handle("DELETE /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Delete)))

	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, http.StatusNotFound, "not found")
	})

	return mux
}
