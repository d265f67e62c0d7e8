package web

import (
	"net/http"

	"github.com/erazemk/najdeno/internal/app"
	"github.com/erazemk/najdeno/internal/model"
	webembed "github.com/erazemk/najdeno/web"
)

// Config holds the dependencies of the page router.
type Config struct {
	Accounts       *app.AccountService
	Items          *app.ItemService
	MaxUploadBytes int64
	SecureCookies  bool
}

// NewRouter creates the web page router with all page routes registered.
func NewRouter(cfg Config) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		Accounts:       cfg.Accounts,
		Items:          cfg.Items,
		Templates:      templates,
		MaxUploadBytes: cfg.MaxUploadBytes,
		SecureCookies:  cfg.SecureCookies,
	}
	if s.MaxUploadBytes <= 0 {
		s.MaxUploadBytes = model.DefaultMaxUploadBytes
	}

	mux := http.NewServeMux()

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	// Public routes.
	mux.HandleFunc("GET /{$}", s.IndexPage)
	mux.HandleFunc("GET /login", s.LoginPage)
	mux.HandleFunc("POST /login", s.LoginSubmit)
	mux.HandleFunc("GET /register", s.RegisterPage)
	mux.HandleFunc("POST /register", s.RegisterSubmit)
	mux.HandleFunc("POST /logout", s.Logout)

	// Authenticated routes.
	mux.Handle("POST /items", RequireAuth(http.HandlerFunc(s.ItemCreateSubmit)))
	mux.Handle("POST /items/{id}/delete", RequireAuth(http.HandlerFunc(s.ItemDeleteSubmit)))
	mux.Handle("GET /profile", RequireAuth(http.HandlerFunc(s.ProfilePage)))
	mux.Handle("POST /profile", RequireAuth(http.HandlerFunc(s.ProfileSubmit)))
	mux.Handle("POST /profile/password", RequireAuth(http.HandlerFunc(s.PasswordSubmit)))

	return OptionalAuthMiddleware(cfg.Accounts)(mux), nil
}
