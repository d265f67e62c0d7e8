package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/erazemk/najdeno/internal/api"
	"github.com/erazemk/najdeno/internal/app"
	"github.com/erazemk/najdeno/internal/config"
	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/imaging"
	"github.com/erazemk/najdeno/internal/media"
	"github.com/erazemk/najdeno/internal/store"
	"github.com/erazemk/najdeno/internal/web"
)

// bindFlags ties flags to config keys. Unchanged flags fall back to the
// config defaults. Subcommands share keys, so binding happens when a command
// runs rather than when it is built.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("binding flag %s: %w", name, err)
		}
	}
	return nil
}

// openStore opens the configured backend and makes sure its schema or
// indexes exist.
func openStore(ctx context.Context, cfg config.DBConfig) (store.Store, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		m, err := store.OpenMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		if err := m.EnsureIndexes(ctx); err != nil {
			_ = m.Close(ctx)
			return nil, err
		}
		slog.Info("database ready", "driver", cfg.Driver, "database", cfg.MongoDatabase)
		return m, nil
	default:
		database, err := db.Open(cfg.Path)
		if err != nil {
			return nil, err
		}
		if err := db.EnsureSchema(database); err != nil {
			database.Close()
			return nil, fmt.Errorf("ensuring database schema: %w", err)
		}
		slog.Info("database ready", "driver", cfg.Driver, "path", cfg.Path)
		return store.NewSQLite(database), nil
	}
}

// openMedia returns the image store and, for local storage, the handler that
// serves the files.
func openMedia(cfg config.MediaConfig) (media.Store, http.Handler, error) {
	switch cfg.Driver {
	case config.MediaCloudinary:
		c, err := media.NewCloudinary(media.CloudinaryConfig{
			CloudName: cfg.Cloudinary.CloudName,
			APIKey:    cfg.Cloudinary.APIKey,
			APISecret: cfg.Cloudinary.APISecret,
			Folder:    cfg.Cloudinary.Folder,
		})
		if err != nil {
			return nil, nil, err
		}
		slog.Info("media storage ready", "driver", cfg.Driver, "cloud", cfg.Cloudinary.CloudName)
		return c, nil, nil
	default:
		l, err := media.NewLocal(cfg.Dir)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("media storage ready", "driver", cfg.Driver, "dir", cfg.Dir)
		return l, l.Handler(), nil
	}
}

// handlerDeps are the pieces the HTTP handler is assembled from.
type handlerDeps struct {
	Config  *config.Config
	Store   store.Store
	Media   media.Store
	Uploads http.Handler
	Secret  string
}

// newHandler wires services, routers and middleware into the server handler.
func newHandler(deps handlerDeps) (http.Handler, error) {
	cfg := deps.Config

	accounts, err := app.NewAccountService(deps.Store, app.AccountOptions{
		JWTSecret:     deps.Secret,
		TokenExpiry:   cfg.JWT.Expiry,
		ContactPrefix: cfg.ContactPrefix,
	})
	if err != nil {
		return nil, err
	}
	items := app.NewItemService(deps.Store, deps.Media, imaging.NewProcessor(), cfg.ContactPrefix)

	apiRouter := api.NewRouter(api.Config{
		Accounts:       accounts,
		Items:          items,
		Health:         deps.Store,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})
	webRouter, err := web.NewRouter(web.Config{
		Accounts:       accounts,
		Items:          items,
		MaxUploadBytes: cfg.MaxUploadBytes,
		SecureCookies:  cfg.SecureCookies,
	})
	if err != nil {
		return nil, fmt.Errorf("setting up web router: %w", err)
	}

	// API routes take priority, web routes handle the rest.
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	if deps.Uploads != nil {
		mux.Handle("GET "+media.DefaultURLPrefix, deps.Uploads)
	}
	mux.Handle("/", webRouter)

	return chi.Chain(
		middleware.RequestID,
		middleware.RealIP,
		api.LoggingMiddleware,
		middleware.Recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
			MaxAge:         300,
		}),
	).Handler(mux), nil
}

// newServer returns an http.Server with the timeouts used in production.
func newServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
