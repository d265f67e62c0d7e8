package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/erazemk/najdeno/internal/config"
	"github.com/erazemk/najdeno/internal/logging"
	"github.com/erazemk/najdeno/internal/store"
)

const shutdownTimeout = 5 * time.Second

func newServeCommand(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := bindFlags(g.v, cmd.Flags(), map[string]string{
				"addr":         "addr",
				"db.driver":    "db-driver",
				"db.path":      "db",
				"mongo.uri":    "mongo-uri",
				"media.driver": "media-driver",
				"media.dir":    "uploads",
			}); err != nil {
				return err
			}
			cfg, err := config.Load(g.v)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringP("addr", "a", "", "listen address (default :5000, or :$PORT)")
	flags.String("db-driver", "", "storage backend: sqlite or mongo (default sqlite)")
	flags.StringP("db", "d", "", "SQLite database path (default najdeno.sqlite3)")
	flags.String("mongo-uri", "", "MongoDB connection string")
	flags.String("media-driver", "", "image storage: local or cloudinary (default local)")
	flags.String("uploads", "", "directory for locally stored images (default uploads)")
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	level, _ := cfg.Log.SlogLevel()
	closeLog, err := logging.Setup(logging.Options{
		Level:     level,
		File:      cfg.Log.File,
		MaxSizeMB: cfg.Log.MaxSizeMB,
		MaxFiles:  cfg.Log.MaxFiles,
	})
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	defer closeLog.Close()

	s, err := openStore(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer func() {
		slog.Info("closing database")
		if err := s.Close(context.Background()); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	secret := cfg.JWT.Secret
	if secret == "" {
		// Generated on first run and kept in the store.
		if secret, err = store.GetJWTSecret(ctx, s); err != nil {
			return fmt.Errorf("loading jwt secret: %w", err)
		}
	}

	mediaStore, uploads, err := openMedia(cfg.Media)
	if err != nil {
		return fmt.Errorf("opening media storage: %w", err)
	}

	handler, err := newHandler(handlerDeps{
		Config:  cfg,
		Store:   s,
		Media:   mediaStore,
		Uploads: uploads,
		Secret:  secret,
	})
	if err != nil {
		return err
	}
	server := newServer(cfg.Addr, handler)

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server started", "addr", cfg.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		return err
	}
	slog.Info("server stopped")
	return nil
}
