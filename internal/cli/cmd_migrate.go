package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/erazemk/najdeno/internal/config"
)

func newMigrateCommand(out io.Writer, g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema or indexes and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := bindFlags(g.v, cmd.Flags(), map[string]string{
				"db.driver": "db-driver",
				"db.path":   "db",
				"mongo.uri": "mongo-uri",
			}); err != nil {
				return err
			}
			cfg, err := config.Load(g.v)
			if err != nil {
				return err
			}
			return runMigrate(cmd.Context(), out, cfg.DB)
		},
	}

	flags := cmd.Flags()
	flags.String("db-driver", "", "storage backend: sqlite or mongo (default sqlite)")
	flags.StringP("db", "d", "", "SQLite database path (default najdeno.sqlite3)")
	flags.String("mongo-uri", "", "MongoDB connection string")
	return cmd
}

func runMigrate(ctx context.Context, out io.Writer, cfg config.DBConfig) error {
	s, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer s.Close(ctx)

	if err := s.Ping(ctx); err != nil {
		return err
	}
	where := cfg.Path
	if cfg.Driver == config.DriverMongo {
		where = cfg.MongoDatabase
	}
	_, err = fmt.Fprintf(out, "schema ready: %s (%s)\n", where, cfg.Driver)
	return err
}
