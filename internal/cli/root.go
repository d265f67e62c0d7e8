// Package cli implements the najdeno command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/erazemk/najdeno/internal/config"
)

type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

// globals are the persistent flags shared by every subcommand.
type globals struct {
	configFile string
	envFile    string
	v          *viper.Viper
}

// NewRootCommand builds the command tree. Flags are bound into a fresh viper
// instance so that flags, NAJDENO_* variables, .env and the config file all
// resolve through config.Load.
func NewRootCommand(out io.Writer, build BuildInfo) *cobra.Command {
	g := &globals{v: config.New()}

	cmd := &cobra.Command{
		Use:           "najdeno",
		Short:         "Campus lost and found server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := bindFlags(g.v, cmd.Root().PersistentFlags(), map[string]string{
				"log.level": "log-level",
				"log.file":  "log-file",
			}); err != nil {
				return err
			}
			if err := config.LoadDotEnv(g.envFile); err != nil {
				return err
			}
			return config.ReadFile(g.v, g.configFile)
		},
	}
	cmd.SetOut(out)
	cmd.SetErr(out)

	flags := cmd.PersistentFlags()
	flags.StringVar(&g.configFile, "config", "", "config file (yaml, toml or json)")
	flags.StringVar(&g.envFile, "env-file", ".env", "file with environment variables to load")
	flags.String("log-level", "", "log level: debug, info, warn or error (default info)")
	flags.String("log-file", "", "also write logs to this file, rotated by size")

	cmd.AddCommand(newServeCommand(g))
	cmd.AddCommand(newMigrateCommand(out, g))
	cmd.AddCommand(newVersionCommand(out, build))
	return cmd
}

func newVersionCommand(out io.Writer, build BuildInfo) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(build)
			}

			_, err := fmt.Fprintf(out, "version=%s commit=%s build_time=%s\n", build.Version, build.Commit, build.BuildTime)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print version as JSON")
	return cmd
}
