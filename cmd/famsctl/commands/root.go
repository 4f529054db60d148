// Package commands implements famsctl, the operator CLI for database
// maintenance and quick directory queries.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/adolfosalasgomez3011/luxpro-apps/internal/config"
	"github.com/adolfosalasgomez3011/luxpro-apps/internal/db"
)

type app struct {
	configPath string
	verbose    bool
	p          printer
}

// NewRootCmd builds a fresh command tree.
func NewRootCmd(version, buildTime string) *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:     "famsctl",
		Short:   "famsctl - FAMS directory maintenance",
		Long:    "famsctl applies migrations, seeds sample applicators, backs up the\nSQLite database and runs quick queries against the contractor directory.",
		Version: fmt.Sprintf("%s (built: %s)", version, buildTime),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.p = printer{out: cmd.OutOrStdout(), err: cmd.ErrOrStderr()}
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to config YAML file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log store activity to stderr")

	root.AddCommand(
		a.migrateCmd(),
		a.seedCmd(),
		a.backupCmd(),
		a.restoreCmd(),
		a.contractorsCmd(),
		a.statsCmd(),
		a.recomputeCmd(),
	)
	return root
}

func (a *app) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return nil, a.p.fail("Failed to load config", err, "Check --config and the FAMS_* environment variables.")
	}
	return cfg, nil
}

func (a *app) logger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	if !a.verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return config.NewLogger(config.LogConfig{Level: "debug", Format: cfg.Log.Format}, cmd.ErrOrStderr())
}

// open loads config and connects to the configured database. The caller
// closes the returned handle.
func (a *app) open(ctx context.Context) (*config.Config, *db.DB, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	dialect, err := db.ParseDialect(cfg.Database.Driver)
	if err != nil {
		return nil, nil, a.p.fail("Invalid database driver", err)
	}
	conn, err := db.New(ctx, dialect, cfg.Database.DSN)
	if err != nil {
		return nil, nil, a.p.fail("Failed to open database", err, "Is the database reachable and the DSN correct?")
	}
	return cfg, conn, nil
}
