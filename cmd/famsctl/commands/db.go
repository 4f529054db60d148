package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	dbfs "github.com/adolfosalasgomez3011/luxpro-apps/db"
	"github.com/adolfosalasgomez3011/luxpro-apps/internal/config"
	"github.com/adolfosalasgomez3011/luxpro-apps/internal/db"
)

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, conn, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer conn.Close()

			a.p.step("Applying migrations (%s)", conn.Dialect())
			applied, err := db.Migrate(ctx, conn, dbfs.Migrations)
			if err != nil {
				return a.p.fail("Migration failed", err)
			}
			if len(applied) == 0 {
				a.p.success("Schema is up to date")
				return nil
			}
			a.p.success("Applied %s", strings.Join(applied, ", "))
			return nil
		},
	}
}

func (a *app) seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the sample applicators (skips dni already present)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, conn, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer conn.Close()

			if _, err := db.Migrate(ctx, conn, dbfs.Migrations); err != nil {
				return a.p.fail("Migration failed", err)
			}
			n, err := db.Seed(ctx, conn, dbfs.SeedFiles)
			if err != nil {
				return a.p.fail("Seed failed", err)
			}
			a.p.success("Seeded %d contractors", n)
			return nil
		},
	}
}

func (a *app) backupCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "backup [dst]",
		Short: "Write a consistent copy of the SQLite database (default <db>.bak)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, conn, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer conn.Close()
			if conn.Dialect() != db.DialectSQLite {
				return a.p.fail("Backup needs SQLite", fmt.Errorf("driver is %s", conn.Dialect()), "Use pg_dump for PostgreSQL.")
			}

			dst := sqlitePath(cfg) + ".bak"
			if len(args) == 1 {
				dst = args[0]
			}
			if _, err := os.Stat(dst); err == nil {
				if !force {
					return a.p.fail("Backup target exists", fmt.Errorf("%s already exists", dst), "Pass --force to overwrite it.")
				}
				if err := os.Remove(dst); err != nil {
					return a.p.fail("Backup failed", err)
				}
			}

			// VACUUM INTO snapshots a live database without a file-level copy.
			if _, err := conn.Exec(ctx, `VACUUM INTO ?`, dst); err != nil {
				return a.p.fail("Backup failed", err)
			}
			a.p.success("Database backed up to %s", dst)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing backup file")
	return cmd
}

func (a *app) restoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore [src]",
		Short: "Replace the SQLite database with a backup (default <db>.bak)",
		Long:  "Replace the SQLite database file with a backup. Stop the server first.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			dialect, err := db.ParseDialect(cfg.Database.Driver)
			if err != nil {
				return a.p.fail("Invalid database driver", err)
			}
			if dialect != db.DialectSQLite {
				return a.p.fail("Restore needs SQLite", fmt.Errorf("driver is %s", dialect), "Use pg_restore for PostgreSQL.")
			}

			dst := sqlitePath(cfg)
			src := dst + ".bak"
			if len(args) == 1 {
				src = args[0]
			}
			if err := copyFile(src, dst); err != nil {
				return a.p.fail("Restore failed", err)
			}
			// Stale journal files would be replayed over the restored copy.
			for _, suffix := range []string{"-wal", "-shm", "-journal"} {
				if err := os.Remove(dst + suffix); err != nil && !errors.Is(err, os.ErrNotExist) {
					a.p.warning("could not remove %s: %v", dst+suffix, err)
				}
			}
			a.p.success("Database restored from %s", src)
			return nil
		},
	}
}

// sqlitePath extracts the file path from a bare path or file: URI DSN.
func sqlitePath(cfg *config.Config) string {
	p := strings.TrimPrefix(cfg.Database.DSN, "file:")
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	return p
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp := dst + ".restore"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}
