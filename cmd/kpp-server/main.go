package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	_ "time/tzdata"

	"github.com/spf13/cobra"

	"github.com/icap-ethiopia/kpp/internal/config"
	"github.com/icap-ethiopia/kpp/internal/domain/forms"
	"github.com/icap-ethiopia/kpp/internal/platform/db"
	"github.com/icap-ethiopia/kpp/migrations"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "kpp-server",
		Short: "Backend for the KPP, SNS and Transfer Out extensions of OpenMRS",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(conceptsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

// migrationsFS prefers an on-disk directory so operators can test new SQL
// without rebuilding.
func migrationsFS(dir string) fs.FS {
	if dir == "" {
		return migrations.FS
	}
	return os.DirFS(dir)
}

func openMigrator(ctx context.Context, cmd *cobra.Command) (*db.Migrator, func(), error) {
	dir, _ := cmd.Flags().GetString("dir")

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, nil, fmt.Errorf("DATABASE_URL is required for migrations")
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, nil, err
	}
	migrator, err := db.NewMigrator(pool, migrationsFS(dir))
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	return migrator, func() {
		migrator.Close()
		pool.Close()
	}, nil
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run submission ledger migrations",
	}
	cmd.PersistentFlags().String("dir", "", "Read migrations from this directory instead of the embedded set")

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			migrator, closeFn, err := openMigrator(context.Background(), cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			version, err := migrator.Up()
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Ledger schema at version %d.\n", version)
			return nil
		},
	})

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			migrator, closeFn, err := openMigrator(context.Background(), cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			version, err := migrator.Down(steps)
			if err != nil {
				return fmt.Errorf("rollback failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Ledger schema at version %d.\n", version)
			return nil
		},
	}
	downCmd.Flags().Int("steps", 1, "Number of migrations to roll back")
	cmd.AddCommand(downCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show the applied migration version",
		RunE: func(cmd *cobra.Command, args []string) error {
			migrator, closeFn, err := openMigrator(context.Background(), cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			version, dirty, err := migrator.Version()
			if err != nil {
				return fmt.Errorf("failed to read migration version: %w", err)
			}
			state := "clean"
			if dirty {
				state = "dirty, fix the schema and re-run"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d (%s)\n", version, state)
			return nil
		},
	})
	return cmd
}

func conceptsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "concepts",
		Short: "Inspect the form concept maps",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Validate concept UUIDs and list concepts shared between fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			reports, err := forms.NewRegistry(cfg.EncounterTypes).CheckConcepts()
			printConceptReports(cmd, reports)
			return err
		},
	})
	return cmd
}

func printConceptReports(cmd *cobra.Command, reports []forms.ConceptReport) {
	out := cmd.OutOrStdout()
	for _, r := range reports {
		status := "ok"
		if r.Err != nil {
			status = "invalid: " + r.Err.Error()
		}
		fmt.Fprintf(out, "%-20s %3d fields  %s\n", r.Workspace, r.Fields, status)

		concepts := make([]string, 0, len(r.Duplicates))
		for c := range r.Duplicates {
			concepts = append(concepts, c)
		}
		sort.Strings(concepts)
		for _, c := range concepts {
			fmt.Fprintf(out, "  shared %s: %s\n", c, strings.Join(r.Duplicates[c], ", "))
		}
	}
}
