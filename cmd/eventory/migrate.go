package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"

	"github.com/smallbiznis/eventory/internal/config"
	"github.com/smallbiznis/eventory/internal/migration"
	"github.com/smallbiznis/eventory/internal/observability"
	"github.com/smallbiznis/eventory/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back applied migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSQL(cmd.Context(), func(conn *sql.DB, log *zap.Logger) error {
				if err := migration.Down(conn, steps); err != nil {
					return err
				}
				log.Info("migrations rolled back", zap.Int("steps", steps))
				return nil
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withSQL(cmd.Context(), func(conn *sql.DB, log *zap.Logger) error {
					if err := migration.Up(conn); err != nil {
						return err
					}
					log.Info("migrations applied")
					return nil
				})
			},
		},
		down,
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied migration version",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withSQL(cmd.Context(), func(conn *sql.DB, _ *zap.Logger) error {
					version, dirty, err := migration.Version(conn)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%t\n", version, dirty)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "guard [dir]",
			Short: "Reject destructive statements in up migrations",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				var fsys fs.FS = migration.Migrations()
				if len(args) == 1 {
					fsys = os.DirFS(args[0])
				}
				findings, err := migration.Scan(fsys)
				if err != nil {
					return err
				}
				for _, finding := range findings {
					fmt.Fprintln(cmd.ErrOrStderr(), finding.String())
				}
				if len(findings) > 0 {
					return fmt.Errorf("%d destructive statement(s) found; annotate with %q if intended", len(findings), migration.AllowMarker)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations ok")
				return nil
			},
		},
	)
	return cmd
}

// withSQL opens the configured database without the service graph.
func withSQL(parent context.Context, fn func(conn *sql.DB, log *zap.Logger) error) error {
	var (
		conn *gorm.DB
		log  *zap.Logger
	)
	return runOnce(parent, func(ctx context.Context) error {
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return fn(sqlDB, log.Named("migration"))
	},
		config.Module,
		observability.Module,
		db.Module,
		fx.Populate(&conn, &log),
	)
}
