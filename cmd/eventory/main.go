package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/eventory/internal/clock"
	"github.com/smallbiznis/eventory/internal/config"
	"github.com/smallbiznis/eventory/internal/jobmetrics"
	"github.com/smallbiznis/eventory/internal/migration"
	"github.com/smallbiznis/eventory/internal/observability"
	"github.com/smallbiznis/eventory/internal/scheduler"
	"github.com/smallbiznis/eventory/internal/seed"
	"github.com/smallbiznis/eventory/internal/server"
	"github.com/smallbiznis/eventory/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "eventory",
		Short:         "Event asset rental and logistics backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), workerCmd(), migrateCmd(), seedCmd())
	return root
}

// infrastructure is shared by every long running process.
func infrastructure() fx.Option {
	return fx.Options(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
	)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			fx.New(
				infrastructure(),
				migration.Module,
				server.Services,
				server.Module,
			).Run()
			return nil
		},
	}
}

func workerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run scheduled jobs (overdue invoices, notification retries)",
		RunE: func(cmd *cobra.Command, args []string) error {
			fx.New(
				infrastructure(),
				server.Services,
				fx.Provide(jobmetrics.NewPusher),
				scheduler.Module,
			).Run()
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Ensure the default platform and its first admin exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				seeder *seed.Seeder
				log    *zap.Logger
			)
			return runOnce(cmd.Context(), func(ctx context.Context) error {
				result, err := seeder.Run(ctx)
				if err != nil {
					return err
				}
				log.Info("seed complete",
					zap.String("platform", result.Platform.Slug),
					zap.Bool("platform_created", result.PlatformCreated),
					zap.String("admin", result.Admin.Email),
					zap.Bool("admin_created", result.AdminCreated),
				)
				return nil
			},
				infrastructure(),
				server.Services,
				seed.Module,
				fx.Populate(&seeder, &log),
			)
		},
	}
}

// runOnce starts an fx app, runs fn and stops the app again.
func runOnce(parent context.Context, fn func(ctx context.Context) error, opts ...fx.Option) error {
	if parent == nil {
		parent = context.Background()
	}
	app := fx.New(append(opts, fx.NopLogger)...)
	if err := app.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(parent, 30*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}

	runErr := fn(parent)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
