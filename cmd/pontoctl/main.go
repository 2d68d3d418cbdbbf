package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"pontosync/internal/app/server"
	"pontosync/internal/platform/config"
	"pontosync/internal/platform/db"
	"pontosync/internal/platform/logging"
	"pontosync/internal/requestctx"
)

const cliActor = "pontoctl"

type rootOptions struct {
	databaseURL string
	logLevel    string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("pontoctl failed", "err", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts rootOptions
	cmd := &cobra.Command{
		Use:           "pontoctl",
		Short:         "Attendance import, balance and payroll sync operations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := opts.logLevel
			if level == "" {
				level = config.Load().LogLevel
			}
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), level, "text"))
		},
	}
	cmd.PersistentFlags().StringVar(&opts.databaseURL, "database-url", "", "Postgres URL (default: $DATABASE_URL)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (default: $LOG_LEVEL)")

	cmd.AddCommand(
		newMigrateCmd(&opts),
		newIngestCmd(&opts),
		newNormalizeCmd(&opts),
		newBalanceCmd(&opts),
		newTimesheetCmd(&opts),
		newUnresolvedCmd(&opts),
		newSyncCmd(&opts),
		newPurgeCmd(&opts),
		newHashKeyCmd(),
		newTokenCmd(),
	)
	return cmd
}

func loadConfig(opts *rootOptions) (config.Config, error) {
	cfg := config.Load()
	if opts.databaseURL != "" {
		cfg.DatabaseURL = opts.databaseURL
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// withPool connects to the database for the duration of run.
func withPool(ctx context.Context, cfg config.Config, run func(pool *pgxpool.Pool) error) error {
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return fmt.Errorf("db connect failed: %w", err)
	}
	defer pool.Close()
	return run(pool)
}

// withServices wires the domain services and runs fn as the CLI actor.
// The job runner stops when fn returns.
func withServices(cmd *cobra.Command, opts *rootOptions, tweak func(*config.Config), fn func(ctx context.Context, services *server.Services) error) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if tweak != nil {
		tweak(&cfg)
	}
	ctx := requestctx.WithActor(cmd.Context(), cliActor)
	return withPool(ctx, cfg, func(pool *pgxpool.Pool) error {
		runCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		services, err := server.Wire(runCtx, cfg, pool)
		if err != nil {
			return err
		}
		return fn(ctx, services)
	})
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
