package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"pontosync/internal/app/server"
	"pontosync/internal/auth"
	"pontosync/internal/domain/balance"
	"pontosync/internal/domain/timeclock"
	"pontosync/internal/platform/config"
	"pontosync/internal/platform/db"
	"pontosync/internal/transport/http/shared"
)

func newMigrateCmd(root *rootOptions) *cobra.Command {
	var skipSeed bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and seed the payroll rubrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			return withPool(cmd.Context(), cfg, func(pool *pgxpool.Pool) error {
				if err := db.Migrate(cmd.Context(), pool); err != nil {
					return fmt.Errorf("migrations failed: %w", err)
				}
				if skipSeed {
					return nil
				}
				return db.Seed(cmd.Context(), pool, cfg)
			})
		},
	}
	cmd.Flags().BoolVar(&skipSeed, "skip-seed", false, "Do not create missing payroll rubrics")
	return cmd
}

type ingestOptions struct {
	dir       string
	pattern   string
	maxFiles  int
	batchSize int
}

func newIngestCmd(root *rootOptions) *cobra.Command {
	var opts ingestOptions
	cmd := &cobra.Command{
		Use:   "ingest [files...]",
		Short: "Import AFD exports from files or the archive directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && opts.dir == "" && os.Getenv("AFD_ARCHIVE_DIR") == "" {
				return errors.New("pass AFD files, --dir or set AFD_ARCHIVE_DIR")
			}
			return withServices(cmd, root, func(cfg *config.Config) {
				if opts.dir != "" {
					cfg.ArchiveDir = opts.dir
				}
				if opts.pattern != "" {
					cfg.ArchivePattern = opts.pattern
				}
				if opts.maxFiles > 0 {
					cfg.ImportMaxFiles = opts.maxFiles
				}
				if opts.batchSize > 0 {
					cfg.ImportBatchSize = opts.batchSize
				}
			}, func(ctx context.Context, services *server.Services) error {
				var (
					result timeclock.Result
					err    error
				)
				if len(args) > 0 {
					files, readErr := readFiles(args)
					if readErr != nil {
						return readErr
					}
					result, err = services.Engine.Import(ctx, files)
				} else {
					result, err = services.Engine.ImportArchive(ctx)
				}
				if printErr := printJSON(cmd.OutOrStdout(), result); printErr != nil {
					return printErr
				}
				return err
			})
		},
	}
	cmd.Flags().StringVar(&opts.dir, "dir", "", "Archive directory (default: $AFD_ARCHIVE_DIR)")
	cmd.Flags().StringVar(&opts.pattern, "pattern", "", "File glob inside the archive (default: $AFD_FILE_PATTERN)")
	cmd.Flags().IntVar(&opts.maxFiles, "max-files", 0, "Stop after this many files")
	cmd.Flags().IntVar(&opts.batchSize, "batch-size", 0, "Punches per insert batch")
	return cmd
}

func readFiles(paths []string) ([]timeclock.File, error) {
	files := make([]timeclock.File, 0, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		files = append(files, timeclock.File{Name: filepath.Base(path), Content: content})
	}
	return files, nil
}

func newNormalizeCmd(root *rootOptions) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Repair schedule assignments to one date-only row per worker and day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, root, nil, func(ctx context.Context, services *server.Services) error {
				result, err := services.Engine.Normalize(ctx, dryRun)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), result)
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report the repair without writing")
	return cmd
}

type periodFlags struct {
	worker string
	day    string
	month  string
}

func (p periodFlags) validate(allowDay bool) error {
	if _, err := uuid.Parse(strings.TrimSpace(p.worker)); err != nil {
		return fmt.Errorf("invalid --worker: %w", err)
	}
	if !allowDay {
		if p.month == "" {
			return errors.New("--month is required")
		}
		return nil
	}
	if (p.day == "") == (p.month == "") {
		return errors.New("exactly one of --day or --month is required")
	}
	return nil
}

func newBalanceCmd(root *rootOptions) *cobra.Command {
	var opts periodFlags
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Print a worker's daily or monthly time balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(true); err != nil {
				return err
			}
			return withServices(cmd, root, nil, func(ctx context.Context, services *server.Services) error {
				if opts.day != "" {
					day, err := shared.ParseDate(opts.day)
					if err != nil || day.IsZero() {
						return fmt.Errorf("invalid --day %q", opts.day)
					}
					out, err := services.Balances.DailyBalance(ctx, opts.worker, day)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.ErrOrStderr(), "balance %s\n", balance.FormatMinutes(out.BalanceMinutes))
					return printJSON(cmd.OutOrStdout(), out)
				}
				year, month, err := shared.ParseMonth(opts.month)
				if err != nil {
					return fmt.Errorf("invalid --month: %w", err)
				}
				out, err := services.Balances.MonthlyBalance(ctx, opts.worker, year, month)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "balance %s\n", balance.FormatMinutes(out.BalanceMinutes))
				return printJSON(cmd.OutOrStdout(), out)
			})
		},
	}
	cmd.Flags().StringVar(&opts.worker, "worker", "", "Worker id (required)")
	cmd.Flags().StringVar(&opts.day, "day", "", "Day as YYYY-MM-DD")
	cmd.Flags().StringVar(&opts.month, "month", "", "Month as YYYY-MM")
	_ = cmd.MarkFlagRequired("worker")
	return cmd
}

func newTimesheetCmd(root *rootOptions) *cobra.Command {
	var (
		opts periodFlags
		out  string
	)
	cmd := &cobra.Command{
		Use:   "timesheet",
		Short: "Render a worker's monthly timesheet as PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(false); err != nil {
				return err
			}
			year, month, err := shared.ParseMonth(opts.month)
			if err != nil {
				return fmt.Errorf("invalid --month: %w", err)
			}
			return withServices(cmd, root, nil, func(ctx context.Context, services *server.Services) error {
				name, err := services.Balances.WorkerName(ctx, opts.worker)
				if err != nil {
					return err
				}
				period, err := services.Balances.MonthlyBalance(ctx, opts.worker, year, month)
				if err != nil {
					return err
				}
				if out == "" {
					out = fmt.Sprintf("timesheet-%04d-%02d.pdf", year, int(month))
				}
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				if err := balance.RenderTimesheet(f, name, period); err != nil {
					_ = f.Close()
					return err
				}
				return f.Close()
			})
		},
	}
	cmd.Flags().StringVar(&opts.worker, "worker", "", "Worker id (required)")
	cmd.Flags().StringVar(&opts.month, "month", "", "Month as YYYY-MM (required)")
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output file")
	_ = cmd.MarkFlagRequired("worker")
	_ = cmd.MarkFlagRequired("month")
	return cmd
}

func newUnresolvedCmd(root *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "unresolved",
		Short: "List clock identifiers that match no worker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, root, nil, func(ctx context.Context, services *server.Services) error {
				out, err := services.Ingestor.Unresolved(ctx, limit)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), out)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum identifiers to list")
	return cmd
}

func newSyncCmd(root *rootOptions) *cobra.Command {
	var periodID string
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Push time balances of a pay period into its payslips",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := uuid.Parse(strings.TrimSpace(periodID)); err != nil {
				return fmt.Errorf("invalid --period: %w", err)
			}
			return withServices(cmd, root, nil, func(ctx context.Context, services *server.Services) error {
				result, err := services.Engine.SyncPeriod(ctx, periodID)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), result)
			})
		},
	}
	cmd.Flags().StringVar(&periodID, "period", "", "Pay period id (required)")
	_ = cmd.MarkFlagRequired("period")
	return cmd
}

func newHashKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-key <key>",
		Short: "Hash a trigger key for TRIGGER_KEY_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hashed, err := auth.HashKey(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hashed)
			return nil
		},
	}
}

func newTokenCmd() *cobra.Command {
	var (
		subject string
		role    string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an API token signed with JWT_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := config.Load().JWTSecret
			if secret == "" {
				return errors.New("JWT_SECRET is not set")
			}
			if _, ok := auth.RolePermissions[role]; !ok {
				return fmt.Errorf("unknown role %q", role)
			}
			token, err := auth.GenerateToken(secret, subject, role, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "Actor recorded in the audit trail (required)")
	cmd.Flags().StringVar(&role, "role", auth.RoleViewer, "Role granted by the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

func newPurgeCmd(root *rootOptions) *cobra.Command {
	var policy struct{ audit, jobRuns, rawLines int }
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Apply the data retention policy once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, root, func(cfg *config.Config) {
				if cmd.Flags().Changed("audit-days") {
					cfg.RetentionAuditDays = policy.audit
				}
				if cmd.Flags().Changed("job-run-days") {
					cfg.RetentionJobRunDays = policy.jobRuns
				}
				if cmd.Flags().Changed("raw-line-days") {
					cfg.RetentionRawLineDays = policy.rawLines
				}
			}, func(ctx context.Context, services *server.Services) error {
				if services.Engine.Retention == nil {
					return errors.New("no retention window configured")
				}
				out, err := services.Engine.PurgeExpired(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), out)
			})
		},
	}
	cmd.Flags().IntVar(&policy.audit, "audit-days", 0, "Keep audit events this many days (default: $RETENTION_AUDIT_DAYS)")
	cmd.Flags().IntVar(&policy.jobRuns, "job-run-days", 0, "Keep job runs this many days (default: $RETENTION_JOB_RUN_DAYS)")
	cmd.Flags().IntVar(&policy.rawLines, "raw-line-days", 0, "Keep raw AFD lines this many days (default: $RETENTION_RAW_LINE_DAYS)")
	return cmd
}
