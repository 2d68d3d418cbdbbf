package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"pontosync/internal/app/engine"
	"pontosync/internal/domain/audit"
	"pontosync/internal/domain/balance"
	"pontosync/internal/domain/notifications"
	"pontosync/internal/domain/payroll"
	"pontosync/internal/domain/reports"
	"pontosync/internal/domain/retention"
	"pontosync/internal/domain/schedule"
	"pontosync/internal/domain/timeclock"
	"pontosync/internal/platform/config"
	"pontosync/internal/platform/crypto"
	"pontosync/internal/platform/db"
	"pontosync/internal/platform/email"
	"pontosync/internal/platform/jobs"
	"pontosync/internal/platform/metrics"
	"pontosync/internal/transport/http/api"
	attendancehandler "pontosync/internal/transport/http/handlers/attendance"
	audithandler "pontosync/internal/transport/http/handlers/audit"
	payrollhandler "pontosync/internal/transport/http/handlers/payroll"
	reportshandler "pontosync/internal/transport/http/handlers/reports"
	"pontosync/internal/transport/http/middleware"
)

const retentionInterval = 24 * time.Hour

type App struct {
	Config   config.Config
	DB       *pgxpool.Pool
	Router   http.Handler
	Services *Services
	cancel   context.CancelFunc
}

// Services holds the wired domain services shared by the HTTP server and
// the command line tool.
type Services struct {
	Ingestor   *timeclock.Ingestor
	Balances   *balance.Calculator
	Bridge     *payroll.Bridge
	Audit      *audit.Service
	Runner     *jobs.Runner
	Metrics    *metrics.Collector
	Engine     *engine.Engine
	Normalizer *schedule.Normalizer
}

// Wire builds the services on top of pool and starts the job runner. The
// runner stops when ctx ends.
func Wire(ctx context.Context, cfg config.Config, pool *pgxpool.Pool) (*Services, error) {
	sealer, err := crypto.New(cfg.DataEncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("encryption key: %w", err)
	}
	collector := metrics.New()

	ingestor := timeclock.NewIngestor(timeclock.NewStore(pool), timeclock.Options{
		BatchSize: cfg.ImportBatchSize,
		MaxFiles:  cfg.ImportMaxFiles,
	})
	normalizer := schedule.NewNormalizer(schedule.NewStore(pool))
	balances := balance.NewCalculator(balance.NewStore(pool))
	bridge := payroll.NewBridge(payroll.NewStore(pool), balances, sealer, payroll.Rates{
		OvertimeCode:       cfg.OvertimeEventCode,
		AbsenceCode:        cfg.AbsenceEventCode,
		OvertimeMultiplier: decimal.NewFromFloat(cfg.OvertimeMultiplier),
		AbsenceMultiplier:  decimal.NewFromFloat(cfg.AbsenceMultiplier),
		MonthlyHours:       decimal.NewFromFloat(cfg.MonthlyHoursBasis),
	}, cfg.PayrollSyncWorkers)
	auditService := audit.New(pool)

	runner := jobs.New(jobs.NewStore(pool), collector, cfg.JobTimeout)
	alerts := notifications.New(email.New(cfg), cfg.EmailFrom, cfg.AlertEmailTo)
	if alerts.Enabled() {
		runner.SetAlerter(alerts)
	}
	runner.Start(ctx)

	eng := &engine.Engine{
		Ingestor:   ingestor,
		Normalizer: normalizer,
		Bridge:     bridge,
		Runner:     runner,
		Audit:      auditService,
		Metrics:    collector,
	}
	policy := retention.Policy{
		AuditDays:   cfg.RetentionAuditDays,
		JobRunDays:  cfg.RetentionJobRunDays,
		RawLineDays: cfg.RetentionRawLineDays,
	}
	if policy.Enabled() {
		eng.Retention = retention.New(pool, policy)
	}
	if cfg.ArchiveDir != "" {
		eng.Source = timeclock.DirSource{Dir: cfg.ArchiveDir, Pattern: cfg.ArchivePattern}
	}

	return &Services{
		Ingestor:   ingestor,
		Balances:   balances,
		Bridge:     bridge,
		Audit:      auditService,
		Runner:     runner,
		Metrics:    collector,
		Engine:     eng,
		Normalizer: normalizer,
	}, nil
}

// Prepare applies migrations and the rubric seed as configured.
func Prepare(ctx context.Context, cfg config.Config, pool *pgxpool.Pool) error {
	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool); err != nil {
			return fmt.Errorf("migrations failed: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			return fmt.Errorf("seed failed: %w", err)
		}
	}
	return nil
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect failed: %w", err)
	}
	if err := Prepare(ctx, cfg, pool); err != nil {
		pool.Close()
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	services, err := Wire(runCtx, cfg, pool)
	if err != nil {
		cancel()
		pool.Close()
		return nil, err
	}
	services.Engine.ScheduleArchiveImports(runCtx, cfg.ImportInterval)
	services.Engine.ScheduleRetention(runCtx, retentionInterval)

	return &App{
		Config:   cfg,
		DB:       pool,
		Router:   NewRouter(cfg, pool, services),
		Services: services,
		cancel:   cancel,
	}, nil
}

func (a *App) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

func NewRouter(cfg config.Config, pool *pgxpool.Pool, services *Services) http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(services.Metrics))
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	if len(cfg.CORSOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type", "X-Api-Key", "X-Request-Id"},
			ExposedHeaders: []string{"X-Request-Id", "X-Total-Count"},
			MaxAge:         300,
		}))
	}
	router.Use(httprate.LimitByIP(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret, cfg.TriggerKeyHash))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, services.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
	})

	router.Route("/api/v1", func(r chi.Router) {
		attendanceHandler := attendancehandler.NewHandler(services.Engine, services.Ingestor, services.Balances, services.Audit)
		attendanceHandler.RegisterRoutes(r)

		payrollHandler := payrollhandler.NewHandler(services.Engine)
		payrollHandler.RegisterRoutes(r)

		auditHandler := audithandler.NewHandler(services.Audit)
		auditHandler.RegisterRoutes(r)

		reportsHandler := reportshandler.NewHandler(reports.NewStore(pool))
		reportsHandler.RegisterRoutes(r)
	})
	return router
}
