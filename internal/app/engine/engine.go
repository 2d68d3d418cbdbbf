package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"pontosync/internal/domain/audit"
	"pontosync/internal/domain/payroll"
	"pontosync/internal/domain/schedule"
	"pontosync/internal/domain/timeclock"
	"pontosync/internal/platform/jobs"
	"pontosync/internal/platform/metrics"
	"pontosync/internal/requestctx"
)

var ErrNoArchive = errors.New("no AFD archive configured")

type Ingestor interface {
	Ingest(ctx context.Context, files []timeclock.File) (timeclock.Result, error)
	IngestSource(ctx context.Context, src timeclock.Source) (timeclock.Result, error)
}

type Normalizer interface {
	Run(ctx context.Context, dryRun bool) (schedule.Result, error)
}

type Syncer interface {
	SyncPeriod(ctx context.Context, periodID string) (payroll.SyncResult, error)
}

type Retention interface {
	Run(ctx context.Context) (map[string]int64, error)
}

type Runner interface {
	RunNow(ctx context.Context, jobType string, run jobs.RunFunc) (any, error)
	Schedule(ctx context.Context, interval time.Duration, jobType string, run jobs.RunFunc)
}

// Engine runs the batch operations as recorded jobs. Every run goes
// through the single job runner, so an import never overlaps a schedule
// repair or a payroll sync.
type Engine struct {
	Ingestor   Ingestor
	Source     timeclock.Source
	Normalizer Normalizer
	Bridge     Syncer
	Retention  Retention
	Runner     Runner
	Audit      audit.Recorder
	Metrics    *metrics.Collector
}

func (e *Engine) Import(ctx context.Context, files []timeclock.File) (timeclock.Result, error) {
	return e.runImport(ctx, "upload", func(ctx context.Context) (timeclock.Result, error) {
		return e.Ingestor.Ingest(ctx, files)
	})
}

func (e *Engine) ImportArchive(ctx context.Context) (timeclock.Result, error) {
	if e.Source == nil {
		return timeclock.Result{}, ErrNoArchive
	}
	return e.runImport(ctx, "archive", func(ctx context.Context) (timeclock.Result, error) {
		return e.Ingestor.IngestSource(ctx, e.Source)
	})
}

// ScheduleArchiveImports queues an archive import every interval.
func (e *Engine) ScheduleArchiveImports(ctx context.Context, interval time.Duration) {
	if e.Source == nil || interval <= 0 {
		return
	}
	e.Runner.Schedule(ctx, interval, jobs.JobImport, func(ctx context.Context) (any, error) {
		result, err := e.Ingestor.IngestSource(ctx, e.Source)
		e.recordImport(result)
		return result, err
	})
}

func (e *Engine) runImport(ctx context.Context, origin string, run func(context.Context) (timeclock.Result, error)) (timeclock.Result, error) {
	details, err := e.Runner.RunNow(ctx, jobs.JobImport, func(ctx context.Context) (any, error) {
		result, err := run(ctx)
		e.recordImport(result)
		return result, err
	})
	result, _ := details.(timeclock.Result)
	e.record(ctx, audit.Entry{
		Action:     audit.ActionImport,
		EntityType: "time_records",
		EntityID:   origin,
		After:      result,
	}, err)
	return result, err
}

func (e *Engine) Normalize(ctx context.Context, dryRun bool) (schedule.Result, error) {
	details, err := e.Runner.RunNow(ctx, jobs.JobNormalize, func(ctx context.Context) (any, error) {
		return e.Normalizer.Run(ctx, dryRun)
	})
	result, _ := details.(schedule.Result)
	if !dryRun {
		e.record(ctx, audit.Entry{
			Action:     audit.ActionNormalize,
			EntityType: "schedule_assignments",
			After:      result,
		}, err)
	}
	return result, err
}

func (e *Engine) SyncPeriod(ctx context.Context, periodID string) (payroll.SyncResult, error) {
	details, err := e.Runner.RunNow(ctx, jobs.JobPayrollSync, func(ctx context.Context) (any, error) {
		return e.Bridge.SyncPeriod(ctx, periodID)
	})
	result, _ := details.(payroll.SyncResult)
	if e.Metrics != nil && err == nil {
		e.Metrics.RecordSync(result.Processed)
	}
	e.record(ctx, audit.Entry{
		Action:     audit.ActionPayrollSync,
		EntityType: "pay_period",
		EntityID:   periodID,
		After:      result,
	}, err)
	return result, err
}

func (e *Engine) PurgeExpired(ctx context.Context) (map[string]int64, error) {
	if e.Retention == nil {
		return map[string]int64{}, nil
	}
	details, err := e.Runner.RunNow(ctx, jobs.JobRetention, func(ctx context.Context) (any, error) {
		return e.Retention.Run(ctx)
	})
	result, _ := details.(map[string]int64)
	e.record(ctx, audit.Entry{
		Action:     audit.ActionRetention,
		EntityType: "retention",
		After:      result,
	}, err)
	return result, err
}

// ScheduleRetention queues a retention pass every interval.
func (e *Engine) ScheduleRetention(ctx context.Context, interval time.Duration) {
	if e.Retention == nil {
		return
	}
	e.Runner.Schedule(ctx, interval, jobs.JobRetention, func(ctx context.Context) (any, error) {
		return e.Retention.Run(ctx)
	})
}

func (e *Engine) recordImport(result timeclock.Result) {
	if e.Metrics != nil {
		e.Metrics.RecordImport(result.Imported, result.Skipped, result.Malformed)
	}
}

// record writes an audit entry for a finished run. Audit failures are
// logged and never fail the run.
func (e *Engine) record(ctx context.Context, entry audit.Entry, runErr error) {
	if e.Audit == nil {
		return
	}
	entry.Actor = requestctx.GetActor(ctx)
	entry.RequestID = requestctx.GetRequestID(ctx)
	entry.IP = requestctx.GetClientIP(ctx)
	if runErr != nil {
		entry.After = map[string]any{"result": entry.After, "error": runErr.Error()}
	}
	// The request may already be cancelled; the entry still belongs to it.
	if err := e.Audit.Record(context.WithoutCancel(ctx), entry); err != nil {
		slog.Warn("audit record failed", "action", entry.Action, "err", err)
	}
}
