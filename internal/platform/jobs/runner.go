package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"pontosync/internal/platform/metrics"
)

const (
	JobImport       = "afd_import"
	JobNormalize    = "schedule_normalize"
	JobPayrollSync  = "payroll_time_sync"
	JobRetention    = "data_retention"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

var (
	ErrQueueFull     = errors.New("job queue full")
	ErrRunnerStopped = errors.New("job runner stopped")
)

// RunFunc does the work of one job and returns details stored with the run.
type RunFunc func(context.Context) (any, error)

type outcome struct {
	details any
	err     error
}

type job struct {
	Type   string
	Run    RunFunc
	result chan outcome
}

// Alerter is told about failed runs.
type Alerter interface {
	JobFailed(ctx context.Context, jobType, runID string, err error)
}

// Runner executes jobs one at a time on a single worker. Imports, schedule
// repairs and payroll syncs all go through it, so they never overlap.
type Runner struct {
	runs    RunStore
	metrics *metrics.Collector
	alerts  Alerter
	timeout time.Duration
	queue   chan job
	done    chan struct{}
}

func New(runs RunStore, collector *metrics.Collector, timeout time.Duration) *Runner {
	return &Runner{
		runs:    runs,
		metrics: collector,
		timeout: timeout,
		queue:   make(chan job, 32),
		done:    make(chan struct{}),
	}
}

// SetAlerter must be called before Start.
func (r *Runner) SetAlerter(alerts Alerter) {
	r.alerts = alerts
}

func (r *Runner) Start(ctx context.Context) {
	go r.worker(ctx)
}

// Enqueue schedules a job without waiting for it.
func (r *Runner) Enqueue(jobType string, run RunFunc) error {
	select {
	case r.queue <- job{Type: jobType, Run: run}:
		return nil
	default:
		slog.Warn("job queue full", "jobType", jobType)
		return ErrQueueFull
	}
}

// RunNow queues a job behind any running one and waits for its outcome.
func (r *Runner) RunNow(ctx context.Context, jobType string, run RunFunc) (any, error) {
	j := job{Type: jobType, Run: run, result: make(chan outcome, 1)}
	select {
	case r.queue <- j:
	case <-r.done:
		return nil, ErrRunnerStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case out := <-j.result:
		return out.details, out.err
	case <-r.done:
		return nil, ErrRunnerStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Schedule enqueues run every interval until ctx ends.
func (r *Runner) Schedule(ctx context.Context, interval time.Duration, jobType string, run RunFunc) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = r.Enqueue(jobType, run)
			}
		}
	}()
}

func (r *Runner) worker(ctx context.Context) {
	defer close(r.done)
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-r.queue:
			details, err := r.execute(ctx, j)
			if err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
			if j.result != nil {
				j.result <- outcome{details: details, err: err}
			}
		}
	}
}

func (r *Runner) execute(ctx context.Context, j job) (details any, err error) {
	runCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	runID, startErr := r.runs.Start(ctx, j.Type)
	if startErr != nil {
		slog.Warn("job run insert failed", "jobType", j.Type, "err", startErr)
	}

	started := time.Now()
	func() {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("job %s panicked: %v", j.Type, p)
			}
		}()
		details, err = j.Run(runCtx)
	}()

	status := StatusCompleted
	if err != nil {
		status = StatusFailed
		if r.metrics != nil {
			r.metrics.RecordJobFailure()
		}
	}
	slog.Info("job run finished", "jobType", j.Type, "runId", runID, "status", status, "duration", time.Since(started))
	if err != nil && r.alerts != nil {
		r.alerts.JobFailed(context.WithoutCancel(ctx), j.Type, runID, err)
	}

	if runID == "" {
		return details, err
	}
	payload, marshalErr := json.Marshal(details)
	if marshalErr != nil || string(payload) == "null" {
		payload = []byte("{}")
	}
	if finishErr := r.runs.Finish(ctx, runID, status, payload); finishErr != nil {
		slog.Warn("job run update failed", "runId", runID, "err", finishErr)
	}
	return details, err
}
