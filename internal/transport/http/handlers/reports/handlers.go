package reportshandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"pontosync/internal/auth"
	"pontosync/internal/domain/reports"
	"pontosync/internal/transport/http/api"
	"pontosync/internal/transport/http/middleware"
	"pontosync/internal/transport/http/shared"
)

type Source interface {
	Dashboard(ctx context.Context) (reports.Dashboard, error)
	ListJobRuns(ctx context.Context, filter reports.JobRunFilter, limit, offset int) ([]reports.JobRun, error)
	CountJobRuns(ctx context.Context, filter reports.JobRunFilter) (int, error)
	JobRunByID(ctx context.Context, runID string) (reports.JobRun, error)
}

type Handler struct {
	Source Source
}

func NewHandler(source Source) *Handler {
	return &Handler{Source: source}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermReportsRead)).Get("/dashboard", h.handleDashboard)
		r.With(middleware.RequirePermission(auth.PermReportsRead)).Get("/jobs", h.handleListJobRuns)
		r.With(middleware.RequirePermission(auth.PermReportsRead)).Get("/jobs/{runID}", h.handleGetJobRun)
	})
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	out, err := h.Source.Dashboard(r.Context())
	if err != nil {
		slog.Warn("dashboard failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "dashboard_failed", "failed to build dashboard", reqID)
		return
	}
	api.Success(w, out, reqID)
}

func (h *Handler) handleListJobRuns(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	query := r.URL.Query()
	page := shared.ParsePagination(r, 50, 200)

	v := shared.NewValidator()
	filter := reports.JobRunFilter{JobType: query.Get("jobType"), Status: query.Get("status")}
	if raw := query.Get("from"); raw != "" {
		if from, ok := v.Date("from", raw); ok {
			filter.StartedFrom = &from
		}
	}
	if raw := query.Get("to"); raw != "" {
		if to, ok := v.Date("to", raw); ok {
			filter.StartedTo = &to
		}
	}
	if v.Reject(w, reqID) {
		return
	}

	total, err := h.Source.CountJobRuns(r.Context(), filter)
	if err != nil {
		slog.Warn("job run count failed", "err", err)
	}
	runs, err := h.Source.ListJobRuns(r.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "job_runs_failed", "failed to list job runs", reqID)
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	api.Success(w, runs, reqID)
}

func (h *Handler) handleGetJobRun(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	runID := chi.URLParam(r, "runID")
	v := shared.NewValidator()
	v.UUID("runID", runID)
	if v.Reject(w, reqID) {
		return
	}
	run, err := h.Source.JobRunByID(r.Context(), runID)
	if errors.Is(err, reports.ErrRunNotFound) {
		api.Fail(w, http.StatusNotFound, "job_run_not_found", "job run not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "job_run_failed", "failed to load job run", reqID)
		return
	}
	api.Success(w, run, reqID)
}
