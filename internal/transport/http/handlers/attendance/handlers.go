package attendancehandler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pontosync/internal/app/engine"
	"pontosync/internal/auth"
	"pontosync/internal/domain/audit"
	"pontosync/internal/domain/balance"
	"pontosync/internal/domain/schedule"
	"pontosync/internal/domain/timeclock"
	"pontosync/internal/requestctx"
	"pontosync/internal/transport/http/api"
	"pontosync/internal/transport/http/middleware"
	"pontosync/internal/transport/http/shared"
)

type Jobs interface {
	Import(ctx context.Context, files []timeclock.File) (timeclock.Result, error)
	ImportArchive(ctx context.Context) (timeclock.Result, error)
	Normalize(ctx context.Context, dryRun bool) (schedule.Result, error)
}

type Punches interface {
	AddManual(ctx context.Context, punch timeclock.ManualPunch) (bool, error)
	Unresolved(ctx context.Context, limit int) ([]timeclock.UnresolvedIdentifier, error)
}

type Balances interface {
	DailyBalance(ctx context.Context, workerID string, day time.Time) (balance.DayBalance, error)
	MonthlyBalance(ctx context.Context, workerID string, year int, month time.Month) (balance.PeriodBalance, error)
	WorkerName(ctx context.Context, workerID string) (string, error)
}

type Handler struct {
	Jobs     Jobs
	Punches  Punches
	Balances Balances
	Audit    audit.Recorder
}

func NewHandler(jobs Jobs, punches Punches, balances Balances, recorder audit.Recorder) *Handler {
	return &Handler{Jobs: jobs, Punches: punches, Balances: balances, Audit: recorder}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/attendance", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermAttendanceImport)).Post("/imports", h.handleImport)
		r.With(middleware.RequirePermission(auth.PermAttendanceImport)).Post("/imports/archive", h.handleImportArchive)
		r.With(middleware.RequirePermission(auth.PermAttendanceWrite)).Post("/punches", h.handleManualPunch)
		r.With(middleware.RequirePermission(auth.PermAttendanceRead)).Get("/unresolved", h.handleUnresolved)
		r.With(middleware.RequirePermission(auth.PermScheduleRepair)).Post("/schedules/normalize", h.handleNormalize)
		r.With(middleware.RequirePermission(auth.PermAttendanceRead)).Get("/workers/{workerID}/balance", h.handleBalance)
		r.With(middleware.RequirePermission(auth.PermAttendanceRead)).Get("/workers/{workerID}/timesheet.pdf", h.handleTimesheet)
	})
}

type importFile struct {
	Name          string `json:"name"`
	Content       string `json:"content"`
	ContentBase64 string `json:"contentBase64"`
}

type importRequest struct {
	Files []importFile `json:"files"`
}

func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload importRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	if len(payload.Files) == 0 {
		v.Add("files", "at least one file is required")
	}
	files := make([]timeclock.File, 0, len(payload.Files))
	for i, f := range payload.Files {
		field := fmt.Sprintf("files[%d]", i)
		v.Required(field+".name", f.Name, "is required")
		content := []byte(f.Content)
		if f.ContentBase64 != "" {
			decoded, err := base64.StdEncoding.DecodeString(f.ContentBase64)
			if err != nil {
				v.Add(field+".contentBase64", "must be valid base64")
				continue
			}
			content = decoded
		}
		files = append(files, timeclock.File{Name: strings.TrimSpace(f.Name), Content: content})
	}
	if v.Reject(w, reqID) {
		return
	}

	result, err := h.Jobs.Import(r.Context(), files)
	if err != nil {
		slog.Warn("afd import failed", "err", err, "requestId", reqID)
		api.FailWithDetails(w, http.StatusInternalServerError, "import_failed", "import stopped early; re-run to resume", result, reqID)
		return
	}
	api.Success(w, result, reqID)
}

func (h *Handler) handleImportArchive(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	result, err := h.Jobs.ImportArchive(r.Context())
	if errors.Is(err, engine.ErrNoArchive) {
		api.Fail(w, http.StatusConflict, "archive_not_configured", "no AFD archive directory configured", reqID)
		return
	}
	if err != nil {
		slog.Warn("afd archive import failed", "err", err, "requestId", reqID)
		api.FailWithDetails(w, http.StatusInternalServerError, "import_failed", "import stopped early; re-run to resume", result, reqID)
		return
	}
	api.Success(w, result, reqID)
}

type manualPunchRequest struct {
	WorkerID   string `json:"workerId"`
	Identifier string `json:"identifier"`
	Date       string `json:"date"`
	Time       string `json:"time"`
}

func (h *Handler) handleManualPunch(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload manualPunchRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	v := shared.NewValidator()
	v.UUID("workerId", payload.WorkerID)
	day, _ := v.Date("date", payload.Date)
	v.Required("time", payload.Time, "is required")
	if v.Reject(w, reqID) {
		return
	}

	punch := timeclock.ManualPunch{WorkerID: payload.WorkerID, Identifier: payload.Identifier, Date: day, Time: payload.Time}
	created, err := h.Punches.AddManual(r.Context(), punch)
	switch {
	case errors.Is(err, timeclock.ErrInvalidPunch):
		api.Fail(w, http.StatusBadRequest, "invalid_punch", err.Error(), reqID)
		return
	case errors.Is(err, timeclock.ErrWorkerNotFound):
		api.Fail(w, http.StatusNotFound, "worker_not_found", "worker not found", reqID)
		return
	case err != nil:
		slog.Warn("manual punch failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "punch_create_failed", "failed to record punch", reqID)
		return
	}

	if created && h.Audit != nil {
		if err := h.Audit.Record(r.Context(), audit.Entry{
			Actor:      requestctx.GetActor(r.Context()),
			Action:     audit.ActionManualPunch,
			EntityType: "time_record",
			EntityID:   payload.WorkerID,
			RequestID:  reqID,
			IP:         requestctx.GetClientIP(r.Context()),
			After:      payload,
		}); err != nil {
			slog.Warn("audit manual punch failed", "err", err)
		}
	}
	if !created {
		api.Success(w, map[string]any{"created": false}, reqID)
		return
	}
	api.Created(w, map[string]any{"created": true}, reqID)
}

func (h *Handler) handleUnresolved(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 100, 1000)
	out, err := h.Punches.Unresolved(r.Context(), page.Limit)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "unresolved_list_failed", "failed to list unresolved identifiers", reqID)
		return
	}
	api.Success(w, out, reqID)
}

func (h *Handler) handleNormalize(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	dryRun := false
	if raw := r.URL.Query().Get("dryRun"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "dryRun", Reason: "must be true or false"}})
			return
		}
		dryRun = parsed
	}
	result, err := h.Jobs.Normalize(r.Context(), dryRun)
	if err != nil {
		slog.Warn("schedule normalize failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "normalize_failed", "failed to normalize schedules", reqID)
		return
	}
	api.Success(w, result, reqID)
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	workerID := chi.URLParam(r, "workerID")
	query := r.URL.Query()

	v := shared.NewValidator()
	v.UUID("workerID", workerID)
	dayRaw, monthRaw := query.Get("day"), query.Get("month")
	if (dayRaw == "") == (monthRaw == "") {
		v.Add("day", "exactly one of day or month is required")
	}
	if v.Reject(w, reqID) {
		return
	}

	if dayRaw != "" {
		day, ok := v.Date("day", dayRaw)
		if !ok {
			v.Reject(w, reqID)
			return
		}
		out, err := h.Balances.DailyBalance(r.Context(), workerID, day)
		if errors.Is(err, balance.ErrNoSchedule) {
			api.Fail(w, http.StatusNotFound, "no_schedule", "no schedule assigned for this day", reqID)
			return
		}
		if err != nil {
			slog.Warn("daily balance failed", "err", err, "workerId", workerID)
			api.Fail(w, http.StatusInternalServerError, "balance_failed", "failed to compute balance", reqID)
			return
		}
		api.Success(w, out, reqID)
		return
	}

	year, month, ok := v.Month("month", monthRaw)
	if !ok {
		v.Reject(w, reqID)
		return
	}
	out, err := h.Balances.MonthlyBalance(r.Context(), workerID, year, month)
	if err != nil {
		slog.Warn("monthly balance failed", "err", err, "workerId", workerID)
		api.Fail(w, http.StatusInternalServerError, "balance_failed", "failed to compute balance", reqID)
		return
	}
	api.Success(w, out, reqID)
}

func (h *Handler) handleTimesheet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	workerID := chi.URLParam(r, "workerID")
	v := shared.NewValidator()
	v.UUID("workerID", workerID)
	year, month, _ := v.Month("month", r.URL.Query().Get("month"))
	if v.Reject(w, reqID) {
		return
	}

	name, err := h.Balances.WorkerName(r.Context(), workerID)
	if errors.Is(err, balance.ErrWorkerNotFound) {
		api.Fail(w, http.StatusNotFound, "worker_not_found", "worker not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "timesheet_failed", "failed to build timesheet", reqID)
		return
	}
	period, err := h.Balances.MonthlyBalance(r.Context(), workerID, year, month)
	if err != nil {
		slog.Warn("timesheet balance failed", "err", err, "workerId", workerID)
		api.Fail(w, http.StatusInternalServerError, "timesheet_failed", "failed to build timesheet", reqID)
		return
	}

	var buf bytes.Buffer
	if err := balance.RenderTimesheet(&buf, name, period); err != nil {
		slog.Warn("timesheet render failed", "err", err, "workerId", workerID)
		api.Fail(w, http.StatusInternalServerError, "timesheet_failed", "failed to build timesheet", reqID)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=timesheet-%04d-%02d.pdf", year, int(month)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Warn("timesheet write failed", "err", err)
	}
}
