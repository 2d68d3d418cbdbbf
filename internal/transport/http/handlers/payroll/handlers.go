package payrollhandler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pontosync/internal/auth"
	"pontosync/internal/domain/payroll"
	"pontosync/internal/transport/http/api"
	"pontosync/internal/transport/http/middleware"
	"pontosync/internal/transport/http/shared"
)

type Syncer interface {
	SyncPeriod(ctx context.Context, periodID string) (payroll.SyncResult, error)
}

type Handler struct {
	Syncer Syncer
}

func NewHandler(syncer Syncer) *Handler {
	return &Handler{Syncer: syncer}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermPayrollSync)).Post("/periods/{periodID}/sync-time-balances", h.handleSyncTimeBalances)
	})
}

type syncResponse struct {
	payroll.SyncResult
	Message string `json:"message"`
}

func (h *Handler) handleSyncTimeBalances(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	periodID := chi.URLParam(r, "periodID")
	v := shared.NewValidator()
	v.UUID("periodID", periodID)
	if v.Reject(w, reqID) {
		return
	}

	result, err := h.Syncer.SyncPeriod(r.Context(), periodID)
	switch {
	case errors.Is(err, payroll.ErrPeriodNotFound):
		api.Fail(w, http.StatusNotFound, "period_not_found", "pay period not found", reqID)
		return
	case errors.Is(err, payroll.ErrPeriodClosed):
		api.Fail(w, http.StatusConflict, "period_closed", "pay period is closed or paid", reqID)
		return
	case errors.Is(err, payroll.ErrMissingRubric), errors.Is(err, payroll.ErrInvalidRubric):
		api.Fail(w, http.StatusUnprocessableEntity, "missing_rubric", err.Error(), reqID)
		return
	case err != nil:
		slog.Warn("payroll time sync failed", "err", err, "periodId", periodID, "requestId", reqID)
		api.FailWithDetails(w, http.StatusInternalServerError, "sync_failed", "time balance sync failed", result, reqID)
		return
	}

	api.Success(w, syncResponse{
		SyncResult: result,
		Message:    fmt.Sprintf("%d payslips updated with time balances", result.Processed),
	}, reqID)
}
