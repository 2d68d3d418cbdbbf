package audithandler

import (
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"pontosync/internal/auth"
	"pontosync/internal/domain/audit"
	"pontosync/internal/transport/http/middleware"
)

type fakeLister struct {
	events []audit.Event
	filter audit.Filter
	limit  int
	offset int
}

func (f *fakeLister) List(ctx context.Context, filter audit.Filter, limit, offset int) ([]audit.Event, error) {
	f.filter, f.limit, f.offset = filter, limit, offset
	return f.events, nil
}

func (f *fakeLister) Count(ctx context.Context, filter audit.Filter) (int, error) {
	return len(f.events), nil
}

func router(lister Lister, role string) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := middleware.WithPrincipal(req.Context(), auth.Principal{Actor: "auditor", Role: role})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	NewHandler(lister).RegisterRoutes(r)
	return r
}

func TestListEventsPassesFilter(t *testing.T) {
	lister := &fakeLister{events: []audit.Event{{ID: "1", Action: audit.ActionImport}}}
	rec := httptest.NewRecorder()
	router(lister, auth.RolePayroll).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit/events?action=attendance.import&actor=trigger-key&limit=900", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Total-Count") != "1" {
		t.Fatalf("unexpected total header %q", rec.Header().Get("X-Total-Count"))
	}
	if lister.filter.Action != audit.ActionImport || lister.filter.Actor != "trigger-key" {
		t.Fatalf("filter not applied: %+v", lister.filter)
	}
	if lister.limit != 500 {
		t.Fatalf("expected limit capped at 500, got %d", lister.limit)
	}
}

func TestListEventsAcceptsPageParams(t *testing.T) {
	lister := &fakeLister{}
	rec := httptest.NewRecorder()
	router(lister, auth.RoleAdmin).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit/events?page=3&pageSize=25", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if lister.limit != 25 || lister.offset != 50 {
		t.Fatalf("expected limit 25 offset 50, got %d %d", lister.limit, lister.offset)
	}
}

func TestListEventsRequiresPermission(t *testing.T) {
	rec := httptest.NewRecorder()
	router(&fakeLister{}, auth.RoleOperator).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit/events", nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestExportWritesCSV(t *testing.T) {
	lister := &fakeLister{events: []audit.Event{{
		ID: "1", Actor: "ana", Action: audit.ActionPayrollSync, EntityType: "pay_period", EntityID: "p1",
		CreatedAt: time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC),
	}}}
	rec := httptest.NewRecorder()
	router(lister, auth.RoleAdmin).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit/events/export", nil))

	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "text/csv" {
		t.Fatalf("expected csv, got %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}
	rows, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 2 || rows[1][1] != "ana" || rows[1][7] != "2025-04-01T12:00:00Z" {
		t.Fatalf("unexpected rows %v", rows)
	}
}
