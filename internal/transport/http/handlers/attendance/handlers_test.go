package attendancehandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"pontosync/internal/app/engine"
	"pontosync/internal/auth"
	"pontosync/internal/domain/audit"
	"pontosync/internal/domain/balance"
	"pontosync/internal/domain/schedule"
	"pontosync/internal/domain/timeclock"
	"pontosync/internal/transport/http/middleware"
)

const workerID = "5b0f3b1e-7c4e-4a8f-9d3e-2f1b8c9a0d11"

type fakeJobs struct {
	files      []timeclock.File
	archiveErr error
	dryRun     *bool
}

func (f *fakeJobs) Import(ctx context.Context, files []timeclock.File) (timeclock.Result, error) {
	f.files = files
	return timeclock.Result{Files: len(files), Imported: 2}, nil
}

func (f *fakeJobs) ImportArchive(ctx context.Context) (timeclock.Result, error) {
	return timeclock.Result{}, f.archiveErr
}

func (f *fakeJobs) Normalize(ctx context.Context, dryRun bool) (schedule.Result, error) {
	f.dryRun = &dryRun
	return schedule.Result{Deleted: 1, DryRun: dryRun}, nil
}

type fakePunches struct {
	created bool
	err     error
}

func (f *fakePunches) AddManual(ctx context.Context, punch timeclock.ManualPunch) (bool, error) {
	return f.created, f.err
}

func (f *fakePunches) Unresolved(ctx context.Context, limit int) ([]timeclock.UnresolvedIdentifier, error) {
	return []timeclock.UnresolvedIdentifier{{Identifier: "099999999999", Records: limit}}, nil
}

type fakeBalances struct{}

func (fakeBalances) DailyBalance(ctx context.Context, workerID string, day time.Time) (balance.DayBalance, error) {
	if day.Day() == 16 {
		return balance.DayBalance{}, balance.ErrNoSchedule
	}
	return balance.DayBalance{WorkerID: workerID, Day: day.Format("2006-01-02"), ExpectedMinutes: 528, WorkedMinutes: 528}, nil
}

func (fakeBalances) MonthlyBalance(ctx context.Context, workerID string, year int, month time.Month) (balance.PeriodBalance, error) {
	return balance.PeriodBalance{WorkerID: workerID, From: "2025-03-01", To: "2025-03-31", BalanceMinutes: -45, Days: []balance.DayBalance{}}, nil
}

func (fakeBalances) WorkerName(ctx context.Context, workerID string) (string, error) {
	return "Maria", nil
}

type memoryAudit struct{ entries []audit.Entry }

func (m *memoryAudit) Record(ctx context.Context, entry audit.Entry) error {
	m.entries = append(m.entries, entry)
	return nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func newRouter(h *Handler, role string) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if role != "" {
				req = req.WithContext(middleware.WithPrincipal(req.Context(), auth.Principal{Actor: "tester", Role: role}))
			}
			next.ServeHTTP(w, req)
		})
	})
	h.RegisterRoutes(r)
	return r
}

func do(t *testing.T, router http.Handler, method, url string, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, url, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return rec, env
}

func TestImportDecodesFiles(t *testing.T) {
	jobs := &fakeJobs{}
	router := newRouter(NewHandler(jobs, &fakePunches{}, fakeBalances{}, nil), auth.RoleOperator)

	body := `{"files":[{"name":"a.txt","content":"line"},{"name":"b.txt","contentBase64":"6Q=="}]}`
	rec, env := do(t, router, http.MethodPost, "/attendance/imports", body)
	if rec.Code != http.StatusOK || !env.Success {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	if len(jobs.files) != 2 || string(jobs.files[0].Content) != "line" || !bytes.Equal(jobs.files[1].Content, []byte{0xe9}) {
		t.Fatalf("unexpected files %+v", jobs.files)
	}
}

func TestImportValidation(t *testing.T) {
	router := newRouter(NewHandler(&fakeJobs{}, &fakePunches{}, fakeBalances{}, nil), auth.RoleOperator)
	for _, body := range []string{`{"files":[]}`, `{"files":[{"name":"","content":"x"}]}`, `{"files":[{"name":"a","contentBase64":"%%"}]}`, `nope`} {
		rec, _ := do(t, router, http.MethodPost, "/attendance/imports", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestImportRequiresPermission(t *testing.T) {
	router := newRouter(NewHandler(&fakeJobs{}, &fakePunches{}, fakeBalances{}, nil), auth.RoleViewer)
	rec, env := do(t, router, http.MethodPost, "/attendance/imports", `{"files":[{"name":"a","content":"x"}]}`)
	if rec.Code != http.StatusForbidden || env.Error == nil || env.Error.Code != "forbidden" {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestImportArchiveNotConfigured(t *testing.T) {
	router := newRouter(NewHandler(&fakeJobs{archiveErr: engine.ErrNoArchive}, &fakePunches{}, fakeBalances{}, nil), auth.RoleIntegration)
	rec, env := do(t, router, http.MethodPost, "/attendance/imports/archive", "")
	if rec.Code != http.StatusConflict || env.Error.Code != "archive_not_configured" {
		t.Fatalf("expected 409, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestBalanceDayAndNoSchedule(t *testing.T) {
	router := newRouter(NewHandler(&fakeJobs{}, &fakePunches{}, fakeBalances{}, nil), auth.RoleViewer)

	rec, env := do(t, router, http.MethodGet, "/attendance/workers/"+workerID+"/balance?day=2025-03-10", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	var day balance.DayBalance
	if err := json.Unmarshal(env.Data, &day); err != nil || day.ExpectedMinutes != 528 || day.Day != "2025-03-10" {
		t.Fatalf("unexpected day balance %+v %v", day, err)
	}

	rec, env = do(t, router, http.MethodGet, "/attendance/workers/"+workerID+"/balance?day=2025-03-16", "")
	if rec.Code != http.StatusNotFound || env.Error.Code != "no_schedule" {
		t.Fatalf("expected 404 no_schedule, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestBalanceMonthAndValidation(t *testing.T) {
	router := newRouter(NewHandler(&fakeJobs{}, &fakePunches{}, fakeBalances{}, nil), auth.RoleViewer)

	rec, env := do(t, router, http.MethodGet, "/attendance/workers/"+workerID+"/balance?month=2025-03", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var period balance.PeriodBalance
	if err := json.Unmarshal(env.Data, &period); err != nil || period.BalanceMinutes != -45 {
		t.Fatalf("unexpected period %+v %v", period, err)
	}

	for _, url := range []string{
		"/attendance/workers/" + workerID + "/balance",
		"/attendance/workers/" + workerID + "/balance?day=2025-03-10&month=2025-03",
		"/attendance/workers/" + workerID + "/balance?month=2025-3x",
		"/attendance/workers/not-an-id/balance?day=2025-03-10",
	} {
		if rec, _ := do(t, router, http.MethodGet, url, ""); rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", url, rec.Code)
		}
	}
}

func TestTimesheetPDF(t *testing.T) {
	router := newRouter(NewHandler(&fakeJobs{}, &fakePunches{}, fakeBalances{}, nil), auth.RoleViewer)
	rec, _ := do(t, router, http.MethodGet, "/attendance/workers/"+workerID+"/timesheet.pdf?month=2025-03", "")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "application/pdf" {
		t.Fatalf("expected pdf, got %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Fatal("expected PDF body")
	}
}

func TestNormalizeDryRunFlag(t *testing.T) {
	jobs := &fakeJobs{}
	router := newRouter(NewHandler(jobs, &fakePunches{}, fakeBalances{}, nil), auth.RoleOperator)
	rec, _ := do(t, router, http.MethodPost, "/attendance/schedules/normalize?dryRun=true", "")
	if rec.Code != http.StatusOK || jobs.dryRun == nil || !*jobs.dryRun {
		t.Fatalf("expected dry run, got %d", rec.Code)
	}
	if rec, _ := do(t, router, http.MethodPost, "/attendance/schedules/normalize?dryRun=maybe", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestManualPunch(t *testing.T) {
	trail := &memoryAudit{}
	punches := &fakePunches{created: true}
	router := newRouter(NewHandler(&fakeJobs{}, punches, fakeBalances{}, trail), auth.RoleOperator)

	body := `{"workerId":"` + workerID + `","date":"2025-03-10","time":"08:00"}`
	rec, _ := do(t, router, http.MethodPost, "/attendance/punches", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d %s", rec.Code, rec.Body.String())
	}
	if len(trail.entries) != 1 || trail.entries[0].Action != audit.ActionManualPunch || trail.entries[0].Actor != "tester" {
		t.Fatalf("unexpected audit %+v", trail.entries)
	}

	punches.created = false
	if rec, _ := do(t, router, http.MethodPost, "/attendance/punches", body); rec.Code != http.StatusOK {
		t.Fatalf("expected duplicate to answer 200, got %d", rec.Code)
	}
	if len(trail.entries) != 1 {
		t.Fatal("duplicate must not be audited")
	}

	punches.err = timeclock.ErrWorkerNotFound
	if rec, _ := do(t, router, http.MethodPost, "/attendance/punches", body); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	punches.err = errors.Join(timeclock.ErrInvalidPunch, errors.New("bad time"))
	if rec, _ := do(t, router, http.MethodPost, "/attendance/punches", body); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUnresolvedUsesLimit(t *testing.T) {
	router := newRouter(NewHandler(&fakeJobs{}, &fakePunches{}, fakeBalances{}, nil), auth.RoleViewer)
	rec, env := do(t, router, http.MethodGet, "/attendance/unresolved?limit=7", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var out []timeclock.UnresolvedIdentifier
	if err := json.Unmarshal(env.Data, &out); err != nil || len(out) != 1 || out[0].Records != 7 {
		t.Fatalf("unexpected unresolved %+v %v", out, err)
	}
}
