package retention

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	CategoryAudit    = "audit"
	CategoryJobRuns  = "job_runs"
	CategoryRawLines = "raw_lines"
)

var ErrUnknownCategory = errors.New("unknown retention category")

type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Policy holds the retention window per category in days. Zero keeps
// the data forever.
type Policy struct {
	AuditDays   int
	JobRunDays  int
	RawLineDays int
}

func (p Policy) Enabled() bool {
	return p.AuditDays > 0 || p.JobRunDays > 0 || p.RawLineDays > 0
}

func (p Policy) days() map[string]int {
	return map[string]int{
		CategoryAudit:    p.AuditDays,
		CategoryJobRuns:  p.JobRunDays,
		CategoryRawLines: p.RawLineDays,
	}
}

// ApplyRetention purges one category older than cutoff. Raw AFD lines
// carry the worker's PIS or CPF; the punch itself is kept and only the
// line is blanked.
func ApplyRetention(ctx context.Context, db Execer, category string, cutoff time.Time) (int64, error) {
	var (
		tag pgconn.CommandTag
		err error
	)
	switch category {
	case CategoryAudit:
		tag, err = db.Exec(ctx, `
      DELETE FROM audit_events
      WHERE created_at < $1
    `, cutoff)
	case CategoryJobRuns:
		tag, err = db.Exec(ctx, `
      DELETE FROM job_runs
      WHERE started_at < $1 AND status <> 'running'
    `, cutoff)
	case CategoryRawLines:
		tag, err = db.Exec(ctx, `
      UPDATE time_records
      SET raw_line = ''
      WHERE raw_line <> '' AND record_date < $1::date
    `, cutoff)
	default:
		return 0, ErrUnknownCategory
	}
	return tag.RowsAffected(), err
}

type Service struct {
	db     Execer
	policy Policy
	now    func() time.Time
}

func New(db Execer, policy Policy) *Service {
	return &Service{db: db, policy: policy, now: time.Now}
}

func (s *Service) Policy() Policy {
	return s.policy
}

// Run applies every configured category and returns the rows touched per
// category. It stops at the first failure.
func (s *Service) Run(ctx context.Context) (map[string]int64, error) {
	out := make(map[string]int64)
	now := s.now()
	for _, category := range []string{CategoryAudit, CategoryJobRuns, CategoryRawLines} {
		days := s.policy.days()[category]
		if days <= 0 {
			continue
		}
		cutoff := now.AddDate(0, 0, -days)
		affected, err := ApplyRetention(ctx, s.db, category, cutoff)
		out[category] = affected
		if err != nil {
			return out, err
		}
		slog.Info("retention applied", "category", category, "cutoff", cutoff.Format(time.DateOnly), "rows", affected)
	}
	return out, nil
}
