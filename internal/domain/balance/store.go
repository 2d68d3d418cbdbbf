package balance

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{DB: pool}
}

func (s *Store) ListAssignments(ctx context.Context, workerID string, from, to time.Time) ([]Assignment, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT a.day, s.id::text, s.name, s.start_time, s.end_time, s.break_minutes
    FROM schedule_assignments a
    LEFT JOIN shift_templates s ON s.id = a.shift_id
    WHERE a.worker_id = $1 AND a.day >= $2 AND a.day < $3
    ORDER BY a.created_at, a.id
  `, workerID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Assignment
	for rows.Next() {
		var a Assignment
		var shiftID, name, start, end pgtype.Text
		var breakMinutes pgtype.Int4
		if err := rows.Scan(&a.Day, &shiftID, &name, &start, &end, &breakMinutes); err != nil {
			return nil, err
		}
		if shiftID.Valid {
			a.Shift = &Shift{
				ID:           shiftID.String,
				Name:         name.String,
				Start:        start.String,
				End:          end.String,
				BreakMinutes: int(breakMinutes.Int32),
			}
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) ListPunches(ctx context.Context, workerID string, first, last time.Time) ([]Punch, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT record_date, record_time
    FROM time_records
    WHERE worker_id = $1 AND record_date BETWEEN $2 AND $3
    ORDER BY record_date, record_time
  `, workerID, calendarDate(first), calendarDate(last))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Punch
	for rows.Next() {
		var p Punch
		if err := rows.Scan(&p.Date, &p.Time); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) WorkerName(ctx context.Context, workerID string) (string, error) {
	var name string
	err := s.DB.QueryRow(ctx, `SELECT name FROM workers WHERE id = $1`, workerID).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrWorkerNotFound
	}
	return name, err
}

func calendarDate(t time.Time) pgtype.Date {
	y, m, d := t.Date()
	return pgtype.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
}
