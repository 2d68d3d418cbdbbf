package schedule

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{DB: pool}
}

// ListAssignments returns rows in insertion order so "first seen" is the
// oldest row.
func (s *Store) ListAssignments(ctx context.Context) ([]Assignment, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, worker_id, day, shift_id::text
    FROM schedule_assignments
    ORDER BY worker_id, created_at, id
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Assignment
	for rows.Next() {
		var a Assignment
		if err := rows.Scan(&a.ID, &a.WorkerID, &a.Day, &a.ShiftID); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ApplyPlan deletes losers before moving winners so a winner can take the
// exact timestamp a deleted duplicate held.
func (s *Store) ApplyPlan(ctx context.Context, plan Plan) error {
	return pgx.BeginFunc(ctx, s.DB, func(tx pgx.Tx) error {
		if len(plan.Deletes) > 0 {
			if _, err := tx.Exec(ctx, `DELETE FROM schedule_assignments WHERE id = ANY($1::uuid[])`, plan.Deletes); err != nil {
				return err
			}
		}
		for _, upd := range plan.Updates {
			if _, err := tx.Exec(ctx, `UPDATE schedule_assignments SET day = $1 WHERE id = $2`, upd.Day, upd.ID); err != nil {
				return err
			}
		}
		return nil
	})
}
