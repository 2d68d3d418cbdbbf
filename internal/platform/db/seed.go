package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"pontosync/internal/platform/config"
)

type catalogEntry struct {
	Code string
	Name string
	Kind string
}

// Seed makes sure the two rubrics the time balance sync depends on exist.
// Existing rows are never renamed.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	entries := []catalogEntry{
		{Code: cfg.OvertimeEventCode, Name: "Horas extras 50%", Kind: "earning"},
		{Code: cfg.AbsenceEventCode, Name: "Faltas e atrasos", Kind: "deduction"},
	}
	for _, entry := range entries {
		if _, err := pool.Exec(ctx, `
      INSERT INTO payroll_events (code, name, kind)
      VALUES ($1,$2,$3)
      ON CONFLICT (code) DO NOTHING
    `, entry.Code, entry.Name, entry.Kind); err != nil {
			return err
		}
	}
	return nil
}
