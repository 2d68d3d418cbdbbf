package payroll

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{DB: pool}
}

func (s *Store) GetPeriod(ctx context.Context, periodID string) (Period, error) {
	var p Period
	err := s.DB.QueryRow(ctx, `
    SELECT id::text, name, start_date, end_date, status
    FROM pay_periods
    WHERE id = $1
  `, periodID).Scan(&p.ID, &p.Name, &p.StartDate, &p.EndDate, &p.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return Period{}, ErrPeriodNotFound
	}
	return p, err
}

func (s *Store) EventsByCode(ctx context.Context, codes ...string) (map[string]Event, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT code, name, kind
    FROM payroll_events
    WHERE code = ANY($1)
  `, codes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]Event, len(codes))
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Code, &e.Name, &e.Kind); err != nil {
			return nil, err
		}
		out[e.Code] = e
	}
	return out, rows.Err()
}

// ListPeriodPayslips joins each payslip with the newest active contract of
// its worker, if any.
func (s *Store) ListPeriodPayslips(ctx context.Context, periodID string) ([]PayslipWorker, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT p.id::text, p.worker_id::text, c.base_salary::text, c.base_salary_enc
    FROM payslips p
    LEFT JOIN LATERAL (
      SELECT base_salary, base_salary_enc
      FROM contracts
      WHERE worker_id = p.worker_id AND active
      ORDER BY start_date DESC, created_at DESC
      LIMIT 1
    ) c ON TRUE
    WHERE p.period_id = $1
    ORDER BY p.id
  `, periodID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PayslipWorker
	for rows.Next() {
		var slip PayslipWorker
		var salary pgtype.Text
		if err := rows.Scan(&slip.PayslipID, &slip.WorkerID, &salary, &slip.BaseSalaryEnc); err != nil {
			return nil, err
		}
		if salary.Valid {
			value, err := decimal.NewFromString(salary.String)
			if err != nil {
				return nil, err
			}
			slip.BaseSalary = &value
		}
		out = append(out, slip)
	}
	return out, rows.Err()
}

func (s *Store) ApplyLineItem(ctx context.Context, periodID, payslipID string, item LineItem, removeCode string) (Totals, error) {
	var totals Totals
	err := pgx.BeginFunc(ctx, s.DB, func(tx pgx.Tx) error {
		var status string
		if err := tx.QueryRow(ctx, `SELECT status FROM pay_periods WHERE id = $1 FOR SHARE`, periodID).Scan(&status); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrPeriodNotFound
			}
			return err
		}
		if status != PeriodStatusOpen {
			return ErrPeriodClosed
		}
		// Serializes concurrent syncs of the same payslip.
		if _, err := tx.Exec(ctx, `SELECT id FROM payslips WHERE id = $1 FOR UPDATE`, payslipID); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `
      INSERT INTO payroll_line_items (payslip_id, event_code, kind, value, reference_qty)
      VALUES ($1,$2,$3,$4::numeric,$5::numeric)
      ON CONFLICT (payslip_id, event_code)
      DO UPDATE SET kind = EXCLUDED.kind, value = EXCLUDED.value, reference_qty = EXCLUDED.reference_qty, updated_at = now()
    `, payslipID, item.EventCode, item.Kind, item.Value.String(), item.ReferenceQty.String()); err != nil {
			return err
		}
		if removeCode != "" {
			if _, err := tx.Exec(ctx, `
        DELETE FROM payroll_line_items
        WHERE payslip_id = $1 AND event_code = $2
      `, payslipID, removeCode); err != nil {
				return err
			}
		}

		items, err := listItems(ctx, tx, payslipID)
		if err != nil {
			return err
		}
		totals = ComputeTotals(items)
		_, err = tx.Exec(ctx, `
      UPDATE payslips
      SET total_earnings = $1::numeric, total_deductions = $2::numeric, net = $3::numeric, updated_at = now()
      WHERE id = $4
    `, totals.Earnings.String(), totals.Deductions.String(), totals.Net.String(), payslipID)
		return err
	})
	return totals, err
}

func listItems(ctx context.Context, tx pgx.Tx, payslipID string) ([]LineItem, error) {
	rows, err := tx.Query(ctx, `
    SELECT event_code, kind, value::text
    FROM payroll_line_items
    WHERE payslip_id = $1
  `, payslipID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []LineItem
	for rows.Next() {
		var item LineItem
		var value string
		if err := rows.Scan(&item.EventCode, &item.Kind, &value); err != nil {
			return nil, err
		}
		if item.Value, err = decimal.NewFromString(value); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
