package timeclock

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"pontosync/internal/domain/identity"
	"pontosync/internal/platform/db"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{DB: pool}
}

func (s *Store) ExistingKeys(ctx context.Context) (map[Key]struct{}, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT raw_identifier, record_date, record_time
    FROM time_records
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make(map[Key]struct{})
	for rows.Next() {
		var identifier, clock string
		var date time.Time
		if err := rows.Scan(&identifier, &date, &clock); err != nil {
			return nil, err
		}
		keys[Key{Identifier: identifier, Date: date.Format("2006-01-02"), Time: clock}] = struct{}{}
	}
	return keys, rows.Err()
}

func (s *Store) WorkerKeys(ctx context.Context) ([]identity.WorkerKeys, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, COALESCE(identifier_number, ''), COALESCE(tax_id, '')
    FROM workers
    ORDER BY created_at, id
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workers []identity.WorkerKeys
	for rows.Next() {
		var w identity.WorkerKeys
		if err := rows.Scan(&w.WorkerID, &w.IdentifierNumber, &w.TaxID); err != nil {
			return nil, err
		}
		workers = append(workers, w)
	}
	return workers, rows.Err()
}

const insertRecordSQL = `
    INSERT INTO time_records (raw_identifier, worker_id, record_date, record_time, sequence, raw_line, manual, source_file, created_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
    ON CONFLICT (raw_identifier, record_date, record_time) DO NOTHING
  `

// InsertRecords writes one batch in a single transaction and returns how
// many rows were actually inserted. Rows already present are skipped by
// the unique constraint rather than failing the batch.
func (s *Store) InsertRecords(ctx context.Context, records []TimeRecord) (int, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(insertRecordSQL,
			rec.Identifier, rec.WorkerID, pgDate(rec.Date), rec.Time, rec.Sequence, rec.RawLine, rec.Manual, rec.SourceFile, rec.CreatedAt)
	}

	results := tx.SendBatch(ctx, batch)
	inserted := 0
	for range records {
		tag, err := results.Exec()
		if err != nil {
			_ = results.Close()
			return 0, err
		}
		inserted += int(tag.RowsAffected())
	}
	if err := results.Close(); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return inserted, nil
}

// InsertManual stores rec unless the worker already has a punch at that
// date and time, whatever identifier the device printed for it.
func (s *Store) InsertManual(ctx context.Context, rec TimeRecord) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    INSERT INTO time_records (raw_identifier, worker_id, record_date, record_time, sequence, raw_line, manual, source_file, created_at)
    SELECT $1,$2,$3,$4,'','',TRUE,'',$5
    WHERE NOT EXISTS (
      SELECT 1 FROM time_records
      WHERE worker_id = $2 AND record_date = $3 AND record_time = $4
    )
  `, rec.Identifier, rec.WorkerID, pgDate(rec.Date), rec.Time, rec.CreatedAt)
	if db.IsUniqueViolation(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) WorkerIdentifier(ctx context.Context, workerID string) (string, error) {
	var identifier string
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(identifier_number, '')
    FROM workers
    WHERE id = $1
  `, workerID).Scan(&identifier)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrWorkerNotFound
	}
	if err != nil {
		return "", err
	}
	return identifier, nil
}

func (s *Store) ListUnresolved(ctx context.Context, limit int) ([]UnresolvedIdentifier, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT raw_identifier, COUNT(1), MIN(record_date), MAX(record_date)
    FROM time_records
    WHERE worker_id IS NULL
    GROUP BY raw_identifier
    ORDER BY COUNT(1) DESC, raw_identifier
    LIMIT $1
  `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]UnresolvedIdentifier, 0)
	for rows.Next() {
		var u UnresolvedIdentifier
		if err := rows.Scan(&u.Identifier, &u.Records, &u.FirstDate, &u.LastDate); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func pgDate(t time.Time) pgtype.Date {
	if t.IsZero() {
		return pgtype.Date{}
	}
	y, m, d := t.Date()
	return pgtype.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
}
