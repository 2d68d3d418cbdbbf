package timeclock

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pontosync/internal/domain/afd"
	"pontosync/internal/domain/identity"
)

const DefaultBatchSize = 500

// flushGrace bounds the final write of a run that was stopped by its
// deadline or cancelled.
const flushGrace = 30 * time.Second

type Options struct {
	BatchSize int
	MaxFiles  int
}

// Ingestor loads AFD exports into time_records. It is not safe to run two
// ingestions at once; the storage uniqueness constraint keeps overlapping
// runs correct but each run only dedups against its own snapshot.
type Ingestor struct {
	store StoreAPI
	opts  Options
	now   func() time.Time
}

func NewIngestor(store StoreAPI, opts Options) *Ingestor {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	return &Ingestor{store: store, opts: opts, now: time.Now}
}

type ingestRun struct {
	store    StoreAPI
	resolver *identity.Resolver
	existing map[Key]struct{}
	pending  []TimeRecord
	result   Result
}

func (in *Ingestor) Ingest(ctx context.Context, files []File) (Result, error) {
	existing, err := in.store.ExistingKeys(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load existing keys: %w", err)
	}
	workers, err := in.store.WorkerKeys(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load identity indexes: %w", err)
	}

	run := &ingestRun{
		store:    in.store,
		resolver: identity.NewResolver(identity.BuildIndexes(workers)),
		existing: existing,
		result:   Result{Errors: []string{}},
	}

	for i, file := range files {
		if in.opts.MaxFiles > 0 && i >= in.opts.MaxFiles {
			run.result.Truncated = true
			break
		}
		if ctx.Err() != nil {
			run.result.Truncated = true
			break
		}
		done, err := in.ingestFile(ctx, run, file)
		if err != nil {
			return run.result, err
		}
		if !done {
			run.result.Truncated = true
			break
		}
		run.result.Files++
	}

	if err := run.flush(ctx); err != nil {
		return run.result, err
	}

	slog.Info("afd ingestion finished",
		"files", run.result.Files,
		"imported", run.result.Imported,
		"skipped", run.result.Skipped,
		"malformed", run.result.Malformed,
		"unresolved", run.result.Unresolved,
		"truncated", run.result.Truncated,
	)
	return run.result, nil
}

// ingestFile stages the punches of one file, flushing full batches. It
// reports false when ctx ended before the file was read to the end; the
// punches staged so far are kept and the rest are picked up by a re-run.
func (in *Ingestor) ingestFile(ctx context.Context, run *ingestRun, file File) (bool, error) {
	content, err := afd.DecodeContent(file.Content)
	if err != nil {
		run.result.Errors = append(run.result.Errors, fmt.Sprintf("%s: %v", file.Name, err))
		return true, nil
	}

	for _, line := range afd.Lines(content) {
		if ctx.Err() != nil {
			return false, nil
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, rej := afd.Decode(line)
		if rej != nil {
			run.result.Malformed++
			continue
		}
		switch rec.Type {
		case afd.RecordIdentification:
			run.result.Identifications++
			continue
		case afd.RecordOther:
			run.result.Ignored++
			continue
		}

		record := TimeRecord{
			Identifier: rec.Identifier,
			Date:       rec.Date,
			Time:       rec.Clock(),
			Sequence:   rec.Sequence,
			RawLine:    rec.Raw,
			SourceFile: file.Name,
			CreatedAt:  in.now(),
		}
		key := record.Key()
		if _, dup := run.existing[key]; dup {
			run.result.Skipped++
			continue
		}
		run.existing[key] = struct{}{}

		if res := run.resolver.Resolve(rec.Identifier); res.Resolved {
			workerID := res.WorkerID
			record.WorkerID = &workerID
		} else {
			run.result.Unresolved++
		}

		run.pending = append(run.pending, record)
		if len(run.pending) >= in.opts.BatchSize {
			if err := run.flush(ctx); err != nil {
				return false, err
			}
		}
	}
	return true, nil
}

// flush writes the staged batch. On failure the batch keys are released
// so a later duplicate in the same run is not mistaken for stored data.
// A stopped run still writes what it staged, within flushGrace.
func (r *ingestRun) flush(ctx context.Context) error {
	if len(r.pending) == 0 {
		return nil
	}
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.WithoutCancel(ctx), flushGrace)
		defer cancel()
	}
	batch := r.pending
	r.pending = nil

	inserted, err := r.store.InsertRecords(ctx, batch)
	if err != nil {
		for _, rec := range batch {
			delete(r.existing, rec.Key())
		}
		r.result.Errors = append(r.result.Errors, fmt.Sprintf("batch of %d records not stored: %v", len(batch), err))
		return fmt.Errorf("insert time records: %w", err)
	}
	r.result.Imported += inserted
	r.result.Skipped += len(batch) - inserted
	return nil
}

// AddManual stores a hand-keyed punch for a worker. An existing punch with
// the same key is left untouched and reported as not created.
func (in *Ingestor) AddManual(ctx context.Context, punch ManualPunch) (bool, error) {
	clock := strings.TrimSpace(punch.Time)
	if _, ok := afd.ParseClock(clock); !ok || punch.Date.IsZero() {
		return false, ErrInvalidPunch
	}
	identifier := strings.TrimSpace(punch.Identifier)
	if identifier == "" {
		stored, err := in.store.WorkerIdentifier(ctx, punch.WorkerID)
		if err != nil {
			return false, err
		}
		identifier = stored
	}
	if identifier == "" {
		return false, ErrInvalidPunch
	}
	workerID := punch.WorkerID
	y, m, d := punch.Date.Date()
	return in.store.InsertManual(ctx, TimeRecord{
		Identifier: identifier,
		WorkerID:   &workerID,
		Date:       time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Time:       clock[:5],
		Manual:     true,
		CreatedAt:  in.now(),
	})
}

func (in *Ingestor) Unresolved(ctx context.Context, limit int) ([]UnresolvedIdentifier, error) {
	if limit <= 0 {
		limit = 100
	}
	return in.store.ListUnresolved(ctx, limit)
}
