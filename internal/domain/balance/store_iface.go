package balance

import (
	"context"
	"time"
)

type StoreAPI interface {
	// ListAssignments returns rows with from <= day < to.
	ListAssignments(ctx context.Context, workerID string, from, to time.Time) ([]Assignment, error)
	// ListPunches returns punches for calendar dates first..last inclusive,
	// ordered by date and time.
	ListPunches(ctx context.Context, workerID string, first, last time.Time) ([]Punch, error)
	WorkerName(ctx context.Context, workerID string) (string, error)
}
