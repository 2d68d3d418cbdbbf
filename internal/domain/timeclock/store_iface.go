package timeclock

import (
	"context"

	"pontosync/internal/domain/identity"
)

type StoreAPI interface {
	ExistingKeys(ctx context.Context) (map[Key]struct{}, error)
	WorkerKeys(ctx context.Context) ([]identity.WorkerKeys, error)
	InsertRecords(ctx context.Context, records []TimeRecord) (int, error)
	InsertManual(ctx context.Context, record TimeRecord) (bool, error)
	WorkerIdentifier(ctx context.Context, workerID string) (string, error)
	ListUnresolved(ctx context.Context, limit int) ([]UnresolvedIdentifier, error)
}

// Source hands over raw exports retrieved from the clock device archive.
type Source interface {
	Fetch(ctx context.Context) ([]File, error)
}
