package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

type slotKey struct {
	workerID string
	day      time.Time
}

// BuildPlan collapses assignments to one per worker and calendar day.
// The first row seen for a day is kept unless a later one carries a shift
// and the kept one does not. Surviving rows whose stored day is not UTC
// midnight are rewritten.
func BuildPlan(assignments []Assignment) Plan {
	plan := Plan{}
	winners := make(map[slotKey]int, len(assignments))
	order := make([]slotKey, 0, len(assignments))

	for i, a := range assignments {
		key := slotKey{workerID: a.WorkerID, day: DayOf(a.Day)}
		j, seen := winners[key]
		if !seen {
			winners[key] = i
			order = append(order, key)
			continue
		}
		kept := assignments[j]
		if a.ShiftID != nil && kept.ShiftID == nil {
			plan.Deletes = append(plan.Deletes, kept.ID)
			winners[key] = i
			continue
		}
		plan.Deletes = append(plan.Deletes, a.ID)
	}

	for _, key := range order {
		winner := assignments[winners[key]]
		if !winner.Day.Equal(key.day) {
			plan.Updates = append(plan.Updates, DayUpdate{ID: winner.ID, Day: key.day})
		}
	}
	return plan
}

// Normalizer repairs legacy schedule rows. It rewrites rows the balance
// calculator reads, so callers must not run both over the same range at
// the same time.
type Normalizer struct {
	store StoreAPI
}

func NewNormalizer(store StoreAPI) *Normalizer {
	return &Normalizer{store: store}
}

func (n *Normalizer) Run(ctx context.Context, dryRun bool) (Result, error) {
	assignments, err := n.store.ListAssignments(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list schedule assignments: %w", err)
	}
	plan := BuildPlan(assignments)
	result := Result{Deleted: len(plan.Deletes), Updated: len(plan.Updates), DryRun: dryRun}
	if dryRun || (len(plan.Deletes) == 0 && len(plan.Updates) == 0) {
		return result, nil
	}
	if err := n.store.ApplyPlan(ctx, plan); err != nil {
		return Result{}, fmt.Errorf("apply schedule plan: %w", err)
	}
	slog.Info("schedule normalization applied", "deleted", result.Deleted, "updated", result.Updated)
	return result, nil
}
