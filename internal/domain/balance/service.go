package balance

import (
	"context"
	"fmt"
	"time"

	"pontosync/internal/domain/schedule"
)

const dateLayout = "2006-01-02"

// Calculator reads schedules and punches by UTC calendar date.
type Calculator struct {
	store StoreAPI
}

func NewCalculator(store StoreAPI) *Calculator {
	return &Calculator{store: store}
}

// DailyBalance computes one calendar day. The day's date fields are used as
// given; its zone is ignored.
func (c *Calculator) DailyBalance(ctx context.Context, workerID string, day time.Time) (DayBalance, error) {
	from := c.midnight(day)
	shifts, punches, err := c.load(ctx, workerID, from, from.AddDate(0, 0, 1))
	if err != nil {
		return DayBalance{}, err
	}
	key := from.Format(dateLayout)
	shift, scheduled := shifts[key]
	if !scheduled {
		return DayBalance{}, ErrNoSchedule
	}
	return ComputeDay(workerID, key, shift, punches[key])
}

func (c *Calculator) MonthlyBalance(ctx context.Context, workerID string, year int, month time.Month) (PeriodBalance, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return c.RangeBalance(ctx, workerID, from, from.AddDate(0, 1, -1))
}

// RangeBalance sums the days from first to last inclusive that have both a
// schedule and at least one punch. Scheduled days without punches and
// punched days without a schedule are listed but not summed.
func (c *Calculator) RangeBalance(ctx context.Context, workerID string, first, last time.Time) (PeriodBalance, error) {
	from := c.midnight(first)
	to := c.midnight(last).AddDate(0, 0, 1)
	if !from.Before(to) {
		return PeriodBalance{}, ErrInvalidRange
	}
	shifts, punches, err := c.load(ctx, workerID, from, to)
	if err != nil {
		return PeriodBalance{}, err
	}

	out := PeriodBalance{
		WorkerID:        workerID,
		From:            from.Format(dateLayout),
		To:              to.AddDate(0, 0, -1).Format(dateLayout),
		NoPunchDays:     []string{},
		UnscheduledDays: []string{},
		Days:            []DayBalance{},
	}
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		key := d.Format(dateLayout)
		shift, scheduled := shifts[key]
		dayPunches := punches[key]
		switch {
		case scheduled && len(dayPunches) == 0:
			out.NoPunchDays = append(out.NoPunchDays, key)
			continue
		case !scheduled && len(dayPunches) > 0:
			out.UnscheduledDays = append(out.UnscheduledDays, key)
			continue
		case !scheduled:
			continue
		}
		day, err := ComputeDay(workerID, key, shift, dayPunches)
		if err != nil {
			return PeriodBalance{}, fmt.Errorf("%s: %w", key, err)
		}
		out.Days = append(out.Days, day)
		out.WorkedMinutes += day.WorkedMinutes
		out.ExpectedMinutes += day.ExpectedMinutes
		out.BalanceMinutes += day.BalanceMinutes
		if day.Incomplete {
			out.IncompleteDays++
		}
	}
	return out, nil
}

func (c *Calculator) WorkerName(ctx context.Context, workerID string) (string, error) {
	return c.store.WorkerName(ctx, workerID)
}

func (c *Calculator) midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// load reads schedules and punches for [from, to) keyed by calendar date.
// Duplicate schedule rows for a day resolve the way the normalizer does:
// the first row wins unless a later one carries a shift and it does not.
func (c *Calculator) load(ctx context.Context, workerID string, from, to time.Time) (map[string]*Shift, map[string][]string, error) {
	assignments, err := c.store.ListAssignments(ctx, workerID, from, to)
	if err != nil {
		return nil, nil, err
	}
	shifts := make(map[string]*Shift, len(assignments))
	for _, a := range assignments {
		key := schedule.DayKey(a.Day)
		kept, seen := shifts[key]
		if !seen || (kept == nil && a.Shift != nil) {
			shifts[key] = a.Shift
		}
	}

	rows, err := c.store.ListPunches(ctx, workerID, from, to.AddDate(0, 0, -1))
	if err != nil {
		return nil, nil, err
	}
	punches := make(map[string][]string)
	for _, p := range rows {
		key := p.Date.Format(dateLayout)
		punches[key] = append(punches[key], p.Time)
	}
	return shifts, punches, nil
}
