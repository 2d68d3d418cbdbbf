package balance

import (
	"fmt"
	"sort"

	"pontosync/internal/domain/afd"
)

const minutesPerDay = 24 * 60

// ExpectedMinutes is the shift length minus its break. A shift whose end is
// not after its start crosses midnight. The result is never negative.
func ExpectedMinutes(shift Shift) (int, error) {
	start, ok := afd.ParseClock(shift.Start)
	if !ok {
		return 0, fmt.Errorf("invalid shift start %q", shift.Start)
	}
	end, ok := afd.ParseClock(shift.End)
	if !ok {
		return 0, fmt.Errorf("invalid shift end %q", shift.End)
	}
	span := end - start
	if span <= 0 {
		span += minutesPerDay
	}
	expected := span - shift.BreakMinutes
	if expected < 0 {
		expected = 0
	}
	return expected, nil
}

// WorkedMinutes pairs sorted punches as (entry, exit). A trailing punch
// without a partner is returned as unpaired and adds nothing.
func WorkedMinutes(punches []string) (worked int, unpaired string) {
	clocks := make([]string, 0, len(punches))
	minutes := make(map[string]int, len(punches))
	for _, p := range punches {
		m, ok := afd.ParseClock(p)
		if !ok {
			continue
		}
		clocks = append(clocks, p)
		minutes[p] = m
	}
	sort.Strings(clocks)

	for i := 0; i+1 < len(clocks); i += 2 {
		worked += minutes[clocks[i+1]] - minutes[clocks[i]]
	}
	if len(clocks)%2 == 1 {
		unpaired = clocks[len(clocks)-1]
	}
	return worked, unpaired
}

// ComputeDay builds the balance of one scheduled day. A nil shift is a day
// off with zero expected minutes.
func ComputeDay(workerID, day string, shift *Shift, punches []string) (DayBalance, error) {
	out := DayBalance{WorkerID: workerID, Day: day, Punches: append([]string{}, punches...)}
	sort.Strings(out.Punches)
	if shift == nil {
		out.DayOff = true
	} else {
		expected, err := ExpectedMinutes(*shift)
		if err != nil {
			return DayBalance{}, err
		}
		out.ExpectedMinutes = expected
		out.ShiftName = shift.Name
	}
	out.WorkedMinutes, out.UnpairedPunch = WorkedMinutes(punches)
	out.Incomplete = out.UnpairedPunch != ""
	out.BalanceMinutes = out.WorkedMinutes - out.ExpectedMinutes
	return out, nil
}

// FormatMinutes renders a signed minute count as [-]HH:MM.
func FormatMinutes(total int) string {
	sign := ""
	if total < 0 {
		sign = "-"
		total = -total
	}
	return fmt.Sprintf("%s%02d:%02d", sign, total/60, total%60)
}
