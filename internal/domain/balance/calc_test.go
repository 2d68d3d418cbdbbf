package balance

import "testing"

func TestComputeDayExactShift(t *testing.T) {
	shift := &Shift{Name: "commercial", Start: "08:00", End: "17:48", BreakMinutes: 60}
	day, err := ComputeDay("w1", "2025-03-10", shift, []string{"13:00", "08:00", "17:48", "12:00"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if day.ExpectedMinutes != 528 || day.WorkedMinutes != 528 || day.BalanceMinutes != 0 {
		t.Fatalf("expected 528/528/0, got %+v", day)
	}
	if day.Incomplete {
		t.Fatal("expected complete day")
	}
	if day.Punches[0] != "08:00" || day.Punches[3] != "17:48" {
		t.Fatalf("expected sorted punches, got %v", day.Punches)
	}
}

func TestComputeDayUnpairedPunch(t *testing.T) {
	shift := &Shift{Start: "08:00", End: "17:48", BreakMinutes: 60}
	day, err := ComputeDay("w1", "2025-03-10", shift, []string{"08:00", "12:00", "13:00"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !day.Incomplete || day.UnpairedPunch != "13:00" {
		t.Fatalf("expected unpaired 13:00, got %+v", day)
	}
	if day.WorkedMinutes != 240 || day.BalanceMinutes != 240-528 {
		t.Fatalf("unexpected minutes: %+v", day)
	}
}

func TestComputeDayOff(t *testing.T) {
	day, err := ComputeDay("w1", "2025-03-16", nil, []string{"09:00", "11:00"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !day.DayOff || day.ExpectedMinutes != 0 || day.BalanceMinutes != 120 {
		t.Fatalf("unexpected day off balance: %+v", day)
	}
}

func TestExpectedMinutes(t *testing.T) {
	cases := []struct {
		name  string
		shift Shift
		want  int
	}{
		{"day shift", Shift{Start: "08:00", End: "17:48", BreakMinutes: 60}, 528},
		{"overnight", Shift{Start: "22:00", End: "06:00", BreakMinutes: 60}, 420},
		{"break longer than shift", Shift{Start: "08:00", End: "09:00", BreakMinutes: 90}, 0},
		{"no break", Shift{Start: "06:00", End: "12:00"}, 360},
	}
	for _, tc := range cases {
		got, err := ExpectedMinutes(tc.shift)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, got)
		}
	}

	if _, err := ExpectedMinutes(Shift{Start: "25:00", End: "06:00"}); err == nil {
		t.Fatal("expected invalid start to fail")
	}
}

func TestWorkedMinutesSkipsGarbage(t *testing.T) {
	worked, unpaired := WorkedMinutes([]string{"08:00", "xx", "10:30"})
	if worked != 150 || unpaired != "" {
		t.Fatalf("expected 150 minutes, got %d %q", worked, unpaired)
	}
}

func TestFormatMinutes(t *testing.T) {
	if got := FormatMinutes(-288); got != "-04:48" {
		t.Fatalf("unexpected format %q", got)
	}
	if got := FormatMinutes(61); got != "01:01" {
		t.Fatalf("unexpected format %q", got)
	}
}
