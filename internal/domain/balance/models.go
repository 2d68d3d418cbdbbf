package balance

import "time"

type Shift struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Start        string `json:"start"`
	End          string `json:"end"`
	BreakMinutes int    `json:"breakMinutes"`
}

// Assignment is a stored schedule row. Shift is nil on a day off.
type Assignment struct {
	Day   time.Time
	Shift *Shift
}

type Punch struct {
	Date time.Time
	Time string
}

type DayBalance struct {
	WorkerID        string   `json:"workerId"`
	Day             string   `json:"day"`
	DayOff          bool     `json:"dayOff"`
	ShiftName       string   `json:"shiftName,omitempty"`
	Punches         []string `json:"punches"`
	WorkedMinutes   int      `json:"workedMinutes"`
	ExpectedMinutes int      `json:"expectedMinutes"`
	BalanceMinutes  int      `json:"balanceMinutes"`
	Incomplete      bool     `json:"incomplete"`
	UnpairedPunch   string   `json:"unpairedPunch,omitempty"`
}

type PeriodBalance struct {
	WorkerID        string       `json:"workerId"`
	From            string       `json:"from"`
	To              string       `json:"to"`
	WorkedMinutes   int          `json:"workedMinutes"`
	ExpectedMinutes int          `json:"expectedMinutes"`
	BalanceMinutes  int          `json:"balanceMinutes"`
	IncompleteDays  int          `json:"incompleteDays"`
	NoPunchDays     []string     `json:"noPunchDays"`
	UnscheduledDays []string     `json:"unscheduledDays"`
	Days            []DayBalance `json:"days"`
}
