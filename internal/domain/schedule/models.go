package schedule

import "time"

type Assignment struct {
	ID       string
	WorkerID string
	Day      time.Time
	ShiftID  *string
}

type DayUpdate struct {
	ID  string
	Day time.Time
}

type Plan struct {
	Deletes []string
	Updates []DayUpdate
}

type Result struct {
	Deleted int  `json:"deleted"`
	Updated int  `json:"updated"`
	DryRun  bool `json:"dryRun"`
}
