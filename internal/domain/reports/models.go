package reports

import (
	"encoding/json"
	"time"
)

type JobRun struct {
	ID          string         `json:"id"`
	JobType     string         `json:"jobType"`
	Status      string         `json:"status"`
	Details     map[string]any `json:"details"`
	StartedAt   time.Time      `json:"startedAt"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
}

type JobRunFilter struct {
	JobType     string
	Status      string
	StartedFrom *time.Time
	StartedTo   *time.Time
}

// Dashboard summarizes what needs operator attention.
type Dashboard struct {
	UnresolvedPunches        int               `json:"unresolvedPunches"`
	UnresolvedIdentifiers    int               `json:"unresolvedIdentifiers"`
	WorkersWithoutIdentifier int               `json:"workersWithoutIdentifier"`
	OpenPeriods              int               `json:"openPeriods"`
	LastRuns                 map[string]JobRun `json:"lastRuns"`
}

func decodeDetails(raw []byte) map[string]any {
	if len(raw) == 0 {
		return map[string]any{}
	}
	details := map[string]any{}
	if err := json.Unmarshal(raw, &details); err != nil {
		return map[string]any{
			"raw": string(raw),
		}
	}
	return details
}
