package timeclock

import "time"

// File is one raw export as handed over by the archive or an upload.
type File struct {
	Name    string
	Content []byte
}

// Key is the dedup key of a stored punch.
type Key struct {
	Identifier string
	Date       string
	Time       string
}

type TimeRecord struct {
	Identifier string
	WorkerID   *string
	Date       time.Time
	Time       string
	Sequence   string
	RawLine    string
	Manual     bool
	SourceFile string
	CreatedAt  time.Time
}

func (r TimeRecord) Key() Key {
	return Key{Identifier: r.Identifier, Date: r.Date.Format("2006-01-02"), Time: r.Time}
}

type Result struct {
	Files           int      `json:"files"`
	Imported        int      `json:"imported"`
	Skipped         int      `json:"skipped"`
	Malformed       int      `json:"malformed"`
	Ignored         int      `json:"ignored"`
	Identifications int      `json:"identifications"`
	Unresolved      int      `json:"unresolved"`
	Truncated       bool     `json:"truncated"`
	Errors          []string `json:"errors"`
}

type UnresolvedIdentifier struct {
	Identifier string    `json:"identifier"`
	Records    int       `json:"records"`
	FirstDate  time.Time `json:"firstDate"`
	LastDate   time.Time `json:"lastDate"`
}

type ManualPunch struct {
	WorkerID   string    `json:"workerId"`
	Identifier string    `json:"identifier"`
	Date       time.Time `json:"date"`
	Time       string    `json:"time"`
}
