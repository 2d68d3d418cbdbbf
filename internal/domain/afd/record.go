package afd

import "time"

type RecordType string

const (
	RecordPunch          RecordType = "punch"
	RecordIdentification RecordType = "identification"
	RecordOther          RecordType = "other"
)

const (
	RejectTooShort    = "too-short"
	RejectInvalidDate = "invalid-date"
	RejectInvalidTime = "invalid-time"
)

// Record is one decoded AFD line. Name and Operation are only set on
// identification records.
type Record struct {
	Sequence   string
	Type       RecordType
	Marker     byte
	Date       time.Time
	Hour       int
	Minute     int
	Identifier string
	Name       string
	Operation  string
	Raw        string
}

// Clock returns the punch time as "HH:MM".
func (r Record) Clock() string {
	return formatClock(r.Hour, r.Minute)
}

// DateKey returns the record date as YYYY-MM-DD.
func (r Record) DateKey() string {
	return r.Date.Format("2006-01-02")
}

type Rejection struct {
	Reason string
	Line   string
}

func (r *Rejection) Error() string {
	return "afd line rejected: " + r.Reason
}

func formatClock(hour, minute int) string {
	b := []byte{'0', '0', ':', '0', '0'}
	b[0] = byte('0' + hour/10)
	b[1] = byte('0' + hour%10)
	b[3] = byte('0' + minute/10)
	b[4] = byte('0' + minute%10)
	return string(b)
}
