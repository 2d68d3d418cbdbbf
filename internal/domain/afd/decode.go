package afd

import (
	"strconv"
	"strings"
	"time"
)

// Fixed offsets of the AFD layout, 0-based.
const (
	MinLineLength = 34

	sequenceEnd   = 9
	typeOffset    = 9
	dateOffset    = 10
	timeOffset    = 18
	punchIDOffset = 22
	identifierLen = 12

	// identification records carry a one-character operation code before
	// the identifier and the worker name after it.
	identOperationOffset = 22
	identIDOffset        = 23
)

const (
	markerPunch          = '3'
	markerIdentification = '5'
)

// Decode turns one raw line into a Record. Lines that are too short or
// carry an impossible date or time are rejected whole; nothing is
// partially decoded.
func Decode(line string) (Record, *Rejection) {
	line = strings.TrimRight(line, "\r\n")
	if len(line) < MinLineLength {
		return Record{}, &Rejection{Reason: RejectTooShort, Line: line}
	}

	rec := Record{
		Sequence: strings.TrimSpace(line[:sequenceEnd]),
		Marker:   line[typeOffset],
		Raw:      line,
	}

	switch rec.Marker {
	case markerPunch:
		rec.Type = RecordPunch
	case markerIdentification:
		rec.Type = RecordIdentification
	default:
		rec.Type = RecordOther
		return rec, nil
	}

	date, ok := parseDate(line[dateOffset:timeOffset])
	if !ok {
		return Record{}, &Rejection{Reason: RejectInvalidDate, Line: line}
	}
	hour, minute, ok := parseClock(line[timeOffset : timeOffset+4])
	if !ok {
		return Record{}, &Rejection{Reason: RejectInvalidTime, Line: line}
	}
	rec.Date = date
	rec.Hour = hour
	rec.Minute = minute

	if rec.Type == RecordPunch {
		rec.Identifier = strings.TrimSpace(line[punchIDOffset : punchIDOffset+identifierLen])
		return rec, nil
	}

	rec.Operation = line[identOperationOffset : identOperationOffset+1]
	end := identIDOffset + identifierLen
	if end > len(line) {
		end = len(line)
	}
	rec.Identifier = strings.TrimSpace(line[identIDOffset:end])
	if end < len(line) {
		rec.Name = strings.TrimSpace(line[end:])
	}
	return rec, nil
}

// parseDate reads DDMMYYYY into UTC midnight. time.Date would silently
// roll 32/01 over into February, so the round trip is checked.
func parseDate(raw string) (time.Time, bool) {
	if !allDigits(raw) {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(raw[0:2])
	month, _ := strconv.Atoi(raw[2:4])
	year, _ := strconv.Atoi(raw[4:8])
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Day() != day || int(date.Month()) != month || date.Year() != year {
		return time.Time{}, false
	}
	return date, true
}

func parseClock(raw string) (int, int, bool) {
	if !allDigits(raw) {
		return 0, 0, false
	}
	hour, _ := strconv.Atoi(raw[0:2])
	minute, _ := strconv.Atoi(raw[2:4])
	if hour > 23 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

// ParseClock parses "HH:MM" into minutes of day.
func ParseClock(value string) (int, bool) {
	value = strings.TrimSpace(value)
	if len(value) < 5 || value[2] != ':' {
		return 0, false
	}
	hour, minute, ok := parseClock(value[0:2] + value[3:5])
	if !ok {
		return 0, false
	}
	return hour*60 + minute, true
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
