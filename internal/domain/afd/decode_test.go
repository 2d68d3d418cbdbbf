package afd

import (
	"strings"
	"testing"
	"time"
)

func punchLine(seq, date, clock, id string) string {
	return seq + "3" + date + clock + id
}

func TestDecodePunch(t *testing.T) {
	line := punchLine("000000123", "15032025", "0807", "012345678901")
	rec, rej := Decode(line)
	if rej != nil {
		t.Fatalf("unexpected rejection: %v", rej)
	}
	if rec.Type != RecordPunch {
		t.Fatalf("expected punch, got %s", rec.Type)
	}
	if rec.Sequence != "000000123" {
		t.Fatalf("unexpected sequence %q", rec.Sequence)
	}
	want := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	if !rec.Date.Equal(want) || rec.Date.Location() != time.UTC {
		t.Fatalf("expected %v, got %v", want, rec.Date)
	}
	if rec.Clock() != "08:07" {
		t.Fatalf("expected 08:07, got %s", rec.Clock())
	}
	if rec.Identifier != "012345678901" {
		t.Fatalf("unexpected identifier %q", rec.Identifier)
	}
	if rec.Raw != line {
		t.Fatal("expected raw line to be kept")
	}
}

func TestDecodeStripsLineEnding(t *testing.T) {
	rec, rej := Decode(punchLine("000000001", "01012025", "2359", "000000000042") + "\r\n")
	if rej != nil {
		t.Fatalf("unexpected rejection: %v", rej)
	}
	if strings.ContainsAny(rec.Raw, "\r\n") {
		t.Fatalf("raw line kept line ending: %q", rec.Raw)
	}
}

func TestDecodeRejectsShortLines(t *testing.T) {
	full := punchLine("000000001", "15032025", "0800", "012345678901")
	for n := 0; n < MinLineLength; n++ {
		rec, rej := Decode(full[:n])
		if rej == nil {
			t.Fatalf("expected rejection for length %d, got %+v", n, rec)
		}
		if rej.Reason != RejectTooShort {
			t.Fatalf("expected too-short for length %d, got %s", n, rej.Reason)
		}
		if rec != (Record{}) {
			t.Fatalf("expected zero record for length %d", n)
		}
	}
}

func TestDecodeRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name   string
		line   string
		reason string
	}{
		{"day 32", punchLine("000000001", "32012025", "0800", "012345678901"), RejectInvalidDate},
		{"february 30", punchLine("000000001", "30022025", "0800", "012345678901"), RejectInvalidDate},
		{"month 13", punchLine("000000001", "01132025", "0800", "012345678901"), RejectInvalidDate},
		{"letters in date", punchLine("000000001", "0A032025", "0800", "012345678901"), RejectInvalidDate},
		{"hour 24", punchLine("000000001", "01032025", "2400", "012345678901"), RejectInvalidTime},
		{"minute 60", punchLine("000000001", "01032025", "1260", "012345678901"), RejectInvalidTime},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, rej := Decode(tc.line)
			if rej == nil {
				t.Fatal("expected rejection")
			}
			if rej.Reason != tc.reason {
				t.Fatalf("expected %s, got %s", tc.reason, rej.Reason)
			}
		})
	}
}

func TestDecodeLeapDay(t *testing.T) {
	if _, rej := Decode(punchLine("000000001", "29022024", "0800", "012345678901")); rej != nil {
		t.Fatalf("expected 29/02/2024 to decode, got %v", rej)
	}
}

func TestDecodeIdentification(t *testing.T) {
	line := "000000002" + "5" + "14032025" + "1000" + "I" + "012345678901" + "MARIA DA SILVA      "
	rec, rej := Decode(line)
	if rej != nil {
		t.Fatalf("unexpected rejection: %v", rej)
	}
	if rec.Type != RecordIdentification {
		t.Fatalf("expected identification, got %s", rec.Type)
	}
	if rec.Operation != "I" || rec.Identifier != "012345678901" || rec.Name != "MARIA DA SILVA" {
		t.Fatalf("unexpected identification record: %+v", rec)
	}
}

func TestDecodeOtherTypes(t *testing.T) {
	line := "000000000" + "1" + strings.Repeat("9", 30)
	rec, rej := Decode(line)
	if rej != nil {
		t.Fatalf("unexpected rejection: %v", rej)
	}
	if rec.Type != RecordOther || rec.Marker != '1' {
		t.Fatalf("expected other record with marker 1, got %+v", rec)
	}
}

func TestDecodeIsDeterministic(t *testing.T) {
	lines := []string{
		punchLine("000000001", "15032025", "0800", "012345678901"),
		punchLine("000000001", "32032025", "0800", "012345678901"),
		"short",
	}
	for _, line := range lines {
		first, firstRej := Decode(line)
		second, secondRej := Decode(line)
		if first != second {
			t.Fatalf("records differ for %q: %+v vs %+v", line, first, second)
		}
		if (firstRej == nil) != (secondRej == nil) {
			t.Fatalf("rejections differ for %q", line)
		}
		if firstRej != nil && *firstRej != *secondRej {
			t.Fatalf("rejection reasons differ for %q", line)
		}
	}
}

func TestParseClock(t *testing.T) {
	if m, ok := ParseClock("17:48"); !ok || m != 1068 {
		t.Fatalf("expected 1068, got %d %v", m, ok)
	}
	if _, ok := ParseClock("7:48"); ok {
		t.Fatal("expected malformed clock to fail")
	}
	if _, ok := ParseClock("25:00"); ok {
		t.Fatal("expected out of range clock to fail")
	}
}
