package metrics

import (
	"testing"
	"time"
)

func TestSnapshot(t *testing.T) {
	c := New()
	c.Record(200, 10*time.Millisecond)
	c.Record(500, 30*time.Millisecond)
	c.RecordImport(5, 2, 1)
	c.RecordImport(0, 7, 0)
	c.RecordSync(3)
	c.RecordJobFailure()

	snap := c.Snapshot()
	if snap["requestsTotal"].(uint64) != 2 || snap["errorsTotal"].(uint64) != 1 {
		t.Fatalf("unexpected request counters: %v", snap)
	}
	if snap["avgDurationMs"].(float64) != 20 {
		t.Fatalf("unexpected average: %v", snap["avgDurationMs"])
	}
	if snap["importRunsTotal"].(uint64) != 2 || snap["punchesSkippedTotal"].(uint64) != 9 {
		t.Fatalf("unexpected import counters: %v", snap)
	}
	if snap["payslipsUpdatedTotal"].(uint64) != 3 || snap["jobFailuresTotal"].(uint64) != 1 {
		t.Fatalf("unexpected sync counters: %v", snap)
	}
}
