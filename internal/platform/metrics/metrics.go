package metrics

import (
	"sync/atomic"
	"time"
)

// Collector keeps process-local counters exposed on /metrics.
type Collector struct {
	requests        atomic.Uint64
	serverErrors    atomic.Uint64
	requestMillis   atomic.Uint64
	importRuns      atomic.Uint64
	punchesImported atomic.Uint64
	punchesSkipped  atomic.Uint64
	linesMalformed  atomic.Uint64
	syncRuns        atomic.Uint64
	payslipsUpdated atomic.Uint64
	jobFailures     atomic.Uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	c.requests.Add(1)
	if status >= 500 {
		c.serverErrors.Add(1)
	}
	c.requestMillis.Add(uint64(duration.Milliseconds()))
}

func (c *Collector) RecordImport(imported, skipped, malformed int) {
	c.importRuns.Add(1)
	c.punchesImported.Add(uint64(imported))
	c.punchesSkipped.Add(uint64(skipped))
	c.linesMalformed.Add(uint64(malformed))
}

func (c *Collector) RecordSync(updated int) {
	c.syncRuns.Add(1)
	c.payslipsUpdated.Add(uint64(updated))
}

func (c *Collector) RecordJobFailure() {
	c.jobFailures.Add(1)
}

func (c *Collector) Snapshot() map[string]any {
	total := c.requests.Load()
	totalMs := c.requestMillis.Load()
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":        total,
		"errorsTotal":          c.serverErrors.Load(),
		"avgDurationMs":        avg,
		"importRunsTotal":      c.importRuns.Load(),
		"punchesImportedTotal": c.punchesImported.Load(),
		"punchesSkippedTotal":  c.punchesSkipped.Load(),
		"linesMalformedTotal":  c.linesMalformed.Load(),
		"syncRunsTotal":        c.syncRuns.Load(),
		"payslipsUpdatedTotal": c.payslipsUpdated.Load(),
		"jobFailuresTotal":     c.jobFailures.Load(),
	}
}
