package ingestion

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker reports batch progress to a writer. File trackers also
// count skipped and failed files.
type ProgressTracker struct {
	writer         io.Writer
	verb           string
	unit           string
	files          bool
	total          int
	done           int
	skipped        int
	failed         int
	reportInterval int
	lastReported   int
	startTime      time.Time
	mu             sync.Mutex
}

// NewProgressTracker creates a tracker for total files that reports every
// reportInterval completed files.
func NewProgressTracker(writer io.Writer, total, reportInterval int) *ProgressTracker {
	tracker := NewCountTracker(writer, "Ingested", "files", total, reportInterval)
	tracker.files = true
	return tracker
}

// NewCountTracker creates a tracker for total units of work, printed as
// "<verb> done/total ... unit/s".
func NewCountTracker(writer io.Writer, verb, unit string, total, reportInterval int) *ProgressTracker {
	if reportInterval < 1 {
		reportInterval = 1
	}
	return &ProgressTracker{
		writer:         writer,
		verb:           verb,
		unit:           unit,
		total:          total,
		reportInterval: reportInterval,
		startTime:      time.Now(),
	}
}

// Record counts one finished file.
func (p *ProgressTracker) Record(res *Result, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case err != nil:
		p.failed++
	case res != nil && res.Skipped:
		p.skipped++
	}
	p.advance(1)
}

// Add counts delta more units as done, capped at total.
func (p *ProgressTracker) Add(delta int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.advance(delta)
}

// advance must be called with the lock held.
func (p *ProgressTracker) advance(delta int) {
	p.done += delta
	if p.total > 0 {
		p.done = min(p.done, p.total)
	}
	if p.done-p.lastReported >= p.reportInterval {
		p.report()
		p.lastReported = p.done
	}
}

// Finish prints the final line.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.report()
	fmt.Fprintln(p.writer)
}

// Elapsed returns the time since the tracker was created.
func (p *ProgressTracker) Elapsed() time.Duration {
	return time.Since(p.startTime)
}

// report prints the current progress. Must be called with lock held.
func (p *ProgressTracker) report() {
	rate := 0.0
	if elapsed := time.Since(p.startTime).Seconds(); elapsed > 0 {
		rate = float64(p.done) / elapsed
	}

	percentage := 0.0
	if p.total > 0 {
		percentage = float64(p.done) / float64(p.total) * 100.0
	}

	if p.files {
		fmt.Fprintf(p.writer, "\r%s %d/%d (%.1f%%) skipped=%d failed=%d - %.1f %s/s",
			p.verb, p.done, p.total, percentage, p.skipped, p.failed, rate, p.unit)
		return
	}
	fmt.Fprintf(p.writer, "\r%s %d/%d (%.1f%%) - %.1f %s/s",
		p.verb, p.done, p.total, percentage, rate, p.unit)
}
