package cli

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"fastrecycle-hq/salvage/pkg/recycle"
)

// ProgressReporter reports progress over a batch of containers.
type ProgressReporter interface {
	Start(total int)
	Done(report *recycle.Report)
	Finish()
	Error(err error)
}

// LineProgress writes one line per recycled container followed by a summary.
type LineProgress struct {
	mu        sync.Mutex
	w         io.Writer
	total     int
	done      int
	converted int
	started   time.Time
}

// NewProgressReporter creates a reporter that writes to w, or to os.Stderr
// when w is nil.
func NewProgressReporter(w io.Writer) ProgressReporter {
	if w == nil {
		w = os.Stderr
	}
	return &LineProgress{w: w}
}

// Start resets the counters for a batch of total containers.
func (p *LineProgress) Start(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.done = 0
	p.converted = 0
	p.started = time.Now()
}

// Done records one finished container.
func (p *LineProgress) Done(report *recycle.Report) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done++
	if report.Outcome == recycle.OutcomeCompleted {
		p.converted++
	}
	width := len(fmt.Sprint(p.total))
	fmt.Fprintf(p.w, "[%*d/%d] %s: %s\n", width, p.done, p.total, report.Target, report.Outcome)
}

// Finish prints the batch summary.
func (p *LineProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.total == 0 {
		return
	}
	fmt.Fprintf(p.w, "%d of %d containers converted in %s\n",
		p.converted, p.total, time.Since(p.started).Round(time.Millisecond))
}

// Error reports the failure that stopped the batch.
func (p *LineProgress) Error(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.w, "stopped after %d of %d containers: %v\n", p.done, p.total, err)
}
