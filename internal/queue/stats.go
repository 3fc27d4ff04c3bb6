package queue

import "time"

// Stats is a point-in-time snapshot of scheduler metrics.
//
// The totals are running counters since construction (or the last
// ResetStats); QueueSize and Processing are live gauges read from the
// waiting list and active set.
type Stats struct {
	TotalEnqueued     int
	TotalProcessed    int
	TotalFailed       int
	TotalCancelled    int
	TotalDeduplicated int

	// AvgWait is total accumulated wait time divided by TotalEnqueued.
	// AvgProcess is total process time divided by TotalProcessed+TotalFailed.
	// Both are zero when their denominator is.
	AvgWait    time.Duration
	AvgProcess time.Duration

	QueueSize  int
	Processing int
}

// counters accumulates lifecycle totals. Guarded by the Scheduler's mutex.
type counters struct {
	enqueued     int
	processed    int
	failed       int
	cancelled    int
	deduplicated int

	waitTotal    time.Duration
	processTotal time.Duration
}

func (c *counters) reset() {
	*c = counters{}
}

// snapshot folds the running sums into averages.
func (c *counters) snapshot(queueSize, processing int) Stats {
	s := Stats{
		TotalEnqueued:     c.enqueued,
		TotalProcessed:    c.processed,
		TotalFailed:       c.failed,
		TotalCancelled:    c.cancelled,
		TotalDeduplicated: c.deduplicated,
		QueueSize:         queueSize,
		Processing:        processing,
	}
	if c.enqueued > 0 {
		s.AvgWait = c.waitTotal / time.Duration(c.enqueued)
	}
	if done := c.processed + c.failed; done > 0 {
		s.AvgProcess = c.processTotal / time.Duration(done)
	}
	return s
}
