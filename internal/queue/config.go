package queue

import "time"

// Config bounds the scheduler. It is replaced wholesale on update;
// the scheduler never hands out a pointer to its live copy.
type Config struct {
	// MaxConcurrent is the hard cap on requests in processing.
	// Dequeue yields nothing while the active set is at this size.
	MaxConcurrent int

	// MaxQueueSize is the hard cap on waiting requests.
	// Enqueue returns ErrQueueFull at this size.
	MaxQueueSize int

	// DedupWindow is how long an identical (agent, prompt) pair is merged
	// into an already-waiting request instead of creating a new one.
	DedupWindow time.Duration

	// DefaultPriority is used when Enqueue is called without WithPriority.
	DefaultPriority Priority
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		MaxConcurrent:   3,
		MaxQueueSize:    50,
		DedupWindow:     2 * time.Second,
		DefaultPriority: PriorityNormal,
	}
}

// ConfigPatch is a partial config for UpdateConfig. Nil fields keep their
// current value. Shrinking MaxQueueSize or MaxConcurrent below current
// occupancy is allowed and only affects subsequent admissions.
type ConfigPatch struct {
	MaxConcurrent   *int
	MaxQueueSize    *int
	DedupWindow     *time.Duration
	DefaultPriority *Priority
}

func (p ConfigPatch) apply(cfg Config) Config {
	if p.MaxConcurrent != nil {
		cfg.MaxConcurrent = *p.MaxConcurrent
	}
	if p.MaxQueueSize != nil {
		cfg.MaxQueueSize = *p.MaxQueueSize
	}
	if p.DedupWindow != nil {
		cfg.DedupWindow = *p.DedupWindow
	}
	if p.DefaultPriority != nil {
		cfg.DefaultPriority = *p.DefaultPriority
	}
	return cfg
}
