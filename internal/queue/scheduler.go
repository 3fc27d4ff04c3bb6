package queue

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrQueueFull is returned by Enqueue when the waiting list is at
// MaxQueueSize. The request is not created; callers decide whether to
// back off, drop, or surface the rejection.
var ErrQueueFull = errors.New("queue: waiting list is full")

// Scheduler is the admission-controlled request queue for agent work.
//
// It is passive: it never runs work itself and nothing in it blocks. An
// external executor pulls requests with Dequeue, performs the agent call
// out-of-band, and reports back through Complete or Fail. Capacity is the
// only hard limit (Enqueue rejects); concurrency is soft (Dequeue yields
// nothing while the active set is full).
//
// One mutex guards the waiting list, active set, statistics, and listener
// lists, so ordering and capacity invariants hold under concurrent callers.
// No operation does I/O, so hold times are bounded by the O(n) insert.
type Scheduler struct {
	mu sync.Mutex

	cfg     Config
	waiting waitlist
	active  map[string]*Request
	paused  bool

	stats    counters
	notifier notifier

	clock func() time.Time
}

// SchedulerOption configures a Scheduler at construction.
type SchedulerOption func(*Scheduler)

// WithClock overrides the time source. Tests use this to step through
// the deduplication window without sleeping.
func WithClock(clock func() time.Time) SchedulerOption {
	return func(s *Scheduler) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// New creates a scheduler with the given config. Multiple independent
// schedulers can coexist; there is no shared global state.
func New(cfg Config, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		cfg:    cfg,
		active: make(map[string]*Request),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enqueue admits a new request for the given agent and returns its id.
//
// If an identical (agentID, prompt) request is already waiting and was
// enqueued within the dedup window, the existing id is returned instead
// and no new request is created. A full waiting list returns ErrQueueFull.
func (s *Scheduler) Enqueue(agentID, prompt string, opts ...Option) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()

	if prior := s.findDuplicate(agentID, prompt, now); prior != nil {
		s.stats.deduplicated++
		return prior.ID, nil
	}

	if s.waiting.len() >= s.cfg.MaxQueueSize {
		return "", ErrQueueFull
	}

	r := &Request{
		ID:         uuid.NewString(),
		AgentID:    agentID,
		Prompt:     prompt,
		Priority:   s.cfg.DefaultPriority,
		Status:     StatusQueued,
		EnqueuedAt: now,
	}
	for _, opt := range opts {
		opt(r)
	}

	s.waiting.insert(r)
	s.stats.enqueued++
	s.notifier.emit(s.notifier.enqueue, *r)
	return r.ID, nil
}

// findDuplicate scans the waiting list for a mergeable request. Only
// queued requests are eligible; identical work already processing gets a
// fresh entry, since dedup is an anti-spam measure for the waiting list,
// not a memoization cache.
func (s *Scheduler) findDuplicate(agentID, prompt string, now time.Time) *Request {
	if s.cfg.DedupWindow <= 0 {
		return nil
	}
	for _, r := range s.waiting.items {
		if r.AgentID == agentID && r.Prompt == prompt && now.Sub(r.EnqueuedAt) < s.cfg.DedupWindow {
			return r
		}
	}
	return nil
}

// Dequeue hands the next admissible request to the caller, moving it to
// processing. It returns ok=false, without error, when the scheduler is
// paused, the active set is at MaxConcurrent, or nothing is waiting.
//
// Dequeue performs no work itself; the caller must report the outcome
// back with Complete or Fail.
func (s *Scheduler) Dequeue() (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.paused || len(s.active) >= s.cfg.MaxConcurrent {
		return Request{}, false
	}
	r := s.waiting.head()
	if r == nil {
		return Request{}, false
	}

	r.Status = StatusProcessing
	r.StartedAt = s.clock()
	s.stats.waitTotal += r.StartedAt.Sub(r.EnqueuedAt)
	s.active[r.ID] = r
	return *r, true
}

// Complete records a successful result for an in-flight request.
// Unknown or already-settled ids are a no-op; duplicate and stale reports
// from executors are expected (a cancelled request's executor may finish
// anyway).
func (s *Scheduler) Complete(id, result string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.active[id]
	if !ok {
		return
	}
	r.Status = StatusCompleted
	r.Result = result
	s.settle(r)
	s.stats.processed++
	s.notifier.emit(s.notifier.process, *r)
	s.checkDrain()
}

// Fail records a failed outcome for an in-flight request.
// Unknown ids are a no-op, like Complete.
func (s *Scheduler) Fail(id, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.active[id]
	if !ok {
		return
	}
	r.Status = StatusFailed
	r.Error = errMsg
	s.settle(r)
	s.stats.failed++
	s.notifier.emit(s.notifier.process, *r)
	s.checkDrain()
}

// settle stamps the terminal time, accumulates process time, and removes
// the request from the active set. Caller holds the mutex.
func (s *Scheduler) settle(r *Request) {
	r.CompletedAt = s.clock()
	s.stats.processTotal += r.CompletedAt.Sub(r.StartedAt)
	delete(s.active, r.ID)
}

// Cancel withdraws a waiting request. It returns false for ids that are
// unknown, already processing, or already terminal; work handed to the
// executor cannot be pulled back here (the executor owns its own
// cancellation signal for in-flight requests).
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.waiting.remove(id)
	if r == nil {
		return false
	}
	r.Status = StatusCancelled
	r.CompletedAt = s.clock()
	s.stats.cancelled++
	s.notifier.emit(s.notifier.cancel, *r)
	s.checkDrain()
	return true
}

// CancelAll withdraws every waiting request in one pass and returns how
// many were cancelled. In-flight requests are untouched.
func (s *Scheduler) CancelAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelAllLocked()
}

func (s *Scheduler) cancelAllLocked() int {
	removed := s.waiting.drain()
	now := s.clock()
	for _, r := range removed {
		r.Status = StatusCancelled
		r.CompletedAt = now
		s.notifier.emit(s.notifier.cancel, *r)
	}
	s.stats.cancelled += len(removed)
	if len(removed) > 0 {
		s.checkDrain()
	}
	return len(removed)
}

// Pause stops Dequeue from yielding requests. Enqueue, Cancel, Complete,
// and Fail are unaffected.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
}

// Resume undoes Pause.
func (s *Scheduler) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = false
}

// Paused reports whether Dequeue is currently suspended.
func (s *Scheduler) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// UpdateConfig merges a partial config. It takes effect for subsequent
// calls only; requests already admitted stay admitted even if the new
// limits are below current occupancy.
func (s *Scheduler) UpdateConfig(patch ConfigPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = patch.apply(s.cfg)
}

// Config returns a copy of the current configuration.
func (s *Scheduler) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Clear cancels all waiting requests and zeroes the statistics.
func (s *Scheduler) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelAllLocked()
	s.stats.reset()
}

// ResetStats zeroes all running counters and sums. Waiting and in-flight
// requests are untouched.
func (s *Scheduler) ResetStats() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.reset()
}

// Stats returns a snapshot of the running counters and live gauges.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats.snapshot(s.waiting.len(), len(s.active))
}

// Get returns a copy of the request with the given id, whether waiting or
// in flight. Terminal requests are not retained and report ok=false.
func (s *Scheduler) Get(id string) (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r := s.waiting.find(id); r != nil {
		return *r, true
	}
	if r, ok := s.active[id]; ok {
		return *r, true
	}
	return Request{}, false
}

// Position returns the 0-based place of id in the waiting list, or -1.
func (s *Scheduler) Position(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waiting.position(id)
}

// Pending returns an ordered snapshot of the waiting list.
func (s *Scheduler) Pending() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Request, 0, s.waiting.len())
	for _, r := range s.waiting.items {
		out = append(out, *r)
	}
	return out
}

// Active returns a snapshot of in-flight requests, oldest start first.
func (s *Scheduler) Active() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Request, 0, len(s.active))
	for _, r := range s.active {
		out = append(out, *r)
	}
	sortByStart(out)
	return out
}

// All returns the waiting snapshot followed by the active one.
func (s *Scheduler) All() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Request, 0, s.waiting.len()+len(s.active))
	for _, r := range s.waiting.items {
		out = append(out, *r)
	}
	n := len(out)
	for _, r := range s.active {
		out = append(out, *r)
	}
	sortByStart(out[n:])
	return out
}

// OnEnqueue registers a listener for genuinely new admissions (dedup hits
// do not fire). The returned func removes the listener.
func (s *Scheduler) OnEnqueue(fn Listener) func() {
	return s.listen(&s.notifier.enqueue, fn)
}

// OnProcess registers a listener for terminal transitions out of
// processing; the delivered request carries the final status and result
// or error.
func (s *Scheduler) OnProcess(fn Listener) func() {
	return s.listen(&s.notifier.process, fn)
}

// OnCancel registers a listener for successful cancellations.
func (s *Scheduler) OnCancel(fn Listener) func() {
	return s.listen(&s.notifier.cancel, fn)
}

// OnDrain registers a listener for the non-empty to fully-empty
// transition. It fires at most once per drain.
func (s *Scheduler) OnDrain(fn DrainListener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notifier.nextID++
	id := s.notifier.nextID
	s.notifier.drain = append(s.notifier.drain, drainSubscription{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.notifier.drain {
			if sub.id == id {
				s.notifier.drain = append(s.notifier.drain[:i], s.notifier.drain[i+1:]...)
				return
			}
		}
	}
}

func (s *Scheduler) listen(list *[]subscription, fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.notifier.subscribe(list, fn)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.notifier.unsubscribe(list, id)
	}
}

// checkDrain fires the drain listeners when a removal just emptied both
// collections. Callers only invoke it after removing something, so the
// scheduler was necessarily non-empty before. Caller holds the mutex.
func (s *Scheduler) checkDrain() {
	if s.waiting.len() == 0 && len(s.active) == 0 {
		s.notifier.emitDrain()
	}
}

func sortByStart(rs []Request) {
	sort.Slice(rs, func(i, j int) bool {
		return rs[i].StartedAt.Before(rs[j].StartedAt)
	})
}
