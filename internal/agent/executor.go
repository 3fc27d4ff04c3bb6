package agent

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/billie-coop/switchyard/internal/logging"
	"github.com/billie-coop/switchyard/internal/queue"
)

// Executor is the external executor loop the scheduler expects: it polls
// Dequeue, runs the matching agent for each handed-off request, and
// reports the outcome back with Complete or Fail.
//
// The scheduler's MaxConcurrent cap does the throttling (Dequeue simply
// yields nothing while the active set is full), so the executor can start
// a goroutine per dequeued request without its own semaphore. It wakes on
// enqueue events and after each completion, with a slow poll ticker as a
// safety net (resume after Pause has no event of its own).
type Executor struct {
	sched  *queue.Scheduler
	agents *Registry

	timeout time.Duration
	poll    time.Duration

	wake     chan struct{}
	inflight *inflight

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	unsubs  []func()
	wg      sync.WaitGroup
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithTimeout bounds each agent run. Zero disables the per-request
// deadline (cancellation still works).
func WithTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) {
		e.timeout = d
	}
}

// WithPollInterval sets the fallback polling period.
func WithPollInterval(d time.Duration) ExecutorOption {
	return func(e *Executor) {
		if d > 0 {
			e.poll = d
		}
	}
}

// NewExecutor creates an executor for the given scheduler and registry.
func NewExecutor(sched *queue.Scheduler, agents *Registry, opts ...ExecutorOption) *Executor {
	e := &Executor{
		sched:    sched,
		agents:   agents,
		timeout:  2 * time.Minute,
		poll:     time.Second,
		wake:     make(chan struct{}, 1),
		inflight: newInflight(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start begins pulling work. Call once during app initialization.
func (e *Executor) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.started {
		return errors.New("executor already started")
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.started = true

	// Listeners only nudge the wake channel; they must not block or call
	// back into the scheduler.
	e.unsubs = append(e.unsubs,
		e.sched.OnEnqueue(func(queue.Request) { e.nudge() }),
	)

	e.wg.Add(1)
	go e.run(ctx)
	return nil
}

// Stop shuts the executor down, cancelling in-flight agent runs and
// waiting for them to report back.
func (e *Executor) Stop() error {
	e.mu.Lock()
	if !e.started {
		e.mu.Unlock()
		return errors.New("executor not started")
	}
	e.started = false
	cancel := e.cancel
	unsubs := e.unsubs
	e.unsubs = nil
	e.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
	cancel()
	e.wg.Wait()
	return nil
}

// Abort cancels the context of a request already handed to an agent.
// Returns false if the id is not in flight. The request still reaches a
// terminal state through the normal Fail path when the agent returns.
func (e *Executor) Abort(id string) bool {
	return e.inflight.abort(id)
}

// InFlight returns the ids currently being processed.
func (e *Executor) InFlight() []string {
	return e.inflight.ids()
}

func (e *Executor) nudge() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

func (e *Executor) run(ctx context.Context) {
	defer e.wg.Done()

	ticker := time.NewTicker(e.poll)
	defer ticker.Stop()

	for {
		e.drain(ctx)
		select {
		case <-ctx.Done():
			return
		case <-e.wake:
		case <-ticker.C:
		}
	}
}

// drain pulls requests until the scheduler yields nothing (paused, at
// capacity, or empty).
func (e *Executor) drain(ctx context.Context) {
	for {
		r, ok := e.sched.Dequeue()
		if !ok {
			return
		}
		e.wg.Add(1)
		go e.process(ctx, r)
	}
}

func (e *Executor) process(ctx context.Context, r queue.Request) {
	defer e.wg.Done()
	defer e.nudge() // a slot just freed, look for more work

	a, ok := e.agents.Get(r.AgentID)
	if !ok {
		e.sched.Fail(r.ID, errUnknownAgent(r.AgentID).Error())
		return
	}

	var runCtx context.Context
	var cancel context.CancelFunc
	if e.timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, e.timeout)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}
	e.inflight.register(r.ID, cancel)
	defer func() {
		e.inflight.unregister(r.ID)
		cancel()
	}()

	start := time.Now()
	result, err := a.Run(runCtx, r.Prompt)
	elapsed := time.Since(start)

	if err != nil {
		logging.Log.Warn().
			Str("request", r.ID).
			Str("agent", r.AgentID).
			Dur("elapsed", elapsed).
			Err(err).
			Msg("agent run failed")
		e.sched.Fail(r.ID, err.Error())
		return
	}

	logging.Log.Debug().
		Str("request", r.ID).
		Str("agent", r.AgentID).
		Dur("elapsed", elapsed).
		Msg("agent run completed")
	e.sched.Complete(r.ID, result)
}
