// Package queue provides the admission-controlled request scheduler that
// serializes agent work in switchyard.
//
// # Overview
//
// A local LLM endpoint can only handle limited concurrency, while prompts
// arrive from several directions at once (the user, background jobs, config
// reloads). This package gives them one waiting line:
//
//   - Priority ordering (critical > high > normal > low, FIFO among equals)
//   - Admission control (hard cap on the waiting list, rejected with ErrQueueFull)
//   - Soft concurrency limit (Dequeue yields nothing while the active set is full)
//   - Deduplication of identical waiting requests within a short window
//   - Lifecycle events for dashboards, metrics, and history
//
// # Architecture
//
// The scheduler is deliberately passive. It owns the state machine
// (queued -> processing -> completed/failed, queued -> cancelled) but never
// runs anything:
//
//   - Request: one unit of work with priority, timestamps, and outcome
//   - waitlist: the priority-ordered waiting line
//   - Scheduler: admission, hand-off, and terminal reporting under one mutex
//   - counters/Stats: running totals and averages derived from transitions
//   - notifier: synchronous enqueue/process/cancel/drain callbacks
//
// An executor (see internal/agent) polls Dequeue, performs the agent call,
// and reports back with Complete or Fail. The TUI, telemetry, and history
// recorder observe through the On* subscriptions.
//
// # Example
//
//	s := queue.New(queue.DefaultConfig())
//
//	id, err := s.Enqueue("coder", "fix the flaky test", queue.WithPriority(queue.PriorityHigh))
//	if err != nil {
//		// waiting list full, back off
//	}
//
//	if r, ok := s.Dequeue(); ok {
//		go func() {
//			out, err := run(r)
//			if err != nil {
//				s.Fail(r.ID, err.Error())
//				return
//			}
//			s.Complete(r.ID, out)
//		}()
//	}
//	_ = id
package queue
