package agent

import (
	"context"
	"sync"
)

// inflight tracks cancel functions for requests the executor has taken
// off the queue. The scheduler refuses to cancel processing requests;
// this is the executor-owned cancellation signal that covers them.
type inflight struct {
	mu     sync.Mutex
	cancel map[string]context.CancelFunc
}

func newInflight() *inflight {
	return &inflight{cancel: make(map[string]context.CancelFunc)}
}

// register tracks a request that just started processing.
func (f *inflight) register(id string, cancel context.CancelFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancel[id] = cancel
}

// unregister drops a finished request.
func (f *inflight) unregister(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.cancel, id)
}

// abort cancels the context of an in-flight request.
// Returns false if the id is not currently running.
func (f *inflight) abort(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	cancel, ok := f.cancel[id]
	if !ok {
		return false
	}
	cancel()
	delete(f.cancel, id)
	return true
}

// ids returns the currently running request ids.
func (f *inflight) ids() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, 0, len(f.cancel))
	for id := range f.cancel {
		out = append(out, id)
	}
	return out
}
