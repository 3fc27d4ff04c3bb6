package agent

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/billie-coop/switchyard/internal/queue"
)

// stubAgent runs an arbitrary function so tests can control outcomes.
type stubAgent struct {
	name string
	run  func(ctx context.Context, prompt string) (string, error)
}

func (a *stubAgent) Name() string { return a.name }

func (a *stubAgent) Run(ctx context.Context, prompt string) (string, error) {
	return a.run(ctx, prompt)
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestExecutor_RunsQueuedWork(t *testing.T) {
	sched := queue.New(queue.DefaultConfig())
	reg := NewRegistry()
	reg.Register(&stubAgent{
		name: "echo",
		run: func(_ context.Context, prompt string) (string, error) {
			return "echo: " + prompt, nil
		},
	})

	var mu sync.Mutex
	results := map[string]string{}
	sched.OnProcess(func(r queue.Request) {
		mu.Lock()
		results[r.Prompt] = r.Result
		mu.Unlock()
	})

	e := NewExecutor(sched, reg, WithPollInterval(10*time.Millisecond))
	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	defer e.Stop()

	if _, err := sched.Enqueue("echo", "hello"); err != nil {
		t.Fatal(err)
	}
	if _, err := sched.Enqueue("echo", "world"); err != nil {
		t.Fatal(err)
	}

	waitFor(t, func() bool { return sched.Stats().TotalProcessed == 2 }, "both requests to complete")

	mu.Lock()
	defer mu.Unlock()
	if results["hello"] != "echo: hello" || results["world"] != "echo: world" {
		t.Errorf("results = %v", results)
	}
}

func TestExecutor_UnknownAgentFails(t *testing.T) {
	sched := queue.New(queue.DefaultConfig())
	e := NewExecutor(sched, NewRegistry(), WithPollInterval(10*time.Millisecond))
	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	defer e.Stop()

	var failure queue.Request
	var mu sync.Mutex
	sched.OnProcess(func(r queue.Request) {
		mu.Lock()
		failure = r
		mu.Unlock()
	})

	if _, err := sched.Enqueue("nobody", "work"); err != nil {
		t.Fatal(err)
	}

	waitFor(t, func() bool { return sched.Stats().TotalFailed == 1 }, "the request to fail")

	mu.Lock()
	defer mu.Unlock()
	if failure.Status != queue.StatusFailed || !strings.Contains(failure.Error, "unknown agent") {
		t.Errorf("terminal request = %+v", failure)
	}
}

func TestExecutor_Abort(t *testing.T) {
	sched := queue.New(queue.DefaultConfig())
	reg := NewRegistry()
	reg.Register(&stubAgent{
		name: "slow",
		run: func(ctx context.Context, _ string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	})

	e := NewExecutor(sched, reg, WithPollInterval(10*time.Millisecond))
	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	defer e.Stop()

	id, err := sched.Enqueue("slow", "never finishes")
	if err != nil {
		t.Fatal(err)
	}

	waitFor(t, func() bool { return len(e.InFlight()) == 1 }, "the request to start")

	if !e.Abort(id) {
		t.Fatal("Abort should find the in-flight request")
	}
	if e.Abort(id) {
		t.Error("second Abort should return false")
	}

	waitFor(t, func() bool { return sched.Stats().TotalFailed == 1 }, "the aborted request to settle")
}

func TestExecutor_RespectsConcurrencyCap(t *testing.T) {
	cfg := queue.DefaultConfig()
	cfg.MaxConcurrent = 1
	sched := queue.New(cfg)

	release := make(chan struct{})
	reg := NewRegistry()
	reg.Register(&stubAgent{
		name: "gated",
		run: func(ctx context.Context, _ string) (string, error) {
			select {
			case <-release:
				return "done", nil
			case <-ctx.Done():
				return "", ctx.Err()
			}
		},
	})

	e := NewExecutor(sched, reg, WithPollInterval(10*time.Millisecond))
	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	defer e.Stop()

	for _, p := range []string{"one", "two", "three"} {
		if _, err := sched.Enqueue("gated", p); err != nil {
			t.Fatal(err)
		}
	}

	waitFor(t, func() bool { return sched.Stats().Processing == 1 }, "first request to start")

	// With MaxConcurrent=1 nothing else may start until the gate opens.
	time.Sleep(50 * time.Millisecond)
	if got := sched.Stats().Processing; got != 1 {
		t.Fatalf("processing = %d, want 1", got)
	}

	close(release)
	waitFor(t, func() bool { return sched.Stats().TotalProcessed == 3 }, "all requests to complete")
}

func TestExecutor_StartStop(t *testing.T) {
	sched := queue.New(queue.DefaultConfig())
	e := NewExecutor(sched, NewRegistry())

	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	if err := e.Start(); err == nil {
		t.Error("second Start should fail")
	}
	if err := e.Stop(); err != nil {
		t.Fatal(err)
	}
	if err := e.Stop(); err == nil {
		t.Error("second Stop should fail")
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&stubAgent{name: "a"})
	reg.Register(&stubAgent{name: "b"})

	if _, ok := reg.Get("a"); !ok {
		t.Error("registered agent not found")
	}
	if _, ok := reg.Get("missing"); ok {
		t.Error("unregistered agent found")
	}
	if got := len(reg.Names()); got != 2 {
		t.Errorf("Names() length = %d, want 2", got)
	}
}
