// Command loadgen pushes a synthetic batch of requests through a
// scheduler and executor and reports the resulting stats. Useful for
// eyeballing admission and dedup behaviour under load without a TUI or
// a real model endpoint.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/billie-coop/switchyard/internal/agent"
	"github.com/billie-coop/switchyard/internal/queue"
)

type report struct {
	Requests  int           `json:"requests"`
	Rejected  int           `json:"rejected"`
	Elapsed   time.Duration `json:"elapsed_ns"`
	Stats     queue.Stats   `json:"stats"`
	Completed int           `json:"completed"`
}

// sleepyAgent simulates model latency.
type sleepyAgent struct {
	name string
	mean time.Duration
}

func (a *sleepyAgent) Name() string { return a.name }

func (a *sleepyAgent) Run(ctx context.Context, prompt string) (string, error) {
	d := a.mean/2 + time.Duration(rand.Int63n(int64(a.mean)))
	select {
	case <-time.After(d):
		return fmt.Sprintf("done after %s", d.Round(time.Millisecond)), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func main() {
	n := flag.Int("n", 100, "number of requests to enqueue")
	workers := flag.Int("workers", 3, "max concurrent requests")
	size := flag.Int("size", 50, "queue capacity")
	latency := flag.Duration("latency", 50*time.Millisecond, "mean simulated agent latency")
	dupes := flag.Bool("dupes", false, "reuse a small prompt pool so dedup kicks in")
	flag.Parse()

	cfg := queue.DefaultConfig()
	cfg.MaxConcurrent = *workers
	cfg.MaxQueueSize = *size

	sched := queue.New(cfg)
	agents := agent.NewRegistry()
	agents.Register(&sleepyAgent{name: "synthetic", mean: *latency})

	exec := agent.NewExecutor(sched, agents, agent.WithPollInterval(10*time.Millisecond))
	if err := exec.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	done := make(chan struct{}, 1)
	unsub := sched.OnDrain(func() {
		select {
		case done <- struct{}{}:
		default:
		}
	})
	defer unsub()

	priorities := []queue.Priority{
		queue.PriorityCritical, queue.PriorityHigh, queue.PriorityNormal, queue.PriorityLow,
	}

	start := time.Now()
	rejected := 0
	for i := 0; i < *n; i++ {
		prompt := fmt.Sprintf("task %d", i)
		if *dupes {
			prompt = fmt.Sprintf("task %d", i%10)
		}
		p := priorities[rand.Intn(len(priorities))]
		if _, err := sched.Enqueue("synthetic", prompt, queue.WithPriority(p)); err != nil {
			rejected++
		}
	}

	// Wait for the yard to empty. A drain can fire mid-batch if the
	// workers outpace the enqueue loop, so recheck the gauges each time.
	for rejected < *n {
		<-done
		s := sched.Stats()
		if s.QueueSize == 0 && s.Processing == 0 {
			break
		}
	}
	elapsed := time.Since(start)

	if err := exec.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	stats := sched.Stats()
	out := report{
		Requests:  *n,
		Rejected:  rejected,
		Elapsed:   elapsed,
		Stats:     stats,
		Completed: stats.TotalProcessed,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
