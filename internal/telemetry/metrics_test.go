package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/billie-coop/switchyard/internal/queue"
)

func TestMetrics_CountsLifecycle(t *testing.T) {
	sched := queue.New(queue.DefaultConfig())
	m := New(sched)
	defer m.Close()

	id, err := sched.Enqueue("coder", "do the thing")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := sched.Dequeue(); !ok {
		t.Fatal("dequeue failed")
	}
	sched.Complete(id, "done")

	cancelID, _ := sched.Enqueue("coder", "never mind")
	sched.Cancel(cancelID)

	if got := testutil.ToFloat64(m.enqueued.WithLabelValues("coder", "normal")); got != 2 {
		t.Errorf("enqueued counter = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.outcomes.WithLabelValues("coder", "completed")); got != 1 {
		t.Errorf("completed counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.outcomes.WithLabelValues("coder", "cancelled")); got != 1 {
		t.Errorf("cancelled counter = %v, want 1", got)
	}
}

func TestMetrics_CloseDetaches(t *testing.T) {
	sched := queue.New(queue.DefaultConfig())
	m := New(sched)
	m.Close()

	if _, err := sched.Enqueue("coder", "after close"); err != nil {
		t.Fatal(err)
	}
	if got := testutil.ToFloat64(m.enqueued.WithLabelValues("coder", "normal")); got != 0 {
		t.Errorf("enqueued counter after Close = %v, want 0", got)
	}
}
