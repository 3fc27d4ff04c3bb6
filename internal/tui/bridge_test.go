package tui

import (
	"testing"

	"github.com/billie-coop/switchyard/internal/queue"
)

func TestBridge_ForwardsSchedulerEvents(t *testing.T) {
	sched := queue.New(queue.DefaultConfig())
	b := NewBridge(sched)
	defer b.Close()

	id, err := sched.Enqueue("coder", "hello")
	if err != nil {
		t.Fatal(err)
	}

	msg := <-b.events
	enq, ok := msg.(enqueuedMsg)
	if !ok {
		t.Fatalf("got %T, want enqueuedMsg", msg)
	}
	if enq.Req.ID != id {
		t.Errorf("forwarded id = %q, want %q", enq.Req.ID, id)
	}

	sched.Cancel(id)

	// Cancelling the only request empties the yard, so a cancel event
	// and a drain event should both be buffered.
	if _, ok := (<-b.events).(cancelledMsg); !ok {
		t.Error("expected cancelledMsg after Cancel")
	}
	if _, ok := (<-b.events).(drainedMsg); !ok {
		t.Error("expected drainedMsg once the yard is empty")
	}
}

func TestBridge_CloseDetaches(t *testing.T) {
	sched := queue.New(queue.DefaultConfig())
	b := NewBridge(sched)
	b.Close()

	if _, err := sched.Enqueue("coder", "hello"); err != nil {
		t.Fatal(err)
	}
	select {
	case msg := <-b.events:
		t.Errorf("received %T after Close", msg)
	default:
	}
}

func TestBridge_DropsWhenBufferFull(t *testing.T) {
	sched := queue.New(queue.Config{
		MaxConcurrent:   1,
		MaxQueueSize:    200,
		DefaultPriority: queue.PriorityNormal,
	})
	b := NewBridge(sched)
	defer b.Close()

	// Overflow the buffer without draining it; sends must not block the
	// scheduler.
	for i := 0; i < 100; i++ {
		if _, err := sched.Enqueue("coder", string(rune('a'+i%26))+"-"+string(rune('0'+i/26))); err != nil {
			t.Fatal(err)
		}
	}
	if n := len(b.events); n != cap(b.events) {
		t.Errorf("buffered %d events, want full buffer of %d", n, cap(b.events))
	}
}
