package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/billie-coop/switchyard/internal/queue"
)

func TestRecorder_RecordsTerminalRequests(t *testing.T) {
	dir := t.TempDir()
	rec := NewRecorder(dir)
	if err := rec.Initialize(); err != nil {
		t.Fatal(err)
	}

	sched := queue.New(queue.DefaultConfig())
	rec.Attach(sched)
	defer rec.Close()

	id, _ := sched.Enqueue("coder", "build it")
	if _, ok := sched.Dequeue(); !ok {
		t.Fatal("dequeue failed")
	}
	sched.Complete(id, "built")

	cancelled, _ := sched.Enqueue("coder", "tear it down")
	sched.Cancel(cancelled)

	entries := rec.Entries()
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Status != "completed" || entries[0].Result != "built" {
		t.Errorf("first entry = %+v", entries[0])
	}
	if entries[1].Status != "cancelled" {
		t.Errorf("second entry = %+v", entries[1])
	}

	// A fresh recorder reads the same history back.
	again := NewRecorder(dir)
	if err := again.Initialize(); err != nil {
		t.Fatal(err)
	}
	if got := len(again.Entries()); got != 2 {
		t.Errorf("reloaded entries = %d, want 2", got)
	}
}

func TestRecorder_TrimsToLimit(t *testing.T) {
	dir := t.TempDir()
	rec := NewRecorder(dir)
	rec.limit = 3
	if err := rec.Initialize(); err != nil {
		t.Fatal(err)
	}

	for i := range 5 {
		rec.record(queue.Request{
			ID:     string(rune('a' + i)),
			Status: queue.StatusCompleted,
		})
	}

	entries := rec.Entries()
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}
	if entries[0].ID != "c" {
		t.Errorf("oldest kept entry = %q, want c", entries[0].ID)
	}
}

func TestRecorder_CorruptFileStartsFresh(t *testing.T) {
	dir := t.TempDir()
	confDir := filepath.Join(dir, ".switchyard")
	if err := os.MkdirAll(confDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(confDir, "history.json"), []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	rec := NewRecorder(dir)
	if err := rec.Initialize(); err != nil {
		t.Fatal(err)
	}
	if got := len(rec.Entries()); got != 0 {
		t.Errorf("entries from corrupt file = %d, want 0", got)
	}
}
