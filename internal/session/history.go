// Package session persists a rolling history of finished requests.
//
// The scheduler forgets requests the moment they reach a terminal state;
// this recorder is the thin persistence glue that keeps the last few
// hundred outcomes on disk across runs. It observes scheduler events and
// never feeds anything back.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/billie-coop/switchyard/internal/logging"
	"github.com/billie-coop/switchyard/internal/queue"
)

// defaultLimit bounds the history file.
const defaultLimit = 200

// Entry is one finished request as stored on disk.
type Entry struct {
	ID          string    `json:"id"`
	Agent       string    `json:"agent"`
	Prompt      string    `json:"prompt"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	EnqueuedAt  time.Time `json:"enqueued_at"`
	StartedAt   time.Time `json:"started_at,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
	Result      string    `json:"result,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// Recorder appends terminal requests to .switchyard/history.json.
type Recorder struct {
	mu      sync.Mutex
	path    string
	entries []Entry
	limit   int
	unsubs  []func()
}

// NewRecorder creates a recorder for the given project directory.
func NewRecorder(projectPath string) *Recorder {
	return &Recorder{
		path:  filepath.Join(projectPath, ".switchyard", "history.json"),
		limit: defaultLimit,
	}
}

// Initialize creates the directory and loads any existing history.
func (rec *Recorder) Initialize() error {
	if err := os.MkdirAll(filepath.Dir(rec.path), 0o755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	data, err := os.ReadFile(rec.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if err := json.Unmarshal(data, &rec.entries); err != nil {
		// A corrupt history file is not worth dying over; start fresh.
		logging.Log.Warn().Err(err).Str("path", rec.path).Msg("discarding unreadable history")
		rec.entries = nil
	}
	return nil
}

// Attach subscribes to the scheduler's terminal events.
func (rec *Recorder) Attach(sched *queue.Scheduler) {
	rec.unsubs = append(rec.unsubs,
		sched.OnProcess(rec.record),
		sched.OnCancel(rec.record),
	)
}

// Close detaches from the scheduler.
func (rec *Recorder) Close() {
	for _, unsub := range rec.unsubs {
		unsub()
	}
	rec.unsubs = nil
}

// Entries returns a copy of the recorded history, newest last.
func (rec *Recorder) Entries() []Entry {
	rec.mu.Lock()
	defer rec.mu.Unlock()

	out := make([]Entry, len(rec.entries))
	copy(out, rec.entries)
	return out
}

// record runs as a scheduler listener; it must not call back into the
// scheduler. The file write is best-effort.
func (rec *Recorder) record(r queue.Request) {
	rec.mu.Lock()
	defer rec.mu.Unlock()

	rec.entries = append(rec.entries, Entry{
		ID:          r.ID,
		Agent:       r.AgentID,
		Prompt:      r.Prompt,
		Priority:    r.Priority.String(),
		Status:      string(r.Status),
		EnqueuedAt:  r.EnqueuedAt,
		StartedAt:   r.StartedAt,
		CompletedAt: r.CompletedAt,
		Result:      r.Result,
		Error:       r.Error,
	})
	if len(rec.entries) > rec.limit {
		rec.entries = rec.entries[len(rec.entries)-rec.limit:]
	}

	if err := rec.save(); err != nil {
		logging.Log.Warn().Err(err).Msg("failed to persist history")
	}
}

// save writes the history file. Caller holds the mutex.
func (rec *Recorder) save() error {
	data, err := json.MarshalIndent(rec.entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(rec.path, data, 0o644)
}
