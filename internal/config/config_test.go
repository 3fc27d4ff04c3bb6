package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/billie-coop/switchyard/internal/queue"
)

func TestManager_FirstRunWritesDefaults(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir)

	if err := m.Load(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".switchyard", "config.json")); err != nil {
		t.Fatalf("config file not created: %v", err)
	}

	cfg := m.Get()
	if cfg.LMStudioURL != "http://localhost:1234" {
		t.Errorf("default url = %q", cfg.LMStudioURL)
	}
	if len(cfg.Agents) == 0 {
		t.Error("defaults should include agents")
	}
}

func TestManager_LoadExisting(t *testing.T) {
	dir := t.TempDir()
	confDir := filepath.Join(dir, ".switchyard")
	if err := os.MkdirAll(confDir, 0o755); err != nil {
		t.Fatal(err)
	}
	raw := `{
		"lm_studio_url": "http://localhost:9999",
		"queue": {
			"max_concurrent": 1,
			"max_queue_size": 5,
			"dedup_window_ms": 500,
			"default_priority": "low"
		}
	}`
	if err := os.WriteFile(filepath.Join(confDir, "config.json"), []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	m := NewManager(dir)
	if err := m.Load(); err != nil {
		t.Fatal(err)
	}

	cfg := m.Get()
	if cfg.LMStudioURL != "http://localhost:9999" {
		t.Errorf("url = %q", cfg.LMStudioURL)
	}

	qc := cfg.Queue.SchedulerConfig()
	want := queue.Config{
		MaxConcurrent:   1,
		MaxQueueSize:    5,
		DedupWindow:     500 * time.Millisecond,
		DefaultPriority: queue.PriorityLow,
	}
	if qc != want {
		t.Errorf("scheduler config = %+v, want %+v", qc, want)
	}
}

func TestQueueConfig_Patch(t *testing.T) {
	qc := QueueConfig{
		MaxConcurrent:   2,
		MaxQueueSize:    10,
		DedupWindowMs:   0,
		DefaultPriority: "high",
	}

	s := queue.New(queue.DefaultConfig())
	s.UpdateConfig(qc.Patch())

	got := s.Config()
	if got.MaxConcurrent != 2 || got.MaxQueueSize != 10 {
		t.Errorf("limits = %+v", got)
	}
	if got.DedupWindow != 0 {
		t.Errorf("dedup window = %v, want 0 (disabled)", got.DedupWindow)
	}
	if got.DefaultPriority != queue.PriorityHigh {
		t.Errorf("default priority = %v", got.DefaultPriority)
	}
}

func TestQueueConfig_UnknownPriorityFallsBack(t *testing.T) {
	qc := QueueConfig{DefaultPriority: "urgent-ish"}
	if got := qc.SchedulerConfig().DefaultPriority; got != queue.PriorityNormal {
		t.Errorf("priority = %v, want normal fallback", got)
	}
}
