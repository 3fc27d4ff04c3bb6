package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/billie-coop/switchyard/internal/config"
	"github.com/billie-coop/switchyard/internal/queue"
)

func TestNew_WiresDefaultServices(t *testing.T) {
	dir := t.TempDir()

	a, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(dir, ".switchyard", "config.json")); err != nil {
		t.Errorf("config file missing: %v", err)
	}

	for _, name := range []string{"coder", "reviewer"} {
		if _, ok := a.Agents.Get(name); !ok {
			t.Errorf("default agent %q not registered", name)
		}
	}

	cfg := a.Scheduler.Config()
	if cfg.MaxConcurrent != 3 || cfg.MaxQueueSize != 50 {
		t.Errorf("scheduler config = %+v", cfg)
	}
}

func TestApp_ApplyConfig(t *testing.T) {
	a, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	fresh := config.DefaultConfig()
	fresh.Queue.MaxConcurrent = 1
	fresh.Queue.MaxQueueSize = 5
	a.applyConfig(fresh)

	cfg := a.Scheduler.Config()
	if cfg.MaxConcurrent != 1 || cfg.MaxQueueSize != 5 {
		t.Errorf("scheduler config after reload = %+v", cfg)
	}
}

func TestApp_StartStop(t *testing.T) {
	a, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Start(); err != nil {
		t.Fatal(err)
	}
	a.Stop()
}

func TestNewBackground_InvalidScheduleIsSkipped(t *testing.T) {
	sched := queue.New(queue.DefaultConfig())
	b := NewBackground(sched, []config.BackgroundJob{
		{Schedule: "not a cron expression", Agent: "coder", Prompt: "x"},
	})
	b.Start()
	b.Stop()
}
