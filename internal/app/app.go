// Package app wires the services together: config, scheduler, agents,
// executor, telemetry, and history. The TUI and headless entry points
// both run on top of an App.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/billie-coop/switchyard/internal/agent"
	"github.com/billie-coop/switchyard/internal/config"
	"github.com/billie-coop/switchyard/internal/llm"
	"github.com/billie-coop/switchyard/internal/logging"
	"github.com/billie-coop/switchyard/internal/queue"
	"github.com/billie-coop/switchyard/internal/session"
	"github.com/billie-coop/switchyard/internal/telemetry"
)

// App holds all core services.
type App struct {
	Config     *config.Manager
	Scheduler  *queue.Scheduler
	LLM        *llm.LMStudioClient
	Agents     *agent.Registry
	Executor   *agent.Executor
	Metrics    *telemetry.Metrics
	History    *session.Recorder
	Background *Background

	// MetricsAddr overrides the configured listener address when set
	// before Start (the -metrics flag).
	MetricsAddr string

	cancel context.CancelFunc
}

// New builds an app rooted at the given project directory.
func New(workingDir string) (*App, error) {
	cfgMgr := config.NewManager(workingDir)
	if err := cfgMgr.Load(); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	cfg := cfgMgr.Get()
	logging.SetLevel(cfg.LogLevel)

	sched := queue.New(cfg.Queue.SchedulerConfig())

	client := llm.NewLMStudioClient(cfg.LMStudioURL, cfg.Model)
	agents := agent.NewRegistry()
	for _, ac := range cfg.Agents {
		agents.Register(agent.NewLLMAgent(ac.Name, ac.SystemPrompt, client))
	}

	history := session.NewRecorder(workingDir)
	if err := history.Initialize(); err != nil {
		return nil, fmt.Errorf("initializing history: %w", err)
	}
	history.Attach(sched)

	a := &App{
		Config:     cfgMgr,
		Scheduler:  sched,
		LLM:        client,
		Agents:     agents,
		Executor:   agent.NewExecutor(sched, agents),
		Metrics:    telemetry.New(sched),
		History:    history,
		Background: NewBackground(sched, cfg.Background),
	}
	return a, nil
}

// Start launches the executor, background jobs, config watcher, and the
// metrics listener when one is configured.
func (a *App) Start() error {
	if err := a.Executor.Start(); err != nil {
		return err
	}
	a.Background.Start()

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	go func() {
		checkCtx, done := context.WithTimeout(ctx, 5*time.Second)
		defer done()
		if err := a.LLM.HealthCheck(checkCtx); err != nil {
			logging.Log.Warn().Err(err).Msg("llm endpoint is not responding, queued work will fail")
		}
	}()

	go a.Config.Watch(ctx, a.applyConfig)

	addr := a.MetricsAddr
	if addr == "" {
		addr = a.Config.Get().MetricsAddr
	}
	if addr != "" {
		go a.Metrics.Serve(ctx, addr)
	}
	return nil
}

// Stop shuts everything down, waiting for in-flight agent work.
func (a *App) Stop() {
	if a.cancel != nil {
		a.cancel()
	}
	a.Background.Stop()
	if err := a.Executor.Stop(); err != nil {
		logging.Log.Debug().Err(err).Msg("executor stop")
	}
	a.Metrics.Close()
	a.History.Close()
}

// applyConfig pushes a hot-reloaded config into the running services.
// Agent and background-job changes need a restart; the queue limits and
// log level apply immediately.
func (a *App) applyConfig(cfg *config.Config) {
	logging.SetLevel(cfg.LogLevel)
	a.Scheduler.UpdateConfig(cfg.Queue.Patch())
	logging.Log.Info().
		Int("max_concurrent", cfg.Queue.MaxConcurrent).
		Int("max_queue_size", cfg.Queue.MaxQueueSize).
		Msg("scheduler config updated")
}
