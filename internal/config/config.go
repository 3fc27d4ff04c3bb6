// Package config loads and watches the switchyard configuration file.
//
// Configuration lives in .switchyard/config.json inside the project
// directory. The queue section maps onto queue.ConfigPatch so a reload
// can be pushed into a running scheduler without restarting.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/billie-coop/switchyard/internal/queue"
)

// Config is the on-disk configuration.
type Config struct {
	// LMStudioURL is the OpenAI-compatible endpoint agents talk to.
	LMStudioURL string `json:"lm_studio_url"`

	// Model pins a model name; empty uses whatever is loaded.
	Model string `json:"model"`

	LogLevel string `json:"log_level"`

	// MetricsAddr enables the prometheus listener when non-empty,
	// e.g. ":9090".
	MetricsAddr string `json:"metrics_addr,omitempty"`

	Queue QueueConfig `json:"queue"`

	Agents []AgentConfig `json:"agents"`

	// Background entries are enqueued on a cron schedule at low priority.
	Background []BackgroundJob `json:"background,omitempty"`
}

// QueueConfig mirrors queue.Config in JSON-friendly form.
type QueueConfig struct {
	MaxConcurrent   int    `json:"max_concurrent"`
	MaxQueueSize    int    `json:"max_queue_size"`
	DedupWindowMs   int    `json:"dedup_window_ms"`
	DefaultPriority string `json:"default_priority"`
}

// SchedulerConfig converts the JSON form into a queue.Config.
func (q QueueConfig) SchedulerConfig() queue.Config {
	cfg := queue.DefaultConfig()
	if q.MaxConcurrent > 0 {
		cfg.MaxConcurrent = q.MaxConcurrent
	}
	if q.MaxQueueSize > 0 {
		cfg.MaxQueueSize = q.MaxQueueSize
	}
	if q.DedupWindowMs >= 0 {
		cfg.DedupWindow = time.Duration(q.DedupWindowMs) * time.Millisecond
	}
	cfg.DefaultPriority = queue.ParsePriority(q.DefaultPriority, cfg.DefaultPriority)
	return cfg
}

// Patch converts the JSON form into a full-replacement queue.ConfigPatch
// for pushing a reload into a live scheduler.
func (q QueueConfig) Patch() queue.ConfigPatch {
	cfg := q.SchedulerConfig()
	return queue.ConfigPatch{
		MaxConcurrent:   &cfg.MaxConcurrent,
		MaxQueueSize:    &cfg.MaxQueueSize,
		DedupWindow:     &cfg.DedupWindow,
		DefaultPriority: &cfg.DefaultPriority,
	}
}

// AgentConfig declares one agent persona.
type AgentConfig struct {
	Name         string `json:"name"`
	SystemPrompt string `json:"system_prompt"`
}

// BackgroundJob is a cron-scheduled prompt submission.
type BackgroundJob struct {
	// Schedule is a cron expression, e.g. "0 */10 * * * *".
	Schedule string `json:"schedule"`
	Agent    string `json:"agent"`
	Prompt   string `json:"prompt"`
	Priority string `json:"priority,omitempty"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LMStudioURL: "http://localhost:1234",
		LogLevel:    "info",
		Queue: QueueConfig{
			MaxConcurrent:   3,
			MaxQueueSize:    50,
			DedupWindowMs:   2000,
			DefaultPriority: "normal",
		},
		Agents: []AgentConfig{
			{
				Name:         "coder",
				SystemPrompt: "You are a pragmatic senior engineer. Answer with working code and short explanations.",
			},
			{
				Name:         "reviewer",
				SystemPrompt: "You review code and plans. Point out bugs, risks, and missing cases. Be specific.",
			},
		},
	}
}

// Manager handles loading and saving the configuration file. The
// watch goroutine replaces the config concurrently with readers, so
// access goes through the mutex.
type Manager struct {
	mu          sync.RWMutex
	projectPath string
	configPath  string
	config      *Config
}

// NewManager creates a manager for the given project directory.
func NewManager(projectPath string) *Manager {
	dir := filepath.Join(projectPath, ".switchyard")
	return &Manager{
		projectPath: projectPath,
		configPath:  filepath.Join(dir, "config.json"),
		config:      DefaultConfig(),
	}
}

// Path returns the config file location.
func (m *Manager) Path() string {
	return m.configPath
}

// Load reads the configuration from disk, writing defaults on first run.
func (m *Manager) Load() error {
	dir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	if _, err := os.Stat(m.configPath); os.IsNotExist(err) {
		return m.Save()
	}

	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config JSON: %w", err)
	}

	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()
	return nil
}

// Save writes the current configuration to disk.
func (m *Manager) Save() error {
	data, err := json.MarshalIndent(m.Get(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(m.configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}
