// Package agent holds the worker side of the scheduler boundary: the
// agents that produce results for prompts, and the executor that pulls
// admitted requests and runs them.
package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/billie-coop/switchyard/internal/llm"
)

// Agent produces a result for a prompt. Run must respect ctx; the
// executor cancels it on timeout or when the user aborts in-flight work.
type Agent interface {
	Name() string
	Run(ctx context.Context, prompt string) (string, error)
}

// LLMAgent is a persona backed by the local LLM endpoint. The system
// prompt is what distinguishes one agent from another.
type LLMAgent struct {
	name   string
	system string
	client llm.Client
}

// NewLLMAgent creates an agent with the given name and system prompt.
func NewLLMAgent(name, system string, client llm.Client) *LLMAgent {
	return &LLMAgent{name: name, system: system, client: client}
}

func (a *LLMAgent) Name() string { return a.name }

// Run sends the system prompt plus the user prompt and returns the reply.
func (a *LLMAgent) Run(ctx context.Context, prompt string) (string, error) {
	messages := []llm.Message{
		{Role: "system", Content: a.system},
		{Role: "user", Content: prompt},
	}
	return a.client.Complete(ctx, messages)
}

// Registry maps agent ids to agents. Safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	agents map[string]Agent
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{agents: make(map[string]Agent)}
}

// Register adds or replaces the agent under its own name.
func (r *Registry) Register(a Agent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents[a.Name()] = a
}

// Get looks up an agent by id.
func (r *Registry) Get(id string) (Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.agents[id]
	return a, ok
}

// Names returns the registered agent ids.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.agents))
	for name := range r.agents {
		names = append(names, name)
	}
	return names
}

func errUnknownAgent(id string) error {
	return fmt.Errorf("unknown agent %q", id)
}
