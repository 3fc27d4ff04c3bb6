// Package llm talks to a local OpenAI-compatible chat endpoint (LM Studio,
// llama.cpp server, Ollama). Agents use it to turn prompts into results;
// nothing here knows about the scheduler.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Message is a chat message in the wire format the endpoint expects.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client is the completion interface agents depend on.
type Client interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// LMStudioClient implements Client against an LM Studio style endpoint.
type LMStudioClient struct {
	client  *http.Client
	baseURL string
	model   string
}

// NewLMStudioClient creates a client for the given base URL. An empty
// model uses whatever the endpoint has loaded.
func NewLMStudioClient(baseURL, model string) *LMStudioClient {
	if baseURL == "" {
		baseURL = "http://localhost:1234"
	}
	return &LMStudioClient{
		client:  &http.Client{},
		baseURL: baseURL,
		model:   model,
	}
}

// HealthCheck verifies the endpoint is reachable and serving models.
func (c *LMStudioClient) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/models", nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("llm endpoint not reachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("llm endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// Complete sends the conversation and returns the assistant's reply.
// Cancellation and deadlines come from ctx; the executor owns them.
func (c *LMStudioClient) Complete(ctx context.Context, messages []Message) (string, error) {
	payload := map[string]any{
		"messages":    messages,
		"temperature": 0.7,
		"max_tokens":  -1,
		"stream":      false,
	}
	if c.model != "" {
		payload["model"] = c.model
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return "", fmt.Errorf("llm endpoint returned status %d: %w", resp.StatusCode, readErr)
		}
		return "", fmt.Errorf("llm endpoint error: %s", string(msg))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if len(result.Choices) == 0 {
		return "", errors.New("empty response from llm endpoint")
	}
	return result.Choices[0].Message.Content, nil
}
