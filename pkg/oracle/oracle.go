// Package oracle abstracts the text-generation service the maintenance
// pipeline consults. The pipeline only needs a single prompt-in, text-out
// exchange; the concrete client speaks the OpenAI-compatible
// chat-completions protocol.
package oracle

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Oracle is the text-generation capability.
type Oracle interface {
	// Complete submits a prompt and returns the generated text.
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config holds configuration for the chat-completions client.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// APIError reports a non-2xx response from the oracle endpoint.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("oracle: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Client is an OpenAI-compatible chat-completions Oracle.
type Client struct {
	cfg    Config
	client *http.Client
}

// NewClient creates a chat-completions client.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("oracle: missing api key")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("oracle: missing base url")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("oracle: missing model")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.3
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Complete performs one chat-completions exchange. The json_object response
// format keeps the model from wrapping its answer in prose.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	body := map[string]any{
		"model": c.cfg.Model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"max_tokens":      c.cfg.MaxTokens,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]string{"type": "json_object"},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("oracle: marshal request: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("oracle: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("oracle: send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("oracle: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("oracle: decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("oracle: response has no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
