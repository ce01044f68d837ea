// Package narrative integrates a local LLM for daily summary prose.
package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/lifelens/lifelens/internal/core"
)

const systemPrompt = "You are a concise journaling assistant. Write a short, " +
	"warm second-person recap of the user's day from the structured digest. " +
	"Two or three sentences, no bullet points, no invented facts."

// Client calls an Ollama-compatible generation API
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Config for the narrative client
type Config struct {
	BaseURL string        // Ollama API URL (default: http://localhost:11434)
	Model   string        // Generation model (default: llama3.2)
	Timeout time.Duration // Request timeout
	RPS     float64       // Requests per second against the model server
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	baseURL := os.Getenv("OLLAMA_HOST")
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	model := os.Getenv("OLLAMA_MODEL")
	if model == "" {
		model = "llama3.2"
	}

	return Config{
		BaseURL: baseURL,
		Model:   model,
		Timeout: 120 * time.Second,
		RPS:     1,
	}
}

// NewClient creates a narrative client
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "llama3.2"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 1
	}

	return &Client{
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RPS), 1),
	}
}

// generateRequest is the Ollama generate API request
type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	System string `json:"system,omitempty"`
	Stream bool   `json:"stream"`
}

// generateResponse is the Ollama generate API response
type generateResponse struct {
	Model     string `json:"model"`
	CreatedAt string `json:"created_at"`
	Response  string `json:"response"`
	Done      bool   `json:"done"`
}

// GenerateNarrativeText turns the structured daily digest into prose.
func (c *Client) GenerateNarrativeText(ctx context.Context, promptContext string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req := generateRequest{
		Model:  c.model,
		Prompt: promptContext,
		System: systemPrompt,
		Stream: false,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrNarrativeUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", core.ErrNarrativeUnavailable, resp.StatusCode, string(respBody))
	}

	var genResp generateResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return strings.TrimSpace(genResp.Response), nil
}

// IsConfigured checks if the model server is reachable
func (c *Client) IsConfigured() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// Model returns the configured model name
func (c *Client) Model() string {
	return c.model
}
