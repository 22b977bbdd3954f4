package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ContentForge/internal/config"
	"ContentForge/internal/domain"
	"ContentForge/internal/ports"
)

// Client implements ports.Generator against OpenAI-compatible research APIs
// (chat completions with a declared json_schema response format).
type Client struct {
	endpoint     string
	model        string
	apiKey       string
	systemPrompt string
	httpClient   *http.Client
}

var _ ports.Generator = (*Client)(nil)

// NewClient builds a client from configuration.
func NewClient(cfg config.GenerationConfig) *Client {
	return &Client{
		endpoint:     cfg.Endpoint,
		model:        cfg.Model,
		apiKey:       cfg.APIKey,
		systemPrompt: cfg.SystemPrompt,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// Model reports the configured engine identifier for article metadata.
func (c *Client) Model() string {
	return c.model
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type       string          `json:"type"`
	JSONSchema json.RawMessage `json:"json_schema,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Citations []string `json:"citations"`
}

// Complete posts one generation request and returns the raw reply content
// together with any citation URLs the service reports. A non-2xx status fails
// the whole call with the trimmed response body attached.
func (c *Client) Complete(ctx context.Context, params ports.GenerateParams) (domain.Completion, error) {
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return domain.Completion{}, fmt.Errorf("generation client misconfigured")
	}

	system := params.System
	if system == "" {
		system = c.systemPrompt
	}

	messages := make([]chatMessage, 0, 2)
	if system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}
	messages = append(messages, chatMessage{Role: "user", Content: params.Prompt})

	payload := chatRequest{Model: c.model, Messages: messages}
	if len(params.Schema) > 0 {
		payload.ResponseFormat = &responseFormat{Type: "json_schema", JSONSchema: params.Schema}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return domain.Completion{}, fmt.Errorf("marshal generation payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.Completion{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Completion{}, fmt.Errorf("call generation service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.Completion{}, fmt.Errorf("generation service error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return domain.Completion{}, fmt.Errorf("decode generation response: %w", err)
	}

	if len(parsed.Choices) == 0 {
		return domain.Completion{}, fmt.Errorf("generation response has no choices")
	}

	return domain.Completion{
		Content:   parsed.Choices[0].Message.Content,
		Citations: parsed.Citations,
	}, nil
}
