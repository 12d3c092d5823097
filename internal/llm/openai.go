package llm

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OpenAIProvider implements LLMProvider for the Chat Completions API. The
// same wire format serves Groq when pointed at its OpenAI-compatible base URL.
type OpenAIProvider struct {
	name    string
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// OpenAIOption configures the OpenAI provider.
type OpenAIOption func(*OpenAIProvider)

// WithOpenAIBaseURL sets a custom base URL (e.g., Groq or a proxy).
func WithOpenAIBaseURL(url string) OpenAIOption {
	return func(p *OpenAIProvider) {
		if url != "" {
			p.baseURL = strings.TrimRight(url, "/")
		}
	}
}

// WithOpenAIModel sets the default model.
func WithOpenAIModel(model string) OpenAIOption {
	return func(p *OpenAIProvider) {
		if model != "" {
			p.model = model
		}
	}
}

// WithOpenAIName sets the provider name reported in responses.
func WithOpenAIName(name string) OpenAIOption {
	return func(p *OpenAIProvider) { p.name = name }
}

// WithOpenAITimeout sets the HTTP client timeout.
func WithOpenAITimeout(d time.Duration) OpenAIOption {
	return func(p *OpenAIProvider) {
		if d > 0 {
			p.client = &http.Client{Timeout: d}
		}
	}
}

// WithOpenAIHTTPClient sets a custom HTTP client.
func WithOpenAIHTTPClient(client *http.Client) OpenAIOption {
	return func(p *OpenAIProvider) { p.client = client }
}

// NewOpenAIProvider creates an OpenAI provider. An empty key is accepted and
// reported as ErrNoAPIKey by Chat.
func NewOpenAIProvider(apiKey string, opts ...OpenAIOption) *OpenAIProvider {
	p := &OpenAIProvider{
		name:    ProviderOpenAI,
		apiKey:  apiKey,
		baseURL: "https://api.openai.com/v1",
		model:   "gpt-4-turbo",
		client:  &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *OpenAIProvider) Name() string { return p.name }

// Chat posts messages to /chat/completions and returns the first choice.
func (p *OpenAIProvider) Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("%s: %w", p.name, ErrNoAPIKey)
	}

	started := time.Now()
	body := completionRequest{Model: p.model}
	if opts != nil {
		if opts.Model != "" {
			body.Model = opts.Model
		}
		body.Temperature = positive(opts.Temperature)
		body.MaxTokens = positive(opts.MaxTokens)
	}
	for _, m := range messages {
		body.Messages = append(body.Messages, completionMessage{Role: string(m.Role), Content: m.Content})
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%s: marshal request: %w", p.name, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderDown, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, newAPIError(p.name, resp.StatusCode, raw)
	}

	var completion completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", p.name, err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("%s: %w", p.name, ErrEmptyResponse)
	}

	out := &Response{
		Content:      completion.Choices[0].Message.Content,
		FinishReason: completion.Choices[0].FinishReason,
		Model:        cmp.Or(completion.Model, body.Model),
		Provider:     p.name,
		Latency:      time.Since(started),
		Usage: Usage{
			PromptTokens:     completion.Usage.PromptTokens,
			CompletionTokens: completion.Usage.CompletionTokens,
			TotalTokens:      completion.Usage.TotalTokens,
		},
	}
	return out, nil
}

// positive returns a pointer to v, or nil when v is not set.
func positive[T int | float64](v T) *T {
	if v <= 0 {
		return nil
	}
	return &v
}

type completionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string              `json:"model"`
	Messages    []completionMessage `json:"messages"`
	Temperature *float64            `json:"temperature,omitempty"`
	MaxTokens   *int                `json:"max_tokens,omitempty"`
}

type completionChoice struct {
	Message      completionMessage `json:"message"`
	FinishReason string            `json:"finish_reason"`
}

type completionUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type completionResponse struct {
	Model   string             `json:"model"`
	Choices []completionChoice `json:"choices"`
	Usage   completionUsage    `json:"usage"`
}

// APIError is a non-200 reply from a chat completions endpoint. It unwraps
// to ErrNoAPIKey, ErrRateLimit, or ErrInvalidModel when the status allows.
type APIError struct {
	Provider   string
	StatusCode int
	Code       string
	Message    string // provider message, or the raw body when it was not JSON
	structured bool
}

func newAPIError(provider string, status int, raw []byte) *APIError {
	e := &APIError{Provider: provider, StatusCode: status, Message: string(raw)}
	var envelope struct {
		Error struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		} `json:"error"`
	}
	if json.Unmarshal(raw, &envelope) == nil && envelope.Error.Message != "" {
		e.Message = envelope.Error.Message
		e.Code = envelope.Error.Code
		e.structured = true
	}
	return e
}

func (e *APIError) Error() string {
	if !e.structured {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	if sentinel := e.Unwrap(); sentinel != nil {
		return fmt.Sprintf("%s: %v: %s", e.Provider, sentinel, e.Message)
	}
	return fmt.Sprintf("%s: API error (%d): %s", e.Provider, e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	if !e.structured {
		return nil
	}
	switch {
	case e.StatusCode == http.StatusUnauthorized:
		return ErrNoAPIKey
	case e.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimit
	case strings.Contains(e.Code, "model_not_found"):
		return ErrInvalidModel
	}
	return nil
}
