// Package llm provides the language-model backends used to summarize news
// articles (OpenAI, Groq through its OpenAI-compatible API, and Gemini) and
// the Summarizer that drives them.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/seenimoa/stockpulse/internal/config"
)

// Provider names for configuration.
const (
	ProviderOpenAI = config.ProviderOpenAI
	ProviderGroq   = config.ProviderGroq
	ProviderGemini = config.ProviderGemini
)

// Common errors returned by LLM providers.
var (
	ErrNoAPIKey        = errors.New("llm: API key not configured")
	ErrRateLimit       = errors.New("llm: rate limit exceeded")
	ErrProviderDown    = errors.New("llm: provider unavailable")
	ErrInvalidModel    = errors.New("llm: invalid model")
	ErrEmptyResponse   = errors.New("llm: response has no choices")
	ErrEmptySummary    = errors.New("llm: empty summary")
	ErrUnknownProvider = errors.New("llm: unknown provider")
)

// Role represents the role of a message sender.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single message in a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Response represents a complete response from the LLM.
type Response struct {
	Content      string        `json:"content"`
	FinishReason string        `json:"finish_reason"`
	Usage        Usage         `json:"usage"`
	Model        string        `json:"model"`
	Provider     string        `json:"provider"`
	Latency      time.Duration `json:"latency"`
}

// Usage tracks token consumption for a request.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatOptions configures a single chat request.
type ChatOptions struct {
	Model       string  `json:"model,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
}

// LLMProvider is the interface that all LLM backends must implement.
type LLMProvider interface {
	// Name returns the provider identifier (e.g., "openai", "gemini").
	Name() string

	// Chat sends a conversation and returns the first completion.
	// opts may be nil.
	Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error)
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// SystemMessage creates a system prompt message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// NewProvider builds the backend selected by cfg.Provider. Keys are not
// checked here; a provider without a key fails on its first Chat call.
func NewProvider(cfg config.LLMConfig) (LLMProvider, error) {
	switch cfg.Provider {
	case ProviderOpenAI, ProviderGroq, "":
		name := cfg.Provider
		if name == "" {
			name = ProviderOpenAI
		}
		return NewOpenAIProvider(cfg.APIKey(),
			WithOpenAIName(name),
			WithOpenAIBaseURL(cfg.ResolvedBaseURL()),
			WithOpenAIModel(cfg.ResolvedModel()),
			WithOpenAITimeout(cfg.Timeout),
		), nil
	case ProviderGemini:
		opts := []GeminiOption{
			WithGeminiModel(cfg.ResolvedModel()),
			WithGeminiTimeout(cfg.Timeout),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, WithGeminiBaseURL(cfg.BaseURL))
		}
		return NewGeminiProvider(cfg.APIKey(), opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

// String returns a human-readable summary of the response.
func (r *Response) String() string {
	truncated := r.Content
	if len(truncated) > 100 {
		truncated = truncated[:100] + "..."
	}
	return fmt.Sprintf("[%s/%s] %q, %d tokens, %v",
		r.Provider, r.Model, truncated, r.Usage.TotalTokens, r.Latency.Round(time.Millisecond))
}
