package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"
)

// GeminiProvider implements LLMProvider for Google's Gemini API through the
// genai SDK. The SDK client is created on the first Chat call so that a
// missing key surfaces at request time.
type GeminiProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client

	mu    sync.Mutex
	genAI *genai.Client
}

// GeminiOption configures the Gemini provider.
type GeminiOption func(*GeminiProvider)

// WithGeminiModel sets the default model.
func WithGeminiModel(model string) GeminiOption {
	return func(p *GeminiProvider) {
		if model != "" {
			p.model = model
		}
	}
}

// WithGeminiBaseURL overrides the API endpoint.
func WithGeminiBaseURL(url string) GeminiOption {
	return func(p *GeminiProvider) { p.baseURL = strings.TrimRight(url, "/") + "/" }
}

// WithGeminiTimeout sets the HTTP client timeout.
func WithGeminiTimeout(d time.Duration) GeminiOption {
	return func(p *GeminiProvider) {
		if d > 0 {
			p.client = &http.Client{Timeout: d}
		}
	}
}

// WithGeminiHTTPClient sets a custom HTTP client.
func WithGeminiHTTPClient(client *http.Client) GeminiOption {
	return func(p *GeminiProvider) { p.client = client }
}

// NewGeminiProvider creates a Gemini provider.
func NewGeminiProvider(apiKey string, opts ...GeminiOption) *GeminiProvider {
	p := &GeminiProvider{
		apiKey: apiKey,
		model:  "gemini-2.0-flash",
		client: &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *GeminiProvider) Name() string { return ProviderGemini }

// Chat sends a generate content request to Gemini.
func (p *GeminiProvider) Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("gemini: %w", ErrNoAPIKey)
	}
	client, err := p.sdk(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	model := p.model
	if opts != nil && opts.Model != "" {
		model = opts.Model
	}

	contents, cfg := buildGeminiRequest(messages, opts)
	resp, err := client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: gemini: %v", ErrProviderDown, err)
	}
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("gemini: %w", ErrEmptyResponse)
	}

	r := &Response{
		Content:  resp.Text(),
		Model:    model,
		Provider: ProviderGemini,
		Latency:  time.Since(start),
	}
	if fr := resp.Candidates[0].FinishReason; fr != "" {
		r.FinishReason = strings.ToLower(string(fr))
	}
	if u := resp.UsageMetadata; u != nil {
		r.Usage = Usage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}
	return r, nil
}

// sdk returns the genai client, creating it on first use.
func (p *GeminiProvider) sdk(ctx context.Context) (*genai.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.genAI != nil {
		return p.genAI, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      p.apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  p.client,
		HTTPOptions: genai.HTTPOptions{BaseURL: p.baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	p.genAI = client
	return client, nil
}

// buildGeminiRequest maps chat messages onto genai contents. System messages
// become the system instruction; assistant turns use the "model" role.
func buildGeminiRequest(messages []Message, opts *ChatOptions) ([]*genai.Content, *genai.GenerateContentConfig) {
	var (
		contents []*genai.Content
		system   []string
	)
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, m.Content)
		case RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	var cfg *genai.GenerateContentConfig
	if len(system) > 0 || (opts != nil && (opts.Temperature > 0 || opts.MaxTokens > 0)) {
		cfg = &genai.GenerateContentConfig{}
		if len(system) > 0 {
			cfg.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n"), genai.RoleUser)
		}
		if opts != nil {
			if opts.Temperature > 0 {
				cfg.Temperature = genai.Ptr(float32(opts.Temperature))
			}
			if opts.MaxTokens > 0 {
				cfg.MaxOutputTokens = int32(opts.MaxTokens)
			}
		}
	}
	return contents, cfg
}
