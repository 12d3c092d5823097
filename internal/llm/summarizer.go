package llm

import (
	"context"
	"strings"
	"time"

	"github.com/seenimoa/stockpulse/pkg/logger"
	"github.com/seenimoa/stockpulse/pkg/utils"
)

// SummaryPrompt prefixes the article text sent to the model.
const SummaryPrompt = "Summarize this stock market news:\n"

// SummaryResult is the outcome of one summary request. Exactly one of the
// following holds: Skipped is true (no text, no call made), Err is set, or
// Text holds a non-empty summary.
type SummaryResult struct {
	Text    string
	Err     error
	Skipped bool
}

// OK reports whether the result carries a summary.
func (r SummaryResult) OK() bool { return !r.Skipped && r.Err == nil && r.Text != "" }

// Summarizer asks an LLMProvider for a short summary of an article.
type Summarizer struct {
	provider LLMProvider
	model    string
	log      *logger.Logger
}

// NewSummarizer creates a Summarizer. An empty model uses the provider's default.
func NewSummarizer(provider LLMProvider, model string, log *logger.Logger) *Summarizer {
	return &Summarizer{
		provider: provider,
		model:    model,
		log:      log.Named("summarizer"),
	}
}

// Summarize sends text to the model with the fixed summary prompt. Empty text
// is skipped without a request. Failures are logged at warn level and
// returned in the result.
func (s *Summarizer) Summarize(ctx context.Context, text string) SummaryResult {
	if text == "" {
		return SummaryResult{Skipped: true}
	}

	start := time.Now()
	resp, err := s.provider.Chat(ctx, []Message{UserMessage(SummaryPrompt + text)}, &ChatOptions{Model: s.model})
	if err != nil {
		s.log.Warn("summary request failed",
			logger.StringField("provider", s.provider.Name()),
			logger.StringField("text", utils.Truncate(text, 60)),
			logger.ErrorField(err),
		)
		return SummaryResult{Err: err}
	}
	if strings.TrimSpace(resp.Content) == "" {
		s.log.Warn("summary response was empty", logger.StringField("provider", s.provider.Name()))
		return SummaryResult{Err: ErrEmptySummary}
	}

	s.log.Debug("summary ready",
		logger.StringField("provider", resp.Provider),
		logger.StringField("model", resp.Model),
		logger.IntField("tokens", resp.Usage.TotalTokens),
		logger.DurationField("took", time.Since(start)),
	)
	return SummaryResult{Text: resp.Content}
}
