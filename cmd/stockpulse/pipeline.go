package main

import (
	"fmt"

	"github.com/seenimoa/stockpulse/internal/analysis/sentiment"
	"github.com/seenimoa/stockpulse/internal/config"
	"github.com/seenimoa/stockpulse/internal/datasource"
	"github.com/seenimoa/stockpulse/internal/llm"
	"github.com/seenimoa/stockpulse/internal/report"
	"github.com/seenimoa/stockpulse/pkg/logger"
)

// pipeline holds the wired clients shared by every surface.
type pipeline struct {
	builder *report.Builder
	scorer  *sentiment.Scorer
}

// newPipeline wires the market, news, sentiment, and summary clients from
// cfg. With summaries disabled no language-model client is created.
func newPipeline(cfg *config.Config, log *logger.Logger, summaries bool) (*pipeline, error) {
	market := datasource.NewYFinance(cfg.Market, log)
	news := datasource.NewNewsSource(cfg.News, log)
	scorer := sentiment.Default()

	var summarizer report.Summarizer
	if summaries {
		provider, err := llm.NewProvider(cfg.LLM)
		if err != nil {
			return nil, fmt.Errorf("llm setup failed: %w", err)
		}
		summarizer = llm.NewSummarizer(provider, cfg.LLM.ResolvedModel(), log)
	}

	return &pipeline{
		builder: report.NewBuilder(market, news, scorer, summarizer, log),
		scorer:  scorer,
	}, nil
}
