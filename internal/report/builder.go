package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/stockpulse/internal/llm"
	"github.com/seenimoa/stockpulse/pkg/logger"
	"github.com/seenimoa/stockpulse/pkg/models"
	"github.com/seenimoa/stockpulse/pkg/utils"
)

// ErrEmptyTicker is returned by Build when the ticker is blank. It is the
// only error that prevents a report from being produced.
var ErrEmptyTicker = errors.New("ticker must not be empty")

// ════════════════════════════════════════════════════════════════════
// Capabilities
// ════════════════════════════════════════════════════════════════════

// MarketDataFetcher fetches the market snapshot for a ticker.
type MarketDataFetcher interface {
	Snapshot(ctx context.Context, ticker string) (*models.MarketSnapshot, error)
}

// NewsFetcher fetches recent articles for a ticker.
type NewsFetcher interface {
	Articles(ctx context.Context, ticker string) ([]models.NewsArticle, error)
}

// SentimentScorer labels a piece of text.
type SentimentScorer interface {
	Score(text string) models.SentimentLabel
}

// Summarizer produces an optional summary of a piece of text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) llm.SummaryResult
}

// ════════════════════════════════════════════════════════════════════
// Progress events
// ════════════════════════════════════════════════════════════════════

// EventType identifies a stage of a report build.
type EventType string

const (
	EventMarket  EventType = "market"
	EventNews    EventType = "news"
	EventArticle EventType = "article"
	EventDone    EventType = "done"
)

// Event is emitted to an Observer as each stage completes. Only the field
// matching Type is set.
type Event struct {
	Type    EventType      `json:"type"`
	Ticker  string         `json:"ticker"`
	Market  *MarketSection `json:"market,omitempty"`
	News    *NewsSection   `json:"news,omitempty"`
	Index   int            `json:"index,omitempty"`
	Article *ArticleReport `json:"article,omitempty"`
	Report  *Report        `json:"report,omitempty"`
}

// Observer receives progress events. It is called from the goroutine that
// runs Build and must not block for long.
type Observer func(Event)

// ════════════════════════════════════════════════════════════════════
// Builder
// ════════════════════════════════════════════════════════════════════

// Builder runs one report pass: market snapshot and news are fetched
// concurrently, then each article is scored and summarized in order.
type Builder struct {
	market     MarketDataFetcher
	news       NewsFetcher
	scorer     SentimentScorer
	summarizer Summarizer
	log        *logger.Logger
	now        func() time.Time
}

// NewBuilder wires a Builder from its capabilities. summarizer may be nil,
// in which case no summaries are requested.
func NewBuilder(market MarketDataFetcher, news NewsFetcher, scorer SentimentScorer, summarizer Summarizer, log *logger.Logger) *Builder {
	return &Builder{
		market:     market,
		news:       news,
		scorer:     scorer,
		summarizer: summarizer,
		log:        log.Named("report"),
		now:        time.Now,
	}
}

// Build produces the report for ticker.
func (b *Builder) Build(ctx context.Context, ticker string) (*Report, error) {
	return b.BuildWithObserver(ctx, ticker, nil)
}

// BuildWithObserver produces the report for ticker, emitting progress to obs.
// Provider failures are recorded on their section and never returned. If
// ctx ends while articles are being processed, the partial report is
// returned along with the context error.
func (b *Builder) BuildWithObserver(ctx context.Context, ticker string, obs Observer) (*Report, error) {
	ticker = utils.NormalizeTicker(ticker)
	if ticker == "" {
		return nil, ErrEmptyTicker
	}
	if obs == nil {
		obs = func(Event) {}
	}

	start := b.now()
	rep := &Report{
		Ticker:      ticker,
		GeneratedAt: start,
		Market:      MarketSection{Source: sourceName(b.market)},
		News:        NewsSection{Source: sourceName(b.news)},
	}

	var (
		snapshot  *models.MarketSnapshot
		marketErr error
		articles  []models.NewsArticle
		newsErr   error
		g         errgroup.Group
	)
	g.Go(func() error {
		snapshot, marketErr = b.market.Snapshot(ctx, ticker)
		return nil
	})
	g.Go(func() error {
		articles, newsErr = b.news.Articles(ctx, ticker)
		return nil
	})
	_ = g.Wait()

	if marketErr != nil {
		b.log.Warn("market data unavailable", logger.StringField("ticker", ticker), logger.ErrorField(marketErr))
		rep.Market.SetError(marketErr)
	} else {
		rep.Market.Snapshot = snapshot
	}
	obs(Event{Type: EventMarket, Ticker: ticker, Market: &rep.Market})

	if newsErr != nil {
		b.log.Warn("news unavailable", logger.StringField("ticker", ticker), logger.ErrorField(newsErr))
		rep.News.SetError(newsErr)
		articles = nil
	}
	obs(Event{Type: EventNews, Ticker: ticker, News: &NewsSection{
		Source: rep.News.Source,
		Error:  rep.News.Error,
		Count:  len(articles),
	}})

	rep.News.Articles = make([]ArticleReport, 0, len(articles))
	for i, a := range articles {
		if err := ctx.Err(); err != nil {
			rep.News.Count = len(rep.News.Articles)
			rep.Duration = b.now().Sub(start)
			return rep, fmt.Errorf("report %s interrupted after %d articles: %w", ticker, i, err)
		}

		ar := b.processArticle(ctx, a)
		rep.News.Articles = append(rep.News.Articles, ar)
		obs(Event{Type: EventArticle, Ticker: ticker, Index: i, Article: &rep.News.Articles[i]})
	}
	rep.News.Count = len(rep.News.Articles)
	rep.Duration = b.now().Sub(start)

	b.log.Info("report built",
		logger.StringField("ticker", ticker),
		logger.BoolField("market_ok", rep.Market.Error == ""),
		logger.IntField("articles", rep.News.Count),
		logger.DurationField("took", rep.Duration),
	)
	obs(Event{Type: EventDone, Ticker: ticker, Report: rep})
	return rep, nil
}

// processArticle scores and summarizes one article's description.
func (b *Builder) processArticle(ctx context.Context, a models.NewsArticle) ArticleReport {
	ar := ArticleReport{
		NewsArticle: a,
		Sentiment:   b.scorer.Score(a.Description),
	}
	if b.summarizer != nil {
		if res := b.summarizer.Summarize(ctx, a.Description); res.OK() {
			ar.Summary = res.Text
		}
	}
	return ar
}

// sourceName returns v's Name() if it has one.
func sourceName(v any) string {
	if n, ok := v.(interface{ Name() string }); ok {
		return n.Name()
	}
	return ""
}
