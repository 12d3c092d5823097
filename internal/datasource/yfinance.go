package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/seenimoa/stockpulse/internal/config"
	"github.com/seenimoa/stockpulse/pkg/logger"
	"github.com/seenimoa/stockpulse/pkg/models"
)

// YFinance implements MarketDataSource using the Yahoo Finance quoteSummary API.
type YFinance struct {
	baseURL string
	client  *http.Client
	log     *logger.Logger
}

// NewYFinance creates a new Yahoo Finance data source.
func NewYFinance(cfg config.MarketConfig, log *logger.Logger) *YFinance {
	return &YFinance{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  newHTTPClient(cfg.Timeout),
		log:     log.Named("yfinance"),
	}
}

// Name returns the data source name.
func (y *YFinance) Name() string { return "Yahoo Finance" }

// --- Yahoo Finance v10 API types ---

type yfSummaryResponse struct {
	QuoteSummary struct {
		Result []yfSummaryResult `json:"result"`
		Error  *yfError          `json:"error"`
	} `json:"quoteSummary"`
}

type yfSummaryResult struct {
	Price *struct {
		RegularMarketPrice *yfFinVal `json:"regularMarketPrice"`
		MarketCap          *yfFinVal `json:"marketCap"`
	} `json:"price"`
	SummaryDetail *struct {
		FiftyTwoWeekHigh *yfFinVal `json:"fiftyTwoWeekHigh"`
		FiftyTwoWeekLow  *yfFinVal `json:"fiftyTwoWeekLow"`
		TrailingPE       *yfFinVal `json:"trailingPE"`
	} `json:"summaryDetail"`
	DefaultKeyStatistics *struct {
		TrailingEps *yfFinVal `json:"trailingEps"`
	} `json:"defaultKeyStatistics"`
}

// yfFinVal is Yahoo's {raw, fmt} value pair. Yahoo reports an absent value
// as an empty object, so Raw is a pointer.
type yfFinVal struct {
	Raw *float64 `json:"raw"`
	Fmt string   `json:"fmt"`
}

type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

const yfModules = "price,summaryDetail,defaultKeyStatistics"

// --- Public methods ---

// Snapshot returns the market statistics for ticker. Each field the provider
// omits is replaced by the sentinel independently of the others.
func (y *YFinance) Snapshot(ctx context.Context, ticker string) (*models.MarketSnapshot, error) {
	start := time.Now()
	endpoint := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		y.baseURL, url.PathEscape(ticker), yfModules)

	body, err := doGet(ctx, y.client, endpoint, map[string]string{
		"Accept": "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("yfinance quote %s: %w", ticker, err)
	}
	defer body.Close()

	var resp yfSummaryResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("parse yfinance quote: %w", err)
	}

	if resp.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("yfinance API error: %s", resp.QuoteSummary.Error.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
	}

	snap := toSnapshot(ticker, resp.QuoteSummary.Result[0])
	y.log.Debug("fetched market snapshot",
		logger.StringField("ticker", ticker),
		logger.IntField("missing_fields", snap.MissingCount()),
		logger.DurationField("took", time.Since(start)),
	)
	return snap, nil
}

// --- Helpers ---

func toSnapshot(ticker string, r yfSummaryResult) *models.MarketSnapshot {
	snap := &models.MarketSnapshot{Ticker: ticker}
	if p := r.Price; p != nil {
		snap.CurrentPrice = metric(p.RegularMarketPrice)
		snap.MarketCap = metric(p.MarketCap)
	}
	if d := r.SummaryDetail; d != nil {
		snap.FiftyTwoWeekHigh = metric(d.FiftyTwoWeekHigh)
		snap.FiftyTwoWeekLow = metric(d.FiftyTwoWeekLow)
		snap.PERatio = metric(d.TrailingPE)
	}
	if k := r.DefaultKeyStatistics; k != nil {
		snap.EPS = metric(k.TrailingEps)
	}
	return snap
}

func metric(v *yfFinVal) models.Metric {
	if v == nil {
		return models.Missing()
	}
	return models.MetricFrom(v.Raw)
}
