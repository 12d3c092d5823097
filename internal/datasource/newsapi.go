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

// NewsAPI implements NewsSource using the newsapi.org "everything" endpoint.
type NewsAPI struct {
	baseURL string
	apiKey  string
	limit   int
	client  *http.Client
	log     *logger.Logger
}

// NewNewsAPI creates a NewsAPI client. An empty key is accepted here and
// reported as ErrNoAPIKey when Articles is called.
func NewNewsAPI(cfg config.NewsConfig, log *logger.Logger) *NewsAPI {
	return &NewsAPI{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		limit:   clampLimit(cfg.Limit),
		client:  newHTTPClient(cfg.Timeout),
		log:     log.Named("newsapi"),
	}
}

// Name returns the data source name.
func (n *NewsAPI) Name() string { return "NewsAPI" }

type newsAPIResponse struct {
	Status       string           `json:"status"`
	Code         string           `json:"code"`
	Message      string           `json:"message"`
	TotalResults int              `json:"totalResults"`
	Articles     []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source struct {
		ID   *string `json:"id"`
		Name string  `json:"name"`
	} `json:"source"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt"`
}

// Articles queries NewsAPI with the ticker as a free-text query and returns
// the first articles in provider order. The key travels in the X-Api-Key
// header so it never appears in a logged URL.
func (n *NewsAPI) Articles(ctx context.Context, ticker string) ([]models.NewsArticle, error) {
	if n.apiKey == "" {
		return nil, fmt.Errorf("newsapi: %w", ErrNoAPIKey)
	}

	q := url.Values{}
	q.Set("q", ticker)
	q.Set("pageSize", fmt.Sprint(n.limit))
	endpoint := n.baseURL + "/v2/everything?" + q.Encode()

	start := time.Now()
	body, err := doGet(ctx, n.client, endpoint, map[string]string{
		"X-Api-Key": n.apiKey,
		"Accept":    "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("newsapi %s: %w", ticker, err)
	}
	defer body.Close()

	var resp newsAPIResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("parse newsapi response: %w", err)
	}
	if resp.Status == "error" {
		return nil, fmt.Errorf("newsapi error %s: %s", resp.Code, resp.Message)
	}

	raw := resp.Articles
	if len(raw) > n.limit {
		raw = raw[:n.limit]
	}

	articles := make([]models.NewsArticle, 0, len(raw))
	for _, a := range raw {
		art := models.NewsArticle{
			Title:       a.Title,
			SourceName:  a.Source.Name,
			URL:         a.URL,
			PublishedAt: a.PublishedAt,
		}
		if a.Description != nil {
			art.Description = *a.Description
		}
		articles = append(articles, art)
	}

	n.log.Debug("fetched news articles",
		logger.StringField("ticker", ticker),
		logger.IntField("count", len(articles)),
		logger.IntField("total_results", resp.TotalResults),
		logger.DurationField("took", time.Since(start)),
	)
	return articles, nil
}

// clampLimit bounds an article limit to 1..MaxArticles.
func clampLimit(limit int) int {
	if limit <= 0 || limit > config.MaxArticles {
		return config.MaxArticles
	}
	return limit
}

// NewNewsSource returns the news source selected by cfg.Provider.
func NewNewsSource(cfg config.NewsConfig, log *logger.Logger) NewsSource {
	if cfg.Provider == config.NewsProviderRSS {
		return NewRSSNews(cfg, log)
	}
	return NewNewsAPI(cfg, log)
}
