package datasource

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/seenimoa/stockpulse/internal/config"
	"github.com/seenimoa/stockpulse/pkg/logger"
	"github.com/seenimoa/stockpulse/pkg/models"
)

// RSSNews implements NewsSource using the Yahoo Finance headline feed.
// It needs no API key.
type RSSNews struct {
	feedURL string
	limit   int
	parser  *gofeed.Parser
	log     *logger.Logger
}

// NewRSSNews creates a news source backed by an RSS feed.
func NewRSSNews(cfg config.NewsConfig, log *logger.Logger) *RSSNews {
	parser := gofeed.NewParser()
	parser.UserAgent = DefaultUserAgent
	parser.Client = newHTTPClient(cfg.Timeout)
	return &RSSNews{
		feedURL: cfg.RSSURL,
		limit:   clampLimit(cfg.Limit),
		parser:  parser,
		log:     log.Named("rss"),
	}
}

// Name returns the data source name.
func (n *RSSNews) Name() string { return "Yahoo Finance RSS" }

// Articles returns the first items of the ticker's headline feed.
func (n *RSSNews) Articles(ctx context.Context, ticker string) ([]models.NewsArticle, error) {
	q := url.Values{}
	q.Set("s", ticker)
	q.Set("region", "US")
	q.Set("lang", "en-US")
	feedURL := n.feedURL + "?" + q.Encode()

	feed, err := n.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		var httpErr gofeed.HTTPError
		if errors.As(err, &httpErr) {
			return nil, fmt.Errorf("rss feed %s: %w", ticker, &ErrHTTP{
				StatusCode: httpErr.StatusCode,
				Status:     httpErr.Status,
			})
		}
		return nil, fmt.Errorf("rss feed %s: %w", ticker, err)
	}

	items := feed.Items
	if len(items) > n.limit {
		items = items[:n.limit]
	}

	articles := make([]models.NewsArticle, 0, len(items))
	for _, item := range items {
		a := models.NewsArticle{
			Title:       strings.TrimSpace(item.Title),
			URL:         item.Link,
			SourceName:  feed.Title,
			Description: cleanHTML(item.Description),
		}
		if item.PublishedParsed != nil {
			a.PublishedAt = *item.PublishedParsed
		}
		articles = append(articles, a)
	}

	n.log.Debug("fetched rss articles",
		logger.StringField("ticker", ticker),
		logger.IntField("count", len(articles)),
	)
	return articles, nil
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}
