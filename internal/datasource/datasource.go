// Package datasource provides the external data clients used by a report:
// Yahoo Finance for market statistics, and NewsAPI or a Yahoo Finance RSS
// feed for recent articles about a ticker.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/seenimoa/stockpulse/pkg/models"
)

// MarketDataSource fetches point-in-time statistics for a ticker.
type MarketDataSource interface {
	// Name returns the human-readable name of this data source.
	Name() string

	// Snapshot returns the six market statistics for the given ticker.
	// Fields the provider omits carry the "not available" sentinel.
	Snapshot(ctx context.Context, ticker string) (*models.MarketSnapshot, error)
}

// NewsSource fetches recent articles that mention a ticker.
type NewsSource interface {
	// Name returns the human-readable name of this data source.
	Name() string

	// Articles returns at most the configured limit of articles, in the
	// order the provider returned them.
	Articles(ctx context.Context, ticker string) ([]models.NewsArticle, error)
}

// --- Sentinel errors ---

// ErrTickerNotFound is returned when a ticker cannot be resolved.
var ErrTickerNotFound = errors.New("ticker not found")

// ErrNoAPIKey is returned when a provider that needs a key has none.
var ErrNoAPIKey = errors.New("API key not configured")

// ErrHTTP wraps an HTTP error with status code.
type ErrHTTP struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ErrHTTP) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d %s", e.StatusCode, e.Status)
	}
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Body)
}

// StatusCode extracts the HTTP status from err, or 0 if err is not an *ErrHTTP.
func StatusCode(err error) int {
	var httpErr *ErrHTTP
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

// --- Shared HTTP client helpers ---

// DefaultUserAgent is the user agent string used for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// newHTTPClient returns a client with the given timeout, or 30s when unset.
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// doGet performs a GET request with the given URL and headers, returning the
// response body. Any status other than 200 is returned as *ErrHTTP.
// The caller is responsible for closing the returned ReadCloser.
func doGet(ctx context.Context, client *http.Client, url string, headers map[string]string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Accept", "application/json, text/html, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP GET %s: %w", url, err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &ErrHTTP{
			StatusCode: resp.StatusCode,
			Status:     http.StatusText(resp.StatusCode),
			Body:       string(body),
		}
	}

	return resp.Body, nil
}
