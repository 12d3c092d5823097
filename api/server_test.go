package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/stockpulse/internal/analysis/sentiment"
	"github.com/seenimoa/stockpulse/internal/config"
	"github.com/seenimoa/stockpulse/internal/report"
	"github.com/seenimoa/stockpulse/pkg/logger"
	"github.com/seenimoa/stockpulse/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Test Helpers
// ════════════════════════════════════════════════════════════════════

type buildFunc func(ctx context.Context, ticker string, obs report.Observer) (*report.Report, error)

func (f buildFunc) BuildWithObserver(ctx context.Context, ticker string, obs report.Observer) (*report.Report, error) {
	return f(ctx, ticker, obs)
}

func sampleReport(ticker string) *report.Report {
	return &report.Report{
		Ticker:      ticker,
		GeneratedAt: time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC),
		Market: report.MarketSection{Source: "Yahoo Finance", Snapshot: &models.MarketSnapshot{
			Ticker:       ticker,
			CurrentPrice: models.Value(150),
			MarketCap:    models.Value(2.5e12),
			PERatio:      models.Missing(),
		}},
		News: report.NewsSection{Source: "NewsAPI", Count: 1, Articles: []report.ArticleReport{{
			NewsArticle: models.NewsArticle{Title: "Apple beats estimates", SourceName: "Wire", URL: "https://example.com/1"},
			Sentiment:   models.SentimentPositive,
			Summary:     "Strong quarter.",
		}}},
	}
}

// fullBuild emits the same event sequence as report.Builder for a one-article report.
func fullBuild(ctx context.Context, ticker string, obs report.Observer) (*report.Report, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, report.ErrEmptyTicker
	}
	rep := sampleReport(ticker)
	if obs != nil {
		obs(report.Event{Type: report.EventMarket, Ticker: ticker, Market: &rep.Market})
		obs(report.Event{Type: report.EventNews, Ticker: ticker, News: &report.NewsSection{Source: "NewsAPI", Count: 1}})
		obs(report.Event{Type: report.EventArticle, Ticker: ticker, Index: 0, Article: &rep.News.Articles[0]})
		obs(report.Event{Type: report.EventDone, Ticker: ticker, Report: rep})
	}
	return rep, nil
}

func testConfig() *config.Config {
	return &config.Config{
		News:   config.NewsConfig{Provider: config.NewsProviderNewsAPI, APIKey: "news-secret-key"},
		LLM:    config.LLMConfig{Provider: config.ProviderOpenAI},
		Report: config.ReportConfig{DefaultTicker: "AAPL", Timeout: 5 * time.Second},
	}
}

func testServer(t *testing.T, b ReportBuilder) *Server {
	t.Helper()
	if b == nil {
		b = buildFunc(fullBuild)
	}
	return NewServer(testConfig(), b, sentiment.Default(), logger.NewNop())
}

func do(t *testing.T, srv *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder, data any) APIResponse {
	t.Helper()
	var raw struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&raw))
	if data != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return APIResponse{Success: raw.Success, Error: raw.Error}
}

// ════════════════════════════════════════════════════════════════════
// Health and status
// ════════════════════════════════════════════════════════════════════

func TestHandleHealth(t *testing.T) {
	rec := do(t, testServer(t, nil), "/api/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var health HealthResponse
	resp := decodeResponse(t, rec, &health)
	assert.True(t, resp.Success)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, Version, health.Version)
	assert.NotEmpty(t, health.Time)
}

func TestHandleStatus_MasksKeys(t *testing.T) {
	rec := do(t, testServer(t, nil), "/api/status")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "news-secret-key")

	var status StatusResponse
	decodeResponse(t, rec, &status)
	assert.Equal(t, "openai", status.LLMProvider)
	assert.Equal(t, "gpt-4-turbo", status.LLMModel)
	assert.Equal(t, "AAPL", status.DefaultTicker)
	require.NotEmpty(t, status.Keys)
	assert.Equal(t, "NewsAPI Key", status.Keys[0].Name)
	assert.True(t, status.Keys[0].IsSet)
	assert.Equal(t, "new...key", status.Keys[0].Masked)
}

// ════════════════════════════════════════════════════════════════════
// Sentiment
// ════════════════════════════════════════════════════════════════════

func TestHandleSentiment(t *testing.T) {
	tests := []struct {
		name  string
		query string
		label models.SentimentLabel
	}{
		{"positive", "text=Great+earnings+and+excellent+growth", models.SentimentPositive},
		{"negative", "text=Terrible+losses+and+awful+outlook", models.SentimentNegative},
		{"neutral", "text=The+company+filed+a+report", models.SentimentNeutral},
		{"empty", "", models.SentimentUnavailable},
	}

	srv := testServer(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, "/api/sentiment?"+tt.query)
			require.Equal(t, http.StatusOK, rec.Code)

			var got SentimentResponse
			resp := decodeResponse(t, rec, &got)
			assert.True(t, resp.Success)
			assert.Equal(t, tt.label, got.Label)
			assert.Equal(t, tt.label.Display(), got.Display)
			if got.Text != "" {
				assert.Equal(t, tt.label, sentiment.Classify(got.Compound))
			}
		})
	}
}

// ════════════════════════════════════════════════════════════════════
// Report
// ════════════════════════════════════════════════════════════════════

func TestHandleReport_JSON(t *testing.T) {
	var gotTicker string
	var hadDeadline bool
	srv := testServer(t, buildFunc(func(ctx context.Context, ticker string, obs report.Observer) (*report.Report, error) {
		gotTicker = ticker
		_, hadDeadline = ctx.Deadline()
		return fullBuild(ctx, ticker, obs)
	}))

	rec := do(t, srv, "/api/report/aapl")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "aapl", gotTicker)
	assert.True(t, hadDeadline)

	var rep report.Report
	resp := decodeResponse(t, rec, &rep)
	assert.True(t, resp.Success)
	assert.Empty(t, resp.Error)
	assert.Equal(t, "AAPL", rep.Ticker)
	assert.Equal(t, "Yahoo Finance", rep.Market.Source)
	require.Len(t, rep.News.Articles, 1)
	assert.Equal(t, models.SentimentPositive, rep.News.Articles[0].Sentiment)
	assert.Equal(t, "Strong quarter.", rep.News.Articles[0].Summary)
}

func TestHandleReport_RenderedFormats(t *testing.T) {
	tests := []struct {
		format      string
		contentType string
		contains    string
	}{
		{"text", "text/plain; charset=utf-8", "Current Price:"},
		{"md", "text/markdown; charset=utf-8", "### Apple beats estimates"},
		{"markdown", "text/markdown; charset=utf-8", "**AI Summary:** Strong quarter."},
		{"html", "text/html; charset=utf-8", "<!DOCTYPE html>"},
	}

	srv := testServer(t, nil)
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			rec := do(t, srv, "/api/report/AAPL?format="+tt.format)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), tt.contains)
		})
	}
}

func TestHandleReport_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		build  buildFunc
		status int
		errMsg string
	}{
		{
			name:   "unknown format",
			target: "/api/report/AAPL?format=pdf",
			build:  fullBuild,
			status: http.StatusBadRequest,
			errMsg: "pdf",
		},
		{
			name:   "blank ticker",
			target: "/api/report/%20%20",
			build:  fullBuild,
			status: http.StatusBadRequest,
			errMsg: report.ErrEmptyTicker.Error(),
		},
		{
			name:   "builder failure",
			target: "/api/report/AAPL",
			build: func(context.Context, string, report.Observer) (*report.Report, error) {
				return nil, errors.New("boom")
			},
			status: http.StatusInternalServerError,
			errMsg: "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, testServer(t, tt.build), tt.target)
			assert.Equal(t, tt.status, rec.Code)
			resp := decodeResponse(t, rec, nil)
			assert.False(t, resp.Success)
			assert.Contains(t, resp.Error, tt.errMsg)
		})
	}
}

func TestHandleReport_Incomplete(t *testing.T) {
	srv := testServer(t, buildFunc(func(_ context.Context, ticker string, _ report.Observer) (*report.Report, error) {
		return sampleReport("AAPL"), context.DeadlineExceeded
	}))

	rec := do(t, srv, "/api/report/AAPL")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "true", rec.Header().Get("X-Report-Incomplete"))

	var rep report.Report
	resp := decodeResponse(t, rec, &rep)
	assert.True(t, resp.Success)
	assert.Contains(t, resp.Error, "report incomplete")
	assert.Equal(t, "AAPL", rep.Ticker)
}

func TestHandleReport_ProviderErrorsStayInSections(t *testing.T) {
	srv := testServer(t, buildFunc(func(_ context.Context, ticker string, _ report.Observer) (*report.Report, error) {
		rep := &report.Report{Ticker: "AAPL"}
		rep.Market.SetError(errors.New("yfinance API error: Quote not found"))
		rep.News.SetError(errors.New("HTTP 404 Not Found"))
		return rep, nil
	}))

	rec := do(t, srv, "/api/report/AAPL?format=text")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Error fetching market data: yfinance API error: Quote not found")
	assert.Contains(t, body, "Error fetching news: HTTP 404 Not Found")
}

// ════════════════════════════════════════════════════════════════════
// Web UI
// ════════════════════════════════════════════════════════════════════

func TestServeUI(t *testing.T) {
	srv := testServer(t, nil)

	rec := do(t, srv, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `value="AAPL"`)

	rec = do(t, srv, "/app.js")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/ws")

	rec = do(t, srv, "/missing.txt")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServeUI_Disabled(t *testing.T) {
	srv := testServer(t, nil)
	srv.SetServeUI(false)

	assert.Equal(t, http.StatusNotFound, do(t, srv, "/").Code)
	assert.Equal(t, http.StatusOK, do(t, srv, "/api/health").Code)
}

func TestCORSHeaders(t *testing.T) {
	srv := testServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

// ════════════════════════════════════════════════════════════════════
// WebSocket streaming
// ════════════════════════════════════════════════════════════════════

func dialWS(t *testing.T, srv *Server) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]json.RawMessage {
	t.Helper()
	var frame map[string]json.RawMessage
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func frameType(t *testing.T, frame map[string]json.RawMessage) string {
	t.Helper()
	var typ string
	require.NoError(t, json.Unmarshal(frame["type"], &typ))
	return typ
}

func TestWebSocket_StreamsEventsInOrder(t *testing.T) {
	conn := dialWS(t, testServer(t, nil))
	require.NoError(t, conn.WriteJSON(StreamRequest{Ticker: "msft"}))

	want := []string{"market", "news", "article", "done"}
	for _, typ := range want {
		frame := readFrame(t, conn)
		require.Equal(t, typ, frameType(t, frame))
		assert.JSONEq(t, `"MSFT"`, string(frame["ticker"]))
	}

	// The connection stays open for further requests.
	require.NoError(t, conn.WriteJSON(StreamRequest{Ticker: "AAPL"}))
	assert.Equal(t, "market", frameType(t, readFrame(t, conn)))
}

func TestWebSocket_ErrorFrames(t *testing.T) {
	conn := dialWS(t, testServer(t, nil))

	require.NoError(t, conn.WriteJSON(StreamRequest{Ticker: "  "}))
	var msg StreamError
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "error", msg.Type)
	assert.Equal(t, report.ErrEmptyTicker.Error(), msg.Error)
	assert.Nil(t, msg.Report)

	// Frames that are not JSON requests are treated as a blank ticker.
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, report.ErrEmptyTicker.Error(), msg.Error)
}

func TestWebSocket_PartialReport(t *testing.T) {
	srv := testServer(t, buildFunc(func(_ context.Context, ticker string, obs report.Observer) (*report.Report, error) {
		rep := sampleReport("AAPL")
		obs(report.Event{Type: report.EventMarket, Ticker: "AAPL", Market: &rep.Market})
		return rep, context.DeadlineExceeded
	}))
	conn := dialWS(t, srv)
	require.NoError(t, conn.WriteJSON(StreamRequest{Ticker: "AAPL"}))

	assert.Equal(t, "market", frameType(t, readFrame(t, conn)))

	var msg StreamError
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "error", msg.Type)
	assert.Equal(t, "AAPL", msg.Ticker)
	assert.Contains(t, msg.Error, "deadline exceeded")
	require.NotNil(t, msg.Report)
	assert.Len(t, msg.Report.News.Articles, 1)
}

// ════════════════════════════════════════════════════════════════════
// Helpers
// ════════════════════════════════════════════════════════════════════

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, http.StatusTeapot, "short and stout")

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"short and stout"}`, rec.Body.String())
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/plain; charset=utf-8", contentType(report.FormatText))
	assert.Equal(t, "text/markdown; charset=utf-8", contentType(report.FormatMarkdown))
	assert.Equal(t, "text/html; charset=utf-8", contentType(report.FormatHTML))
}
