package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/stockpulse/internal/report"
	"github.com/seenimoa/stockpulse/pkg/models"
)

type stubBuilder struct {
	tickers []string
	rep     *report.Report
	err     error
}

func (s *stubBuilder) Build(_ context.Context, ticker string) (*report.Report, error) {
	s.tickers = append(s.tickers, ticker)
	return s.rep, s.err
}

func sampleReport() *report.Report {
	return &report.Report{
		Ticker: "AAPL",
		Market: report.MarketSection{Snapshot: &models.MarketSnapshot{
			CurrentPrice: models.Value(150),
			MarketCap:    models.Value(2.5e12),
			PERatio:      models.Missing(),
		}},
		News: report.NewsSection{Count: 1, Articles: []report.ArticleReport{{
			NewsArticle: models.NewsArticle{Title: "Apple beats", SourceName: "Wire", URL: "https://x/1"},
			Sentiment:   models.SentimentPositive,
			Summary:     "Strong quarter.",
		}}},
	}
}

// runCmd executes cmd and returns the first reportMsg it produces.
func runCmd(t *testing.T, cmd tea.Cmd) reportMsg {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			if c == nil {
				continue
			}
			if rm, ok := c().(reportMsg); ok {
				return rm
			}
		}
		t.Fatal("batch did not produce a reportMsg")
	}
	rm, ok := msg.(reportMsg)
	require.True(t, ok, "got %T", msg)
	return rm
}

func TestNewModelDefaultTicker(t *testing.T) {
	m := NewModel(&stubBuilder{}, "AAPL", time.Second)
	assert.Equal(t, "AAPL", m.input.Value())
	assert.Contains(t, m.View(), "Press Enter")
}

func TestEnterTriggersBuild(t *testing.T) {
	b := &stubBuilder{rep: sampleReport()}
	m := NewModel(b, "AAPL", time.Second)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.loading)
	assert.Contains(t, m.View(), "Fetching")

	// A second Enter while loading is ignored.
	_, again := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, again)

	msg := runCmd(t, cmd)
	assert.Equal(t, []string{"AAPL"}, b.tickers)

	m.Update(msg)
	assert.False(t, m.loading)
	view := m.View()
	assert.Contains(t, view, "AAPL · 1 articles")
	assert.Contains(t, view, "Apple beats")
}

func TestStatusUsesNormalizedTicker(t *testing.T) {
	b := &stubBuilder{rep: sampleReport()}
	m := NewModel(b, "", time.Second)
	m.input.SetValue(" $aapl ")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	msg := runCmd(t, cmd)
	assert.Equal(t, "AAPL", msg.ticker)

	m.Update(msg)
	view := m.View()
	assert.Contains(t, view, "AAPL · 1 articles")
	assert.NotContains(t, view, "$AAPL")
}

func TestBuildErrorShownInStatus(t *testing.T) {
	m := NewModel(&stubBuilder{err: report.ErrEmptyTicker}, "", time.Second)
	m.Update(reportMsg{err: report.ErrEmptyTicker})
	assert.Contains(t, m.View(), "ticker must not be empty")
}

func TestPartialReportShown(t *testing.T) {
	m := NewModel(&stubBuilder{}, "AAPL", time.Second)
	m.Update(reportMsg{ticker: "AAPL", report: sampleReport(), err: errors.New("context deadline exceeded")})
	view := m.View()
	assert.Contains(t, view, "incomplete")
	assert.Contains(t, view, "Apple beats")
}

func TestWindowResize(t *testing.T) {
	m := NewModel(&stubBuilder{}, "AAPL", time.Second)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	assert.Equal(t, 100, m.viewport.Width)
	assert.Equal(t, 40-chrome, m.viewport.Height)

	m.Update(tea.WindowSizeMsg{Width: 20, Height: 4})
	assert.Equal(t, 3, m.viewport.Height)
}

func TestQuitKeys(t *testing.T) {
	m := NewModel(&stubBuilder{}, "AAPL", time.Second)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestRenderReport(t *testing.T) {
	out := RenderReport(sampleReport(), 80)
	assert.Contains(t, out, "Market Statistics")
	assert.Contains(t, out, "Current Price:")
	assert.Contains(t, out, "150")
	assert.Contains(t, out, "2500000000000")
	assert.Contains(t, out, "(2.50T)")
	assert.Contains(t, out, models.NotAvailable)
	assert.Contains(t, out, "🟢 Positive")
	assert.Contains(t, out, "Strong quarter.")

	rep := &report.Report{Ticker: "AAPL"}
	rep.News.SetError(errors.New("HTTP 404 Not Found"))
	out = RenderReport(rep, 80)
	assert.Contains(t, out, "Error fetching news: HTTP 404 Not Found")
}
