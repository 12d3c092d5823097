// Package report builds a single-ticker news sentiment report and renders it
// as plain text, Markdown, JSON or HTML.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/seenimoa/stockpulse/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Report model
// ════════════════════════════════════════════════════════════════════

// Report is the result of one Build. It is immutable once returned.
type Report struct {
	Ticker      string        `json:"ticker"`
	GeneratedAt time.Time     `json:"generated_at"`
	Market      MarketSection `json:"market"`
	News        NewsSection   `json:"news"`
	Duration    time.Duration `json:"duration_ns"`
}

// MarketSection holds the snapshot, or the reason it is missing.
type MarketSection struct {
	Source   string                 `json:"source,omitempty"`
	Snapshot *models.MarketSnapshot `json:"snapshot,omitempty"`
	Error    string                 `json:"error,omitempty"`
	Err      error                  `json:"-"`
}

// SetError records err as the section's failure.
func (s *MarketSection) SetError(err error) {
	s.Err = err
	s.Error = err.Error()
}

// NewsSection holds the processed articles, or the reason there are none.
type NewsSection struct {
	Source   string          `json:"source,omitempty"`
	Articles []ArticleReport `json:"articles,omitempty"`
	Count    int             `json:"count"`
	Error    string          `json:"error,omitempty"`
	Err      error           `json:"-"`
}

// SetError records err as the section's failure.
func (s *NewsSection) SetError(err error) {
	s.Err = err
	s.Error = err.Error()
}

// ArticleReport is one article with its sentiment and optional AI summary.
type ArticleReport struct {
	models.NewsArticle
	Sentiment models.SentimentLabel `json:"sentiment"`
	Summary   string                `json:"summary,omitempty"`
}

// ════════════════════════════════════════════════════════════════════
// Formats
// ════════════════════════════════════════════════════════════════════

// Format specifies the output format.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
)

// ParseFormat validates a format name. "md" is accepted for Markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "html":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unknown report format %q", s)
	}
}

// Render writes r to w in the given format.
func Render(w io.Writer, r *Report, f Format) error {
	switch f {
	case FormatText, "":
		_, err := io.WriteString(w, RenderText(r))
		return err
	case FormatMarkdown:
		_, err := io.WriteString(w, RenderMarkdown(r))
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatHTML:
		return renderHTML(w, r)
	default:
		return fmt.Errorf("unknown report format %q", f)
	}
}

// ════════════════════════════════════════════════════════════════════
// Plain-text renderer
// ════════════════════════════════════════════════════════════════════

// Separator ends each article block.
const Separator = "---"

// RenderText renders r for a terminal.
func RenderText(r *Report) string {
	var sb strings.Builder
	line := strings.Repeat("═", 60)
	thinLine := strings.Repeat("─", 60)

	sb.WriteString(line + "\n")
	sb.WriteString(fmt.Sprintf("  %s Stock News Sentiment\n", r.Ticker))
	sb.WriteString(fmt.Sprintf("  Generated: %s\n", reportTimestamp(r.GeneratedAt)))
	sb.WriteString(line + "\n\n")

	sb.WriteString(fmt.Sprintf("  ■ MARKET STATISTICS%s\n", sourceSuffix(r.Market.Source)))
	if r.Market.Error != "" {
		sb.WriteString(fmt.Sprintf("  Error fetching market data: %s\n", r.Market.Error))
	} else if r.Market.Snapshot != nil {
		for _, f := range r.Market.Snapshot.Fields() {
			sb.WriteString(fmt.Sprintf("    %-16s %s\n", f.Label+":", f.Value))
		}
	}
	sb.WriteString(thinLine + "\n\n")

	sb.WriteString(fmt.Sprintf("  ■ LATEST NEWS%s\n", sourceSuffix(r.News.Source)))
	switch {
	case r.News.Error != "":
		sb.WriteString(fmt.Sprintf("  Error fetching news: %s\n", r.News.Error))
	case len(r.News.Articles) == 0:
		sb.WriteString("  No articles found.\n")
	}
	for _, a := range r.News.Articles {
		sb.WriteString(fmt.Sprintf("\n  %s\n", a.Title))
		sb.WriteString(fmt.Sprintf("  Source: %s | %s\n", a.SourceName, a.URL))
		sb.WriteString(fmt.Sprintf("  Sentiment: %s\n", a.Sentiment.Display()))
		if a.Summary != "" {
			sb.WriteString(fmt.Sprintf("  AI Summary: %s\n", a.Summary))
		}
		sb.WriteString("  " + Separator + "\n")
	}
	sb.WriteString("\n" + line + "\n")
	return sb.String()
}

// ════════════════════════════════════════════════════════════════════
// Markdown renderer
// ════════════════════════════════════════════════════════════════════

// RenderMarkdown renders r as a Markdown document.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s Stock News Sentiment\n\n", r.Ticker))
	sb.WriteString(fmt.Sprintf("_Generated %s_\n\n", reportTimestamp(r.GeneratedAt)))

	sb.WriteString("## Market Statistics\n\n")
	if r.Market.Error != "" {
		sb.WriteString(fmt.Sprintf("> Error fetching market data: %s\n\n", r.Market.Error))
	} else if r.Market.Snapshot != nil {
		sb.WriteString("| Metric | Value |\n|---|---|\n")
		for _, f := range r.Market.Snapshot.Fields() {
			sb.WriteString(fmt.Sprintf("| %s | %s |\n", f.Label, f.Value))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Latest News\n\n")
	switch {
	case r.News.Error != "":
		sb.WriteString(fmt.Sprintf("> Error fetching news: %s\n\n", r.News.Error))
	case len(r.News.Articles) == 0:
		sb.WriteString("No articles found.\n\n")
	}
	for _, a := range r.News.Articles {
		sb.WriteString(fmt.Sprintf("### %s\n\n", escapeMarkdown(a.Title)))
		sb.WriteString(fmt.Sprintf("**Source:** %s | [Read more](%s)\n\n", escapeMarkdown(a.SourceName), a.URL))
		sb.WriteString(fmt.Sprintf("**Sentiment:** %s\n\n", a.Sentiment.Display()))
		if a.Summary != "" {
			sb.WriteString(fmt.Sprintf("**AI Summary:** %s\n\n", a.Summary))
		}
		sb.WriteString(Separator + "\n\n")
	}
	return sb.String()
}

// ════════════════════════════════════════════════════════════════════
// Helpers
// ════════════════════════════════════════════════════════════════════

func sourceSuffix(source string) string {
	if source == "" {
		return ""
	}
	return " (" + source + ")"
}

var markdownEscaper = strings.NewReplacer("|", `\|`, "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`)

func escapeMarkdown(s string) string { return markdownEscaper.Replace(s) }

// reportTimestamp formats t for report headers.
func reportTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02 Jan 2006, 03:04 PM MST")
}

// FormatDuration formats a duration for display.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%.1fm", d.Minutes())
}
