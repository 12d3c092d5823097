package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/seenimoa/stockpulse/internal/report"
	"github.com/seenimoa/stockpulse/internal/tui/styles"
	"github.com/seenimoa/stockpulse/pkg/utils"
)

// RenderReport lays out a report for the viewport: a labeled block of market
// statistics followed by one block per article.
func RenderReport(r *report.Report, width int) string {
	if width <= 0 {
		width = 80
	}
	wrap := lipgloss.NewStyle().Width(width - 2)

	var b strings.Builder
	b.WriteString(styles.SectionTitleStyle.Render("Market Statistics"))
	if r.Market.Source != "" {
		b.WriteString(styles.LabelStyle.Render(" (" + r.Market.Source + ")"))
	}
	b.WriteString("\n")

	switch {
	case r.Market.Error != "":
		b.WriteString(wrap.Render(styles.ErrorStyle.Render("Error fetching market data: " + r.Market.Error)))
		b.WriteString("\n")
	case r.Market.Snapshot != nil:
		for _, f := range r.Market.Snapshot.Fields() {
			value := styles.ValueStyle.Render(f.Value.String())
			if v, ok := f.Value.Float(); !ok {
				value = styles.MissingStyle.Render(f.Value.String())
			} else if v >= 1e6 {
				value += styles.LabelStyle.Render(" (" + utils.FormatCompact(v) + ")")
			}
			b.WriteString(fmt.Sprintf("  %s %s\n", styles.LabelStyle.Render(fmt.Sprintf("%-15s", f.Label+":")), value))
		}
	}

	b.WriteString("\n")
	b.WriteString(styles.SectionTitleStyle.Render(fmt.Sprintf("Latest News for %s", r.Ticker)))
	b.WriteString("\n")

	switch {
	case r.News.Error != "":
		b.WriteString(wrap.Render(styles.ErrorStyle.Render("Error fetching news: " + r.News.Error)))
		b.WriteString("\n")
	case len(r.News.Articles) == 0:
		b.WriteString(styles.LabelStyle.Render("No articles found."))
		b.WriteString("\n")
	}

	sep := styles.SeparatorStyle.Render(strings.Repeat("─", min(width-2, 60)))
	for _, a := range r.News.Articles {
		b.WriteString("\n")
		b.WriteString(wrap.Render(styles.HeadlineStyle.Render(a.Title)))
		b.WriteString("\n")
		b.WriteString(styles.LabelStyle.Render("Source: "+a.SourceName+" | ") + styles.LinkStyle.Render(a.URL))
		b.WriteString("\n")
		b.WriteString(styles.LabelStyle.Render("Sentiment: ") + styles.SentimentStyle(a.Sentiment).Render(a.Sentiment.Display()))
		b.WriteString("\n")
		if a.Summary != "" {
			b.WriteString(wrap.Render(styles.SummaryStyle.Render("AI Summary: ") + a.Summary))
			b.WriteString("\n")
		}
		b.WriteString(sep)
		b.WriteString("\n")
	}
	return b.String()
}
