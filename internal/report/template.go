package report

import (
	"fmt"
	"html/template"
	"io"

	"github.com/seenimoa/stockpulse/pkg/models"
)

// htmlTemplate is the standalone HTML page produced by FormatHTML.
const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Ticker}} Stock News Sentiment</title>
<style>
  :root {
    --text: #1a1a2e;
    --muted: #6b7280;
    --border: #e5e7eb;
    --accent: #2563eb;
    --green: #16a34a;
    --red: #dc2626;
    --amber: #ca8a04;
    --section-bg: #f8fafc;
  }
  body {
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
    color: var(--text);
    line-height: 1.6;
    max-width: 900px;
    margin: 0 auto;
    padding: 20px;
  }
  h1 { color: var(--accent); font-size: 1.5rem; margin-bottom: 4px; }
  h2 { font-size: 1.2rem; margin: 24px 0 12px; padding-bottom: 6px; border-bottom: 2px solid var(--accent); }
  .muted { color: var(--muted); font-size: 0.85rem; }
  .error { color: var(--red); }
  .quote-bar {
    display: grid;
    grid-template-columns: repeat(auto-fill, minmax(140px, 1fr));
    gap: 8px;
    background: var(--section-bg);
    padding: 12px;
    border-radius: 8px;
  }
  .quote-item { text-align: center; }
  .quote-item .label { font-size: 0.75rem; color: var(--muted); text-transform: uppercase; }
  .quote-item .value { font-size: 1rem; font-weight: 600; }
  .article { border-bottom: 1px solid var(--border); padding: 12px 0; }
  .article h3 { font-size: 1rem; margin: 0 0 4px; }
  .Positive { color: var(--green); }
  .Negative { color: var(--red); }
  .Neutral { color: var(--amber); }
  .Unavailable { color: var(--muted); }
</style>
</head>
<body>
<h1>{{.Ticker}} Stock News Sentiment</h1>
<p class="muted">Generated {{timestamp .GeneratedAt}}</p>

<h2>Market Statistics{{with .Market.Source}} <span class="muted">({{.}})</span>{{end}}</h2>
{{if .Market.Error}}
<p class="error">Error fetching market data: {{.Market.Error}}</p>
{{else if .Market.Snapshot}}
<div class="quote-bar">
{{range .Market.Snapshot.Fields}}  <div class="quote-item"><div class="label">{{.Label}}</div><div class="value">{{.Value}}</div></div>
{{end}}</div>
{{end}}

<h2>Latest News{{with .News.Source}} <span class="muted">({{.}})</span>{{end}}</h2>
{{if .News.Error}}
<p class="error">Error fetching news: {{.News.Error}}</p>
{{else if not .News.Articles}}
<p class="muted">No articles found.</p>
{{end}}
{{range .News.Articles}}
<div class="article">
  <h3>{{.Title}}</h3>
  <p class="muted">Source: {{.SourceName}} | <a href="{{.URL}}">{{.URL}}</a></p>
  <p>Sentiment: <span class="{{sentimentClass .Sentiment}}">{{.Sentiment.Display}}</span></p>
  {{if .Summary}}<p><strong>AI Summary:</strong> {{.Summary}}</p>{{end}}
</div>
{{end}}
</body>
</html>
`

var reportHTML = template.Must(template.New("report").Funcs(template.FuncMap{
	"timestamp": reportTimestamp,
	"sentimentClass": func(l models.SentimentLabel) string {
		if !l.Valid() {
			return string(models.SentimentUnavailable)
		}
		return string(l)
	},
}).Parse(htmlTemplate))

func renderHTML(w io.Writer, r *Report) error {
	if err := reportHTML.Execute(w, r); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}
