package models

import "time"

// NewsArticle represents a single news article mentioning a ticker.
type NewsArticle struct {
	Title       string    `json:"title"`
	SourceName  string    `json:"source_name"`
	URL         string    `json:"url"`
	Description string    `json:"description,omitempty"`
	PublishedAt time.Time `json:"published_at,omitzero"`
}

// SentimentLabel is the three-way classification of a text, plus
// Unavailable when there was no text to score.
type SentimentLabel string

const (
	SentimentPositive    SentimentLabel = "Positive"
	SentimentNegative    SentimentLabel = "Negative"
	SentimentNeutral     SentimentLabel = "Neutral"
	SentimentUnavailable SentimentLabel = "Unavailable"
)

// Valid reports whether l is one of the four defined labels.
func (l SentimentLabel) Valid() bool {
	switch l {
	case SentimentPositive, SentimentNegative, SentimentNeutral, SentimentUnavailable:
		return true
	}
	return false
}

// Display returns the label as shown to users.
func (l SentimentLabel) Display() string {
	switch l {
	case SentimentPositive:
		return "🟢 Positive"
	case SentimentNegative:
		return "🔴 Negative"
	case SentimentNeutral:
		return "🟡 Neutral"
	default:
		return "⚪ No description available"
	}
}
