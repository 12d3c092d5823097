// Package sentiment scores free text with the VADER lexicon and maps the
// compound score onto a three-way label.
package sentiment

import (
	"sync"

	"github.com/jonreiter/govader"

	"github.com/seenimoa/stockpulse/pkg/models"
)

// Thresholds on the compound score. Both comparisons are strict, so a score
// of exactly +/-0.05 is Neutral.
const (
	PositiveThreshold = 0.05
	NegativeThreshold = -0.05
)

// Scorer wraps a VADER analyzer. The analyzer only reads its lexicon after
// construction, so a Scorer is safe for concurrent use.
type Scorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewScorer loads the VADER lexicon and returns a ready Scorer.
func NewScorer() *Scorer {
	return &Scorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// defaultScorer is built on first use; loading the lexicon is not free.
var defaultScorer = sync.OnceValue(NewScorer)

// Default returns the process-wide Scorer.
func Default() *Scorer { return defaultScorer() }

// Compound returns the VADER compound score of text, in [-1, 1].
func (s *Scorer) Compound(text string) float64 {
	return s.analyzer.PolarityScores(text).Compound
}

// Score labels text. Empty text is Unavailable; anything else, including
// whitespace, is scored.
func (s *Scorer) Score(text string) models.SentimentLabel {
	if text == "" {
		return models.SentimentUnavailable
	}
	return Classify(s.Compound(text))
}

// Classify maps a compound score to Positive, Negative or Neutral.
func Classify(compound float64) models.SentimentLabel {
	switch {
	case compound > PositiveThreshold:
		return models.SentimentPositive
	case compound < NegativeThreshold:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

// Score labels text with the default Scorer.
func Score(text string) models.SentimentLabel { return Default().Score(text) }

// Compound scores text with the default Scorer.
func Compound(text string) float64 { return Default().Compound(text) }
