// Package models defines the core data structures used throughout StockPulse.
package models

import (
	"encoding/json"
	"strconv"
)

// NotAvailable is the display text for a metric the provider did not report.
const NotAvailable = "N/A"

// Metric is a single numeric market statistic that may be absent.
// The zero value is the "not available" sentinel.
type Metric struct {
	value float64
	ok    bool
}

// Value returns a present metric holding v.
func Value(v float64) Metric {
	return Metric{value: v, ok: true}
}

// Missing returns the "not available" sentinel.
func Missing() Metric {
	return Metric{}
}

// MetricFrom returns a present metric when v is non-nil, otherwise the sentinel.
func MetricFrom(v *float64) Metric {
	if v == nil {
		return Missing()
	}
	return Value(*v)
}

// Available reports whether the provider supplied this metric.
func (m Metric) Available() bool { return m.ok }

// Float returns the numeric value and whether it is present.
func (m Metric) Float() (float64, bool) { return m.value, m.ok }

// String renders the value verbatim, or "N/A" for the sentinel.
func (m Metric) String() string {
	if !m.ok {
		return NotAvailable
	}
	return strconv.FormatFloat(m.value, 'f', -1, 64)
}

// MarshalJSON encodes the sentinel as null.
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.ok {
		return []byte("null"), nil
	}
	return json.Marshal(m.value)
}

// UnmarshalJSON decodes null as the sentinel.
func (m *Metric) UnmarshalJSON(data []byte) error {
	var v *float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = MetricFrom(v)
	return nil
}

// MarketSnapshot holds point-in-time statistics for a ticker.
// It is built once per request and not modified afterwards.
type MarketSnapshot struct {
	Ticker           string `json:"ticker"`
	CurrentPrice     Metric `json:"current_price"`
	MarketCap        Metric `json:"market_cap"`
	FiftyTwoWeekHigh Metric `json:"fifty_two_week_high"`
	FiftyTwoWeekLow  Metric `json:"fifty_two_week_low"`
	PERatio          Metric `json:"pe_ratio"`
	EPS              Metric `json:"eps"`
}

// SnapshotField is one labeled entry of a MarketSnapshot.
type SnapshotField struct {
	Label string
	Value Metric
}

// Fields returns the six statistics in display order.
func (s *MarketSnapshot) Fields() []SnapshotField {
	return []SnapshotField{
		{Label: "Current Price", Value: s.CurrentPrice},
		{Label: "Market Cap", Value: s.MarketCap},
		{Label: "52-Week High", Value: s.FiftyTwoWeekHigh},
		{Label: "52-Week Low", Value: s.FiftyTwoWeekLow},
		{Label: "PE Ratio", Value: s.PERatio},
		{Label: "EPS", Value: s.EPS},
	}
}

// MissingCount returns how many of the six statistics are absent.
func (s *MarketSnapshot) MissingCount() int {
	n := 0
	for _, f := range s.Fields() {
		if !f.Value.Available() {
			n++
		}
	}
	return n
}
