// Package utils provides common utility functions for StockPulse.
package utils

import "strings"

// NormalizeTicker normalizes a user-input ticker: surrounding whitespace and a
// leading "$" (common in chat) are removed and the result is uppercased.
// An empty result means there is no ticker to look up.
func NormalizeTicker(ticker string) string {
	ticker = strings.TrimSpace(strings.ToUpper(ticker))
	ticker = strings.TrimPrefix(ticker, "$")
	return strings.TrimSpace(ticker)
}
