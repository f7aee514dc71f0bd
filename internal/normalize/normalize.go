// Package normalize converts the raw date and amount strings found in
// extracted document text into canonical values. Normalization never
// fails hard: an unrecognized input yields ok=false and the caller
// leaves the field null.
package normalize

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateFormats lists the accepted date layouts in match order. Day-first
// layouts come before month-first so an ambiguous numeric date such as
// 03/04/2024 resolves to 3 April, matching the source documents, which
// are UK bank statements.
var DateFormats = []string{
	"2006-01-02",
	"2 Jan 2006",
	"2 January 2006",
	"02/01/2006",
	"02-01-2006",
	"02.01.2006",
	"2/1/2006",
	"2-1-2006",
	"02/01/06",
	"2/1/06",
	"Jan 2, 2006",
	"January 2, 2006",
	"01/02/2006",
	"2006/01/02",
}

// currencySymbols are stripped from amount strings before parsing.
var currencySymbols = []string{"£", "$", "€", "GBP", "USD", "EUR"}

// ParseDate attempts to parse a date string against DateFormats in
// order. Returns the parsed date and true, or the zero time and false.
func ParseDate(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, false
	}

	for _, format := range DateFormats {
		if parsed, err := time.Parse(format, trimmed); err == nil {
			return parsed, true
		}
	}

	return time.Time{}, false
}

// ParseAmount parses a monetary string into a decimal, tolerating
// currency symbols, thousands separators, and surrounding whitespace.
// A value wrapped in parentheses is treated as negative, as in
// accounting notation.
func ParseAmount(value string) (decimal.Decimal, bool) {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return decimal.Decimal{}, false
	}

	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = cleaned[1 : len(cleaned)-1]
	}

	for _, symbol := range currencySymbols {
		cleaned = strings.ReplaceAll(cleaned, symbol, "")
	}
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return decimal.Decimal{}, false
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, false
	}

	if negative {
		amount = amount.Neg()
	}
	return amount, true
}
