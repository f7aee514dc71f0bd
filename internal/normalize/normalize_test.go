package normalize

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		ok       bool
	}{
		{"iso", "2024-01-15", "2024-01-15", true},
		{"day month year", "28 Apr 2024", "2024-04-28", true},
		{"full month name", "28 April 2024", "2024-04-28", true},
		{"slash day first", "15/01/2024", "2024-01-15", true},
		{"dash day first", "15-01-2024", "2024-01-15", true},
		{"ambiguous resolves day first", "03/04/2024", "2024-04-03", true},
		{"single digit day", "5/3/2024", "2024-03-05", true},
		{"short year", "15/01/24", "2024-01-15", true},
		{"month name first", "Apr 28, 2024", "2024-04-28", true},
		{"whitespace trimmed", "  28 Apr 2024  ", "2024-04-28", true},
		{"not a date", "not a date", "", false},
		{"empty", "", "", false},
		{"bare number", "12345", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, ok := ParseDate(tt.input)
			if ok != tt.ok {
				t.Fatalf("ParseDate(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if !tt.ok {
				return
			}
			if got := parsed.Format("2006-01-02"); got != tt.expected {
				t.Errorf("ParseDate(%q) = %s, want %s", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseDate_DayFirstPrecedence(t *testing.T) {
	// 01/02/2024 must be 1 February, not 2 January.
	parsed, ok := ParseDate("01/02/2024")
	if !ok {
		t.Fatal("ParseDate failed for 01/02/2024")
	}
	if parsed.Month() != time.February || parsed.Day() != 1 {
		t.Errorf("ParseDate(01/02/2024) = %s, want 2024-02-01", parsed.Format("2006-01-02"))
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		ok       bool
	}{
		{"plain", "200.00", "200", true},
		{"thousands separator", "1,234.56", "1234.56", true},
		{"multiple separators", "1,234,567.89", "1234567.89", true},
		{"pound symbol", "£50.00", "50", true},
		{"dollar symbol", "$1,000.00", "1000", true},
		{"currency code", "GBP 75.50", "75.5", true},
		{"negative sign", "-42.10", "-42.1", true},
		{"parentheses negative", "(100.00)", "-100", true},
		{"whitespace", "  10.00  ", "10", true},
		{"integer", "300", "300", true},
		{"empty", "", "", false},
		{"symbol only", "£", "", false},
		{"garbage", "abc", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, ok := ParseAmount(tt.input)
			if ok != tt.ok {
				t.Fatalf("ParseAmount(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if !tt.ok {
				return
			}
			expected, _ := decimal.NewFromString(tt.expected)
			if !amount.Equal(expected) {
				t.Errorf("ParseAmount(%q) = %s, want %s", tt.input, amount.String(), expected.String())
			}
		})
	}
}
