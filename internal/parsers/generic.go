package parsers

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"invoice-reconciliation-service/internal/models"
	"invoice-reconciliation-service/internal/normalize"
)

var (
	genericDateRe   = regexp.MustCompile(`\d{1,2}[-/]\d{1,2}[-/]\d{2,4}`)
	genericAmountRe = regexp.MustCompile(`\d{1,3}(?:,\d{3})*(?:\.\d{2})?`)
	balanceLabelRe  = regexp.MustCompile(`(?i)balance[:\s]*(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)`)
)

var (
	creditKeywords = []string{"credit", "deposit", "received", "in"}
	debitKeywords  = []string{"debit", "withdraw", "payment", "out"}
)

// GenericFormat is the fallback line parser: any line carrying both a
// date-like token and an amount-like token becomes a record, with the
// direction classified by keyword presence (defaulting to debit).
type GenericFormat struct {
	maxRecords int
}

// NewGenericFormat creates the fallback parser with a record cap.
func NewGenericFormat(maxRecords int) *GenericFormat {
	return &GenericFormat{maxRecords: maxRecords}
}

// Name implements StatementFormat.
func (f *GenericFormat) Name() string {
	return "generic"
}

// Matches implements StatementFormat. The fallback accepts any document
// with at least one line holding a date token and an amount token.
func (f *GenericFormat) Matches(lines []string) bool {
	for _, line := range lines {
		if genericDateRe.MatchString(line) && genericAmountRe.MatchString(stripDates(line)) {
			return true
		}
	}
	return false
}

// Parse implements StatementFormat.
func (f *GenericFormat) Parse(lines []string) []*models.TransactionRecord {
	records := []*models.TransactionRecord{}

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		dateToken := genericDateRe.FindString(line)
		if dateToken == "" {
			continue
		}
		// The amount is searched with the date removed so the date's own
		// digits are never mistaken for a money value.
		amountToken := genericAmountRe.FindString(stripDates(line))
		if amountToken == "" {
			continue
		}

		amount, ok := normalize.ParseAmount(amountToken)
		if !ok {
			continue
		}

		record := &models.TransactionRecord{}
		if date, ok := normalize.ParseDate(dateToken); ok {
			record.TransactionDate = models.TimePtr(date)
		}

		if classifyDirection(line) == models.DirectionCredit {
			record.PaidIn = models.DecimalPtr(amount)
		} else {
			record.PaidOut = models.DecimalPtr(amount)
		}
		record.DeriveAmount()

		if m := balanceLabelRe.FindStringSubmatch(line); m != nil {
			if balance, ok := normalize.ParseAmount(m[1]); ok {
				record.Balance = models.DecimalPtr(balance)
			}
		}

		description := stripDates(line)
		description = genericAmountRe.ReplaceAllString(description, " ")
		description = collapseSpacesRe.ReplaceAllString(description, " ")
		record.SetDescription(strings.TrimSpace(description))

		record.Sequence = len(records) + 1
		records = append(records, record)
		if len(records) >= f.maxRecords {
			break
		}
	}

	return records
}

func classifyDirection(line string) models.Direction {
	lower := strings.ToLower(line)
	if containsAny(lower, creditKeywords) {
		return models.DirectionCredit
	}
	return models.DirectionDebit
}

func stripDates(line string) string {
	return genericDateRe.ReplaceAllString(line, " ")
}

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}

func parseMoneyTokens(tokens []string) []decimal.Decimal {
	decimals := make([]decimal.Decimal, 0, len(tokens))
	for _, token := range tokens {
		if value, ok := normalize.ParseAmount(token); ok {
			decimals = append(decimals, value)
		}
	}
	return decimals
}
