package parsers

import (
	"regexp"
	"strings"

	"invoice-reconciliation-service/internal/models"
	"invoice-reconciliation-service/internal/normalize"
)

var (
	// A columnar statement line starts with a "28 Apr 2024" style date.
	columnarDateRe = regexp.MustCompile(`^(\d{1,2}\s+[A-Za-z]{3,9}\s+\d{4})\s+(.*)$`)

	// Money column values carry grouped thousands and exactly two decimals.
	moneyTokenRe = regexp.MustCompile(`\d{1,3}(?:,\d{3})*\.\d{2}`)

	collapseSpacesRe = regexp.MustCompile(`\s+`)
)

// typeLabels are known transaction-type labels, tried as prefixes of the
// non-money remainder in order.
var typeLabels = []string{
	"Domestic Transfer",
	"Direct Debit",
	"Card Transaction",
}

// debitHints mark the exactly-two-money-values case as a paid-out line.
var debitHints = []string{"debit", "paid out", "out"}

// ColumnarFormat parses statements whose lines follow the column layout
// [date] [type/details] [paid out] [paid in] [balance]. The balance is
// always the last money value on the line.
type ColumnarFormat struct {
	maxRecords int
}

// NewColumnarFormat creates the columnar grammar with a record cap.
func NewColumnarFormat(maxRecords int) *ColumnarFormat {
	return &ColumnarFormat{maxRecords: maxRecords}
}

// Name implements StatementFormat.
func (f *ColumnarFormat) Name() string {
	return "columnar"
}

// Matches reports whether any line starts with the expected date token.
func (f *ColumnarFormat) Matches(lines []string) bool {
	for _, raw := range lines {
		line := collapseSpacesRe.ReplaceAllString(strings.TrimSpace(raw), " ")
		if columnarDateRe.MatchString(line) {
			return true
		}
	}
	return false
}

// Parse implements StatementFormat. Lines that do not begin with a date
// or carry fewer than two money values are skipped.
func (f *ColumnarFormat) Parse(lines []string) []*models.TransactionRecord {
	records := []*models.TransactionRecord{}

	for _, raw := range lines {
		line := collapseSpacesRe.ReplaceAllString(strings.TrimSpace(raw), " ")
		if line == "" {
			continue
		}

		m := columnarDateRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		record := f.parseLine(m[1], m[2])
		if record == nil {
			continue
		}

		record.Sequence = len(records) + 1
		records = append(records, record)
		if len(records) >= f.maxRecords {
			break
		}
	}

	return records
}

func (f *ColumnarFormat) parseLine(dateToken, rest string) *models.TransactionRecord {
	record := &models.TransactionRecord{}

	if date, ok := normalize.ParseDate(dateToken); ok {
		record.TransactionDate = models.TimePtr(date)
	}

	tokens := moneyTokenRe.FindAllString(rest, -1)
	if len(tokens) < 2 {
		// One lone number cannot be split into amount and balance.
		return nil
	}

	decimals := parseMoneyTokens(tokens)
	if len(decimals) < 2 {
		return nil
	}

	n := len(decimals)
	record.Balance = models.DecimalPtr(decimals[n-1])

	if n >= 3 {
		record.PaidIn = models.DecimalPtr(decimals[n-3])
		record.PaidOut = models.DecimalPtr(decimals[n-2])
	} else {
		hint := strings.ToLower(rest)
		if containsAny(hint, debitHints) {
			record.PaidOut = models.DecimalPtr(decimals[n-2])
		} else {
			record.PaidIn = models.DecimalPtr(decimals[n-2])
		}
	}

	record.DeriveAmount()

	remainder := moneyTokenRe.ReplaceAllString(rest, " ")
	remainder = collapseSpacesRe.ReplaceAllString(remainder, " ")
	remainder = strings.TrimSpace(remainder)

	txType, details := splitTypeAndDetails(remainder)
	record.TransactionType = txType
	record.SetDescription(details)

	return record
}

// splitTypeAndDetails peels a known type label off the front of the
// remainder, falling back to the first two words.
func splitTypeAndDetails(remainder string) (string, string) {
	lower := strings.ToLower(remainder)
	for _, label := range typeLabels {
		if strings.HasPrefix(lower, strings.ToLower(label)) {
			details := strings.Trim(remainder[len(label):], " -")
			return label, details
		}
	}

	parts := strings.Split(remainder, " ")
	if len(parts) >= 2 {
		return strings.Join(parts[:2], " "), strings.TrimSpace(strings.Join(parts[2:], " "))
	}
	return "", remainder
}
