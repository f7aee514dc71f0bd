package parsers

import (
	"fmt"
	"regexp"
	"strings"

	"invoice-reconciliation-service/internal/models"
	"invoice-reconciliation-service/internal/normalize"
	"invoice-reconciliation-service/pkg/logger"
)

// DefaultCurrency is assumed when no currency marker appears in the text.
const DefaultCurrency = "GBP"

var (
	invoiceNumberPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\binvoice\s*(?:no\.?|number|#)\s*[:\-]?\s*([A-Z0-9][A-Z0-9\-/]{3,})`),
		regexp.MustCompile(`(?i)\binvoice\b\s*(?:no\.?|number|#)?\s*\n\s*([A-Z0-9][A-Z0-9\-/]{3,})`),
	}
	invoiceNumberFallbacks = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\binvoice\b\s*[:#\-]?\s*([A-Z0-9][A-Z0-9\-/]{3,})`),
		regexp.MustCompile(`(?i)\bbill\b\s*[:#\-]?\s*([A-Z0-9][A-Z0-9\-/]{3,})`),
	}
	containsDigitRe = regexp.MustCompile(`\d`)

	vendorPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?im)^\s*from\s*:?\s*([A-Z][A-Za-z &]+?)\s*$`),
		regexp.MustCompile(`(?im)^\s*seller\s*:?\s*([A-Z][A-Za-z &]+?)\s*$`),
		regexp.MustCompile(`(?i)([A-Z][A-Za-z &]+(?:Inc|Ltd|LLC|Corp|Company))`),
	}

	totalAmountPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bamount\s+due\s*:?\s*[$£€]?\s*(\d+(?:,\d{3})*(?:\.\d{2})?)`),
		regexp.MustCompile(`(?i)\bgrand\s+total\s*:?\s*[$£€]?\s*(\d+(?:,\d{3})*(?:\.\d{2})?)`),
		regexp.MustCompile(`(?i)\btotal\s+(?:gbp|usd|eur)\s*:?\s*[$£€]?\s*(\d+(?:,\d{3})*(?:\.\d{2})?)`),
		regexp.MustCompile(`(?i)\btotal\s*:?\s*[$£€]?\s*(\d+(?:,\d{3})*(?:\.\d{2})?)`),
	}

	accountNumberPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\baccount\s*(?:number|no\.?|#)\s*[:\-]?\s*(\d{8,12})`),
		regexp.MustCompile(`(?i)\bacc\s*(?:no\.?|number)\s*[:\-]?\s*(\d{8,12})`),
		regexp.MustCompile(`(?i)\ba/c\s*(?:no\.?|number)?\s*[:\-]?\s*(\d{8,12})`),
		regexp.MustCompile(`(?i)account\s+(\d{8})\b`),
	}

	sortCodePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bsort\s+code\s*[:\-]?\s*(\d{2}[-\s]\d{2}[-\s]\d{2})`),
		regexp.MustCompile(`(?i)\bsort\s+code\s*[:\-]?\s*(\d{6})`),
	}
)

// dateLabels are tried in order when looking for the invoice date.
var dateLabels = []string{"invoice date", "date", "issued"}

// InvoiceFieldExtractor pulls invoice header fields out of document text
// using labeled-field patterns. Every field is best-effort; a field whose
// label or value is absent stays null and extraction never fails.
type InvoiceFieldExtractor struct {
	logger logger.Logger
}

// NewInvoiceFieldExtractor creates an invoice field extractor.
func NewInvoiceFieldExtractor() *InvoiceFieldExtractor {
	return &InvoiceFieldExtractor{
		logger: logger.GetGlobalLogger().WithComponent("invoice_extractor"),
	}
}

// Extract builds an InvoiceRecord from raw document text.
func (x *InvoiceFieldExtractor) Extract(text string) *models.InvoiceRecord {
	record := &models.InvoiceRecord{
		Currency: detectCurrency(text),
	}
	if strings.TrimSpace(text) == "" {
		return record
	}

	normalized := normalizeInvoiceText(text)

	if number := extractInvoiceNumber(normalized); number != "" {
		record.InvoiceNumber = models.StringPtr(number)
	}
	if vendor := extractVendorName(normalized); vendor != "" {
		record.VendorName = models.StringPtr(vendor)
	}
	if raw := extractLabeledDate(normalized); raw != "" {
		if date, ok := normalize.ParseDate(raw); ok {
			record.InvoiceDate = models.TimePtr(date)
		}
	}
	if raw := firstSubmatch(totalAmountPatterns, normalized); raw != "" {
		if amount, ok := normalize.ParseAmount(raw); ok {
			record.TotalAmount = models.DecimalPtr(amount)
		}
	}
	if account := firstSubmatch(accountNumberPatterns, normalized); account != "" {
		record.AccountNumber = account
	}
	if sortCode := firstSubmatch(sortCodePatterns, normalized); sortCode != "" {
		record.SortCode = strings.ReplaceAll(sortCode, " ", "-")
	}

	x.logger.WithFields(logger.Fields{
		"invoice_number": record.InvoiceNumber != nil,
		"vendor_name":    record.VendorName != nil,
		"invoice_date":   record.InvoiceDate != nil,
		"total_amount":   record.TotalAmount != nil,
	}).Debug("Extracted invoice fields")
	return record
}

var (
	horizontalSpaceRe = regexp.MustCompile(`[\t\f\v]+`)
	doubleSpaceRe     = regexp.MustCompile(` {2,}`)
)

// normalizeInvoiceText collapses horizontal whitespace but keeps line
// breaks, which the labeled-field patterns rely on.
func normalizeInvoiceText(text string) string {
	text = strings.ReplaceAll(text, "\r", "\n")
	text = horizontalSpaceRe.ReplaceAllString(text, " ")
	text = doubleSpaceRe.ReplaceAllString(text, " ")
	return text
}

func extractInvoiceNumber(text string) string {
	for _, pattern := range invoiceNumberPatterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			value := strings.TrimSpace(m[1])
			if len(value) >= 3 && containsDigitRe.MatchString(value) {
				return value
			}
		}
	}
	for _, pattern := range invoiceNumberFallbacks {
		if m := pattern.FindStringSubmatch(text); m != nil {
			value := strings.TrimSpace(m[1])
			if len(value) >= 3 && containsDigitRe.MatchString(value) {
				return value
			}
		}
	}
	return ""
}

func extractVendorName(text string) string {
	for _, pattern := range vendorPatterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			name := strings.TrimSpace(m[1])
			if len(name) > 3 && len(name) < 100 {
				return name
			}
		}
	}
	return ""
}

func extractLabeledDate(text string) string {
	for _, label := range dateLabels {
		patterns := []*regexp.Regexp{
			regexp.MustCompile(fmt.Sprintf(`(?i)%s\s*:?\s*(\d{1,2}[-/]\d{1,2}[-/]\d{2,4})`, label)),
			regexp.MustCompile(fmt.Sprintf(`(?i)%s\s*:?\s*(\d{2,4}[-/]\d{1,2}[-/]\d{1,2})`, label)),
			regexp.MustCompile(fmt.Sprintf(`(?i)%s\s*:?\s*(\d{1,2}\s+[A-Za-z]{3,9}\s+\d{2,4})`, label)),
		}
		for _, pattern := range patterns {
			if m := pattern.FindStringSubmatch(text); m != nil {
				return strings.TrimSpace(m[1])
			}
		}
	}
	return ""
}

func detectCurrency(text string) string {
	switch {
	case strings.Contains(text, "$") || strings.Contains(text, "USD"):
		return "USD"
	case strings.Contains(text, "€") || strings.Contains(text, "EUR"):
		return "EUR"
	default:
		return DefaultCurrency
	}
}

func firstSubmatch(patterns []*regexp.Regexp, text string) string {
	for _, pattern := range patterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}
