// Package parsers turns extracted document text into normalized records.
//
// Bank-statement text goes through a list of StatementFormat strategies.
// Each format recognizes one statement layout; the first format that
// matches a document and yields records wins, and a generic fallback
// handles anything no specific format recognizes. Tabular sources
// (CSV/spreadsheet rows) bypass the line grammars and go through column
// synonym resolution instead. Invoice documents use labeled-field
// extraction.
package parsers

import (
	"regexp"
	"strings"

	"invoice-reconciliation-service/internal/models"
	"invoice-reconciliation-service/pkg/errors"
	"invoice-reconciliation-service/pkg/logger"
)

// StatementFormat recognizes and parses one bank-statement layout.
// Parse is best-effort: lines that do not fit the grammar are skipped,
// never fatal. Implementations enforce the per-document record cap.
type StatementFormat interface {
	Name() string
	Matches(lines []string) bool
	Parse(lines []string) []*models.TransactionRecord
}

// ExtractorConfig holds the tunable parts of transaction extraction.
type ExtractorConfig struct {
	MaxRecords int `json:"max_records"`
}

// DefaultExtractorConfig returns the standard extraction configuration.
func DefaultExtractorConfig() *ExtractorConfig {
	return &ExtractorConfig{
		MaxRecords: models.MaxRecordsPerDocument,
	}
}

// Validate checks the configuration for invalid values.
func (c *ExtractorConfig) Validate() error {
	if c.MaxRecords <= 0 {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "max_records", c.MaxRecords, nil).
			WithSuggestion("max_records must be positive")
	}
	return nil
}

// Extractor orchestrates statement formats over document text and rows.
type Extractor struct {
	config   *ExtractorConfig
	formats  []StatementFormat
	fallback StatementFormat
	logger   logger.Logger
}

// NewExtractor creates an extractor with the standard format list: the
// columnar bank grammar first, then the generic fallback.
func NewExtractor(config *ExtractorConfig) (*Extractor, error) {
	if config == nil {
		config = DefaultExtractorConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Extractor{
		config: config,
		formats: []StatementFormat{
			NewColumnarFormat(config.MaxRecords),
		},
		fallback: NewGenericFormat(config.MaxRecords),
		logger:   logger.GetGlobalLogger().WithComponent("extractor"),
	}, nil
}

// RegisterFormat appends an additional statement format, tried after the
// built-in ones and before the generic fallback.
func (e *Extractor) RegisterFormat(format StatementFormat) {
	e.formats = append(e.formats, format)
}

// ExtractLines parses an ordered sequence of text lines for one document.
// Returns the records in source order. An error is returned only when the
// whole document is unusable; individual bad lines are skipped.
func (e *Extractor) ExtractLines(document string, lines []string) ([]*models.TransactionRecord, error) {
	if !hasUsableText(lines) {
		return nil, errors.FileError(errors.CodeFileEmpty, document, nil)
	}

	for _, format := range e.formats {
		if !format.Matches(lines) {
			continue
		}
		records := format.Parse(lines)
		if len(records) > 0 {
			e.logger.WithFields(logger.Fields{
				"document": document,
				"format":   format.Name(),
				"records":  len(records),
			}).Info("Extracted transactions")
			return records, nil
		}
	}

	records := e.fallback.Parse(lines)
	if len(records) == 0 {
		return nil, errors.ParseError(errors.CodeNoTransactions, document, 0, nil)
	}

	e.logger.WithFields(logger.Fields{
		"document": document,
		"format":   e.fallback.Name(),
		"records":  len(records),
	}).Info("Extracted transactions via fallback")
	return records, nil
}

var referenceHintRe = regexp.MustCompile(`(?i)\b(?:reference|ref\.?|invoice)\s*[:#\-]?\s*([A-Za-z0-9][A-Za-z0-9\-/]{3,})`)

// ReferenceHints collects invoice-reference strings embedded in statement
// text, deduplicated in first-seen order. These are advisory only; the
// matcher treats them as description content, not identity.
func (e *Extractor) ReferenceHints(lines []string) []string {
	seen := make(map[string]bool)
	hints := []string{}
	for _, line := range lines {
		for _, match := range referenceHintRe.FindAllStringSubmatch(line, -1) {
			hint := strings.ToUpper(match[1])
			if !seen[hint] {
				seen[hint] = true
				hints = append(hints, hint)
			}
		}
	}
	return hints
}

func hasUsableText(lines []string) bool {
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			return true
		}
	}
	return false
}
