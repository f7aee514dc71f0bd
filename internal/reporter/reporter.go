// Package reporter renders reconciliation results for people and for
// machines: a console summary for CLI use and the JSON document payload
// for downstream consumers.
package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"invoice-reconciliation-service/internal/models"
	"invoice-reconciliation-service/internal/reconciler"
	"invoice-reconciliation-service/pkg/errors"
)

// Format selects the report rendering.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

// ReportConfig controls report rendering.
type ReportConfig struct {
	Format        Format `json:"format"`
	ShowMatches   bool   `json:"show_matches"`
	ShowUnmatched bool   `json:"show_unmatched"`
	PrettyJSON    bool   `json:"pretty_json"`
}

// DefaultReportConfig returns the standard console report configuration.
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:        FormatConsole,
		ShowMatches:   true,
		ShowUnmatched: true,
	}
}

// Validate checks the configuration for invalid values.
func (c *ReportConfig) Validate() error {
	switch c.Format {
	case FormatConsole, FormatJSON:
		return nil
	default:
		return errors.ConfigurationError(errors.CodeInvalidConfig, "format", string(c.Format), nil).
			WithSuggestion("valid formats are console and json")
	}
}

// Reporter writes reconciliation reports.
type Reporter struct {
	config *ReportConfig
}

// NewReporter creates a reporter with the given configuration.
func NewReporter(config *ReportConfig) (*Reporter, error) {
	if config == nil {
		config = DefaultReportConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Reporter{config: config}, nil
}

// Write renders the payload to the writer in the configured format.
func (r *Reporter) Write(w io.Writer, payload *reconciler.DocumentPayload) error {
	if r.config.Format == FormatJSON {
		return r.writeJSON(w, payload)
	}
	return r.writeConsole(w, payload)
}

func (r *Reporter) writeJSON(w io.Writer, payload *reconciler.DocumentPayload) error {
	encoder := json.NewEncoder(w)
	if r.config.PrettyJSON {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(payload)
}

func (r *Reporter) writeConsole(w io.Writer, payload *reconciler.DocumentPayload) error {
	report := payload.Reconciliation
	if report == nil || report.Summary == nil {
		_, err := fmt.Fprintln(w, "No reconciliation result.")
		return err
	}
	summary := report.Summary

	var b strings.Builder
	b.WriteString("Reconciliation Summary\n")
	b.WriteString("======================\n")
	fmt.Fprintf(&b, "Invoices:            %d (%s)\n", summary.TotalInvoices, summary.TotalInvoiceAmount.StringFixed(2))
	fmt.Fprintf(&b, "Transactions:        %d (%s)\n", summary.TotalTransactions, summary.TotalTransactionAmount.StringFixed(2))
	fmt.Fprintf(&b, "Exact matches:       %d\n", summary.ExactMatches)
	fmt.Fprintf(&b, "Partial matches:     %d\n", summary.PartialMatches)
	fmt.Fprintf(&b, "Unmatched invoices:  %d\n", summary.UnmatchedInvoices)
	fmt.Fprintf(&b, "Unmatched transactions: %d\n", summary.UnmatchedTransactions)
	fmt.Fprintf(&b, "Matched amount:      %s\n", summary.MatchedAmount.StringFixed(2))
	fmt.Fprintf(&b, "Unmatched amount:    %s\n", summary.UnmatchedAmount.StringFixed(2))

	if r.config.ShowMatches {
		writeMatchSection(&b, "Exact Matches", report.ExactMatches)
		writeMatchSection(&b, "Partial Matches", report.PartialMatches)
	}
	if r.config.ShowUnmatched {
		writeUnmatchedSections(&b, report)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeMatchSection(b *strings.Builder, title string, matches []*models.MatchCandidate) {
	if len(matches) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s\n%s\n", title, strings.Repeat("-", len(title)))
	for i, match := range matches {
		fmt.Fprintf(b, "%d. %s -> #%d %s (score %.2f, %s)\n",
			i+1,
			invoiceLabel(match.Invoice),
			match.Transaction.Sequence,
			match.Transaction.Description,
			match.Score,
			match.ConfidenceLevel,
		)
	}
}

func writeUnmatchedSections(b *strings.Builder, report *reconciler.ReconciliationReport) {
	if len(report.UnmatchedInvoices) > 0 {
		b.WriteString("\nUnmatched Invoices\n------------------\n")
		for i, invoice := range report.UnmatchedInvoices {
			fmt.Fprintf(b, "%d. %s\n", i+1, invoiceLabel(invoice))
		}
	}
	if len(report.UnmatchedTransactions) > 0 {
		b.WriteString("\nUnmatched Transactions\n----------------------\n")
		for i, transaction := range report.UnmatchedTransactions {
			fmt.Fprintf(b, "%d. #%d %s %s\n", i+1, transaction.Sequence, transaction.Description, transaction.Amount.StringFixed(2))
		}
	}
}

func invoiceLabel(invoice *models.InvoiceRecord) string {
	parts := []string{}
	if invoice.InvoiceNumber != nil {
		parts = append(parts, *invoice.InvoiceNumber)
	}
	if invoice.VendorName != nil {
		parts = append(parts, *invoice.VendorName)
	}
	if invoice.TotalAmount != nil {
		parts = append(parts, invoice.TotalAmount.StringFixed(2))
	}
	if len(parts) == 0 {
		return "(unidentified invoice)"
	}
	return strings.Join(parts, " ")
}
