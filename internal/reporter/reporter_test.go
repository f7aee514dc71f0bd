package reporter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"invoice-reconciliation-service/internal/models"
	"invoice-reconciliation-service/internal/reconciler"
)

func payloadFixture() *reconciler.DocumentPayload {
	invoice := &models.InvoiceRecord{
		InvoiceNumber: models.StringPtr("INV-001"),
		VendorName:    models.StringPtr("Acme Corp"),
		TotalAmount:   models.DecimalPtr(decimal.RequireFromString("100.00")),
		Currency:      "GBP",
	}
	transaction := &models.TransactionRecord{Sequence: 1, Description: "Payment to Acme Corp"}
	transaction.PaidIn = models.DecimalPtr(decimal.RequireFromString("100.00"))
	transaction.DeriveAmount()

	unmatchedTx := &models.TransactionRecord{Sequence: 2, Description: "Unrelated"}
	unmatchedTx.PaidOut = models.DecimalPtr(decimal.RequireFromString("20.00"))
	unmatchedTx.DeriveAmount()

	result := &models.ReconciliationResult{
		Matches: []*models.MatchCandidate{{
			Invoice:         invoice,
			Transaction:     transaction,
			Score:           1.0,
			Tier:            models.TierExact,
			ConfidenceLevel: models.ConfidenceHigh,
		}},
		UnmatchedInvoices:     []*models.InvoiceRecord{},
		UnmatchedTransactions: []*models.TransactionRecord{unmatchedTx},
		Summary: &models.Summary{
			TotalInvoices:          1,
			TotalTransactions:      2,
			ExactMatches:           1,
			UnmatchedTransactions:  1,
			TotalInvoiceAmount:     decimal.RequireFromString("100.00"),
			TotalTransactionAmount: decimal.RequireFromString("120.00"),
			MatchedAmount:          decimal.RequireFromString("100.00"),
		},
	}

	return reconciler.BuildPayload([]*models.TransactionRecord{transaction, unmatchedTx}, result)
}

func TestReporter_Console(t *testing.T) {
	reporter, err := NewReporter(nil)
	if err != nil {
		t.Fatalf("NewReporter error: %v", err)
	}

	var buf bytes.Buffer
	if err := reporter.Write(&buf, payloadFixture()); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Reconciliation Summary",
		"Exact matches:       1",
		"INV-001 Acme Corp 100.00",
		"Unmatched Transactions",
		"#2 Unrelated 20.00",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("console output missing %q:\n%s", want, out)
		}
	}
}

func TestReporter_JSON(t *testing.T) {
	reporter, err := NewReporter(&ReportConfig{Format: FormatJSON, PrettyJSON: true})
	if err != nil {
		t.Fatalf("NewReporter error: %v", err)
	}

	var buf bytes.Buffer
	if err := reporter.Write(&buf, payloadFixture()); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	transactions, ok := decoded["transactions"].(map[string]interface{})
	if !ok {
		t.Fatal("transactions key missing")
	}
	if _, ok := transactions["1"]; !ok {
		t.Error("transactions must be keyed by stringified sequence")
	}
}

func TestReportConfigValidate(t *testing.T) {
	if err := (&ReportConfig{Format: "xml"}).Validate(); err == nil {
		t.Error("expected error for unknown format")
	}
	if err := DefaultReportConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}
