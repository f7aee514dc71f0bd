package reconciler

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"invoice-reconciliation-service/internal/models"
	"invoice-reconciliation-service/pkg/errors"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(nil)
	if err != nil {
		t.Fatalf("NewEngine error: %v", err)
	}
	return engine
}

func invoiceFixture(amount, date, vendor string) *models.InvoiceRecord {
	invoice := &models.InvoiceRecord{Currency: "GBP"}
	if amount != "" {
		invoice.TotalAmount = models.DecimalPtr(decimal.RequireFromString(amount))
	}
	if date != "" {
		parsed, _ := time.Parse("2006-01-02", date)
		invoice.InvoiceDate = models.TimePtr(parsed)
	}
	if vendor != "" {
		invoice.VendorName = models.StringPtr(vendor)
	}
	return invoice
}

func transactionFixture(sequence int, amount, date, description string) *models.TransactionRecord {
	record := &models.TransactionRecord{Sequence: sequence, Description: description}
	if amount != "" {
		record.PaidIn = models.DecimalPtr(decimal.RequireFromString(amount))
		record.DeriveAmount()
	}
	if date != "" {
		parsed, _ := time.Parse("2006-01-02", date)
		record.TransactionDate = models.TimePtr(parsed)
	}
	return record
}

func TestReconcile_ExactMatch(t *testing.T) {
	engine := newTestEngine(t)

	invoices := []*models.InvoiceRecord{
		invoiceFixture("100.00", "2024-01-05", "Acme Corp"),
	}
	transactions := []*models.TransactionRecord{
		transactionFixture(1, "100.00", "2024-01-05", "Payment to Acme Corp"),
	}

	result, err := engine.Reconcile(context.Background(), invoices, transactions)
	if err != nil {
		t.Fatalf("Reconcile error: %v", err)
	}

	if len(result.Matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(result.Matches))
	}
	match := result.Matches[0]
	if match.Tier != models.TierExact || match.Score != 1.0 {
		t.Errorf("match = tier %q score %v, want exact 1.0", match.Tier, match.Score)
	}
	if len(result.UnmatchedInvoices) != 0 || len(result.UnmatchedTransactions) != 0 {
		t.Errorf("unmatched lists should be empty")
	}
	if result.Summary.ExactMatches != 1 || result.Summary.MatchedAmount.StringFixed(2) != "100.00" {
		t.Errorf("summary = %+v", result.Summary)
	}
}

func TestReconcile_PartialMatch(t *testing.T) {
	engine := newTestEngine(t)

	invoices := []*models.InvoiceRecord{
		invoiceFixture("100.00", "2024-01-05", "Acme"),
	}
	transactions := []*models.TransactionRecord{
		transactionFixture(1, "95.00", "2024-01-07", "Payment to Acme Corp"),
	}

	result, err := engine.Reconcile(context.Background(), invoices, transactions)
	if err != nil {
		t.Fatalf("Reconcile error: %v", err)
	}

	if len(result.Matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(result.Matches))
	}
	if result.Matches[0].Tier != models.TierPartial {
		t.Errorf("Tier = %q, want partial", result.Matches[0].Tier)
	}
	if result.Summary.PartialMatches != 1 {
		t.Errorf("PartialMatches = %d, want 1", result.Summary.PartialMatches)
	}
}

func TestReconcile_NoMatch(t *testing.T) {
	engine := newTestEngine(t)

	invoices := []*models.InvoiceRecord{
		invoiceFixture("100.00", "2024-01-05", "Acme Corp"),
	}
	transactions := []*models.TransactionRecord{
		transactionFixture(1, "10.00", "2024-02-14", "Utility bill"),
	}

	result, err := engine.Reconcile(context.Background(), invoices, transactions)
	if err != nil {
		t.Fatalf("Reconcile error: %v", err)
	}

	if len(result.Matches) != 0 {
		t.Errorf("got %d matches, want 0", len(result.Matches))
	}
	if len(result.UnmatchedInvoices) != 1 || len(result.UnmatchedTransactions) != 1 {
		t.Errorf("both sides should be unmatched")
	}
	if result.Summary.UnmatchedAmount.StringFixed(2) != "100.00" {
		t.Errorf("UnmatchedAmount = %s, want 100.00", result.Summary.UnmatchedAmount.StringFixed(2))
	}
}

func TestReconcile_FirstFitOrder(t *testing.T) {
	engine := newTestEngine(t)

	// Two transactions both qualify; the earlier one must win even though
	// the later one scores higher.
	invoices := []*models.InvoiceRecord{
		invoiceFixture("100.00", "2024-01-05", "Acme"),
	}
	lower := transactionFixture(1, "90.00", "2024-01-10", "Acme payment")
	higher := transactionFixture(2, "99.98", "2024-01-06", "Acme payment")
	transactions := []*models.TransactionRecord{lower, higher}

	result, err := engine.Reconcile(context.Background(), invoices, transactions)
	if err != nil {
		t.Fatalf("Reconcile error: %v", err)
	}

	if len(result.Matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(result.Matches))
	}
	if result.Matches[0].Transaction != lower {
		t.Error("first-fit should pick the earlier qualifying transaction")
	}
}

func TestReconcile_Conservation(t *testing.T) {
	engine := newTestEngine(t)

	invoices := []*models.InvoiceRecord{
		invoiceFixture("100.00", "2024-01-05", "Acme Corp"),
		invoiceFixture("50.00", "2024-01-08", "Beta Ltd"),
		invoiceFixture("75.00", "", ""),
	}
	transactions := []*models.TransactionRecord{
		transactionFixture(1, "100.00", "2024-01-05", "Payment to Acme Corp"),
		transactionFixture(2, "20.00", "2024-03-01", "Unrelated"),
	}

	result, err := engine.Reconcile(context.Background(), invoices, transactions)
	if err != nil {
		t.Fatalf("Reconcile error: %v", err)
	}

	if len(result.Matches)+len(result.UnmatchedInvoices) != len(invoices) {
		t.Errorf("invoice conservation violated: %d + %d != %d",
			len(result.Matches), len(result.UnmatchedInvoices), len(invoices))
	}
	if len(result.Matches)+len(result.UnmatchedTransactions) != len(transactions) {
		t.Errorf("transaction conservation violated: %d + %d != %d",
			len(result.Matches), len(result.UnmatchedTransactions), len(transactions))
	}
}

func TestReconcile_Deterministic(t *testing.T) {
	engine := newTestEngine(t)

	invoices := []*models.InvoiceRecord{
		invoiceFixture("100.00", "2024-01-05", "Acme"),
		invoiceFixture("95.00", "2024-01-06", "Acme"),
	}
	transactions := []*models.TransactionRecord{
		transactionFixture(1, "95.00", "2024-01-06", "Acme payment"),
		transactionFixture(2, "100.00", "2024-01-05", "Acme payment"),
	}

	first, err := engine.Reconcile(context.Background(), invoices, transactions)
	if err != nil {
		t.Fatalf("Reconcile error: %v", err)
	}
	second, err := engine.Reconcile(context.Background(), invoices, transactions)
	if err != nil {
		t.Fatalf("Reconcile error: %v", err)
	}

	firstJSON, _ := json.Marshal(first)
	secondJSON, _ := json.Marshal(second)
	if string(firstJSON) != string(secondJSON) {
		t.Error("re-running on unchanged input must produce the identical partition")
	}
}

func TestReconcile_EmptyInputs(t *testing.T) {
	engine := newTestEngine(t)

	result, err := engine.Reconcile(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("Reconcile error: %v", err)
	}
	if len(result.Matches) != 0 || result.Summary.TotalInvoices != 0 {
		t.Errorf("empty inputs should yield an empty result: %+v", result.Summary)
	}
}

func TestReconcile_CancelledContext(t *testing.T) {
	engine := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Reconcile(ctx, nil, nil)
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestManualMatch(t *testing.T) {
	engine := newTestEngine(t)

	invoiceA := invoiceFixture("100.00", "", "Vendor A")
	invoiceB := invoiceFixture("50.00", "", "Vendor B")
	transactionX := transactionFixture(1, "20.00", "", "X")
	transactionY := transactionFixture(2, "100.00", "", "Y")

	result := &models.ReconciliationResult{
		Matches:               []*models.MatchCandidate{},
		UnmatchedInvoices:     []*models.InvoiceRecord{invoiceA, invoiceB},
		UnmatchedTransactions: []*models.TransactionRecord{transactionX, transactionY},
		Summary: &models.Summary{
			TotalInvoices:         2,
			TotalTransactions:     2,
			UnmatchedInvoices:     2,
			UnmatchedTransactions: 2,
			TotalInvoiceAmount:    decimal.RequireFromString("150.00"),
			UnmatchedAmount:       decimal.RequireFromString("150.00"),
		},
	}

	if err := engine.ManualMatch(result, 0, 1); err != nil {
		t.Fatalf("ManualMatch error: %v", err)
	}

	if len(result.Matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(result.Matches))
	}
	match := result.Matches[0]
	if match.Invoice != invoiceA || match.Transaction != transactionY {
		t.Error("manual match should pair invoice A with transaction Y")
	}
	if !match.Manual || match.Score != 1.0 {
		t.Errorf("match = manual %v score %v, want manual 1.0", match.Manual, match.Score)
	}
	if len(result.UnmatchedInvoices) != 1 || result.UnmatchedInvoices[0] != invoiceB {
		t.Errorf("UnmatchedInvoices = %v, want [B]", result.UnmatchedInvoices)
	}
	if len(result.UnmatchedTransactions) != 1 || result.UnmatchedTransactions[0] != transactionX {
		t.Errorf("UnmatchedTransactions = %v, want [X]", result.UnmatchedTransactions)
	}
	if result.Summary.ExactMatches != 1 || result.Summary.UnmatchedInvoices != 1 {
		t.Errorf("summary = %+v", result.Summary)
	}
	if result.Summary.MatchedAmount.StringFixed(2) != "100.00" {
		t.Errorf("MatchedAmount = %s, want 100.00", result.Summary.MatchedAmount.StringFixed(2))
	}
}

func TestManualMatch_OutOfRange(t *testing.T) {
	engine := newTestEngine(t)

	result := &models.ReconciliationResult{
		UnmatchedInvoices:     []*models.InvoiceRecord{invoiceFixture("10.00", "", "")},
		UnmatchedTransactions: []*models.TransactionRecord{transactionFixture(1, "10.00", "", "")},
		Summary:               &models.Summary{UnmatchedInvoices: 1, UnmatchedTransactions: 1},
	}

	for _, indices := range [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		err := engine.ManualMatch(result, indices[0], indices[1])
		if err == nil {
			t.Fatalf("indices %v: expected error", indices)
		}
		rerr, ok := errors.AsReconcilerError(err)
		if !ok || rerr.Code != errors.CodeIndexOutOfRange {
			t.Errorf("indices %v: error = %v, want index_out_of_range", indices, err)
		}
		if len(result.Matches) != 0 || len(result.UnmatchedInvoices) != 1 {
			t.Errorf("indices %v: rejected request must not mutate the result", indices)
		}
	}
}

func TestBuildPayload(t *testing.T) {
	engine := newTestEngine(t)

	transactions := []*models.TransactionRecord{
		transactionFixture(1, "100.00", "2024-01-05", "Payment to Acme Corp"),
		transactionFixture(2, "20.00", "2024-03-01", "Unrelated"),
	}
	invoices := []*models.InvoiceRecord{
		invoiceFixture("100.00", "2024-01-05", "Acme Corp"),
	}

	result, err := engine.Reconcile(context.Background(), invoices, transactions)
	if err != nil {
		t.Fatalf("Reconcile error: %v", err)
	}

	payload := BuildPayload(transactions, result)

	if len(payload.Transactions) != 2 {
		t.Fatalf("got %d transactions, want 2", len(payload.Transactions))
	}
	if payload.Transactions["1"] != transactions[0] || payload.Transactions["2"] != transactions[1] {
		t.Error("transactions must be keyed by stringified sequence")
	}
	if len(payload.Reconciliation.ExactMatches) != 1 {
		t.Errorf("ExactMatches = %d, want 1", len(payload.Reconciliation.ExactMatches))
	}
	if len(payload.Reconciliation.UnmatchedTransactions) != 1 {
		t.Errorf("UnmatchedTransactions = %d, want 1", len(payload.Reconciliation.UnmatchedTransactions))
	}

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if _, ok := decoded["transactions"]; !ok {
		t.Error("payload missing transactions key")
	}
	if _, ok := decoded["reconciliation"]; !ok {
		t.Error("payload missing reconciliation key")
	}
}
