package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestTransactionRecord_DeriveAmount(t *testing.T) {
	tests := []struct {
		name          string
		paidIn        string
		paidOut       string
		wantAmount    string
		wantDirection Direction
	}{
		{"paid in wins", "50.00", "10.00", "50.00", DirectionCredit},
		{"paid out only", "", "25.00", "25.00", DirectionDebit},
		{"paid in only", "100.00", "", "100.00", DirectionCredit},
		{"zero paid in falls through", "0.00", "30.00", "30.00", DirectionDebit},
		{"neither", "", "", "0.00", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := &TransactionRecord{}
			if tt.paidIn != "" {
				record.PaidIn = DecimalPtr(decimal.RequireFromString(tt.paidIn))
			}
			if tt.paidOut != "" {
				record.PaidOut = DecimalPtr(decimal.RequireFromString(tt.paidOut))
			}

			record.DeriveAmount()

			if got := record.Amount.StringFixed(2); got != tt.wantAmount {
				t.Errorf("Amount = %s, want %s", got, tt.wantAmount)
			}
			if record.Direction != tt.wantDirection {
				t.Errorf("Direction = %q, want %q", record.Direction, tt.wantDirection)
			}
		})
	}
}

func TestTransactionRecord_SetDescription(t *testing.T) {
	record := &TransactionRecord{}
	record.SetDescription(strings.Repeat("x", MaxDescriptionLength+100))
	if len(record.Description) != MaxDescriptionLength {
		t.Errorf("Description length = %d, want %d", len(record.Description), MaxDescriptionLength)
	}

	record.SetDescription("short")
	if record.Description != "short" {
		t.Errorf("Description = %q, want %q", record.Description, "short")
	}
}

func TestTransactionRecord_MarshalJSON(t *testing.T) {
	date := time.Date(2024, 4, 28, 0, 0, 0, 0, time.UTC)
	record := &TransactionRecord{
		Sequence:        1,
		TransactionDate: TimePtr(date),
		TransactionType: "Domestic Transfer",
		Description:     "Acme Ltd",
		PaidIn:          DecimalPtr(decimal.RequireFromString("50.00")),
		PaidOut:         DecimalPtr(decimal.RequireFromString("10.00")),
		Balance:         DecimalPtr(decimal.RequireFromString("200.00")),
	}
	record.DeriveAmount()

	data, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}

	checks := map[string]interface{}{
		"transaction_date": "2024-04-28",
		"transaction_type": "Domestic Transfer",
		"paid_in":          "50.00",
		"paid_out":         "10.00",
		"amount":           "50.00",
		"type":             "credit",
		"balance":          "200.00",
	}
	for key, want := range checks {
		if decoded[key] != want {
			t.Errorf("%s = %v, want %v", key, decoded[key], want)
		}
	}
}

func TestTransactionRecord_MarshalJSON_Nulls(t *testing.T) {
	record := &TransactionRecord{Sequence: 2, Description: "no numbers here"}

	data, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}

	for _, key := range []string{"transaction_date", "paid_in", "paid_out", "balance"} {
		if decoded[key] != nil {
			t.Errorf("%s = %v, want null", key, decoded[key])
		}
	}
}

func TestInvoiceRecord_MarshalJSON(t *testing.T) {
	date := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	invoice := &InvoiceRecord{
		InvoiceNumber: StringPtr("INV-001"),
		VendorName:    StringPtr("Acme Corp"),
		InvoiceDate:   TimePtr(date),
		TotalAmount:   DecimalPtr(decimal.RequireFromString("100.00")),
		Currency:      "GBP",
	}

	data, err := json.Marshal(invoice)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}

	if decoded["invoice_date"] != "2024-01-05" {
		t.Errorf("invoice_date = %v, want 2024-01-05", decoded["invoice_date"])
	}
	if decoded["total_amount"] != "100.00" {
		t.Errorf("total_amount = %v, want 100.00", decoded["total_amount"])
	}
}

func TestReconciliationResult_MatchesByTier(t *testing.T) {
	result := &ReconciliationResult{
		Matches: []*MatchCandidate{
			{Tier: TierExact, Score: 1.0},
			{Tier: TierPartial, Score: 0.85},
			{Tier: TierExact, Score: 1.0},
		},
	}

	if got := len(result.ExactMatches()); got != 2 {
		t.Errorf("ExactMatches count = %d, want 2", got)
	}
	if got := len(result.PartialMatches()); got != 1 {
		t.Errorf("PartialMatches count = %d, want 1", got)
	}
}
