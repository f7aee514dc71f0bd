// Package models defines the canonical in-memory data model shared by the
// parsers, the matcher, and the reconciliation engine: transaction records
// extracted from bank statements, invoice records extracted from invoice
// documents, and the match structures the engine produces.
//
// All monetary values use shopspring/decimal. Nullable fields are pointers;
// a nil pointer marshals as JSON null. Dates marshal as "2006-01-02" and
// decimals marshal as strings so downstream consumers never see float
// rounding artifacts.
package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// MaxDescriptionLength bounds transaction descriptions. Longer extracted
// text is truncated, not rejected.
const MaxDescriptionLength = 500

// MaxRecordsPerDocument caps how many transaction records a single source
// document may yield, bounding parse time on malformed input.
const MaxRecordsPerDocument = 75000

// Direction indicates which side of the account a transaction moved money.
type Direction string

const (
	DirectionCredit Direction = "credit"
	DirectionDebit  Direction = "debit"
)

// MatchTier distinguishes strict matches from score-qualified ones.
type MatchTier string

const (
	TierExact   MatchTier = "exact"
	TierPartial MatchTier = "partial"
)

// ConfidenceLevel is the coarse band derived from the numeric match score.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// TransactionRecord is one bank-statement transaction extracted from
// document text. Sequence is the 1-based position within the source
// document and serves as the record's identity for one extraction run.
type TransactionRecord struct {
	Sequence        int              `json:"sequence"`
	TransactionDate *time.Time       `json:"transaction_date"`
	TransactionType string           `json:"transaction_type"`
	Description     string           `json:"description"`
	PaidIn          *decimal.Decimal `json:"paid_in"`
	PaidOut         *decimal.Decimal `json:"paid_out"`
	Amount          decimal.Decimal  `json:"amount"`
	Direction       Direction        `json:"type"`
	Balance         *decimal.Decimal `json:"balance"`
	AccountNumber   string           `json:"account_number,omitempty"`
}

// SetDescription assigns the description, truncating to the bounded length.
func (t *TransactionRecord) SetDescription(description string) {
	if len(description) > MaxDescriptionLength {
		description = description[:MaxDescriptionLength]
	}
	t.Description = description
}

// DeriveAmount fills Amount and Direction from the paid-in/paid-out
// columns. A non-zero paid-in wins over paid-out, matching the statement
// grammar where at most one column is populated per line.
func (t *TransactionRecord) DeriveAmount() {
	if t.PaidIn != nil && !t.PaidIn.IsZero() {
		t.Amount = t.PaidIn.Abs()
		t.Direction = DirectionCredit
		return
	}
	if t.PaidOut != nil && !t.PaidOut.IsZero() {
		t.Amount = t.PaidOut.Abs()
		t.Direction = DirectionDebit
	}
}

// MarshalJSON renders decimals as strings and the date as an ISO date.
func (t *TransactionRecord) MarshalJSON() ([]byte, error) {
	type Alias TransactionRecord
	return json.Marshal(&struct {
		*Alias
		TransactionDate *string `json:"transaction_date"`
		PaidIn          *string `json:"paid_in"`
		PaidOut         *string `json:"paid_out"`
		Amount          string  `json:"amount"`
		Balance         *string `json:"balance"`
	}{
		Alias:           (*Alias)(t),
		TransactionDate: formatDate(t.TransactionDate),
		PaidIn:          formatDecimal(t.PaidIn),
		PaidOut:         formatDecimal(t.PaidOut),
		Amount:          t.Amount.StringFixed(2),
		Balance:         formatDecimal(t.Balance),
	})
}

// InvoiceRecord is one invoice extracted from document text. Every field
// is best-effort; extraction stores null rather than failing.
type InvoiceRecord struct {
	InvoiceNumber *string          `json:"invoice_number"`
	VendorName    *string          `json:"vendor_name"`
	InvoiceDate   *time.Time       `json:"invoice_date"`
	TotalAmount   *decimal.Decimal `json:"total_amount"`
	Currency      string           `json:"currency"`
	AccountNumber string           `json:"account_number,omitempty"`
	SortCode      string           `json:"sort_code,omitempty"`
}

// MarshalJSON renders the total as a string and the date as an ISO date.
func (i *InvoiceRecord) MarshalJSON() ([]byte, error) {
	type Alias InvoiceRecord
	return json.Marshal(&struct {
		*Alias
		InvoiceDate *string `json:"invoice_date"`
		TotalAmount *string `json:"total_amount"`
	}{
		Alias:       (*Alias)(i),
		InvoiceDate: formatDate(i.InvoiceDate),
		TotalAmount: formatDecimal(i.TotalAmount),
	})
}

// MatchCandidate pairs one invoice with one transaction, carrying the
// score, tier, confidence band, and the ordered rule names that
// contributed to the score.
type MatchCandidate struct {
	Invoice            *InvoiceRecord     `json:"invoice"`
	Transaction        *TransactionRecord `json:"transaction"`
	Score              float64            `json:"score"`
	Tier               MatchTier          `json:"tier"`
	ConfidenceLevel    ConfidenceLevel    `json:"confidence_level"`
	AmountDifference   decimal.Decimal    `json:"amount_difference"`
	DateDifferenceDays *int               `json:"date_difference_days"`
	MatchingRules      []string           `json:"matching_rules"`
	Manual             bool               `json:"manual,omitempty"`
}

// MarshalJSON renders the amount difference as a string.
func (m *MatchCandidate) MarshalJSON() ([]byte, error) {
	type Alias MatchCandidate
	return json.Marshal(&struct {
		*Alias
		AmountDifference string `json:"amount_difference"`
	}{
		Alias:            (*Alias)(m),
		AmountDifference: m.AmountDifference.StringFixed(2),
	})
}

// Summary aggregates the final partition of a reconciliation run.
type Summary struct {
	TotalInvoices          int             `json:"total_invoices"`
	TotalTransactions      int             `json:"total_transactions"`
	ExactMatches           int             `json:"exact_matches"`
	PartialMatches         int             `json:"partial_matches"`
	UnmatchedInvoices      int             `json:"unmatched_invoices"`
	UnmatchedTransactions  int             `json:"unmatched_transactions"`
	TotalInvoiceAmount     decimal.Decimal `json:"total_invoice_amount"`
	TotalTransactionAmount decimal.Decimal `json:"total_transaction_amount"`
	MatchedAmount          decimal.Decimal `json:"matched_amount"`
	UnmatchedAmount        decimal.Decimal `json:"unmatched_amount"`
}

// MarshalJSON renders amount totals as strings.
func (s *Summary) MarshalJSON() ([]byte, error) {
	type Alias Summary
	return json.Marshal(&struct {
		*Alias
		TotalInvoiceAmount     string `json:"total_invoice_amount"`
		TotalTransactionAmount string `json:"total_transaction_amount"`
		MatchedAmount          string `json:"matched_amount"`
		UnmatchedAmount        string `json:"unmatched_amount"`
	}{
		Alias:                  (*Alias)(s),
		TotalInvoiceAmount:     s.TotalInvoiceAmount.StringFixed(2),
		TotalTransactionAmount: s.TotalTransactionAmount.StringFixed(2),
		MatchedAmount:          s.MatchedAmount.StringFixed(2),
		UnmatchedAmount:        s.UnmatchedAmount.StringFixed(2),
	})
}

// ReconciliationResult is the complete output of one reconciliation run.
// Every input invoice and transaction appears in exactly one of a match
// or an unmatched list.
type ReconciliationResult struct {
	Matches               []*MatchCandidate    `json:"matches"`
	UnmatchedInvoices     []*InvoiceRecord     `json:"unmatched_invoices"`
	UnmatchedTransactions []*TransactionRecord `json:"unmatched_transactions"`
	Summary               *Summary             `json:"summary"`
}

// ExactMatches returns the matches in the exact tier, in match order.
func (r *ReconciliationResult) ExactMatches() []*MatchCandidate {
	return r.matchesByTier(TierExact)
}

// PartialMatches returns the matches in the partial tier, in match order.
func (r *ReconciliationResult) PartialMatches() []*MatchCandidate {
	return r.matchesByTier(TierPartial)
}

func (r *ReconciliationResult) matchesByTier(tier MatchTier) []*MatchCandidate {
	matches := []*MatchCandidate{}
	for _, m := range r.Matches {
		if m.Tier == tier {
			matches = append(matches, m)
		}
	}
	return matches
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}

func formatDecimal(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.StringFixed(2)
	return &s
}

// DecimalPtr returns a pointer to the given decimal.
func DecimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

// StringPtr returns a pointer to the given string.
func StringPtr(s string) *string {
	return &s
}

// TimePtr returns a pointer to the given time.
func TimePtr(t time.Time) *time.Time {
	return &t
}
