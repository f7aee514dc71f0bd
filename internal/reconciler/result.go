package reconciler

import (
	"strconv"

	"invoice-reconciliation-service/internal/models"
)

// DocumentPayload is the JSON shape handed to the persistence/API layer.
// Transaction map keys are stringified 1-based sequence numbers; their
// numeric order reflects source order and consumers must treat that
// ordering as significant.
type DocumentPayload struct {
	Transactions   map[string]*models.TransactionRecord `json:"transactions"`
	Reconciliation *ReconciliationReport                `json:"reconciliation"`
}

// ReconciliationReport splits the match list by tier for the payload.
type ReconciliationReport struct {
	ExactMatches          []*models.MatchCandidate    `json:"exact_matches"`
	PartialMatches        []*models.MatchCandidate    `json:"partial_matches"`
	UnmatchedInvoices     []*models.InvoiceRecord     `json:"unmatched_invoices"`
	UnmatchedTransactions []*models.TransactionRecord `json:"unmatched_transactions"`
	Summary               *models.Summary             `json:"summary"`
}

// BuildPayload assembles the document payload from the extracted
// transactions and a reconciliation result.
func BuildPayload(transactions []*models.TransactionRecord, result *models.ReconciliationResult) *DocumentPayload {
	indexed := make(map[string]*models.TransactionRecord, len(transactions))
	for _, transaction := range transactions {
		indexed[strconv.Itoa(transaction.Sequence)] = transaction
	}

	payload := &DocumentPayload{
		Transactions: indexed,
	}
	if result != nil {
		payload.Reconciliation = &ReconciliationReport{
			ExactMatches:          result.ExactMatches(),
			PartialMatches:        result.PartialMatches(),
			UnmatchedInvoices:     result.UnmatchedInvoices,
			UnmatchedTransactions: result.UnmatchedTransactions,
			Summary:               result.Summary,
		}
	}
	return payload
}
