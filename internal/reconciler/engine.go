// Package reconciler pairs invoice records with bank-transaction records.
//
// The engine runs two deterministic greedy passes over the input: an
// exact pass using the strict predicate, then a partial pass using the
// weighted score at the qualification threshold. Both passes are
// first-fit in input order, so re-running the engine on unchanged input
// always produces the identical partition. Every input record ends up in
// exactly one of a match or an unmatched list.
package reconciler

import (
	"context"

	"invoice-reconciliation-service/internal/matcher"
	"invoice-reconciliation-service/internal/models"
	"invoice-reconciliation-service/pkg/errors"
	"invoice-reconciliation-service/pkg/logger"
)

// Engine executes reconciliation runs.
type Engine struct {
	scorer *matcher.Scorer
	logger logger.Logger
}

// NewEngine creates an engine with the given match configuration.
// A nil configuration uses the defaults.
func NewEngine(config *matcher.MatchConfig) (*Engine, error) {
	scorer, err := matcher.NewScorer(config)
	if err != nil {
		return nil, err
	}

	return &Engine{
		scorer: scorer,
		logger: logger.GetGlobalLogger().WithComponent("reconciler"),
	}, nil
}

// Reconcile partitions the input sets into matches and unmatched lists.
// Empty inputs are not an error; they produce an empty result. The
// context is checked between the two passes, never mid-pass, so a
// cancelled run still leaves no shared state behind.
func (e *Engine) Reconcile(ctx context.Context, invoices []*models.InvoiceRecord, transactions []*models.TransactionRecord) (*models.ReconciliationResult, error) {
	consumedInvoices := make([]bool, len(invoices))
	consumedTransactions := make([]bool, len(transactions))
	matches := []*models.MatchCandidate{}

	// Exact pass: first transaction satisfying the strict predicate wins.
	for i, invoice := range invoices {
		for j, transaction := range transactions {
			if consumedTransactions[j] {
				continue
			}
			if e.scorer.IsExactMatch(invoice, transaction) {
				matches = append(matches, e.scorer.ExactCandidate(invoice, transaction))
				consumedInvoices[i] = true
				consumedTransactions[j] = true
				break
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.ReconciliationError(errors.CodeProcessingError, "reconcile", err)
	}

	// Partial pass: first pair reaching the threshold wins, not the best.
	for i, invoice := range invoices {
		if consumedInvoices[i] {
			continue
		}
		for j, transaction := range transactions {
			if consumedTransactions[j] {
				continue
			}
			candidate := e.scorer.PartialCandidate(invoice, transaction)
			if e.scorer.Qualifies(candidate) {
				matches = append(matches, candidate)
				consumedInvoices[i] = true
				consumedTransactions[j] = true
				break
			}
		}
	}

	result := &models.ReconciliationResult{
		Matches:               matches,
		UnmatchedInvoices:     []*models.InvoiceRecord{},
		UnmatchedTransactions: []*models.TransactionRecord{},
	}
	for i, invoice := range invoices {
		if !consumedInvoices[i] {
			result.UnmatchedInvoices = append(result.UnmatchedInvoices, invoice)
		}
	}
	for j, transaction := range transactions {
		if !consumedTransactions[j] {
			result.UnmatchedTransactions = append(result.UnmatchedTransactions, transaction)
		}
	}

	result.Summary = buildSummary(invoices, transactions, result)

	e.logger.WithFields(logger.Fields{
		"invoices":     len(invoices),
		"transactions": len(transactions),
		"exact":        result.Summary.ExactMatches,
		"partial":      result.Summary.PartialMatches,
	}).Info("Reconciliation complete")

	return result, nil
}

func buildSummary(invoices []*models.InvoiceRecord, transactions []*models.TransactionRecord, result *models.ReconciliationResult) *models.Summary {
	summary := &models.Summary{
		TotalInvoices:         len(invoices),
		TotalTransactions:     len(transactions),
		UnmatchedInvoices:     len(result.UnmatchedInvoices),
		UnmatchedTransactions: len(result.UnmatchedTransactions),
	}

	for _, invoice := range invoices {
		if invoice.TotalAmount != nil {
			summary.TotalInvoiceAmount = summary.TotalInvoiceAmount.Add(*invoice.TotalAmount)
		}
	}
	for _, transaction := range transactions {
		summary.TotalTransactionAmount = summary.TotalTransactionAmount.Add(transaction.Amount)
	}

	for _, match := range result.Matches {
		switch match.Tier {
		case models.TierExact:
			summary.ExactMatches++
		case models.TierPartial:
			summary.PartialMatches++
		}
		if match.Invoice.TotalAmount != nil {
			summary.MatchedAmount = summary.MatchedAmount.Add(*match.Invoice.TotalAmount)
		}
	}

	summary.UnmatchedAmount = summary.TotalInvoiceAmount.Sub(summary.MatchedAmount)
	return summary
}
