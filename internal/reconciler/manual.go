package reconciler

import (
	"github.com/shopspring/decimal"

	"invoice-reconciliation-service/internal/matcher"
	"invoice-reconciliation-service/internal/models"
	"invoice-reconciliation-service/pkg/errors"
	"invoice-reconciliation-service/pkg/logger"
)

// ManualMatch pairs one unmatched invoice with one unmatched transaction
// by their positions in the result's unmatched lists. This is the only
// supported post-hoc edit to a completed result. Both indices are
// validated before anything is touched; a rejected request leaves the
// result unchanged.
func (e *Engine) ManualMatch(result *models.ReconciliationResult, invoiceIndex, transactionIndex int) error {
	if invoiceIndex < 0 || invoiceIndex >= len(result.UnmatchedInvoices) {
		return errors.ManualMatchError(errors.CodeIndexOutOfRange, "invoice", invoiceIndex)
	}
	if transactionIndex < 0 || transactionIndex >= len(result.UnmatchedTransactions) {
		return errors.ManualMatchError(errors.CodeIndexOutOfRange, "transaction", transactionIndex)
	}

	invoice := result.UnmatchedInvoices[invoiceIndex]
	transaction := result.UnmatchedTransactions[transactionIndex]

	candidate := &models.MatchCandidate{
		Invoice:          invoice,
		Transaction:      transaction,
		Score:            1.0,
		Tier:             models.TierExact,
		ConfidenceLevel:  models.ConfidenceHigh,
		AmountDifference: amountDifference(invoice, transaction),
		MatchingRules:    []string{matcher.RuleManual},
		Manual:           true,
	}

	result.UnmatchedInvoices = append(
		result.UnmatchedInvoices[:invoiceIndex],
		result.UnmatchedInvoices[invoiceIndex+1:]...,
	)
	result.UnmatchedTransactions = append(
		result.UnmatchedTransactions[:transactionIndex],
		result.UnmatchedTransactions[transactionIndex+1:]...,
	)
	result.Matches = append(result.Matches, candidate)

	summary := result.Summary
	summary.ExactMatches++
	summary.UnmatchedInvoices--
	summary.UnmatchedTransactions--
	if invoice.TotalAmount != nil {
		summary.MatchedAmount = summary.MatchedAmount.Add(*invoice.TotalAmount)
		summary.UnmatchedAmount = summary.UnmatchedAmount.Sub(*invoice.TotalAmount)
	}

	e.logger.WithFields(logger.Fields{
		"invoice_index":     invoiceIndex,
		"transaction_index": transactionIndex,
	}).Info("Manual match applied")

	return nil
}

func amountDifference(invoice *models.InvoiceRecord, transaction *models.TransactionRecord) decimal.Decimal {
	if invoice.TotalAmount == nil {
		return transaction.Amount
	}
	return invoice.TotalAmount.Sub(transaction.Amount).Abs()
}
