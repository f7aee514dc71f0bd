package parsers

import (
	"strings"

	"invoice-reconciliation-service/internal/models"
	"invoice-reconciliation-service/internal/normalize"
	"invoice-reconciliation-service/pkg/errors"
	"invoice-reconciliation-service/pkg/logger"
)

// Row is one tabular record with named columns, as produced by the
// upstream CSV/spreadsheet layer.
type Row map[string]string

// columnSynonyms maps each canonical field to its accepted column names,
// matched case-insensitively in order.
var columnSynonyms = map[string][]string{
	"date":        {"date", "transaction date", "value date"},
	"description": {"description", "particulars", "narration", "details"},
	"amount":      {"amount", "debit", "credit", "value"},
	"balance":     {"balance", "running balance"},
}

// ExtractRows converts tabular rows into transaction records. Rows with
// no recognizable date, description, or amount are skipped. A signed
// amount resolves direction: non-negative is a credit, negative a debit.
func (e *Extractor) ExtractRows(document string, rows []Row) ([]*models.TransactionRecord, error) {
	if len(rows) == 0 {
		return nil, errors.FileError(errors.CodeFileEmpty, document, nil)
	}

	records := []*models.TransactionRecord{}
	for _, row := range rows {
		record := parseRow(row)
		if record == nil {
			continue
		}
		record.Sequence = len(records) + 1
		records = append(records, record)
		if len(records) >= e.config.MaxRecords {
			break
		}
	}

	if len(records) == 0 {
		return nil, errors.ParseError(errors.CodeNoTransactions, document, 0, nil)
	}

	e.logger.WithFields(logger.Fields{
		"document": document,
		"records":  len(records),
	}).Info("Extracted transactions from rows")
	return records, nil
}

func parseRow(row Row) *models.TransactionRecord {
	lowered := make(map[string]string, len(row))
	for key, value := range row {
		lowered[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}

	dateRaw := lookupColumn(lowered, "date")
	description := lookupColumn(lowered, "description")
	amountRaw := lookupColumn(lowered, "amount")
	balanceRaw := lookupColumn(lowered, "balance")

	record := &models.TransactionRecord{}

	if date, ok := normalize.ParseDate(dateRaw); ok {
		record.TransactionDate = models.TimePtr(date)
	}

	amount, amountOK := normalize.ParseAmount(amountRaw)

	if record.TransactionDate == nil && description == "" && !amountOK {
		return nil
	}

	if amountOK {
		if amount.IsNegative() {
			record.PaidOut = models.DecimalPtr(amount.Abs())
		} else {
			record.PaidIn = models.DecimalPtr(amount)
		}
		record.DeriveAmount()
	}

	if balance, ok := normalize.ParseAmount(balanceRaw); ok {
		record.Balance = models.DecimalPtr(balance)
	}

	record.SetDescription(description)
	return record
}

func lookupColumn(lowered map[string]string, field string) string {
	for _, synonym := range columnSynonyms[field] {
		if value, ok := lowered[synonym]; ok && value != "" {
			return value
		}
	}
	return ""
}
