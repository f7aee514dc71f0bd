package matcher

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"invoice-reconciliation-service/internal/models"
	"invoice-reconciliation-service/pkg/logger"
)

// Rule names recorded on match candidates, in contribution order.
const (
	RuleExactAmount      = "exact_amount"
	RuleExactDate        = "exact_date"
	RuleAmountSimilarity = "amount_similarity"
	RuleDateProximity    = "date_proximity"
	RuleVendorSubstring  = "vendor_substring"
	RuleVendorToken      = "vendor_token"
	RuleAccountExact     = "account_exact"
	RuleAccountLastFour  = "account_last_four"
	RuleSortCode         = "sort_code_in_description"
	RuleManual           = "manual"
)

// Scorer evaluates one invoice against one transaction.
type Scorer struct {
	config *MatchConfig
	logger logger.Logger
}

// NewScorer creates a scorer with the given configuration.
func NewScorer(config *MatchConfig) (*Scorer, error) {
	if config == nil {
		config = DefaultMatchConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Scorer{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("scorer"),
	}, nil
}

// Config returns the scorer's configuration.
func (s *Scorer) Config() *MatchConfig {
	return s.config
}

// IsExactMatch reports whether the pair satisfies the strict predicate:
// amounts within tolerance, dates within tolerance when both are present,
// and either the vendor name appearing in the description or an equal
// non-empty account number.
func (s *Scorer) IsExactMatch(invoice *models.InvoiceRecord, transaction *models.TransactionRecord) bool {
	if invoice.TotalAmount == nil || transaction.Amount.IsZero() {
		return false
	}

	diff := invoice.TotalAmount.Sub(transaction.Amount).Abs()
	if diff.GreaterThan(s.config.ExactAmountTolerance) {
		return false
	}

	// The date clause is skipped, not failed, when either date is absent.
	if days, ok := dateDifferenceDays(invoice.InvoiceDate, transaction.TransactionDate); ok {
		if days > s.config.ExactDateToleranceDays {
			return false
		}
	}

	if vendorInDescription(invoice, transaction) {
		return true
	}
	if invoice.AccountNumber != "" && invoice.AccountNumber == transaction.AccountNumber {
		return true
	}

	return false
}

// ExactCandidate builds the match candidate for a pair that passed the
// exact predicate. Exact matches always score 1.0 with high confidence.
func (s *Scorer) ExactCandidate(invoice *models.InvoiceRecord, transaction *models.TransactionRecord) *models.MatchCandidate {
	rules := []string{RuleExactAmount}
	days, haveDays := dateDifferenceDays(invoice.InvoiceDate, transaction.TransactionDate)
	if haveDays {
		rules = append(rules, RuleExactDate)
	}
	if vendorInDescription(invoice, transaction) {
		rules = append(rules, RuleVendorSubstring)
	} else {
		rules = append(rules, RuleAccountExact)
	}

	candidate := &models.MatchCandidate{
		Invoice:          invoice,
		Transaction:      transaction,
		Score:            1.0,
		Tier:             models.TierExact,
		ConfidenceLevel:  models.ConfidenceHigh,
		AmountDifference: amountDifference(invoice, transaction),
		MatchingRules:    rules,
	}
	if haveDays {
		candidate.DateDifferenceDays = &days
	}
	return candidate
}

// PartialCandidate computes the weighted similarity score for a pair.
// The returned candidate carries the score whether or not it reaches the
// qualification threshold; use Qualifies to decide.
func (s *Scorer) PartialCandidate(invoice *models.InvoiceRecord, transaction *models.TransactionRecord) *models.MatchCandidate {
	score := 0.0
	rules := []string{}

	if invoice.TotalAmount != nil && !transaction.Amount.IsZero() {
		diff, _ := invoice.TotalAmount.Sub(transaction.Amount).Abs().Float64()
		invAmount, _ := invoice.TotalAmount.Float64()
		txAmount, _ := transaction.Amount.Float64()
		if larger := math.Max(invAmount, txAmount); larger > 0 {
			similarity := math.Max(0, 1-diff/larger)
			if similarity > 0 {
				score += similarity * s.config.AmountWeight
				rules = append(rules, RuleAmountSimilarity)
			}
		}
	}

	days, haveDays := dateDifferenceDays(invoice.InvoiceDate, transaction.TransactionDate)
	if haveDays {
		proximity := math.Max(0, 1-float64(days)/float64(s.config.DateDecayDays))
		if proximity > 0 {
			score += proximity * s.config.DateWeight
			rules = append(rules, RuleDateProximity)
		}
	}

	if invoice.VendorName != nil && transaction.Description != "" {
		vendor := strings.ToLower(*invoice.VendorName)
		description := strings.ToLower(transaction.Description)
		if strings.Contains(description, vendor) {
			score += s.config.VendorWeight
			rules = append(rules, RuleVendorSubstring)
		} else if vendorTokenInDescription(vendor, description) {
			score += s.config.VendorWeight / 2
			rules = append(rules, RuleVendorToken)
		}
	}

	if s.config.EnableBoosters {
		score, rules = s.applyBoosters(invoice, transaction, score, rules)
	}

	score = math.Min(1.0, score)

	candidate := &models.MatchCandidate{
		Invoice:          invoice,
		Transaction:      transaction,
		Score:            score,
		Tier:             models.TierPartial,
		ConfidenceLevel:  s.confidenceFor(score),
		AmountDifference: amountDifference(invoice, transaction),
		MatchingRules:    rules,
	}
	if haveDays {
		candidate.DateDifferenceDays = &days
	}
	return candidate
}

// Qualifies reports whether a partial candidate reaches the threshold.
func (s *Scorer) Qualifies(candidate *models.MatchCandidate) bool {
	return candidate.Score >= s.config.PartialThreshold
}

func (s *Scorer) applyBoosters(invoice *models.InvoiceRecord, transaction *models.TransactionRecord, score float64, rules []string) (float64, []string) {
	if invoice.AccountNumber != "" && transaction.AccountNumber != "" {
		if invoice.AccountNumber == transaction.AccountNumber {
			score += s.config.AccountBoost
			rules = append(rules, RuleAccountExact)
		} else if lastFour(invoice.AccountNumber) == lastFour(transaction.AccountNumber) {
			score += s.config.LastFourBoost
			rules = append(rules, RuleAccountLastFour)
		}
	}

	if invoice.SortCode != "" && strings.Contains(transaction.Description, invoice.SortCode) {
		score += s.config.SortCodeBoost
		rules = append(rules, RuleSortCode)
	}

	return score, rules
}

func (s *Scorer) confidenceFor(score float64) models.ConfidenceLevel {
	switch {
	case score >= s.config.HighConfidenceThreshold:
		return models.ConfidenceHigh
	case score >= s.config.PartialThreshold:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

func vendorInDescription(invoice *models.InvoiceRecord, transaction *models.TransactionRecord) bool {
	if invoice.VendorName == nil || transaction.Description == "" {
		return false
	}
	return strings.Contains(strings.ToLower(transaction.Description), strings.ToLower(*invoice.VendorName))
}

func vendorTokenInDescription(vendor, description string) bool {
	for _, token := range strings.Fields(vendor) {
		if len(token) > 2 && strings.Contains(description, token) {
			return true
		}
	}
	return false
}

// dateDifferenceDays returns the absolute whole-day difference, or
// ok=false when either date is missing.
func dateDifferenceDays(invoiceDate, transactionDate *time.Time) (int, bool) {
	if invoiceDate == nil || transactionDate == nil {
		return 0, false
	}
	days := int(invoiceDate.Sub(*transactionDate).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days, true
}

func amountDifference(invoice *models.InvoiceRecord, transaction *models.TransactionRecord) decimal.Decimal {
	if invoice.TotalAmount == nil {
		return transaction.Amount
	}
	return invoice.TotalAmount.Sub(transaction.Amount).Abs()
}

func lastFour(account string) string {
	if len(account) < 4 {
		return account
	}
	return account[len(account)-4:]
}
