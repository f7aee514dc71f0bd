// Package matcher scores invoice/transaction pairs. An exact predicate
// catches strict agreement on amount, date, and identity; everything else
// goes through a weighted similarity score with optional account-detail
// boosters.
package matcher

import (
	"github.com/shopspring/decimal"

	"invoice-reconciliation-service/pkg/errors"
)

// MatchConfig holds the tunable weights and thresholds for match scoring.
// The three term weights must sum to 1.0; boosters are additive on top,
// with the total clamped to 1.0.
type MatchConfig struct {
	// Weighted-score term weights.
	AmountWeight float64 `json:"amount_weight"`
	DateWeight   float64 `json:"date_weight"`
	VendorWeight float64 `json:"vendor_weight"`

	// Qualification and confidence thresholds.
	PartialThreshold        float64 `json:"partial_threshold"`
	HighConfidenceThreshold float64 `json:"high_confidence_threshold"`

	// Exact-match predicate tolerances.
	ExactAmountTolerance   decimal.Decimal `json:"exact_amount_tolerance"`
	ExactDateToleranceDays int             `json:"exact_date_tolerance_days"`

	// DateDecayDays is the window over which the date term decays to zero.
	DateDecayDays int `json:"date_decay_days"`

	// Account-detail boosters.
	EnableBoosters bool    `json:"enable_boosters"`
	AccountBoost   float64 `json:"account_boost"`
	LastFourBoost  float64 `json:"last_four_boost"`
	SortCodeBoost  float64 `json:"sort_code_boost"`
}

// DefaultMatchConfig returns the standard scoring configuration.
func DefaultMatchConfig() *MatchConfig {
	return &MatchConfig{
		AmountWeight:            0.4,
		DateWeight:              0.3,
		VendorWeight:            0.3,
		PartialThreshold:        0.7,
		HighConfidenceThreshold: 0.8,
		ExactAmountTolerance:    decimal.NewFromFloat(0.01),
		ExactDateToleranceDays:  1,
		DateDecayDays:           30,
		EnableBoosters:          true,
		AccountBoost:            0.3,
		LastFourBoost:           0.1,
		SortCodeBoost:           0.15,
	}
}

// StrictMatchConfig returns a configuration that only accepts
// high-certainty matches.
func StrictMatchConfig() *MatchConfig {
	config := DefaultMatchConfig()
	config.PartialThreshold = 0.85
	config.HighConfidenceThreshold = 0.95
	config.ExactDateToleranceDays = 0
	config.DateDecayDays = 14
	config.EnableBoosters = false
	return config
}

// RelaxedMatchConfig returns a configuration that tolerates noisier data.
func RelaxedMatchConfig() *MatchConfig {
	config := DefaultMatchConfig()
	config.PartialThreshold = 0.6
	config.HighConfidenceThreshold = 0.75
	config.ExactAmountTolerance = decimal.NewFromFloat(0.05)
	config.ExactDateToleranceDays = 3
	config.DateDecayDays = 60
	return config
}

// Validate checks the configuration for invalid values.
func (c *MatchConfig) Validate() error {
	weights := map[string]float64{
		"amount_weight": c.AmountWeight,
		"date_weight":   c.DateWeight,
		"vendor_weight": c.VendorWeight,
	}
	for name, weight := range weights {
		if weight < 0 || weight > 1 {
			return errors.ConfigurationError(errors.CodeInvalidConfig, name, weight, nil).
				WithSuggestion("weights must be between 0.0 and 1.0")
		}
	}

	total := c.AmountWeight + c.DateWeight + c.VendorWeight
	if total < 0.999 || total > 1.001 {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "weights", total, nil).
			WithSuggestion("amount, date, and vendor weights must sum to 1.0")
	}

	if c.PartialThreshold <= 0 || c.PartialThreshold > 1 {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "partial_threshold", c.PartialThreshold, nil).
			WithSuggestion("partial_threshold must be in (0.0, 1.0]")
	}
	if c.HighConfidenceThreshold < c.PartialThreshold || c.HighConfidenceThreshold > 1 {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "high_confidence_threshold", c.HighConfidenceThreshold, nil).
			WithSuggestion("high_confidence_threshold must be between partial_threshold and 1.0")
	}

	if c.ExactAmountTolerance.IsNegative() {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "exact_amount_tolerance", c.ExactAmountTolerance.String(), nil).
			WithSuggestion("exact_amount_tolerance cannot be negative")
	}
	if c.ExactDateToleranceDays < 0 {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "exact_date_tolerance_days", c.ExactDateToleranceDays, nil).
			WithSuggestion("exact_date_tolerance_days cannot be negative")
	}
	if c.DateDecayDays <= 0 {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "date_decay_days", c.DateDecayDays, nil).
			WithSuggestion("date_decay_days must be positive")
	}

	for name, boost := range map[string]float64{
		"account_boost":   c.AccountBoost,
		"last_four_boost": c.LastFourBoost,
		"sort_code_boost": c.SortCodeBoost,
	} {
		if boost < 0 || boost > 1 {
			return errors.ConfigurationError(errors.CodeInvalidConfig, name, boost, nil).
				WithSuggestion("boosters must be between 0.0 and 1.0")
		}
	}

	return nil
}

// Clone returns a copy of the configuration.
func (c *MatchConfig) Clone() *MatchConfig {
	clone := *c
	return &clone
}
