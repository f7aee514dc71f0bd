// Package config builds component configurations from CLI flag values.
package config

import (
	"github.com/shopspring/decimal"

	"invoice-reconciliation-service/internal/matcher"
	"invoice-reconciliation-service/internal/parsers"
	"invoice-reconciliation-service/internal/reporter"
	"invoice-reconciliation-service/pkg/errors"
)

// MatchOverrides carries per-flag overrides on top of a profile. A nil
// pointer means the flag was not set and the profile value stands.
type MatchOverrides struct {
	PartialThreshold        *float64
	HighConfidenceThreshold *float64
	ExactAmountTolerance    *float64
	DateDecayDays           *int
	EnableBoosters          *bool
}

// CreateExtractorConfig creates an extractor configuration.
func CreateExtractorConfig(maxRecords int) *parsers.ExtractorConfig {
	config := parsers.DefaultExtractorConfig()
	if maxRecords > 0 {
		config.MaxRecords = maxRecords
	}
	return config
}

// CreateMatchConfig creates a match configuration from a named profile
// plus any CLI overrides.
func CreateMatchConfig(profile string, overrides MatchOverrides) (*matcher.MatchConfig, error) {
	var config *matcher.MatchConfig
	switch profile {
	case "default", "":
		config = matcher.DefaultMatchConfig()
	case "strict":
		config = matcher.StrictMatchConfig()
	case "relaxed":
		config = matcher.RelaxedMatchConfig()
	default:
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "profile", profile, nil).
			WithSuggestion("valid profiles are default, strict, and relaxed")
	}

	if overrides.PartialThreshold != nil {
		config.PartialThreshold = *overrides.PartialThreshold
	}
	if overrides.HighConfidenceThreshold != nil {
		config.HighConfidenceThreshold = *overrides.HighConfidenceThreshold
	}
	if overrides.ExactAmountTolerance != nil {
		config.ExactAmountTolerance = decimal.NewFromFloat(*overrides.ExactAmountTolerance)
	}
	if overrides.DateDecayDays != nil {
		config.DateDecayDays = *overrides.DateDecayDays
	}
	if overrides.EnableBoosters != nil {
		config.EnableBoosters = *overrides.EnableBoosters
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// CreateReportConfig creates a report configuration for the output format.
func CreateReportConfig(format string, pretty, showMatches, showUnmatched bool) (*reporter.ReportConfig, error) {
	config := reporter.DefaultReportConfig()
	config.Format = reporter.Format(format)
	config.PrettyJSON = pretty
	config.ShowMatches = showMatches
	config.ShowUnmatched = showUnmatched

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
