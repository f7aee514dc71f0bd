package cmd

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"invoice-reconciliation-service/cmd/reconciler/config"
	"invoice-reconciliation-service/internal/models"
	"invoice-reconciliation-service/internal/parsers"
	"invoice-reconciliation-service/internal/reconciler"
	"invoice-reconciliation-service/internal/reporter"
	pkgerrors "invoice-reconciliation-service/pkg/errors"
	"invoice-reconciliation-service/pkg/logger"
)

// Flags for the reconcile command
var (
	statementFile string
	statementCSV  bool
	invoiceFiles  []string

	matchProfile     string
	partialThreshold float64
	highThreshold    float64
	exactTolerance   float64
	dateDecayDays    int
	enableBoosters   bool

	reconcileFormat     string
	reconcileOutputFile string
	reconcilePretty     bool
	showMatches         bool
	showUnmatched       bool
	reconcileMaxRecords int
)

// reconcileCmd represents the reconcile command
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile invoices against a bank statement",
	Long: `Reconcile extracts transactions from a bank-statement document and
invoice records from one or more invoice documents, then pairs them:
an exact pass on strict amount/date/identity agreement, followed by a
threshold-scored partial pass over the remainder.

Examples:
  # Basic reconciliation
  reconciler reconcile --statement statement.txt --invoices inv1.txt,inv2.txt

  # Tabular statement input and JSON output
  reconciler reconcile --statement statement.csv --csv \
    --invoices inv.txt --format json --output report.json

  # Looser matching for noisy scans
  reconciler reconcile --statement statement.txt --invoices inv.txt \
    --profile relaxed --threshold 0.6`,

	RunE: runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	// Input flags
	reconcileCmd.Flags().StringVarP(&statementFile, "statement", "s", "", "path to the statement text/CSV file (required)")
	reconcileCmd.Flags().BoolVar(&statementCSV, "csv", false, "treat the statement as CSV rows with a header")
	reconcileCmd.Flags().StringSliceVarP(&invoiceFiles, "invoices", "i", []string{}, "comma-separated paths to invoice text files (required)")

	// Matching configuration flags
	reconcileCmd.Flags().StringVar(&matchProfile, "profile", "default", "matching profile: default, strict, relaxed")
	reconcileCmd.Flags().Float64VarP(&partialThreshold, "threshold", "t", 0.7, "partial match qualification threshold")
	reconcileCmd.Flags().Float64Var(&highThreshold, "high-threshold", 0.8, "high confidence threshold")
	reconcileCmd.Flags().Float64Var(&exactTolerance, "exact-tolerance", 0.01, "exact match amount tolerance")
	reconcileCmd.Flags().IntVar(&dateDecayDays, "date-decay-days", 30, "days over which the date term decays to zero")
	reconcileCmd.Flags().BoolVar(&enableBoosters, "boosters", true, "apply account-detail score boosters")
	reconcileCmd.Flags().IntVar(&reconcileMaxRecords, "max-records", 0, "per-document record cap (0 = default)")

	// Output flags
	reconcileCmd.Flags().StringVarP(&reconcileFormat, "format", "f", "console", "output format: console, json")
	reconcileCmd.Flags().StringVarP(&reconcileOutputFile, "output", "o", "", "output file path (default: stdout)")
	reconcileCmd.Flags().BoolVar(&reconcilePretty, "pretty", false, "indent JSON output")
	reconcileCmd.Flags().BoolVar(&showMatches, "show-matches", true, "list matches in console output")
	reconcileCmd.Flags().BoolVar(&showUnmatched, "show-unmatched", true, "list unmatched items in console output")

	// Mark required flags
	reconcileCmd.MarkFlagRequired("statement")
	reconcileCmd.MarkFlagRequired("invoices")

	// Bind flags to viper
	viper.BindPFlag("profile", reconcileCmd.Flags().Lookup("profile"))
	viper.BindPFlag("threshold", reconcileCmd.Flags().Lookup("threshold"))
	viper.BindPFlag("format", reconcileCmd.Flags().Lookup("format"))
}

func runReconcile(cmd *cobra.Command, args []string) error {
	matchConfig, err := config.CreateMatchConfig(matchProfile, matchOverrides(cmd))
	if err != nil {
		return err
	}
	reportConfig, err := config.CreateReportConfig(reconcileFormat, reconcilePretty, showMatches, showUnmatched)
	if err != nil {
		return err
	}

	extractor, err := parsers.NewExtractor(config.CreateExtractorConfig(reconcileMaxRecords))
	if err != nil {
		return err
	}
	engine, err := reconciler.NewEngine(matchConfig)
	if err != nil {
		return err
	}
	rep, err := reporter.NewReporter(reportConfig)
	if err != nil {
		return err
	}

	op := logger.NewOperationLogger("reconcile", nil)

	op.Step("extract_statement")
	transactions, err := extractDocument(extractor, statementFile, statementCSV)
	if err != nil {
		op.Error(err, "Statement extraction failed")
		return err
	}

	op.Step("extract_invoices")
	invoiceExtractor := parsers.NewInvoiceFieldExtractor()
	invoices, err := loadInvoices(invoiceExtractor, invoiceFiles)
	if err != nil {
		op.Error(err, "Invoice extraction failed")
		return err
	}

	op.Step("reconcile")
	result, err := engine.Reconcile(context.Background(), invoices, transactions)
	if err != nil {
		op.Error(err, "Reconciliation failed")
		return err
	}
	op.Success("Reconciliation finished")

	payload := reconciler.BuildPayload(transactions, result)

	out, closeOut, err := openOutput(reconcileOutputFile)
	if err != nil {
		return err
	}
	defer closeOut()

	return rep.Write(out, payload)
}

// matchOverrides maps only the flags the user actually set, so profile
// values stay in effect otherwise.
func matchOverrides(cmd *cobra.Command) config.MatchOverrides {
	overrides := config.MatchOverrides{}
	if cmd.Flags().Changed("threshold") {
		overrides.PartialThreshold = &partialThreshold
	}
	if cmd.Flags().Changed("high-threshold") {
		overrides.HighConfidenceThreshold = &highThreshold
	}
	if cmd.Flags().Changed("exact-tolerance") {
		overrides.ExactAmountTolerance = &exactTolerance
	}
	if cmd.Flags().Changed("date-decay-days") {
		overrides.DateDecayDays = &dateDecayDays
	}
	if cmd.Flags().Changed("boosters") {
		overrides.EnableBoosters = &enableBoosters
	}
	return overrides
}

func loadInvoices(extractor *parsers.InvoiceFieldExtractor, paths []string) ([]*models.InvoiceRecord, error) {
	invoices := make([]*models.InvoiceRecord, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, pkgerrors.FileError(pkgerrors.CodeFileNotFound, path, err)
			}
			return nil, pkgerrors.FileError("", path, err)
		}
		text := string(data)
		if strings.TrimSpace(text) == "" {
			return nil, pkgerrors.FileError(pkgerrors.CodeFileEmpty, path, nil)
		}
		invoices = append(invoices, extractor.Extract(text))
	}
	return invoices, nil
}
