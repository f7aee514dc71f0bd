package cmd

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"invoice-reconciliation-service/cmd/reconciler/config"
	"invoice-reconciliation-service/internal/models"
	"invoice-reconciliation-service/internal/parsers"
	"invoice-reconciliation-service/internal/reconciler"
	pkgerrors "invoice-reconciliation-service/pkg/errors"
)

// Flags for the extract command
var (
	extractCSV        bool
	extractMaxRecords int
	extractOutputFile string
	extractPretty     bool
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <statement-file>",
	Short: "Extract transactions from statement text",
	Long: `Extract parses extracted bank-statement text (or CSV rows) into the
transactions document payload without running a reconciliation.

Examples:
  reconciler extract statement.txt
  reconciler extract statement.csv --csv
  reconciler extract statement.txt --pretty --output transactions.json`,

	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().BoolVar(&extractCSV, "csv", false, "treat the input as CSV rows with a header")
	extractCmd.Flags().IntVar(&extractMaxRecords, "max-records", models.MaxRecordsPerDocument, "per-document record cap")
	extractCmd.Flags().StringVarP(&extractOutputFile, "output", "o", "", "output file path (default: stdout)")
	extractCmd.Flags().BoolVar(&extractPretty, "pretty", false, "indent the JSON output")

	viper.BindPFlag("max-records", extractCmd.Flags().Lookup("max-records"))
}

func runExtract(cmd *cobra.Command, args []string) error {
	statementFile := args[0]

	extractor, err := parsers.NewExtractor(config.CreateExtractorConfig(extractMaxRecords))
	if err != nil {
		return err
	}

	records, err := extractDocument(extractor, statementFile, extractCSV)
	if err != nil {
		return err
	}

	payload := reconciler.BuildPayload(records, nil)

	out, closeOut, err := openOutput(extractOutputFile)
	if err != nil {
		return err
	}
	defer closeOut()

	encoder := json.NewEncoder(out)
	if extractPretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(payload)
}

// extractDocument reads one statement file and runs the matching
// extraction path for its shape.
func extractDocument(extractor *parsers.Extractor, path string, asCSV bool) ([]*models.TransactionRecord, error) {
	if asCSV {
		rows, err := readRows(path)
		if err != nil {
			return nil, err
		}
		return extractor.ExtractRows(path, rows)
	}

	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	return extractor.ExtractLines(path, lines)
}

func readLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, pkgerrors.FileError(pkgerrors.CodeFileNotFound, path, err)
		}
		if os.IsPermission(err) {
			return nil, pkgerrors.FileError(pkgerrors.CodeFilePermission, path, err)
		}
		return nil, pkgerrors.FileError("", path, err)
	}
	defer file.Close()

	lines := []string{}
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, pkgerrors.FileError("", path, err)
	}
	return lines, nil
}

func readRows(path string) ([]parsers.Row, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, pkgerrors.FileError(pkgerrors.CodeFileNotFound, path, err)
		}
		return nil, pkgerrors.FileError("", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, pkgerrors.FileError(pkgerrors.CodeFileEmpty, path, nil)
	}
	if err != nil {
		return nil, pkgerrors.FileError("", path, err)
	}

	rows := []parsers.Row{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// One malformed row does not abort the file.
			continue
		}
		row := parsers.Row{}
		for i, value := range record {
			if i < len(header) {
				row[header[i]] = value
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, pkgerrors.FileError(pkgerrors.CodeFilePermission, path, err).
			WithSuggestion(fmt.Sprintf("check that %s is writable", path))
	}
	return file, func() { file.Close() }, nil
}
