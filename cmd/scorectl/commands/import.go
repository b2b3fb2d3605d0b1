package commands

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"student-scores/models"
	"student-scores/printer"
)

var (
	importKind    string
	importVerbose bool
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Bulk import a file of students",
	Long: `Import reads either a JSON array (strings and objects may be mixed) or,
for any other extension, one shorthand line per student:

  006547 Itzhak Aguilar 86
  9999 42`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		students, err := readImportFile(args[0])
		if err != nil {
			return printer.Error(cmd.ErrOrStderr(), "Cannot read import file", err.Error(), "")
		}
		req := models.ImportRequest{Subject: subject, Students: students, ImportKind: importKind}
		res, err := newClient().Import(cmd.Context(), req, importVerbose)
		if err != nil {
			return failed(cmd, "Import failed", err)
		}

		out := cmd.OutOrStdout()
		printer.Success(out, "%s (processed %d, skipped %d)", res.Message, res.Processed, res.Skipped)
		for _, e := range res.Errors {
			printer.Warning(out, "%s", e)
		}
		return nil
	},
}

// readImportFile returns the batch elements of path.
func readImportFile(path string) ([]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		var students []json.RawMessage
		if err := json.Unmarshal(data, &students); err != nil {
			return nil, errors.Wrap(err, "expected a JSON array")
		}
		return students, nil
	}

	var students []json.RawMessage
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		encoded, err := json.Marshal(line)
		if err != nil {
			return nil, err
		}
		students = append(students, encoded)
	}
	return students, scanner.Err()
}

func init() {
	importCmd.Flags().StringVar(&importKind, "kind", "", "previous, fall or standard (default standard)")
	importCmd.Flags().BoolVarP(&importVerbose, "verbose", "v", false, "list per-record errors")
	rootCmd.AddCommand(importCmd)
}
