// =============================================================================
// IPM to XML Converter - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks the configuration
// and the field-definition tables of both file layouts without converting
// anything.
//
// COMMAND USAGE:
//   converter validate
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/IPM-to-XML-conversion/internal/layout"
	"github.com/ginjaninja78/IPM-to-XML-conversion/internal/tables"
	"github.com/ginjaninja78/IPM-to-XML-conversion/internal/validation"
)

// validateCmd represents the 'validate' command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and field tables",
	Long: `The validate command loads the main configuration and the field-definition
table of every file layout (from tables_dir, or the built-in tables) and
reports any problems.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	loader := tables.Loader{Dir: mainConfig.TablesDir}

	source := "built-in tables"
	if loader.Dir != "" {
		source = loader.Dir
	}
	fmt.Fprintf(out, "Configuration: OK (encoding %s)\n", mainConfig.Encoding)
	fmt.Fprintf(out, "Field tables:  %s\n\n", source)

	var failed []error
	for _, l := range []layout.Layout{layout.Text, layout.EBCDIC} {
		table, err := loader.Load(l)
		if err != nil {
			fmt.Fprintf(out, "  ✗ %s: %v\n", l, err)
			failed = append(failed, err)
			continue
		}

		// Load rejects invalid tables; rerun to surface warnings too.
		result := validation.ValidateTable(table)
		fmt.Fprintf(out, "  ✓ %s: table %s, %d fields\n", l, table.Name, result.FieldsValidated)
		if result.WarningCount > 0 {
			fmt.Fprint(out, validation.FormatErrors(result.Errors))
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("%d field table(s) invalid: %w", len(failed), errors.Join(failed...))
	}
	fmt.Fprintln(out, "\nAll tables are valid.")
	return nil
}
