// =============================================================================
// IPM to XML Converter - Convert Command
// =============================================================================
//
// This file defines the 'convert' command, which converts a single IPM file
// and prints the XML document to stdout.
//
// COMMAND USAGE:
//   converter convert -f FILE [-e ascii|ebcdic]
//
// FLAGS:
//   -f, --file      : The IPM file to convert (required)
//   -e, --encoding  : The file layout: ascii (alias text) or ebcdic.
//                     Defaults to the configured encoding (ebcdic).
//
// A file that cannot be decoded still produces a document: the error
// document naming the file. The command only fails on configuration errors.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/IPM-to-XML-conversion/internal/converter"
	"github.com/ginjaninja78/IPM-to-XML-conversion/internal/layout"
)

var (
	convertFile     string
	convertEncoding string
)

// convertCmd represents the 'convert' command.
var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert one IPM file to XML on stdout",
	Long: `The convert command decodes a single IPM file and writes the resulting XML
document to stdout. Logs go to stderr.

Examples:
  converter convert -f T112.ipm
  converter convert -f T112.ipm -e ascii > T112.xml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(cmd)
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVarP(&convertFile, "file", "f", "", "IPM file to convert")
	convertCmd.Flags().StringVarP(&convertEncoding, "encoding", "e", "", "File layout: ascii, text or ebcdic (default from config)")
	convertCmd.MarkFlagRequired("file")
}

func runConvert(cmd *cobra.Command) error {
	encoding := mainConfig.Encoding
	if convertEncoding != "" {
		encoding = convertEncoding
	}
	l, err := layout.Parse(encoding)
	if err != nil {
		return err
	}

	engine, err := converter.NewEngine(l, mainConfig, logger)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), engine.ConvertFile(convertFile))
	return err
}
