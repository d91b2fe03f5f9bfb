// =============================================================================
// IPM to XML Converter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (converter)
//   ├── convertCmd  (converter convert -f FILE [-e ENCODING])
//   ├── processCmd  (converter process)
//   ├── validateCmd (converter validate)
//   └── versionCmd  (converter version)
//
// CONFIGURATION:
//   Before any subcommand runs, the root command:
//   1. Loads a .env file from the working directory, if present
//   2. Loads the main configuration (--config)
//   3. Sets up logging on stderr, so stdout carries only XML
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/IPM-to-XML-conversion/internal/config"
	"github.com/ginjaninja78/IPM-to-XML-conversion/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// mainConfig and logger are set up by the root command before a subcommand
// runs.
var (
	mainConfig *config.MainConfig
	logger     = zerolog.Nop()
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "converter",
	Short: "IPM to XML Converter - Decode clearing batch files into XML",
	Long: `IPM to XML Converter decodes IPM clearing batch files (ISO 8583 messages in
the text or EBCDIC file layout) and renders each batch as an XML document.

Key Features:
  - Text and EBCDIC layouts with frame recovery around corrupted messages
  - Private data subfields (PDS) rendered inside data element 48
  - Field-definition tables from YAML, XLSX or CSV resources
  - Concurrent batch processing with archival and summary reports

Example Usage:
  converter convert -f T112.ipm              # Convert one EBCDIC file to stdout
  converter convert -f T112.ipm -e ascii     # Convert a text layout file
  converter process --config ./config.yaml   # Convert every file in input_dir
  converter validate                         # Check configuration and tables`,

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initialize(cmd)
	},

	Run: func(cmd *cobra.Command, args []string) {
		// If no subcommand is provided, print the help message.
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	// --config flag: Allows the user to specify a custom configuration file.
	// A missing default config.yaml falls back to built-in defaults.
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		config.DefaultPath,
		"Path to the main configuration file (YAML or TOML)",
	)

	// --verbose flag: Enables debug logging.
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// initialize loads the environment, the configuration and the logger.
func initialize(cmd *cobra.Command) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	explicit := cmd.Flags().Changed("config")
	cfg, err := config.Load(cfgFile, explicit)
	if err != nil {
		return fmt.Errorf("failed to load main config: %w", err)
	}

	level := cfg.LogLevel
	if verbose {
		level = zerolog.DebugLevel.String()
	}
	l, err := logging.New(os.Stderr, level, cfg.LogFormat, "converter")
	if err != nil {
		return err
	}

	mainConfig = cfg
	logger = l
	logger.Debug().Str("config", cfgFile).Bool("explicit", explicit).Msg("Configuration loaded")
	return nil
}
