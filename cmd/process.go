// =============================================================================
// IPM to XML Converter - Process Command
// =============================================================================
//
// This file defines the 'process' command, which converts every IPM file in
// the input directory. It orchestrates the batch pipeline.
//
// COMMAND USAGE:
//   converter process [flags]
//
// FLAGS:
//   -e, --encoding : Override the configured file layout
//   --dry-run      : List the files that would be processed and exit
//
// PROCESSING PIPELINE:
//   1. Build the conversion engine for the configured layout
//   2. Discover input files (input_pattern in input_dir)
//   3. For each file (concurrently, at most max_concurrency at a time):
//      a. Decode and render the batch
//      b. Write the output file (error document on failure)
//      c. Archive the input on success
//   4. Write the processing summary to output_archive_dir
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/IPM-to-XML-conversion/internal/converter"
	"github.com/ginjaninja78/IPM-to-XML-conversion/internal/layout"
	"github.com/ginjaninja78/IPM-to-XML-conversion/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun lists the discovered files without converting them.
var dryRun bool

// processEncoding overrides the configured encoding.
var processEncoding string

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Convert every IPM file in the input directory",
	Long: `The process command scans the input directory for IPM files and converts
each one to an XML file in the output directory.

Processing is done concurrently. Each file is processed independently, and
errors in one file do not affect the processing of others.

On successful processing:
  - The generated XML is placed in the output directory
  - The original file is moved to the input archive (archive_on_success)

On error:
  - The error document is written in place of the XML
  - The original file remains in the input directory
  - Processing continues for other files

A summary report is written to the output archive directory.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd)
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"List the files that would be processed without converting them",
	)
	processCmd.Flags().StringVarP(
		&processEncoding,
		"encoding",
		"e",
		"",
		"File layout: ascii, text or ebcdic (default from config)",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runProcess orchestrates the batch conversion.
func runProcess(cmd *cobra.Command) error {
	startTime := time.Now()
	out := cmd.OutOrStdout()

	// =========================================================================
	// STEP 1: BUILD THE ENGINE
	// =========================================================================

	encoding := mainConfig.Encoding
	if processEncoding != "" {
		encoding = processEncoding
	}
	l, err := layout.Parse(encoding)
	if err != nil {
		return err
	}

	engine, err := converter.NewEngine(l, mainConfig, logger)
	if err != nil {
		return err
	}

	fm := utils.NewFileManager(
		mainConfig.InputDir,
		mainConfig.OutputDir,
		mainConfig.InputArchiveDir,
		mainConfig.OutputArchiveDir,
	)
	fm.ArchiveOnSuccess = mainConfig.ArchiveOnSuccess
	fm.UseTimestampSubdirs = mainConfig.UseTimestampSubdirs

	// =========================================================================
	// STEP 2: DISCOVER INPUT FILES
	// =========================================================================

	inputFiles, err := fm.DiscoverInputFiles(mainConfig.InputPattern)
	if err != nil {
		return fmt.Errorf("failed to discover input files: %w", err)
	}

	logger.Info().
		Str("input_dir", mainConfig.InputDir).
		Str("pattern", mainConfig.InputPattern).
		Int("files", len(inputFiles)).
		Msg("Discovered input files")

	if len(inputFiles) == 0 {
		fmt.Fprintln(out, "No IPM files found in the input directory.")
		return nil
	}

	if dryRun {
		for _, file := range inputFiles {
			fmt.Fprintf(out, "  %s\n", file)
		}
		fmt.Fprintf(out, "%d file(s) would be processed\n", len(inputFiles))
		return nil
	}

	if err := fm.EnsureDirectories(); err != nil {
		return err
	}

	// =========================================================================
	// STEP 3: PROCESS FILES CONCURRENTLY
	// =========================================================================
	// A buffered channel acts as a semaphore so at most max_concurrency files
	// are in memory at once.

	results := make(chan converter.Result, len(inputFiles))
	sem := make(chan struct{}, mainConfig.MaxConcurrency)
	var wg sync.WaitGroup

	for _, file := range inputFiles {
		wg.Add(1)
		go func(filePath string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results <- engine.Run(filePath, fm, mainConfig.UUIDFormat)
		}(file)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// =========================================================================
	// STEP 4: COLLECT RESULTS
	// =========================================================================

	summary := utils.ProcessingSummary{
		StartTime:  startTime,
		Encoding:   l.String(),
		TotalFiles: len(inputFiles),
	}

	for result := range results {
		name := filepath.Base(result.FilePath)
		if result.Success {
			summary.SuccessfulFiles++
			summary.TotalFrames += result.Stats.Frames
			summary.TotalMessages += result.Stats.Messages
			summary.TotalCorrupted += result.Stats.Corrupted
			summary.TotalSkipped += result.Stats.Skipped
			summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
				InputFile:   result.FilePath,
				OutputFile:  result.OutputFile,
				ArchivePath: result.ArchivePath,
				Frames:      result.Stats.Frames,
				Messages:    result.Stats.Messages,
				Corrupted:   result.Stats.Corrupted,
				ProcessTime: result.Stats.ProcessingTime,
			})
			fmt.Fprintf(out, "  ✓ %s -> %s (%d messages)\n", name, filepath.Base(result.OutputFile), result.Stats.Messages)
		} else {
			summary.FailedFiles++
			summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
				InputFile:    result.FilePath,
				OutputFile:   result.OutputFile,
				ErrorMessage: result.Error.Error(),
			})
			fmt.Fprintf(out, "  ✗ %s: %v\n", name, result.Error)
		}
	}

	// =========================================================================
	// STEP 5: SUMMARY
	// =========================================================================

	summary.EndTime = time.Now()
	summaryPath, err := utils.WriteSummaryLog(summary, mainConfig.OutputArchiveDir)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to write processing summary")
	}

	logger.Info().
		Int("files", summary.TotalFiles).
		Int("successful", summary.SuccessfulFiles).
		Int("failed", summary.FailedFiles).
		Int("messages", summary.TotalMessages).
		Int("corrupted", summary.TotalCorrupted).
		Dur("elapsed", summary.EndTime.Sub(startTime)).
		Msg("Processing complete")

	fmt.Fprintln(out, "\n=== Processing Complete ===")
	fmt.Fprintf(out, "Total files:     %d\n", summary.TotalFiles)
	fmt.Fprintf(out, "Successful:      %d\n", summary.SuccessfulFiles)
	fmt.Fprintf(out, "Errors:          %d\n", summary.FailedFiles)
	fmt.Fprintf(out, "Time elapsed:    %s\n", summary.EndTime.Sub(startTime))
	if summaryPath != "" {
		fmt.Fprintf(out, "Summary:         %s\n", summaryPath)
	}

	return nil
}
