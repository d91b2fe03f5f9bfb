// =============================================================================
// IPM to XML Converter - Converter Module
// =============================================================================
//
// This module contains the core conversion logic. It orchestrates the
// pipeline for a single IPM file, from raw bytes to the XML document.
//
// CONVERSION PIPELINE:
//   1. Scan the buffer for frames (layout-specific scan policy)
//   2. Decode each frame with the message codec; failures become corrupted
//      placeholders
//   3. Classify frames into header, trailer and body (ipm.Batch)
//   4. Render the batch as XML
//
// OUTPUT CONTRACT:
//   Convert always returns a well-formed XML document. Any failure, including
//   a panic, is replaced by the minimal error document:
//
//     <ipm-file name="NAME" messages="0">
//     	<error>Error on processing IPM file NAME.</error>
//     </ipm-file>
//
// CONCURRENCY:
//   An Engine holds only read-only state after construction and can convert
//   many files concurrently.
//
// =============================================================================

package converter

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ginjaninja78/IPM-to-XML-conversion/internal/codec"
	"github.com/ginjaninja78/IPM-to-XML-conversion/internal/config"
	"github.com/ginjaninja78/IPM-to-XML-conversion/internal/ipm"
	"github.com/ginjaninja78/IPM-to-XML-conversion/internal/layout"
	"github.com/ginjaninja78/IPM-to-XML-conversion/internal/scanner"
	"github.com/ginjaninja78/IPM-to-XML-conversion/internal/tables"
	"github.com/ginjaninja78/IPM-to-XML-conversion/internal/xmlwriter"
	"github.com/ginjaninja78/IPM-to-XML-conversion/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the path to the input file that was processed.
	FilePath string

	// OutputFile is the path to the generated XML file. A failed file still
	// gets an output file holding the error document.
	OutputFile string

	// ArchivePath is where the input was moved after a successful
	// conversion, or empty.
	ArchivePath string

	// Success indicates whether the batch was decoded.
	Success bool

	// Error contains the error if processing failed.
	Error error

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// Frames is the number of frames the scan produced.
	Frames int

	// Messages is the number of body messages rendered.
	Messages int

	// Corrupted is the number of body messages that failed to decode.
	Corrupted int

	// Skipped is the number of decoded frames that were neither header,
	// trailer nor body.
	Skipped int

	// TrailingBytes is the number of bytes after the last frame.
	TrailingBytes int

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// =============================================================================
// ENGINE STRUCTURE
// =============================================================================

// Engine converts IPM files of one layout.
type Engine struct {
	layout  layout.Layout
	scanner *scanner.Scanner
	render  xmlwriter.Options
	logger  zerolog.Logger
}

// NewEngine loads the field-definition table for l and builds the decoding
// pipeline.
//
// PARAMETERS:
//   - l: The file layout. The generic layout has no table.
//   - cfg: Supplies tables_dir and indent. Nil means embedded tables and
//     default rendering.
//   - logger: Receives per-file outcomes.
//
// RETURNS:
//   - A *layout.ConfigurationError when the table is missing or invalid.
func NewEngine(l layout.Layout, cfg *config.MainConfig, logger zerolog.Logger) (*Engine, error) {
	render := xmlwriter.DefaultOptions()
	var loader tables.Loader
	if cfg != nil {
		loader.Dir = cfg.TablesDir
		if cfg.Indent != "" {
			render.Indent = cfg.Indent
		}
	}

	table, err := loader.Load(l)
	if err != nil {
		return nil, err
	}

	policy, err := scanner.PolicyFor(l)
	if err != nil {
		return nil, &layout.ConfigurationError{Layout: l, Err: err}
	}

	e := &Engine{
		layout:  l,
		scanner: scanner.New(codec.New(table, l), policy),
		render:  render,
		logger: logger.With().
			Str("run", uuid.New().String()).
			Str("encoding", l.String()).
			Logger(),
	}

	e.logger.Debug().
		Str("table", table.Name).
		Int("fields", table.Len()).
		Msg("Engine ready")

	return e, nil
}

// Layout returns the engine's layout.
func (e *Engine) Layout() layout.Layout { return e.layout }

// =============================================================================
// CONVERSION FUNCTIONS
// =============================================================================

// Convert converts one named buffer. It never fails: errors produce the
// error document.
func (e *Engine) Convert(name string, data []byte) string {
	out, _, _ := e.convert(name, data)
	return out
}

// ConvertFile reads path and converts it under its base name.
func (e *Engine) ConvertFile(path string) string {
	name := filepath.Base(path)
	data, err := os.ReadFile(path)
	if err != nil {
		e.logger.Error().Err(err).Str("file", path).Msg("Failed to read IPM file")
		return xmlwriter.RenderError(name, e.render)
	}
	return e.Convert(name, data)
}

// convert runs the pipeline and reports the batch and error behind the
// returned document.
func (e *Engine) convert(name string, data []byte) (out string, batch *ipm.Batch, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("conversion panicked: %v", r)
			batch = nil
			out = xmlwriter.RenderError(name, e.render)
			e.logger.Error().Err(err).Str("file", name).Msg("Conversion failed")
		}
	}()

	batch, err = ipm.NewBatch(name, data, e.scanner)
	if err != nil {
		e.logger.Error().Err(err).Str("file", name).Int("bytes", len(data)).Msg("Conversion failed")
		return xmlwriter.RenderError(name, e.render), nil, err
	}

	event := e.logger.Info()
	if batch.Corrupted() > 0 {
		event = e.logger.Warn()
	}
	event.
		Str("file", name).
		Int("frames", batch.Frames()).
		Int("messages", batch.Len()).
		Int("corrupted", batch.Corrupted()).
		Int("skipped", batch.Skipped()).
		Int("trailing_bytes", batch.TrailingBytes()).
		Bool("trailer", batch.Trailer() != nil).
		Msg("Converted IPM file")

	return xmlwriter.RenderWithOptions(batch, e.render), batch, nil
}

// =============================================================================
// FILE PROCESSING
// =============================================================================

// Run converts the file at path and writes the document to the output
// directory of fm under a name built from nameFormat.
//
// PROCESSING STEPS:
//   1. Read and convert the file
//   2. Write the output file (error document on failure)
//   3. Archive the input file on success
func (e *Engine) Run(path string, fm *utils.FileManager, nameFormat string) Result {
	startTime := time.Now()
	result := Result{FilePath: path}

	e.logger.Debug().Str("file", path).Msg("Processing file")

	name := filepath.Base(path)
	var doc string
	data, err := os.ReadFile(path)
	if err != nil {
		result.Error = fmt.Errorf("failed to read input: %w", err)
		doc = xmlwriter.RenderError(name, e.render)
	} else {
		var batch *ipm.Batch
		doc, batch, err = e.convert(name, data)
		if err != nil {
			result.Error = err
		} else {
			result.Success = true
			result.Stats.Frames = batch.Frames()
			result.Stats.Messages = batch.Len()
			result.Stats.Corrupted = batch.Corrupted()
			result.Stats.Skipped = batch.Skipped()
			result.Stats.TrailingBytes = batch.TrailingBytes()
		}
	}

	fileName := utils.GenerateOutputFileName(nameFormat, map[string]string{
		"original": utils.OriginalName(path),
		"encoding": e.layout.String(),
	})
	outputPath, err := fm.WriteOutputFile(fileName, doc)
	if err != nil {
		result.Success = false
		result.Error = err
		result.Stats.ProcessingTime = time.Since(startTime)
		return result
	}
	result.OutputFile = outputPath

	if result.Success {
		archivePath, err := fm.ArchiveInputFile(path)
		if err != nil {
			// The output is already written; archival failures are reported
			// but do not fail the file.
			e.logger.Warn().Err(err).Str("file", path).Msg("Failed to archive input")
		} else if archivePath != path {
			result.ArchivePath = archivePath
		}
	}

	result.Stats.ProcessingTime = time.Since(startTime)
	return result
}
