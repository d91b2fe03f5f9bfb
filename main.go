// =============================================================================
// IPM to XML Converter - Main Entry Point
// =============================================================================
//
// This is the main entry point for the IPM to XML Converter CLI application.
// It delegates command execution to the cmd package.
//
// USAGE:
//   converter convert -f FILE  - Convert one IPM file to XML on stdout
//   converter process          - Convert every IPM file in the input directory
//   converter validate         - Validate configuration and field tables
//   converter version          - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Decoding, batch model and XML rendering
//   - pkg/           : Shared file management utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/IPM-to-XML-conversion/cmd"
)

func main() {
	cmd.Execute()
}
