// =============================================================================
// Purchase Order Generator - Main Entry Point
// =============================================================================
//
// This is the main entry point for the Purchase Order Generator CLI. It
// initializes the Cobra CLI framework and delegates command execution to the
// cmd package.
//
// USAGE:
//   pogen generate       - Generate the output workbook from an input file
//   pogen validate       - Validate configuration and template compatibility
//   pogen serve          - Serve the generation API over HTTP
//   pogen version        - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : core business logic (not for external import)
//   - pkg/           : shared utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/po-generator/cmd"
)

func main() {
	cmd.Execute()
}
