// =============================================================================
// Purchase Order Generator - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   pogen (root)
//   ├── generate  (one generation run: input workbook -> PurchaseOrders.xlsx)
//   ├── validate  (check configuration and template compatibility)
//   ├── serve     (HTTP API for interactive use)
//   └── version
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/po-generator/internal/config"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// defaultConfigPath is used when --config is not given; a missing file at
// this path silently falls back to the built-in defaults.
const defaultConfigPath = "config.yaml"

// cfgFile holds the path to the configuration file.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "pogen",
	Short: "Purchase Order Generator - one output sheet per (Control NO, Item NO)",
	Long: `Purchase Order Generator reads tabular purchase-order line data and produces
a workbook with one sheet per unique (Control NO, Item NO) pair, filled from a
hand-authored template or from a built-in tabular layout.

Green template areas stay static; blue fields are filled from the input. When
column auto-detection fails, fields can be mapped explicitly.

Example Usage:
  pogen generate --input orders.xlsx --template template.xlsx
  pogen generate --input orders.xlsx --sheet 250826 --map qty="Pieces"
  pogen serve --addr :8080`,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
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
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		defaultConfigPath,
		"Path to the configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// loadConfig loads the configuration honoring the --config flag. A missing
// file is only an error when the user pointed at it explicitly.
func loadConfig() (*config.Config, error) {
	mustExist := cfgFile != defaultConfigPath
	cfg, err := config.Load(cfgFile, mustExist)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
