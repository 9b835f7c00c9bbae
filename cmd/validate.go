// =============================================================================
// Purchase Order Generator - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks the configuration
// (cell coordinates, candidate lists, row ranges) and, when a template is
// given, its compatibility with the fixed layout, without generating
// anything.
//
// COMMAND USAGE:
//   pogen validate [--template template.xlsx]
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/po-generator/internal/validation"
)

var validateTemplate string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and template compatibility",
	Long: `The validate command checks the configuration without processing anything:
every configured cell coordinate must parse, every canonical field needs
candidate headers, and the row-deletion range must be sane.

With --template, the template workbook is additionally checked against the
configured layout (reference sheet present, coordinates within the sheet).`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate()
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateTemplate, "template", "", "Template workbook to check against the configuration")
}

func runValidate() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	findings := validation.CheckConfig(cfg)

	if validateTemplate != "" {
		tmpl, err := excelize.OpenFile(validateTemplate)
		if err != nil {
			return fmt.Errorf("failed to open template: %w", err)
		}
		defer tmpl.Close()
		findings = append(findings, validation.CheckTemplate(cfg, tmpl)...)
	}

	if len(findings) == 0 {
		fmt.Println("Configuration OK")
		return nil
	}

	fmt.Print(validation.Format(findings))
	if validation.HasErrors(findings) {
		return fmt.Errorf("validation failed")
	}
	return nil
}
