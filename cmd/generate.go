// =============================================================================
// Purchase Order Generator - Generate Command
// =============================================================================
//
// This file defines the 'generate' command: one full generation run from an
// input workbook to PurchaseOrders.xlsx.
//
// COMMAND USAGE:
//   pogen generate --input orders.xlsx [flags]
//
// FLAGS:
//   --input                 : Input workbook (.xlsx/.xlsm) (required)
//   --sheet                 : Input sheet name (default from config)
//   --header-row            : 1-based header row (default from config)
//   --template              : Template workbook; omit to use the configured
//                             bundled template, or the generated layout when
//                             none is configured
//   --template-sheet        : Reference sheet name inside the template
//   --output                : Output file path (default <output dir>/<name>)
//   --map field=Header      : Explicit column mapping (repeatable)
//   --keep-template-sheet   : Keep the reference sheet in the output
//   --dry-run               : Resolve and preview without writing output
//
// PIPELINE:
//   1. Load configuration
//   2. Parse the input sheet (normalized headers)
//   3. Resolve canonical fields (auto-detect + explicit --map overrides)
//   4. Coerce and deduplicate lines
//   5. Materialize one sheet per line (template or generated layout)
//   6. Write the artifact, an archived uniquely-named copy, and the JSON
//      run summary
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/po-generator/internal/generator"
	"github.com/ginjaninja78/po-generator/internal/resolver"
	"github.com/ginjaninja78/po-generator/internal/rowsource"
	"github.com/ginjaninja78/po-generator/internal/types"
	"github.com/ginjaninja78/po-generator/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	genInput         string
	genSheet         string
	genHeaderRow     int
	genTemplate      string
	genTemplateSheet string
	genOutput        string
	genMappings      []string
	genKeepTemplate  bool
	genDryRun        bool
)

// =============================================================================
// GENERATE COMMAND DEFINITION
// =============================================================================

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the purchase-order workbook from an input file",
	Long: `The generate command reads purchase-order line data from an input workbook,
deduplicates lines by (Control NO, Item NO), and produces one output sheet per
unique pair.

With --template (or a configured template path), each sheet is a clone of the
reference sheet with the fixed blue cells filled in. Without a template, a
tabular layout is generated from scratch.

When column auto-detection fails, the command lists the unresolved fields and
the available headers; map them explicitly with repeated --map flags:

  pogen generate --input orders.xlsx --map control_no="Ctrl No" --map qty="Pieces"`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate()
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVar(&genInput, "input", "", "Input workbook (.xlsx/.xlsm)")
	generateCmd.Flags().StringVar(&genSheet, "sheet", "", "Input sheet name")
	generateCmd.Flags().IntVar(&genHeaderRow, "header-row", 0, "1-based header row")
	generateCmd.Flags().StringVar(&genTemplate, "template", "", "Template workbook (.xlsx)")
	generateCmd.Flags().StringVar(&genTemplateSheet, "template-sheet", "", "Reference sheet name inside the template")
	generateCmd.Flags().StringVar(&genOutput, "output", "", "Output file path")
	generateCmd.Flags().StringArrayVar(&genMappings, "map", nil, "Explicit column mapping, field=Header (repeatable)")
	generateCmd.Flags().BoolVar(&genKeepTemplate, "keep-template-sheet", false, "Keep the reference sheet in the output workbook")
	generateCmd.Flags().BoolVar(&genDryRun, "dry-run", false, "Resolve and preview without writing output")

	generateCmd.MarkFlagRequired("input")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runGenerate() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := generator.NewLogger(verbose)

	// Fold command-line choices into the run configuration.
	if genSheet == "" {
		genSheet = cfg.Input.SheetName
	}
	if genHeaderRow == 0 {
		genHeaderRow = cfg.Input.HeaderRow
	}
	if genTemplateSheet != "" {
		cfg.Template.SheetName = genTemplateSheet
	}
	if genKeepTemplate {
		keep := false
		cfg.Output.RemoveTemplateSheet = &keep
	}

	overrides, err := parseMapFlags(genMappings)
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 1: PARSE INPUT
	// =========================================================================

	if !utils.FileExists(genInput) {
		return fmt.Errorf("input file not found: %s", genInput)
	}

	logger.Info("Reading %s (sheet %q, header row %d)", genInput, genSheet, genHeaderRow)

	wb, err := rowsource.OpenWorkbook(genInput)
	if err != nil {
		return err
	}
	defer wb.Close()

	table, err := rowsource.ParseSheet(wb, genSheet, genHeaderRow)
	if err != nil {
		return err
	}
	logger.Debug("Parsed %d row(s), %d header(s)", len(table.Records), len(table.Headers))

	// =========================================================================
	// STEP 2: RESOLVE FIELDS
	// =========================================================================

	gen := generator.New(cfg, logger)

	mapping, err := gen.ResolveTable(table, overrides)
	if err != nil {
		return describeResolutionFailure(err)
	}

	lines := gen.Lines(table, mapping)
	logger.Info("Resolved %d unique line(s)", len(lines))

	if genDryRun {
		printPreview(mapping, lines)
		return nil
	}

	// =========================================================================
	// STEP 3: LOAD TEMPLATE
	// =========================================================================

	var tmpl *excelize.File
	if genTemplate != "" {
		tmpl, err = excelize.OpenFile(genTemplate)
		if err != nil {
			return fmt.Errorf("failed to open template: %w", err)
		}
	} else {
		tmpl, err = gen.LoadTemplate()
		if err != nil {
			return err
		}
	}
	if tmpl != nil {
		defer tmpl.Close()
	} else {
		logger.Info("No template; using the generated tabular layout")
	}

	// =========================================================================
	// STEP 4: MATERIALIZE AND WRITE
	// =========================================================================

	result, err := gen.Run(lines, tmpl)
	if err != nil {
		return err
	}

	if err := utils.EnsureDir(cfg.Output.Dir); err != nil {
		return err
	}
	outPath := genOutput
	if outPath == "" {
		outPath = filepath.Join(cfg.Output.Dir, result.FileName)
	}
	if err := os.WriteFile(outPath, result.Artifact, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	// =========================================================================
	// STEP 5: ARCHIVE
	// =========================================================================
	// A uniquely named copy, so repeated runs never clobber earlier output.

	archiveName := utils.GenerateOutputFileName(cfg.Output.NameFormat, result.FileName)
	archivePath := filepath.Join(cfg.Output.Dir, archiveName)
	if err := os.WriteFile(archivePath, result.Artifact, 0644); err != nil {
		logger.Warn("Could not write archive copy: %v", err)
	} else {
		logger.Debug("Archived copy: %s", archivePath)
	}

	runID := uuid.New().String()
	fmt.Printf("Created %d sheet(s) -> %s\n", result.SheetCount(), outPath)
	for _, title := range result.Titles {
		fmt.Printf("  %s\n", title)
	}

	if cfg.WriteSummary() {
		skipped := 0
		for _, r := range result.Reports {
			skipped += r.SkippedCells()
		}
		summaryPath, err := utils.WriteRunSummary(utils.RunSummary{
			RunID:                runID,
			Timestamp:            time.Now(),
			Input:                genInput,
			InputSheet:           genSheet,
			OutputFile:           outPath,
			SheetsCreated:        result.SheetCount(),
			Titles:               result.Titles,
			SkippedCells:         skipped,
			TemplateSheetRemoved: result.TemplateSheetRemoved,
		}, cfg.Output.Dir)
		if err != nil {
			logger.Warn("Could not write run summary: %v", err)
		} else {
			logger.Debug("Run summary: %s", summaryPath)
		}
	}

	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// parseMapFlags turns repeated field=Header flags into an override map.
func parseMapFlags(flags []string) (map[string]string, error) {
	if len(flags) == 0 {
		return nil, nil
	}
	overrides := make(map[string]string, len(flags))
	for _, raw := range flags {
		field, header, ok := strings.Cut(raw, "=")
		if !ok || field == "" || header == "" {
			return nil, fmt.Errorf("invalid --map value %q, expected field=Header", raw)
		}
		overrides[strings.TrimSpace(field)] = strings.TrimSpace(header)
	}
	return overrides, nil
}

// describeResolutionFailure augments an unresolved-fields error with the
// available headers, mirroring the manual-mapping fallback of the HTTP
// surface.
func describeResolutionFailure(err error) error {
	var unresolved *resolver.UnresolvedFieldsError
	if !errors.As(err, &unresolved) {
		return err
	}

	var b strings.Builder
	b.WriteString(unresolved.Error())
	b.WriteString("\n\nAvailable headers:\n")
	for _, h := range unresolved.Headers {
		fmt.Fprintf(&b, "  %s\n", h)
	}
	b.WriteString("\nMap the missing fields explicitly, e.g.:\n")
	for _, f := range unresolved.Missing {
		fmt.Fprintf(&b, "  --map %s=\"<header>\"\n", f)
	}
	return fmt.Errorf("%s", b.String())
}

// printPreview renders the dry-run mapping and line table.
func printPreview(mapping resolver.Mapping, lines []types.Line) {
	fmt.Println("Detected mapping:")
	for _, f := range types.RequiredFields() {
		fmt.Printf("  %-12s <- %s\n", f, mapping[f])
	}

	fmt.Printf("\n%d unique line(s):\n", len(lines))
	fmt.Printf("  %-14s %-14s %-14s %-10s %-12s %-12s %s\n",
		"Control NO", "Item NO", "Barcode", "Qty", "Price", "Amount", "Delivery")
	for i := range lines {
		l := &lines[i]
		qty, price := "", ""
		if l.Qty != nil {
			qty = strconv.Itoa(*l.Qty)
		}
		if l.Price != nil {
			price = strconv.FormatFloat(*l.Price, 'f', -1, 64)
		}
		fmt.Printf("  %-14s %-14s %-14s %-10s %-12s %-12s %s\n",
			l.ControlNo, l.ItemNo, l.Barcode, qty, price,
			strconv.FormatFloat(l.Amount(), 'f', -1, 64), l.Delivery)
	}
}
