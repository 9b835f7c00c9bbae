// =============================================================================
// Purchase Order Generator - File Utilities
// =============================================================================
//
// Shared helpers for the pieces of a run that touch the filesystem: output
// directory handling, archive-style output naming with uuid/timestamp
// placeholders, and the JSON run summary written next to the artifact.
//
// =============================================================================

package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// DIRECTORIES
// =============================================================================

// EnsureDir creates a directory (and parents) if it does not exist.
func EnsureDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// =============================================================================
// OUTPUT NAMING
// =============================================================================

// GenerateOutputFileName expands an output name format. Placeholders:
//
//	{uuid}      - a random UUID
//	{timestamp} - current timestamp (YYYYMMDD_HHMMSS)
//	{name}      - the base artifact name without extension
func GenerateOutputFileName(format, baseName string) string {
	name := strings.TrimSuffix(baseName, filepath.Ext(baseName))

	out := format
	out = strings.ReplaceAll(out, "{uuid}", uuid.New().String())
	out = strings.ReplaceAll(out, "{timestamp}", time.Now().Format("20060102_150405"))
	out = strings.ReplaceAll(out, "{name}", name)
	return out
}

// =============================================================================
// RUN SUMMARY
// =============================================================================

// RunSummary is the JSON record written after a generation run.
type RunSummary struct {
	// RunID identifies the run (also surfaced on HTTP responses).
	RunID string `json:"run_id"`

	// Timestamp is when the run completed.
	Timestamp time.Time `json:"timestamp"`

	// Input names the input source (file path, or "manual").
	Input string `json:"input"`

	// InputSheet is the sheet the rows came from, if any.
	InputSheet string `json:"input_sheet,omitempty"`

	// OutputFile is the path the artifact was written to.
	OutputFile string `json:"output_file"`

	// SheetsCreated counts the generated sheets.
	SheetsCreated int `json:"sheets_created"`

	// Titles is the generated-sheet manifest.
	Titles []string `json:"titles"`

	// SkippedCells counts best-effort cell operations that were absorbed.
	SkippedCells int `json:"skipped_cells"`

	// TemplateSheetRemoved reports whether the reference sheet was removed.
	TemplateSheetRemoved bool `json:"template_sheet_removed"`
}

// WriteRunSummary writes the summary as pretty-printed JSON into dir and
// returns the file path. The file is named after the run ID so repeated runs
// never clobber each other.
func WriteRunSummary(summary RunSummary, dir string) (string, error) {
	if err := EnsureDir(dir); err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal run summary: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("run_%s.json", summary.RunID))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write run summary: %w", err)
	}
	return path, nil
}
