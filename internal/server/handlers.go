// =============================================================================
// Purchase Order Generator - HTTP Handlers
// =============================================================================
//
// Request handling for the generation API. Fatal failures (unreadable input,
// missing sheet, bad template) map to 4xx responses naming the cause; an
// incomplete field mapping is not an error but a 422 carrying everything an
// interactive client needs to present a manual-mapping form: the unresolved
// fields, the partial mapping, and all available headers.
//
// =============================================================================

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/po-generator/internal/config"
	"github.com/ginjaninja78/po-generator/internal/generator"
	"github.com/ginjaninja78/po-generator/internal/resolver"
	"github.com/ginjaninja78/po-generator/internal/rowsource"
	"github.com/ginjaninja78/po-generator/internal/types"
)

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MappingResponse describes an incomplete resolution so the client can offer
// manual mapping: selectable headers per unresolved field, pre-seeded with
// any partial guess.
type MappingResponse struct {
	Error   string            `json:"error"`
	Missing []string          `json:"missing"`
	Mapping map[string]string `json:"mapping"`
	Headers []string          `json:"headers"`
}

// LinePreview is one resolved line in a preview response.
type LinePreview struct {
	ControlNo string   `json:"control_no"`
	ItemNo    string   `json:"item_no"`
	Barcode   string   `json:"barcode"`
	Delivery  string   `json:"delivery"`
	Qty       *int     `json:"qty"`
	Price     *float64 `json:"price"`
	Amount    float64  `json:"amount"`
	SourceRow int      `json:"source_row,omitempty"`
}

// PreviewResponse is the result of resolving an uploaded input.
type PreviewResponse struct {
	Headers []string          `json:"headers"`
	Mapping map[string]string `json:"mapping"`
	Lines   []LinePreview     `json:"lines"`
}

// LinesResponse lists the manual-line accumulator contents.
type LinesResponse struct {
	Count int                     `json:"count"`
	Lines []rowsource.ManualEntry `json:"lines"`
}

// GenerateReportResponse accompanies generated artifacts requested as JSON.
type GenerateReportResponse struct {
	RunID         string                  `json:"run_id"`
	SheetsCreated int                     `json:"sheets_created"`
	Titles        []string                `json:"titles"`
	Reports       []generator.SheetReport `json:"reports"`
}

func sendJSONError(c *gin.Context, status int, msg string) {
	c.JSON(status, ErrorResponse{Error: msg})
}

// =============================================================================
// BASIC HANDLERS
// =============================================================================

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// =============================================================================
// REQUEST PARSING
// =============================================================================

// requestOptions are the per-request knobs shared by preview and generate.
type requestOptions struct {
	sheetName           string
	headerRow           int
	overrides           map[string]string
	removeTemplateSheet *bool
}

func (s *Server) parseOptions(c *gin.Context) (*requestOptions, error) {
	opts := &requestOptions{
		sheetName: s.cfg.Input.SheetName,
		headerRow: s.cfg.Input.HeaderRow,
	}

	if v := c.PostForm("sheet_name"); v != "" {
		opts.sheetName = v
	}
	if v := c.PostForm("header_row"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("header_row must be a positive integer, got %q", v)
		}
		opts.headerRow = n
	}
	if v := c.PostForm("mapping"); v != "" {
		if err := json.Unmarshal([]byte(v), &opts.overrides); err != nil {
			return nil, fmt.Errorf("mapping must be a JSON object of field to header: %v", err)
		}
	}
	if v := c.PostForm("remove_template_sheet"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("remove_template_sheet must be a boolean, got %q", v)
		}
		opts.removeTemplateSheet = &b
	}

	return opts, nil
}

// openUpload opens a multipart file field as a workbook.
func openUpload(fh *multipart.FileHeader) (*excelize.File, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file %q: %w", fh.Filename, err)
	}
	defer f.Close()
	return rowsource.OpenWorkbookReader(f)
}

// inputTable reads the "input" upload into a Table using the request options.
func (s *Server) inputTable(c *gin.Context, opts *requestOptions) (*types.Table, error) {
	fh, err := c.FormFile("input")
	if err != nil {
		return nil, fmt.Errorf("missing input workbook (multipart field %q)", "input")
	}
	wb, err := openUpload(fh)
	if err != nil {
		return nil, err
	}
	defer wb.Close()
	return rowsource.ParseSheet(wb, opts.sheetName, opts.headerRow)
}

// runConfig derives the per-request configuration. The shared config is never
// mutated; a shallow copy carries the per-run overrides.
func (s *Server) runConfig(opts *requestOptions) *config.Config {
	if opts.removeTemplateSheet == nil {
		return s.cfg
	}
	cfg := *s.cfg
	cfg.Output.RemoveTemplateSheet = opts.removeTemplateSheet
	return &cfg
}

// =============================================================================
// PREVIEW
// =============================================================================

func (s *Server) handlePreview(c *gin.Context) {
	opts, err := s.parseOptions(c)
	if err != nil {
		sendJSONError(c, http.StatusBadRequest, err.Error())
		return
	}

	table, err := s.inputTable(c, opts)
	if err != nil {
		sendJSONError(c, http.StatusBadRequest, err.Error())
		return
	}

	gen := generator.New(s.cfg, s.logger)
	mapping, err := gen.ResolveTable(table, opts.overrides)
	if err != nil {
		s.respondResolutionError(c, err)
		return
	}

	lines := gen.Lines(table, mapping)
	c.JSON(http.StatusOK, PreviewResponse{
		Headers: table.Headers,
		Mapping: mappingToJSON(mapping),
		Lines:   previewLines(lines),
	})
}

// =============================================================================
// GENERATE
// =============================================================================

func (s *Server) handleGenerate(c *gin.Context) {
	opts, err := s.parseOptions(c)
	if err != nil {
		sendJSONError(c, http.StatusBadRequest, err.Error())
		return
	}

	table, err := s.inputTable(c, opts)
	if err != nil {
		sendJSONError(c, http.StatusBadRequest, err.Error())
		return
	}

	s.generateAndDeliver(c, opts, table)
}

func (s *Server) handleGenerateFromLines(c *gin.Context) {
	opts, err := s.parseOptions(c)
	if err != nil {
		sendJSONError(c, http.StatusBadRequest, err.Error())
		return
	}

	if s.lines.Len() == 0 {
		sendJSONError(c, http.StatusBadRequest, "no manually entered lines to generate from")
		return
	}

	s.generateAndDeliver(c, opts, s.lines.Snapshot())
}

// generateAndDeliver runs generation over a table and streams the workbook.
// The template comes from the "template" upload when present, else from the
// configured bundled path, else the generated tabular layout is used.
func (s *Server) generateAndDeliver(c *gin.Context, opts *requestOptions, table *types.Table) {
	cfg := s.runConfig(opts)
	gen := generator.New(cfg, s.logger)

	var tmpl *excelize.File
	if fh, err := c.FormFile("template"); err == nil {
		tmpl, err = openUpload(fh)
		if err != nil {
			sendJSONError(c, http.StatusBadRequest, fmt.Sprintf("failed to open template: %v", err))
			return
		}
	} else {
		tmpl, err = gen.LoadTemplate()
		if err != nil {
			sendJSONError(c, http.StatusInternalServerError, err.Error())
			return
		}
	}
	if tmpl != nil {
		defer tmpl.Close()
	}

	result, err := gen.GenerateFromTable(table, opts.overrides, tmpl)
	if err != nil {
		s.respondResolutionError(c, err)
		return
	}

	runID := uuid.New().String()
	s.logger.Info("Run %s created %d sheet(s)", runID, result.SheetCount())

	if c.Query("report") == "json" {
		c.JSON(http.StatusOK, GenerateReportResponse{
			RunID:         runID,
			SheetsCreated: result.SheetCount(),
			Titles:        result.Titles,
			Reports:       result.Reports,
		})
		return
	}

	c.Header("X-Run-ID", runID)
	c.Header("X-Sheets-Created", strconv.Itoa(result.SheetCount()))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	c.Data(http.StatusOK, config.WorkbookMIMEType, result.Artifact)
}

// respondResolutionError maps generation errors: an incomplete mapping is a
// 422 with the manual-mapping payload, anything else a 400.
func (s *Server) respondResolutionError(c *gin.Context, err error) {
	var unresolved *resolver.UnresolvedFieldsError
	if errors.As(err, &unresolved) {
		missing := make([]string, len(unresolved.Missing))
		for i, f := range unresolved.Missing {
			missing[i] = string(f)
		}
		c.JSON(http.StatusUnprocessableEntity, MappingResponse{
			Error:   unresolved.Error(),
			Missing: missing,
			Mapping: mappingToJSON(unresolved.Partial),
			Headers: unresolved.Headers,
		})
		return
	}
	sendJSONError(c, http.StatusBadRequest, err.Error())
}

// =============================================================================
// MANUAL LINES
// =============================================================================

func (s *Server) handleListLines(c *gin.Context) {
	entries := s.lines.Entries()
	c.JSON(http.StatusOK, LinesResponse{Count: len(entries), Lines: entries})
}

func (s *Server) handleAddLine(c *gin.Context) {
	var entry rowsource.ManualEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		sendJSONError(c, http.StatusBadRequest, fmt.Sprintf("invalid line payload: %v", err))
		return
	}
	s.lines.Add(entry)
	c.JSON(http.StatusCreated, gin.H{"count": s.lines.Len()})
}

func (s *Server) handleClearLines(c *gin.Context) {
	s.lines.Clear()
	c.Status(http.StatusNoContent)
}

// =============================================================================
// HELPERS
// =============================================================================

func mappingToJSON(m resolver.Mapping) map[string]string {
	out := make(map[string]string, len(m))
	for f, h := range m {
		out[string(f)] = h
	}
	return out
}

func previewLines(lines []types.Line) []LinePreview {
	out := make([]LinePreview, len(lines))
	for i, l := range lines {
		out[i] = LinePreview{
			ControlNo: l.ControlNo,
			ItemNo:    l.ItemNo,
			Barcode:   l.Barcode,
			Delivery:  l.Delivery,
			Qty:       l.Qty,
			Price:     l.Price,
			Amount:    l.Amount(),
			SourceRow: l.SourceRow,
		}
	}
	return out
}
