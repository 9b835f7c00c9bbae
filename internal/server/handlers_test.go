package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/po-generator/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Input.SheetName = "orders"
	return New(cfg, nil)
}

// inputWorkbookBytes serializes a small input workbook with the given rows on
// a sheet named "orders".
func inputWorkbookBytes(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	idx, err := f.NewSheet("orders")
	require.NoError(t, err)
	f.SetActiveSheet(idx)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("orders", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func goodInputBytes(t *testing.T) []byte {
	return inputWorkbookBytes(t, [][]interface{}{
		{"Control NO", "Item NO", "Barcode", "Qty", "Price", "Delivery time"},
		{"C1", "I1", "4901234567890", "6000", "60.6", "2026-09-15"},
		{"C1", "I1", "dup", "1", "1", "never"},
		{"C2", "I2", "4909876543210", "250", "1200", "2026-10-01"},
	})
}

// multipartBody assembles a multipart request body with file and form fields.
func multipartBody(t *testing.T, files map[string][]byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for name, data := range files {
		part, err := w.CreateFormFile(name, name+".xlsx")
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	for name, value := range fields {
		require.NoError(t, w.WriteField(name, value))
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func doMultipart(t *testing.T, s *Server, path string, files map[string][]byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, files, fields)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestGenerateDeliversWorkbook(t *testing.T) {
	s := newTestServer(t)
	rec := doMultipart(t, s, "/api/generate", map[string][]byte{"input": goodInputBytes(t)}, nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, config.WorkbookMIMEType, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="PurchaseOrders.xlsx"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "2", rec.Header().Get("X-Sheets-Created"))
	assert.NotEmpty(t, rec.Header().Get("X-Run-ID"))

	// The delivered bytes are a readable workbook with one sheet per
	// deduplicated (control, item) pair.
	out, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer out.Close()
	assert.Equal(t, []string{"C1_I1", "C2_I2"}, out.GetSheetList())
}

func TestGenerateWithUploadedTemplate(t *testing.T) {
	s := newTestServer(t)

	tmpl := excelize.NewFile()
	idx, err := tmpl.NewSheet("PO")
	require.NoError(t, err)
	tmpl.SetActiveSheet(idx)
	require.NoError(t, tmpl.DeleteSheet("Sheet1"))
	require.NoError(t, tmpl.SetCellValue("PO", "A70", "end"))
	buf, err := tmpl.WriteToBuffer()
	require.NoError(t, err)

	s.cfg.Template.SheetName = "PO"
	rec := doMultipart(t, s, "/api/generate",
		map[string][]byte{"input": goodInputBytes(t), "template": buf.Bytes()}, nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	out, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer out.Close()
	assert.Equal(t, []string{"C1_I1", "C2_I2"}, out.GetSheetList())

	v, err := out.GetCellValue("C1_I1", "AD9")
	require.NoError(t, err)
	assert.Equal(t, "C1", v)
}

func TestGenerateReportJSON(t *testing.T) {
	s := newTestServer(t)
	rec := doMultipart(t, s, "/api/generate?report=json", map[string][]byte{"input": goodInputBytes(t)}, nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report GenerateReportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 2, report.SheetsCreated)
	assert.Equal(t, []string{"C1_I1", "C2_I2"}, report.Titles)
	assert.Len(t, report.Reports, 2)
}

func TestGenerateUnresolvedMapping(t *testing.T) {
	s := newTestServer(t)
	input := inputWorkbookBytes(t, [][]interface{}{
		{"foo", "bar"},
		{"x", "y"},
	})
	rec := doMultipart(t, s, "/api/generate", map[string][]byte{"input": input}, nil)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

	var resp MappingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Error)
	assert.Len(t, resp.Missing, 6)
	assert.Equal(t, []string{"foo", "bar"}, resp.Headers)
}

func TestGenerateWithMappingOverride(t *testing.T) {
	s := newTestServer(t)
	input := inputWorkbookBytes(t, [][]interface{}{
		{"Control NO", "Item NO", "SKU", "Qty", "Price", "Delivery time"},
		{"C1", "I1", "490", "10", "5", "soon"},
	})
	rec := doMultipart(t, s, "/api/generate",
		map[string][]byte{"input": input},
		map[string]string{"mapping": `{"barcode":"SKU"}`})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "1", rec.Header().Get("X-Sheets-Created"))
}

func TestGenerateMissingInput(t *testing.T) {
	s := newTestServer(t)
	rec := doMultipart(t, s, "/api/generate", nil, nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "input")
}

func TestGenerateBadHeaderRow(t *testing.T) {
	s := newTestServer(t)
	rec := doMultipart(t, s, "/api/generate",
		map[string][]byte{"input": goodInputBytes(t)},
		map[string]string{"header_row": "zero"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreview(t *testing.T) {
	s := newTestServer(t)
	rec := doMultipart(t, s, "/api/preview", map[string][]byte{"input": goodInputBytes(t)}, nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp PreviewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Control NO", resp.Mapping["control_no"])
	require.Len(t, resp.Lines, 2)
	assert.Equal(t, "C1", resp.Lines[0].ControlNo)
	require.NotNil(t, resp.Lines[0].Qty)
	assert.Equal(t, 6000, *resp.Lines[0].Qty)
	assert.InDelta(t, 363600, resp.Lines[0].Amount, 1e-6)
}

func TestManualLinesLifecycle(t *testing.T) {
	s := newTestServer(t)

	do := func(method, path string, body string) *httptest.ResponseRecorder {
		var req *http.Request
		if body != "" {
			req = httptest.NewRequest(method, path, strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
		} else {
			req = httptest.NewRequest(method, path, nil)
		}
		rec := httptest.NewRecorder()
		s.Engine().ServeHTTP(rec, req)
		return rec
	}

	// Generating from an empty accumulator is rejected.
	rec := do(http.MethodPost, "/api/lines/generate", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Add two lines.
	rec = do(http.MethodPost, "/api/lines",
		`{"control_no":"C1","item_no":"I1","barcode":"490","qty":"10","price":"5","delivery":"soon"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = do(http.MethodPost, "/api/lines",
		`{"control_no":"C2","item_no":"I2","qty":"3","price":"2.5"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	// List them back.
	rec = do(http.MethodGet, "/api/lines", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list LinesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 2, list.Count)
	assert.Equal(t, "C1", list.Lines[0].ControlNo)

	// Generate a workbook from them.
	rec = do(http.MethodPost, "/api/lines/generate", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "2", rec.Header().Get("X-Sheets-Created"))

	out, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer out.Close()
	assert.Equal(t, []string{"C1_I1", "C2_I2"}, out.GetSheetList())

	// Clear.
	rec = do(http.MethodDelete, "/api/lines", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(http.MethodGet, "/api/lines", "")
	var after LinesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &after))
	assert.Zero(t, after.Count)
}

func TestAddLineRejectsMalformedJSON(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/lines", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
