package httpapi

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"fieldvisit/internal/repository"
	"fieldvisit/internal/service"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// buildWorkbook renders a header row plus data rows as xlsx bytes.
func buildWorkbook(t *testing.T, header []string, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	h := make([]any, len(header))
	for i, v := range header {
		h[i] = v
	}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &h))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func postWorkbook(t *testing.T, h http.Handler, path string, workbook []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "import.xlsx")
	require.NoError(t, err)
	_, err = part.Write(workbook)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// The response carries at most ten error lines; the counters still report
// every failed row.
func TestImportResponseTruncatesErrorsKeepsCounts(t *testing.T) {
	assignees := repository.NewMemoryAssigneesRepository()
	importer := service.NewImportService(
		repository.NewMemoryOutletsRepository(),
		assignees,
		repository.NewMemorySchedulesRepository(),
		repository.NewMemorySchedulesRepository(),
		zap.NewNop(),
	)
	handler := NewAssigneeHandler(assignees, importer, t.TempDir(), zap.NewNop())

	// Two good rows plus twelve missing the required name.
	rows := [][]any{
		{"u1", "Udin", "MD", "AMO-1", "WH-1"},
		{"u2", "Siti", "Sales", "AMO-1", "WH-1"},
	}
	for i := 0; i < 12; i++ {
		rows = append(rows, []any{fmt.Sprintf("bad%d", i), "", "MD", "AMO-1", "WH-1"})
	}
	workbook := buildWorkbook(t, AssigneeImportHeader, rows)

	rec := postWorkbook(t, handler, "/api/assignees/import", workbook)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decodeResult(t, rec)
	require.True(t, res.Success)
	require.Equal(t, "Upload complete. 2 records added, 12 errors", res.Message)

	data := res.Data.(map[string]any)
	require.Equal(t, float64(2), data["succeeded"])
	require.Equal(t, float64(12), data["failed"])

	errs := data["errors"].([]any)
	require.Len(t, errs, 10)
	// Header is sheet row 1, good rows are 2-3, so the sample starts at row 4.
	require.Equal(t, "Row 4: missing required fields", errs[0])
	require.Equal(t, "Row 13: missing required fields", errs[9])
}
