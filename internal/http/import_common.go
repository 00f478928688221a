package httpapi

import (
	"fmt"
	"net/http"
	"path/filepath"

	"fieldvisit/internal/service"

	"go.uber.org/zap"
)

// maxImportErrors caps the error sample in import responses. The pipeline
// keeps full accounting internally; only the response is truncated.
const maxImportErrors = 10

// handleImport saves the uploaded spreadsheet and runs the bulk-import
// pipeline against the given target collection.
func handleImport(
	w http.ResponseWriter, r *http.Request,
	importer service.ImportService,
	target service.ImportTarget,
	uploadDir string,
	logger *zap.Logger,
) {
	rel, err := saveUpload(r, "file", uploadDir, "excel", excelExts, maxExcelBytes)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}

	summary, err := importer.ImportFile(r.Context(), target, filepath.Join(uploadDir, rel))
	if err != nil {
		writeServiceError(w, logger, "import", err)
		return
	}

	errs := summary.Errors
	if len(errs) > maxImportErrors {
		errs = errs[:maxImportErrors]
	}
	writeJSON(w, http.StatusOK, OK(
		fmt.Sprintf("Upload complete. %d records added, %d errors", summary.Succeeded, summary.Failed),
		map[string]any{
			"succeeded": summary.Succeeded,
			"failed":    summary.Failed,
			"errors":    errs,
		},
	))
}

// writeWorkbook sends xlsx bytes as a download.
func writeWorkbook(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
