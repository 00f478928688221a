package httpapi

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	maxImageBytes = 5 << 20
	maxExcelBytes = 10 << 20
)

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}
var excelExts = map[string]bool{".xlsx": true, ".xls": true}

// saveUpload stores one multipart file under dir/subdir with a random name,
// keeping the original extension. Returns the path relative to the upload
// root, which is what gets persisted on the action record.
func saveUpload(r *http.Request, field, uploadDir, subdir string, allowed map[string]bool, maxBytes int64) (string, error) {
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return "", fmt.Errorf("invalid multipart form: %w", err)
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", fmt.Errorf("file field %q is required", field)
	}
	defer file.Close()

	if header.Size > maxBytes {
		return "", fmt.Errorf("file too large (max %d bytes)", maxBytes)
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowed[ext] {
		return "", fmt.Errorf("file type %q not allowed", ext)
	}

	if err := os.MkdirAll(filepath.Join(uploadDir, subdir), 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := uuid.NewString() + ext
	rel := filepath.Join(subdir, name)
	if err := writeFile(file, filepath.Join(uploadDir, rel)); err != nil {
		return "", err
	}
	return rel, nil
}

func writeFile(src multipart.File, dst string) error {
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, src); err != nil {
		os.Remove(dst)
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
