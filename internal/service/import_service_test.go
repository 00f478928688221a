package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"fieldvisit/internal/repository"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type importFixture struct {
	outlets   *repository.MemoryOutletsRepository
	assignees *repository.MemoryAssigneesRepository
	md        *repository.MemorySchedulesRepository
	sales     *repository.MemorySchedulesRepository
	svc       ImportService
}

func newImportFixture(t *testing.T) *importFixture {
	t.Helper()
	f := &importFixture{
		outlets:   repository.NewMemoryOutletsRepository(),
		assignees: repository.NewMemoryAssigneesRepository(),
		md:        repository.NewMemorySchedulesRepository(),
		sales:     repository.NewMemorySchedulesRepository(),
	}
	f.svc = NewImportService(f.outlets, f.assignees, f.md, f.sales, zap.NewNop())
	return f
}

// writeSheet builds an .xlsx with a header row plus the given data rows and
// returns its path inside a temp dir.
func writeSheet(t *testing.T, header []string, rows [][]any) string {
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

	path := filepath.Join(t.TempDir(), "import.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

var outletHeader = []string{"Username", "Area Code", "Depot Code", "Outlet Code", "Outlet Name", "Address", "Latitude", "Longitude"}
var scheduleHeader = []string{"Username", "Area Code", "Depot Code", "Outlet Code", "Outlet Name", "Visit Date"}

func TestImportOutlets(t *testing.T) {
	f := newImportFixture(t)
	path := writeSheet(t, outletHeader, [][]any{
		{"u1", "AMO-1", "WH-1", "OUT-1", "Toko Maju", "Jl. Sudirman 1", "-6.2", "106.8"},
		{"u2", "AMO-1", "WH-1", "OUT-2", "Toko Lain", "Jl. Thamrin 2", "-6.3", "106.9"},
	})

	summary, err := f.svc.ImportFile(context.Background(), ImportOutlets, path)
	require.NoError(t, err)
	require.Equal(t, 2, summary.Succeeded)
	require.Zero(t, summary.Failed)
	require.Empty(t, summary.Errors)

	n, err := f.outlets.Count(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestImportRowWithMissingFieldSkippedNotFatal(t *testing.T) {
	f := newImportFixture(t)
	// Sheet row 3 (second data row) has no outlet code.
	path := writeSheet(t, outletHeader, [][]any{
		{"u1", "AMO-1", "WH-1", "OUT-1", "Toko A", "Jl. A", "-6.2", "106.8"},
		{"u1", "AMO-1", "WH-1", "", "Toko B", "Jl. B", "-6.2", "106.8"},
		{"u1", "AMO-1", "WH-1", "OUT-3", "Toko C", "Jl. C", "-6.2", "106.8"},
		{"u1", "AMO-1", "WH-1", "OUT-4", "Toko D", "Jl. D", "-6.2", "106.8"},
	})

	summary, err := f.svc.ImportFile(context.Background(), ImportOutlets, path)
	require.NoError(t, err)
	require.Equal(t, 3, summary.Succeeded)
	require.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Errors, 1)
	require.Equal(t, "Row 3: missing required fields", summary.Errors[0])
}

func TestImportOutletUpsertRefreshes(t *testing.T) {
	f := newImportFixture(t)
	ctx := context.Background()

	first := writeSheet(t, outletHeader, [][]any{
		{"u1", "AMO-1", "WH-1", "OUT-1", "Old Name", "Jl. A", "-6.2", "106.8"},
	})
	_, err := f.svc.ImportFile(ctx, ImportOutlets, first)
	require.NoError(t, err)

	second := writeSheet(t, outletHeader, [][]any{
		{"u1", "AMO-1", "WH-1", "OUT-1", "New Name", "Jl. A", "-6.25", "106.85"},
	})
	summary, err := f.svc.ImportFile(ctx, ImportOutlets, second)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Succeeded)

	n, err := f.outlets.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	o, err := f.outlets.GetByCode(ctx, "OUT-1")
	require.NoError(t, err)
	require.Equal(t, "New Name", o.Name)
	require.Equal(t, -6.25, o.Latitude)
}

func TestImportInvalidCoordinatesRecorded(t *testing.T) {
	f := newImportFixture(t)
	path := writeSheet(t, outletHeader, [][]any{
		{"u1", "AMO-1", "WH-1", "OUT-1", "Toko A", "Jl. A", "north", "106.8"},
	})

	summary, err := f.svc.ImportFile(context.Background(), ImportOutlets, path)
	require.NoError(t, err)
	require.Zero(t, summary.Succeeded)
	require.Equal(t, 1, summary.Failed)
	require.Contains(t, summary.Errors[0], "Row 2")
	require.Contains(t, summary.Errors[0], "latitude")
}

func TestImportAssigneeDuplicateContinues(t *testing.T) {
	f := newImportFixture(t)
	header := []string{"Username", "Name", "Role", "Area Code", "Depot Code"}
	path := writeSheet(t, header, [][]any{
		{"u1", "Udin", "MD", "AMO-1", "WH-1"},
		{"u1", "Udin Dobel", "MD", "AMO-1", "WH-1"},
		{"u2", "Siti", "Sales", "AMO-1", "WH-1"},
	})

	summary, err := f.svc.ImportFile(context.Background(), ImportAssignees, path)
	require.NoError(t, err)
	require.Equal(t, 2, summary.Succeeded)
	require.Equal(t, 1, summary.Failed)
	require.Contains(t, summary.Errors[0], "Row 3")
	require.Contains(t, summary.Errors[0], "already exists")
}

func TestImportSchedulesTargetsRightCollection(t *testing.T) {
	f := newImportFixture(t)
	ctx := context.Background()
	path := writeSheet(t, scheduleHeader, [][]any{
		{"u1", "AMO-1", "WH-1", "OUT-1", "Toko A", "2025-01-10"},
	})

	summary, err := f.svc.ImportFile(ctx, ImportSchedulesSales, path)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Succeeded)

	scheduled, _, err := f.sales.CountByStatus(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, scheduled)

	mdScheduled, _, err := f.md.CountByStatus(ctx)
	require.NoError(t, err)
	require.Zero(t, mdScheduled)
}

func TestImportDeletesUploadedFile(t *testing.T) {
	f := newImportFixture(t)
	path := writeSheet(t, outletHeader, [][]any{
		{"u1", "AMO-1", "WH-1", "OUT-1", "Toko A", "Jl. A", "-6.2", "106.8"},
	})

	_, err := f.svc.ImportFile(context.Background(), ImportOutlets, path)
	require.NoError(t, err)

	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr))
}

func TestImportUnreadableFileStillDeleted(t *testing.T) {
	f := newImportFixture(t)
	path := filepath.Join(t.TempDir(), "junk.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a workbook"), 0o644))

	_, err := f.svc.ImportFile(context.Background(), ImportOutlets, path)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr))
}
