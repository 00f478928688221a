package service

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"fieldvisit/internal/domain"
	"fieldvisit/internal/repository"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ImportTarget selects which collection a spreadsheet feeds.
type ImportTarget string

const (
	ImportOutlets        ImportTarget = "outlets"
	ImportAssignees      ImportTarget = "assignees"
	ImportSchedulesMD    ImportTarget = "schedules_md"
	ImportSchedulesSales ImportTarget = "schedules_sales"
)

// ImportSummary is the per-file accounting: rows written, rows skipped, and
// every row error in order. Callers cap the error sample they expose; the
// summary itself keeps them all.
type ImportSummary struct {
	Succeeded int
	Failed    int
	Errors    []string
}

// ImportService runs the spreadsheet bulk-import pipeline. Each row is
// validated and written independently; one bad row never aborts the batch.
type ImportService interface {
	ImportFile(ctx context.Context, target ImportTarget, path string) (*ImportSummary, error)
}

type importService struct {
	outletsRepo    repository.OutletsRepository
	assigneesRepo  repository.AssigneesRepository
	mdSchedules    repository.SchedulesRepository
	salesSchedules repository.SchedulesRepository
	logger         *zap.Logger
}

func NewImportService(
	outletsRepo repository.OutletsRepository,
	assigneesRepo repository.AssigneesRepository,
	mdSchedules, salesSchedules repository.SchedulesRepository,
	logger *zap.Logger,
) ImportService {
	return &importService{
		outletsRepo:    outletsRepo,
		assigneesRepo:  assigneesRepo,
		mdSchedules:    mdSchedules,
		salesSchedules: salesSchedules,
		logger:         logger,
	}
}

// ImportFile reads the .xlsx at path, skips the header row, and folds the
// data rows into a summary. Row numbers in error messages are 1-indexed
// counting the header, so the first data row is row 2. The uploaded file is
// deleted unconditionally, on every return path.
func (s *importService) ImportFile(ctx context.Context, target ImportTarget, path string) (*ImportSummary, error) {
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to remove uploaded file", zap.String("path", path), zap.Error(err))
		}
	}()

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, NewValidationError("unable to read spreadsheet: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, NewValidationError("spreadsheet has no worksheet")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, NewValidationError("unable to read spreadsheet: %v", err)
	}

	summary := &ImportSummary{Errors: []string{}}
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		rowNum := i + 1

		var rowErr error
		switch target {
		case ImportOutlets:
			rowErr = s.importOutletRow(ctx, row)
		case ImportAssignees:
			rowErr = s.importAssigneeRow(ctx, row)
		case ImportSchedulesMD:
			rowErr = s.importScheduleRow(ctx, s.mdSchedules, row)
		case ImportSchedulesSales:
			rowErr = s.importScheduleRow(ctx, s.salesSchedules, row)
		default:
			return nil, NewValidationError("unknown import target %q", string(target))
		}

		if rowErr != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("Row %d: %s", rowNum, rowErr.Error()))
			continue
		}
		summary.Succeeded++
	}

	s.logger.Info("import complete",
		zap.String("target", string(target)),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

var errMissingFields = fmt.Errorf("missing required fields")

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// Outlet sheet columns: username, area_code, depot_code, outlet_code, name,
// address, latitude, longitude. Repeated imports of the same outlet code
// refresh the row (upsert), so a reference sheet can be re-imported safely.
func (s *importService) importOutletRow(ctx context.Context, row []string) error {
	username := cell(row, 0)
	outletCode := cell(row, 3)
	name := cell(row, 4)
	address := cell(row, 5)
	latStr := cell(row, 6)
	lonStr := cell(row, 7)

	if username == "" || outletCode == "" || name == "" || address == "" || latStr == "" || lonStr == "" {
		return errMissingFields
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return fmt.Errorf("invalid latitude %q", latStr)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return fmt.Errorf("invalid longitude %q", lonStr)
	}
	if !domain.ValidCoordinate(lat, lon) {
		return fmt.Errorf("coordinates out of range")
	}

	return s.outletsRepo.Upsert(ctx, &domain.Outlet{
		Username:   username,
		AreaCode:   cell(row, 1),
		DepotCode:  cell(row, 2),
		OutletCode: outletCode,
		Name:       name,
		Address:    address,
		Latitude:   lat,
		Longitude:  lon,
	})
}

// Assignee sheet columns: username, name, role, area_code, depot_code.
func (s *importService) importAssigneeRow(ctx context.Context, row []string) error {
	username := cell(row, 0)
	name := cell(row, 1)
	if username == "" || name == "" {
		return errMissingFields
	}

	_, err := s.assigneesRepo.Create(ctx, &domain.Assignee{
		Username:  username,
		Name:      name,
		Role:      cell(row, 2),
		AreaCode:  cell(row, 3),
		DepotCode: cell(row, 4),
	})
	return err
}

// Schedule sheet columns: username, area_code, depot_code, outlet_code,
// outlet_name, visit_date. Plain insert; the same outlet may legitimately be
// scheduled more than once.
func (s *importService) importScheduleRow(ctx context.Context, schedules repository.SchedulesRepository, row []string) error {
	username := cell(row, 0)
	outletCode := cell(row, 3)
	outletName := cell(row, 4)
	visitDate := cell(row, 5)

	if username == "" || outletCode == "" || outletName == "" || visitDate == "" {
		return errMissingFields
	}

	_, err := schedules.Create(ctx, &domain.VisitSchedule{
		Username:   username,
		AreaCode:   cell(row, 1),
		DepotCode:  cell(row, 2),
		OutletCode: outletCode,
		OutletName: outletName,
		VisitDate:  visitDate,
		Status:     domain.ScheduleStatusScheduled,
	})
	return err
}
