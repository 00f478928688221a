package httpapi

import (
	"fmt"

	"fieldvisit/internal/domain"

	"github.com/xuri/excelize/v2"
)

// Import sheet headers. Column order is the contract the import pipeline
// parses, so these double as the import templates.
var (
	OutletImportHeader = []string{
		"Username", "Area Code", "Depot Code", "Outlet Code",
		"Outlet Name", "Address", "Latitude", "Longitude",
	}
	AssigneeImportHeader = []string{
		"Username", "Name", "Role", "Area Code", "Depot Code",
	}
	ScheduleImportHeader = []string{
		"Username", "Area Code", "Depot Code", "Outlet Code",
		"Outlet Name", "Visit Date",
	}
	VisitActionExportHeader = []string{
		"ID", "Role Type", "Username", "Assignee Name", "Area Code", "Depot Code",
		"Outlet Code", "Outlet Name", "Outlet Address",
		"Check-In Time", "Check-In Latitude", "Check-In Longitude",
		"Check-Out Time", "Check-Out Latitude", "Check-Out Longitude",
		"Photo Before", "Photo After", "Classification",
	}
)

// generateSheet renders a single-sheet workbook with a styled header row and
// one row per data entry.
func generateSheet(sheetName string, headers []string, rows [][]any) ([]byte, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
	}

	if len(headers) > 0 {
		first, _ := excelize.ColumnNumberToName(1)
		last, _ := excelize.ColumnNumberToName(len(headers))
		_ = f.SetColWidth(sheetName, first, last, 18)
	}

	for i, row := range rows {
		for col, v := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to convert coordinates: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	f.Close()
	return buf.Bytes(), nil
}

// GenerateVisitActionExport renders the audit report workbook.
func GenerateVisitActionExport(actions []*domain.VisitAction) ([]byte, error) {
	rows := make([][]any, 0, len(actions))
	for _, a := range actions {
		m := a.ToJSON()
		rows = append(rows, []any{
			a.ID, string(a.RoleType), a.Username, a.AssigneeName, a.AreaCode, a.DepotCode,
			a.OutletCode, a.OutletName, a.OutletAddress,
			m["checkin_time"], m["checkin_latitude"], m["checkin_longitude"],
			m["checkout_time"], m["checkout_latitude"], m["checkout_longitude"],
			m["photo_before"], m["photo_after"], m["classification"],
		})
	}
	return generateSheet("Visit Actions", VisitActionExportHeader, rows)
}
