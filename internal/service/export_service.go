package service

import (
	"bytes"
	"fmt"

	"github.com/learnage/portal/internal/model"
	"github.com/xuri/excelize/v2"
)

const attendanceSheet = "Attendance"

var attendanceHeader = []interface{}{"Date", "Student ID", "Student Name", "Status", "Marked By"}

// ExportService renders reports as spreadsheets.
type ExportService struct{}

// NewExportService creates a new ExportService.
func NewExportService() *ExportService {
	return &ExportService{}
}

// AttendanceWorkbook writes the records to a single-sheet xlsx document.
func (s *ExportService) AttendanceWorkbook(classID string, records []model.AttendanceRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", attendanceSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(attendanceSheet, "A1", &attendanceHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{
			r.Date.Format(DateLayout),
			r.StudentID,
			r.StudentName,
			r.Status.Label(),
			r.MarkedBy,
		}
		if err := f.SetSheetRow(attendanceSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetDocProps(&excelize.DocProperties{Title: "Attendance " + classID}); err != nil {
		return nil, fmt.Errorf("set properties: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
