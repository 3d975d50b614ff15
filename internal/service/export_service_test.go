package service

import (
	"bytes"
	"testing"
	"time"

	"github.com/learnage/portal/internal/model"
	"github.com/xuri/excelize/v2"
)

func TestAttendanceWorkbook(t *testing.T) {
	records := []model.AttendanceRecord{
		{StudentID: "S1", StudentName: "Asha Verma", Date: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), Status: model.AttendancePresent, MarkedBy: "T1"},
		{StudentID: "S2", StudentName: "Kabir Singh", Date: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), Status: model.AttendanceAbsent, MarkedBy: "T1"},
	}

	body, err := NewExportService().AttendanceWorkbook("10A", records)
	if err != nil {
		t.Fatalf("AttendanceWorkbook: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Attendance")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header plus 2", len(rows))
	}
	if rows[0][0] != "Date" || rows[0][3] != "Status" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[2][2] != "Kabir Singh" || rows[2][3] != "Absent" || rows[1][0] != "2026-03-09" {
		t.Errorf("rows = %v", rows[1:])
	}
}

func TestAttendanceWorkbookEmpty(t *testing.T) {
	body, err := NewExportService().AttendanceWorkbook("10A", nil)
	if err != nil {
		t.Fatalf("AttendanceWorkbook: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()
	if rows, _ := f.GetRows("Attendance"); len(rows) != 1 {
		t.Errorf("rows = %d, want header only", len(rows))
	}
}
