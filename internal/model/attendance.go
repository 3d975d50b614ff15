package model

import (
	"time"

	"github.com/google/uuid"
)

// AttendanceStatus is the mark a teacher gives a student for a day.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
)

// Label is the capitalised form shown on dashboards and history lists.
func (s AttendanceStatus) Label() string {
	switch s {
	case AttendancePresent:
		return "Present"
	case AttendanceAbsent:
		return "Absent"
	default:
		return "Not Marked"
	}
}

// AttendanceRecord is one student's mark for one day.
type AttendanceRecord struct {
	ID          uuid.UUID        `json:"id"`
	StudentID   string           `json:"student_id"`
	StudentName string           `json:"student_name"`
	ClassID     string           `json:"class_id"`
	Date        time.Time        `json:"date"`
	Status      AttendanceStatus `json:"status"`
	MarkedBy    string           `json:"marked_by"`
	MarkedAt    time.Time        `json:"marked_at"`
}

// AttendanceDay is an entry of a student's attendance history.
type AttendanceDay struct {
	Date   string `json:"date"`
	Status string `json:"status"`
}

// AttendanceEntry is a single row of the mark-attendance form.
type AttendanceEntry struct {
	StudentID   string           `json:"student_id" binding:"required,max=64"`
	StudentName string           `json:"student_name" binding:"required,max=100"`
	Status      AttendanceStatus `json:"status" binding:"required,oneof=present absent"`
}

// MarkAttendanceRequest records the attendance of a class for one date.
type MarkAttendanceRequest struct {
	ClassID    string            `json:"class_id" binding:"required,max=64"`
	Date       string            `json:"date" binding:"required,isodate"`
	Attendance []AttendanceEntry `json:"attendance" binding:"required,min=1,dive"`
}
