package model

// AddStudentRequest is submitted by a teacher to enrol a new student account.
type AddStudentRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
	Name     string `json:"name" binding:"required,min=2,max=100"`
	ClassID  string `json:"class_id" binding:"required,max=64"`
	ParentID string `json:"parent_id" binding:"omitempty,max=64"`
}

// StudentDashboard summarises a student's day.
type StudentDashboard struct {
	Name            string `json:"name"`
	ClassID         string `json:"class_id"`
	TodayAttendance string `json:"today_attendance"`
	PendingHomework int    `json:"pending_homework"`
}
