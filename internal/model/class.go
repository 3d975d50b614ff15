package model

// StudentSummary is one row of a class roster.
type StudentSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TeacherDashboard summarises the teacher's class.
type TeacherDashboard struct {
	Name         string `json:"name"`
	ClassID      string `json:"class_id"`
	StudentCount int    `json:"student_count"`
}

// ParentDashboard identifies the child linked to a parent account.
type ParentDashboard struct {
	ChildName string `json:"child_name"`
	ChildID   string `json:"child_id"`
	ClassID   string `json:"class_id"`
}
