package model

import (
	"time"

	"github.com/google/uuid"
)

// Homework is an assignment given to a whole class.
type Homework struct {
	ID           uuid.UUID `json:"id"`
	ClassID      string    `json:"class_id"`
	Subject      string    `json:"subject"`
	DueDate      time.Time `json:"due_date"`
	Description  string    `json:"description"`
	AssignedBy   string    `json:"assigned_by"`
	AssignedDate time.Time `json:"assigned_date"`
}

// StudentHomework is a homework item as seen by one student.
type StudentHomework struct {
	ID          uuid.UUID `json:"id"`
	Subject     string    `json:"subject"`
	DueDate     string    `json:"due_date"`
	Description string    `json:"description"`
	Submitted   bool      `json:"submitted"`
}

// AssignHomeworkRequest is the payload for assigning homework.
type AssignHomeworkRequest struct {
	ClassID     string `json:"class_id" binding:"required,max=64"`
	Subject     string `json:"subject" binding:"required,min=1,max=100"`
	DueDate     string `json:"due_date" binding:"required,isodate"`
	Description string `json:"description" binding:"omitempty,max=2000"`
}
