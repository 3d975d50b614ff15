package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/learnage/portal/internal/model"
)

// The store interfaces are satisfied by the pgx repositories.

// UserStore persists accounts.
type UserStore interface {
	GetByUID(ctx context.Context, uid string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
	UpdateName(ctx context.Context, uid, name string) error
	ListStudentsByClass(ctx context.Context, classID string) ([]model.StudentSummary, error)
	GetChildOfParent(ctx context.Context, parentID string) (*model.User, error)
}

// AttendanceStore persists attendance marks.
type AttendanceStore interface {
	MarkBatch(ctx context.Context, records []model.AttendanceRecord) error
	GetStatus(ctx context.Context, studentID string, date time.Time) (model.AttendanceStatus, error)
	ListByStudent(ctx context.Context, studentID string, limit int) ([]model.AttendanceRecord, error)
	ListByClass(ctx context.Context, classID string, from, to time.Time) ([]model.AttendanceRecord, error)
}

// HomeworkStore persists homework and submissions.
type HomeworkStore interface {
	Create(ctx context.Context, hw *model.Homework) error
	ListForStudent(ctx context.Context, classID, studentID string) ([]model.StudentHomework, error)
	CountPending(ctx context.Context, classID, studentID string) (int, error)
	MarkSubmitted(ctx context.Context, homeworkID uuid.UUID, studentID string) error
	ClassOf(ctx context.Context, homeworkID uuid.UUID) (string, error)
}

// MessageStore persists class chat messages.
type MessageStore interface {
	ListByClass(ctx context.Context, classID string, limit int) ([]model.ChatMessage, error)
	Create(ctx context.Context, m *model.ChatMessage) error
	GetByID(ctx context.Context, id string) (*model.ChatMessage, error)
	Delete(ctx context.Context, id string) error
}

// PasswordHasher hashes and checks account passwords.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
	CheckPassword(hash, password string) error
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// today returns now's calendar date at UTC midnight, matching how DATE columns scan.
func today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
