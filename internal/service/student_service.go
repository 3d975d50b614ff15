package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/learnage/portal/internal/model"
	"github.com/learnage/portal/internal/repository"
	"golang.org/x/sync/errgroup"
)

// AttendanceHistoryLimit caps the attendance history shown to students and parents.
const AttendanceHistoryLimit = 30

// StudentService serves the student dashboard, attendance and homework.
type StudentService struct {
	users      UserStore
	attendance AttendanceStore
	homework   HomeworkStore
	now        func() time.Time
}

// NewStudentService creates a new StudentService.
func NewStudentService(users UserStore, attendance AttendanceStore, homework HomeworkStore) *StudentService {
	return &StudentService{users: users, attendance: attendance, homework: homework, now: time.Now}
}

func (s *StudentService) student(ctx context.Context, id string) (*model.User, error) {
	u, err := s.users.GetByUID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if u.Role != model.RoleStudent {
		return nil, ErrWrongRole
	}
	return u, nil
}

// Dashboard returns today's attendance label and the number of pending homework items.
// Both lookups run concurrently.
func (s *StudentService) Dashboard(ctx context.Context, studentID string) (*model.StudentDashboard, error) {
	u, err := s.student(ctx, studentID)
	if err != nil {
		return nil, err
	}

	var (
		status  model.AttendanceStatus
		pending int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		status, err = s.attendance.GetStatus(gctx, u.UID, today(s.now()))
		// An unmarked day renders as "Not Marked".
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		var err error
		pending, err = s.homework.CountPending(gctx, u.ClassID, u.UID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &model.StudentDashboard{
		Name:            u.Name,
		ClassID:         u.ClassID,
		TodayAttendance: status.Label(),
		PendingHomework: pending,
	}, nil
}

// Attendance returns the most recent attendance marks, newest first.
func (s *StudentService) Attendance(ctx context.Context, studentID string) ([]model.AttendanceDay, error) {
	if _, err := s.student(ctx, studentID); err != nil {
		return nil, err
	}

	records, err := s.attendance.ListByStudent(ctx, studentID, AttendanceHistoryLimit)
	if err != nil {
		return nil, err
	}

	days := make([]model.AttendanceDay, 0, len(records))
	for _, r := range records {
		days = append(days, model.AttendanceDay{
			Date:   r.Date.Format(DateLayout),
			Status: r.Status.Label(),
		})
	}
	return days, nil
}

// Homework lists the class homework ordered by due date with the student's submission flag.
func (s *StudentService) Homework(ctx context.Context, studentID string) ([]model.StudentHomework, error) {
	u, err := s.student(ctx, studentID)
	if err != nil {
		return nil, err
	}

	items, err := s.homework.ListForStudent(ctx, u.ClassID, u.UID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.StudentHomework{}
	}
	return items, nil
}

// SubmitHomework marks a homework item as submitted. Submitting twice is a no-op.
// Homework of another class is reported as not found.
func (s *StudentService) SubmitHomework(ctx context.Context, homeworkID uuid.UUID, studentID string) error {
	u, err := s.student(ctx, studentID)
	if err != nil {
		return err
	}

	classID, err := s.homework.ClassOf(ctx, homeworkID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && classID != u.ClassID) {
		return ErrHomeworkNotFound
	}
	if err != nil {
		return err
	}

	err = s.homework.MarkSubmitted(ctx, homeworkID, studentID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrHomeworkNotFound
	}
	return err
}
