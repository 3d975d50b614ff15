package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/learnage/portal/internal/model"
	"github.com/learnage/portal/internal/repository"
)

// TeacherService serves the teacher's class management operations.
// A teacher may only act on the class stored on their own account.
type TeacherService struct {
	users      UserStore
	attendance AttendanceStore
	homework   HomeworkStore
	accounts   *UserService
	now        func() time.Time
}

// NewTeacherService creates a new TeacherService.
func NewTeacherService(users UserStore, attendance AttendanceStore, homework HomeworkStore, accounts *UserService) *TeacherService {
	return &TeacherService{
		users:      users,
		attendance: attendance,
		homework:   homework,
		accounts:   accounts,
		now:        time.Now,
	}
}

func (s *TeacherService) teacher(ctx context.Context, id string) (*model.User, error) {
	u, err := s.users.GetByUID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if u.Role != model.RoleTeacher {
		return nil, ErrWrongRole
	}
	return u, nil
}

func (s *TeacherService) ownClass(ctx context.Context, teacherID, classID string) (*model.User, error) {
	t, err := s.teacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	if t.ClassID == "" || t.ClassID != classID {
		return nil, ErrClassMismatch
	}
	return t, nil
}

// Dashboard returns the teacher's class and its size.
func (s *TeacherService) Dashboard(ctx context.Context, teacherID string) (*model.TeacherDashboard, error) {
	t, err := s.teacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	count := 0
	if t.ClassID != "" {
		students, err := s.users.ListStudentsByClass(ctx, t.ClassID)
		if err != nil {
			return nil, err
		}
		count = len(students)
	}

	return &model.TeacherDashboard{Name: t.Name, ClassID: t.ClassID, StudentCount: count}, nil
}

// Roster lists the students of the teacher's class.
func (s *TeacherService) Roster(ctx context.Context, teacherID, classID string) ([]model.StudentSummary, error) {
	if _, err := s.ownClass(ctx, teacherID, classID); err != nil {
		return nil, err
	}

	students, err := s.users.ListStudentsByClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	if students == nil {
		students = []model.StudentSummary{}
	}
	return students, nil
}

// MarkAttendance stores one record per entry. Marking the same day again overwrites it.
func (s *TeacherService) MarkAttendance(ctx context.Context, teacherID string, req *model.MarkAttendanceRequest) (int, error) {
	if _, err := s.ownClass(ctx, teacherID, req.ClassID); err != nil {
		return 0, err
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return 0, err
	}

	roster, err := s.users.ListStudentsByClass(ctx, req.ClassID)
	if err != nil {
		return 0, err
	}
	enrolled := make(map[string]bool, len(roster))
	for _, st := range roster {
		enrolled[st.ID] = true
	}
	for _, e := range req.Attendance {
		if !enrolled[e.StudentID] {
			return 0, ErrStudentNotInClass
		}
	}

	markedAt := s.now()
	records := make([]model.AttendanceRecord, 0, len(req.Attendance))
	for _, e := range req.Attendance {
		records = append(records, model.AttendanceRecord{
			ID:          uuid.New(),
			StudentID:   e.StudentID,
			StudentName: e.StudentName,
			ClassID:     req.ClassID,
			Date:        date,
			Status:      e.Status,
			MarkedBy:    teacherID,
			MarkedAt:    markedAt,
		})
	}

	if err := s.attendance.MarkBatch(ctx, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

// AssignHomework creates a homework item for the teacher's class.
func (s *TeacherService) AssignHomework(ctx context.Context, teacherID string, req *model.AssignHomeworkRequest) (*model.Homework, error) {
	if _, err := s.ownClass(ctx, teacherID, req.ClassID); err != nil {
		return nil, err
	}

	due, err := parseDate(req.DueDate)
	if err != nil {
		return nil, err
	}

	hw := &model.Homework{
		ID:          uuid.New(),
		ClassID:     req.ClassID,
		Subject:     req.Subject,
		DueDate:     due,
		Description: req.Description,
		AssignedBy:  teacherID,
	}
	if err := s.homework.Create(ctx, hw); err != nil {
		return nil, err
	}
	return hw, nil
}

// AddStudent enrols a new student account in the teacher's class.
func (s *TeacherService) AddStudent(ctx context.Context, teacherID string, req *model.AddStudentRequest) (*model.User, error) {
	if _, err := s.ownClass(ctx, teacherID, req.ClassID); err != nil {
		return nil, err
	}

	return s.accounts.Register(ctx, &model.RegisterRequest{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     model.RoleStudent,
		ClassID:  req.ClassID,
		ParentID: req.ParentID,
	})
}

// ClassAttendance returns the class marks within [from, to] for export.
func (s *TeacherService) ClassAttendance(ctx context.Context, teacherID, classID, from, to string) ([]model.AttendanceRecord, error) {
	if _, err := s.ownClass(ctx, teacherID, classID); err != nil {
		return nil, err
	}

	fromDate, err := parseDate(from)
	if err != nil {
		return nil, err
	}
	toDate, err := parseDate(to)
	if err != nil {
		return nil, err
	}
	if toDate.Before(fromDate) {
		return nil, ErrInvalidDate
	}

	return s.attendance.ListByClass(ctx, classID, fromDate, toDate)
}
