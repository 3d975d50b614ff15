package service

import (
	"context"
	"errors"

	"github.com/learnage/portal/internal/model"
	"github.com/learnage/portal/internal/repository"
)

// ParentService exposes a linked child's records to the parent.
// The child is resolved from the store on every call.
type ParentService struct {
	users    UserStore
	students *StudentService
}

// NewParentService creates a new ParentService.
func NewParentService(users UserStore, students *StudentService) *ParentService {
	return &ParentService{users: users, students: students}
}

func (s *ParentService) child(ctx context.Context, parentID string) (*model.User, error) {
	parent, err := s.users.GetByUID(ctx, parentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if parent.Role != model.RoleParent {
		return nil, ErrWrongRole
	}

	child, err := s.users.GetChildOfParent(ctx, parentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoLinkedChild
		}
		return nil, err
	}
	return child, nil
}

// Dashboard identifies the parent's linked child.
func (s *ParentService) Dashboard(ctx context.Context, parentID string) (*model.ParentDashboard, error) {
	c, err := s.child(ctx, parentID)
	if err != nil {
		return nil, err
	}
	return &model.ParentDashboard{ChildName: c.Name, ChildID: c.UID, ClassID: c.ClassID}, nil
}

// ChildAttendance returns the child's attendance history after checking the link.
func (s *ParentService) ChildAttendance(ctx context.Context, parentID, childID string) ([]model.AttendanceDay, error) {
	if err := s.checkLink(ctx, parentID, childID); err != nil {
		return nil, err
	}
	return s.students.Attendance(ctx, childID)
}

// ChildHomework returns the child's homework after checking the link.
func (s *ParentService) ChildHomework(ctx context.Context, parentID, childID string) ([]model.StudentHomework, error) {
	if err := s.checkLink(ctx, parentID, childID); err != nil {
		return nil, err
	}
	return s.students.Homework(ctx, childID)
}

func (s *ParentService) checkLink(ctx context.Context, parentID, childID string) error {
	child, err := s.users.GetByUID(ctx, childID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotLinkedChild
		}
		return err
	}
	if child.Role != model.RoleStudent || child.ParentID != parentID {
		return ErrNotLinkedChild
	}
	return nil
}
