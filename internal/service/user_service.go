package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/learnage/portal/internal/model"
	"github.com/learnage/portal/internal/repository"
)

// UserService handles account registration, sign in and profile edits.
type UserService struct {
	users  UserStore
	hasher PasswordHasher
}

// NewUserService creates a new UserService.
func NewUserService(users UserStore, hasher PasswordHasher) *UserService {
	return &UserService{users: users, hasher: hasher}
}

// Register creates an account. A student's parent link must point at a parent account.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if req.ParentID != "" {
		if req.Role != model.RoleStudent {
			return nil, ErrInvalidParent
		}
		parent, err := s.users.GetByUID(ctx, req.ParentID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrInvalidParent
			}
			return nil, err
		}
		if parent.Role != model.RoleParent {
			return nil, ErrInvalidParent
		}
	}

	hash, err := s.hasher.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	uid := req.UID
	if uid == "" {
		uid = uuid.New().String()
	}

	u := &model.User{
		UID:          uid,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Name:         strings.TrimSpace(req.Name),
		Role:         req.Role,
		ClassID:      req.ClassID,
		ParentID:     req.ParentID,
		PasswordHash: hash,
	}

	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return u, nil
}

// Authenticate checks credentials. Unknown email and wrong password are indistinguishable.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	u, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.hasher.CheckPassword(u.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}

// GetByUID returns a stored account.
func (s *UserService) GetByUID(ctx context.Context, uid string) (*model.User, error) {
	u, err := s.users.GetByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// UpdateName changes the display name of an account.
func (s *UserService) UpdateName(ctx context.Context, uid, name string) error {
	err := s.users.UpdateName(ctx, uid, strings.TrimSpace(name))
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}
