package service

import (
	"context"
	"errors"

	"github.com/learnage/portal/internal/identity"
	"github.com/learnage/portal/internal/model"
	"github.com/learnage/portal/internal/repository"
)

// VerificationService maps a verified identity token to the stored principal.
type VerificationService struct {
	verifier identity.Verifier
	users    UserStore
}

// NewVerificationService creates a new VerificationService.
func NewVerificationService(verifier identity.Verifier, users UserStore) *VerificationService {
	return &VerificationService{verifier: verifier, users: users}
}

// VerifyToken returns the principal behind token. Verification is read-only,
// so repeated calls with a valid token return the same principal.
func (s *VerificationService) VerifyToken(ctx context.Context, token string) (*model.Principal, error) {
	if token == "" {
		return nil, identity.ErrInvalidToken
	}

	id, err := s.verifier.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, err
	}

	u, err := s.users.GetByUID(ctx, id.UID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	return u.Principal(), nil
}
