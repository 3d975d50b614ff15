// Package session turns identity-provider state into an authenticated portal session.
//
// The resolver never trusts the identity itself: every resolution asks the
// verification endpoint for the principal and fails closed on any error.
package session

import (
	"context"

	"github.com/learnage/portal/internal/model"
)

// State is the resolution state of a Session.
type State int

const (
	StateResolving State = iota
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateResolving:
		return "resolving"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Session is the outcome of one resolution cycle.
type Session struct {
	State     State
	Principal *model.Principal
}

// Resolving is the initial session shown while verification is in flight.
func Resolving() Session { return Session{State: StateResolving} }

// Unauthenticated is a session with no principal.
func Unauthenticated() Session { return Session{State: StateUnauthenticated} }

// Authenticated wraps a verified principal.
func Authenticated(p *model.Principal) Session {
	return Session{State: StateAuthenticated, Principal: p}
}

// Role returns the principal's role, or "" when not authenticated.
func (s Session) Role() model.Role {
	if s.State != StateAuthenticated || s.Principal == nil {
		return ""
	}
	return s.Principal.Role
}

// Identity is a signed-in identity from the identity provider.
type Identity interface {
	// Token returns a current identity token.
	Token(ctx context.Context) (string, error)
}

// Verifier exchanges an identity token for the stored principal.
type Verifier interface {
	VerifyToken(ctx context.Context, token string) (*model.Principal, error)
}

// Source publishes identity changes. A nil Identity means signed out.
// Subscribe returns a function that removes the subscription.
type Source interface {
	Subscribe(fn func(Identity)) (unsubscribe func())
}

// TokenIdentity is an Identity backed by an already known token,
// such as one read from a session cookie.
type TokenIdentity string

// Token returns the token itself.
func (t TokenIdentity) Token(context.Context) (string, error) {
	return string(t), nil
}
