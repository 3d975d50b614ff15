// Package identity defines how identity tokens issued by an identity provider
// are verified, independent of which provider issued them.
package identity

import (
	"context"
	"errors"
)

// ErrInvalidToken is returned for any token the provider does not accept.
var ErrInvalidToken = errors.New("invalid identity token")

// Identity is what a provider vouches for. Application roles are not part of
// it; they come from the profile store.
type Identity struct {
	UID         string
	Email       string
	DisplayName string
	Provider    string
}

// Verifier validates an identity token and returns the identity it carries.
type Verifier interface {
	VerifyIDToken(ctx context.Context, token string) (*Identity, error)
}
