package session

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

var errMalformedPrincipal = errors.New("verification returned a malformed principal")

// Resolver resolves identities into sessions.
type Resolver struct {
	verifier Verifier
	log      zerolog.Logger
}

// NewResolver creates a Resolver backed by the verification endpoint.
func NewResolver(verifier Verifier, log zerolog.Logger) *Resolver {
	return &Resolver{
		verifier: verifier,
		log:      log.With().Str("component", "session_resolver").Logger(),
	}
}

// Resolve verifies the identity and returns the resulting session.
// A nil identity resolves to unauthenticated without any network call.
// Every failure resolves to unauthenticated; nothing is retried.
func (r *Resolver) Resolve(ctx context.Context, id Identity) Session {
	if id == nil {
		return Unauthenticated()
	}

	token, err := id.Token(ctx)
	if err != nil {
		r.log.Warn().Err(err).Msg("Failed to acquire identity token")
		return Unauthenticated()
	}
	if token == "" {
		return Unauthenticated()
	}

	p, err := r.verifier.VerifyToken(ctx, token)
	if err != nil {
		r.log.Warn().Err(err).Msg("Token verification failed")
		return Unauthenticated()
	}
	if p == nil || p.UID == "" || !p.Role.Valid() {
		r.log.Warn().Err(errMalformedPrincipal).Msg("Token verification failed")
		return Unauthenticated()
	}

	return Authenticated(p)
}

// Watch resolves once per identity event and hands each session to fn, in event order.
// It returns when ctx is cancelled.
func (r *Resolver) Watch(ctx context.Context, src Source, fn func(Session)) {
	events := make(chan Identity, 8)
	unsubscribe := src.Subscribe(func(id Identity) {
		select {
		case events <- id:
		case <-ctx.Done():
		}
	})
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case id := <-events:
			s := r.Resolve(ctx, id)
			if ctx.Err() != nil {
				return
			}
			fn(s)
		}
	}
}
