package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/learnage/portal/internal/model"
	"github.com/learnage/portal/internal/session"
)

// ErrTokenExpired is returned by Token once the signed-in identity has expired.
var ErrTokenExpired = errors.New("identity token expired")

// Account is a signed-in identity held by an IdentityClient.
type Account struct {
	token     string
	expiresAt time.Time
	now       func() time.Time
}

// Token returns the identity token while it is unexpired.
func (a *Account) Token(context.Context) (string, error) {
	if !a.expiresAt.IsZero() && !a.now().Before(a.expiresAt) {
		return "", ErrTokenExpired
	}
	return a.token, nil
}

// ExpiresAt returns the token expiry. Zero means unknown.
func (a *Account) ExpiresAt() time.Time {
	return a.expiresAt
}

// IdentityClient signs in against the local identity provider and tells
// subscribers about every identity change. It is safe for concurrent use.
type IdentityClient struct {
	api *Client
	now func() time.Time

	mu      sync.Mutex
	current *Account
	subs    map[int]func(session.Identity)
	nextID  int
}

// NewIdentityClient creates a signed-out IdentityClient.
func NewIdentityClient(api *Client) *IdentityClient {
	return &IdentityClient{api: api, now: time.Now, subs: make(map[int]func(session.Identity))}
}

// SignIn authenticates and makes the new identity current.
func (ic *IdentityClient) SignIn(ctx context.Context, email, password string) (*model.LoginResponse, error) {
	resp, err := ic.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	ic.set(&Account{token: resp.Token, expiresAt: resp.ExpiresAt, now: ic.now})
	return resp, nil
}

// Restore makes a previously issued token current without contacting the server.
func (ic *IdentityClient) Restore(token string, expiresAt time.Time) {
	if token == "" {
		ic.set(nil)
		return
	}
	ic.set(&Account{token: token, expiresAt: expiresAt, now: ic.now})
}

// SignOut revokes the current token and clears the identity. The identity is
// cleared even when revocation fails.
func (ic *IdentityClient) SignOut(ctx context.Context) error {
	ic.mu.Lock()
	acct := ic.current
	ic.mu.Unlock()
	if acct == nil {
		return nil
	}

	err := ic.api.Logout(ctx, acct.token)
	ic.set(nil)
	return err
}

// Current returns the current identity, or nil when signed out.
func (ic *IdentityClient) Current() session.Identity {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	if ic.current == nil {
		return nil
	}
	return ic.current
}

// Token returns the current identity token.
func (ic *IdentityClient) Token(ctx context.Context) (string, error) {
	id := ic.Current()
	if id == nil {
		return "", ErrSignedOut
	}
	return id.Token(ctx)
}

// Subscribe registers fn for identity changes. fn is called right away with
// the current identity, then after every sign in and sign out.
func (ic *IdentityClient) Subscribe(fn func(session.Identity)) func() {
	ic.mu.Lock()
	id := ic.nextID
	ic.nextID++
	ic.subs[id] = fn
	ic.mu.Unlock()

	fn(ic.Current())

	return func() {
		ic.mu.Lock()
		delete(ic.subs, id)
		ic.mu.Unlock()
	}
}

func (ic *IdentityClient) set(acct *Account) {
	ic.mu.Lock()
	ic.current = acct
	subs := make([]func(session.Identity), 0, len(ic.subs))
	for _, fn := range ic.subs {
		subs = append(subs, fn)
	}
	ic.mu.Unlock()

	var id session.Identity
	if acct != nil {
		id = acct
	}
	for _, fn := range subs {
		fn(id)
	}
}
