// Package guard decides whether a portal route renders for a session.
package guard

import (
	"sync"

	"github.com/learnage/portal/internal/model"
)

// LoginPath is where unauthenticated visitors are sent.
const LoginPath = "/login"

// State is the guard's lifecycle position. Resolving is the only non-terminal state.
type State int

const (
	Resolving State = iota
	Authorized
	Unauthorized
)

func (s State) String() string {
	switch s {
	case Resolving:
		return "resolving"
	case Authorized:
		return "authorized"
	default:
		return "unauthorized"
	}
}

// Outcome is what the view layer does with a route.
// Location is set whenever the outcome is a redirect.
type Outcome struct {
	State    State
	Location string
}

// Render reports whether the protected content should be shown.
func (o Outcome) Render() bool {
	return o.State == Authorized && o.Location == ""
}

// Route is the authorization record of a portal route.
type Route struct {
	Path string
	// Required is the role the route needs. Empty means any authenticated principal.
	Required model.Role
	// RoleRelative routes have no page of their own and forward to "/{role}" + Path.
	RoleRelative bool
}

// Evaluate applies the route's rule to a principal. A nil principal is unauthenticated.
func Evaluate(route Route, p *model.Principal) Outcome {
	if p == nil || !p.Role.Valid() {
		return Outcome{State: Unauthorized, Location: LoginPath}
	}
	if route.Required != "" && p.Role != route.Required {
		return Outcome{State: Unauthorized, Location: p.Role.DashboardPath()}
	}
	if route.RoleRelative {
		return Outcome{State: Authorized, Location: "/" + string(p.Role) + route.Path}
	}
	return Outcome{State: Authorized}
}

// Guard tracks one route visit from the loading placeholder to its single decision.
type Guard struct {
	route Route

	mu      sync.Mutex
	outcome Outcome
}

// New returns a guard in the Resolving state.
func New(route Route) *Guard {
	return &Guard{route: route, outcome: Outcome{State: Resolving}}
}

// Route returns the guarded route.
func (g *Guard) Route() Route {
	return g.route
}

// Outcome returns the current outcome.
func (g *Guard) Outcome() Outcome {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.outcome
}

// Complete records the resolved principal. Only the first call decides;
// later calls return that first decision unchanged.
func (g *Guard) Complete(p *model.Principal) Outcome {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.outcome.State != Resolving {
		return g.outcome
	}
	g.outcome = Evaluate(g.route, p)
	return g.outcome
}
