package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/learnage/portal/internal/guard"
	"github.com/learnage/portal/internal/session"
)

// ContextKeySession is the Gin context key for the resolved portal session.
const ContextKeySession = "session"

// PortalSession resolves the identity token held in the session cookie.
// A missing cookie resolves to unauthenticated without contacting the verifier.
func PortalSession(resolver *session.Resolver, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var id session.Identity
		if token, err := c.Cookie(cookieName); err == nil && token != "" {
			id = session.TokenIdentity(token)
		}

		s := resolver.Resolve(c.Request.Context(), id)
		c.Set(ContextKeySession, s)
		if s.State == session.StateAuthenticated {
			c.Set(ContextKeyPrincipal, s.Principal)
		}
		c.Next()
	}
}

// GetSession retrieves the resolved session. Without PortalSession it is unauthenticated.
func GetSession(c *gin.Context) session.Session {
	val, exists := c.Get(ContextKeySession)
	if !exists {
		return session.Unauthenticated()
	}
	s, ok := val.(session.Session)
	if !ok {
		return session.Unauthenticated()
	}
	return s
}

// Guard renders the route only when its authorization record allows it and
// otherwise redirects with 302 Found. It must run after PortalSession.
func Guard(route guard.Route) gin.HandlerFunc {
	return func(c *gin.Context) {
		g := guard.New(route)
		out := g.Complete(GetSession(c).Principal)

		if out.Location != "" {
			c.Redirect(http.StatusFound, out.Location)
			c.Abort()
			return
		}
		c.Next()
	}
}
