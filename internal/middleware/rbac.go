package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/learnage/portal/internal/model"
	"github.com/learnage/portal/internal/response"
)

// RequireRole checks that the verified principal holds one of the given roles.
// It must run after RequireIdentity.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := GetPrincipal(c)
		if p == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		for _, r := range roles {
			if p.Role == r {
				c.Next()
				return
			}
		}

		response.AbortFail(c, http.StatusForbidden, response.ErrRoleMismatch)
	}
}

// RequireSelf checks that the path parameter names the principal itself.
func RequireSelf(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := GetPrincipal(c)
		if p == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}
		if c.Param(param) != p.UID {
			response.AbortFail(c, http.StatusForbidden, response.ErrForbidden)
			return
		}
		c.Next()
	}
}
