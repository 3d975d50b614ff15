package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/learnage/portal/internal/identity"
	"github.com/learnage/portal/internal/logger"
	"github.com/learnage/portal/internal/model"
	"github.com/learnage/portal/internal/response"
	"github.com/learnage/portal/internal/service"
	"github.com/rs/zerolog/log"
)

const (
	// ContextKeyPrincipal is the Gin context key for the verified principal.
	ContextKeyPrincipal = "principal"
	// ContextKeyToken is the Gin context key for the raw identity token.
	ContextKeyToken = "identity_token"
)

// TokenVerifier exchanges an identity token for the stored principal.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*model.Principal, error)
}

// RequireIdentity verifies the identity token from the Authorization header,
// falling back to ?token= for WebSocket upgrades which cannot send headers.
func RequireIdentity(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		p, err := verifier.VerifyToken(c.Request.Context(), token)
		if err != nil {
			code, status := verificationFailure(err)
			if status == http.StatusInternalServerError {
				l := logger.FromContext(c.Request.Context(), log.Logger)
				l.Error().Err(err).Msg("Token verification error")
			}
			response.AbortFail(c, status, code)
			return
		}

		c.Set(ContextKeyPrincipal, p)
		c.Set(ContextKeyToken, token)
		c.Next()
	}
}

// GetPrincipal retrieves the verified principal from the Gin context.
func GetPrincipal(c *gin.Context) *model.Principal {
	val, exists := c.Get(ContextKeyPrincipal)
	if !exists {
		return nil
	}
	p, ok := val.(*model.Principal)
	if !ok {
		return nil
	}
	return p
}

// GetToken retrieves the raw identity token from the Gin context.
func GetToken(c *gin.Context) string {
	return c.GetString(ContextKeyToken)
}

// BearerToken extracts the token from "Authorization: Bearer ..." or the token query parameter.
func BearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return c.Query("token")
}

func verificationFailure(err error) (response.ErrCode, int) {
	switch {
	case errors.Is(err, identity.ErrInvalidToken):
		return response.ErrTokenInvalid, http.StatusUnauthorized
	case errors.Is(err, service.ErrProfileNotFound):
		return response.ErrProfileNotFound, http.StatusUnauthorized
	default:
		return response.ErrInternal, http.StatusInternalServerError
	}
}
