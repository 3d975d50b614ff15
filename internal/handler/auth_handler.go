package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/learnage/portal/internal/middleware"
	"github.com/learnage/portal/internal/model"
	"github.com/learnage/portal/internal/response"
	"github.com/learnage/portal/internal/service"
	"github.com/learnage/portal/internal/validator"
)

// AuthHandler handles sign in, verification and account endpoints.
type AuthHandler struct {
	authService         *service.AuthService
	userService         *service.UserService
	verificationService *service.VerificationService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	authService *service.AuthService,
	userService *service.UserService,
	verificationService *service.VerificationService,
) *AuthHandler {
	return &AuthHandler{
		authService:         authService,
		userService:         userService,
		verificationService: verificationService,
	}
}

// VerifyToken godoc
// POST /api/auth/verify-token?token=
// Returns the principal behind an identity token. Read-only and idempotent.
func (h *AuthHandler) VerifyToken(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	p, err := h.verificationService.VerifyToken(c.Request.Context(), token)
	if err != nil {
		failService(c, err)
		return
	}

	response.Success(c, http.StatusOK, p)
}

// Login godoc
// POST /api/auth/login
// Validates email + password and issues an identity token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	u, err := h.userService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		failService(c, err)
		return
	}

	token, expiresAt, err := h.authService.IssueToken(c.Request.Context(), u)
	if err != nil {
		failService(c, err)
		return
	}

	response.Success(c, http.StatusOK, model.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Principal: *u.Principal(),
	})
}

// Logout godoc
// POST /api/auth/logout
// Revokes the caller's identity token.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Revoke(c.Request.Context(), middleware.GetToken(c)); err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "signed out"})
}

// Register godoc
// POST /api/auth/register
// Creates an account with the given role.
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	u, err := h.userService.Register(c.Request.Context(), &req)
	if err != nil {
		failService(c, err)
		return
	}

	response.Success(c, http.StatusCreated, u.Principal())
}

// GetUser godoc
// GET /api/auth/user/:uid
// Returns the stored profile of the caller.
func (h *AuthHandler) GetUser(c *gin.Context) {
	u, err := h.userService.GetByUID(c.Request.Context(), c.Param("uid"))
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, u)
}

// UpdateProfile godoc
// PUT /api/profile/:uid
// Changes the caller's display name.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req model.UpdateProfileRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	uid := c.Param("uid")
	if err := h.userService.UpdateName(c.Request.Context(), uid, req.Name); err != nil {
		failService(c, err)
		return
	}

	u, err := h.userService.GetByUID(c.Request.Context(), uid)
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, u.Principal())
}
