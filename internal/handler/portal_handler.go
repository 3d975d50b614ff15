package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/learnage/portal/internal/config"
	"github.com/learnage/portal/internal/guard"
	"github.com/learnage/portal/internal/logger"
	"github.com/learnage/portal/internal/middleware"
	"github.com/learnage/portal/internal/model"
	"github.com/learnage/portal/internal/navigation"
	"github.com/learnage/portal/internal/response"
	"github.com/learnage/portal/internal/service"
	"github.com/learnage/portal/internal/validator"
	"github.com/rs/zerolog"
)

// ExternalSignIn is an identity provider that signs users in on its own pages.
type ExternalSignIn interface {
	SigninURL(redirectURI string) string
	ExchangeCode(code, state string) (string, error)
}

// View is the model every portal page renders from.
type View struct {
	Page       string            `json:"page"`
	User       *model.Principal  `json:"user,omitempty"`
	Navigation []navigation.Link `json:"navigation,omitempty"`
	Data       interface{}       `json:"data,omitempty"`
}

// PortalServices groups the services the portal pages read from.
type PortalServices struct {
	Auth         *service.AuthService
	Users        *service.UserService
	Verification *service.VerificationService
	Students     *service.StudentService
	Teachers     *service.TeacherService
	Parents      *service.ParentService
	Messages     *service.MessageService
}

// PortalHandler serves the role-scoped portal pages and the login flow.
type PortalHandler struct {
	cfg      *config.Config
	svc      PortalServices
	external ExternalSignIn
	log      zerolog.Logger
}

// NewPortalHandler creates a new PortalHandler. external is nil for the local identity provider.
func NewPortalHandler(cfg *config.Config, svc PortalServices, external ExternalSignIn, log zerolog.Logger) *PortalHandler {
	return &PortalHandler{
		cfg:      cfg,
		svc:      svc,
		external: external,
		log:      log.With().Str("component", "portal_handler").Logger(),
	}
}

func (h *PortalHandler) reqLog(c *gin.Context) *zerolog.Logger {
	l := logger.FromContext(c.Request.Context(), h.log)
	return &l
}

// ─── Public pages ─────────────────────────────────────────────────────

// Landing godoc
// GET /
func (h *PortalHandler) Landing(c *gin.Context) {
	s := middleware.GetSession(c)
	response.Success(c, http.StatusOK, View{
		Page: "landing",
		User: s.Principal,
		Data: gin.H{"login": guard.LoginPath},
	})
}

// LoginPage godoc
// GET /login?error=
// An authenticated visitor is sent to their own dashboard.
func (h *PortalHandler) LoginPage(c *gin.Context) {
	if p := middleware.GetSession(c).Principal; p != nil {
		c.Redirect(http.StatusFound, p.Role.DashboardPath())
		return
	}

	data := gin.H{"provider": h.cfg.IdentityProvider}
	if code := c.Query("error"); code != "" {
		data["error"] = gin.H{"code": code, "message": response.GetMessage(response.ErrCode(code))}
	}
	if h.external != nil {
		data["signin_url"] = h.external.SigninURL(h.callbackURL(c))
	}

	response.Success(c, http.StatusOK, View{Page: "login", Data: data})
}

// LoginSubmit godoc
// POST /login
// Signs in with the local identity provider and stores the token in the session cookie.
func (h *PortalHandler) LoginSubmit(c *gin.Context) {
	if h.svc.Auth == nil {
		h.loginError(c, response.ErrForbidden)
		return
	}

	var req model.LoginRequest
	if fields := validator.BindForm(c, &req); fields != nil {
		h.loginError(c, response.ErrValidation)
		return
	}

	u, err := h.svc.Users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if !errors.Is(err, service.ErrInvalidCredentials) {
			h.reqLog(c).Error().Err(err).Msg("Login failed")
			h.loginError(c, response.ErrInternal)
			return
		}
		h.loginError(c, response.ErrInvalidCredentials)
		return
	}

	token, _, err := h.svc.Auth.IssueToken(c.Request.Context(), u)
	if err != nil {
		h.reqLog(c).Error().Err(err).Msg("Token issue failed")
		h.loginError(c, response.ErrInternal)
		return
	}

	h.setSessionCookie(c, token)
	c.Redirect(http.StatusFound, u.Role.DashboardPath())
}

// Callback godoc
// GET /auth/callback?code=&state=
// Completes an external provider sign in.
func (h *PortalHandler) Callback(c *gin.Context) {
	if h.external == nil {
		c.Redirect(http.StatusFound, guard.LoginPath)
		return
	}

	token, err := h.external.ExchangeCode(c.Query("code"), c.Query("state"))
	if err != nil {
		h.reqLog(c).Warn().Err(err).Msg("Code exchange failed")
		h.loginError(c, response.ErrInvalidCredentials)
		return
	}

	p, err := h.svc.Verification.VerifyToken(c.Request.Context(), token)
	if err != nil {
		h.reqLog(c).Warn().Err(err).Msg("External token rejected")
		h.loginError(c, response.ErrProfileNotFound)
		return
	}

	h.setSessionCookie(c, token)
	c.Redirect(http.StatusFound, p.Role.DashboardPath())
}

// Logout godoc
// GET|POST /logout
// Revokes the session token when possible and clears the cookie.
func (h *PortalHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(h.cfg.SessionCookieName); err == nil && token != "" && h.svc.Auth != nil {
		if err := h.svc.Auth.Revoke(c.Request.Context(), token); err != nil {
			h.reqLog(c).Debug().Err(err).Msg("Revoke on logout failed")
		}
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.SessionCookieName, "", -1, "/", "", h.cfg.SessionCookieSecure, true)
	c.Redirect(http.StatusFound, guard.LoginPath)
}

func (h *PortalHandler) loginError(c *gin.Context, code response.ErrCode) {
	c.Redirect(http.StatusFound, guard.LoginPath+"?error="+url.QueryEscape(string(code)))
}

func (h *PortalHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.SessionCookieName, token, int(h.cfg.JWTExpiry.Seconds()), "/", "", h.cfg.SessionCookieSecure, true)
}

func (h *PortalHandler) callbackURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil || h.cfg.SessionCookieSecure {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host + "/auth/callback"
}

// ─── Role pages ───────────────────────────────────────────────────────

// Page returns the handler of a guarded role page.
func (h *PortalHandler) Page(role model.Role, page string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := middleware.GetSession(c).Principal
		response.Success(c, http.StatusOK, View{
			Page:       string(role) + "/" + page,
			User:       p,
			Navigation: navigation.Links(role),
			Data:       h.pageData(c, p, page),
		})
	}
}

// pageData loads what a page shows. Fetch failures are logged and the page
// renders with empty data.
func (h *PortalHandler) pageData(c *gin.Context, p *model.Principal, page string) interface{} {
	ctx := c.Request.Context()
	l := h.reqLog(c).With().Str("page", page).Str("uid", p.UID).Logger()

	load := func(v interface{}, err error) interface{} {
		if err != nil {
			l.Warn().Err(err).Msg("Page data unavailable")
			return nil
		}
		return v
	}

	switch page {
	case "profile", "edit-profile":
		return gin.H{"profile": p}
	case "class-chat":
		return gin.H{
			"class_id":              p.ClassID,
			"messages":              load(h.svc.Messages.List(ctx, p.ClassID, h.cfg.ChatHistoryLimit)),
			"poll_interval_seconds": int(h.cfg.ChatPollInterval.Seconds()),
			"stream":                "/ws/v1/classes/" + url.PathEscape(p.ClassID) + "/messages",
		}
	}

	switch p.Role {
	case model.RoleStudent:
		return h.studentData(ctx, p, page, load)
	case model.RoleTeacher:
		return h.teacherData(ctx, p, page, load)
	case model.RoleParent:
		return h.parentData(ctx, p, page, load)
	}
	return nil
}

type loader func(v interface{}, err error) interface{}

func (h *PortalHandler) studentData(ctx context.Context, p *model.Principal, page string, load loader) interface{} {
	switch page {
	case "dashboard":
		return load(h.svc.Students.Dashboard(ctx, p.UID))
	case "attendance":
		return gin.H{"attendance": load(h.svc.Students.Attendance(ctx, p.UID))}
	case "homework":
		return gin.H{"homework": load(h.svc.Students.Homework(ctx, p.UID))}
	}
	return nil
}

func (h *PortalHandler) teacherData(ctx context.Context, p *model.Principal, page string, load loader) interface{} {
	switch page {
	case "dashboard":
		return load(h.svc.Teachers.Dashboard(ctx, p.UID))
	case "attendance":
		return gin.H{
			"class_id": p.ClassID,
			"students": load(h.svc.Teachers.Roster(ctx, p.UID, p.ClassID)),
		}
	case "homework", "add-student":
		return gin.H{"class_id": p.ClassID}
	}
	return nil
}

func (h *PortalHandler) parentData(ctx context.Context, p *model.Principal, page string, load loader) interface{} {
	dash, err := h.svc.Parents.Dashboard(ctx, p.UID)
	if page == "dashboard" {
		return load(dash, err)
	}
	if err != nil {
		return load(nil, err)
	}

	switch page {
	case "attendance":
		return gin.H{"child": dash, "attendance": load(h.svc.Parents.ChildAttendance(ctx, p.UID, dash.ChildID))}
	case "homework":
		return gin.H{"child": dash, "homework": load(h.svc.Parents.ChildHomework(ctx, p.UID, dash.ChildID))}
	}
	return nil
}

// EditProfileSubmit godoc
// POST /{role}/edit-profile
// Saves the new display name and returns to the profile page.
func (h *PortalHandler) EditProfileSubmit(c *gin.Context) {
	p := middleware.GetSession(c).Principal

	var req model.UpdateProfileRequest
	if fields := validator.BindForm(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.svc.Users.UpdateName(c.Request.Context(), p.UID, req.Name); err != nil {
		failService(c, err)
		return
	}
	c.Redirect(http.StatusFound, p.Role.ProfilePath())
}
