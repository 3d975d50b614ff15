package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/learnage/portal/internal/config"
	"github.com/learnage/portal/internal/guard"
	"github.com/learnage/portal/internal/handler"
	"github.com/learnage/portal/internal/logger"
	"github.com/learnage/portal/internal/middleware"
	"github.com/learnage/portal/internal/model"
	"github.com/learnage/portal/internal/navigation"
	"github.com/learnage/portal/internal/response"
	"github.com/learnage/portal/internal/session"
	"github.com/rs/zerolog"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth    *handler.AuthHandler
	Student *handler.StudentHandler
	Teacher *handler.TeacherHandler
	Parent  *handler.ParentHandler
	Message *handler.MessageHandler
	Portal  *handler.PortalHandler
	WS      *handler.WSHandler
	Events  *handler.EventsHandler
	System  *handler.SystemHandler
}

// Deps are the shared components the middlewares need.
type Deps struct {
	Verifier middleware.TokenVerifier
	Resolver *session.Resolver
	// LoginLimiter is optional. Nil disables login rate limiting.
	LoginLimiter *middleware.RateLimiter
	Log          zerolog.Logger
}

// PortalRoute is one guarded portal page.
type PortalRoute struct {
	Guard guard.Route
	Role  model.Role
	Page  string
}

// PortalRoutes is the declarative table of every guarded portal page.
// Role pages come from the role menus; the shared profile pages forward
// to the visitor's own role prefix.
func PortalRoutes() []PortalRoute {
	var routes []PortalRoute
	for _, role := range model.Roles {
		for _, page := range navigation.Pages(role) {
			routes = append(routes, PortalRoute{
				Guard: guard.Route{Path: "/" + string(role) + "/" + page, Required: role},
				Role:  role,
				Page:  page,
			})
		}
	}
	for _, shared := range []string{"/profile", "/edit-profile"} {
		routes = append(routes, PortalRoute{Guard: guard.Route{Path: shared, RoleRelative: true}})
	}
	return routes
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(cfg *config.Config, deps Deps, handlers *Handlers) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition", "Retry-After"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware(deps.Log))
	router.Use(accessLog(deps.Log))
	router.Use(middleware.Brotli())
	router.Use(middleware.NoStore())

	router.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	})

	router.GET("/healthz", handlers.System.Health)

	local := cfg.IdentityProvider == config.IdentityProviderLocal
	loginLimit := func(c *gin.Context) { c.Next() }
	if deps.LoginLimiter != nil {
		loginLimit = deps.LoginLimiter.Middleware()
	}

	// ─── 1. Auth Group ─────────────────────────────────────────────────
	auth := router.Group("/api/auth")
	{
		auth.POST("/verify-token", handlers.Auth.VerifyToken)
		auth.POST("/register", handlers.Auth.Register)
		if local {
			auth.POST("/login", loginLimit, handlers.Auth.Login)
			auth.POST("/logout", middleware.RequireIdentity(deps.Verifier), handlers.Auth.Logout)
		}
		auth.GET("/user/:uid",
			middleware.RequireIdentity(deps.Verifier),
			middleware.RequireSelf("uid"),
			handlers.Auth.GetUser,
		)
	}

	api := router.Group("/api")
	api.Use(middleware.RequireIdentity(deps.Verifier))

	api.PUT("/profile/:uid", middleware.RequireSelf("uid"), handlers.Auth.UpdateProfile)

	// ─── 2. Student Group ──────────────────────────────────────────────
	studentAPI := api.Group("/student")
	studentAPI.Use(middleware.RequireRole(model.RoleStudent))
	{
		studentAPI.GET("/dashboard/:id", middleware.RequireSelf("id"), handlers.Student.GetDashboard)
		studentAPI.GET("/attendance/:id", middleware.RequireSelf("id"), handlers.Student.GetAttendance)
		studentAPI.GET("/homework/:id", middleware.RequireSelf("id"), handlers.Student.GetHomework)
		studentAPI.PUT("/homework/:homework_id/submit", handlers.Student.SubmitHomework)
	}

	// ─── 3. Teacher Group ──────────────────────────────────────────────
	teacherAPI := api.Group("/teacher")
	teacherAPI.Use(middleware.RequireRole(model.RoleTeacher))
	{
		teacherAPI.GET("/dashboard/:id", middleware.RequireSelf("id"), handlers.Teacher.GetDashboard)
		teacherAPI.GET("/students/:class_id", handlers.Teacher.ListStudents)
		teacherAPI.POST("/attendance", handlers.Teacher.MarkAttendance)
		teacherAPI.GET("/attendance/export", handlers.Teacher.ExportAttendance)
		teacherAPI.POST("/homework", handlers.Teacher.AssignHomework)
		teacherAPI.POST("/add-student", handlers.Teacher.AddStudent)
	}

	// ─── 4. Parent Group ───────────────────────────────────────────────
	parentAPI := api.Group("/parent")
	parentAPI.Use(middleware.RequireRole(model.RoleParent))
	{
		parentAPI.GET("/dashboard/:id", middleware.RequireSelf("id"), handlers.Parent.GetDashboard)
		parentAPI.GET("/attendance/:child_id", handlers.Parent.GetChildAttendance)
		parentAPI.GET("/homework/:child_id", handlers.Parent.GetChildHomework)
	}

	// ─── 5. Messages Group ─────────────────────────────────────────────
	messagesAPI := api.Group("/messages")
	messagesAPI.Use(middleware.RequireRole(model.RoleStudent, model.RoleTeacher))
	{
		messagesAPI.GET("/class/:class_id", handlers.Message.ListMessages)
		messagesAPI.GET("/class/:class_id/events", handlers.Events.ClassMessagesSSE)
		messagesAPI.POST("/send", handlers.Message.SendMessage)
		messagesAPI.DELETE("/:id", handlers.Message.DeleteMessage)
	}

	// ─── 6. WebSocket Group ────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(
		middleware.RequireIdentity(deps.Verifier),
		middleware.RequireRole(model.RoleStudent, model.RoleTeacher),
	)
	{
		ws.GET("/classes/:class_id/messages", handlers.WS.ClassMessagesStream)
	}

	// ─── 7. Portal ─────────────────────────────────────────────────────
	portal := router.Group("/")
	portal.Use(middleware.PortalSession(deps.Resolver, cfg.SessionCookieName))
	{
		portal.GET("/", handlers.Portal.Landing)
		portal.GET("/login", handlers.Portal.LoginPage)
		if local {
			portal.POST("/login", loginLimit, handlers.Portal.LoginSubmit)
		}
		portal.GET("/auth/callback", handlers.Portal.Callback)
		portal.GET("/logout", handlers.Portal.Logout)
		portal.POST("/logout", handlers.Portal.Logout)

		for _, r := range PortalRoutes() {
			if r.Guard.RoleRelative {
				portal.GET(r.Guard.Path, middleware.Guard(r.Guard))
				continue
			}
			portal.GET(r.Guard.Path, middleware.Guard(r.Guard), handlers.Portal.Page(r.Role, r.Page))
			if r.Page == "edit-profile" {
				portal.POST(r.Guard.Path, middleware.Guard(r.Guard), handlers.Portal.EditProfileSubmit)
			}
		}
	}

	return router
}

// accessLog writes one line per request through the request-scoped logger.
func accessLog(base zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		l := logger.FromContext(c.Request.Context(), base)
		ev := l.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			ev = l.Error()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("Request")
	}
}
