package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/learnage/portal/internal/config"
	"github.com/learnage/portal/internal/handler"
	"github.com/learnage/portal/internal/identity"
	"github.com/learnage/portal/internal/model"
	"github.com/learnage/portal/internal/navigation"
	"github.com/learnage/portal/internal/session"
	"github.com/rs/zerolog"
)

type tokenTable map[string]*model.Principal

func (t tokenTable) VerifyToken(_ context.Context, token string) (*model.Principal, error) {
	p, ok := t[token]
	if !ok {
		return nil, identity.ErrInvalidToken
	}
	return p, nil
}

func testRouter(t *testing.T, provider string) *gin.Engine {
	t.Helper()

	cfg := &config.Config{
		GinMode:           gin.TestMode,
		IdentityProvider:  provider,
		SessionCookieName: "learnage_session",
	}
	verifier := tokenTable{
		"student-token": {UID: "S1", Name: "Asha", Role: model.RoleStudent, ClassID: "10A"},
		"teacher-token": {UID: "T1", Name: "Ms. Rao", Role: model.RoleTeacher, ClassID: "10A"},
		"parent-token":  {UID: "P1", Name: "Mr. Iyer", Role: model.RoleParent},
	}
	log := zerolog.Nop()

	handlers := &Handlers{
		Auth:    &handler.AuthHandler{},
		Student: &handler.StudentHandler{},
		Teacher: &handler.TeacherHandler{},
		Parent:  &handler.ParentHandler{},
		Message: &handler.MessageHandler{},
		Portal:  handler.NewPortalHandler(cfg, handler.PortalServices{}, nil, log),
		WS:      &handler.WSHandler{},
		Events:  &handler.EventsHandler{},
		System: handler.NewSystemHandler(map[string]handler.Pinger{
			"postgres": handler.PingFunc(func(context.Context) error { return nil }),
		}, log),
	}

	return SetupRouter(cfg, Deps{
		Verifier: verifier,
		Resolver: session.NewResolver(verifier, log),
		Log:      log,
	}, handlers)
}

func get(r http.Handler, path, cookie string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: "learnage_session", Value: cookie})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPortalRoutesCoverEveryMenuLink(t *testing.T) {
	registered := make(map[string]PortalRoute)
	for _, r := range PortalRoutes() {
		if _, dup := registered[r.Guard.Path]; dup {
			t.Fatalf("duplicate portal route %s", r.Guard.Path)
		}
		registered[r.Guard.Path] = r
	}

	for _, role := range model.Roles {
		for _, l := range navigation.Links(role) {
			r, ok := registered[l.Path]
			if !ok {
				t.Errorf("menu link %s has no route", l.Path)
				continue
			}
			if r.Guard.Required != role {
				t.Errorf("%s requires %q, want %q", l.Path, r.Guard.Required, role)
			}
		}
	}

	for _, shared := range []string{"/profile", "/edit-profile"} {
		if r, ok := registered[shared]; !ok || !r.Guard.RoleRelative {
			t.Errorf("%s should be a role-relative route", shared)
		}
	}
}

func TestPortalRedirects(t *testing.T) {
	r := testRouter(t, config.IdentityProviderLocal)

	tests := []struct {
		name     string
		path     string
		cookie   string
		location string
	}{
		{"anonymous to login", "/student/dashboard", "", "/login"},
		{"forged cookie to login", "/teacher/attendance", "forged", "/login"},
		{"wrong role to own dashboard", "/student/homework", "teacher-token", "/teacher/dashboard"},
		{"parent kept off chat", "/student/class-chat", "parent-token", "/parent/dashboard"},
		{"shared profile", "/profile", "parent-token", "/parent/profile"},
		{"shared edit profile", "/edit-profile", "student-token", "/student/edit-profile"},
		{"signed in visitor skips login", "/login", "teacher-token", "/teacher/dashboard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, tt.path, tt.cookie)
			if w.Code != http.StatusFound {
				t.Fatalf("status = %d, want 302", w.Code)
			}
			if got := w.Header().Get("Location"); got != tt.location {
				t.Errorf("Location = %q, want %q", got, tt.location)
			}
		})
	}
}

func TestPublicPages(t *testing.T) {
	r := testRouter(t, config.IdentityProviderLocal)

	for _, path := range []string{"/", "/login", "/healthz"} {
		if w := get(r, path, ""); w.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, w.Code)
		}
	}
	if w := get(r, "/nowhere", ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown path = %d, want 404", w.Code)
	}
}

func TestAPIRequiresIdentity(t *testing.T) {
	r := testRouter(t, config.IdentityProviderLocal)

	if w := get(r, "/api/student/dashboard/S1", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("no token = %d, want 401", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/teacher/dashboard/T1", nil)
	req.Header.Set("Authorization", "Bearer student-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("student on teacher API = %d, want 403", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/student/dashboard/S2", nil)
	req.Header.Set("Authorization", "Bearer student-token")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("other student's dashboard = %d, want 403", w.Code)
	}

	if w := get(r, "/api/messages/class/10A?token=parent-token", ""); w.Code != http.StatusForbidden {
		t.Errorf("parent on messages = %d, want 403", w.Code)
	}
}

func TestLocalLoginOnlyForLocalProvider(t *testing.T) {
	r := testRouter(t, config.IdentityProviderCasdoor)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("login with external provider = %d, want 404", w.Code)
	}
}
