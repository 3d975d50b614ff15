package guard

import (
	"testing"

	"github.com/learnage/portal/internal/model"
)

func principal(role model.Role) *model.Principal {
	return &model.Principal{UID: "u1", Name: "Test", Email: "t@example.com", Role: role}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name      string
		route     Route
		principal *model.Principal
		want      Outcome
	}{
		{
			name:      "unauthenticated goes to login",
			route:     Route{Path: "/student/dashboard", Required: model.RoleStudent},
			principal: nil,
			want:      Outcome{State: Unauthorized, Location: "/login"},
		},
		{
			name:      "matching role renders",
			route:     Route{Path: "/student/dashboard", Required: model.RoleStudent},
			principal: principal(model.RoleStudent),
			want:      Outcome{State: Authorized},
		},
		{
			name:      "teacher on student route goes to own dashboard",
			route:     Route{Path: "/student/dashboard", Required: model.RoleStudent},
			principal: principal(model.RoleTeacher),
			want:      Outcome{State: Unauthorized, Location: "/teacher/dashboard"},
		},
		{
			name:      "parent on teacher route goes to own dashboard",
			route:     Route{Path: "/teacher/attendance", Required: model.RoleTeacher},
			principal: principal(model.RoleParent),
			want:      Outcome{State: Unauthorized, Location: "/parent/dashboard"},
		},
		{
			name:      "no required role accepts any authenticated principal",
			route:     Route{Path: "/anything"},
			principal: principal(model.RoleParent),
			want:      Outcome{State: Authorized},
		},
		{
			name:      "unknown role is unauthenticated",
			route:     Route{Path: "/anything"},
			principal: principal(model.Role("admin")),
			want:      Outcome{State: Unauthorized, Location: "/login"},
		},
		{
			name:      "shared profile forwards to role profile",
			route:     Route{Path: "/profile", RoleRelative: true},
			principal: principal(model.RoleTeacher),
			want:      Outcome{State: Authorized, Location: "/teacher/profile"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.route, tt.principal)
			if got != tt.want {
				t.Fatalf("Evaluate() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRenderOnlyWhenRoleMatches(t *testing.T) {
	for _, required := range append([]model.Role{""}, model.Roles[:]...) {
		for _, actual := range model.Roles {
			out := Evaluate(Route{Path: "/x", Required: required}, principal(actual))
			want := required == "" || required == actual
			if out.Render() != want {
				t.Errorf("required=%q actual=%q: Render() = %v, want %v", required, actual, out.Render(), want)
			}
		}
	}
}

func TestGuardStartsResolving(t *testing.T) {
	g := New(Route{Path: "/student/dashboard", Required: model.RoleStudent})
	if got := g.Outcome(); got.State != Resolving || got.Render() {
		t.Fatalf("initial outcome = %+v, want resolving placeholder", got)
	}
}

func TestGuardCompleteIsTerminal(t *testing.T) {
	g := New(Route{Path: "/student/dashboard", Required: model.RoleStudent})

	first := g.Complete(nil)
	if first.State != Unauthorized || first.Location != LoginPath {
		t.Fatalf("first Complete() = %+v", first)
	}

	second := g.Complete(principal(model.RoleStudent))
	if second != first {
		t.Fatalf("second Complete() = %+v, want unchanged %+v", second, first)
	}
	if g.Outcome() != first {
		t.Fatalf("Outcome() changed after second Complete")
	}
}
