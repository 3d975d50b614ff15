package navigation

import (
	"strings"
	"testing"

	"github.com/learnage/portal/internal/model"
)

func TestEveryRoleHasDashboardFirst(t *testing.T) {
	for _, role := range model.Roles {
		links := Links(role)
		if len(links) == 0 {
			t.Fatalf("role %q has no menu", role)
		}
		if links[0].Path != role.DashboardPath() {
			t.Errorf("role %q first link = %q, want %q", role, links[0].Path, role.DashboardPath())
		}
		for _, l := range links {
			if !strings.HasPrefix(l.Path, "/"+string(role)+"/") {
				t.Errorf("role %q link %q escapes its prefix", role, l.Path)
			}
		}
	}
}

func TestLinksUnknownRole(t *testing.T) {
	if got := Links(model.Role("admin")); got != nil {
		t.Fatalf("Links(admin) = %v, want nil", got)
	}
	if got := Pages(model.Role("admin")); len(got) != 0 {
		t.Fatalf("Pages(admin) = %v, want empty", got)
	}
}

func TestLinksReturnsCopy(t *testing.T) {
	links := Links(model.RoleStudent)
	links[0].Label = "changed"
	if Links(model.RoleStudent)[0].Label != "Dashboard" {
		t.Fatal("Links exposed the shared menu")
	}
}

func TestParentHasNoChat(t *testing.T) {
	for _, p := range Pages(model.RoleParent) {
		if p == "class-chat" {
			t.Fatal("parent menu includes class chat")
		}
	}
}
