// Package navigation holds the per-role portal menu.
package navigation

import "github.com/learnage/portal/internal/model"

// Link is one menu entry.
type Link struct {
	Label string `json:"label"`
	Path  string `json:"path"`
	// Page is the path below the role prefix, used to register the route.
	Page string `json:"-"`
}

func link(role model.Role, label, page string) Link {
	return Link{Label: label, Path: "/" + string(role) + "/" + page, Page: page}
}

// The array length forces every role to have a menu.
var menus = [model.RoleCount][]Link{
	model.IndexStudent: {
		link(model.RoleStudent, "Dashboard", "dashboard"),
		link(model.RoleStudent, "Attendance", "attendance"),
		link(model.RoleStudent, "Homework", "homework"),
		link(model.RoleStudent, "Class Chat", "class-chat"),
		link(model.RoleStudent, "Profile", "profile"),
	},
	model.IndexTeacher: {
		link(model.RoleTeacher, "Dashboard", "dashboard"),
		link(model.RoleTeacher, "Mark Attendance", "attendance"),
		link(model.RoleTeacher, "Assign Homework", "homework"),
		link(model.RoleTeacher, "Add Student", "add-student"),
		link(model.RoleTeacher, "Class Chat", "class-chat"),
		link(model.RoleTeacher, "Profile", "profile"),
	},
	model.IndexParent: {
		link(model.RoleParent, "Dashboard", "dashboard"),
		link(model.RoleParent, "Attendance", "attendance"),
		link(model.RoleParent, "Homework", "homework"),
		link(model.RoleParent, "Profile", "profile"),
	},
}

// Links returns the menu of a role, or nil for an unknown role.
func Links(role model.Role) []Link {
	i := role.Index()
	if i < 0 {
		return nil
	}
	out := make([]Link, len(menus[i]))
	copy(out, menus[i])
	return out
}

// Pages returns every page of a role's portal surface, including pages not in the menu.
func Pages(role model.Role) []string {
	pages := make([]string, 0, len(menus[0])+1)
	for _, l := range Links(role) {
		pages = append(pages, l.Page)
	}
	if len(pages) > 0 {
		pages = append(pages, "edit-profile")
	}
	return pages
}
