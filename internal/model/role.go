package model

// Role is the application role resolved for a principal.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleParent  Role = "parent"
)

// Role indexes for tables that must cover every role.
const (
	IndexStudent = iota
	IndexTeacher
	IndexParent
	RoleCount
)

// Roles lists every role, positioned at its index.
var Roles = [RoleCount]Role{
	IndexStudent: RoleStudent,
	IndexTeacher: RoleTeacher,
	IndexParent:  RoleParent,
}

// ParseRole converts a raw string into a known Role.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Index() >= 0
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r.Index() >= 0
}

// Index returns the role's position in Roles, or -1 for unknown roles.
func (r Role) Index() int {
	for i, known := range Roles {
		if known == r {
			return i
		}
	}
	return -1
}

// DashboardPath is the landing page of the role's own portal surface.
func (r Role) DashboardPath() string {
	return "/" + string(r) + "/dashboard"
}

// ProfilePath is the role-prefixed profile page.
func (r Role) ProfilePath() string {
	return "/" + string(r) + "/profile"
}
