package user

import (
	"strings"
)

// Roles
const (
	RoleSuperAdmin = "superadmin"
	RoleBigAdmin   = "bigadmin"
	RoleAdmin      = "admin"
	RoleTeacher    = "teacher"
	RoleParent     = "parent"
	RoleStudent    = "student"
)

// UnknownRoleLevel ranks below every known role. A user with an unmapped or
// unset role may be contacted by anyone but may only contact other unknowns.
const UnknownRoleLevel = 999

var (
	// lower level = higher authority
	roleLevels = map[string]int{
		RoleSuperAdmin: 0,
		RoleBigAdmin:   1,
		RoleAdmin:      2,
		RoleTeacher:    3,
		RoleParent:     4,
		RoleStudent:    5,
	}

	Roles = []Role{
		{Name: "Super Admin", Value: RoleSuperAdmin},
		{Name: "Big Admin", Value: RoleBigAdmin},
		{Name: "Admin", Value: RoleAdmin},
		{Name: "Teacher", Value: RoleTeacher},
		{Name: "Parent", Value: RoleParent},
		{Name: "Student", Value: RoleStudent},
	}
)

// HierarchyLevel returns the authority rank of a role name, matched
// case-insensitively. Unknown and empty roles yield UnknownRoleLevel;
// the lookup is total and never fails.
func HierarchyLevel(role string) int {
	if lvl, ok := roleLevels[strings.ToLower(strings.TrimSpace(role))]; ok {
		return lvl
	}
	return UnknownRoleLevel
}

// CanInitiate reports whether a user holding the initiator role may start a
// new conversation with a user holding the target role. Equal or higher
// authority may always initiate; strictly lower authority never may.
func CanInitiate(initiator, target string) bool {
	return HierarchyLevel(initiator) <= HierarchyLevel(target)
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// User is the app-side view of an account: id, display info and the single
// role assigned at authentication time.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (u User) hasRole(role string) bool {
	return strings.EqualFold(u.Role, role)
}

func (u User) IsAdmin() bool {
	return u.hasRole(RoleSuperAdmin) || u.hasRole(RoleBigAdmin) || u.hasRole(RoleAdmin)
}

func (u User) IsTeacher() bool {
	return u.hasRole(RoleTeacher)
}

func (u User) IsParent() bool {
	return u.hasRole(RoleParent)
}

func (u User) IsStudent() bool {
	return u.hasRole(RoleStudent)
}
