package main

import (
	"reflect"
	"testing"

	"github.com/classio/classio/core/user"
)

func TestReachableRoles(t *testing.T) {
	tests := []struct {
		name string
		role string
		want []string
	}{
		{"superadmin reaches everyone", user.RoleSuperAdmin, []string{"Super Admin", "Big Admin", "Admin", "Teacher", "Parent", "Student"}},
		{"teacher reaches peers and below", user.RoleTeacher, []string{"Teacher", "Parent", "Student"}},
		{"student reaches students only", user.RoleStudent, []string{"Student"}},
		{"unknown role reaches none of the listed roles", "visitor", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := reachableRoles(user.User{Role: tt.role}); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("reachableRoles() = %v; want %v", got, tt.want)
			}
		})
	}
}
