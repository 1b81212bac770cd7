// Package authroles maps identity-provider groups onto application roles.
package authroles

import (
	domainauth "github.com/taskdog/taskdog/internal/domain/auth"
)

// StaticRoleMapper grants roles by plain group membership. Admin membership
// wins over user membership; anything else is a guest.
type StaticRoleMapper struct {
	AdminGroup string
	UserGroup  string
}

func (m StaticRoleMapper) Map(groups []string) domainauth.Role {
	for _, g := range groups {
		if m.AdminGroup != "" && g == m.AdminGroup {
			return domainauth.RoleAdmin
		}
	}
	for _, g := range groups {
		if m.UserGroup != "" && g == m.UserGroup {
			return domainauth.RoleUser
		}
	}
	return domainauth.RoleGuest
}
