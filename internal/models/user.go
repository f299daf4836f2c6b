package models

import "strings"

// UserRole represents the roles the school backend assigns at login.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleTeacher UserRole = "TEACHER"
	RoleStudent UserRole = "STUDENT"
)

// ParseRole normalises the backend's role spelling. Unknown values map to STUDENT, the least privileged role.
func ParseRole(raw string) UserRole {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "ADMIN", "ADMINISTRATOR", "PRINCIPAL":
		return RoleAdmin
	case "TEACHER", "STAFF", "FACULTY":
		return RoleTeacher
	default:
		return RoleStudent
	}
}

// IsStaff reports whether the role may act on other students' records.
func (r UserRole) IsStaff() bool {
	return r == RoleAdmin || r == RoleTeacher
}
