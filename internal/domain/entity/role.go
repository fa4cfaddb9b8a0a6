// Package entity contains the core business objects of the project.
package entity

import "slices"

// Role represents the type of role an account can carry in the system.
type Role string

const (
	// RolePatient indicates a regular patient account. It is the default role.
	RolePatient Role = "patient"
	// RoleDoctor indicates a doctor account.
	RoleDoctor Role = "doctor"
	// RoleNurse indicates a nurse account.
	RoleNurse Role = "nurse"
	// RoleAdmin indicates an administrative account.
	RoleAdmin Role = "admin"
)

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is a valid value.
func (r Role) IsValid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleNurse, RoleAdmin:
		return true
	default:
		return false
	}
}

// Roles is a slice of Role for convenience.
type Roles []Role

// DefaultRoles returns the role set assigned when registration supplies none.
func DefaultRoles() Roles {
	return Roles{RolePatient}
}

// Contains checks if the roles slice contains a specific role.
func (rs Roles) Contains(role Role) bool {
	return slices.Contains(rs, role)
}

// ToStrings converts Roles to []string for JWT compatibility.
func (rs Roles) ToStrings() []string {
	result := make([]string, len(rs))
	for i, r := range rs {
		result[i] = r.String()
	}

	return result
}

// RolesFromStrings converts []string to Roles, filtering out invalid role strings.
func RolesFromStrings(ss []string) Roles {
	result := make(Roles, 0, len(ss))
	for _, s := range ss {
		role := Role(s)
		if role.IsValid() {
			result = append(result, role)
		}
	}

	return result
}
