// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the sole persisted entity of the service: one account per person.
// PasswordHash and RefreshToken are sensitive fields; repository reads leave
// them empty unless the caller explicitly opts in.
type User struct {
	ID           uuid.UUID  // The unique identifier for the account, assigned at creation.
	Email        string     // Login identifier, lowercased at write time, globally unique.
	PasswordHash string     // bcrypt hash of the password. Empty on default reads.
	FirstName    string     // Display name, no uniqueness constraint.
	LastName     string     // Display name, no uniqueness constraint.
	Roles        Roles      // Non-empty set of role tags, defaults to RolePatient.
	Status       Status     // Account status; only active accounts may refresh a session.
	RefreshToken string     // The single currently valid refresh token, or empty. Empty on default reads.
	LastLoginAt  *time.Time // Updated on every successful login or registration.
	CreatedAt    time.Time  // Timestamp of when this account was created.
	UpdatedAt    time.Time  // Timestamp of the last modification to this account.
}

// HasSession reports whether the account currently holds a live refresh token.
func (u *User) HasSession() bool {
	return u.RefreshToken != ""
}
