// Package entity contains the core business objects of the project.
package entity

// Status represents the lifecycle state of an account. The service itself only
// ever creates active accounts; the other states are set by external tooling.
type Status string

const (
	// StatusActive indicates a normal, usable account.
	StatusActive Status = "active"
	// StatusInactive indicates an account that has been deactivated.
	StatusInactive Status = "inactive"
	// StatusSuspended indicates an account that has been suspended.
	StatusSuspended Status = "suspended"
)

// String returns the string representation of the Status.
func (s Status) String() string {
	return string(s)
}

// IsValid checks if the Status is a valid value.
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	default:
		return false
	}
}
