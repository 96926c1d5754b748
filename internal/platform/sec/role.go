// Copyright (c) 2026 NutriSync. All rights reserved.

package sec

// # User Roles

// Role represents the authorization level granted to an account.
//
// The set is closed and flat: authorization is a membership test against an
// allowed set, never a hierarchy comparison. A doctor is not "more" than a
// patient; they simply have access to different route groups.
type Role string

const (
	// Default role: logs meals, owns reminders
	RolePatient Role = "patient"

	// Can view logs and summaries of assigned patients
	RoleDoctor Role = "doctor"

	// Full account administration; never self-assignable at registration
	RoleAdmin Role = "admin"
)

// Valid reports whether the role belongs to the closed set.
func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleAdmin:
		return true
	default:
		return false
	}
}

// In reports whether the role is a member of the allowed set.
func (r Role) In(allowed ...Role) bool {
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}

// RegistrationRole maps a requested role to the one actually granted at
// registration. Only patient and doctor are self-assignable; anything else
// (including admin and unknown values) is forced to patient.
func RegistrationRole(requested string) Role {
	role := Role(requested)
	if role == RolePatient || role == RoleDoctor {
		return role
	}
	return RolePatient
}
