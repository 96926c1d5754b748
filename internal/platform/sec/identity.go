// Copyright (c) 2026 NutriSync. All rights reserved.

package sec

import "time"

// Identity is the public projection of an account: the shape attached to the
// request context by the access-control middleware and returned by profile
// endpoints. It never carries the password hash.
//
// # Freshness
//
// An Identity is resolved from the credential store on every authenticated
// request — it reflects the account's CURRENT role, not the role snapshot in
// the token. Role changes and deletions therefore take effect immediately.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`

	// AssignedDoctor links a patient to their doctor (nil for doctors/admins
	// and for unassigned patients).
	AssignedDoctor *string `json:"assigned_doctor,omitempty"`

	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
