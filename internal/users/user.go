// Copyright (c) 2026 NutriSync. All rights reserved.

// Package users implements identity, access control, and account
// administration for the NutriSync platform.
//
// # Architecture
//
// The entity in this file represents the "Truth" of the system.
// It has no dependencies on outer layers (like databases, APIs, or libraries)
// beyond the shared security types. This makes the core logic highly testable
// and resilient to technology changes.
package users

import (
	"time"

	"github.com/nutrisync/nutrisync/internal/platform/sec"
)

// User represents a registered account on the NutriSync platform.
//
// # Rules
//   - Email is unique (stored lowercase) and validated.
//   - PasswordHash is generated via Bcrypt exclusively by the Service.
//   - Role is one of the closed set {patient, doctor, admin}.
//   - AssignedDoctor is the single source of truth for the doctor/patient
//     relationship: a doctor's patient list is the inverse query over this
//     column, so assignment is idempotent by construction.
type User struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	PasswordHash   string     `json:"-"` // Explicitly omitted from JSON for security.
	Role           sec.Role   `json:"role"`
	AssignedDoctor *string    `json:"assigned_doctor,omitempty"`
	LastLogin      *time.Time `json:"last_login,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Identity returns the public projection of the account that middleware
// attaches to the request context.
func (user *User) Identity() *sec.Identity {
	return &sec.Identity{
		ID:             user.ID,
		Name:           user.Name,
		Email:          user.Email,
		Role:           user.Role,
		AssignedDoctor: user.AssignedDoctor,
		LastLogin:      user.LastLogin,
		CreatedAt:      user.CreatedAt,
	}
}
