// Copyright (c) 2026 NutriSync. All rights reserved.

package users

import (
	"context"
	"time"

	"github.com/nutrisync/nutrisync/internal/platform/sec"
)

// ListFilter narrows the account listing for the admin console.
type ListFilter struct {
	// Role filters to a single role when non-empty.
	Role string
	// Search matches name or email, case-insensitive substring.
	Search string
	// Limit and Offset implement page-based navigation.
	Limit  int
	Offset int
}

// UserRepository defines the data access contract for user accounts.
//
// # Review Process
//
// This interface is placed in a separate file from user.go so entity changes
// and storage-contract changes can be reviewed independently by the team.
//
// # Implementations
//
// The canonical implementation for NutriSync is PostgreSQL (store_postgres.go).
type UserRepository interface {
	// FindByID returns the account with the given ID.
	//
	// Returns [apperr.NotFound] if the account does not exist.
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByEmail returns the account with the given email (lowercase match).
	//
	// Returns [apperr.NotFound] if no user is registered with this email.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// Create persists a brand-new user account to the storage.
	//
	// Returns [apperr.Conflict] if the email unique constraint fails.
	Create(ctx context.Context, user *User) error

	// UpdateRole replaces only the account's role.
	// This is separate from a general update to keep privilege changes
	// auditable at the storage layer.
	UpdateRole(ctx context.Context, id string, role sec.Role) error

	// UpdateLastLogin stamps the last successful authentication time.
	// Called only after the password check passes.
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error

	// AssignDoctor sets the patient's assigned doctor. Re-assigning the
	// same doctor is a no-op at the row level (idempotent).
	AssignDoctor(ctx context.Context, patientID, doctorID string) error

	// Delete removes the account row. Reminder rows cascade via the
	// foreign key; document-store data is purged by the service layer.
	Delete(ctx context.Context, id string) error

	// List returns accounts matching the filter in creation order.
	List(ctx context.Context, filter ListFilter) ([]*User, error)

	// Count returns the total number of accounts matching the filter,
	// ignoring Limit/Offset.
	Count(ctx context.Context, filter ListFilter) (int, error)

	// ListByAssignedDoctor returns every patient assigned to the doctor.
	ListByAssignedDoctor(ctx context.Context, doctorID string) ([]*User, error)

	// CountByRole returns account counts keyed by role string.
	CountByRole(ctx context.Context) (map[string]int, error)
}
