// Copyright (c) 2026 NutriSync. All rights reserved.

// Administration use cases: account listing, role management, deletion
// with cross-store cleanup, doctor assignment, and platform statistics.
package users

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nutrisync/nutrisync/internal/platform/apperr"
	"github.com/nutrisync/nutrisync/internal/platform/sec"
	"github.com/nutrisync/nutrisync/internal/platform/validate"
	"github.com/nutrisync/nutrisync/pkg/pagination"
)

// usageWindow is the look-back window for the API usage breakdown in [Stats].
const usageWindow = 24 * time.Hour

// ListUsers returns a filtered, paginated page of accounts plus the total
// count for pagination metadata.
func (service *Service) ListUsers(context context.Context, filter ListFilter, params pagination.Params) ([]*User, pagination.Meta, error) {
	filter.Limit = params.Limit
	filter.Offset = params.Offset()

	accounts, err := service.userRepository.List(context, filter)
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	total, err := service.userRepository.Count(context, filter)
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	return accounts, pagination.NewMeta(params.Page, params.Limit, total), nil
}

// ChangeRole updates the target account's role.
//
// # Returns
//   - The updated [*User].
//   - [apperr.ValidationError] (400) if the role is outside the closed set —
//     the stored role is left untouched.
//   - [apperr.NotFound] (404) if the target account does not exist.
//
// # Effect Timing
//
// Because the middleware re-resolves identity every request, the new role
// applies to the target's in-flight tokens immediately.
func (service *Service) ChangeRole(context context.Context, targetID, requestedRole string) (*User, error) {
	// ── 1. Role Validation (before any lookup) ────────────────────────────

	role := sec.Role(requestedRole)
	if !role.Valid() {
		return nil, validate.RequiredError("role", "Must be one of: patient, doctor, admin")
	}

	// ── 2. Target Lookup ──────────────────────────────────────────────────

	user, err := service.userRepository.FindByID(context, targetID)
	if err != nil {
		return nil, err
	}

	// ── 3. Persistence ────────────────────────────────────────────────────

	if err := service.userRepository.UpdateRole(context, user.ID, role); err != nil {
		return nil, err
	}

	user.Role = role
	return user, nil
}

// DeleteUser removes an account and everything it owns.
//
// # Cascade
//   - Reminders: removed by the FK ON DELETE CASCADE in the same statement.
//   - Food logs: purged from the document store afterwards; a purge failure
//     is logged but does not resurrect the already-deleted account.
//
// # Returns
//   - [apperr.ValidationError] (400) when an admin targets their own account.
//   - [apperr.NotFound] (404) if the target does not exist.
func (service *Service) DeleteUser(context context.Context, actorID, targetID string) error {
	// ── 1. Self-Deletion Guard ────────────────────────────────────────────

	if actorID == targetID {
		return apperr.ValidationError("You cannot delete your own account")
	}

	// ── 2. Relational Deletion (reminders cascade via FK) ─────────────────

	if err := service.userRepository.Delete(context, targetID); err != nil {
		return err
	}

	// ── 3. Document-Store Cleanup ─────────────────────────────────────────

	// The account row is already gone; a failed purge leaves orphaned food
	// logs, which is recoverable, so log instead of failing the request.
	if err := service.logPurger.PurgeUser(context, targetID); err != nil {
		service.logger.ErrorContext(context, "user_food_log_purge_failed",
			slog.String("user_id", targetID),
			slog.Any("error", err),
		)
	}

	return nil
}

// AssignPatient links a patient to a doctor.
//
// # Idempotence
//
// The relationship is a single assigneddoctor column on the patient row, so
// assigning the same pair twice is a no-op rather than a duplicate.
//
// # Returns
//   - [apperr.ValidationError] (400) if either party has the wrong role.
//   - [apperr.NotFound] (404) if either account does not exist.
func (service *Service) AssignPatient(context context.Context, doctorID, patientID string) error {
	// ── 1. Party Lookup & Role Checks ─────────────────────────────────────

	doctor, err := service.userRepository.FindByID(context, doctorID)
	if err != nil {
		return err
	}
	if doctor.Role != sec.RoleDoctor {
		return validate.RequiredError("doctorId", "Account is not a doctor")
	}

	patient, err := service.userRepository.FindByID(context, patientID)
	if err != nil {
		return err
	}
	if patient.Role != sec.RolePatient {
		return validate.RequiredError("patientId", "Account is not a patient")
	}

	// ── 2. Persistence ────────────────────────────────────────────────────

	return service.userRepository.AssignDoctor(context, patient.ID, doctor.ID)
}

// AdminStats is the platform statistics payload for the admin console.
type AdminStats struct {
	TotalUsers    int              `json:"total_users"`
	UsersByRole   map[string]int   `json:"users_by_role"`
	TotalFoodLogs int64            `json:"total_food_logs"`
	UsageLast24h  map[string]int64 `json:"usage_last_24h"`
}

// Stats aggregates platform statistics across both stores: account counts
// by role from PostgreSQL, food log totals and the API usage breakdown from
// the document store.
func (service *Service) Stats(context context.Context) (*AdminStats, error) {
	roleCounts, err := service.userRepository.CountByRole(context)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, count := range roleCounts {
		total += count
	}

	foodLogs, err := service.activity.TotalLogs(context)
	if err != nil {
		return nil, fmt.Errorf("users_service_stats_food_logs_failed: %w", err)
	}

	usage, err := service.activity.UsageSince(context, service.now().Add(-usageWindow))
	if err != nil {
		return nil, fmt.Errorf("users_service_stats_usage_failed: %w", err)
	}

	return &AdminStats{
		TotalUsers:    total,
		UsersByRole:   roleCounts,
		TotalFoodLogs: foodLogs,
		UsageLast24h:  usage,
	}, nil
}
