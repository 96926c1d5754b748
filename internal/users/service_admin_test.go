// Copyright (c) 2026 NutriSync. All rights reserved.

package users

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutrisync/nutrisync/internal/platform/apperr"
	"github.com/nutrisync/nutrisync/internal/platform/sec"
	"github.com/nutrisync/nutrisync/pkg/pagination"
)

func TestChangeRole(t *testing.T) {
	repo := newFakeUserRepository(&User{ID: "u-1", Role: sec.RolePatient})
	service, _ := newTestUserService(t, repo)

	user, err := service.ChangeRole(context.Background(), "u-1", "doctor")
	require.NoError(t, err)

	assert.Equal(t, sec.RoleDoctor, user.Role)
	assert.Equal(t, []string{"u-1"}, repo.roleUpdates)
}

func TestChangeRoleInvalidRole(t *testing.T) {
	repo := newFakeUserRepository(&User{ID: "u-1", Role: sec.RolePatient})
	service, _ := newTestUserService(t, repo)

	_, err := service.ChangeRole(context.Background(), "u-1", "superuser")
	require.Error(t, err)

	var appErr *apperr.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)

	// The stored role must be left untouched.
	assert.Empty(t, repo.roleUpdates)
	assert.Equal(t, sec.RolePatient, repo.users["u-1"].Role)
}

func TestChangeRoleMissingTarget(t *testing.T) {
	service, _ := newTestUserService(t, newFakeUserRepository())

	_, err := service.ChangeRole(context.Background(), "ghost", "doctor")
	require.Error(t, err)

	var appErr *apperr.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestDeleteUserPurgesFoodLogs(t *testing.T) {
	repo := newFakeUserRepository(
		&User{ID: "admin-1", Role: sec.RoleAdmin},
		&User{ID: "u-1", Role: sec.RolePatient},
	)
	service, purger := newTestUserService(t, repo)

	err := service.DeleteUser(context.Background(), "admin-1", "u-1")
	require.NoError(t, err)

	_, ok := repo.users["u-1"]
	assert.False(t, ok)
	assert.Equal(t, []string{"u-1"}, purger.purged)
}

func TestDeleteUserSelfGuard(t *testing.T) {
	repo := newFakeUserRepository(&User{ID: "admin-1", Role: sec.RoleAdmin})
	service, purger := newTestUserService(t, repo)

	err := service.DeleteUser(context.Background(), "admin-1", "admin-1")
	require.Error(t, err)

	var appErr *apperr.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)

	// The account survives and no purge runs.
	_, ok := repo.users["admin-1"]
	assert.True(t, ok)
	assert.Empty(t, purger.purged)
}

func TestDeleteUserPurgeFailureIsNotFatal(t *testing.T) {
	repo := newFakeUserRepository(
		&User{ID: "admin-1", Role: sec.RoleAdmin},
		&User{ID: "u-1", Role: sec.RolePatient},
	)
	service, purger := newTestUserService(t, repo)
	purger.err = errors.New("mongo down")

	// The relational delete already happened; the purge failure is logged.
	err := service.DeleteUser(context.Background(), "admin-1", "u-1")
	assert.NoError(t, err)
}

func TestAssignPatient(t *testing.T) {
	repo := newFakeUserRepository(
		&User{ID: "doc-1", Role: sec.RoleDoctor},
		&User{ID: "pat-1", Role: sec.RolePatient},
	)
	service, _ := newTestUserService(t, repo)

	err := service.AssignPatient(context.Background(), "doc-1", "pat-1")
	require.NoError(t, err)

	require.NotNil(t, repo.users["pat-1"].AssignedDoctor)
	assert.Equal(t, "doc-1", *repo.users["pat-1"].AssignedDoctor)

	// Assigning the same pair again is a no-op, not an error.
	err = service.AssignPatient(context.Background(), "doc-1", "pat-1")
	assert.NoError(t, err)
}

func TestAssignPatientWrongRoles(t *testing.T) {
	repo := newFakeUserRepository(
		&User{ID: "doc-1", Role: sec.RoleDoctor},
		&User{ID: "pat-1", Role: sec.RolePatient},
	)
	service, _ := newTestUserService(t, repo)

	tests := []struct {
		name      string
		doctorID  string
		patientID string
	}{
		{name: "doctor is a patient", doctorID: "pat-1", patientID: "pat-1"},
		{name: "patient is a doctor", doctorID: "doc-1", patientID: "doc-1"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := service.AssignPatient(context.Background(), test.doctorID, test.patientID)
			require.Error(t, err)

			var appErr *apperr.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
		})
	}
}

func TestListUsersFiltersByRole(t *testing.T) {
	repo := newFakeUserRepository(
		&User{ID: "doc-1", Role: sec.RoleDoctor},
		&User{ID: "pat-1", Role: sec.RolePatient},
		&User{ID: "pat-2", Role: sec.RolePatient},
	)
	service, _ := newTestUserService(t, repo)

	accounts, meta, err := service.ListUsers(context.Background(), ListFilter{Role: "patient"}, pagination.Params{Page: 1, Limit: 10})
	require.NoError(t, err)

	assert.Len(t, accounts, 2)
	assert.Equal(t, 2, meta.Total)
}

func TestStats(t *testing.T) {
	repo := newFakeUserRepository(
		&User{ID: "doc-1", Role: sec.RoleDoctor},
		&User{ID: "pat-1", Role: sec.RolePatient},
		&User{ID: "admin-1", Role: sec.RoleAdmin},
	)
	purger := &stubPurger{}
	activity := &stubActivity{
		totalLogs: 42,
		usage:     map[string]int64{"vision": 7},
	}
	service := NewService(repo, stubTokenProvider{}, purger, &stubLogSource{}, activity, discardLogger())

	stats, err := service.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalUsers)
	assert.Equal(t, 1, stats.UsersByRole["doctor"])
	assert.Equal(t, int64(42), stats.TotalFoodLogs)
	assert.Equal(t, int64(7), stats.UsageLast24h["vision"])
}
