// Copyright (c) 2026 NutriSync. All rights reserved.

package users

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutrisync/nutrisync/internal/food"
	"github.com/nutrisync/nutrisync/internal/platform/apperr"
	"github.com/nutrisync/nutrisync/internal/platform/sec"
	"github.com/nutrisync/nutrisync/pkg/pagination"
	"github.com/nutrisync/nutrisync/pkg/pointer"
)

func newDoctorTestService(t *testing.T, repo *fakeUserRepository, source *stubLogSource) *Service {
	t.Helper()
	return NewService(repo, stubTokenProvider{}, &stubPurger{}, source, &stubActivity{}, discardLogger())
}

func TestPatientsListsAssignedOnly(t *testing.T) {
	repo := newFakeUserRepository(
		&User{ID: "doc-1", Role: sec.RoleDoctor},
		&User{ID: "pat-1", Role: sec.RolePatient, AssignedDoctor: pointer.To("doc-1")},
		&User{ID: "pat-2", Role: sec.RolePatient, AssignedDoctor: pointer.To("doc-2")},
		&User{ID: "pat-3", Role: sec.RolePatient},
	)
	service := newDoctorTestService(t, repo, &stubLogSource{})

	patients, err := service.Patients(context.Background(), "doc-1")
	require.NoError(t, err)

	require.Len(t, patients, 1)
	assert.Equal(t, "pat-1", patients[0].ID)
}

func TestPatientLogsForAssignedPatient(t *testing.T) {
	repo := newFakeUserRepository(
		&User{ID: "doc-1", Role: sec.RoleDoctor},
		&User{ID: "pat-1", Role: sec.RolePatient, AssignedDoctor: pointer.To("doc-1")},
	)
	source := &stubLogSource{
		logs: []*food.Log{{ID: "log-1", UserID: "pat-1", Food: "Banana"}},
	}
	service := newDoctorTestService(t, repo, source)

	logs, meta, err := service.PatientLogs(context.Background(), "doc-1", "pat-1", pagination.Params{Page: 1, Limit: 20}, nil, nil)
	require.NoError(t, err)

	require.Len(t, logs, 1)
	assert.Equal(t, "Banana", logs[0].Food)
	assert.Equal(t, 1, meta.Total)
}

func TestPatientLogsUnassignedPatient(t *testing.T) {
	repo := newFakeUserRepository(
		&User{ID: "doc-1", Role: sec.RoleDoctor},
		&User{ID: "pat-1", Role: sec.RolePatient},
	)
	service := newDoctorTestService(t, repo, &stubLogSource{})

	_, _, err := service.PatientLogs(context.Background(), "doc-1", "pat-1", pagination.Params{Page: 1, Limit: 20}, nil, nil)
	require.Error(t, err)

	var appErr *apperr.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "FORBIDDEN", appErr.Code)
}

func TestPatientLogsAssignedToAnotherDoctor(t *testing.T) {
	repo := newFakeUserRepository(
		&User{ID: "doc-1", Role: sec.RoleDoctor},
		&User{ID: "pat-1", Role: sec.RolePatient, AssignedDoctor: pointer.To("doc-2")},
	)
	service := newDoctorTestService(t, repo, &stubLogSource{})

	_, _, err := service.PatientLogs(context.Background(), "doc-1", "pat-1", pagination.Params{Page: 1, Limit: 20}, nil, nil)
	require.Error(t, err)

	var appErr *apperr.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "FORBIDDEN", appErr.Code)
}

func TestPatientSummaryMissingPatient(t *testing.T) {
	repo := newFakeUserRepository(&User{ID: "doc-1", Role: sec.RoleDoctor})
	service := newDoctorTestService(t, repo, &stubLogSource{})

	_, err := service.PatientSummary(context.Background(), "doc-1", "ghost")
	require.Error(t, err)

	var appErr *apperr.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestPatientSummaryTargetIsNotAPatient(t *testing.T) {
	repo := newFakeUserRepository(
		&User{ID: "doc-1", Role: sec.RoleDoctor},
		&User{ID: "doc-2", Role: sec.RoleDoctor},
	)
	service := newDoctorTestService(t, repo, &stubLogSource{})

	// A doctor account is never readable as a patient, even if targeted.
	_, err := service.PatientSummary(context.Background(), "doc-1", "doc-2")
	require.Error(t, err)

	var appErr *apperr.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestPatientSummaryForAssignedPatient(t *testing.T) {
	repo := newFakeUserRepository(
		&User{ID: "doc-1", Role: sec.RoleDoctor},
		&User{ID: "pat-1", Role: sec.RolePatient, AssignedDoctor: pointer.To("doc-1")},
	)
	source := &stubLogSource{
		summary: &food.WeeklySummary{
			Total: food.Totals{Calories: 1400, Entries: 7},
			Days:  7,
		},
	}
	service := newDoctorTestService(t, repo, source)

	summary, err := service.PatientSummary(context.Background(), "doc-1", "pat-1")
	require.NoError(t, err)

	assert.Equal(t, float64(1400), summary.Total.Calories)
	assert.Equal(t, 7, summary.Days)
}
