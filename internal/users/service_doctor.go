// Copyright (c) 2026 NutriSync. All rights reserved.

// Doctor use cases: reading assigned patients and their nutrition data.
package users

import (
	"context"
	"time"

	"github.com/nutrisync/nutrisync/internal/food"
	"github.com/nutrisync/nutrisync/internal/platform/apperr"
	"github.com/nutrisync/nutrisync/internal/platform/sec"
	"github.com/nutrisync/nutrisync/pkg/pagination"
)

// Patients returns every account currently assigned to the doctor.
func (service *Service) Patients(context context.Context, doctorID string) ([]*User, error) {
	return service.userRepository.ListByAssignedDoctor(context, doctorID)
}

// authorizePatientAccess verifies that the patient exists, is a patient, and
// is assigned to the calling doctor.
//
// # Returns
//   - [apperr.NotFound] if the patient account does not exist.
//   - [apperr.Forbidden] if the patient is not assigned to this doctor.
//     Assignment is checked fresh on every call; revoking an assignment
//     locks the doctor out immediately.
func (service *Service) authorizePatientAccess(context context.Context, doctorID, patientID string) (*User, error) {
	patient, err := service.userRepository.FindByID(context, patientID)
	if err != nil {
		return nil, err
	}

	if patient.Role != sec.RolePatient {
		return nil, apperr.NotFound("Patient")
	}

	if patient.AssignedDoctor == nil || *patient.AssignedDoctor != doctorID {
		return nil, apperr.Forbidden("Patient is not assigned to you")
	}

	return patient, nil
}

// PatientLogs returns an assigned patient's food logs with pagination
// metadata and an optional date range.
func (service *Service) PatientLogs(
	context context.Context,
	doctorID, patientID string,
	params pagination.Params,
	from, to *time.Time,
) ([]*food.Log, pagination.Meta, error) {
	if _, err := service.authorizePatientAccess(context, doctorID, patientID); err != nil {
		return nil, pagination.Meta{}, err
	}

	logs, total, err := service.logSource.PatientLogs(context, patientID, params, from, to)
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	return logs, pagination.NewMeta(params.Page, params.Limit, total), nil
}

// PatientSummary returns an assigned patient's 7-day nutrition aggregate.
func (service *Service) PatientSummary(context context.Context, doctorID, patientID string) (*food.WeeklySummary, error) {
	if _, err := service.authorizePatientAccess(context, doctorID, patientID); err != nil {
		return nil, err
	}

	return service.logSource.PatientWeeklySummary(context, patientID)
}
