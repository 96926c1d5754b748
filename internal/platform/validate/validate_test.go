// Copyright (c) 2026 NutriSync. All rights reserved.

package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutrisync/nutrisync/internal/platform/apperr"
)

func TestValidatorPassesOnValidInput(t *testing.T) {
	v := &Validator{}
	err := v.
		Required("name", "Alice").
		Email("email", "alice@example.com").
		MinLen("password", "supersecret", 6).
		Err()

	assert.NoError(t, err)
	assert.False(t, v.HasErrors())
}

func TestValidatorCollectsMultipleFailures(t *testing.T) {
	v := &Validator{}
	err := v.
		Required("name", "  ").
		Email("email", "not-an-email").
		MinLen("password", "abc", 6).
		Err()

	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "VALIDATION_ERROR", appError.Code)
	assert.Len(t, appError.Details, 3)
}

func TestValidatorUUID(t *testing.T) {
	v := &Validator{}
	assert.NoError(t, v.UUID("id", "0198c5f2-1234-7abc-9def-0123456789ab").Err())

	v = &Validator{}
	assert.Error(t, v.UUID("id", "not-a-uuid").Err())
}

func TestValidatorOneOf(t *testing.T) {
	v := &Validator{}
	assert.NoError(t, v.OneOf("role", "doctor", "patient", "doctor").Err())

	v = &Validator{}
	assert.Error(t, v.OneOf("role", "superuser", "patient", "doctor").Err())
}

func TestValidatorNonNegative(t *testing.T) {
	v := &Validator{}
	assert.NoError(t, v.NonNegative("calories", 0).Err())

	v = &Validator{}
	assert.Error(t, v.NonNegative("calories", -1).Err())
}

func TestValidatorFutureOrNow(t *testing.T) {
	now := time.Now()

	v := &Validator{}
	assert.NoError(t, v.FutureOrNow("scheduled_at", now.Add(time.Hour), now).Err())

	v = &Validator{}
	assert.NoError(t, v.FutureOrNow("scheduled_at", now, now).Err())

	v = &Validator{}
	assert.Error(t, v.FutureOrNow("scheduled_at", now.Add(-time.Hour), now).Err())
}

func TestRequiredError(t *testing.T) {
	err := RequiredError("email", "Already registered")
	assert.Equal(t, "VALIDATION_ERROR", err.Code)
	require.Len(t, err.Details, 1)
	assert.Equal(t, "email", err.Details[0].Field)
}
