// Copyright (c) 2026 NutriSync. All rights reserved.

package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotFoundMessage(t *testing.T) {
	err := NotFound("Reminder")
	assert.Equal(t, "Reminder not found", err.Error())
	assert.Equal(t, http.StatusNotFound, err.HTTPStatus)
	assert.Equal(t, "NOT_FOUND", err.Code)
}

func TestValidationErrorCarriesDetails(t *testing.T) {
	err := ValidationError("Validation failed",
		FieldError{Field: "email", Message: "Must be a valid email address"},
	)

	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus)
	require.Len(t, err.Details, 1)
	assert.Equal(t, "email", err.Details[0].Field)
}

func TestInternalHidesCause(t *testing.T) {
	cause := errors.New("pq: connection refused")
	err := Internal(cause)

	assert.Equal(t, "An unexpected error occurred", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestUpstreamClassification(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := Upstream("Vision service", cause)

	assert.Equal(t, http.StatusBadGateway, err.HTTPStatus)
	assert.True(t, IsUpstream(err))
	assert.True(t, IsUpstream(fmt.Errorf("analyze: %w", err)))
	assert.False(t, IsUpstream(Internal(cause)))
}

func TestAsTraversesWrapping(t *testing.T) {
	wrapped := fmt.Errorf("service: %w", Forbidden("Insufficient permissions"))

	appError := As(wrapped)
	require.NotNil(t, appError)
	assert.Equal(t, "FORBIDDEN", appError.Code)

	assert.Nil(t, As(errors.New("plain")))
	assert.True(t, IsAppError(wrapped))
	assert.False(t, IsAppError(errors.New("plain")))
}
