// Copyright (c) 2026 NutriSync. All rights reserved.

package reminder

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutrisync/nutrisync/internal/platform/apperr"
)

func newTestService(store ReminderRepository) *Service {
	return NewService(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCreateReminder(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)

	scheduledAt := time.Now().Add(time.Hour)
	reminder, err := service.Create(context.Background(), "acc-1", CreateInput{
		Message:     "Drink water",
		ScheduledAt: scheduledAt,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, reminder.ID)
	assert.Equal(t, "acc-1", reminder.AccountID)
	assert.Equal(t, "Drink water", reminder.Message)
	assert.False(t, reminder.Delivered)
	assert.False(t, reminder.CreatedAt.IsZero())

	stored, err := store.ListByAccount(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestCreateReminderValidation(t *testing.T) {
	service := newTestService(newFakeStore())

	tests := []struct {
		name  string
		input CreateInput
	}{
		{
			name:  "empty message",
			input: CreateInput{Message: "", ScheduledAt: time.Now().Add(time.Hour)},
		},
		{
			name:  "message too long",
			input: CreateInput{Message: strings.Repeat("a", MessageMaxLength+1), ScheduledAt: time.Now().Add(time.Hour)},
		},
		{
			name:  "zero schedule time",
			input: CreateInput{Message: "Drink water"},
		},
		{
			name:  "schedule time in the past",
			input: CreateInput{Message: "Drink water", ScheduledAt: time.Now().Add(-time.Hour)},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := service.Create(context.Background(), "acc-1", test.input)
			require.Error(t, err)

			var appErr *apperr.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
		})
	}
}

func TestCreateReminderAllowsSlightClockSkew(t *testing.T) {
	service := newTestService(newFakeStore())

	// A schedule a few seconds in the past must pass: client clocks drift.
	_, err := service.Create(context.Background(), "acc-1", CreateInput{
		Message:     "Drink water",
		ScheduledAt: time.Now().Add(-10 * time.Second),
	})
	assert.NoError(t, err)
}

func TestListReturnsEmptySliceNotNil(t *testing.T) {
	service := newTestService(newFakeStore())

	reminders, err := service.List(context.Background(), "acc-1")
	require.NoError(t, err)

	assert.NotNil(t, reminders)
	assert.Empty(t, reminders)
}

func TestDeleteIsOwnerScoped(t *testing.T) {
	store := newFakeStore(&Reminder{
		ID:          "rem-1",
		AccountID:   "acc-1",
		Message:     "Drink water",
		ScheduledAt: time.Now().Add(time.Hour),
	})
	service := newTestService(store)

	// A different account cannot delete it.
	err := service.Delete(context.Background(), "acc-2", "rem-1")
	var appErr *apperr.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "NOT_FOUND", appErr.Code)

	// The owner can.
	err = service.Delete(context.Background(), "acc-1", "rem-1")
	assert.NoError(t, err)
}
