// Copyright (c) 2026 NutriSync. All rights reserved.

package reminder

import (
	"context"
	"log/slog"
	"time"

	"github.com/nutrisync/nutrisync/internal/platform/validate"
	"github.com/nutrisync/nutrisync/pkg/uuid"
)

// MessageMaxLength caps a reminder message. Twilio truncates WhatsApp bodies
// past 1600 characters, so anything longer would silently lose content.
const MessageMaxLength = 1600

// scheduleGrace absorbs client clock skew when validating the schedule time.
const scheduleGrace = time.Minute

// Service implements reminder CRUD. Delivery lives in [Scheduler].
type Service struct {
	store  ReminderRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a reminder service.
func NewService(store ReminderRepository, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// CreateInput carries the fields for scheduling a reminder.
type CreateInput struct {
	Message     string
	ScheduledAt time.Time
}

// Create schedules a new reminder for the account.
//
// # Rules
//   - Message is required and bounded by [MessageMaxLength].
//   - ScheduledAt must not be in the past (with a small skew allowance);
//     a time that is already due fires on the next scheduler tick.
func (service *Service) Create(ctx context.Context, accountID string, input CreateInput) (*Reminder, error) {
	validator := &validate.Validator{}
	validator.
		Required("message", input.Message).
		MaxLen("message", input.Message, MessageMaxLength).
		Custom("scheduledAt", input.ScheduledAt.IsZero(), "This field is required").
		FutureOrNow("scheduledAt", input.ScheduledAt, service.now().Add(-scheduleGrace))

	if err := validator.Err(); err != nil {
		return nil, err
	}

	reminder := &Reminder{
		ID:          uuid.New(),
		AccountID:   accountID,
		Message:     input.Message,
		ScheduledAt: input.ScheduledAt,
		Delivered:   false,
		CreatedAt:   service.now(),
	}

	if err := service.store.Create(ctx, reminder); err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "reminder_scheduled",
		slog.String("reminder_id", reminder.ID),
		slog.String("account_id", accountID),
		slog.Time("scheduled_at", reminder.ScheduledAt),
	)

	return reminder, nil
}

// List returns the account's reminders, soonest first. Delivered reminders
// stay listed so the client can show history.
func (service *Service) List(ctx context.Context, accountID string) ([]*Reminder, error) {
	reminders, err := service.store.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if reminders == nil {
		reminders = []*Reminder{}
	}

	return reminders, nil
}

// Delete removes one of the account's reminders.
func (service *Service) Delete(ctx context.Context, accountID, id string) error {
	return service.store.Delete(ctx, accountID, id)
}
