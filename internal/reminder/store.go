// Copyright (c) 2026 NutriSync. All rights reserved.

package reminder

import (
	"context"
	"time"
)

// ReminderRepository defines the data access contract for reminders.
//
// # Implementations
//
// The canonical implementation is PostgreSQL (store_postgres.go); the
// due-scan is backed by a partial index on undelivered rows.
type ReminderRepository interface {
	// Create persists a new reminder.
	Create(ctx context.Context, reminder *Reminder) error

	// ListByAccount returns the account's reminders, soonest first.
	ListByAccount(ctx context.Context, accountID string) ([]*Reminder, error)

	// Delete removes a reminder owned by the account, regardless of its
	// delivered state.
	//
	// Returns [apperr.NotFound] when the reminder does not exist or belongs
	// to someone else.
	Delete(ctx context.Context, accountID, id string) error

	// ListDue returns undelivered reminders whose schedule time has passed,
	// oldest first. The query never touches delivered rows.
	ListDue(ctx context.Context, now time.Time) ([]*Reminder, error)

	// MarkDelivered atomically claims a reminder for delivery.
	//
	// # Returns
	//   - claimed=true exactly once per reminder: the conditional UPDATE
	//     flips delivered only when it is still FALSE. A false return means
	//     another pass already owns the send.
	MarkDelivered(ctx context.Context, id string) (claimed bool, err error)
}
