// Copyright (c) 2026 NutriSync. All rights reserved.

// PostgreSQL implementation of the reminder storage layer.
package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nutrisync/nutrisync/internal/platform/apperr"
)

// reminderColumns is the canonical SELECT column list for reminder rows.
const reminderColumns = "id, accountid, message, scheduledat, delivered, createdat"

// PostgresReminderRepository implements ReminderRepository using pgx.
type PostgresReminderRepository struct {
	pool *pgxpool.Pool
}

// NewReminderRepository creates a new PostgreSQL implementation of ReminderRepository.
func NewReminderRepository(pool *pgxpool.Pool) *PostgresReminderRepository {
	return &PostgresReminderRepository{pool: pool}
}

// scanReminder reads one reminder row.
func scanReminder(row pgx.Row) (*Reminder, error) {
	reminder := &Reminder{}
	err := row.Scan(
		&reminder.ID,
		&reminder.AccountID,
		&reminder.Message,
		&reminder.ScheduledAt,
		&reminder.Delivered,
		&reminder.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return reminder, nil
}

// Create persists a new reminder row.
func (repository *PostgresReminderRepository) Create(ctx context.Context, reminder *Reminder) error {
	const query = `
		INSERT INTO reminder (
			id, accountid, message, scheduledat, delivered, createdat
		) VALUES ($1, $2, $3, $4, $5, $6)`

	if reminder.CreatedAt.IsZero() {
		reminder.CreatedAt = time.Now()
	}

	_, err := repository.pool.Exec(ctx, query,
		reminder.ID,
		reminder.AccountID,
		reminder.Message,
		reminder.ScheduledAt,
		reminder.Delivered,
		reminder.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_reminder_repo_create_failed: %w", err)
	}

	return nil
}

// ListByAccount returns the account's reminders, soonest first.
func (repository *PostgresReminderRepository) ListByAccount(ctx context.Context, accountID string) ([]*Reminder, error) {
	const query = `
		SELECT ` + reminderColumns + `
		FROM reminder
		WHERE accountid = $1
		ORDER BY scheduledat`

	rows, err := repository.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("postgres_reminder_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var result []*Reminder
	for rows.Next() {
		reminder, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_reminder_repo_list_scan_failed: %w", err)
		}
		result = append(result, reminder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_reminder_repo_list_rows_failed: %w", err)
	}

	return result, nil
}

// Delete removes a reminder owned by the account.
func (repository *PostgresReminderRepository) Delete(ctx context.Context, accountID, id string) error {
	// Ownership is part of the predicate: deleting someone else's reminder
	// is indistinguishable from deleting a missing one.
	const query = "DELETE FROM reminder WHERE id = $1 AND accountid = $2"

	tag, err := repository.pool.Exec(ctx, query, id, accountID)
	if err != nil {
		return fmt.Errorf("postgres_reminder_repo_delete_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Reminder")
	}

	return nil
}

// ListDue returns undelivered reminders whose schedule time has passed.
//
// # Index
//
// Matches the partial index on (scheduledat) WHERE delivered = FALSE, so the
// scan cost tracks the undelivered backlog, not the full table.
func (repository *PostgresReminderRepository) ListDue(ctx context.Context, now time.Time) ([]*Reminder, error) {
	const query = `
		SELECT ` + reminderColumns + `
		FROM reminder
		WHERE delivered = FALSE AND scheduledat <= $1
		ORDER BY scheduledat`

	rows, err := repository.pool.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("postgres_reminder_repo_list_due_failed: %w", err)
	}
	defer rows.Close()

	var result []*Reminder
	for rows.Next() {
		reminder, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_reminder_repo_list_due_scan_failed: %w", err)
		}
		result = append(result, reminder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_reminder_repo_list_due_rows_failed: %w", err)
	}

	return result, nil
}

// MarkDelivered atomically claims a reminder for delivery.
func (repository *PostgresReminderRepository) MarkDelivered(ctx context.Context, id string) (bool, error) {
	// The delivered = FALSE predicate is the entire concurrency story:
	// whichever statement commits first gets RowsAffected() == 1.
	const query = "UPDATE reminder SET delivered = TRUE WHERE id = $1 AND delivered = FALSE"

	tag, err := repository.pool.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("postgres_reminder_repo_mark_delivered_failed: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}
