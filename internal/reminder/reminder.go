// Copyright (c) 2026 NutriSync. All rights reserved.

// Package reminder implements user-scheduled reminders and the background
// scheduler that delivers them through a messaging gateway.
//
// # Delivery Semantics
//
// A reminder is delivered at most once: the scheduler claims a row with a
// conditional UPDATE before sending, so two processes can never both send
// the same reminder. Failed sends are logged and counted, never retried —
// the claim is not rolled back.
package reminder

import "time"

// Reminder represents one scheduled message.
//
// # Rules
//   - AccountID is the owner; rows cascade when the account is deleted.
//   - Delivered transitions false→true exactly once and never reverts.
type Reminder struct {
	ID          string    `json:"id"`
	AccountID   string    `json:"account_id"`
	Message     string    `json:"message"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Delivered   bool      `json:"delivered"`
	CreatedAt   time.Time `json:"created_at"`
}
