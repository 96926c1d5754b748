// Copyright (c) 2026 NutriSync. All rights reserved.

package reminder

import (
	"context"
	"log/slog"
	"time"

	"github.com/nutrisync/nutrisync/internal/platform/constants"
	"github.com/nutrisync/nutrisync/internal/platform/metrics"
)

// recurrenceMinGap guards weekly re-sends against clock drift and tick
// granularity: a slot fires again only if the last send is at least this old.
const recurrenceMinGap = 6 * 24 * time.Hour

// recurrenceEntry is an in-memory weekly slot derived from a delivered
// reminder's UTC schedule time. Entries live only as long as the process.
type recurrenceEntry struct {
	weekday  time.Weekday
	hour     int
	minute   int
	message  string
	lastSent time.Time
}

// Scheduler polls for due reminders and delivers them through the gateway.
//
// # Lifecycle
//
// One Scheduler per process. Start blocks until the context is cancelled;
// each tick runs RunOnce, which claims and sends every due reminder.
//
// # Weekly Recurrence
//
// After a successful first delivery the scheduler registers the reminder's
// UTC weekday/hour/minute as a weekly slot and re-sends the same message when
// that slot comes around again. The slot table is process-local: it is not
// persisted and does not survive restarts.
type Scheduler struct {
	store       ReminderRepository
	gateway     Gateway
	destination string
	interval    time.Duration
	recorder    metrics.Recorder
	logger      *slog.Logger
	now         func() time.Time

	// recurrence is keyed by reminder ID. Only the scheduler goroutine
	// touches it, so no lock is needed.
	recurrence map[string]*recurrenceEntry
}

// NewScheduler creates a reminder delivery scheduler.
//
// # Parameters
//   - destination: The channel address every reminder is sent to
//     (e.g. "whatsapp:+15550001111").
//   - interval: Poll period; a due reminder is picked up within one tick.
func NewScheduler(
	store ReminderRepository,
	gateway Gateway,
	destination string,
	interval time.Duration,
	recorder metrics.Recorder,
	logger *slog.Logger,
) *Scheduler {
	return &Scheduler{
		store:       store,
		gateway:     gateway,
		destination: destination,
		interval:    interval,
		recorder:    recorder,
		logger:      logger,
		now:         time.Now,
		recurrence:  make(map[string]*recurrenceEntry),
	}
}

// Start runs the polling loop until the context is cancelled.
func (scheduler *Scheduler) Start(ctx context.Context) {
	scheduler.logger.Info("reminder_scheduler_started",
		slog.Duration("interval", scheduler.interval),
	)

	ticker := time.NewTicker(scheduler.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			scheduler.logger.Info("reminder_scheduler_stopped")
			return
		case <-ticker.C:
			scheduler.RunOnce(ctx)
		}
	}
}

// RunOnce executes a single scheduler pass: claim and send every due
// reminder, then fire any weekly slots that have come around.
func (scheduler *Scheduler) RunOnce(ctx context.Context) {
	now := scheduler.now()

	// ── 1. Due Scan ───────────────────────────────────────────────────────

	due, err := scheduler.store.ListDue(ctx, now)
	if err != nil {
		scheduler.logger.Error("reminder_due_scan_failed", slog.Any("error", err))
		return
	}

	scheduler.recorder.RecordSchedulerTick(len(due))

	// ── 2. Claim And Send ─────────────────────────────────────────────────

	for _, reminder := range due {
		claimed, err := scheduler.store.MarkDelivered(ctx, reminder.ID)
		if err != nil {
			scheduler.logger.Error("reminder_claim_failed",
				slog.String("reminder_id", reminder.ID),
				slog.Any("error", err),
			)
			continue
		}
		if !claimed {
			// Another pass owns this send.
			continue
		}

		if err := scheduler.send(ctx, reminder.Message); err != nil {
			// The claim stands: at-most-once means a failed send is lost.
			scheduler.recorder.RecordReminderFailure()
			scheduler.logger.Error("reminder_delivery_failed",
				slog.String("reminder_id", reminder.ID),
				slog.Any("error", err),
			)
			continue
		}

		scheduler.recorder.RecordReminderDelivered()
		scheduler.logger.Info("reminder_delivered",
			slog.String("reminder_id", reminder.ID),
			slog.String("account_id", reminder.AccountID),
		)

		scheduler.registerRecurrence(reminder, now)
	}

	// ── 3. Weekly Recurrence ──────────────────────────────────────────────

	scheduler.fireRecurrences(ctx, now)
}

// send delivers one message with the gateway deadline applied.
func (scheduler *Scheduler) send(ctx context.Context, body string) error {
	sendCtx, cancel := context.WithTimeout(ctx, constants.GatewaySendTimeout)
	defer cancel()

	return scheduler.gateway.Send(sendCtx, scheduler.destination, body)
}

// registerRecurrence records a delivered reminder's weekly slot.
func (scheduler *Scheduler) registerRecurrence(reminder *Reminder, now time.Time) {
	scheduled := reminder.ScheduledAt.UTC()
	scheduler.recurrence[reminder.ID] = &recurrenceEntry{
		weekday:  scheduled.Weekday(),
		hour:     scheduled.Hour(),
		minute:   scheduled.Minute(),
		message:  reminder.Message,
		lastSent: now,
	}
}

// fireRecurrences re-sends slots whose weekday/hour/minute matches now (UTC).
// Re-sends are best-effort: failures are logged and the slot waits a week.
func (scheduler *Scheduler) fireRecurrences(ctx context.Context, now time.Time) {
	utc := now.UTC()

	for id, entry := range scheduler.recurrence {
		if utc.Weekday() != entry.weekday || utc.Hour() != entry.hour || utc.Minute() != entry.minute {
			continue
		}
		if now.Sub(entry.lastSent) < recurrenceMinGap {
			continue
		}

		if err := scheduler.send(ctx, entry.message); err != nil {
			scheduler.recorder.RecordReminderFailure()
			scheduler.logger.Error("reminder_recurrence_failed",
				slog.String("reminder_id", id),
				slog.Any("error", err),
			)
			continue
		}

		entry.lastSent = now
		scheduler.recorder.RecordReminderDelivered()
		scheduler.logger.Info("reminder_recurrence_delivered",
			slog.String("reminder_id", id),
		)
	}
}
