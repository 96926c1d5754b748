// Copyright (c) 2026 NutriSync. All rights reserved.

package reminder

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutrisync/nutrisync/internal/platform/apperr"
	"github.com/nutrisync/nutrisync/internal/platform/metrics"
)

// fakeStore is an in-memory ReminderRepository for scheduler tests.
type fakeStore struct {
	mu        sync.Mutex
	reminders map[string]*Reminder
	listErr   error
}

func newFakeStore(reminders ...*Reminder) *fakeStore {
	store := &fakeStore{reminders: make(map[string]*Reminder)}
	for _, reminder := range reminders {
		store.reminders[reminder.ID] = reminder
	}
	return store
}

func (store *fakeStore) Create(_ context.Context, reminder *Reminder) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.reminders[reminder.ID] = reminder
	return nil
}

func (store *fakeStore) ListByAccount(_ context.Context, accountID string) ([]*Reminder, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	var result []*Reminder
	for _, reminder := range store.reminders {
		if reminder.AccountID == accountID {
			result = append(result, reminder)
		}
	}
	return result, nil
}

func (store *fakeStore) Delete(_ context.Context, accountID, id string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	reminder, ok := store.reminders[id]
	if !ok || reminder.AccountID != accountID {
		return apperr.NotFound("Reminder")
	}
	delete(store.reminders, id)
	return nil
}

func (store *fakeStore) ListDue(_ context.Context, now time.Time) ([]*Reminder, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.listErr != nil {
		return nil, store.listErr
	}
	var due []*Reminder
	for _, reminder := range store.reminders {
		if !reminder.Delivered && !reminder.ScheduledAt.After(now) {
			due = append(due, reminder)
		}
	}
	return due, nil
}

func (store *fakeStore) MarkDelivered(_ context.Context, id string) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	reminder, ok := store.reminders[id]
	if !ok || reminder.Delivered {
		return false, nil
	}
	reminder.Delivered = true
	return true, nil
}

func (store *fakeStore) delivered(id string) bool {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.reminders[id].Delivered
}

// fakeGateway records sends and optionally fails them.
type fakeGateway struct {
	mu    sync.Mutex
	sent  []string
	fail  bool
}

func (gateway *fakeGateway) Send(_ context.Context, destination, body string) error {
	gateway.mu.Lock()
	defer gateway.mu.Unlock()
	if gateway.fail {
		return errors.New("gateway down")
	}
	gateway.sent = append(gateway.sent, body)
	return nil
}

func (gateway *fakeGateway) sends() []string {
	gateway.mu.Lock()
	defer gateway.mu.Unlock()
	return append([]string(nil), gateway.sent...)
}

func newTestScheduler(store ReminderRepository, gateway Gateway) *Scheduler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewScheduler(store, gateway, "whatsapp:+15550001111", time.Second, metrics.Noop{}, logger)
}

func TestRunOnceDeliversDueReminder(t *testing.T) {
	due := &Reminder{
		ID:          "rem-1",
		AccountID:   "acc-1",
		Message:     "Drink water",
		ScheduledAt: time.Now().Add(-time.Minute),
	}
	store := newFakeStore(due)
	gateway := &fakeGateway{}
	scheduler := newTestScheduler(store, gateway)

	scheduler.RunOnce(context.Background())

	assert.Equal(t, []string{"Drink water"}, gateway.sends())
	assert.True(t, store.delivered("rem-1"))
}

func TestRunOnceSkipsFutureReminder(t *testing.T) {
	future := &Reminder{
		ID:          "rem-1",
		AccountID:   "acc-1",
		Message:     "Not yet",
		ScheduledAt: time.Now().Add(time.Hour),
	}
	store := newFakeStore(future)
	gateway := &fakeGateway{}
	scheduler := newTestScheduler(store, gateway)

	scheduler.RunOnce(context.Background())

	assert.Empty(t, gateway.sends())
	assert.False(t, store.delivered("rem-1"))
}

func TestRunOnceSendsAtMostOnce(t *testing.T) {
	due := &Reminder{
		ID:          "rem-1",
		AccountID:   "acc-1",
		Message:     "Take vitamins",
		ScheduledAt: time.Now().Add(-time.Minute),
	}
	store := newFakeStore(due)
	gateway := &fakeGateway{}
	scheduler := newTestScheduler(store, gateway)

	scheduler.RunOnce(context.Background())
	scheduler.RunOnce(context.Background())

	assert.Len(t, gateway.sends(), 1)
}

func TestRunOnceFailedSendIsNotRetried(t *testing.T) {
	due := &Reminder{
		ID:          "rem-1",
		AccountID:   "acc-1",
		Message:     "Lost message",
		ScheduledAt: time.Now().Add(-time.Minute),
	}
	store := newFakeStore(due)
	gateway := &fakeGateway{fail: true}
	scheduler := newTestScheduler(store, gateway)

	scheduler.RunOnce(context.Background())

	// The claim stands even though the send failed.
	assert.True(t, store.delivered("rem-1"))

	// A later healthy pass must not resend it.
	gateway.fail = false
	scheduler.RunOnce(context.Background())
	assert.Empty(t, gateway.sends())
}

func TestRunOnceSurvivesDueScanFailure(t *testing.T) {
	store := newFakeStore()
	store.listErr = errors.New("connection refused")
	gateway := &fakeGateway{}
	scheduler := newTestScheduler(store, gateway)

	scheduler.RunOnce(context.Background())

	assert.Empty(t, gateway.sends())
}

func TestWeeklyRecurrenceFiresAfterAWeek(t *testing.T) {
	base := time.Date(2026, time.March, 2, 9, 30, 0, 0, time.UTC) // Monday 09:30
	due := &Reminder{
		ID:          "rem-1",
		AccountID:   "acc-1",
		Message:     "Weekly weigh-in",
		ScheduledAt: base.Add(-time.Second),
	}
	store := newFakeStore(due)
	gateway := &fakeGateway{}
	scheduler := newTestScheduler(store, gateway)

	current := base
	scheduler.now = func() time.Time { return current }

	// First delivery registers the Monday 09:29 slot.
	scheduler.RunOnce(context.Background())
	require.Len(t, gateway.sends(), 1)

	// The same slot the following Monday fires again.
	current = base.AddDate(0, 0, 7).Add(-time.Second)
	scheduler.RunOnce(context.Background())
	assert.Len(t, gateway.sends(), 2)
}

func TestWeeklyRecurrenceDoesNotRefireWithinTheWeek(t *testing.T) {
	base := time.Date(2026, time.March, 2, 9, 30, 0, 0, time.UTC)
	due := &Reminder{
		ID:          "rem-1",
		AccountID:   "acc-1",
		Message:     "Weekly weigh-in",
		ScheduledAt: base,
	}
	store := newFakeStore(due)
	gateway := &fakeGateway{}
	scheduler := newTestScheduler(store, gateway)

	current := base
	scheduler.now = func() time.Time { return current }

	scheduler.RunOnce(context.Background())
	require.Len(t, gateway.sends(), 1)

	// Same weekday/hour/minute, but only minutes after the first send.
	scheduler.RunOnce(context.Background())
	assert.Len(t, gateway.sends(), 1)
}

func TestStartStopsOnContextCancel(t *testing.T) {
	store := newFakeStore()
	gateway := &fakeGateway{}
	scheduler := newTestScheduler(store, gateway)
	scheduler.interval = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		scheduler.Start(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after context cancellation")
	}
}
