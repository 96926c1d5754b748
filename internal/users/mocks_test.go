// Copyright (c) 2026 NutriSync. All rights reserved.

package users

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/nutrisync/nutrisync/internal/food"
	"github.com/nutrisync/nutrisync/internal/platform/apperr"
	"github.com/nutrisync/nutrisync/internal/platform/sec"
	"github.com/nutrisync/nutrisync/pkg/pagination"
)

// fakeUserRepository is an in-memory UserRepository for service tests.
type fakeUserRepository struct {
	users map[string]*User

	// lastLoginCalls records every UpdateLastLogin invocation so tests can
	// assert that failed logins never stamp the account.
	lastLoginCalls []string

	// roleUpdates records every UpdateRole invocation.
	roleUpdates []string
}

func newFakeUserRepository(users ...*User) *fakeUserRepository {
	repo := &fakeUserRepository{users: make(map[string]*User)}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	return repo
}

func (repo *fakeUserRepository) FindByID(_ context.Context, id string) (*User, error) {
	user, ok := repo.users[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	clone := *user
	return &clone, nil
}

func (repo *fakeUserRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	for _, user := range repo.users {
		if user.Email == strings.ToLower(email) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repo *fakeUserRepository) Create(_ context.Context, user *User) error {
	for _, existing := range repo.users {
		if existing.Email == user.Email {
			return apperr.Conflict("Email is already registered")
		}
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	clone := *user
	repo.users[user.ID] = &clone
	return nil
}

func (repo *fakeUserRepository) UpdateRole(_ context.Context, id string, role sec.Role) error {
	repo.roleUpdates = append(repo.roleUpdates, id)
	user, ok := repo.users[id]
	if !ok {
		return apperr.NotFound("User")
	}
	user.Role = role
	return nil
}

func (repo *fakeUserRepository) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	repo.lastLoginCalls = append(repo.lastLoginCalls, id)
	user, ok := repo.users[id]
	if !ok {
		return apperr.NotFound("User")
	}
	user.LastLogin = &at
	return nil
}

func (repo *fakeUserRepository) AssignDoctor(_ context.Context, patientID, doctorID string) error {
	user, ok := repo.users[patientID]
	if !ok {
		return apperr.NotFound("User")
	}
	user.AssignedDoctor = &doctorID
	return nil
}

func (repo *fakeUserRepository) Delete(_ context.Context, id string) error {
	if _, ok := repo.users[id]; !ok {
		return apperr.NotFound("User")
	}
	delete(repo.users, id)
	return nil
}

func (repo *fakeUserRepository) List(_ context.Context, filter ListFilter) ([]*User, error) {
	var result []*User
	for _, user := range repo.users {
		if filter.Role != "" && string(user.Role) != filter.Role {
			continue
		}
		result = append(result, user)
	}
	return result, nil
}

func (repo *fakeUserRepository) Count(_ context.Context, filter ListFilter) (int, error) {
	users, _ := repo.List(context.Background(), filter)
	return len(users), nil
}

func (repo *fakeUserRepository) ListByAssignedDoctor(_ context.Context, doctorID string) ([]*User, error) {
	var result []*User
	for _, user := range repo.users {
		if user.AssignedDoctor != nil && *user.AssignedDoctor == doctorID {
			clone := *user
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (repo *fakeUserRepository) CountByRole(_ context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for _, user := range repo.users {
		counts[string(user.Role)]++
	}
	return counts, nil
}

// stubTokenProvider issues predictable tokens.
type stubTokenProvider struct{}

func (stubTokenProvider) Issue(subjectID string, role sec.Role) (string, error) {
	return "token-" + subjectID, nil
}

// stubPurger records purge calls and optionally fails them.
type stubPurger struct {
	purged []string
	err    error
}

func (purger *stubPurger) PurgeUser(_ context.Context, userID string) error {
	purger.purged = append(purger.purged, userID)
	return purger.err
}

// stubLogSource serves canned patient food data.
type stubLogSource struct {
	logs    []*food.Log
	summary *food.WeeklySummary
}

func (source *stubLogSource) PatientLogs(_ context.Context, userID string, params pagination.Params, from, to *time.Time) ([]*food.Log, int, error) {
	return source.logs, len(source.logs), nil
}

func (source *stubLogSource) PatientWeeklySummary(_ context.Context, userID string) (*food.WeeklySummary, error) {
	return source.summary, nil
}

// stubActivity serves canned document-store aggregates.
type stubActivity struct {
	totalLogs int64
	usage     map[string]int64
}

func (activity *stubActivity) TotalLogs(_ context.Context) (int64, error) {
	return activity.totalLogs, nil
}

func (activity *stubActivity) UsageSince(_ context.Context, _ time.Time) (map[string]int64, error) {
	return activity.usage, nil
}

// discardLogger returns a logger that drops everything.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestUserService wires a Service around in-memory collaborators.
func newTestUserService(t *testing.T, repo *fakeUserRepository) (*Service, *stubPurger) {
	t.Helper()
	purger := &stubPurger{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := NewService(repo, stubTokenProvider{}, purger, &stubLogSource{}, &stubActivity{}, logger)
	return service, purger
}

// mustHash is a bcrypt hash helper for seeding test accounts.
func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := sec.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}
