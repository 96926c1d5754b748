// Copyright (c) 2026 NutriSync. All rights reserved.

// Authentication use cases: registration, login, and live identity
// resolution for the access-control middleware.
//
// # Architecture
//
// The Service orchestrates domain entities and interacts with repositories
// through interfaces. It is technology-agnostic and does not know about
// HTTP or SQL.
package users

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nutrisync/nutrisync/internal/food"
	"github.com/nutrisync/nutrisync/internal/platform/apperr"
	"github.com/nutrisync/nutrisync/internal/platform/sec"
	"github.com/nutrisync/nutrisync/internal/platform/validate"
	"github.com/nutrisync/nutrisync/pkg/pagination"
	"github.com/nutrisync/nutrisync/pkg/uuid"
)

// PasswordMinLength is the minimum accepted password length.
const PasswordMinLength = 6

// TokenProvider defines the contract for generating security tokens.
type TokenProvider interface {
	// Issue creates a signed session token for the given account.
	//
	// # Parameters
	//   - subjectID: The ID of the account.
	//   - role: The role granted at issuance (informational snapshot).
	//
	// # Returns
	//   - A signed JWT string, or an error if signing fails.
	Issue(subjectID string, role sec.Role) (string, error)
}

// LogPurger removes a deleted account's food data from the document store.
// Implemented by the food service; injected to keep the dependency one-way.
type LogPurger interface {
	PurgeUser(ctx context.Context, userID string) error
}

// ActivityReporter supplies document-store aggregates for the admin
// statistics endpoint.
type ActivityReporter interface {
	// TotalLogs returns the all-time food log count across all users.
	TotalLogs(ctx context.Context) (int64, error)

	// UsageSince returns API usage event counts keyed by service name.
	UsageSince(ctx context.Context, since time.Time) (map[string]int64, error)
}

// PatientLogSource exposes a patient's food data to their assigned doctor.
// Implemented by the food service; the dependency is one-way (users → food).
type PatientLogSource interface {
	// PatientLogs returns the patient's food logs, newest first, with the
	// total count for pagination metadata.
	PatientLogs(ctx context.Context, userID string, params pagination.Params, from, to *time.Time) ([]*food.Log, int, error)

	// PatientWeeklySummary returns the patient's 7-day nutrition aggregate.
	PatientWeeklySummary(ctx context.Context, userID string) (*food.WeeklySummary, error)
}

// Service implements the identity and account-administration use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// or login logic must be reviewed before merging.
type Service struct {
	userRepository UserRepository
	tokenProvider  TokenProvider
	logPurger      LogPurger
	logSource      PatientLogSource
	activity       ActivityReporter
	logger         *slog.Logger
	now            func() time.Time
}

// NewService constructs a new [Service] with its dependencies.
func NewService(
	userRepo UserRepository,
	tokenProv TokenProvider,
	purger LogPurger,
	source PatientLogSource,
	activity ActivityReporter,
	logger *slog.Logger,
) *Service {
	return &Service{
		userRepository: userRepo,
		tokenProvider:  tokenProv,
		logPurger:      purger,
		logSource:      source,
		activity:       activity,
		logger:         logger,
		now:            time.Now,
	}
}

// RegisterInput holds the data required to enroll a new account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	// Role is the requested role. Only "patient" and "doctor" are honored;
	// anything else (including "admin") is silently downgraded to patient.
	Role string
}

// AuthSession represents a successfully established login or registration.
type AuthSession struct {
	Token string        `json:"token"`
	User  *sec.Identity `json:"user"`
}

// Register validates, hashes, and persists a brand new user account.
//
// # Parameters
//   - context: Context for the database operation.
//   - input: The user-provided registration details.
//
// # Returns
//   - A pointer to [AuthSession] containing the session token.
//   - Returns [apperr.Conflict] if the email is already registered.
//
// # Business Rules
//   - Emails are unique and stored lowercase.
//   - Admin is never self-assignable; requested roles outside
//     {patient, doctor} become patient.
func (service *Service) Register(context context.Context, input RegisterInput) (*AuthSession, error) {
	// ── 1. Boundary Validation ────────────────────────────────────────────

	validator := &validate.Validator{}
	err := validator.
		Required("name", input.Name).
		Email("email", input.Email).
		MinLen("password", input.Password, PasswordMinLength).
		Err()
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	// ── 2. Uniqueness Check ───────────────────────────────────────────────

	// Verify email uniqueness. Return a client-safe Conflict error.
	// The unique index on lower(email) backs this against racing requests.
	_, err = service.userRepository.FindByEmail(context, email)
	if err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	// ── 3. Security ───────────────────────────────────────────────────────

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("users_service_hash_failed: %w", err)
	}

	// ── 4. Entity Construction ────────────────────────────────────────────

	user := &User{
		ID:           uuid.New(), // Time-sortable ID to prevent PG index fragmentation.
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         sec.RegistrationRole(input.Role),
	}

	// ── 5. Persistence ────────────────────────────────────────────────────

	if err := service.userRepository.Create(context, user); err != nil {
		return nil, err
	}

	// ── 6. Token Issuance ─────────────────────────────────────────────────

	token, err := service.tokenProvider.Issue(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("users_service_token_generation_failed: %w", err)
	}

	return &AuthSession{Token: token, User: user.Identity()}, nil
}

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email    string
	Password string
}

// Login validates user credentials and issues a session token.
//
// # Parameters
//   - context: Context for the database operation.
//   - input: Contains Email and plain-text Password.
//
// # Returns
//   - A pointer to [AuthSession] containing the session token.
//   - Returns [apperr.Unauthorized] if credentials do not match.
//
// # Flow
//  1. Lookup user by email (lowercase).
//  2. Verify password hash using Bcrypt.
//  3. Stamp LastLogin — only after the password check passes.
//  4. Generate the session JWT.
func (service *Service) Login(context context.Context, input LoginInput) (*AuthSession, error) {
	// ── 1. Fetch User Profile ─────────────────────────────────────────────

	// Return generic unauthorized error to prevent email enumeration attacks.
	user, err := service.userRepository.FindByEmail(context, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// ── 2. Security Verification ──────────────────────────────────────────

	// Same generic message for a bad password as for an unknown email.
	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// ── 3. Login Bookkeeping ──────────────────────────────────────────────

	// A failed attempt must leave LastLogin untouched, so the stamp happens
	// strictly after the hash check.
	loginTime := service.now()
	if err := service.userRepository.UpdateLastLogin(context, user.ID, loginTime); err != nil {
		return nil, fmt.Errorf("users_service_last_login_failed: %w", err)
	}
	user.LastLogin = &loginTime

	// ── 4. Token Issuance ─────────────────────────────────────────────────

	token, err := service.tokenProvider.Issue(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("users_service_token_generation_failed: %w", err)
	}

	return &AuthSession{Token: token, User: user.Identity()}, nil
}

// ResolveIdentity loads the live public identity for a verified token subject.
//
// # Usage
//
// Called by the access-control middleware on EVERY authenticated request.
// This is what makes role changes and deletions take effect immediately
// instead of at token expiry.
func (service *Service) ResolveIdentity(context context.Context, accountID string) (*sec.Identity, error) {
	user, err := service.userRepository.FindByID(context, accountID)
	if err != nil {
		return nil, err
	}
	return user.Identity(), nil
}
