// Copyright (c) 2026 NutriSync. All rights reserved.

// PostgreSQL implementation of the account storage layer.
//
// # Error Mapping
//
// Storage-specific errors (like pgx.ErrNoRows) are mapped to domain-friendly
// [apperr.AppError] types to avoid leaking storage implementation details.
package users

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nutrisync/nutrisync/internal/platform/apperr"
	"github.com/nutrisync/nutrisync/internal/platform/dberr"
	"github.com/nutrisync/nutrisync/internal/platform/sec"
)

// userColumns is the canonical SELECT column list for account rows.
const userColumns = "id, name, email, passwordhash, role, assigneddoctor, lastlogin, createdat, updatedat"

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// scanUser reads one account row into a [*User].
func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.AssignedDoctor,
		&user.LastLogin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create persists a new user record into the account table.
//
// # Parameters
//   - ctx: Context for the database operation.
//   - user: The user entity to persist.
func (repository *PostgresUserRepository) Create(ctx context.Context, user *User) error {
	const query = `
		INSERT INTO account (
			id, name, email, passwordhash, role, assigneddoctor, lastlogin, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.pool.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.AssignedDoctor,
		user.LastLogin,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("Email is already registered")
		}
		return fmt.Errorf("postgres_user_repo_create_failed: %w", err)
	}

	return nil
}

// FindByEmail retrieves a user record by their unique email address.
//
// # Returns
//
// Returns [*User] if found, or [apperr.NotFound] if no account exists.
func (repository *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM account
		WHERE lower(email) = lower($1)`

	user, err := scanUser(repository.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_email_failed: %w", err)
	}

	return user, nil
}

// FindByID retrieves a user record by their unique ID.
func (repository *PostgresUserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM account
		WHERE id = $1`

	user, err := scanUser(repository.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_id_failed: %w", err)
	}

	return user, nil
}

// UpdateRole replaces only the account's role.
func (repository *PostgresUserRepository) UpdateRole(ctx context.Context, id string, role sec.Role) error {
	const query = `
		UPDATE account
		SET role = $2, updatedat = $3
		WHERE id = $1`

	tag, err := repository.pool.Exec(ctx, query, id, role, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_role_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

// UpdateLastLogin stamps the last successful authentication time.
func (repository *PostgresUserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	const query = `
		UPDATE account
		SET lastlogin = $2, updatedat = $2
		WHERE id = $1`

	_, err := repository.pool.Exec(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_last_login_failed: %w", err)
	}

	return nil
}

// AssignDoctor sets the patient's assigned doctor column.
func (repository *PostgresUserRepository) AssignDoctor(ctx context.Context, patientID, doctorID string) error {
	const query = `
		UPDATE account
		SET assigneddoctor = $2, updatedat = $3
		WHERE id = $1`

	tag, err := repository.pool.Exec(ctx, query, patientID, doctorID, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_assign_doctor_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Patient")
	}

	return nil
}

// Delete removes the account row. Reminders cascade via the FK constraint.
func (repository *PostgresUserRepository) Delete(ctx context.Context, id string) error {
	const query = "DELETE FROM account WHERE id = $1"

	tag, err := repository.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("postgres_user_repo_delete_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

// List returns accounts matching the filter in creation order (UUIDv7 keys
// sort chronologically, so ordering by id is ordering by creation time).
func (repository *PostgresUserRepository) List(ctx context.Context, filter ListFilter) ([]*User, error) {
	query, args := buildListQuery("SELECT "+userColumns+" FROM account", filter, true)

	rows, err := repository.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres_user_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var result []*User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_user_repo_list_scan_failed: %w", err)
		}
		result = append(result, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_user_repo_list_rows_failed: %w", err)
	}

	return result, nil
}

// Count returns the total number of accounts matching the filter.
func (repository *PostgresUserRepository) Count(ctx context.Context, filter ListFilter) (int, error) {
	// Limit/Offset intentionally excluded from the count query.
	filter.Limit = 0
	filter.Offset = 0
	query, args := buildListQuery("SELECT COUNT(*) FROM account", filter, false)

	var total int
	if err := repository.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("postgres_user_repo_count_failed: %w", err)
	}

	return total, nil
}

// ListByAssignedDoctor returns every patient assigned to the doctor.
func (repository *PostgresUserRepository) ListByAssignedDoctor(ctx context.Context, doctorID string) ([]*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM account
		WHERE assigneddoctor = $1
		ORDER BY id`

	rows, err := repository.pool.Query(ctx, query, doctorID)
	if err != nil {
		return nil, fmt.Errorf("postgres_user_repo_list_by_doctor_failed: %w", err)
	}
	defer rows.Close()

	var result []*User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_user_repo_list_by_doctor_scan_failed: %w", err)
		}
		result = append(result, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_user_repo_list_by_doctor_rows_failed: %w", err)
	}

	return result, nil
}

// CountByRole returns account counts keyed by role string.
func (repository *PostgresUserRepository) CountByRole(ctx context.Context) (map[string]int, error) {
	const query = "SELECT role, COUNT(*) FROM account GROUP BY role"

	rows, err := repository.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres_user_repo_count_by_role_failed: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var role string
		var count int
		if err := rows.Scan(&role, &count); err != nil {
			return nil, fmt.Errorf("postgres_user_repo_count_by_role_scan_failed: %w", err)
		}
		counts[role] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_user_repo_count_by_role_rows_failed: %w", err)
	}

	return counts, nil
}

// buildListQuery composes the WHERE clause shared by List and Count.
func buildListQuery(base string, filter ListFilter, ordered bool) (string, []any) {
	var conditions []string
	var args []any

	if filter.Role != "" {
		args = append(args, filter.Role)
		conditions = append(conditions, "role = $"+strconv.Itoa(len(args)))
	}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		placeholder := "$" + strconv.Itoa(len(args))
		conditions = append(conditions, "(name ILIKE "+placeholder+" OR email ILIKE "+placeholder+")")
	}

	query := base
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	if ordered {
		query += " ORDER BY id"
	}

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += " LIMIT $" + strconv.Itoa(len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += " OFFSET $" + strconv.Itoa(len(args))
	}

	return query, args
}
