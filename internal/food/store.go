// Copyright (c) 2026 NutriSync. All rights reserved.

package food

import (
	"context"
	"time"
)

// LogFilter narrows a food log listing.
type LogFilter struct {
	// From/To bound LoggedAt when non-nil.
	From *time.Time
	To   *time.Time
	// MealType filters to one meal type when non-empty.
	MealType string
	// Limit and Offset implement page-based navigation.
	Limit  int
	Offset int
}

// LogRepository defines the data access contract for food logs.
//
// # Implementations
//
// The canonical implementation is MongoDB (store_mongo.go); summaries are
// aggregation pipelines executed server-side.
type LogRepository interface {
	// Insert persists a new food log entry.
	Insert(ctx context.Context, log *Log) error

	// List returns the user's logs newest-first, honoring the filter.
	List(ctx context.Context, userID string, filter LogFilter) ([]*Log, error)

	// Count returns the number of the user's logs matching the filter,
	// ignoring Limit/Offset.
	Count(ctx context.Context, userID string, filter LogFilter) (int, error)

	// Delete removes a single log owned by the user.
	//
	// Returns [apperr.NotFound] when the log does not exist or belongs to
	// someone else — ownership failures are indistinguishable from absence.
	Delete(ctx context.Context, userID, logID string) error

	// DeleteByUser removes every log owned by the user (admin cascade).
	DeleteByUser(ctx context.Context, userID string) error

	// TotalsSince sums the user's macros for entries logged at or after the
	// cutoff.
	TotalsSince(ctx context.Context, userID string, since time.Time) (*Totals, error)

	// DailyTotalsSince groups the user's macros per UTC day at or after the
	// cutoff, oldest day first.
	DailyTotalsSince(ctx context.Context, userID string, since time.Time) ([]DayTotals, error)

	// TotalCount returns the all-time log count across all users.
	TotalCount(ctx context.Context) (int64, error)
}

// UsageRepository records and aggregates API usage events.
type UsageRepository interface {
	// Record persists one usage event. Failures here must never fail the
	// user-facing request; callers log and continue.
	Record(ctx context.Context, usage *Usage) error

	// CountByServiceSince returns event counts keyed by service name for
	// events created at or after the cutoff.
	CountByServiceSince(ctx context.Context, since time.Time) (map[string]int64, error)
}

// AnalysisCache stores vision analysis results keyed by image content hash.
//
// # Implementations
//
// Redis with a TTL (cache_redis.go). A miss is (nil, nil), not an error.
type AnalysisCache interface {
	// Get returns the cached analysis for the hash, or (nil, nil) on miss.
	Get(ctx context.Context, imageHash string) (*Analysis, error)

	// Set stores the analysis under the hash with the configured TTL.
	Set(ctx context.Context, imageHash string, analysis *Analysis) error
}
