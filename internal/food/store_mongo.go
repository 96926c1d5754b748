// Copyright (c) 2026 NutriSync. All rights reserved.

// MongoDB implementation of the food log and usage storage layer.
//
// # Query Shape
//
// Listings use indexed find() queries (userid + loggedat); summaries and the
// usage breakdown run $match/$group aggregation pipelines server-side so the
// API process never streams raw documents to compute a sum.
package food

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nutrisync/nutrisync/internal/platform/apperr"
	"github.com/nutrisync/nutrisync/internal/platform/constants"
)

// MongoLogRepository implements LogRepository on a MongoDB collection.
type MongoLogRepository struct {
	collection *mongo.Collection
}

// NewLogRepository creates a new MongoDB implementation of the LogRepository.
func NewLogRepository(database *mongo.Database) *MongoLogRepository {
	return &MongoLogRepository{collection: database.Collection(constants.CollectionFoodLogs)}
}

// Insert persists a new food log entry.
func (repository *MongoLogRepository) Insert(ctx context.Context, log *Log) error {
	if _, err := repository.collection.InsertOne(ctx, log); err != nil {
		return fmt.Errorf("mongo_log_repo_insert_failed: %w", err)
	}
	return nil
}

// logQuery builds the find() filter shared by List and Count.
func logQuery(userID string, filter LogFilter) bson.M {
	query := bson.M{"userid": userID}

	timeRange := bson.M{}
	if filter.From != nil {
		timeRange["$gte"] = *filter.From
	}
	if filter.To != nil {
		timeRange["$lte"] = *filter.To
	}
	if len(timeRange) > 0 {
		query["loggedat"] = timeRange
	}

	if filter.MealType != "" {
		query["mealtype"] = filter.MealType
	}

	return query
}

// List returns the user's logs newest-first, honoring the filter.
func (repository *MongoLogRepository) List(ctx context.Context, userID string, filter LogFilter) ([]*Log, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "loggedat", Value: -1}})
	if filter.Limit > 0 {
		findOptions.SetLimit(int64(filter.Limit))
	}
	if filter.Offset > 0 {
		findOptions.SetSkip(int64(filter.Offset))
	}

	cursor, err := repository.collection.Find(ctx, logQuery(userID, filter), findOptions)
	if err != nil {
		return nil, fmt.Errorf("mongo_log_repo_list_failed: %w", err)
	}
	defer cursor.Close(ctx)

	var logs []*Log
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, fmt.Errorf("mongo_log_repo_list_decode_failed: %w", err)
	}

	return logs, nil
}

// Count returns the number of the user's logs matching the filter.
func (repository *MongoLogRepository) Count(ctx context.Context, userID string, filter LogFilter) (int, error) {
	total, err := repository.collection.CountDocuments(ctx, logQuery(userID, filter))
	if err != nil {
		return 0, fmt.Errorf("mongo_log_repo_count_failed: %w", err)
	}
	return int(total), nil
}

// Delete removes a single log owned by the user.
func (repository *MongoLogRepository) Delete(ctx context.Context, userID, logID string) error {
	// Ownership is part of the filter: deleting someone else's log looks
	// exactly like deleting a log that never existed.
	result, err := repository.collection.DeleteOne(ctx, bson.M{"_id": logID, "userid": userID})
	if err != nil {
		return fmt.Errorf("mongo_log_repo_delete_failed: %w", err)
	}
	if result.DeletedCount == 0 {
		return apperr.NotFound("Food log")
	}
	return nil
}

// DeleteByUser removes every log owned by the user (admin cascade).
func (repository *MongoLogRepository) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := repository.collection.DeleteMany(ctx, bson.M{"userid": userID}); err != nil {
		return fmt.Errorf("mongo_log_repo_delete_by_user_failed: %w", err)
	}
	return nil
}

// totalsGroup is the shared $group stage summing macros.
var totalsGroup = bson.M{
	"calories": bson.M{"$sum": "$calories"},
	"protein":  bson.M{"$sum": "$protein"},
	"carbs":    bson.M{"$sum": "$carbs"},
	"fat":      bson.M{"$sum": "$fat"},
	"entries":  bson.M{"$sum": 1},
}

// TotalsSince sums the user's macros for entries at or after the cutoff.
func (repository *MongoLogRepository) TotalsSince(ctx context.Context, userID string, since time.Time) (*Totals, error) {
	group := bson.M{"_id": nil}
	for key, value := range totalsGroup {
		group[key] = value
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"userid": userID, "loggedat": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: group}},
	}

	cursor, err := repository.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("mongo_log_repo_totals_failed: %w", err)
	}
	defer cursor.Close(ctx)

	var results []Totals
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("mongo_log_repo_totals_decode_failed: %w", err)
	}

	// No matching documents means zero totals, not an error.
	if len(results) == 0 {
		return &Totals{}, nil
	}

	return &results[0], nil
}

// DailyTotalsSince groups the user's macros per UTC day, oldest day first.
func (repository *MongoLogRepository) DailyTotalsSince(ctx context.Context, userID string, since time.Time) ([]DayTotals, error) {
	group := bson.M{
		"_id": bson.M{"$dateToString": bson.M{
			"format":   "%Y-%m-%d",
			"date":     "$loggedat",
			"timezone": "UTC",
		}},
	}
	for key, value := range totalsGroup {
		group[key] = value
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"userid": userID, "loggedat": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: group}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}

	cursor, err := repository.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("mongo_log_repo_daily_totals_failed: %w", err)
	}
	defer cursor.Close(ctx)

	var results []DayTotals
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("mongo_log_repo_daily_totals_decode_failed: %w", err)
	}

	return results, nil
}

// TotalCount returns the all-time log count across all users.
func (repository *MongoLogRepository) TotalCount(ctx context.Context) (int64, error) {
	total, err := repository.collection.EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("mongo_log_repo_total_count_failed: %w", err)
	}
	return total, nil
}

// EnsureIndexes creates the indexes the query shapes above rely on.
// Called once at startup; CreateMany is idempotent.
func (repository *MongoLogRepository) EnsureIndexes(ctx context.Context) error {
	_, err := repository.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userid", Value: 1}, {Key: "loggedat", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("mongo_log_repo_ensure_indexes_failed: %w", err)
	}
	return nil
}

// ── Usage Repository ─────────────────────────────────────────────────────────

// MongoUsageRepository implements UsageRepository on a MongoDB collection.
type MongoUsageRepository struct {
	collection *mongo.Collection
}

// NewUsageRepository creates a new MongoDB implementation of UsageRepository.
func NewUsageRepository(database *mongo.Database) *MongoUsageRepository {
	return &MongoUsageRepository{collection: database.Collection(constants.CollectionAPIUsage)}
}

// Record persists one usage event.
func (repository *MongoUsageRepository) Record(ctx context.Context, usage *Usage) error {
	if usage.CreatedAt.IsZero() {
		usage.CreatedAt = time.Now()
	}
	if _, err := repository.collection.InsertOne(ctx, usage); err != nil {
		return fmt.Errorf("mongo_usage_repo_record_failed: %w", err)
	}
	return nil
}

// CountByServiceSince returns event counts keyed by service name.
func (repository *MongoUsageRepository) CountByServiceSince(ctx context.Context, since time.Time) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"createdat": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$service",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := repository.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("mongo_usage_repo_breakdown_failed: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Service string `bson:"_id"`
		Count   int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("mongo_usage_repo_breakdown_decode_failed: %w", err)
	}

	breakdown := make(map[string]int64, len(rows))
	for _, row := range rows {
		breakdown[row.Service] = row.Count
	}

	return breakdown, nil
}
