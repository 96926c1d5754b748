// Copyright (c) 2026 NutriSync. All rights reserved.

// Food tracking use cases: manual logging, listings, nutrition summaries,
// and the cache → sidecar → mock analysis pipeline.
package food

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/nutrisync/nutrisync/internal/platform/apperr"
	"github.com/nutrisync/nutrisync/internal/platform/metrics"
	"github.com/nutrisync/nutrisync/internal/platform/validate"
	"github.com/nutrisync/nutrisync/pkg/pagination"
	"github.com/nutrisync/nutrisync/pkg/uuid"
)

// summaryWindow is the look-back for weekly summaries.
const summaryWindow = 7 * 24 * time.Hour

// Service implements the food tracking use cases.
type Service struct {
	logRepository   LogRepository
	usageRepository UsageRepository
	analysisCache   AnalysisCache
	analyzer        Analyzer
	recorder        metrics.Recorder
	logger          *slog.Logger
	now             func() time.Time
}

// NewService constructs a new [Service] with its dependencies.
func NewService(
	logRepo LogRepository,
	usageRepo UsageRepository,
	cache AnalysisCache,
	analyzer Analyzer,
	recorder metrics.Recorder,
	logger *slog.Logger,
) *Service {
	return &Service{
		logRepository:   logRepo,
		usageRepository: usageRepo,
		analysisCache:   cache,
		analyzer:        analyzer,
		recorder:        recorder,
		logger:          logger,
		now:             time.Now,
	}
}

// ManualLogInput holds a user-entered meal entry.
type ManualLogInput struct {
	Food     string
	Calories float64
	Protein  float64
	Carbs    float64
	Fat      float64
	MealType string
	// LoggedAt defaults to now when nil.
	LoggedAt *time.Time
}

// LogMeal validates and persists a manual food log entry.
//
// # Business Rules
//   - Food name is required; macros default to zero but are never negative.
//   - MealType defaults to snack (matching the mobile client's behavior).
func (service *Service) LogMeal(context context.Context, userID string, input ManualLogInput) (*Log, error) {
	// ── 1. Boundary Validation ────────────────────────────────────────────

	mealType := input.MealType
	if mealType == "" {
		mealType = MealSnack
	}

	validator := &validate.Validator{}
	err := validator.
		Required("food", input.Food).
		NonNegative("calories", input.Calories).
		NonNegative("protein", input.Protein).
		NonNegative("carbs", input.Carbs).
		NonNegative("fat", input.Fat).
		Custom("meal_type", !validMealType(mealType), "Must be one of: breakfast, lunch, dinner, snack").
		Err()
	if err != nil {
		return nil, err
	}

	// ── 2. Entity Construction ────────────────────────────────────────────

	loggedAt := service.now()
	if input.LoggedAt != nil {
		loggedAt = *input.LoggedAt
	}

	log := &Log{
		ID:       uuid.New(),
		UserID:   userID,
		Food:     input.Food,
		Calories: input.Calories,
		Protein:  input.Protein,
		Carbs:    input.Carbs,
		Fat:      input.Fat,
		Source:   SourceManual,
		MealType: mealType,
		LoggedAt: loggedAt,
	}

	// ── 3. Persistence ────────────────────────────────────────────────────

	if err := service.logRepository.Insert(context, log); err != nil {
		return nil, err
	}

	return log, nil
}

// Logs returns the user's food logs with pagination metadata.
func (service *Service) Logs(context context.Context, userID string, params pagination.Params, filter LogFilter) ([]*Log, pagination.Meta, error) {
	filter.Limit = params.Limit
	filter.Offset = params.Offset()

	logs, err := service.logRepository.List(context, userID, filter)
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	total, err := service.logRepository.Count(context, userID, filter)
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	return logs, pagination.NewMeta(params.Page, params.Limit, total), nil
}

// DeleteLog removes a single log owned by the user.
func (service *Service) DeleteLog(context context.Context, userID, logID string) error {
	return service.logRepository.Delete(context, userID, logID)
}

// Summary returns today's totals plus a per-day breakdown of the trailing
// week, both computed server-side by the document store.
func (service *Service) Summary(context context.Context, userID string) (*Summary, error) {
	currentTime := service.now().UTC()
	startOfDay := time.Date(currentTime.Year(), currentTime.Month(), currentTime.Day(), 0, 0, 0, 0, time.UTC)

	today, err := service.logRepository.TotalsSince(context, userID, startOfDay)
	if err != nil {
		return nil, err
	}

	week, err := service.logRepository.DailyTotalsSince(context, userID, currentTime.Add(-summaryWindow))
	if err != nil {
		return nil, err
	}

	return &Summary{Today: *today, Week: week}, nil
}

// AnalyzeResult is the response payload of an image analysis. The embedded
// Analysis fields are flattened into the JSON object.
type AnalyzeResult struct {
	Filename string `json:"filename"`
	Analysis
}

// AnalyzeImage runs the photo analysis pipeline: content-hash cache lookup,
// then the vision sidecar, then the deterministic mock fallback.
//
// # Resilience
//
// A sidecar failure is never fatal to the request — the mock table answers
// instead, selected by image hash so the response is reproducible. Only
// genuine sidecar results are cached; the mock needs no cache because it is
// already deterministic.
func (service *Service) AnalyzeImage(context context.Context, userID string, image []byte, filename, contentType string) (*AnalyzeResult, error) {
	hashBytes := sha256.Sum256(image)
	imageHash := hex.EncodeToString(hashBytes[:])

	// ── 1. Cache Lookup ───────────────────────────────────────────────────

	cached, err := service.analysisCache.Get(context, imageHash)
	if err != nil {
		// Cache trouble degrades to a sidecar call; log and continue.
		service.logger.WarnContext(context, "analysis_cache_get_failed", slog.Any("error", err))
	}
	if cached != nil {
		result := *cached
		result.Source = SourceCache

		service.recorder.RecordVisionAnalysis(metrics.VisionSourceCache)
		service.recordUsage(context, userID, UsageServiceInternal, true, 0)

		return &AnalyzeResult{Filename: filename, Analysis: result}, nil
	}

	// ── 2. Sidecar Analysis ───────────────────────────────────────────────

	startTime := service.now()
	analysis, err := service.analyzer.Analyze(context, image, filename, contentType)
	latency := time.Since(startTime)

	service.recorder.RecordVisionLatency(latency)

	if err != nil {
		if !apperr.IsUpstream(err) {
			return nil, fmt.Errorf("food_service_analyze_failed: %w", err)
		}

		// ── 3. Mock Fallback ──────────────────────────────────────────────

		service.logger.WarnContext(context, "vision_sidecar_unavailable_using_mock",
			slog.Any("error", err),
		)
		service.recorder.RecordVisionAnalysis(metrics.VisionSourceMock)
		service.recordUsage(context, userID, UsageServiceVision, false, latency.Milliseconds())

		return &AnalyzeResult{Filename: filename, Analysis: *MockAnalysis(imageHash)}, nil
	}

	// ── 4. Cache Population & Bookkeeping ─────────────────────────────────

	if err := service.analysisCache.Set(context, imageHash, analysis); err != nil {
		service.logger.WarnContext(context, "analysis_cache_set_failed", slog.Any("error", err))
	}

	service.recorder.RecordVisionAnalysis(metrics.VisionSourceAI)
	service.recordUsage(context, userID, UsageServiceVision, true, latency.Milliseconds())

	return &AnalyzeResult{Filename: filename, Analysis: *analysis}, nil
}

// recordUsage persists a usage event; failures are logged, never propagated.
func (service *Service) recordUsage(context context.Context, userID, serviceName string, success bool, latencyMS int64) {
	err := service.usageRepository.Record(context, &Usage{
		ID:        uuid.New(),
		UserID:    userID,
		Service:   serviceName,
		Success:   success,
		LatencyMS: latencyMS,
		CreatedAt: service.now(),
	})
	if err != nil {
		service.logger.WarnContext(context, "usage_event_record_failed", slog.Any("error", err))
	}
}

// ── Cross-Domain Contracts (consumed by the users package) ───────────────────

// PurgeUser removes every log owned by a deleted account.
func (service *Service) PurgeUser(context context.Context, userID string) error {
	return service.logRepository.DeleteByUser(context, userID)
}

// PatientLogs returns a patient's logs for their assigned doctor.
func (service *Service) PatientLogs(context context.Context, userID string, params pagination.Params, from, to *time.Time) ([]*Log, int, error) {
	filter := LogFilter{
		From:   from,
		To:     to,
		Limit:  params.Limit,
		Offset: params.Offset(),
	}

	logs, err := service.logRepository.List(context, userID, filter)
	if err != nil {
		return nil, 0, err
	}

	total, err := service.logRepository.Count(context, userID, filter)
	if err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

// PatientWeeklySummary returns the doctor-facing 7-day aggregate.
func (service *Service) PatientWeeklySummary(context context.Context, userID string) (*WeeklySummary, error) {
	since := service.now().Add(-summaryWindow)

	total, err := service.logRepository.TotalsSince(context, userID, since)
	if err != nil {
		return nil, err
	}

	days, err := service.logRepository.DailyTotalsSince(context, userID, since)
	if err != nil {
		return nil, err
	}

	summary := &WeeklySummary{Total: *total, Days: len(days)}
	if summary.Days > 0 {
		divisor := float64(summary.Days)
		summary.DailyAverage = Totals{
			Calories: total.Calories / divisor,
			Protein:  total.Protein / divisor,
			Carbs:    total.Carbs / divisor,
			Fat:      total.Fat / divisor,
			Entries:  total.Entries / summary.Days,
		}
	}

	return summary, nil
}

// TotalLogs returns the all-time log count for admin statistics.
func (service *Service) TotalLogs(context context.Context) (int64, error) {
	return service.logRepository.TotalCount(context)
}

// UsageSince returns the usage breakdown for admin statistics.
func (service *Service) UsageSince(context context.Context, since time.Time) (map[string]int64, error) {
	return service.usageRepository.CountByServiceSince(context, since)
}
