// Copyright (c) 2026 NutriSync. All rights reserved.

package food

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutrisync/nutrisync/internal/platform/apperr"
	"github.com/nutrisync/nutrisync/internal/platform/metrics"
	"github.com/nutrisync/nutrisync/pkg/pagination"
)

// fakeLogRepository is an in-memory LogRepository.
type fakeLogRepository struct {
	logs []*Log
}

func (repo *fakeLogRepository) Insert(_ context.Context, log *Log) error {
	repo.logs = append(repo.logs, log)
	return nil
}

func (repo *fakeLogRepository) List(_ context.Context, userID string, filter LogFilter) ([]*Log, error) {
	var result []*Log
	for _, log := range repo.logs {
		if log.UserID == userID {
			result = append(result, log)
		}
	}
	return result, nil
}

func (repo *fakeLogRepository) Count(_ context.Context, userID string, filter LogFilter) (int, error) {
	logs, _ := repo.List(context.Background(), userID, filter)
	return len(logs), nil
}

func (repo *fakeLogRepository) Delete(_ context.Context, userID, logID string) error {
	for i, log := range repo.logs {
		if log.ID == logID && log.UserID == userID {
			repo.logs = append(repo.logs[:i], repo.logs[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound("Food log")
}

func (repo *fakeLogRepository) DeleteByUser(_ context.Context, userID string) error {
	var kept []*Log
	for _, log := range repo.logs {
		if log.UserID != userID {
			kept = append(kept, log)
		}
	}
	repo.logs = kept
	return nil
}

func (repo *fakeLogRepository) TotalsSince(_ context.Context, userID string, since time.Time) (*Totals, error) {
	totals := &Totals{}
	for _, log := range repo.logs {
		if log.UserID != userID || log.LoggedAt.Before(since) {
			continue
		}
		totals.Calories += log.Calories
		totals.Protein += log.Protein
		totals.Carbs += log.Carbs
		totals.Fat += log.Fat
		totals.Entries++
	}
	return totals, nil
}

func (repo *fakeLogRepository) DailyTotalsSince(_ context.Context, userID string, since time.Time) ([]DayTotals, error) {
	byDay := make(map[string]*DayTotals)
	for _, log := range repo.logs {
		if log.UserID != userID || log.LoggedAt.Before(since) {
			continue
		}
		day := log.LoggedAt.UTC().Format("2006-01-02")
		entry, ok := byDay[day]
		if !ok {
			entry = &DayTotals{Date: day}
			byDay[day] = entry
		}
		entry.Calories += log.Calories
		entry.Entries++
	}
	var result []DayTotals
	for _, entry := range byDay {
		result = append(result, *entry)
	}
	return result, nil
}

func (repo *fakeLogRepository) TotalCount(_ context.Context) (int64, error) {
	return int64(len(repo.logs)), nil
}

// fakeUsageRepository records usage events in memory.
type fakeUsageRepository struct {
	events []*Usage
}

func (repo *fakeUsageRepository) Record(_ context.Context, usage *Usage) error {
	repo.events = append(repo.events, usage)
	return nil
}

func (repo *fakeUsageRepository) CountByServiceSince(_ context.Context, since time.Time) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, event := range repo.events {
		counts[event.Service]++
	}
	return counts, nil
}

// fakeCache is an in-memory AnalysisCache.
type fakeCache struct {
	entries map[string]*Analysis
	getErr  error
	setErr  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]*Analysis)}
}

func (cache *fakeCache) Get(_ context.Context, imageHash string) (*Analysis, error) {
	if cache.getErr != nil {
		return nil, cache.getErr
	}
	analysis, ok := cache.entries[imageHash]
	if !ok {
		return nil, nil
	}
	clone := *analysis
	return &clone, nil
}

func (cache *fakeCache) Set(_ context.Context, imageHash string, analysis *Analysis) error {
	if cache.setErr != nil {
		return cache.setErr
	}
	clone := *analysis
	cache.entries[imageHash] = &clone
	return nil
}

// fakeAnalyzer serves a canned analysis or a canned error.
type fakeAnalyzer struct {
	analysis *Analysis
	err      error
	calls    int
}

func (analyzer *fakeAnalyzer) Analyze(_ context.Context, image []byte, filename, contentType string) (*Analysis, error) {
	analyzer.calls++
	if analyzer.err != nil {
		return nil, analyzer.err
	}
	clone := *analyzer.analysis
	return &clone, nil
}

func newTestFoodService(repo *fakeLogRepository, usage *fakeUsageRepository, cache *fakeCache, analyzer *fakeAnalyzer) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, usage, cache, analyzer, metrics.Noop{}, logger)
}

func hashOf(image []byte) string {
	sum := sha256.Sum256(image)
	return hex.EncodeToString(sum[:])
}

func TestLogMeal(t *testing.T) {
	repo := &fakeLogRepository{}
	service := newTestFoodService(repo, &fakeUsageRepository{}, newFakeCache(), &fakeAnalyzer{})

	log, err := service.LogMeal(context.Background(), "u-1", ManualLogInput{
		Food:     "Oatmeal",
		Calories: 150,
		Protein:  5,
		MealType: MealBreakfast,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, log.ID)
	assert.Equal(t, "u-1", log.UserID)
	assert.Equal(t, SourceManual, log.Source)
	assert.Equal(t, MealBreakfast, log.MealType)
	assert.False(t, log.LoggedAt.IsZero())
	assert.Len(t, repo.logs, 1)
}

func TestLogMealDefaultsToSnack(t *testing.T) {
	repo := &fakeLogRepository{}
	service := newTestFoodService(repo, &fakeUsageRepository{}, newFakeCache(), &fakeAnalyzer{})

	log, err := service.LogMeal(context.Background(), "u-1", ManualLogInput{Food: "Apple"})
	require.NoError(t, err)

	assert.Equal(t, MealSnack, log.MealType)
}

func TestLogMealValidation(t *testing.T) {
	service := newTestFoodService(&fakeLogRepository{}, &fakeUsageRepository{}, newFakeCache(), &fakeAnalyzer{})

	tests := []struct {
		name  string
		input ManualLogInput
	}{
		{name: "missing food", input: ManualLogInput{Calories: 100}},
		{name: "negative calories", input: ManualLogInput{Food: "Apple", Calories: -1}},
		{name: "negative protein", input: ManualLogInput{Food: "Apple", Protein: -1}},
		{name: "bad meal type", input: ManualLogInput{Food: "Apple", MealType: "brunch"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := service.LogMeal(context.Background(), "u-1", test.input)
			require.Error(t, err)

			var appErr *apperr.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
		})
	}
}

func TestAnalyzeImageCacheHit(t *testing.T) {
	image := []byte("same-photo")
	cache := newFakeCache()
	cache.entries[hashOf(image)] = &Analysis{
		Food:     "Banana",
		Calories: 105,
		Source:   SourceAI,
	}
	analyzer := &fakeAnalyzer{}
	usage := &fakeUsageRepository{}
	service := newTestFoodService(&fakeLogRepository{}, usage, cache, analyzer)

	result, err := service.AnalyzeImage(context.Background(), "u-1", image, "photo.jpg", "image/jpeg")
	require.NoError(t, err)

	assert.Equal(t, "Banana", result.Food)
	assert.Equal(t, SourceCache, result.Source)
	assert.Equal(t, 0, analyzer.calls)

	// A cache hit is billed as an internal lookup, not a vision call.
	require.Len(t, usage.events, 1)
	assert.Equal(t, UsageServiceInternal, usage.events[0].Service)
	assert.True(t, usage.events[0].Success)
}

func TestAnalyzeImageSidecarSuccess(t *testing.T) {
	image := []byte("fresh-photo")
	cache := newFakeCache()
	analyzer := &fakeAnalyzer{
		analysis: &Analysis{Food: "Salad", Calories: 200, Confidence: "high", Source: SourceAI},
	}
	usage := &fakeUsageRepository{}
	service := newTestFoodService(&fakeLogRepository{}, usage, cache, analyzer)

	result, err := service.AnalyzeImage(context.Background(), "u-1", image, "photo.jpg", "image/jpeg")
	require.NoError(t, err)

	assert.Equal(t, "Salad", result.Food)
	assert.Equal(t, SourceAI, result.Source)
	assert.Equal(t, "photo.jpg", result.Filename)

	// The sidecar answer lands in the cache under the image hash.
	cached, err := cache.Get(context.Background(), hashOf(image))
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, "Salad", cached.Food)

	require.Len(t, usage.events, 1)
	assert.Equal(t, UsageServiceVision, usage.events[0].Service)
	assert.True(t, usage.events[0].Success)
}

func TestAnalyzeImageMockFallback(t *testing.T) {
	image := []byte("offline-photo")
	cache := newFakeCache()
	analyzer := &fakeAnalyzer{err: apperr.Upstream("Vision service", errors.New("connection refused"))}
	usage := &fakeUsageRepository{}
	service := newTestFoodService(&fakeLogRepository{}, usage, cache, analyzer)

	result, err := service.AnalyzeImage(context.Background(), "u-1", image, "photo.jpg", "image/jpeg")
	require.NoError(t, err)

	assert.Equal(t, SourceMock, result.Source)
	assert.NotEmpty(t, result.Food)

	// The mock answer is never cached; it is already deterministic by hash.
	cached, err := cache.Get(context.Background(), hashOf(image))
	require.NoError(t, err)
	assert.Nil(t, cached)

	// The failed sidecar attempt is still billed as a vision call.
	require.Len(t, usage.events, 1)
	assert.Equal(t, UsageServiceVision, usage.events[0].Service)
	assert.False(t, usage.events[0].Success)
}

func TestAnalyzeImageMockIsDeterministic(t *testing.T) {
	image := []byte("offline-photo")
	analyzer := &fakeAnalyzer{err: apperr.Upstream("Vision service", errors.New("connection refused"))}
	service := newTestFoodService(&fakeLogRepository{}, &fakeUsageRepository{}, newFakeCache(), analyzer)

	first, err := service.AnalyzeImage(context.Background(), "u-1", image, "photo.jpg", "image/jpeg")
	require.NoError(t, err)

	second, err := service.AnalyzeImage(context.Background(), "u-1", image, "photo.jpg", "image/jpeg")
	require.NoError(t, err)

	assert.Equal(t, first.Food, second.Food)
	assert.Equal(t, first.Calories, second.Calories)
}

func TestAnalyzeImageNonUpstreamErrorIsFatal(t *testing.T) {
	analyzer := &fakeAnalyzer{err: errors.New("programming error")}
	service := newTestFoodService(&fakeLogRepository{}, &fakeUsageRepository{}, newFakeCache(), analyzer)

	_, err := service.AnalyzeImage(context.Background(), "u-1", []byte("photo"), "photo.jpg", "image/jpeg")
	assert.Error(t, err)
}

func TestAnalyzeImageCacheFailureDegradesToSidecar(t *testing.T) {
	cache := newFakeCache()
	cache.getErr = errors.New("redis down")
	analyzer := &fakeAnalyzer{
		analysis: &Analysis{Food: "Salad", Source: SourceAI},
	}
	service := newTestFoodService(&fakeLogRepository{}, &fakeUsageRepository{}, cache, analyzer)

	result, err := service.AnalyzeImage(context.Background(), "u-1", []byte("photo"), "photo.jpg", "image/jpeg")
	require.NoError(t, err)

	assert.Equal(t, "Salad", result.Food)
	assert.Equal(t, 1, analyzer.calls)
}

func TestPatientWeeklySummaryAverages(t *testing.T) {
	now := time.Now().UTC()
	repo := &fakeLogRepository{logs: []*Log{
		{ID: "l-1", UserID: "u-1", Calories: 300, LoggedAt: now.Add(-2 * time.Hour)},
		{ID: "l-2", UserID: "u-1", Calories: 500, LoggedAt: now.Add(-26 * time.Hour)},
	}}
	service := newTestFoodService(repo, &fakeUsageRepository{}, newFakeCache(), &fakeAnalyzer{})

	summary, err := service.PatientWeeklySummary(context.Background(), "u-1")
	require.NoError(t, err)

	assert.Equal(t, float64(800), summary.Total.Calories)
	assert.Equal(t, 2, summary.Days)
	assert.Equal(t, float64(400), summary.DailyAverage.Calories)
}

func TestPurgeUserRemovesAllLogs(t *testing.T) {
	repo := &fakeLogRepository{logs: []*Log{
		{ID: "l-1", UserID: "u-1"},
		{ID: "l-2", UserID: "u-1"},
		{ID: "l-3", UserID: "u-2"},
	}}
	service := newTestFoodService(repo, &fakeUsageRepository{}, newFakeCache(), &fakeAnalyzer{})

	err := service.PurgeUser(context.Background(), "u-1")
	require.NoError(t, err)

	require.Len(t, repo.logs, 1)
	assert.Equal(t, "u-2", repo.logs[0].UserID)
}

func TestLogsPaginationMeta(t *testing.T) {
	repo := &fakeLogRepository{logs: []*Log{
		{ID: "l-1", UserID: "u-1"},
		{ID: "l-2", UserID: "u-1"},
	}}
	service := newTestFoodService(repo, &fakeUsageRepository{}, newFakeCache(), &fakeAnalyzer{})

	logs, meta, err := service.Logs(context.Background(), "u-1", pagination.Params{Page: 1, Limit: 20}, LogFilter{})
	require.NoError(t, err)

	assert.Len(t, logs, 2)
	assert.Equal(t, 2, meta.Total)
	assert.Equal(t, 1, meta.TotalPages)
}
