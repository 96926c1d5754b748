// Copyright (c) 2026 NutriSync. All rights reserved.

// Package food implements meal logging, nutrition summaries, and AI-assisted
// food photo analysis.
//
// # Architecture
//
// Food logs are document-shaped (free-form nutrition payloads, high write
// volume) and live in MongoDB, unlike the relational account and reminder
// data. Summaries are computed server-side with aggregation pipelines.
package food

import "time"

// Log sources.
const (
	SourceAI     = "ai"     // Vision sidecar analysis.
	SourceMock   = "mock"   // Deterministic fallback when the sidecar is down.
	SourceCache  = "cache"  // Previously analyzed image, served from Redis.
	SourceManual = "manual" // User-entered log.
)

// Meal types.
const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
	MealSnack     = "snack"
)

// validMealType reports whether the meal type belongs to the closed set.
func validMealType(mealType string) bool {
	switch mealType {
	case MealBreakfast, MealLunch, MealDinner, MealSnack:
		return true
	default:
		return false
	}
}

// Log represents one logged meal or snack.
type Log struct {
	ID            string    `json:"id"             bson:"_id"`
	UserID        string    `json:"user_id"        bson:"userid"`
	Food          string    `json:"food"           bson:"food"`
	Calories      float64   `json:"calories"       bson:"calories"`
	Protein       float64   `json:"protein"        bson:"protein"`
	Carbs         float64   `json:"carbs"          bson:"carbs"`
	Fat           float64   `json:"fat"            bson:"fat"`
	Confidence    string    `json:"confidence,omitempty"     bson:"confidence,omitempty"` // high | medium | low
	Details       string    `json:"details,omitempty"        bson:"details,omitempty"`
	Source        string    `json:"source"         bson:"source"`
	ImageFilename string    `json:"image_filename,omitempty" bson:"imagefilename,omitempty"`
	MealType      string    `json:"meal_type"      bson:"mealtype"`
	LoggedAt      time.Time `json:"logged_at"      bson:"loggedat"`
}

// Totals is a summed set of macros over some window.
type Totals struct {
	Calories float64 `json:"calories" bson:"calories"`
	Protein  float64 `json:"protein"  bson:"protein"`
	Carbs    float64 `json:"carbs"    bson:"carbs"`
	Fat      float64 `json:"fat"      bson:"fat"`
	Entries  int     `json:"entries"  bson:"entries"`
}

// DayTotals is one day's macro sum within a multi-day summary.
type DayTotals struct {
	Date   string `json:"date" bson:"_id"` // YYYY-MM-DD (UTC)
	Totals `bson:",inline"`
}

// Summary is the self-service nutrition overview: today's totals plus a
// per-day breakdown of the trailing week.
type Summary struct {
	Today Totals      `json:"today"`
	Week  []DayTotals `json:"week"`
}

// WeeklySummary is the doctor-facing 7-day aggregate for one patient.
type WeeklySummary struct {
	Total        Totals `json:"total"`
	DailyAverage Totals `json:"daily_average"`
	Days         int    `json:"days"`
}

// Analysis is the result of a food photo analysis, whatever its source.
type Analysis struct {
	Food       string  `json:"food"`
	Calories   float64 `json:"calories"`
	Protein    float64 `json:"protein"`
	Carbs      float64 `json:"carbs"`
	Fat        float64 `json:"fat"`
	Confidence string  `json:"confidence,omitempty"`
	Details    string  `json:"details,omitempty"`
	Source     string  `json:"source"`
}

// Usage is one recorded API-usage event, kept for the admin statistics
// breakdown (which external service was exercised, how it went, how long).
type Usage struct {
	ID        string    `json:"id"         bson:"_id"`
	UserID    string    `json:"user_id"    bson:"userid"`
	Service   string    `json:"service"    bson:"service"` // vision | messaging | internal
	Success   bool      `json:"success"    bson:"success"`
	LatencyMS int64     `json:"latency_ms" bson:"latencyms"`
	CreatedAt time.Time `json:"created_at" bson:"createdat"`
}

// Usage service names.
const (
	UsageServiceVision    = "vision"
	UsageServiceMessaging = "messaging"
	UsageServiceInternal  = "internal"
)
