// Copyright (c) 2026 NutriSync. All rights reserved.

// HTTP delivery layer for the food tracking endpoints. Mounted behind
// RequireAuth in the server router; every route is owner-scoped.
package food

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nutrisync/nutrisync/internal/platform/constants"
	requestutil "github.com/nutrisync/nutrisync/internal/platform/request"
	"github.com/nutrisync/nutrisync/internal/platform/respond"
	"github.com/nutrisync/nutrisync/internal/platform/validate"
	"github.com/nutrisync/nutrisync/pkg/pagination"
)

// Handler implements the food tracking HTTP endpoints.
type Handler struct {
	foodService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{foodService: service}
}

// Routes returns a [chi.Router] configured with food tracking routes.
//
// # Endpoints
//   - GET    /logs          : The caller's logs, paginated and filterable.
//   - POST   /log           : Creates a manual log entry.
//   - DELETE /logs/{id}     : Deletes one of the caller's logs.
//   - GET    /summary       : Today's totals plus the trailing week.
//   - POST   /analyze-image : Analyzes a food photo (multipart).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/logs", handler.listLogs)
	router.Post("/log", handler.logMeal)
	router.Delete("/logs/{id}", handler.deleteLog)
	router.Get("/summary", handler.summary)
	router.Post("/analyze-image", handler.analyzeImage)

	return router
}

// listLogs handles GET /api/v1/food/logs requests.
//
// # Query Parameters
//   - page, limit : Pagination.
//   - from, to    : Optional RFC 3339 date-range bounds.
//   - meal_type   : Optional exact meal-type filter.
func (handler *Handler) listLogs(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)
	filter := LogFilter{
		From:     parseTimeParam(request, "from"),
		To:       parseTimeParam(request, "to"),
		MealType: request.URL.Query().Get("meal_type"),
	}

	logs, meta, err := handler.foodService.Logs(request.Context(), userID, params, filter)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, logs, meta)
}

// logMealRequest represents the JSON payload for a manual log entry.
type logMealRequest struct {
	Food     string     `json:"food"`
	Calories float64    `json:"calories"`
	Protein  float64    `json:"protein"`
	Carbs    float64    `json:"carbs"`
	Fat      float64    `json:"fat"`
	MealType string     `json:"meal_type"`
	LoggedAt *time.Time `json:"logged_at"`
}

// logMeal handles POST /api/v1/food/log requests.
func (handler *Handler) logMeal(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input logMealRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	log, err := handler.foodService.LogMeal(request.Context(), userID, ManualLogInput{
		Food:     input.Food,
		Calories: input.Calories,
		Protein:  input.Protein,
		Carbs:    input.Carbs,
		Fat:      input.Fat,
		MealType: input.MealType,
		LoggedAt: input.LoggedAt,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, log)
}

// deleteLog handles DELETE /api/v1/food/logs/{id} requests.
func (handler *Handler) deleteLog(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.foodService.DeleteLog(request.Context(), userID, requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// summary handles GET /api/v1/food/summary requests.
func (handler *Handler) summary(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	nutritionSummary, err := handler.foodService.Summary(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, nutritionSummary)
}

// analyzeImage handles POST /api/v1/food/analyze-image requests.
//
// # Upload Contract
//
// Multipart form, field name "foodImage", image content types only, capped
// at [constants.VisionMaxImageBytes].
func (handler *Handler) analyzeImage(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 1. Upload Extraction ──────────────────────────────────────────────

	request.Body = http.MaxBytesReader(writer, request.Body, constants.VisionMaxImageBytes)

	file, header, err := request.FormFile("foodImage")
	if err != nil {
		respond.Error(writer, request, validate.RequiredError("foodImage", "No image file provided"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		respond.Error(writer, request, validate.RequiredError("foodImage", "Only image uploads are accepted"))
		return
	}

	image, err := io.ReadAll(file)
	if err != nil {
		respond.Error(writer, request, validate.RequiredError("foodImage", "Could not read image upload"))
		return
	}

	// ── 2. Analysis Pipeline ──────────────────────────────────────────────

	result, err := handler.foodService.AnalyzeImage(request.Context(), userID, image, header.Filename, contentType)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

// parseTimeParam reads an optional RFC 3339 query parameter. Unparseable
// values are treated as absent rather than failing the request.
func parseTimeParam(request *http.Request, name string) *time.Time {
	raw := request.URL.Query().Get(name)
	if raw == "" {
		return nil
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}

	return &parsed
}
