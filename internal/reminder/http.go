// Copyright (c) 2026 NutriSync. All rights reserved.

// HTTP delivery layer for the reminder endpoints. Mounted behind RequireAuth
// in the server router; every route is owner-scoped.
package reminder

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/nutrisync/nutrisync/internal/platform/request"
	"github.com/nutrisync/nutrisync/internal/platform/respond"
)

// Handler implements the reminder HTTP endpoints.
type Handler struct {
	reminderService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{reminderService: service}
}

// Routes returns a [chi.Router] configured with reminder routes.
//
// # Endpoints
//   - GET    /     : The caller's reminders, soonest first.
//   - POST   /     : Schedules a new reminder.
//   - DELETE /{id} : Deletes one of the caller's reminders.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.list)
	router.Post("/", handler.create)
	router.Delete("/{id}", handler.delete)

	return router
}

// createRequest represents the JSON payload for scheduling a reminder.
type createRequest struct {
	Message     string    `json:"message"`
	ScheduledAt time.Time `json:"scheduledAt"`
}

// create handles POST /api/v1/reminders requests.
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	reminder, err := handler.reminderService.Create(request.Context(), accountID, CreateInput{
		Message:     input.Message,
		ScheduledAt: input.ScheduledAt,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, reminder)
}

// list handles GET /api/v1/reminders requests.
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	reminders, err := handler.reminderService.List(request.Context(), accountID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, reminders)
}

// delete handles DELETE /api/v1/reminders/{id} requests.
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.reminderService.Delete(request.Context(), accountID, requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
