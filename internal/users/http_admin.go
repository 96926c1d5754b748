// Copyright (c) 2026 NutriSync. All rights reserved.

// HTTP delivery layer for the admin console endpoints. Mounted behind
// RequireRole(admin) in the server router.
package users

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/nutrisync/nutrisync/internal/platform/request"
	"github.com/nutrisync/nutrisync/internal/platform/respond"
	"github.com/nutrisync/nutrisync/internal/platform/validate"
	"github.com/nutrisync/nutrisync/pkg/pagination"
)

// AdminHandler implements the account-administration HTTP endpoints.
type AdminHandler struct {
	userService *Service
}

// NewAdminHandler constructs a new [AdminHandler] with its service dependency.
func NewAdminHandler(service *Service) *AdminHandler {
	return &AdminHandler{userService: service}
}

// Routes returns a [chi.Router] configured with administration routes.
//
// # Endpoints
//   - GET    /users             : Paginated account listing with filters.
//   - PATCH  /users/{id}/role   : Changes an account's role.
//   - DELETE /users/{id}        : Deletes an account and its data.
//   - POST   /assign-patient    : Links a patient to a doctor.
//   - GET    /stats             : Platform statistics.
func (handler *AdminHandler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/users", handler.listUsers)
	router.Patch("/users/{id}/role", handler.changeRole)
	router.Delete("/users/{id}", handler.deleteUser)
	router.Post("/assign-patient", handler.assignPatient)
	router.Get("/stats", handler.stats)

	return router
}

// listUsers handles GET /api/v1/admin/users requests.
//
// # Query Parameters
//   - page, limit : Pagination (clamped by the pagination package).
//   - role        : Optional exact role filter.
//   - search      : Optional case-insensitive name/email substring.
func (handler *AdminHandler) listUsers(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	filter := ListFilter{
		Role:   request.URL.Query().Get("role"),
		Search: request.URL.Query().Get("search"),
	}

	accounts, meta, err := handler.userService.ListUsers(request.Context(), filter, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, accounts, meta)
}

// changeRoleRequest represents the JSON payload for a role change.
type changeRoleRequest struct {
	Role string `json:"role"`
}

// changeRole handles PATCH /api/v1/admin/users/{id}/role requests.
//
// # Returns
//   - Writes HTTP 200 OK with the updated account.
//   - Writes HTTP 400 Bad Request if the role is outside the closed set.
//   - Writes HTTP 404 Not Found if the target does not exist.
func (handler *AdminHandler) changeRole(writer http.ResponseWriter, request *http.Request) {
	var input changeRoleRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.userService.ChangeRole(request.Context(), requestutil.ID(request, "id"), input.Role)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// deleteUser handles DELETE /api/v1/admin/users/{id} requests.
//
// # Returns
//   - Writes HTTP 204 No Content on success.
//   - Writes HTTP 400 Bad Request when the admin targets themselves.
//   - Writes HTTP 404 Not Found if the target does not exist.
func (handler *AdminHandler) deleteUser(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.userService.DeleteUser(request.Context(), identity.ID, requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// assignPatientRequest represents the JSON payload for a doctor assignment.
type assignPatientRequest struct {
	DoctorID  string `json:"doctorId"`
	PatientID string `json:"patientId"`
}

// assignPatient handles POST /api/v1/admin/assign-patient requests.
//
// # Returns
//   - Writes HTTP 200 OK on success (including re-assignments, which are
//     idempotent no-ops).
//   - Writes HTTP 400 Bad Request if either party has the wrong role.
//   - Writes HTTP 404 Not Found if either account does not exist.
func (handler *AdminHandler) assignPatient(writer http.ResponseWriter, request *http.Request) {
	var input assignPatientRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if input.DoctorID == "" || input.PatientID == "" {
		respond.Error(writer, request, validate.RequiredError("doctorId/patientId", "are required"))
		return
	}

	if err := handler.userService.AssignPatient(request.Context(), input.DoctorID, input.PatientID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{"status": "assigned"})
}

// stats handles GET /api/v1/admin/stats requests.
func (handler *AdminHandler) stats(writer http.ResponseWriter, request *http.Request) {
	statistics, err := handler.userService.Stats(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, statistics)
}
