// Copyright (c) 2026 NutriSync. All rights reserved.

// HTTP delivery layer for the doctor endpoints. Mounted behind
// RequireRole(doctor) in the server router.
package users

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/nutrisync/nutrisync/internal/platform/request"
	"github.com/nutrisync/nutrisync/internal/platform/respond"
	"github.com/nutrisync/nutrisync/pkg/pagination"
)

// DoctorHandler implements the doctor-facing HTTP endpoints.
type DoctorHandler struct {
	userService *Service
}

// NewDoctorHandler constructs a new [DoctorHandler] with its service dependency.
func NewDoctorHandler(service *Service) *DoctorHandler {
	return &DoctorHandler{userService: service}
}

// Routes returns a [chi.Router] configured with doctor routes.
//
// # Endpoints
//   - GET /patients               : Accounts assigned to the caller.
//   - GET /patients/{id}/logs     : An assigned patient's food logs.
//   - GET /patients/{id}/summary  : An assigned patient's 7-day aggregate.
func (handler *DoctorHandler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/patients", handler.patients)
	router.Get("/patients/{id}/logs", handler.patientLogs)
	router.Get("/patients/{id}/summary", handler.patientSummary)

	return router
}

// patients handles GET /api/v1/doctor/patients requests.
func (handler *DoctorHandler) patients(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	assigned, err := handler.userService.Patients(request.Context(), identity.ID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, assigned)
}

// patientLogs handles GET /api/v1/doctor/patients/{id}/logs requests.
//
// # Query Parameters
//   - page, limit : Pagination.
//   - from, to    : Optional RFC 3339 date-range bounds.
//
// # Returns
//   - Writes HTTP 403 Forbidden unless the patient is assigned to the caller.
func (handler *DoctorHandler) patientLogs(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)
	from := parseTimeParam(request, "from")
	to := parseTimeParam(request, "to")

	logs, meta, err := handler.userService.PatientLogs(
		request.Context(),
		identity.ID,
		requestutil.ID(request, "id"),
		params,
		from,
		to,
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, logs, meta)
}

// patientSummary handles GET /api/v1/doctor/patients/{id}/summary requests.
//
// # Returns
//   - Writes HTTP 403 Forbidden unless the patient is assigned to the caller.
func (handler *DoctorHandler) patientSummary(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	summary, err := handler.userService.PatientSummary(request.Context(), identity.ID, requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, summary)
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
