// Copyright (c) 2026 NutriSync. All rights reserved.

// HTTP delivery layer for the public authentication endpoints.
//
// # Architecture
//
// Handlers act as the "gatekeepers" to the system. They are responsible for:
//   - JSON Request parsing and strict input validation.
//   - Mapping HTTP contexts to service layer method calls.
//   - Standardizing JSON response formats via the [respond] package.
//
// They contain NO business logic or database queries.
package users

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/nutrisync/nutrisync/internal/platform/request"
	"github.com/nutrisync/nutrisync/internal/platform/respond"
	"github.com/nutrisync/nutrisync/internal/platform/validate"
)

// AuthHandler implements authentication-related HTTP endpoints.
//
// # Scope
//
// This handler manages the account lifecycle entry points (Registration,
// Login) plus the self-profile endpoint.
type AuthHandler struct {
	userService *Service
}

// NewAuthHandler constructs a new [AuthHandler] with its service dependency.
func NewAuthHandler(service *Service) *AuthHandler {
	return &AuthHandler{userService: service}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /register : Creates a new account and returns a session token.
//   - POST /login    : Authenticates and returns a session token.
//   - GET  /me       : Returns the caller's public identity (requires auth).
func (handler *AuthHandler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Get("/me", handler.me)

	return router
}

// registerRequest represents the JSON payload expected for account creation.
type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"` // Optional; "admin" is never honored here.
}

// register handles POST /api/v1/auth/register requests.
//
// # Parameters
//   - writer: The HTTP response constructor.
//   - request: The incoming HTTP request payload.
//
// # Returns
//   - Writes HTTP 201 Created on success with the token and public profile.
//   - Writes HTTP 400 Bad Request if validation rules fail.
//   - Writes HTTP 409 Conflict if the email is taken.
func (handler *AuthHandler) register(writer http.ResponseWriter, request *http.Request) {
	// ── 1. Payload Extraction ─────────────────────────────────────────────

	var input registerRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 2. Application Execution ──────────────────────────────────────────

	// Validation (name/email/password) and role forcing happen inside the
	// service so the rules hold for every caller, not just this handler.
	session, err := handler.userService.Register(request.Context(), RegisterInput{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
		Role:     input.Role,
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 3. Presentation Output ────────────────────────────────────────────

	respond.Created(writer, session)
}

// loginRequest represents the JSON payload expected for authentication.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// login handles POST /api/v1/auth/login requests.
//
// # Returns
//   - Writes HTTP 200 OK on success with the token and public profile.
//   - Writes HTTP 401 Unauthorized for bad credentials — the same message
//     for unknown email and wrong password, preventing enumeration.
func (handler *AuthHandler) login(writer http.ResponseWriter, request *http.Request) {
	// ── 1. Payload Extraction ─────────────────────────────────────────────

	var input loginRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 2. Boundary Validation ────────────────────────────────────────────

	if input.Email == "" || input.Password == "" {
		respond.Error(writer, request, validate.RequiredError("email/password", "are required"))
		return
	}

	// ── 3. Application Execution ──────────────────────────────────────────

	session, err := handler.userService.Login(request.Context(), LoginInput{
		Email:    input.Email,
		Password: input.Password,
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 4. Presentation Output ────────────────────────────────────────────

	respond.OK(writer, session)
}

// me handles GET /api/v1/auth/me requests.
//
// The identity in context is already live-resolved by the middleware, so no
// further lookup is needed here.
func (handler *AuthHandler) me(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, identity)
}
