// Copyright (c) 2026 NutriSync. All rights reserved.

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/nutrisync/nutrisync/internal/platform/apperr"
	"github.com/nutrisync/nutrisync/internal/platform/ctxutil"
	"github.com/nutrisync/nutrisync/internal/platform/respond"
	"github.com/nutrisync/nutrisync/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify tokens in middleware.
//
// # Why an interface?
//
// Defining TokenVerifier here decouples the middleware from the token service
// implementation, allowing us to easily inject mocks during unit testing.
type TokenVerifier interface {
	Verify(tokenString string) (*sec.Claims, error)
}

// IdentityResolver loads the live account behind a verified token subject.
//
// # Why resolve on every request?
//
// The role inside a token is a snapshot from issuance. Resolving the account
// fresh means role changes apply to requests already carrying an old token,
// and deleted accounts are locked out immediately rather than at expiry.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, accountID string) (*sec.Identity, error)
}

// Authenticate extracts and verifies the JWT from the Authorization header,
// then resolves the live account identity behind it.
//
// # Flow
//  1. Check for 'Authorization: Bearer <token>' header.
//  2. If absent, request proceeds as anonymous.
//  3. If present, parse and verify the JWT via [TokenVerifier].
//  4. Resolve the current account via [IdentityResolver]; a missing account
//     (deleted since issuance) is rejected with 401.
//  5. Inject [*sec.Identity] into the request context for downstream use.
func Authenticate(verifier TokenVerifier, resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get("Authorization")

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Format Validation ──────────────────────────────────────────
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
				return
			}

			// ── 3. Token Verification ─────────────────────────────────────────
			tokenString := parts[1]
			claims, err := verifier.Verify(tokenString)
			if err != nil {
				if errors.Is(err, sec.ErrTokenExpired) {
					respond.Error(writer, request, apperr.Unauthorized("Token expired"))
					return
				}
				respond.Error(writer, request, apperr.Unauthorized("Invalid token"))
				return
			}

			// ── 4. Live Identity Resolution ───────────────────────────────────
			identity, err := resolver.ResolveIdentity(request.Context(), claims.Subject)
			if err != nil {
				respond.Error(writer, request, apperr.Unauthorized("User not found"))
				return
			}

			// ── 5. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithIdentity(request.Context(), identity)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
//
// # Flow
//  1. Check if [*sec.Identity] exists in context.
//  2. If missing, abort with HTTP 401 Unauthorized.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		identity := GetUser(request.Context())
		if identity == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireRole blocks requests whose live role is not in the allowed set.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate]. It automatically
// implies [RequireAuth] so you don't need to mount both.
//
// # Flow
//  1. Check if [*sec.Identity] exists in context (implies AuthN).
//  2. Check set membership of the resolved live role — roles are flat, not
//     ranked, so admin does not implicitly pass a doctor-only gate.
//  3. If not a member, abort with HTTP 403 Forbidden.
func RequireRole(allowed ...sec.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			identity := GetUser(request.Context())

			// ── 1. Authentication Check ───────────────────────────────────────
			if identity == nil {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			// ── 2. Authorization Check ────────────────────────────────────────
			if !identity.Role.In(allowed...) {
				respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// GetUser retrieves the resolved [*sec.Identity] from the [context.Context].
//
// # Returns
//   - The live account identity if the request is authenticated.
//   - nil if the request is anonymous.
func GetUser(ctx context.Context) *sec.Identity {
	return ctxutil.GetIdentity(ctx)
}
