// Copyright (c) 2026 NutriSync. All rights reserved.

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via small provider interfaces.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DevTokenSecret is the fixed development signing secret used when
// TOKEN_SECRET is not configured. Running with it is a documented security
// caveat of local setups; main logs a warning whenever it is active.
const DevTokenSecret = "nutrisync-dev-secret-change-me"

// Verification failure modes. Expired and Invalid are deliberately distinct:
// an expired-but-well-formed token must never be reported as Invalid.
var (
	// ErrTokenExpired means the signature checked out but the token's
	// lifetime has elapsed.
	ErrTokenExpired = errors.New("sec: token expired")

	// ErrTokenInvalid means the token is malformed, unsigned, or carries a
	// signature that does not match the server secret.
	ErrTokenInvalid = errors.New("sec: token invalid")
)

// Claims represents the payload embedded inside a session token.
//
// The role claim is a snapshot taken at issuance. The access-control
// middleware does NOT trust it for authorization — it re-resolves the live
// account on every request — but it is kept in the token so stateless
// consumers (logs, debugging) can see what was granted.
type Claims struct {
	jwt.RegisteredClaims

	// Role is abbreviated to keep the token payload small.
	Role string `json:"rol"`
}

// TokenService handles generation and verification of session tokens using
// HS256 with a single process-wide secret.
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenService creates a new TokenService.
//
// # Parameters
//   - secret: The shared HMAC signing secret. Must not be empty.
//   - issuer: The 'iss' claim stamped on every token.
//   - ttl: The fixed token lifetime (7 days in production wiring).
func NewTokenService(secret, issuer string, ttl time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("sec: token secret must not be empty")
	}
	return &TokenService{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}, nil
}

// Issue creates a new signed session token for an account.
//
// The only side effect is CPU-bound signing; nothing is persisted. Tokens
// cannot be revoked before expiry.
func (service *TokenService) Issue(subjectID string, role Role) (string, error) {
	currentTime := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(service.ttl)),
		},
		Role: string(role),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// Verify checks the signature and validity of a token string.
//
// # Returns
//   - *Claims: The embedded claims when the token is valid.
//   - error: [ErrTokenExpired] for elapsed lifetime, [ErrTokenInvalid] for
//     everything else (bad signature, malformed input, wrong algorithm).
func (service *TokenService) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.secret, nil
	})

	if err != nil {
		// jwt/v5 joins validation errors; classify expiry before anything
		// else so a stale token is never misreported as tampered.
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
