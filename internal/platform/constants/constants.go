// Copyright (c) 2026 NutriSync. All rights reserved.

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Security: Token issuer and lifetime.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "nutrisync-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 15 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 30 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	// Kept above the vision analyzer timeout so the proxy path can complete.
	GlobalRequestTimeout = 45 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in session tokens.
	AuthIssuer = "nutrisync.app"

	// TokenTTL is the fixed lifetime of an issued session token. There is no
	// server-side revocation before expiry; logout is client-side discard.
	TokenTTL = 7 * 24 * time.Hour
)

// # External Collaborators

const (
	// GatewaySendTimeout bounds a single messaging-gateway delivery attempt.
	// A timeout counts as a delivery failure (logged, never retried).
	GatewaySendTimeout = 10 * time.Second

	// VisionAnalyzeTimeout bounds a single vision sidecar request. On expiry
	// the caller falls back to the deterministic mock response.
	VisionAnalyzeTimeout = 30 * time.Second

	// VisionMaxImageBytes caps uploaded food photos (10 MB).
	VisionMaxImageBytes = 10 << 20

	// AnalysisCacheTTL is how long a vision analysis result stays cached.
	AnalysisCacheTTL = 24 * time.Hour
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldMeta    = "meta"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldMessage = "message"
	FieldStatus  = "status"
)

// # Mongo Collections

const (
	CollectionFoodLogs = "foodlogs"
	CollectionAPIUsage = "apiusage"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixAnalysis = "food:analysis:"
)
