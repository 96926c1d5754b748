// Copyright (c) 2026 NutriSync. All rights reserved.

// Package ctxutil provides typed accessors for per-request context values.
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/nutrisync/nutrisync/internal/platform/ctxkey"
	"github.com/nutrisync/nutrisync/internal/platform/sec"
)

// WithRequestID stores the request correlation ID in the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, requestID)
}

// GetRequestID retrieves the request correlation ID, or "" when absent.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(ctxkey.KeyRequestID).(string); ok {
		return requestID
	}
	return ""
}

// WithLogger stores a request-scoped logger in the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger retrieves the request-scoped logger, falling back to the process
// default so callers never need a nil check.
func GetLogger(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

// WithIdentity stores the resolved account identity in the context.
func WithIdentity(ctx context.Context, identity *sec.Identity) context.Context {
	return context.WithValue(ctx, ctxkey.KeyIdentity, identity)
}

// GetIdentity retrieves the resolved account identity, or nil for anonymous
// requests.
func GetIdentity(ctx context.Context) *sec.Identity {
	if identity, ok := ctx.Value(ctxkey.KeyIdentity).(*sec.Identity); ok {
		return identity
	}
	return nil
}
