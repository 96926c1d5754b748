// Copyright (c) 2026 NutriSync. All rights reserved.

package reminder

import (
	"context"
	"log/slog"
)

// Gateway delivers a reminder message to an external channel.
//
// # Contract
//
// Send is fire-and-forget from the scheduler's point of view: an error is
// logged and counted, the reminder stays claimed, nothing retries.
type Gateway interface {
	Send(ctx context.Context, destination, body string) error
}

// LogGateway is the development Gateway: it writes the message to the
// structured log instead of an external channel. Used whenever Twilio
// credentials are not configured.
type LogGateway struct {
	logger *slog.Logger
}

// NewLogGateway creates a log-only Gateway.
func NewLogGateway(logger *slog.Logger) *LogGateway {
	return &LogGateway{logger: logger}
}

// Send logs the message and always succeeds.
func (gateway *LogGateway) Send(ctx context.Context, destination, body string) error {
	gateway.logger.InfoContext(ctx, "reminder_message_logged",
		slog.String("destination", destination),
		slog.String("body", body),
	)
	return nil
}
