// Copyright (c) 2026 NutriSync. All rights reserved.

/*
Package mongo provides a managed MongoDB client for document storage.

NutriSync keeps its high-volume, schema-flexible collections in MongoDB:
food log entries (free-form nutrition payloads) and API usage events.
Relational data (accounts, reminders) lives in PostgreSQL instead.

Core Responsibilities:

  - Connectivity: Parses the connection URL and validates reachability at startup.
  - Pooling: Relies on the official driver's built-in connection pool.
  - Scoping: Hands out a single named [*mongo.Database] to the domain layer.
*/
package mongo

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Opiniated default timeouts for MongoDB operations.
const (
	connectTimeout = 10 * time.Second
	pingTimeout    = 2 * time.Second
)

// NewClient connects to MongoDB and returns a ready-to-use client.
//
// # Parameters
//   - context: Context for the initial connection and ping.
//   - mongoURL: MongoDB connection URL (mongodb:// or mongodb+srv://).
//   - logger: Structured logger for connection events.
func NewClient(context stdctx.Context, mongoURL string, logger *slog.Logger) (*mongo.Client, error) {
	connectCtx, cancel := stdctx.WithTimeout(context, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(mongoURL))
	if err != nil {
		return nil, fmt.Errorf("mongo: failed to connect: %w", err)
	}

	// Validate connectivity immediately at startup.
	if err := Ping(context, client); err != nil {
		_ = client.Disconnect(context)
		return nil, err
	}

	logger.Info("mongo client connected")

	return client, nil
}

// Ping verifies that the MongoDB client is healthy.
func Ping(context stdctx.Context, client *mongo.Client) error {
	pingCtx, cancel := stdctx.WithTimeout(context, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongo: ping failed: %w", err)
	}

	return nil
}
