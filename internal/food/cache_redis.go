// Copyright (c) 2026 NutriSync. All rights reserved.

// Redis implementation of the vision analysis cache.
package food

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/nutrisync/nutrisync/internal/platform/constants"
)

// RedisAnalysisCache implements AnalysisCache using go-redis with a TTL.
//
// # Key Shape
//
// food:analysis:<sha256-of-image-bytes> — identical photo bytes always map
// to the same key, so re-uploads hit the cache regardless of filename.
type RedisAnalysisCache struct {
	client *redis.Client
}

// NewAnalysisCache creates a new Redis-backed AnalysisCache.
func NewAnalysisCache(client *redis.Client) *RedisAnalysisCache {
	return &RedisAnalysisCache{client: client}
}

// Get returns the cached analysis for the hash, or (nil, nil) on miss.
func (cache *RedisAnalysisCache) Get(ctx context.Context, imageHash string) (*Analysis, error) {
	payload, err := cache.client.Get(ctx, constants.RedisPrefixAnalysis+imageHash).Bytes()
	if err != nil {
		// A miss is a normal outcome, not a failure.
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis_analysis_cache_get_failed: %w", err)
	}

	analysis := &Analysis{}
	if err := json.Unmarshal(payload, analysis); err != nil {
		// A corrupt entry behaves like a miss; the caller will overwrite it.
		return nil, nil
	}

	return analysis, nil
}

// Set stores the analysis under the hash with the configured TTL.
func (cache *RedisAnalysisCache) Set(ctx context.Context, imageHash string, analysis *Analysis) error {
	payload, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("redis_analysis_cache_marshal_failed: %w", err)
	}

	err = cache.client.Set(ctx, constants.RedisPrefixAnalysis+imageHash, payload, constants.AnalysisCacheTTL).Err()
	if err != nil {
		return fmt.Errorf("redis_analysis_cache_set_failed: %w", err)
	}

	return nil
}
