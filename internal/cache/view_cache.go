// Package cache implements the Redis-backed read-through cache for derived
// views. The cache is strictly an optimization layer: snapshot reads and
// writes never depend on it, and every Redis failure degrades to a miss or a
// best-effort no-op instead of failing the primary operation.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// viewKeyPrefix namespaces all derived view entries.
	viewKeyPrefix = "view"

	// invalidateMaxAttempts bounds the retry budget for pattern invalidation.
	invalidateMaxAttempts = 3
	// invalidateBaseBackoff is the delay before the first invalidation retry,
	// doubled on each subsequent attempt.
	invalidateBaseBackoff = 50 * time.Millisecond

	// scanBatchSize is the COUNT hint passed to SCAN during invalidation.
	scanBatchSize = 100
)

// ViewCache defines the interface for the derived view cache.
//
// Get returns (nil, false) on miss and on any Redis error. Set and
// InvalidateTenant are best-effort: failures are logged and swallowed so the
// caller always proceeds.
type ViewCache interface {
	Get(ctx context.Context, tenantID uuid.UUID, viewName string) ([]byte, bool)
	Set(ctx context.Context, tenantID uuid.UUID, viewName string, value []byte)
	InvalidateTenant(ctx context.Context, tenantID uuid.UUID)
}

// RedisViewCache implements ViewCache on top of a Redis client.
type RedisViewCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisViewCache creates a Redis view cache with the given entry TTL.
func NewRedisViewCache(client *redis.Client, ttl time.Duration) *RedisViewCache {
	return &RedisViewCache{
		client: client,
		ttl:    ttl,
	}
}

// viewKey builds the cache key for a tenant's derived view.
func viewKey(tenantID uuid.UUID, viewName string) string {
	return fmt.Sprintf("%s:%s:%s", viewKeyPrefix, tenantID, viewName)
}

// Get retrieves a cached view. Any error, including redis.Nil, is a miss.
func (r *RedisViewCache) Get(ctx context.Context, tenantID uuid.UUID, viewName string) ([]byte, bool) {
	value, err := r.client.Get(ctx, viewKey(tenantID, viewName)).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Warn(
				"view cache get failed, treating as miss",
				"tenant_id", tenantID,
				"view", viewName,
				"error", err,
			)
		}
		return nil, false
	}

	return value, true
}

// Set stores a computed view with the configured TTL. Failures are logged
// and swallowed.
func (r *RedisViewCache) Set(ctx context.Context, tenantID uuid.UUID, viewName string, value []byte) {
	if err := r.client.Set(ctx, viewKey(tenantID, viewName), value, r.ttl).Err(); err != nil {
		slog.Warn(
			"view cache set failed",
			"tenant_id", tenantID,
			"view", viewName,
			"error", err,
		)
	}
}

// InvalidateTenant removes every cached view for the tenant. Keys are
// discovered with SCAN to avoid blocking Redis. The whole operation is
// retried with exponential backoff up to the attempt budget; if it still
// fails, the error is logged and the stale entries are left to expire by TTL.
func (r *RedisViewCache) InvalidateTenant(ctx context.Context, tenantID uuid.UUID) {
	pattern := fmt.Sprintf("%s:%s:*", viewKeyPrefix, tenantID)

	backoff := invalidateBaseBackoff
	var err error
	for attempt := 1; attempt <= invalidateMaxAttempts; attempt++ {
		if err = r.deleteByPattern(ctx, pattern); err == nil {
			return
		}

		if attempt < invalidateMaxAttempts {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				slog.Warn(
					"view cache invalidation abandoned",
					"tenant_id", tenantID,
					"error", ctx.Err(),
				)
				return
			}
			backoff *= 2
		}
	}

	slog.Warn(
		"view cache invalidation failed, entries will expire by TTL",
		"tenant_id", tenantID,
		"attempts", invalidateMaxAttempts,
		"error", err,
	)
}

// deleteByPattern scans for keys matching the pattern and deletes them.
func (r *RedisViewCache) deleteByPattern(ctx context.Context, pattern string) error {
	iter := r.client.Scan(ctx, 0, pattern, scanBatchSize).Iterator()

	keys := make([]string, 0, scanBatchSize)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}

	if len(keys) == 0 {
		return nil
	}

	return r.client.Del(ctx, keys...).Err()
}
