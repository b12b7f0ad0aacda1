// Package cache stores rendered optimization reports in Redis. The cache is
// strictly optional: a nil client, a tripped breaker, or any Redis error
// degrades to a miss and the caller regenerates the report.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
)

// DefaultTTL bounds how long a cached report may outlive the schedule change
// that produced it.
const DefaultTTL = 5 * time.Minute

const keyPrefix = "kairos:report:"

// ReportCache caches optimization reports per session.
type ReportCache struct {
	client  *redis.Client
	breaker *gobreaker.CircuitBreaker[string]
	ttl     time.Duration
	logger  *slog.Logger
}

// NewReportCache creates a report cache. A nil client yields a cache where
// every Get is a miss and every Set is a no-op.
func NewReportCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *ReportCache {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	settings := gobreaker.Settings{
		Name:    "report-cache",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &ReportCache{
		client:  client,
		breaker: gobreaker.NewCircuitBreaker[string](settings),
		ttl:     ttl,
		logger:  logger,
	}
}

// Get returns the cached report for a session. The second return value is
// false on a miss, a Redis error, or an open breaker.
func (c *ReportCache) Get(ctx context.Context, sessionID string) (string, bool) {
	if c.client == nil {
		return "", false
	}

	// A miss is a successful round trip and must not count against the
	// breaker, so it is separated from real errors here.
	var miss bool
	report, err := c.breaker.Execute(func() (string, error) {
		val, err := c.client.Get(ctx, keyPrefix+sessionID).Result()
		if errors.Is(err, redis.Nil) {
			miss = true
			return "", nil
		}
		return val, err
	})
	if err != nil {
		c.logger.Warn("report cache read failed", "session_id", sessionID, "error", err)
		return "", false
	}
	if miss {
		return "", false
	}
	return report, true
}

// Set stores the report for a session. Failures are logged and swallowed.
func (c *ReportCache) Set(ctx context.Context, sessionID, report string) {
	if c.client == nil {
		return
	}

	_, err := c.breaker.Execute(func() (string, error) {
		return "", c.client.Set(ctx, keyPrefix+sessionID, report, c.ttl).Err()
	})
	if err != nil {
		c.logger.Warn("report cache write failed", "session_id", sessionID, "error", err)
	}
}

// Invalidate drops the cached report for a session. Called whenever the
// schedule changes.
func (c *ReportCache) Invalidate(ctx context.Context, sessionID string) {
	if c.client == nil {
		return
	}

	_, err := c.breaker.Execute(func() (string, error) {
		return "", c.client.Del(ctx, keyPrefix+sessionID).Err()
	})
	if err != nil {
		c.logger.Warn("report cache invalidation failed", "session_id", sessionID, "error", err)
	}
}
