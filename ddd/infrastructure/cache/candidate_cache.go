package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"merchant-notification-service/ddd/domain/entity"
	drepo "merchant-notification-service/ddd/domain/repo"
	"merchant-notification-service/pkg/logger"
	"merchant-notification-service/pkg/metrics"
)

// candidateWindow is the cached payload. Limit is stored so a window loaded
// with a different limit is never served.
type candidateWindow struct {
	Limit         int                    `json:"limit"`
	Notifications []*entity.Notification `json:"notifications"`
}

// redisCandidateCache keeps the merchant-independent recent window in one
// Redis key. Redis failures degrade to cache misses.
type redisCandidateCache struct {
	rdb redis.Cmdable
	key string
	ttl time.Duration
}

// NewRedisCandidateCache returns a CandidateCache storing the window under key.
func NewRedisCandidateCache(rdb redis.Cmdable, key string, ttl time.Duration) drepo.CandidateCache {
	return &redisCandidateCache{rdb: rdb, key: key, ttl: ttl}
}

func (c *redisCandidateCache) Get(ctx context.Context, limit int) ([]*entity.Notification, bool) {
	raw, err := c.rdb.Get(ctx, c.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.WithContext(ctx).Warnf("candidate cache get failed key=%s err=%v", c.key, err)
		}
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	// Identifiers are untyped; numbers must keep every digit.
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var w candidateWindow
	if err := dec.Decode(&w); err != nil || w.Limit != limit {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return w.Notifications, true
}

func (c *redisCandidateCache) Set(ctx context.Context, limit int, list []*entity.Notification) {
	raw, err := json.Marshal(candidateWindow{Limit: limit, Notifications: list})
	if err != nil {
		logger.WithContext(ctx).Warnf("candidate cache encode failed err=%v", err)
		return
	}
	if err := c.rdb.Set(ctx, c.key, raw, c.ttl).Err(); err != nil {
		logger.WithContext(ctx).Warnf("candidate cache set failed key=%s err=%v", c.key, err)
	}
}

func (c *redisCandidateCache) Invalidate(ctx context.Context) {
	if err := c.rdb.Del(ctx, c.key).Err(); err != nil {
		logger.WithContext(ctx).Warnf("candidate cache invalidate failed key=%s err=%v", c.key, err)
	}
}

// noopCandidateCache is used when caching is disabled.
type noopCandidateCache struct{}

// NewNoopCandidateCache returns a CandidateCache that never hits.
func NewNoopCandidateCache() drepo.CandidateCache {
	return noopCandidateCache{}
}

func (noopCandidateCache) Get(context.Context, int) ([]*entity.Notification, bool) {
	return nil, false
}

func (noopCandidateCache) Set(context.Context, int, []*entity.Notification) {}

func (noopCandidateCache) Invalidate(context.Context) {}
