package resource

import (
	"sync"

	"github.com/redis/go-redis/v9"
)

var (
	redisMu  sync.RWMutex
	redisCli *redis.Client
)

// SetRedisClient stores the shared Redis client. Redis is optional; callers
// must handle RedisClient returning nil.
func SetRedisClient(c *redis.Client) {
	redisMu.Lock()
	defer redisMu.Unlock()
	redisCli = c
}

// RedisClient returns the shared Redis client or nil when Redis is not configured.
func RedisClient() *redis.Client {
	redisMu.RLock()
	defer redisMu.RUnlock()
	return redisCli
}
